package preview

import (
	"path"
	"strings"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/markdown"
	"github.com/csams/transcript-tui/internal/transcript"
)

type Kind int

const (
	KindDocument Kind = iota
	KindTranscript
)

// Document is what the preview dialog shows: either styled lines or a
// transcript model
type Document struct {
	Kind       Kind
	Title      string
	Lines      []markdown.Line
	Transcript *transcript.Model
}

// IsTranscriptFile reports whether a stored file is a transcript that should
// be parsed locally rather than shown as text
func IsTranscriptFile(filePath string) bool {
	return strings.EqualFold(path.Ext(strings.ReplaceAll(filePath, "\\", "/")), ".json")
}

type Renderer struct {
	converter *markdown.MarkdownConverter
}

func NewRenderer() *Renderer {
	return &Renderer{converter: markdown.NewMarkdownConverter()}
}

// Render turns a preview response into a document. transcriptID is used
// when the file is a transcript.
func (r *Renderer) Render(filePath, transcriptID string, p *api.Preview) (*Document, error) {
	doc := &Document{Title: path.Base(strings.ReplaceAll(filePath, "\\", "/"))}

	if IsTranscriptFile(filePath) {
		model, err := transcript.Parse(transcriptID, []byte(p.Content))
		if err != nil {
			return nil, err
		}
		doc.Kind = KindTranscript
		doc.Transcript = model
		return doc, nil
	}

	doc.Kind = KindDocument
	switch p.Type {
	case api.PreviewMarkdown:
		if strings.TrimSpace(p.HTML) != "" {
			lines, err := HTMLToLines(p.HTML)
			if err == nil {
				doc.Lines = lines
				return doc, nil
			}
			logging.Warn().Err(err).Str("file", filePath).Msg("falling back to markdown source")
		}
		doc.Lines = r.converter.Convert(p.Content)
	default:
		doc.Lines = markdown.Plain(p.Content)
	}
	return doc, nil
}
