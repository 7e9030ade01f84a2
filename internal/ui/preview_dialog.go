package ui

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/markdown"
	"github.com/csams/transcript-tui/internal/modal"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/csams/transcript-tui/internal/preview"
	"github.com/csams/transcript-tui/internal/transcript"
	"github.com/gdamore/tcell/v2"
)

// PreviewDialog shows a stored file: a note as styled text, or a transcript
// with speaker filters, search and export
type PreviewDialog struct {
	dialogBase
	tasks taskGroup

	podcastID    string
	podcastTitle string
	filePath     string
	transcriptID string

	doc     *preview.Document
	err     error
	loading bool

	search    *LineInput
	searching bool

	includeSpeakers   bool
	includeTimestamps bool

	scroll scroller
}

// cell is one rune of a prepared row
type cell struct {
	r     rune
	style tcell.Style
}

func (a *App) previewDialog() *PreviewDialog {
	h := a.modals.GetOrCreate(surfacePreview, func() modal.Surface {
		return &PreviewDialog{dialogBase: dialogBase{app: a}, search: NewLineInput()}
	})
	p := h.Surface().(*PreviewDialog)
	if p.handle == nil {
		p.bind(h)
		h.SetDispose(p.dispose)
	}
	return p
}

func (a *App) openPreview(podcastID, podcastTitle, filePath, transcriptID string) {
	a.previewDialog().open(podcastID, podcastTitle, filePath, transcriptID)
}

// downloadFile saves a stored file into the download directory
func (a *App) downloadFile(filePath string) {
	a.setStatus("Downloading %s...", path.Base(filePath))
	spawn(a, nil, "download", func(ctx context.Context) (string, error) {
		artifact, err := a.backend.Download(ctx, filePath)
		if err != nil {
			return "", err
		}
		return a.saveArtifact(artifact)
	}, func(saved string, err error) {
		if err != nil {
			a.showError(err, "Download failed")
			return
		}
		a.setStatus("Saved %s", saved)
	})
}

func (p *PreviewDialog) open(podcastID, podcastTitle, filePath, transcriptID string) {
	p.podcastID = podcastID
	p.podcastTitle = podcastTitle
	p.filePath = filePath
	p.transcriptID = transcriptID
	p.search.Clear()
	p.searching = false
	p.includeSpeakers = true
	p.includeTimestamps = true
	p.scroll.top()
	p.app.modals.Show(p.handle)
	p.load()
}

func (p *PreviewDialog) dispose() {
	p.tasks.discardAll()
	p.doc = nil
	p.err = nil
	p.loading = false
}

// fetch downloads and renders a file. It does not touch the dialog, so it can
// run off the event loop.
func (p *PreviewDialog) fetch(ctx context.Context, filePath, transcriptID string) (*preview.Document, error) {
	res, err := p.app.backend.Preview(ctx, filePath)
	if err != nil {
		return nil, err
	}
	return p.app.renderer.Render(filePath, transcriptID, res)
}

func (p *PreviewDialog) load() {
	p.loading = true
	filePath, transcriptID := p.filePath, p.transcriptID
	p.tasks.add(spawn(p.app, p.handle, "preview", func(ctx context.Context) (*preview.Document, error) {
		return p.fetch(ctx, filePath, transcriptID)
	}, func(doc *preview.Document, err error) {
		p.loading = false
		if err != nil {
			logging.Error().Err(err).Str("file", filePath).Msg("failed to load preview")
			p.doc = nil
			p.err = err
			return
		}
		p.setDocument(doc)
	}))
}

func (p *PreviewDialog) setDocument(doc *preview.Document) {
	p.err = nil
	p.doc = doc
	if model := p.model(); model != nil {
		model.SetQuery(p.search.Value())
	}
	p.scroll.clamp()
}

// model returns the transcript being shown, or nil for documents
func (p *PreviewDialog) model() *transcript.Model {
	if p.doc == nil || p.doc.Kind != preview.KindTranscript {
		return nil
	}
	return p.doc.Transcript
}

func (p *PreviewDialog) HandleKey(ev *tcell.EventKey) bool {
	if p.searching {
		switch ev.Key() {
		case tcell.KeyEnter, tcell.KeyEscape:
			p.searching = false
			return true
		}
		if p.search.HandleKey(ev) {
			if model := p.model(); model != nil {
				model.SetQuery(p.search.Value())
			}
			p.scroll.top()
		}
		return true
	}

	if p.scroll.handleKey(ev) {
		return true
	}
	if ev.Key() != tcell.KeyRune {
		return false
	}

	switch ev.Rune() {
	case 'r':
		p.load()
		return true
	case 'D':
		p.app.downloadFile(p.filePath)
		return true
	}

	model := p.model()
	if model == nil {
		return false
	}
	switch r := ev.Rune(); {
	case r == '/':
		p.searching = true
	case r == '0':
		model.ToggleAll()
		p.scroll.top()
	case r >= '1' && r <= '9':
		speakers := model.Speakers()
		if idx := int(r - '1'); idx < len(speakers) {
			model.ToggleSpeaker(speakers[idx])
			p.scroll.top()
		}
	case r == 'e':
		p.export(api.FormatText)
	case r == 'E':
		p.export(api.FormatMarkdown)
	case r == 's':
		p.export(api.FormatSubtitle)
	case r == 'l':
		p.includeSpeakers = !p.includeSpeakers
	case r == 'T':
		p.includeTimestamps = !p.includeTimestamps
	case r == 'n':
		p.editSpeakers()
	default:
		return false
	}
	return true
}

func (p *PreviewDialog) export(format api.ExportFormat) {
	model := p.model()
	opts := api.ExportOptions{
		Format:            format,
		IncludeSpeakers:   p.includeSpeakers,
		IncludeTimestamps: p.includeTimestamps,
	}
	p.app.setStatus("Exporting %s...", format.Label())
	spawn(p.app, nil, "export", func(ctx context.Context) (string, error) {
		artifact, err := model.Export(ctx, p.app.backend, opts)
		if err != nil {
			return "", err
		}
		return p.app.saveArtifact(artifact)
	}, func(saved string, err error) {
		if err != nil {
			p.app.showError(err, "Export failed")
			return
		}
		p.app.setStatus("Exported %s", saved)
	})
}

// editSpeakers opens the speaker editor prefilled with the names the service
// has on record
func (p *PreviewDialog) editSpeakers() {
	model := p.model()
	p.tasks.add(spawn(p.app, p.handle, "list-speakers", func(ctx context.Context) (map[string]string, error) {
		return p.app.backend.ListSpeakers(ctx, model.TranscriptID())
	}, func(names map[string]string, err error) {
		if err != nil {
			logging.Warn().Err(err).Str("transcript", model.TranscriptID()).Msg("failed to list speakers, using transcript names")
			names = model.SpeakerNames()
		}
		p.app.editSpeakers(model, names, p.renameSpeakers)
	}))
}

// renameSpeakers submits new names and, once they are saved, rebuilds the
// view from the service's copy of the transcript
func (p *PreviewDialog) renameSpeakers(names map[string]string) {
	model := p.model()
	if model == nil {
		return
	}
	loading := p.app.showLoading("Saving speaker names...")
	filePath, transcriptID := p.filePath, p.transcriptID
	p.tasks.add(spawn(p.app, p.handle, "rename-speakers", func(ctx context.Context) (*preview.Document, error) {
		var reloaded *preview.Document
		err := model.Rename(ctx, p.app.backend, names, func(ctx context.Context) error {
			doc, err := p.fetch(ctx, filePath, transcriptID)
			reloaded = doc
			return err
		})
		return reloaded, err
	}, func(doc *preview.Document, err error) {
		loading.finish()
		switch {
		case errors.Is(err, transcript.ErrNoChanges):
			p.app.setStatus("No speaker names changed")
			return
		case err != nil:
			p.app.showError(err, "Rename failed")
			return
		}
		p.setDocument(doc)
		if d := p.app.detailDialog(); d.isOpen() {
			d.load()
		}
		p.app.setStatus("Speaker names saved")
	}))
}

func (p *PreviewDialog) title() string {
	name := path.Base(strings.ReplaceAll(p.filePath, "\\", "/"))
	if p.doc != nil && p.doc.Title != "" {
		name = p.doc.Title
	}
	if p.podcastTitle == "" {
		return name
	}
	return p.podcastTitle + " - " + name
}

func (p *PreviewDialog) Draw(s tcell.Screen) {
	sw, sh := s.Size()
	width := sw - 6
	if width > 120 {
		width = 120
	}
	inner := p.frame(s, width, sh-2, p.title())

	if p.doc == nil {
		if p.err != nil {
			drawText(s, inner.x, inner.y, styleDialog.Foreground(ColorError).Bold(true), "Failed to load preview:")
			for i, l := range wrapText(errorText(p.err), inner.w) {
				if i+1 >= inner.h-1 {
					break
				}
				drawText(s, inner.x, inner.y+1+i, styleDialog.Foreground(ColorError), l)
			}
			drawHints(s, inner, "r: retry  esc: close")
		} else {
			drawText(s, inner.x, inner.y, styleDialog.Foreground(ColorDimmed), "Loading...")
		}
		return
	}

	body := inner
	var rows [][]cell
	hints := "j/k: scroll  D: download  r: reload  esc: close"
	if model := p.model(); model != nil {
		top := p.drawTranscriptControls(s, inner, model)
		body = rect{x: inner.x, y: inner.y + top, w: inner.w, h: inner.h - top}
		rows = transcriptRows(model, inner.w)
		hints = "/: search  1-9/0: speakers  e/E/s: export  l/T: flags  n: names  D: download"
	} else {
		rows = documentRows(p.doc.Lines, inner.w)
	}

	visible := body.h - 1
	p.scroll.update(visible, len(rows))
	for i := 0; i < visible && i+p.scroll.offset < len(rows); i++ {
		x := body.x
		for _, c := range rows[i+p.scroll.offset] {
			s.SetContent(x, body.y+i, c.r, nil, c.style)
			x += runeWidth(c.r)
		}
	}
	if pos := p.scroll.indicator(); pos != "" {
		hints += "  " + pos
	}
	drawHints(s, inner, hints)
}

// drawTranscriptControls draws the search box, speaker chips and export
// flags and returns how many rows they took
func (p *PreviewDialog) drawTranscriptControls(s tcell.Screen, r rect, model *transcript.Model) int {
	y := r.y
	label := styleDialog.Foreground(ColorDimmed)

	x := drawText(s, r.x, y, label, "Search: ")
	counts := fmt.Sprintf("  %d/%d segments", len(model.VisibleSegments()), model.Len())
	inputStyle := styleDialog.Background(ColorBgHighlight)
	p.search.Draw(s, x, y, r.w-(x-r.x)-textWidth(counts), inputStyle, p.searching)
	drawText(s, r.x+r.w-textWidth(counts), y, label, counts)
	y++

	// speaker chips, wrapping onto as many rows as needed
	chips := []chip{{chipText("0", "all", -1, model.AllSelected()), styleDialog.Bold(model.AllSelected())}}
	counted := model.SpeakerCounts()
	for i, speaker := range model.Speakers() {
		key := " "
		if i < 9 {
			key = fmt.Sprint(i + 1)
		}
		style := styleDialog.Foreground(SpeakerColor(model.ColorIndex(speaker)))
		if !model.IsSelected(speaker) {
			style = styleDialog.Foreground(ColorFgGutter)
		}
		chips = append(chips, chip{chipText(key, model.DisplayName(speaker), counted[speaker], model.IsSelected(speaker)), style})
	}
	x = r.x
	for _, c := range chips {
		w := textWidth(c.text)
		if x > r.x && x+w > r.x+r.w {
			y++
			x = r.x
		}
		x = drawTextClipped(s, x, y, r.w, c.style, c.text) + 1
	}
	y++

	flag := func(on bool) string {
		if on {
			return "on"
		}
		return "off"
	}
	drawTextClipped(s, r.x, y, r.w, label, fmt.Sprintf("Export: speaker labels %s, timestamps %s", flag(p.includeSpeakers), flag(p.includeTimestamps)))
	y++
	drawText(s, r.x, y, styleDialog.Foreground(ColorFgGutter), strings.Repeat("─", r.w))
	y++
	return y - r.y
}

type chip struct {
	text  string
	style tcell.Style
}

func chipText(key, name string, count int, selected bool) string {
	mark := "✓"
	if !selected {
		mark = "·"
	}
	if count < 0 {
		return fmt.Sprintf("[%s %s %s]", key, mark, name)
	}
	return fmt.Sprintf("[%s %s %s (%d)]", key, mark, name, count)
}

// transcriptRows lays out the visible segments: a heading with time and
// speaker, then the wrapped text with search hits highlighted
func transcriptRows(model *transcript.Model, width int) [][]cell {
	var rows [][]cell
	wrapWidth := width - 2
	hitStyle := styleDialog.Foreground(ColorBgDark).Background(ColorHighlight)
	for _, i := range model.VisibleSegments() {
		seg := model.Segment(i)
		speaker := model.SpeakerOf(i)

		heading := cells(models.FormatTimestamp(seg.Start)+"  ", styleDialog.Foreground(ColorDimmed))
		heading = append(heading, cells(model.DisplayName(speaker), styleDialog.Foreground(SpeakerColor(model.ColorIndex(speaker))).Bold(true))...)
		rows = append(rows, heading)

		text := []rune(seg.Text)
		hits := make(map[int]bool)
		for _, pos := range matchPositions(seg.Text, model.Query()) {
			hits[pos] = true
		}
		for _, sp := range wrapSpans(text, wrapWidth) {
			row := cells("  ", styleDialog)
			for pos := sp.start; pos < sp.end; pos++ {
				style := styleDialog
				if hits[pos] {
					style = hitStyle
				}
				row = append(row, cell{r: text[pos], style: style})
			}
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		msg := "No segments match."
		if model.Len() == 0 {
			msg = "This transcript is empty."
		}
		rows = append(rows, cells(msg, styleDialog.Foreground(ColorDimmed)))
	}
	return rows
}

// documentRows wraps styled lines to width
func documentRows(lines []markdown.Line, width int) [][]cell {
	var rows [][]cell
	for _, line := range lines {
		text := []rune(line.Text)
		for _, sp := range wrapSpans(text, width) {
			row := make([]cell, 0, sp.end-sp.start)
			for pos := sp.start; pos < sp.end; pos++ {
				row = append(row, cell{r: text[pos], style: MarkdownStyle(styleDialog, line.StyleAt(pos))})
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func cells(text string, style tcell.Style) []cell {
	out := make([]cell, 0, len(text))
	for _, r := range text {
		out = append(out, cell{r: r, style: style})
	}
	return out
}
