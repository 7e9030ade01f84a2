package preview

import (
	"testing"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/markdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []markdown.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestHTMLToLines(t *testing.T) {
	source := `<h1>Episode <em>notes</em></h1>
<p>Intro with <strong>bold</strong> and <a href="https://example.com">a link</a>.</p>
<ul>
  <li>first</li>
  <li>second
    <ul><li>inner</li></ul>
  </li>
</ul>
<ol><li>one</li><li>two</li></ol>
<pre><code>line 1
line 2
</code></pre>
<blockquote><p>quoted text</p></blockquote>
<hr>
<table><tr><th>Key</th><th>Value</th></tr><tr><td>a</td><td>1</td></tr></table>`

	lines, err := HTMLToLines(source)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"Episode notes",
		"",
		"Intro with bold and a link (https://example.com).",
		"",
		"• first",
		"• second",
		"  ◦ inner",
		"",
		"1. one",
		"2. two",
		"",
		"  line 1",
		"  line 2",
		"",
		"│ quoted text",
		"",
		"────────────────────────────────────────",
		"Key │ Value",
		"a │ 1",
	}, texts(lines))

	assert.Equal(t, markdown.StyleHeader, lines[0].StyleAt(0))
	assert.Equal(t, markdown.StyleItalic, lines[0].StyleAt(8))
	assert.Equal(t, markdown.StyleBold, lines[2].StyleAt(11))
	assert.Equal(t, markdown.StyleLink, lines[2].StyleAt(20))
	assert.Equal(t, markdown.StyleCode, lines[11].StyleAt(3))
	assert.Equal(t, markdown.StyleQuote, lines[14].StyleAt(0))
	assert.Equal(t, markdown.StyleBold, lines[17].StyleAt(0))
}

func TestHTMLNestedListsKeepIndent(t *testing.T) {
	lines, err := HTMLToLines(`<ul><li>top<ol><li>step <b>one</b></li><li>two<ul><li>deep</li></ul></li></ol></li></ul>`)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(lines), 4)

	assert.Equal(t, []string{
		"• top",
		"  1. step one",
		"  2. two",
		"    ▸ deep",
	}, texts(lines[:4]))
	assert.Equal(t, markdown.StyleNormal, lines[1].StyleAt(9))
	assert.Equal(t, markdown.StyleBold, lines[1].StyleAt(10))
}

func TestHTMLLineBreaks(t *testing.T) {
	lines, err := HTMLToLines(`<p>one<br>two</p>`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, texts(lines))
}

func TestIsTranscriptFile(t *testing.T) {
	assert.True(t, IsTranscriptFile("data/transcripts/ep1.json"))
	assert.True(t, IsTranscriptFile(`C:\data\EP1.JSON`))
	assert.False(t, IsTranscriptFile("data/notes/ep1.md"))
	assert.False(t, IsTranscriptFile("json"))
}

func TestRenderTranscript(t *testing.T) {
	r := NewRenderer()
	doc, err := r.Render("data/transcripts/ep1.json", "42", &api.Preview{
		Type:    api.PreviewText,
		Content: `{"segments":[{"start":0,"end":2,"text":"hi","speaker_id":"A"}]}`,
	})
	require.NoError(t, err)
	assert.Equal(t, KindTranscript, doc.Kind)
	require.NotNil(t, doc.Transcript)
	assert.Equal(t, "42", doc.Transcript.TranscriptID())
	assert.Equal(t, []string{"A"}, doc.Transcript.Speakers())
	assert.Equal(t, "ep1.json", doc.Title)
}

func TestRenderMalformedTranscript(t *testing.T) {
	r := NewRenderer()
	_, err := r.Render("t.json", "1", &api.Preview{Type: api.PreviewText, Content: "{oops"})
	assert.Error(t, err)
}

func TestRenderMarkdownPrefersHTML(t *testing.T) {
	r := NewRenderer()
	doc, err := r.Render("notes/n.md", "", &api.Preview{
		Type:    api.PreviewMarkdown,
		Content: "# Source",
		HTML:    "<h1>Rendered</h1>",
	})
	require.NoError(t, err)
	assert.Equal(t, KindDocument, doc.Kind)
	assert.Equal(t, []string{"Rendered"}, texts(doc.Lines))
}

func TestRenderMarkdownWithoutHTML(t *testing.T) {
	r := NewRenderer()
	doc, err := r.Render("notes/n.md", "", &api.Preview{Type: api.PreviewMarkdown, Content: "# Source\n- item"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Source", "• item"}, texts(doc.Lines))
}

func TestRenderPlainText(t *testing.T) {
	r := NewRenderer()
	doc, err := r.Render("notes/n.txt", "", &api.Preview{Type: api.PreviewText, Content: "**not styled**\nline two"})
	require.NoError(t, err)
	assert.Equal(t, []string{"**not styled**", "line two"}, texts(doc.Lines))
}
