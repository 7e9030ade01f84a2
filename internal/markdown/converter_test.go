package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

func TestBrTagConversion(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"Simple br tag", "Line 1<br>Line 2", []string{"Line 1", "Line 2"}},
		{"Self-closing br tag with slash", "Line 1<br/>Line 2", []string{"Line 1", "Line 2"}},
		{"Self-closing br tag with space", "Line 1<br />Line 2", []string{"Line 1", "Line 2"}},
		{"BR in uppercase", "Line 1<BR>Line 2<BR/>Line 3", []string{"Line 1", "Line 2", "Line 3"}},
		{"Paragraph tags", "<p>One</p><p>Two</p>", []string{"One", "", "Two"}},
	}

	mc := NewMarkdownConverter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, texts(mc.Convert(tt.input)))
		})
	}
}

func TestBlockElements(t *testing.T) {
	mc := NewMarkdownConverter()
	input := "# Summary\n\n- first\n  - nested\n1. numbered\n> quoted\n\n\n---\nplain"

	lines := mc.Convert(input)

	assert.Equal(t, []string{
		"Summary",
		"",
		"• first",
		"  ◦ nested",
		"1. numbered",
		"│ quoted",
		"",
		"────────────────────────────────────────",
		"plain",
	}, texts(lines))
	assert.Equal(t, StyleHeader, lines[0].StyleAt(0))
	assert.Equal(t, StyleQuote, lines[5].StyleAt(3))
}

func TestHorizontalRules(t *testing.T) {
	mc := NewMarkdownConverter()
	rule := strings.Repeat("─", 40)

	for _, in := range []string{"---", "***", "___", " - - -", "*****"} {
		lines := mc.Convert(in)
		require.Len(t, lines, 1, in)
		assert.Equal(t, rule, lines[0].Text, in)
	}

	// markers must all be the same character
	lines := mc.Convert("-*-")
	require.Len(t, lines, 1)
	assert.Equal(t, "-*-", lines[0].Text)
}

func TestInlineStyles(t *testing.T) {
	mc := NewMarkdownConverter()

	lines := mc.Convert("a **bold** and *it* with `code` see [docs](http://x)")
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "a bold and it with code see docs (http://x)", line.Text)

	assert.Equal(t, StyleNormal, line.StyleAt(0))
	assert.Equal(t, StyleBold, line.StyleAt(2))
	assert.Equal(t, StyleItalic, line.StyleAt(11))
	assert.Equal(t, StyleCode, line.StyleAt(19))
	assert.Equal(t, StyleLink, line.StyleAt(28))
}

func TestSnakeCaseIsNotItalic(t *testing.T) {
	mc := NewMarkdownConverter()
	lines := mc.Convert("call some_function_name now")
	assert.Equal(t, "call some_function_name now", lines[0].Text)
	assert.Empty(t, lines[0].Styles)
}

func TestHeaderKeepsInlineStyles(t *testing.T) {
	mc := NewMarkdownConverter()
	lines := mc.Convert("## The **key** point ##")
	require.Len(t, lines, 1)
	assert.Equal(t, "The key point", lines[0].Text)
	assert.Equal(t, StyleBold, lines[0].StyleAt(4))
	assert.Equal(t, StyleHeader, lines[0].StyleAt(0))
}

func TestCodeFence(t *testing.T) {
	mc := NewMarkdownConverter()
	lines := mc.Convert("before\n```go\nx := **1**\n```\nafter")
	assert.Equal(t, []string{"before", "  x := **1**", "after"}, texts(lines))
	assert.Equal(t, StyleCode, lines[1].StyleAt(4))
}

func TestMultibyteOffsets(t *testing.T) {
	mc := NewMarkdownConverter()
	lines := mc.Convert("摘要 **重点** 内容")
	require.Len(t, lines, 1)
	assert.Equal(t, "摘要 重点 内容", lines[0].Text)
	assert.Equal(t, StyleNormal, lines[0].StyleAt(2))
	assert.Equal(t, StyleBold, lines[0].StyleAt(3))
	assert.Equal(t, StyleBold, lines[0].StyleAt(4))
	assert.Equal(t, StyleNormal, lines[0].StyleAt(5))
}

func TestEntitiesDecoded(t *testing.T) {
	mc := NewMarkdownConverter()
	assert.Equal(t, []string{"Q&A <tips>"}, texts(mc.Convert("Q&amp;A &lt;tips&gt;")))
}

func TestPlain(t *testing.T) {
	assert.Equal(t, []string{"a", "", "b"}, texts(Plain("a\r\n\nb")))
}
