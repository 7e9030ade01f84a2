package markdown

import (
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

// MarkdownConverter turns note markdown into styled terminal lines
type MarkdownConverter struct {
	// Pre-compiled regex patterns for performance
	inlinePattern     *regexp.Regexp
	headerPattern     *regexp.Regexp
	listItemPattern   *regexp.Regexp
	blockquotePattern *regexp.Regexp
	rulePattern       *regexp.Regexp
	fencePattern      *regexp.Regexp
	htmlTagPattern    *regexp.Regexp
}

// NewMarkdownConverter creates a new markdown converter with compiled patterns
func NewMarkdownConverter() *MarkdownConverter {
	return &MarkdownConverter{
		// groups: 1,2 bold; 3 code; 4,5 link; 6,7 italic
		inlinePattern: regexp.MustCompile(
			"\\*\\*([^*]+)\\*\\*|__([^_]+)__" +
				"|`([^`]+)`" +
				`|\[([^\]]+)\]\(([^)]+)\)` +
				`|\*([^*\s][^*]*)\*|\b_([^_]+)_\b`),
		headerPattern:     regexp.MustCompile(`^(#{1,6})\s+(.+?)\s*#*$`),
		listItemPattern:   regexp.MustCompile(`^(\s*)([-*+]|\d+\.)\s+(.+)$`),
		blockquotePattern: regexp.MustCompile(`^>\s?(.*)$`),
		rulePattern:       regexp.MustCompile(`^\s*(?:-(?:\s*-){2,}|\*(?:\s*\*){2,}|_(?:\s*_){2,})\s*$`),
		fencePattern:      regexp.MustCompile("^\\s*(```|~~~)"),
		htmlTagPattern:    regexp.MustCompile(`(?i)<(/?)(br|p|b|strong|i|em)\s*/?>`),
	}
}

// Convert renders markdown source. Blank line runs collapse to one.
func (mc *MarkdownConverter) Convert(text string) []Line {
	text = mc.processHTML(html.UnescapeString(text))

	var lines []Line
	inFence := false
	blank := false
	for _, raw := range splitLines(text) {
		if mc.fencePattern.MatchString(raw) {
			inFence = !inFence
			continue
		}
		if inFence {
			lines = append(lines, styled("  "+raw, StyleCode))
			blank = false
			continue
		}

		if strings.TrimSpace(raw) == "" {
			if !blank && len(lines) > 0 {
				lines = append(lines, Line{})
			}
			blank = true
			continue
		}
		blank = false
		lines = append(lines, mc.convertLine(raw))
	}

	// trailing blank
	if n := len(lines); n > 0 && lines[n-1].Text == "" {
		lines = lines[:n-1]
	}
	return lines
}

func (mc *MarkdownConverter) convertLine(raw string) Line {
	switch {
	case mc.rulePattern.MatchString(raw):
		return Line{Text: strings.Repeat("─", 40)}

	case mc.headerPattern.MatchString(raw):
		m := mc.headerPattern.FindStringSubmatch(raw)
		line := mc.inline("", m[2])
		line.Styles = append([]StyleRange{{Start: 0, End: utf8.RuneCountInString(line.Text), Type: StyleHeader}}, line.Styles...)
		return line

	case mc.listItemPattern.MatchString(raw):
		m := mc.listItemPattern.FindStringSubmatch(raw)
		// Determine nesting level
		level := len(strings.ReplaceAll(m[1], "\t", "  ")) / 2
		if level > 2 {
			level = 2
		}
		var bullet string
		switch {
		case m[2] != "-" && m[2] != "*" && m[2] != "+":
			bullet = strings.Repeat("  ", level) + m[2] + " "
		case level == 0:
			bullet = "• "
		case level == 1:
			bullet = "  ◦ "
		default:
			bullet = "    ▸ "
		}
		return mc.inline(bullet, m[3])

	case mc.blockquotePattern.MatchString(raw):
		m := mc.blockquotePattern.FindStringSubmatch(raw)
		line := mc.inline("│ ", m[1])
		line.Styles = append([]StyleRange{{Start: 0, End: utf8.RuneCountInString(line.Text), Type: StyleQuote}}, line.Styles...)
		return line

	default:
		return mc.inline("", raw)
	}
}

// inline applies bold, italic, code and link markup to text, after prefix
func (mc *MarkdownConverter) inline(prefix, text string) Line {
	var b strings.Builder
	var styles []StyleRange
	b.WriteString(prefix)
	pos := utf8.RuneCountInString(prefix)

	write := func(s string, style StyleType) {
		n := utf8.RuneCountInString(s)
		if style != StyleNormal && n > 0 {
			styles = append(styles, StyleRange{Start: pos, End: pos + n, Type: style})
		}
		b.WriteString(s)
		pos += n
	}

	last := 0
	for _, m := range mc.inlinePattern.FindAllStringSubmatchIndex(text, -1) {
		write(text[last:m[0]], StyleNormal)
		group := func(i int) string {
			if m[2*i] < 0 {
				return ""
			}
			return text[m[2*i]:m[2*i+1]]
		}
		switch {
		case m[2] >= 0:
			write(group(1), StyleBold)
		case m[4] >= 0:
			write(group(2), StyleBold)
		case m[6] >= 0:
			write(group(3), StyleCode)
		case m[8] >= 0:
			write(group(4), StyleLink)
			write(" ("+group(5)+")", StyleNormal)
		case m[12] >= 0:
			write(group(6), StyleItalic)
		case m[14] >= 0:
			write(group(7), StyleItalic)
		}
		last = m[1]
	}
	write(text[last:], StyleNormal)

	return Line{Text: b.String(), Styles: styles}
}

// processHTML maps the few inline tags notes contain to markdown
func (mc *MarkdownConverter) processHTML(text string) string {
	return mc.htmlTagPattern.ReplaceAllStringFunc(text, func(tag string) string {
		m := mc.htmlTagPattern.FindStringSubmatch(tag)
		closing := m[1] == "/"
		switch strings.ToLower(m[2]) {
		case "br":
			return "\n"
		case "p":
			if closing {
				return "\n\n"
			}
			return ""
		case "b", "strong":
			return "**"
		default:
			return "*"
		}
	})
}

func styled(text string, style StyleType) Line {
	return Line{
		Text:   text,
		Styles: []StyleRange{{Start: 0, End: utf8.RuneCountInString(text), Type: style}},
	}
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}
