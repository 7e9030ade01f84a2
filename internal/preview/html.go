package preview

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/csams/transcript-tui/internal/markdown"
	"github.com/csams/transcript-tui/internal/oops"
)

// HTMLToLines renders server-side HTML (rendered notes) as terminal lines
func HTMLToLines(source string) ([]markdown.Line, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return nil, oops.New(err, "failed to parse preview html")
	}

	r := &htmlRenderer{}
	r.blocks(doc.Find("body").Contents(), 0)
	r.flush()
	return r.finish(), nil
}

type htmlRenderer struct {
	lines  []markdown.Line
	cur    strings.Builder
	styles []markdown.StyleRange
	pos    int
}

func (r *htmlRenderer) blocks(sel *goquery.Selection, depth int) {
	sel.Each(func(_ int, s *goquery.Selection) {
		r.block(s, depth)
	})
}

func (r *htmlRenderer) block(s *goquery.Selection, depth int) {
	switch goquery.NodeName(s) {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.flush()
		start := len(r.lines)
		r.inline(s.Contents(), markdown.StyleNormal)
		r.flush()
		for i := start; i < len(r.lines); i++ {
			line := &r.lines[i]
			whole := markdown.StyleRange{Start: 0, End: utf8.RuneCountInString(line.Text), Type: markdown.StyleHeader}
			line.Styles = append([]markdown.StyleRange{whole}, line.Styles...)
		}
		r.blank()

	case "p":
		r.flush()
		r.inline(s.Contents(), markdown.StyleNormal)
		r.flush()
		r.blank()

	case "ul", "ol":
		r.flush()
		r.list(s, depth)
		if depth == 0 {
			r.blank()
		}

	case "pre":
		r.flush()
		text := strings.TrimRight(s.Text(), "\n")
		for _, line := range strings.Split(text, "\n") {
			text := "  " + line
			r.lines = append(r.lines, markdown.Line{
				Text:   text,
				Styles: []markdown.StyleRange{{Start: 0, End: utf8.RuneCountInString(text), Type: markdown.StyleCode}},
			})
		}
		r.blank()

	case "blockquote":
		r.flush()
		sub := &htmlRenderer{}
		sub.blocks(s.Contents(), depth)
		sub.flush()
		for _, line := range sub.finish() {
			text := "│ " + line.Text
			styles := []markdown.StyleRange{{Start: 0, End: utf8.RuneCountInString(text), Type: markdown.StyleQuote}}
			for _, st := range line.Styles {
				styles = append(styles, markdown.StyleRange{Start: st.Start + 2, End: st.End + 2, Type: st.Type})
			}
			r.lines = append(r.lines, markdown.Line{Text: text, Styles: styles})
		}
		r.blank()

	case "hr":
		r.flush()
		r.lines = append(r.lines, markdown.Line{Text: strings.Repeat("─", 40)})

	case "table":
		r.flush()
		s.Find("tr").Each(func(_ int, tr *goquery.Selection) {
			var cells []string
			header := false
			tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
				header = header || goquery.NodeName(cell) == "th"
				cells = append(cells, collapse(cell.Text()))
			})
			text := strings.Join(cells, " │ ")
			line := markdown.Line{Text: text}
			if header {
				line.Styles = []markdown.StyleRange{{Start: 0, End: utf8.RuneCountInString(text), Type: markdown.StyleBold}}
			}
			r.lines = append(r.lines, line)
		})
		r.blank()

	case "div", "section", "article", "main", "header", "footer", "body":
		r.flush()
		r.blocks(s.Contents(), depth)
		r.flush()

	case "script", "style", "head", "#comment":

	default:
		r.inline(s, markdown.StyleNormal)
	}
}

func (r *htmlRenderer) list(s *goquery.Selection, depth int) {
	ordered := goquery.NodeName(s) == "ol"
	indent := strings.Repeat("  ", depth)
	s.ChildrenFiltered("li").Each(func(i int, li *goquery.Selection) {
		var bullet string
		switch {
		case ordered:
			bullet = indent + strconv.Itoa(i+1) + ". "
		case depth == 0:
			bullet = "• "
		case depth == 1:
			bullet = indent + "◦ "
		default:
			bullet = indent + "▸ "
		}
		r.prefix(bullet)

		var nested []*goquery.Selection
		li.Contents().Each(func(_ int, c *goquery.Selection) {
			switch goquery.NodeName(c) {
			case "ul", "ol":
				nested = append(nested, c)
			case "p":
				r.inline(c.Contents(), markdown.StyleNormal)
			default:
				r.inline(c, markdown.StyleNormal)
			}
		})
		r.flush()
		for _, n := range nested {
			r.list(n, depth+1)
		}
	})
}

// inline writes the text of sel, styling emphasis, code and links
func (r *htmlRenderer) inline(sel *goquery.Selection, style markdown.StyleType) {
	sel.Each(func(_ int, s *goquery.Selection) {
		switch goquery.NodeName(s) {
		case "#text":
			r.write(s.Text(), style)
		case "br":
			r.flush()
		case "strong", "b":
			r.inline(s.Contents(), markdown.StyleBold)
		case "em", "i":
			r.inline(s.Contents(), markdown.StyleItalic)
		case "code":
			r.inline(s.Contents(), markdown.StyleCode)
		case "a":
			r.inline(s.Contents(), markdown.StyleLink)
			if href, ok := s.Attr("href"); ok && href != "" && !strings.HasPrefix(href, "#") {
				r.write(" ("+href+")", style)
			}
		case "#comment", "script", "style":
		default:
			r.inline(s.Contents(), style)
		}
	})
}

// prefix starts a line with text as is, leading indentation included
func (r *htmlRenderer) prefix(text string) {
	r.cur.WriteString(text)
	r.pos += utf8.RuneCountInString(text)
}

// write appends text with HTML whitespace collapsing
func (r *htmlRenderer) write(text string, style markdown.StyleType) {
	text = collapseKeepEdges(text)
	if text == "" {
		return
	}
	if r.cur.Len() == 0 || strings.HasSuffix(r.cur.String(), " ") {
		text = strings.TrimLeft(text, " ")
	}
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return
	}
	if style != markdown.StyleNormal {
		r.styles = append(r.styles, markdown.StyleRange{Start: r.pos, End: r.pos + n, Type: style})
	}
	r.cur.WriteString(text)
	r.pos += n
}

func (r *htmlRenderer) flush() {
	if r.cur.Len() == 0 {
		return
	}
	text := strings.TrimRight(r.cur.String(), " ")
	end := utf8.RuneCountInString(text)
	var styles []markdown.StyleRange
	for _, st := range r.styles {
		if st.Start >= end {
			continue
		}
		if st.End > end {
			st.End = end
		}
		styles = append(styles, st)
	}
	r.lines = append(r.lines, markdown.Line{Text: text, Styles: styles})
	r.cur.Reset()
	r.styles = nil
	r.pos = 0
}

func (r *htmlRenderer) blank() {
	if n := len(r.lines); n > 0 && r.lines[n-1].Text != "" {
		r.lines = append(r.lines, markdown.Line{})
	}
}

func (r *htmlRenderer) finish() []markdown.Line {
	lines := r.lines
	for len(lines) > 0 && lines[len(lines)-1].Text == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func collapse(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// collapseKeepEdges squeezes whitespace runs to one space, keeping a single
// leading or trailing space so adjacent inline nodes stay separated
func collapseKeepEdges(text string) string {
	if text == "" {
		return ""
	}
	inner := collapse(text)
	first, _ := utf8.DecodeRuneInString(text)
	last, _ := utf8.DecodeLastRuneInString(text)
	if inner == "" {
		return " "
	}
	if unicode.IsSpace(first) {
		inner = " " + inner
	}
	if unicode.IsSpace(last) {
		inner += " "
	}
	return inner
}
