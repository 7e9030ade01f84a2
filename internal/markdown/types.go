package markdown

// StyleType represents different text styling types
type StyleType int

const (
	StyleNormal StyleType = iota
	StyleBold
	StyleItalic
	StyleCode
	StyleLink
	StyleHeader
	StyleQuote
)

// StyleRange represents a range of text with a specific style
type StyleRange struct {
	Start int // Rune position in the line
	End   int // Rune position in the line
	Type  StyleType
}

// Line is one rendered line of terminal text
type Line struct {
	Text   string
	Styles []StyleRange
}

// StyleAt returns the style covering rune position pos. Later ranges win.
func (l Line) StyleAt(pos int) StyleType {
	style := StyleNormal
	for _, r := range l.Styles {
		if pos >= r.Start && pos < r.End {
			style = r.Type
		}
	}
	return style
}

// Plain builds unstyled lines from text
func Plain(text string) []Line {
	var lines []Line
	for _, s := range splitLines(text) {
		lines = append(lines, Line{Text: s})
	}
	return lines
}
