package ui

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// drawText draws text starting at x and returns the column after it
func drawText(s tcell.Screen, x, y int, style tcell.Style, text string) int {
	for _, r := range text {
		s.SetContent(x, y, r, nil, style)
		x += runeWidth(r)
	}
	return x
}

// drawTextClipped draws at most maxWidth columns of text, ending with "..."
// when it had to cut. It returns the column after the last cell drawn.
func drawTextClipped(s tcell.Screen, x, y, maxWidth int, style tcell.Style, text string) int {
	if maxWidth <= 0 {
		return x
	}
	return drawText(s, x, y, style, truncate(text, maxWidth))
}

func runeWidth(r rune) int {
	w := runewidth.RuneWidth(r)
	if w == 0 {
		return 1
	}
	return w
}

func textWidth(text string) int {
	return runewidth.StringWidth(text)
}

func truncate(text string, width int) string {
	if textWidth(text) <= width {
		return text
	}
	if width <= 3 {
		return runewidth.Truncate(text, width, "")
	}
	return runewidth.Truncate(text, width, "...")
}

func fillRect(s tcell.Screen, x, y, w, h int, style tcell.Style) {
	for row := y; row < y+h; row++ {
		for col := x; col < x+w; col++ {
			s.SetContent(col, row, ' ', nil, style)
		}
	}
}

// rect is a screen region
type rect struct {
	x, y, w, h int
}

func (r rect) contains(x, y int) bool {
	return x >= r.x && x < r.x+r.w && y >= r.y && y < r.y+r.h
}

// inner is the region inside the border with one column of margin
func (r rect) inner() rect {
	return rect{x: r.x + 2, y: r.y + 1, w: r.w - 4, h: r.h - 2}
}

// centered returns a w x h region in the middle of the screen, shrunk to fit
func centered(s tcell.Screen, w, h int) rect {
	sw, sh := s.Size()
	if w > sw-2 {
		w = sw - 2
	}
	if h > sh-2 {
		h = sh - 2
	}
	if w < 10 {
		w = sw
	}
	if h < 5 {
		h = sh
	}
	return rect{x: (sw - w) / 2, y: (sh - h) / 2, w: w, h: h}
}

// drawFrame clears r and draws a border with a title
func drawFrame(s tcell.Screen, r rect, title string, style, borderStyle tcell.Style) {
	fillRect(s, r.x, r.y, r.w, r.h, style)
	if r.w < 2 || r.h < 2 {
		return
	}

	right := r.x + r.w - 1
	bottom := r.y + r.h - 1
	for x := r.x + 1; x < right; x++ {
		s.SetContent(x, r.y, '─', nil, borderStyle)
		s.SetContent(x, bottom, '─', nil, borderStyle)
	}
	for y := r.y + 1; y < bottom; y++ {
		s.SetContent(r.x, y, '│', nil, borderStyle)
		s.SetContent(right, y, '│', nil, borderStyle)
	}
	s.SetContent(r.x, r.y, '┌', nil, borderStyle)
	s.SetContent(right, r.y, '┐', nil, borderStyle)
	s.SetContent(r.x, bottom, '└', nil, borderStyle)
	s.SetContent(right, bottom, '┘', nil, borderStyle)

	if title != "" {
		title = " " + truncate(title, r.w-6) + " "
		drawText(s, r.x+2, r.y, borderStyle.Bold(true), title)
	}
}

// dimScreen redraws every cell with a faded foreground. It is the backdrop
// drawn behind open dialogs.
func dimScreen(s tcell.Screen) {
	w, h := s.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			mainc, combc, style, _ := s.GetContent(x, y)
			s.SetContent(x, y, mainc, combc, style.Foreground(ColorFgGutter).Background(ColorBgDark).Bold(false))
		}
	}
}

// wrapText wraps text to fit within the specified display width, keeping
// explicit line breaks
func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		lines = append(lines, wrapLine(paragraph, width)...)
	}
	return lines
}

func wrapLine(text string, width int) []string {
	runes := []rune(text)
	var lines []string
	for _, sp := range wrapSpans(runes, width) {
		lines = append(lines, string(runes[sp.start:sp.end]))
	}
	return lines
}

// span is a half-open range of rune indexes
type span struct {
	start, end int
}

// wrapSpans splits runes into rows of at most width columns, breaking at the
// last space where there is one. The space a row breaks at belongs to no row.
func wrapSpans(runes []rune, width int) []span {
	if width <= 0 || len(runes) == 0 {
		return []span{{0, len(runes)}}
	}

	var spans []span
	lineStart, curWidth, lastSpace := 0, 0, -1
	for i, r := range runes {
		w := runeWidth(r)
		if curWidth+w > width && i > lineStart {
			if lastSpace > lineStart {
				spans = append(spans, span{lineStart, lastSpace})
				lineStart = lastSpace + 1
			} else {
				// no space to break at, e.g. CJK text
				spans = append(spans, span{lineStart, i})
				lineStart = i
			}
			curWidth = runewidth.StringWidth(string(runes[lineStart:i]))
			lastSpace = -1
			for j := lineStart; j < i; j++ {
				if runes[j] == ' ' {
					lastSpace = j
				}
			}
		}
		if r == ' ' {
			lastSpace = i
		}
		curWidth += w
	}
	if lineStart < len(runes) || len(spans) == 0 {
		spans = append(spans, span{lineStart, len(runes)})
	}
	return spans
}
