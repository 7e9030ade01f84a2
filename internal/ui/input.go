package ui

import (
	"unicode"

	"github.com/gdamore/tcell/v2"
)

// LineInput is a single-line text editor with readline-style bindings. It is
// shared by the transcript search box, prompts and the chat input.
type LineInput struct {
	text      []rune
	cursorPos int
}

func NewLineInput() *LineInput {
	return &LineInput{}
}

// Value returns the current text
func (l *LineInput) Value() string {
	return string(l.text)
}

// SetValue sets the text and puts the cursor at the end
func (l *LineInput) SetValue(value string) {
	l.text = []rune(value)
	l.cursorPos = len(l.text)
}

// Clear clears the input
func (l *LineInput) Clear() {
	l.text = nil
	l.cursorPos = 0
}

func (l *LineInput) Cursor() int {
	return l.cursorPos
}

// InsertChar inserts a character at the cursor position
func (l *LineInput) InsertChar(ch rune) {
	l.text = append(l.text[:l.cursorPos], append([]rune{ch}, l.text[l.cursorPos:]...)...)
	l.cursorPos++
}

// InsertString inserts pasted text at the cursor, dropping control characters
func (l *LineInput) InsertString(s string) {
	for _, r := range s {
		if unicode.IsControl(r) {
			continue
		}
		l.InsertChar(r)
	}
}

// DeleteChar deletes the character before the cursor (backspace)
func (l *LineInput) DeleteChar() {
	if l.cursorPos > 0 {
		l.text = append(l.text[:l.cursorPos-1], l.text[l.cursorPos:]...)
		l.cursorPos--
	}
}

// DeleteCharForward deletes the character at the cursor (delete)
func (l *LineInput) DeleteCharForward() {
	if l.cursorPos < len(l.text) {
		l.text = append(l.text[:l.cursorPos], l.text[l.cursorPos+1:]...)
	}
}

func (l *LineInput) MoveCursorLeft() {
	if l.cursorPos > 0 {
		l.cursorPos--
	}
}

func (l *LineInput) MoveCursorRight() {
	if l.cursorPos < len(l.text) {
		l.cursorPos++
	}
}

// MoveCursorStart moves cursor to start (Ctrl+A)
func (l *LineInput) MoveCursorStart() {
	l.cursorPos = 0
}

// MoveCursorEnd moves cursor to end (Ctrl+E)
func (l *LineInput) MoveCursorEnd() {
	l.cursorPos = len(l.text)
}

// DeleteToEnd deletes from cursor to end (Ctrl+K)
func (l *LineInput) DeleteToEnd() {
	l.text = l.text[:l.cursorPos]
}

// DeleteToStart deletes from start to cursor (Ctrl+U)
func (l *LineInput) DeleteToStart() {
	l.text = append([]rune(nil), l.text[l.cursorPos:]...)
	l.cursorPos = 0
}

// DeleteWord deletes the word before cursor (Ctrl+W)
func (l *LineInput) DeleteWord() {
	if l.cursorPos == 0 {
		return
	}
	start := l.cursorPos
	for start > 0 && l.text[start-1] == ' ' {
		start--
	}
	for start > 0 && l.text[start-1] != ' ' {
		start--
	}
	l.text = append(l.text[:start], l.text[l.cursorPos:]...)
	l.cursorPos = start
}

// MoveCursorWordForward moves cursor forward by one word (Alt+F)
func (l *LineInput) MoveCursorWordForward() {
	for l.cursorPos < len(l.text) && l.text[l.cursorPos] != ' ' {
		l.cursorPos++
	}
	for l.cursorPos < len(l.text) && l.text[l.cursorPos] == ' ' {
		l.cursorPos++
	}
}

// MoveCursorWordBackward moves cursor backward by one word (Alt+B)
func (l *LineInput) MoveCursorWordBackward() {
	for l.cursorPos > 0 && l.text[l.cursorPos-1] == ' ' {
		l.cursorPos--
	}
	for l.cursorPos > 0 && l.text[l.cursorPos-1] != ' ' {
		l.cursorPos--
	}
}

// DeleteWordForward deletes the word after cursor (Alt+D)
func (l *LineInput) DeleteWordForward() {
	end := l.cursorPos
	for end < len(l.text) && l.text[end] == ' ' {
		end++
	}
	for end < len(l.text) && l.text[end] != ' ' {
		end++
	}
	l.text = append(l.text[:l.cursorPos], l.text[end:]...)
}

// HandleKey applies an editing key. It reports whether the key was an
// editing key; Enter, Escape and navigation keys are left to the caller.
func (l *LineInput) HandleKey(ev *tcell.EventKey) bool {
	if ev.Modifiers()&tcell.ModAlt != 0 && ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'f':
			l.MoveCursorWordForward()
		case 'b':
			l.MoveCursorWordBackward()
		case 'd':
			l.DeleteWordForward()
		default:
			return false
		}
		return true
	}

	switch ev.Key() {
	case tcell.KeyRune:
		l.InsertChar(ev.Rune())
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		l.DeleteChar()
	case tcell.KeyDelete, tcell.KeyCtrlD:
		l.DeleteCharForward()
	case tcell.KeyLeft, tcell.KeyCtrlB:
		l.MoveCursorLeft()
	case tcell.KeyRight, tcell.KeyCtrlF:
		l.MoveCursorRight()
	case tcell.KeyHome, tcell.KeyCtrlA:
		l.MoveCursorStart()
	case tcell.KeyEnd, tcell.KeyCtrlE:
		l.MoveCursorEnd()
	case tcell.KeyCtrlK:
		l.DeleteToEnd()
	case tcell.KeyCtrlU:
		l.DeleteToStart()
	case tcell.KeyCtrlW:
		l.DeleteWord()
	default:
		return false
	}
	return true
}

// Draw renders the input in width columns, scrolling horizontally so the
// cursor stays visible
func (l *LineInput) Draw(s tcell.Screen, x, y, width int, style tcell.Style, focused bool) {
	if width <= 0 {
		return
	}
	fillRect(s, x, y, width, 1, style)

	// first rune to show so that the cursor fits
	start := 0
	for {
		used := 0
		for _, r := range l.text[start:l.cursorPos] {
			used += runeWidth(r)
		}
		if used < width || start >= l.cursorPos {
			break
		}
		start++
	}

	col := x
	for i := start; i < len(l.text); i++ {
		w := runeWidth(l.text[i])
		if col+w > x+width {
			break
		}
		st := style
		if focused && i == l.cursorPos {
			st = style.Reverse(true)
		}
		s.SetContent(col, y, l.text[i], nil, st)
		col += w
	}
	if focused && l.cursorPos == len(l.text) && col < x+width {
		s.SetContent(col, y, ' ', nil, style.Reverse(true))
	}
}
