package ui

import (
	"github.com/gdamore/tcell/v2"
)

type HelpDialog struct {
	dialogBase
	scroll scroller
}

func NewHelpDialog(a *App) *HelpDialog {
	return &HelpDialog{dialogBase: dialogBase{app: a}}
}

func (h *HelpDialog) Show() {
	h.visible = true
	h.scroll.top()
}

func (h *HelpDialog) Draw(s tcell.Screen) {
	helpLines := helpContent()

	maxLineWidth := 0
	for _, line := range helpLines {
		if w := textWidth(line); w > maxLineWidth {
			maxLineWidth = w
		}
	}
	_, screenHeight := s.Size()
	inner := h.frame(s, maxLineWidth+6, screenHeight-4, "Help - Keybindings")

	visibleLines := inner.h - 1
	h.scroll.update(visibleLines, len(helpLines))
	for i := 0; i < visibleLines && i+h.scroll.offset < len(helpLines); i++ {
		line := helpLines[i+h.scroll.offset]
		style := styleDialog
		if line != "" && line[0] != ' ' {
			style = style.Foreground(ColorYellow).Bold(true)
		}
		drawTextClipped(s, inner.x, inner.y+i, inner.w, style, line)
	}

	hint := "Press Esc or ? to close this help dialog"
	if pos := h.scroll.indicator(); pos != "" {
		hint = "j/k to scroll, Esc to close  " + pos
	}
	drawHints(s, inner, hint)
}

func (h *HelpDialog) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyRune && ev.Rune() == '?' {
		h.close()
		return true
	}
	if h.scroll.handleKey(ev) {
		return true
	}
	// Esc and q close
	return ev.Key() != tcell.KeyEscape && !(ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
}

func helpContent() []string {
	return []string{
		"Podcast List:",
		"  j / k         Move down/up",
		"  Ctrl+F / B    Page down/up",
		"  g / G         Go to top/bottom",
		"  Enter         Open details",
		"  c             Cycle category filter",
		"  r             Refresh list",
		"  a             Submit a media URL",
		"  u             Upload a local file",
		"  d             Delete selected podcast",
		"  X             Delete everything",
		"",
		"Details:",
		"  Enter / p     Preview selected transcript or note",
		"  D             Download selected file",
		"  h / H         Hide selected note / restore hidden notes",
		"  g / G         Generate AI note / rule engine note",
		"  R / C         Rename / set category",
		"  t             Chat about this podcast",
		"  r             Reload",
		"",
		"Transcript Preview:",
		"  /             Search (Enter or Esc to leave the box)",
		"  1-9 / 0       Toggle a speaker / all speakers",
		"  e / E / s     Export as text / markdown / subtitles",
		"  l / T         Toggle speaker labels / timestamps in exports",
		"  n             Edit speaker names",
		"  D             Download the raw transcript",
		"",
		"Chat:",
		"  Enter         Send message",
		"  Ctrl+L        Clear conversation",
		"  PgUp / PgDn   Scroll history",
		"",
		"Other:",
		"  ?             Show this help dialog",
		"  Esc           Close the top dialog",
		"  click outside Close the top dialog",
		"  q             Close dialog / quit application",
	}
}
