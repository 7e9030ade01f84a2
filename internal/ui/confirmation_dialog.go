package ui

import (
	"github.com/gdamore/tcell/v2"
)

type ConfirmationDialog struct {
	dialogBase
	title   string
	message string
	onYes   func()
	onNo    func()
}

// confirm asks a yes/no question. onNo, if set, also runs when the dialog is
// dismissed any other way.
func (a *App) confirm(title, message string, onYes, onNo func()) *ConfirmationDialog {
	c := &ConfirmationDialog{
		dialogBase: dialogBase{app: a},
		title:      title,
		message:    message,
		onYes:      onYes,
		onNo:       onNo,
	}
	a.openDynamic("confirm", c, func() {
		if c.onNo != nil {
			c.onNo()
		}
	})
	return c
}

func (c *ConfirmationDialog) Draw(s tcell.Screen) {
	style := tcell.StyleDefault.Background(ColorRed1).Foreground(ColorBright)
	messageLines := wrapText(c.message, 46)

	c.area = centered(s, 50, len(messageLines)+6)
	drawFrame(s, c.area, "", style, style)
	inner := c.area.inner()

	titleStyle := style.Foreground(ColorYellow).Bold(true)
	titleX := inner.x + (inner.w-textWidth(c.title))/2
	if titleX < inner.x {
		titleX = inner.x
	}
	drawTextClipped(s, titleX, inner.y, inner.w, titleStyle, c.title)

	for i, line := range messageLines {
		if i+2 >= inner.h-1 {
			break
		}
		drawTextClipped(s, inner.x, inner.y+2+i, inner.w, style, line)
	}

	buttonStyle := style.Bold(true)
	buttonsY := inner.y + inner.h - 1
	mid := inner.x + inner.w/2
	drawText(s, mid-6, buttonsY, buttonStyle, "[Y]es")
	drawText(s, mid+2, buttonsY, buttonStyle, "[N]o")
}

func (c *ConfirmationDialog) HandleKey(ev *tcell.EventKey) bool {
	if ev.Key() != tcell.KeyRune {
		return false
	}
	switch ev.Rune() {
	case 'y', 'Y':
		onYes := c.onYes
		c.onNo = nil
		c.close()
		if onYes != nil {
			onYes()
		}
		return true
	case 'n', 'N':
		c.close()
		return true
	}
	return true
}
