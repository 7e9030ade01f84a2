package ui

import (
	"fmt"
	"strings"

	"github.com/csams/transcript-tui/internal/modal"
	"github.com/csams/transcript-tui/internal/models"
	"github.com/gdamore/tcell/v2"
)

// LoadingDialog is shown while a blocking action runs. Hiding it does not
// stop the action.
type LoadingDialog struct {
	dialogBase
	message string
	sent    int64
	total   int64
}

func (a *App) showLoading(message string) *LoadingDialog {
	l := &LoadingDialog{dialogBase: dialogBase{app: a}, message: message}
	a.openDynamic("loading", l, nil)
	return l
}

// SetProgress updates the transfer progress shown under the message
func (l *LoadingDialog) SetProgress(sent, total int64) {
	l.sent = sent
	l.total = total
}

// finish closes the dialog if it is still open
func (l *LoadingDialog) finish() {
	if l.isOpen() {
		l.app.modals.Dismiss(l.handle, modal.ReasonProgrammatic)
	}
}

func (l *LoadingDialog) Draw(s tcell.Screen) {
	inner := l.frame(s, 50, 7, "Working")
	drawTextClipped(s, inner.x, inner.y, inner.w, styleDialog, l.message)

	if l.total > 0 {
		percent := float64(l.sent) / float64(l.total)
		if percent > 1 {
			percent = 1
		}
		label := fmt.Sprintf(" %3.0f%% %s/%s", percent*100, models.FormatFileSize(l.sent), models.FormatFileSize(l.total))
		barWidth := inner.w - textWidth(label)
		if barWidth > 0 {
			filled := int(percent * float64(barWidth))
			x := drawText(s, inner.x, inner.y+2, styleDialog.Foreground(ColorGreen), strings.Repeat("█", filled))
			x = drawText(s, x, inner.y+2, styleDialog.Foreground(ColorFgGutter), strings.Repeat("░", barWidth-filled))
			drawText(s, x, inner.y+2, styleDialog, label)
		}
	}
	drawHints(s, inner, "esc: hide (keeps running)")
}

func (l *LoadingDialog) HandleKey(ev *tcell.EventKey) bool {
	return ev.Key() != tcell.KeyEscape
}
