package ui

import (
	"fmt"

	"github.com/csams/transcript-tui/internal/modal"
	"github.com/gdamore/tcell/v2"
)

// Dialog is a surface the App draws above the list and routes keys to while
// it is on top
type Dialog interface {
	modal.Surface
	Draw(s tcell.Screen)
	// HandleKey returns false for keys the dialog ignores; Esc and q then
	// close it
	HandleKey(ev *tcell.EventKey) bool
	// Area is where the dialog was last drawn
	Area() rect
}

type bindable interface {
	Dialog
	bind(h *modal.Handle)
}

// dialogBase holds what every dialog shares
type dialogBase struct {
	app     *App
	handle  *modal.Handle
	visible bool
	area    rect
}

func (d *dialogBase) Show() {
	d.visible = true
}

func (d *dialogBase) Hide() {
	d.visible = false
}

func (d *dialogBase) IsVisible() bool {
	return d.visible
}

func (d *dialogBase) Area() rect {
	return d.area
}

func (d *dialogBase) bind(h *modal.Handle) {
	d.handle = h
}

// isOpen reports whether the dialog is on the stack and visible
func (d *dialogBase) isOpen() bool {
	return d.app.modals.IsOpen(d.handle)
}

func (d *dialogBase) close() {
	d.app.modals.Dismiss(d.handle, modal.ReasonExplicit)
}

// frame positions the dialog in the middle of the screen, draws its border
// and returns the content region
func (d *dialogBase) frame(s tcell.Screen, w, h int, title string) rect {
	d.area = centered(s, w, h)
	drawFrame(s, d.area, title, styleDialog, styleDialog.Foreground(ColorBorder))
	return d.area.inner()
}

// openDynamic registers a one-off dialog and shows it
func (a *App) openDynamic(name string, d bindable, dispose func()) *modal.Handle {
	h := a.modals.Register(name, d, dispose)
	d.bind(h)
	a.modals.Show(h)
	return h
}

// drawHints draws a key hint line at the bottom of a content region
func drawHints(s tcell.Screen, r rect, hints string) {
	drawTextClipped(s, r.x, r.y+r.h-1, r.w, styleDialog.Foreground(ColorDimmed), hints)
}

// scroller tracks the first visible line of a scrolled region. visible is
// updated on every draw.
type scroller struct {
	offset  int
	visible int
	total   int
}

func (sc *scroller) maxOffset() int {
	if m := sc.total - sc.visible; m > 0 {
		return m
	}
	return 0
}

func (sc *scroller) scrollBy(delta int) {
	sc.offset += delta
	sc.clamp()
}

func (sc *scroller) top() {
	sc.offset = 0
}

func (sc *scroller) bottom() {
	sc.offset = sc.maxOffset()
}

func (sc *scroller) clamp() {
	if sc.offset > sc.maxOffset() {
		sc.offset = sc.maxOffset()
	}
	if sc.offset < 0 {
		sc.offset = 0
	}
}

// update records the region size after a draw
func (sc *scroller) update(visible, total int) {
	sc.visible = visible
	sc.total = total
	sc.clamp()
}

// handleKey applies the scrolling keys shared by all scrolled views
func (sc *scroller) handleKey(ev *tcell.EventKey) bool {
	page := sc.visible - 1
	if page < 1 {
		page = 1
	}
	switch ev.Key() {
	case tcell.KeyUp:
		sc.scrollBy(-1)
	case tcell.KeyDown:
		sc.scrollBy(1)
	case tcell.KeyPgUp, tcell.KeyCtrlB:
		sc.scrollBy(-page)
	case tcell.KeyPgDn, tcell.KeyCtrlF:
		sc.scrollBy(page)
	case tcell.KeyHome:
		sc.top()
	case tcell.KeyEnd:
		sc.bottom()
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'j':
			sc.scrollBy(1)
		case 'k':
			sc.scrollBy(-1)
		case 'g':
			sc.top()
		case 'G':
			sc.bottom()
		default:
			return false
		}
	default:
		return false
	}
	return true
}

// indicator describes the scroll position, or "" when everything fits
func (sc *scroller) indicator() string {
	if sc.total <= sc.visible {
		return ""
	}
	last := sc.offset + sc.visible
	if last > sc.total {
		last = sc.total
	}
	return fmt.Sprintf("%d-%d/%d", sc.offset+1, last, sc.total)
}
