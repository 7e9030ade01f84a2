package ui

import (
	"github.com/csams/transcript-tui/internal/models"
	"github.com/gdamore/tcell/v2"
)

// PromptDialog asks for one line of text, optionally with a content type
type PromptDialog struct {
	dialogBase
	title       string
	label       string
	input       *LineInput
	withType    bool
	contentType models.ContentType
	onSubmit    func(value string, contentType models.ContentType)
}

// prompt opens a text prompt prefilled with initial. When withType is set,
// Tab switches between podcast and documentary.
func (a *App) prompt(title, label, initial string, withType bool, onSubmit func(string, models.ContentType)) *PromptDialog {
	p := &PromptDialog{
		dialogBase:  dialogBase{app: a},
		title:       title,
		label:       label,
		input:       NewLineInput(),
		withType:    withType,
		contentType: models.ContentPodcast,
		onSubmit:    onSubmit,
	}
	p.input.SetValue(initial)
	a.openDynamic("prompt", p, nil)
	return p
}

func (p *PromptDialog) Draw(s tcell.Screen) {
	height := 7
	if p.withType {
		height = 8
	}
	inner := p.frame(s, 70, height, p.title)

	drawTextClipped(s, inner.x, inner.y, inner.w, styleDialog.Foreground(ColorDimmed), p.label)
	p.input.Draw(s, inner.x, inner.y+1, inner.w, styleSelected, true)

	hints := "enter: ok  esc: cancel"
	if p.withType {
		x := drawText(s, inner.x, inner.y+3, styleDialog, "Type: ")
		for _, ct := range []models.ContentType{models.ContentPodcast, models.ContentDocumentary} {
			style := styleDialog.Foreground(ColorDimmed)
			if ct == p.contentType {
				style = styleDialog.Foreground(ColorCyan).Bold(true)
			}
			x = drawText(s, x, inner.y+3, style, "["+ct.Label()+"]")
			x++
		}
		hints = "enter: ok  tab: type  esc: cancel"
	}
	drawHints(s, inner, hints)
}

func (p *PromptDialog) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEnter:
		value := p.input.Value()
		p.close()
		if p.onSubmit != nil {
			p.onSubmit(value, p.contentType)
		}
		return true
	case tcell.KeyTab:
		if p.withType {
			if p.contentType == models.ContentPodcast {
				p.contentType = models.ContentDocumentary
			} else {
				p.contentType = models.ContentPodcast
			}
		}
		return true
	case tcell.KeyEscape:
		return false
	}
	p.input.HandleKey(ev)
	return true
}
