package ui

import (
	"fmt"
	"sort"

	"github.com/csams/transcript-tui/internal/transcript"
	"github.com/gdamore/tcell/v2"
)

// SpeakerEditor edits the display names of a transcript's speakers
type SpeakerEditor struct {
	dialogBase
	ids    []string
	counts map[string]int
	inputs []*LineInput
	focus  int
	onSave func(names map[string]string)
}

// editSpeakers opens the editor with one field per speaker, prefilled from
// names. Speakers the service knows but the transcript does not are listed
// last.
func (a *App) editSpeakers(model *transcript.Model, names map[string]string, onSave func(map[string]string)) *SpeakerEditor {
	e := &SpeakerEditor{
		dialogBase: dialogBase{app: a},
		counts:     model.SpeakerCounts(),
		onSave:     onSave,
	}

	seen := make(map[string]bool)
	for _, id := range model.Speakers() {
		if id == transcript.UnknownSpeaker {
			continue
		}
		e.ids = append(e.ids, id)
		seen[id] = true
	}
	var extra []string
	for id := range names {
		if !seen[id] {
			extra = append(extra, id)
		}
	}
	sort.Strings(extra)
	e.ids = append(e.ids, extra...)

	for _, id := range e.ids {
		input := NewLineInput()
		input.SetValue(names[id])
		e.inputs = append(e.inputs, input)
	}

	a.openDynamic("speaker-editor", e, nil)
	if len(e.ids) == 0 {
		a.setStatus("This transcript has no identified speakers")
	}
	return e
}

func (e *SpeakerEditor) Draw(s tcell.Screen) {
	inner := e.frame(s, 64, 2*len(e.ids)+5, "Speaker Names")

	if len(e.ids) == 0 {
		drawText(s, inner.x, inner.y, styleDialog.Foreground(ColorDimmed), "No speakers to name.")
	}
	for i, id := range e.ids {
		y := inner.y + 2*i
		if y+1 >= inner.y+inner.h-1 {
			break
		}
		label := fmt.Sprintf("%s (%d segments)", id, e.counts[id])
		labelStyle := styleDialog.Foreground(ColorDimmed)
		if i == e.focus {
			labelStyle = styleDialog.Foreground(ColorCyan).Bold(true)
		}
		drawTextClipped(s, inner.x, y, inner.w, labelStyle, label)
		e.inputs[i].Draw(s, inner.x, y+1, inner.w, styleDialog.Background(ColorBgHighlight), i == e.focus)
	}
	drawHints(s, inner, "tab/down: next  up: previous  enter: save  esc: cancel")
}

func (e *SpeakerEditor) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyEnter:
		names := make(map[string]string, len(e.ids))
		for i, id := range e.ids {
			names[id] = e.inputs[i].Value()
		}
		e.close()
		if e.onSave != nil && len(names) > 0 {
			e.onSave(names)
		}
		return true
	case tcell.KeyTab, tcell.KeyDown:
		e.moveFocus(1)
		return true
	case tcell.KeyBacktab, tcell.KeyUp:
		e.moveFocus(-1)
		return true
	}
	if len(e.inputs) > 0 {
		e.inputs[e.focus].HandleKey(ev)
	}
	return true
}

func (e *SpeakerEditor) moveFocus(delta int) {
	if len(e.ids) == 0 {
		return
	}
	e.focus = (e.focus + delta + len(e.ids)) % len(e.ids)
}
