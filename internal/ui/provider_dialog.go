package ui

import (
	"fmt"

	"github.com/csams/transcript-tui/internal/chat"
	"github.com/gdamore/tcell/v2"
)

// ProviderDialog picks the AI provider for a note or a chat
type ProviderDialog struct {
	dialogBase
	title    string
	selected int
	onSelect func(provider string)
}

func (a *App) chooseProvider(title string, onSelect func(provider string)) *ProviderDialog {
	p := &ProviderDialog{
		dialogBase: dialogBase{app: a},
		title:      title,
		onSelect:   onSelect,
	}
	for i, provider := range chat.Providers {
		if provider == a.settings.ChatProvider {
			p.selected = i
		}
	}
	a.openDynamic("provider", p, nil)
	return p
}

func (p *ProviderDialog) Draw(s tcell.Screen) {
	inner := p.frame(s, 44, len(chat.Providers)+5, p.title)
	for i, provider := range chat.Providers {
		style := styleDialog
		prefix := "  "
		if i == p.selected {
			style = styleSelected.Bold(true)
			prefix = "> "
		}
		fillRect(s, inner.x, inner.y+i, inner.w, 1, style)
		drawTextClipped(s, inner.x, inner.y+i, inner.w, style, fmt.Sprintf("%s%d  %s", prefix, i+1, chat.ProviderLabel(provider)))
	}
	drawHints(s, inner, "enter: choose  esc: cancel")
}

func (p *ProviderDialog) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyUp:
		p.move(-1)
		return true
	case tcell.KeyDown:
		p.move(1)
		return true
	case tcell.KeyEnter:
		p.choose(p.selected)
		return true
	case tcell.KeyRune:
		switch r := ev.Rune(); {
		case r == 'k':
			p.move(-1)
			return true
		case r == 'j':
			p.move(1)
			return true
		case r >= '1' && r <= '9':
			if idx := int(r - '1'); idx < len(chat.Providers) {
				p.choose(idx)
			}
			return true
		}
	}
	return false
}

func (p *ProviderDialog) move(delta int) {
	p.selected = (p.selected + delta + len(chat.Providers)) % len(chat.Providers)
}

func (p *ProviderDialog) choose(idx int) {
	provider := chat.Providers[idx]
	p.close()
	if p.onSelect != nil {
		p.onSelect(provider)
	}
}
