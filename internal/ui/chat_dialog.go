package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/modal"
	"github.com/gdamore/tcell/v2"
)

// ChatDialog is the conversation view over the App's chat session
type ChatDialog struct {
	dialogBase
	tasks taskGroup

	podcastID    string
	podcastTitle string
	// starting is set until this dialog's Begin has reported back
	starting bool
	input    *LineInput
	startErr error
	scroll   scroller
	follow   bool
}

func (a *App) chatDialog() *ChatDialog {
	h := a.modals.GetOrCreate(surfaceChat, func() modal.Surface {
		return &ChatDialog{dialogBase: dialogBase{app: a}, input: NewLineInput()}
	})
	c := h.Surface().(*ChatDialog)
	if c.handle == nil {
		c.bind(h)
		h.SetDispose(c.tasks.discardAll)
	}
	return c
}

// openChat starts a new conversation about a podcast. Any earlier
// conversation is dropped. Nothing opens while the session is still waiting
// on the service for an earlier conversation.
func (a *App) openChat(podcastID, podcastTitle, provider string) {
	if state := a.session.State(); state != chat.Ready && state != chat.Uninitialized {
		a.showError(chat.ErrBusy, "Chat not opened")
		return
	}

	c := a.chatDialog()
	c.podcastID = podcastID
	c.podcastTitle = podcastTitle
	c.starting = true
	c.input.Clear()
	c.startErr = nil
	c.follow = true
	a.modals.Show(c.handle)

	c.tasks.add(spawn(a, c.handle, "chat-init", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.session.Begin(ctx, podcastID, provider)
	}, func(_ struct{}, err error) {
		c.starting = false
		if err != nil {
			c.startErr = err
			a.showError(err, "Chat failed to start")
		}
	}))
}

func (c *ChatDialog) send() {
	message := c.input.Value()
	if strings.TrimSpace(message) == "" {
		c.app.setStatus("Type a message first")
		return
	}
	if !c.bound() {
		c.app.setStatus("Chat is starting, wait a moment")
		return
	}
	if c.app.session.State() != chat.Ready {
		c.app.setStatus("Chat is %s, wait a moment", c.app.session.State())
		return
	}
	c.input.Clear()
	c.follow = true

	c.tasks.add(spawn(c.app, c.handle, "chat-send", func(ctx context.Context) (string, error) {
		return c.app.session.Send(ctx, message)
	}, func(_ string, err error) {
		// service errors are already shown in the conversation
		if errors.Is(err, chat.ErrNotReady) || errors.Is(err, chat.ErrBusy) || errors.Is(err, chat.ErrEmptyMessage) {
			c.app.showError(err, "Not sent")
		}
	}))
}

// bound reports whether the session holds this dialog's conversation
func (c *ChatDialog) bound() bool {
	return !c.starting && c.app.session.PodcastID() == c.podcastID
}

func (c *ChatDialog) clear() {
	if !c.bound() {
		c.app.setStatus("Chat is starting, wait a moment")
		return
	}
	c.tasks.add(spawn(c.app, c.handle, "chat-clear", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.app.session.Clear(ctx)
	}, func(_ struct{}, err error) {
		if err != nil {
			c.app.showError(err, "Clear failed")
			return
		}
		c.app.setStatus("Conversation cleared")
	}))
}

func (c *ChatDialog) HandleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape:
		return false
	case tcell.KeyEnter:
		c.send()
		return true
	case tcell.KeyCtrlL:
		c.clear()
		return true
	case tcell.KeyPgUp:
		c.follow = false
		c.scroll.scrollBy(-(c.scroll.visible - 1))
		return true
	case tcell.KeyPgDn:
		c.scroll.scrollBy(c.scroll.visible - 1)
		c.follow = c.scroll.offset >= c.scroll.maxOffset()
		return true
	}
	c.input.HandleKey(ev)
	return true
}

func (c *ChatDialog) Draw(s tcell.Screen) {
	sw, sh := s.Size()
	width := sw - 8
	if width > 100 {
		width = 100
	}
	session := c.app.session
	bound := c.bound()
	title := "Chat: " + c.podcastTitle
	if provider := session.Provider(); bound && provider != "" {
		title += " (" + chat.ProviderLabel(provider) + ")"
	}
	inner := c.frame(s, width, sh-4, title)

	var messages []chat.Message
	if bound {
		messages = session.Messages()
	}
	var rows [][]cell
	switch state := session.State(); {
	case c.startErr != nil && (!bound || state == chat.Uninitialized):
		rows = append(rows, cells("Could not start the conversation: "+errorText(c.startErr), styleDialog.Foreground(ColorError)))
	case !bound || state == chat.Initializing:
		rows = append(rows, cells("Starting conversation...", styleDialog.Foreground(ColorDimmed)))
	case len(messages) == 0:
		rows = append(rows, cells("Ask anything about this transcript.", styleDialog.Foreground(ColorDimmed)))
	}
	for _, m := range messages {
		rows = append(rows, messageRows(m, inner.w)...)
		rows = append(rows, nil)
	}

	visible := inner.h - 3
	c.scroll.update(visible, len(rows))
	if c.follow {
		c.scroll.bottom()
	}
	for i := 0; i < visible && i+c.scroll.offset < len(rows); i++ {
		x := inner.x
		for _, cl := range rows[i+c.scroll.offset] {
			s.SetContent(x, inner.y+i, cl.r, nil, cl.style)
			x += runeWidth(cl.r)
		}
	}

	inputY := inner.y + inner.h - 2
	x := drawText(s, inner.x, inputY, styleDialog.Foreground(ColorCyan).Bold(true), "> ")
	c.input.Draw(s, x, inputY, inner.w-(x-inner.x), styleDialog.Background(ColorBgHighlight), true)

	hints := "enter: send  ctrl-l: clear  pgup/pgdn: scroll  esc: close"
	if bound && session.State() == chat.Sending {
		hints = "waiting for reply...  " + hints
	}
	drawHints(s, inner, hints)
}

// messageRows renders one message with a role label on its first row
func messageRows(m chat.Message, width int) [][]cell {
	var label string
	labelStyle := styleDialog.Bold(true)
	textStyle := styleDialog
	switch m.Role {
	case chat.RoleUser:
		label = "You: "
		labelStyle = labelStyle.Foreground(ColorCyan)
	case chat.RoleAssistant:
		label = "AI: "
		labelStyle = labelStyle.Foreground(ColorMagenta)
	case chat.RolePending:
		label = "AI: "
		labelStyle = labelStyle.Foreground(ColorMagenta)
		textStyle = textStyle.Foreground(ColorDimmed).Italic(true)
	case chat.RoleError:
		label = "Error: "
		labelStyle = labelStyle.Foreground(ColorError)
		textStyle = textStyle.Foreground(ColorError)
	}

	text := m.Text
	if m.Role == chat.RolePending && text == "" {
		text = "thinking..."
	}

	var rows [][]cell
	indent := textWidth(label)
	for i, line := range wrapText(text, width-indent) {
		var row []cell
		if i == 0 {
			row = cells(label, labelStyle)
		} else {
			row = cells(strings.Repeat(" ", indent), styleDialog)
		}
		rows = append(rows, append(row, cells(line, textStyle)...))
	}
	return rows
}
