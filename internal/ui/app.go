package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/csams/transcript-tui/internal/api"
	"github.com/csams/transcript-tui/internal/chat"
	"github.com/csams/transcript-tui/internal/collection"
	"github.com/csams/transcript-tui/internal/config"
	"github.com/csams/transcript-tui/internal/download"
	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/modal"
	"github.com/csams/transcript-tui/internal/overlay"
	"github.com/csams/transcript-tui/internal/preview"
	"github.com/gdamore/tcell/v2"
)

// Surface names
const (
	surfaceHelp    = "help"
	surfaceDetail  = "detail"
	surfacePreview = "preview"
	surfaceChat    = "chat"
)

// Options are the collaborators an App is built from
type Options struct {
	Backend  Backend
	Overlay  *overlay.Store
	Saver    *download.Saver
	Settings *config.Settings

	// Screen is used instead of the terminal when set
	Screen tcell.Screen
}

type App struct {
	screen   tcell.Screen
	quit     chan struct{}
	updates  chan func()
	redraw   chan struct{}
	ctx      context.Context
	cancel   context.CancelFunc
	quitOnce sync.Once
	stopOnce sync.Once

	backend    Backend
	overlay    *overlay.Store
	saver      *download.Saver
	settings   *config.Settings
	collection *collection.Cache
	session    *chat.Session
	renderer   *preview.Renderer
	modals     *modal.Manager

	list *ListView

	statusMessage string
	statusError   bool
	mouseDown     bool
}

func NewApp(opts Options) *App {
	settings := opts.Settings
	if settings == nil {
		settings = &config.Settings{ChatProvider: chat.ProviderQwen}
	}
	ctx, cancel := context.WithCancel(context.Background())

	a := &App{
		screen:     opts.Screen,
		quit:       make(chan struct{}),
		updates:    make(chan func(), 64),
		redraw:     make(chan struct{}, 1),
		ctx:        ctx,
		cancel:     cancel,
		backend:    opts.Backend,
		overlay:    opts.Overlay,
		saver:      opts.Saver,
		settings:   settings,
		collection: collection.NewCache(opts.Backend),
		session:    chat.NewSession(opts.Backend),
		renderer:   preview.NewRenderer(),
		modals:     modal.NewManager(nil),
	}
	if a.overlay == nil {
		a.overlay = overlay.NewStore(settings.HiddenNotesPath())
	}
	if a.saver == nil {
		a.saver = download.NewSaver(settings.DownloadDir)
	}
	a.session.SetOnChange(a.requestRedraw)
	a.list = NewListView(a)
	return a
}

func (a *App) Run() error {
	s := a.screen
	if s == nil {
		var err error
		if s, err = tcell.NewScreen(); err != nil {
			return err
		}
	}
	if err := s.Init(); err != nil {
		return err
	}
	a.screen = s

	defer func() {
		a.Quit()
		a.shutdown()
		s.Fini()
		if r := recover(); r != nil {
			logging.Error().Interface("panic", r).Msg("panic during shutdown")
		}
	}()

	s.SetStyle(styleBase)
	s.EnableMouse()
	s.Clear()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logging.Info().Msg("received interrupt signal, shutting down")
			a.screen.PostEvent(tcell.NewEventInterrupt(nil))
			a.Quit()
		case <-a.quit:
		}
	}()

	a.start()
	go a.handleEvents()
	a.draw()

	<-a.quit
	logging.Info().Msg("shutdown complete")
	return nil
}

// start loads local state and kicks off the first list refresh
func (a *App) start() {
	a.overlay.Load()
	a.list.Refresh()
}

// Quit stops the event loop
func (a *App) Quit() {
	a.quitOnce.Do(func() { close(a.quit) })
}

func (a *App) shutdown() {
	a.stopOnce.Do(func() {
		logging.Info().Msg("shutting down transcript-tui")
		// the chat session, if any, is left for the service to expire
		if id := a.session.SessionID(); id != "" {
			logging.Debug().Str("session", id).Msg("abandoning chat session")
		}
		a.cancel()
	})
}

func (a *App) handleEvents() {
	eventChan := make(chan tcell.Event)
	go func() {
		for {
			ev := a.screen.PollEvent()
			if ev == nil {
				close(eventChan)
				return
			}
			select {
			case eventChan <- ev:
			case <-a.quit:
				return
			}
		}
	}()

	for {
		select {
		case <-a.quit:
			return
		case fn := <-a.updates:
			fn()
			a.modals.Sweep()
			a.draw()
		case <-a.redraw:
			a.draw()
		case ev, ok := <-eventChan:
			if !ok {
				return
			}
			switch ev := ev.(type) {
			case *tcell.EventResize:
				a.screen.Sync()
				a.draw()
			case *tcell.EventKey:
				if a.handleKey(ev) {
					a.draw()
				}
			case *tcell.EventMouse:
				if a.handleMouse(ev) {
					a.draw()
				}
			case *tcell.EventInterrupt:
				return
			}
		}
	}
}

func (a *App) handleKey(ev *tcell.EventKey) bool {
	if ev.Key() == tcell.KeyCtrlC {
		a.Quit()
		return false
	}

	// The topmost surface takes all input
	if top := a.modals.Top(); top != nil {
		handled := false
		if d, ok := top.Surface().(Dialog); ok {
			handled = d.HandleKey(ev)
		}
		if !handled && isCloseKey(ev) {
			a.modals.Dismiss(top, modal.ReasonExplicit)
		}
		a.modals.Sweep()
		return true
	}

	if a.modals.Page().Locked() {
		// nothing is open, so whatever left the lock behind is gone
		a.modals.Sweep()
	}

	if ev.Key() == tcell.KeyRune {
		switch ev.Rune() {
		case 'q', 'Q':
			a.Quit()
			return false
		case '?':
			a.showHelp()
			return true
		}
	}
	return a.list.HandleKey(ev)
}

// handleMouse dismisses the top surface when the first button is pressed
// outside it
func (a *App) handleMouse(ev *tcell.EventMouse) bool {
	pressed := ev.Buttons()&tcell.Button1 != 0
	wasDown := a.mouseDown
	a.mouseDown = pressed
	if !pressed || wasDown {
		return false
	}

	top := a.modals.Top()
	if top == nil {
		return false
	}
	x, y := ev.Position()
	if d, ok := top.Surface().(Dialog); ok && d.Area().contains(x, y) {
		return false
	}
	a.modals.Dismiss(top, modal.ReasonBackdrop)
	return true
}

func isCloseKey(ev *tcell.EventKey) bool {
	return ev.Key() == tcell.KeyEscape || (ev.Key() == tcell.KeyRune && ev.Rune() == 'q')
}

func (a *App) draw() {
	if a.screen == nil {
		return
	}
	w, h := a.screen.Size()
	fillRect(a.screen, 0, 0, w, h, styleBase)

	a.list.Draw(a.screen, rect{x: 0, y: 0, w: w, h: h - 1})
	a.drawStatusBar()

	if a.modals.Page().HasBackdrop() {
		dimScreen(a.screen)
	}
	for _, handle := range a.modals.Visible() {
		if d, ok := handle.Surface().(Dialog); ok {
			d.Draw(a.screen)
		}
	}

	a.screen.Show()
}

func (a *App) drawStatusBar() {
	w, h := a.screen.Size()
	style := tcell.StyleDefault.Background(ColorBgHighlight).Foreground(ColorFg)
	fillRect(a.screen, 0, h-1, w, 1, style)

	x := drawText(a.screen, 0, h-1, style.Foreground(ColorBlue).Bold(true), " "+config.AppName+" ")

	hints := "? help  q quit "
	hintsX := w - textWidth(hints)
	drawText(a.screen, hintsX, h-1, style.Foreground(ColorDimmed), hints)

	if a.statusMessage != "" {
		msgStyle := style.Foreground(ColorYellow)
		if a.statusError {
			msgStyle = style.Foreground(ColorError)
		}
		drawTextClipped(a.screen, x+1, h-1, hintsX-x-2, msgStyle, a.statusMessage)
	}
}

// setStatus shows an informational message in the status bar
func (a *App) setStatus(format string, args ...interface{}) {
	a.statusMessage = fmt.Sprintf(format, args...)
	a.statusError = false
}

// showError logs err and shows it in the status bar
func (a *App) showError(err error, action string) {
	logging.Error().Err(err).Str("action", action).Msg("action failed")
	a.statusMessage = fmt.Sprintf("%s: %s", action, errorText(err))
	a.statusError = true
}

// errorText is the user facing text of err. Service errors carry a message
// meant for the user; anything else is shown in full.
func errorText(err error) string {
	var envelope *api.EnvelopeError
	if errors.As(err, &envelope) {
		return envelope.Error()
	}
	return err.Error()
}

// saveArtifact writes a downloaded file into the download directory
func (a *App) saveArtifact(artifact *api.Artifact) (string, error) {
	return a.saver.Save(artifact.Filename, bytes.NewReader(artifact.Data))
}

func (a *App) showHelp() {
	h := a.modals.GetOrCreate(surfaceHelp, func() modal.Surface { return NewHelpDialog(a) })
	d := h.Surface().(*HelpDialog)
	d.bind(h)
	a.modals.Show(h)
}
