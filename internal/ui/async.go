package ui

import (
	"context"

	"github.com/csams/transcript-tui/internal/logging"
	"github.com/csams/transcript-tui/internal/modal"
	"github.com/csams/transcript-tui/internal/task"
)

// post hands fn to the event loop. It must not be called from the event loop
// itself.
func (a *App) post(fn func()) {
	select {
	case a.updates <- fn:
	case <-a.quit:
	}
}

// requestRedraw asks the event loop for a redraw without blocking
func (a *App) requestRedraw() {
	select {
	case a.redraw <- struct{}{}:
	default:
	}
}

// spawn runs fn in the background and applies its result on the event loop.
// The result is dropped if the task was discarded, or if owner is set and is
// no longer open by the time it arrives.
func spawn[T any](a *App, owner *modal.Handle, name string, fn func(ctx context.Context) (T, error), apply func(T, error)) *task.Task[T] {
	t := task.Go(a.ctx, name, fn)
	go func() {
		<-t.Done()
		a.post(func() {
			applied := t.Deliver(func(value T, err error) {
				if owner != nil && !a.modals.IsOpen(owner) {
					logging.Debug().Str("task", t.Name).Str("surface", owner.Name).Msg("surface closed, dropping result")
					return
				}
				apply(value, err)
			})
			if !applied {
				logging.Debug().Str("task", t.Name).Msg("task discarded, dropping result")
			}
		})
	}()
	return t
}

type discarder interface {
	Discard()
}

// taskGroup collects the tasks a surface started so they can be discarded
// together when it closes. It is only used from the event loop.
type taskGroup struct {
	tasks []discarder
}

func (g *taskGroup) add(t discarder) {
	g.tasks = append(g.tasks, t)
}

func (g *taskGroup) discardAll() {
	for _, t := range g.tasks {
		t.Discard()
	}
	g.tasks = nil
}
