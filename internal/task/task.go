package task

import (
	"context"
	"sync/atomic"
)

/*
 * A Task runs one network round trip in the background and hands its result
 * back to whoever started it. Tasks cannot be interrupted once the request is
 * in flight; instead a Task can be discarded, which means its result will be
 * dropped by Deliver rather than applied to a view that has gone away.
 */

type Task[T any] struct {
	Name string

	done      chan struct{}
	discarded atomic.Bool
	value     T
	err       error
}

// Go starts fn in a new goroutine
func Go[T any](ctx context.Context, name string, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{
		Name: name,
		done: make(chan struct{}),
	}
	go func() {
		defer close(t.done)
		t.value, t.err = fn(ctx)
	}()
	return t
}

// Done is closed when the task's function has returned
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes and returns its result
func (t *Task[T]) Wait() (T, error) {
	<-t.done
	return t.value, t.err
}

// Discard marks the task's result as unwanted. It is safe to call at any time,
// including after the task finished.
func (t *Task[T]) Discard() {
	t.discarded.Store(true)
}

func (t *Task[T]) Discarded() bool {
	return t.discarded.Load()
}

// Deliver waits for the result and passes it to apply unless the task was
// discarded in the meantime. It reports whether apply ran.
func (t *Task[T]) Deliver(apply func(T, error)) bool {
	value, err := t.Wait()
	if t.Discarded() {
		return false
	}
	apply(value, err)
	return true
}
