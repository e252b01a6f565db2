// Package task provides the parked-task handle and the poll contract shared by
// timeouts and intervals.
//
// A Future or Stream never blocks the goroutine polling it. When it cannot make
// progress it remembers the *Task it was polled with and returns not ready; some
// other party later calls Unpark on that task, and the driver polls again.
package task

import (
	"context"

	"github.com/google/uuid"
)

// Task is a resumable handle for one logical computation. Handles compare by
// pointer identity: the same *Task polling twice is the same task.
type Task struct {
	id   uuid.UUID
	wake chan struct{}
}

func New() *Task {
	return &Task{
		id:   uuid.New(),
		wake: make(chan struct{}, 1),
	}
}

func (t *Task) ID() uuid.UUID {
	return t.id
}

func (t *Task) String() string {
	return t.id.String()
}

// Unpark marks the task runnable. It never blocks and repeated calls before the
// task observes the wakeup collapse into one. Unparking a task whose owner has
// gone away is harmless.
func (t *Task) Unpark() {
	select {
	case t.wake <- struct{}{}:
	default:
	}
}

// Woken fires once for each (coalesced) Unpark.
func (t *Task) Woken() <-chan struct{} {
	return t.wake
}

// Future is a single-shot computation.
type Future interface {
	Poll(t *Task) (ready bool, err error)
}

// Stream yields a sequence of items; ready reports one item.
type Stream interface {
	PollNext(t *Task) (ready bool, err error)
}

// Block drives f on the calling goroutine until it completes, fails, or ctx is
// done. A nil t gets a fresh task.
func Block(ctx context.Context, t *Task, f Future) error {
	if t == nil {
		t = New()
	}
	for {
		ready, err := f.Poll(t)
		if err != nil {
			return err
		}
		if ready {
			return nil
		}
		select {
		case <-t.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Next drives s until it yields one item.
func Next(ctx context.Context, t *Task, s Stream) error {
	return Block(ctx, t, FutureFunc(s.PollNext))
}

// FutureFunc adapts a poll function to Future.
type FutureFunc func(t *Task) (bool, error)

func (f FutureFunc) Poll(t *Task) (bool, error) {
	return f(t)
}
