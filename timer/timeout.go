package timer

import (
	"context"
	"errors"
	"time"

	"github.com/fixkme/gotimer/errs"
	"github.com/fixkme/gotimer/task"
	"github.com/fixkme/gotimer/worker"
)

// registration is the task currently parked on the worker and the token that
// identifies its wheel entry.
type registration struct {
	task  *task.Task
	token worker.Token
}

// Timeout completes once its instant has been reached. It is owned by one task
// at a time and must not be polled concurrently. Close it (usually with defer)
// to cancel a registration that has not fired.
type Timeout struct {
	timer   *Timer
	when    time.Time
	handle  *registration
	tooLong bool
	closed  bool
	waiter  *task.Task
}

// Timer returns the Timer the Timeout was created from.
func (to *Timeout) Timer() *Timer {
	return to.timer
}

func (to *Timeout) When() time.Time {
	return to.when
}

func (to *Timeout) IsExpired() bool {
	return !to.timer.clock.Now().Before(to.when)
}

// Poll implements task.Future.
func (to *Timeout) Poll(cur *task.Task) (bool, error) {
	if to.IsExpired() {
		return true, nil
	}
	if to.closed {
		return false, errs.TimeoutClosed
	}
	if to.tooLong {
		return false, errs.TooLong.Printf("when %s", to.when.Format(time.RFC3339Nano))
	}

	if to.handle == nil {
		// 尚未向 worker 注册
		token, err := to.timer.worker.SetTimeout(to.when, cur)
		if err != nil {
			return false, yield(cur, err)
		}
		to.handle = &registration{task: cur, token: token}
		return false, nil
	}

	if to.handle.task == cur {
		// 已注册到当前任务, 等待唤醒
		if to.timer.worker.Closed() {
			return false, errs.Shutdown
		}
		return false, nil
	}

	// 被转移到了其他任务, 通知 worker
	if err := to.timer.worker.MoveTimeout(to.handle.token, to.when, cur); err != nil {
		return false, yield(cur, err)
	}
	to.handle = &registration{task: cur, token: to.handle.token}
	return false, nil
}

// yield absorbs overload by resuming the task for an immediate re-poll. Any
// other error is returned to the caller.
func yield(cur *task.Task, err error) error {
	if errors.Is(err, errs.Overloaded) {
		cur.Unpark()
		return nil
	}
	return err
}

// Wait blocks until the Timeout completes or ctx is done.
func (to *Timeout) Wait(ctx context.Context) error {
	if to.waiter == nil {
		to.waiter = task.New()
	}
	return task.Block(ctx, to.waiter, to)
}

// Close cancels the worker registration if one is held. Safe to call more
// than once; only the first call has an effect.
func (to *Timeout) Close() {
	if to.closed {
		return
	}
	to.closed = true
	if h := to.handle; h != nil {
		to.handle = nil
		to.timer.worker.CancelTimeout(h.token, to.when)
	}
}
