// Package timer hands out cheap, independently cancellable timeouts and
// jittered interval streams for poll-driven computations.
//
// All deadlines of a Timer live in one timing wheel owned by a background
// worker goroutine. A Timeout talks to that worker only when it has to: once
// to register, again if it is polled from a different task, and once more to
// cancel if it is closed before firing.
package timer

import (
	"time"

	"github.com/fixkme/gotimer/task"
	"github.com/fixkme/gotimer/worker"
)

// Scheduler is the worker protocol consumed by Timeout. *worker.Worker
// implements it.
type Scheduler interface {
	SetTimeout(when time.Time, t *task.Task) (worker.Token, error)
	MoveTimeout(token worker.Token, when time.Time, t *task.Task) error
	CancelTimeout(token worker.Token, when time.Time)
	Closed() bool
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// Timer is a factory for Timeouts sharing one worker. A *Timer may be shared
// freely between goroutines.
type Timer struct {
	worker     Scheduler
	clock      Clock
	maxTimeout time.Duration // 0 不限制
}

// New wraps an already running scheduler.
func New(s Scheduler) *Timer {
	return &Timer{worker: s, clock: realClock{}}
}

// WithClock returns a copy of t reading the current time from c.
func (t *Timer) WithClock(c Clock) *Timer {
	cp := *t
	cp.clock = c
	return &cp
}

func (t *Timer) Now() time.Time {
	return t.clock.Now()
}

// MaxTimeout is the longest Sleep accepted, zero meaning unlimited.
func (t *Timer) MaxTimeout() time.Duration {
	return t.maxTimeout
}

// SetTimeout returns a Timeout completing once when has been reached. The
// Timeout is not registered with the worker until it is first polled.
func (t *Timer) SetTimeout(when time.Time) *Timeout {
	return &Timeout{
		timer: t,
		when:  when,
	}
}

// Sleep returns a Timeout completing d from now. A d beyond MaxTimeout makes
// the Timeout fail with errs.TooLong when polled.
func (t *Timer) Sleep(d time.Duration) *Timeout {
	to := t.SetTimeout(t.clock.Now().Add(d))
	if t.maxTimeout > 0 && d > t.maxTimeout {
		to.tooLong = true
	}
	return to
}

// Interval yields a notification every d.
func (t *Timer) Interval(d time.Duration) *Interval {
	return NewInterval(t.Sleep(d), d, d)
}

// IntervalJitter yields notifications separated by durations drawn from
// [min, max]. It panics if max < min.
func (t *Timer) IntervalJitter(min, max time.Duration) *Interval {
	return NewInterval(t.Sleep(nextDuration(min, max)), min, max)
}

// Shutdown stops the underlying worker when it supports stopping. Every
// Timer sharing the worker is affected.
func (t *Timer) Shutdown() {
	if s, ok := t.worker.(interface{ Shutdown() }); ok {
		s.Shutdown()
	}
}
