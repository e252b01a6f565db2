package timer

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/fixkme/gotimer/task"
)

// Interval is an endless stream of notifications. Each gap is drawn from
// [min, max] and measured from the moment the previous notification was
// observed, so gaps never fall below min.
type Interval struct {
	timeout     *Timeout
	minDuration time.Duration
	maxDuration time.Duration
	waiter      *task.Task
}

// NewInterval builds an Interval whose first notification is timeout. It
// panics if max < min.
func NewInterval(timeout *Timeout, min, max time.Duration) *Interval {
	if max < min {
		panic("timer: interval max duration is less than min duration")
	}
	return &Interval{
		timeout:     timeout,
		minDuration: min,
		maxDuration: max,
	}
}

// PollNext implements task.Stream. Errors from the current Timeout are
// returned unchanged and the stream does not advance.
func (in *Interval) PollNext(cur *task.Task) (bool, error) {
	ready, err := in.timeout.Poll(cur)
	if err != nil || !ready {
		return false, err
	}
	t := in.timeout.Timer()
	in.timeout.Close()
	in.timeout = t.Sleep(nextDuration(in.minDuration, in.maxDuration))
	return true, nil
}

// Next blocks until the next notification or until ctx is done.
func (in *Interval) Next(ctx context.Context) error {
	if in.waiter == nil {
		in.waiter = task.New()
	}
	return task.Next(ctx, in.waiter, in)
}

// Close cancels the pending notification.
func (in *Interval) Close() {
	in.timeout.Close()
}

const nanosPerSec = int64(time.Second)

// nextDuration draws a duration from [min, max] in two stages: whole seconds
// first, then the nanosecond part within the chosen second. This is not
// uniform over the range: when the range spans several seconds, the first and
// last second only offer part of their sub-second spread yet are picked as
// often as any full second.
//
// It panics if max < min or min is negative.
func nextDuration(min, max time.Duration) time.Duration {
	if max < min {
		panic("timer: next duration max is less than min")
	}
	if min < 0 {
		panic("timer: next duration min is negative")
	}
	minSecs, minNanos := int64(min/time.Second), int64(min%time.Second)
	maxSecs, maxNanos := int64(max/time.Second), int64(max%time.Second)

	secs := minSecs
	if minSecs != maxSecs {
		secs = minSecs + rand.Int64N(maxSecs-minSecs+1)
	}

	var nanos int64
	switch {
	case minNanos == maxNanos:
		nanos = minNanos
	case minSecs == maxSecs:
		// 同一秒内, 上下界都要约束
		nanos = minNanos + rand.Int64N(maxNanos-minNanos+1)
	case secs == minSecs:
		nanos = minNanos + rand.Int64N(nanosPerSec-minNanos)
	case secs == maxSecs:
		nanos = rand.Int64N(maxNanos + 1)
	default:
		nanos = rand.Int64N(nanosPerSec)
	}
	return time.Duration(secs)*time.Second + time.Duration(nanos)
}
