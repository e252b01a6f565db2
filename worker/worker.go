// Package worker runs the goroutine that owns a timing wheel. Callers reach it
// only through a bounded request channel; every request is non-blocking and
// reports errs.Overloaded instead of waiting when the channel is full.
package worker

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"golang.org/x/time/rate"

	"github.com/fixkme/gotimer/errs"
	"github.com/fixkme/gotimer/mlog"
	"github.com/fixkme/gotimer/task"
	"github.com/fixkme/gotimer/wheel"
)

// Token identifies one registration inside a worker's wheel. It is only
// meaningful to the worker that minted it.
type Token struct {
	owner xid.ID
	seq   uint64
}

func (t Token) String() string {
	return fmt.Sprintf("%s/%d", t.owner, t.seq)
}

type Options struct {
	Name            string
	ChannelCapacity int // 请求通道容量, 满了返回 Overloaded
	MaxCapacity     int // 同时存在的注册上限, <=0 不限制
}

type Worker struct {
	id      xid.ID
	name    string
	seq     atomic.Uint64
	pending atomic.Int64
	maxCap  int64
	taskch  chan func()
	wheel   *wheel.Wheel // 只在 run 协程中访问

	mu      sync.RWMutex // 保护 closed 与投递之间的竞争
	closed  atomic.Bool
	started atomic.Bool
	quit    chan struct{}
	done    chan struct{}

	warn *rate.Limiter
}

func New(wh *wheel.Wheel, opts Options) *Worker {
	if opts.ChannelCapacity <= 0 {
		panic("worker: channel capacity must be positive")
	}
	w := &Worker{
		id:     xid.New(),
		name:   opts.Name,
		maxCap: int64(opts.MaxCapacity),
		taskch: make(chan func(), opts.ChannelCapacity),
		wheel:  wh,
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
		warn:   rate.NewLimiter(rate.Every(time.Second), 1),
	}
	if w.name == "" {
		w.name = "timer-" + w.id.String()
	}
	return w
}

// Spawn creates a worker and starts its goroutine.
func Spawn(wh *wheel.Wheel, opts Options) *Worker {
	w := New(wh, opts)
	w.Start()
	return w
}

func (w *Worker) Start() {
	if w.closed.Load() || !w.started.CompareAndSwap(false, true) {
		return
	}
	mlog.Infof("timer worker %s started, tick:%s, capacity:%d", w.name, w.wheel.Tick(), cap(w.taskch))
	go w.run()
}

func (w *Worker) ID() xid.ID {
	return w.id
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Closed() bool {
	return w.closed.Load()
}

// Pending approximates the number of live registrations.
func (w *Worker) Pending() int {
	return int(w.pending.Load())
}

// SetTimeout asks the worker to unpark t once when has passed.
func (w *Worker) SetTimeout(when time.Time, t *task.Task) (Token, error) {
	if w.maxCap > 0 && w.pending.Load() >= w.maxCap {
		return Token{}, errs.NoCapacity.Printf("worker %s, max %d", w.name, w.maxCap)
	}
	token := Token{owner: w.id, seq: w.seq.Add(1)}
	w.pending.Add(1)
	err := w.pushTask(func() {
		w.wheel.Set(token.seq, when, t)
		mlog.Tracef("timer %s set %s, when:%s, task:%s", w.name, token, when.Format(time.RFC3339Nano), t)
	})
	if err != nil {
		w.pending.Add(-1)
		return Token{}, err
	}
	return token, nil
}

// MoveTimeout retargets an existing registration to a new instant and task.
func (w *Worker) MoveTimeout(token Token, when time.Time, t *task.Task) error {
	if token.owner != w.id {
		mlog.Warnf("timer %s ignore move of foreign token %s", w.name, token)
		return nil
	}
	return w.pushTask(func() {
		if !w.wheel.Move(token.seq, when, t) {
			// 已经触发过, 重新注册
			w.pending.Add(1)
		}
		mlog.Tracef("timer %s move %s, when:%s, task:%s", w.name, token, when.Format(time.RFC3339Nano), t)
	})
}

// CancelTimeout is fire-and-forget: when the request cannot be queued the
// registration simply fires later into a task nobody waits on.
func (w *Worker) CancelTimeout(token Token, when time.Time) {
	if token.owner != w.id {
		mlog.Warnf("timer %s ignore cancel of foreign token %s", w.name, token)
		return
	}
	err := w.pushTask(func() {
		if w.wheel.Cancel(token.seq) {
			w.pending.Add(-1)
		}
	})
	if err != nil {
		mlog.Debugf("timer %s drop cancel %s (when:%s): %v", w.name, token, when.Format(time.RFC3339Nano), err)
	}
}

// Shutdown stops the worker. Queued requests are applied, then every pending
// registration is woken so its owner can observe errs.Shutdown. Idempotent.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed.Load() {
		w.mu.Unlock()
		<-w.done
		return
	}
	w.closed.Store(true)
	close(w.quit)
	w.mu.Unlock()

	if !w.started.Load() {
		w.drain()
		close(w.done)
		return
	}
	<-w.done
}

func (w *Worker) pushTask(f func()) error {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed.Load() {
		return errs.Shutdown.Printf("worker %s", w.name)
	}
	select {
	case w.taskch <- f:
		return nil
	default:
		if w.warn.Allow() {
			mlog.Warnf("timer worker %s overloaded, channel capacity %d", w.name, cap(w.taskch))
		}
		return errs.Overloaded
	}
}

func (w *Worker) run() {
	defer close(w.done)
	tick := w.wheel.Tick()
	tickTimer := time.NewTimer(tick)
	defer tickTimer.Stop()
	for {
		select {
		case <-w.quit:
			w.drain()
			return
		case <-tickTimer.C:
			w.advance(time.Now())
			tickTimer.Reset(tick)
		case fn := <-w.taskch:
			fn()
		}
	}
}

func (w *Worker) advance(now time.Time) {
	if n := w.wheel.Advance(now, unpark); n > 0 {
		w.pending.Add(int64(-n))
	}
}

func (w *Worker) drain() {
loop:
	for {
		select {
		case fn := <-w.taskch:
			fn()
		default:
			break loop
		}
	}
	n := w.wheel.Drain(unpark)
	w.pending.Store(0)
	mlog.Infof("timer worker %s stopped, woke %d pending", w.name, n)
}

func unpark(t *task.Task) {
	t.Unpark()
}
