package timer

import (
	"time"

	"github.com/fixkme/gotimer/config"
	"github.com/fixkme/gotimer/wheel"
	"github.com/fixkme/gotimer/worker"
)

const (
	defaultTickDuration    = 100 * time.Millisecond
	defaultChannelCapacity = 128
	defaultInitialCapacity = 256
	defaultMaxCapacity     = 4_194_304
)

// Builder configures the wheel and worker behind a Timer.
type Builder struct {
	tickDuration    time.Duration
	channelCapacity int
	initialCapacity int
	maxCapacity     int
	maxTimeout      time.Duration // 0 表示时间轮的最大范围
	workerName      string
}

func NewBuilder() *Builder {
	return &Builder{
		tickDuration:    defaultTickDuration,
		channelCapacity: defaultChannelCapacity,
		initialCapacity: defaultInitialCapacity,
		maxCapacity:     defaultMaxCapacity,
	}
}

// FromConfig starts from the defaults and applies every non-zero field of conf.
func FromConfig(conf *config.TimerConfig) (*Builder, error) {
	b := NewBuilder()
	if conf == nil {
		return b, nil
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	if conf.TickDuration > 0 {
		b.TickDuration(conf.TickDuration.Std())
	}
	if conf.ChannelCapacity > 0 {
		b.ChannelCapacity(conf.ChannelCapacity)
	}
	if conf.InitialCapacity > 0 {
		b.InitialCapacity(conf.InitialCapacity)
	}
	if conf.MaxCapacity > 0 {
		b.MaxCapacity(conf.MaxCapacity)
	}
	if conf.MaxTimeout > 0 {
		b.MaxTimeout(conf.MaxTimeout.Std())
	}
	b.WorkerName(conf.WorkerName)
	return b, nil
}

// TickDuration sets the wheel granularity. Timeouts fire up to one tick late.
func (b *Builder) TickDuration(d time.Duration) *Builder {
	if d <= 0 {
		panic("timer: tick duration must be positive")
	}
	b.tickDuration = d
	return b
}

// ChannelCapacity bounds the requests queued for the worker before polls
// start backing off with an immediate retry.
func (b *Builder) ChannelCapacity(n int) *Builder {
	if n <= 0 {
		panic("timer: channel capacity must be positive")
	}
	b.channelCapacity = n
	return b
}

func (b *Builder) InitialCapacity(n int) *Builder {
	b.initialCapacity = n
	return b
}

// MaxCapacity bounds live registrations; polls beyond it fail with
// errs.NoCapacity.
func (b *Builder) MaxCapacity(n int) *Builder {
	if n <= 0 {
		panic("timer: max capacity must be positive")
	}
	b.maxCapacity = n
	return b
}

// MaxTimeout bounds Sleep durations; longer sleeps fail with errs.TooLong.
func (b *Builder) MaxTimeout(d time.Duration) *Builder {
	if d <= 0 {
		panic("timer: max timeout must be positive")
	}
	b.maxTimeout = d
	return b
}

func (b *Builder) WorkerName(name string) *Builder {
	b.workerName = name
	return b
}

// Build creates the wheel, starts its worker and returns a Timer bound to it.
func (b *Builder) Build() *Timer {
	wh := wheel.New(b.tickDuration, time.Now(), b.initialCapacity)
	w := worker.Spawn(wh, worker.Options{
		Name:            b.workerName,
		ChannelCapacity: b.channelCapacity,
		MaxCapacity:     b.maxCapacity,
	})
	maxTimeout := wh.Horizon()
	if b.maxTimeout > 0 && b.maxTimeout < maxTimeout {
		maxTimeout = b.maxTimeout
	}
	t := New(w)
	t.maxTimeout = maxTimeout
	return t
}
