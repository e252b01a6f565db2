package wheel

import (
	"math/rand/v2"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fixkme/gotimer/task"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func collect(dst *[]*task.Task) func(*task.Task) {
	return func(t *task.Task) { *dst = append(*dst, t) }
}

func TestFireNoEarlier(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	tk := task.New()
	w.Set(1, t0.Add(5500*time.Microsecond), tk)

	var fired []*task.Task
	assert.Equal(t, 0, w.Advance(t0.Add(5*time.Millisecond), collect(&fired)))
	assert.Empty(t, fired)
	assert.Equal(t, 1, w.Len())

	assert.Equal(t, 1, w.Advance(t0.Add(6*time.Millisecond), collect(&fired)))
	require.Len(t, fired, 1)
	assert.Same(t, tk, fired[0])
	assert.Equal(t, 0, w.Len())
}

func TestPastDeadlineFiresImmediately(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	w.Advance(t0.Add(10*time.Millisecond), nil)

	w.Set(1, t0.Add(2*time.Millisecond), task.New())
	assert.Equal(t, 1, w.Advance(t0.Add(10*time.Millisecond), nil))
}

func TestCascade(t *testing.T) {
	cases := []struct {
		name  string
		ticks int64
	}{
		{"level0", 1000},
		{"level1", 5000},
		{"level2", 300000},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := New(time.Millisecond, t0, 0)
			when := t0.Add(time.Duration(c.ticks) * time.Millisecond)
			w.Set(7, when, task.New())

			assert.Equal(t, 0, w.Advance(when.Add(-time.Millisecond), nil))
			assert.Equal(t, 1, w.Len())
			assert.Equal(t, 1, w.Advance(when, nil))
			assert.Equal(t, 0, w.Len())
		})
	}
}

func TestMove(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	a, b := task.New(), task.New()
	w.Set(1, t0.Add(10*time.Millisecond), a)

	assert.True(t, w.Move(1, t0.Add(3*time.Millisecond), b))
	var fired []*task.Task
	assert.Equal(t, 1, w.Advance(t0.Add(3*time.Millisecond), collect(&fired)))
	require.Len(t, fired, 1)
	assert.Same(t, b, fired[0])

	// 已触发后再 move, 重新注册
	assert.False(t, w.Move(1, t0.Add(4*time.Millisecond), a))
	assert.Equal(t, 1, w.Len())
	fired = nil
	assert.Equal(t, 1, w.Advance(t0.Add(4*time.Millisecond), collect(&fired)))
	assert.Same(t, a, fired[0])
}

func TestCancel(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	w.Set(1, t0.Add(3*time.Millisecond), task.New())
	w.Set(2, t0.Add(3*time.Millisecond), task.New())

	assert.True(t, w.Cancel(1))
	assert.False(t, w.Cancel(1))
	assert.False(t, w.Cancel(99))
	assert.Equal(t, 1, w.Advance(t0.Add(time.Second), nil))
}

func TestDrain(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	for i := uint64(1); i <= 5; i++ {
		w.Set(i, t0.Add(time.Duration(i)*time.Hour), task.New())
	}
	var drained []*task.Task
	assert.Equal(t, 5, w.Drain(collect(&drained)))
	assert.Len(t, drained, 5)
	assert.Equal(t, 0, w.Len())
	assert.Equal(t, 0, w.Advance(t0.Add(6*time.Hour), nil))
}

func TestHorizon(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	assert.Equal(t, time.Duration(1<<30)*time.Millisecond, w.Horizon())

	huge := New(time.Duration(1<<40), t0, 0)
	assert.Equal(t, time.Duration(1<<63-1), huge.Horizon())
}

func TestRandomDeadlines(t *testing.T) {
	w := New(time.Millisecond, t0, 0)
	r := rand.New(rand.NewPCG(1, 2))

	whens := make(map[*task.Task]time.Time)
	for i := uint64(0); i < 2000; i++ {
		tk := task.New()
		when := t0.Add(time.Duration(r.Int64N(int64(20 * time.Second))))
		whens[tk] = when
		w.Set(i, when, tk)
	}

	now := t0
	remaining := len(whens)
	for remaining > 0 {
		now = now.Add(time.Duration(r.Int64N(int64(50 * time.Millisecond))))
		w.Advance(now, func(tk *task.Task) {
			when, ok := whens[tk]
			require.True(t, ok, "fired twice")
			require.False(t, now.Before(when), "fired early")
			// 精度不差于一个 tick
			require.Less(t, now.Sub(when), 51*time.Millisecond)
			delete(whens, tk)
			remaining--
		})
	}
	assert.Equal(t, 0, w.Len())
}

func TestInvalidTick(t *testing.T) {
	assert.Panics(t, func() { New(0, t0, 0) })
}
