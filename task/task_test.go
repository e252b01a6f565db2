package task

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnparkCoalesces(t *testing.T) {
	tk := New()
	tk.Unpark()
	tk.Unpark()
	tk.Unpark()

	select {
	case <-tk.Woken():
	default:
		t.Fatal("expected wakeup")
	}
	select {
	case <-tk.Woken():
		t.Fatal("wakeups should coalesce")
	default:
	}
}

func TestIdentity(t *testing.T) {
	a, b := New(), New()
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, a.ID().String(), a.String())
}

func TestBlockReady(t *testing.T) {
	polls := 0
	var seen *Task
	f := FutureFunc(func(tk *Task) (bool, error) {
		polls++
		seen = tk
		if polls < 3 {
			// 模拟外部唤醒
			go tk.Unpark()
			return false, nil
		}
		return true, nil
	})

	tk := New()
	require.NoError(t, Block(context.Background(), tk, f))
	assert.Equal(t, 3, polls)
	assert.Same(t, tk, seen)
}

func TestBlockError(t *testing.T) {
	boom := errors.New("boom")
	err := Block(context.Background(), nil, FutureFunc(func(*Task) (bool, error) {
		return false, boom
	}))
	assert.ErrorIs(t, err, boom)
}

func TestBlockContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := Block(ctx, nil, FutureFunc(func(*Task) (bool, error) {
		return false, nil
	}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type countdown int

func (c *countdown) PollNext(tk *Task) (bool, error) {
	if *c == 0 {
		return true, nil
	}
	*c--
	tk.Unpark()
	return false, nil
}

func TestNext(t *testing.T) {
	c := countdown(2)
	require.NoError(t, Next(context.Background(), nil, &c))
	assert.Equal(t, countdown(0), c)
}
