package errs

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErr(t *testing.T) {
	err := Overloaded.Printf("worker %s", "w1")
	assert.Equal(t, "TIMER_OVERLOADED,worker w1", err.Error())
	assert.True(t, errors.Is(err, Overloaded))
	assert.False(t, errors.Is(err, Shutdown))
	assert.Equal(t, int32(ErrCode_Overloaded), err.Code())
}

func TestWrap(t *testing.T) {
	err := InvalidConfig.Wrap(io.ErrUnexpectedEOF)
	assert.True(t, errors.Is(err, InvalidConfig))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.Equal(t, "INVALID_CONFIG: unexpected EOF", err.Error())

	decorated := err.Print("tick_duration")
	assert.True(t, errors.Is(decorated, io.ErrUnexpectedEOF))
}

func TestWrapError(t *testing.T) {
	require.Nil(t, WrapError(nil))

	plain := errors.New("boom")
	w := WrapError(plain)
	assert.Equal(t, int32(ErrCode_Unknown), w.Code())
	assert.True(t, errors.Is(w, plain))
	assert.Equal(t, "boom", w.Error())

	assert.Same(t, TooLong, WrapError(TooLong))
}
