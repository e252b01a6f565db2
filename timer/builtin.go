package timer

import "sync"

var (
	builtinTimer *Timer
	once         sync.Once
)

// Default returns the process-wide Timer, building it with the default
// configuration on first use. Its worker is never shut down.
func Default() *Timer {
	once.Do(func() {
		builtinTimer = NewBuilder().Build()
	})
	return builtinTimer
}
