// Package wheel implements the hierarchical timing wheel driven by the timer
// worker. A Wheel is owned by a single goroutine and is not safe for
// concurrent use.
package wheel

import (
	"math"
	"time"

	"github.com/fixkme/gotimer/mlog"
	"github.com/fixkme/gotimer/task"
)

const _WHEEL_LEVEL = 4

var (
	_LEVEL_SHIFT = [_WHEEL_LEVEL]uint64{0, 10, 18, 24}
	_LEVEL_SLOTS = [_WHEEL_LEVEL]uint64{1 << 10, 1 << 8, 1 << 6, 1 << 6}
	_LEVEL_MASKS = [_WHEEL_LEVEL]uint64{}
	_LEVEL_TICKS = [_WHEEL_LEVEL]uint64{} // 每层能容纳的最大 tick 跨度
)

func init() {
	for i := 0; i < _WHEEL_LEVEL; i++ {
		_LEVEL_MASKS[i] = _LEVEL_SLOTS[i] - 1
		_LEVEL_TICKS[i] = _LEVEL_SLOTS[i] << _LEVEL_SHIFT[i]
	}
}

// Wheel buckets deadlines by absolute tick number. Level 0 has one slot per
// tick; each higher level covers the whole span of the level below per slot
// and is cascaded down when the lower levels wrap.
type Wheel struct {
	tick    time.Duration
	start   time.Time
	elapsed uint64 // 已推进的 tick 数
	tw      [_WHEEL_LEVEL][]*list
	due     *list // 注册时已到期, 下次 Advance 立即触发
	locs    map[uint64]*entry
}

func New(tick time.Duration, start time.Time, initialCapacity int) *Wheel {
	if tick <= 0 {
		panic("wheel: tick duration must be positive")
	}
	if initialCapacity < 0 {
		initialCapacity = 0
	}
	w := &Wheel{
		tick:  tick,
		start: start,
		due:   newList(),
		locs:  make(map[uint64]*entry, initialCapacity),
	}
	for i := 0; i < _WHEEL_LEVEL; i++ {
		w.tw[i] = make([]*list, _LEVEL_SLOTS[i])
	}
	return w
}

func (w *Wheel) Tick() time.Duration {
	return w.tick
}

// Horizon is the furthest distance a deadline can be placed without being
// parked and re-cascaded through the top level.
func (w *Wheel) Horizon() time.Duration {
	top := _LEVEL_TICKS[_WHEEL_LEVEL-1]
	if w.tick > time.Duration(math.MaxInt64/int64(top)) {
		return time.Duration(math.MaxInt64)
	}
	return w.tick * time.Duration(top)
}

func (w *Wheel) Len() int {
	return len(w.locs)
}

// Set registers id to wake t once when has passed. An existing registration
// under the same id is replaced.
func (w *Wheel) Set(id uint64, when time.Time, t *task.Task) {
	if e, ok := w.locs[id]; ok {
		e.removeFromList()
		delete(w.locs, id)
	}
	e := &entry{id: id}
	w.reset(e, when, t)
	w.locs[id] = e
}

// Move retargets id. When id is no longer present (it fired between the caller
// deciding to move and the request arriving) it is registered again so the
// new task still gets woken. Reports whether id was present.
func (w *Wheel) Move(id uint64, when time.Time, t *task.Task) bool {
	e, ok := w.locs[id]
	if !ok {
		w.Set(id, when, t)
		return false
	}
	e.removeFromList()
	w.reset(e, when, t)
	return true
}

func (w *Wheel) Cancel(id uint64) bool {
	e, ok := w.locs[id]
	if !ok {
		return false
	}
	e.removeFromList()
	delete(w.locs, id)
	return true
}

func (w *Wheel) reset(e *entry, when time.Time, t *task.Task) {
	e.when = when
	e.deadline = w.deadlineOf(when)
	e.task = t
	w.place(e)
}

// deadlineOf 向上取整, 保证不会早于 when 触发
func (w *Wheel) deadlineOf(when time.Time) uint64 {
	if !when.After(w.start) {
		return 0
	}
	d := when.Sub(w.start)
	ticks := d / w.tick
	if d%w.tick != 0 {
		ticks++
	}
	return uint64(ticks)
}

func (w *Wheel) ticksAt(now time.Time) uint64 {
	if !now.After(w.start) {
		return 0
	}
	return uint64(now.Sub(w.start) / w.tick)
}

func (w *Wheel) place(e *entry) {
	if e.deadline <= w.elapsed {
		w.due.pushBack(e)
		return
	}
	delta := e.deadline - w.elapsed
	dl := e.deadline
	level := _WHEEL_LEVEL - 1
	for i := 0; i < _WHEEL_LEVEL; i++ {
		if delta < _LEVEL_TICKS[i] {
			level = i
			break
		}
	}
	if delta >= _LEVEL_TICKS[_WHEEL_LEVEL-1] {
		// 超出时间轮范围, 暂存在最高层, 级联时重新计算
		dl = w.elapsed + _LEVEL_TICKS[_WHEEL_LEVEL-1] - 1
	}
	slot := (dl >> _LEVEL_SHIFT[level]) & _LEVEL_MASKS[level]
	w.slotList(level, slot).pushBack(e)
}

func (w *Wheel) slotList(level int, slot uint64) *list {
	l := w.tw[level][slot]
	if l == nil {
		l = newList()
		w.tw[level][slot] = l
	}
	return l
}

// Advance moves the wheel forward to now, calling fire for the task of every
// entry whose deadline has been reached. Returns the number of entries fired.
func (w *Wheel) Advance(now time.Time, fire func(t *task.Task)) int {
	fired := w.fireList(w.due, fire)
	target := w.ticksAt(now)
	for w.elapsed < target {
		w.elapsed++
		tk := w.elapsed
		// 高层先降级, 再触发第 0 层
		for level := uint64(_WHEEL_LEVEL - 1); level >= 1; level-- {
			if tk&((uint64(1)<<_LEVEL_SHIFT[level])-1) != 0 {
				continue
			}
			slot := (tk >> _LEVEL_SHIFT[level]) & _LEVEL_MASKS[level]
			if l := w.tw[level][slot]; l != nil {
				l.popRange(w.place)
			}
		}
		if l := w.tw[0][tk&_LEVEL_MASKS[0]]; l != nil {
			fired += w.fireList(l, fire)
		}
		fired += w.fireList(w.due, fire)
	}
	return fired
}

func (w *Wheel) fireList(l *list, fire func(t *task.Task)) int {
	n := 0
	var later []*entry
	l.popRange(func(e *entry) {
		if e.deadline > w.elapsed {
			later = append(later, e)
			return
		}
		delete(w.locs, e.id)
		if mlog.IsLevelEnabled(mlog.TraceLevel) {
			mlog.Tracef("wheel fire id:%d, when:%s, tick:%d, task:%s", e.id, e.when.Format(time.RFC3339Nano), w.elapsed, e.task)
		}
		n++
		if fire != nil {
			fire(e.task)
		}
	})
	for _, e := range later {
		mlog.Debugf("wheel adjust id:%d, deadline:%d, tick:%d", e.id, e.deadline, w.elapsed)
		w.place(e)
	}
	return n
}

// Drain removes every entry, handing each task to fn.
func (w *Wheel) Drain(fn func(t *task.Task)) int {
	n := len(w.locs)
	for id, e := range w.locs {
		e.removeFromList()
		delete(w.locs, id)
		if fn != nil {
			fn(e.task)
		}
	}
	return n
}
