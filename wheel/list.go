package wheel

import (
	"time"

	"github.com/fixkme/gotimer/task"
)

// entry is one pending deadline. Entries are linked into exactly one slot list.
type entry struct {
	id         uint64     // registration id
	deadline   uint64     // 到期 tick (绝对值)
	when       time.Time  // 到期时间
	task       *task.Task // 到期后唤醒
	prev, next *entry     // 双向链表
}

func (e *entry) removeFromList() bool {
	if e.prev == nil || e.next == nil {
		return false
	}
	e.prev.next = e.next
	e.next.prev = e.prev
	e.prev = nil
	e.next = nil
	return true
}

type list struct {
	root entry // 哨兵
}

func newList() *list {
	l := new(list)
	l.root.prev = &l.root
	l.root.next = &l.root
	return l
}

func (l *list) pushBack(e *entry) {
	tail := l.root.prev
	tail.next = e
	e.prev = tail
	e.next = &l.root
	l.root.prev = e
}

func (l *list) isEmpty() bool {
	return l.root.next == &l.root
}

// popRange 删除并遍历链表中的节点, fn 不能再向本链表插入
func (l *list) popRange(fn func(e *entry)) {
	for !l.isEmpty() {
		e := l.root.next
		e.removeFromList()
		fn(e)
	}
}
