package store

import (
	"container/heap"
	"strconv"
	"time"
)

// ttlEvent is a pending expiry: dbIndex/key identify what dies, when is
// the absolute deadline. index backs heap.Fix/heap.Remove.
//
// Adapted from processmgr/scheduler.go's single-id min-heap, generalized
// from a lone int64 PID key to a (db, key) pair so one scheduler instance
// can drive active expiry across every logical database.
type ttlEvent struct {
	dbIndex int
	key     string
	when    time.Time
	index   int
}

type ttlScheduler struct {
	h       ttlEventHeap
	entries map[string]*ttlEvent // "dbIndex\x00key" -> pending event
}

func newTTLScheduler() *ttlScheduler {
	return &ttlScheduler{entries: make(map[string]*ttlEvent)}
}

func ttlEntryKey(dbIndex int, key string) string {
	return strconv.Itoa(dbIndex) + "\x00" + key
}

// push schedules (or reschedules) key in dbIndex to expire at when. A
// zero when cancels any pending expiry.
func (s *ttlScheduler) push(dbIndex int, key string, when time.Time) {
	ek := ttlEntryKey(dbIndex, key)
	if old, ok := s.entries[ek]; ok {
		heap.Remove(&s.h, old.index)
		delete(s.entries, ek)
	}
	if when.IsZero() {
		return
	}
	ev := &ttlEvent{dbIndex: dbIndex, key: key, when: when}
	s.entries[ek] = ev
	heap.Push(&s.h, ev)
}

// remove cancels any pending expiry for key in dbIndex.
func (s *ttlScheduler) remove(dbIndex int, key string) {
	s.push(dbIndex, key, time.Time{})
}

// next returns the soonest pending expiry without removing it.
func (s *ttlScheduler) next() (dbIndex int, key string, when time.Time, ok bool) {
	if len(s.h) == 0 {
		return 0, "", time.Time{}, false
	}
	ev := s.h[0]
	return ev.dbIndex, ev.key, ev.when, true
}

// pop removes the head event unconditionally.
func (s *ttlScheduler) pop() {
	if len(s.h) == 0 {
		return
	}
	ev := heap.Pop(&s.h).(*ttlEvent)
	delete(s.entries, ttlEntryKey(ev.dbIndex, ev.key))
}

type ttlEventHeap []*ttlEvent

func (h ttlEventHeap) Len() int            { return len(h) }
func (h ttlEventHeap) Less(i, j int) bool  { return h[i].when.Before(h[j].when) }
func (h ttlEventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *ttlEventHeap) Push(x any) {
	ev := x.(*ttlEvent)
	ev.index = len(*h)
	*h = append(*h, ev)
}
func (h *ttlEventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	ev.index = -1
	*h = old[:n-1]
	return ev
}
