package input

import "sync/atomic"

// Queue hands events from a capture goroutine to the input system. Push
// never blocks; events arriving while the queue is full are dropped.
type Queue struct {
	ch      chan Event
	dropped atomic.Int64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 64
	}
	return &Queue{ch: make(chan Event, size)}
}

// Push enqueues ev and reports whether it was accepted.
func (q *Queue) Push(ev Event) bool {
	select {
	case q.ch <- ev:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// Drain calls fn for every queued event in arrival order and returns how
// many were handled. Events pushed during Drain may be left for the next
// call.
func (q *Queue) Drain(fn func(Event)) int {
	n := 0
	for {
		select {
		case ev := <-q.ch:
			fn(ev)
			n++
		default:
			return n
		}
	}
}

// Dropped returns how many events were lost to a full queue.
func (q *Queue) Dropped() int64 { return q.dropped.Load() }
