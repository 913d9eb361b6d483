package engine

import "sync"

// TickQueue is a run-on-next-tick primitive. Background tasks push
// completions from any goroutine; the host drains the queue once per
// simulation tick on the simulation thread. This boundary is what keeps all
// live-object mutation single-threaded.
type TickQueue struct {
	mu  sync.Mutex
	fns []func()
}

// NewTickQueue returns an empty queue.
func NewTickQueue() *TickQueue {
	return &TickQueue{}
}

// Push schedules fn for the next drain. Safe from any goroutine.
func (q *TickQueue) Push(fn func()) {
	q.mu.Lock()
	q.fns = append(q.fns, fn)
	q.mu.Unlock()
}

// Drain runs everything queued so far, in push order. Functions pushed
// while draining run on the following drain.
func (q *TickQueue) Drain() {
	q.mu.Lock()
	fns := q.fns
	q.fns = nil
	q.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Len reports the number of queued functions.
func (q *TickQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fns)
}
