package turn

import "sync"

// Scheduler defers a callback until the current unit of work completes.
type Scheduler interface {
	Defer(fn func())
}

// Queue is a FIFO of deferred callbacks.
//
// Defer may be called from any goroutine. Drain must only be called by the
// goroutine that owns the component being scheduled.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
}

// NewQueue creates an empty deferred-callback queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Defer appends fn to the queue.
func (q *Queue) Defer(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
}

// Post appends fn to the queue. It never fails and exists so a Queue can
// stand in for a Loop wherever tasks are posted.
func (q *Queue) Post(fn func()) error {
	q.Defer(fn)
	return nil
}

// Len returns the number of pending callbacks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Drain runs pending callbacks in FIFO order until the queue is empty,
// including callbacks deferred while draining. It returns how many ran.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		if len(q.tasks) == 0 {
			q.tasks = nil
			q.mu.Unlock()
			return n
		}
		fn := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()

		fn()
		n++
	}
}

// Ensure Queue implements Scheduler.
var _ Scheduler = (*Queue)(nil)
