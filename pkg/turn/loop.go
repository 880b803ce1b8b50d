package turn

import (
	"context"
	"errors"
	"sync"
)

// ErrStopped is returned when posting to a loop that is no longer running.
var ErrStopped = errors.New("loop stopped")

// Loop runs posted tasks sequentially on the goroutine that calls Run.
//
// After each task the loop drains its deferred queue, so a task and the
// callbacks it deferred form one turn. Post is safe for concurrent use;
// Defer must be called from within a task.
type Loop struct {
	tasks    chan func()
	deferred *Queue
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoop creates a loop whose task channel holds buffer tasks.
func NewLoop(buffer int) *Loop {
	return &Loop{
		tasks:    make(chan func(), buffer),
		deferred: NewQueue(),
		done:     make(chan struct{}),
	}
}

// Post schedules fn to run as its own turn.
// It blocks while the task buffer is full and returns ErrStopped once Run
// has returned.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do posts fn and waits for it to finish, including the callbacks it deferred.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		fn()
		l.deferred.Drain()
		close(finished)
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-l.done:
		return ErrStopped
	}
}

// Defer runs fn at the end of the current turn.
func (l *Loop) Defer(fn func()) {
	l.deferred.Defer(fn)
}

// Run executes tasks until ctx is cancelled. It returns ctx.Err().
// Tasks still buffered when Run returns are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stopOnce.Do(func() { close(l.done) })
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.tasks:
			fn()
			l.deferred.Drain()
		}
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

var _ Scheduler = (*Loop)(nil)
