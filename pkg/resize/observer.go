package resize

import (
	"sync"

	"github.com/matzehuels/overflow/pkg/overflow"
)

// Poster runs tasks on the goroutine that owns a Manager.
// turn.Loop and turn.Queue implement it.
type Poster interface {
	Post(fn func()) error
}

// Observer feeds size reports from a Notifier into a Manager.
type Observer struct {
	m      *overflow.Manager
	poster Poster
	cancel func()

	mu      sync.Mutex
	latest  overflow.Size
	pending bool
	closed  bool
}

// Observe subscribes to n and applies reported sizes to m through p.
// The Manager must already be observing a container; reports only reach it
// while it is.
func Observe(n Notifier, m *overflow.Manager, p Poster) *Observer {
	o := &Observer{m: m, poster: p}
	o.cancel = n.Subscribe(o.report)
	return o
}

// report records size and posts a flush unless one is already queued.
func (o *Observer) report(size overflow.Size) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.latest = size
	if o.pending {
		return
	}
	if err := o.poster.Post(o.flush); err == nil {
		o.pending = true
	}
}

// flush runs on the Manager's goroutine.
func (o *Observer) flush() {
	o.mu.Lock()
	size, closed := o.latest, o.closed
	o.pending = false
	o.mu.Unlock()

	if !closed {
		o.m.Resize(size)
	}
}

// Close unsubscribes and disconnects the Manager. Reports still queued are
// dropped.
func (o *Observer) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	o.cancel()
	return o.poster.Post(o.m.Disconnect)
}
