package resize

import (
	"sync"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/matzehuels/overflow/pkg/overflow"
)

// Notifier publishes size changes to subscribers.
type Notifier interface {
	// Subscribe registers fn and returns a function that removes it.
	// fn may be called from any goroutine.
	Subscribe(fn func(overflow.Size)) (cancel func())
}

// Source is a Notifier whose sizes are set by hand.
//
// New subscribers receive the current size immediately if one was set.
type Source struct {
	nextID      atomic.Uint64
	subscribers *xsync.Map[uint64, func(overflow.Size)]

	mu   sync.RWMutex
	size overflow.Size
	set  bool
}

// NewSource creates a Source with no size.
func NewSource() *Source {
	return &Source{subscribers: xsync.NewMap[uint64, func(overflow.Size)]()}
}

// Subscribe implements Notifier.
func (s *Source) Subscribe(fn func(overflow.Size)) func() {
	id := s.nextID.Add(1)
	s.subscribers.Store(id, fn)

	if size, ok := s.Size(); ok {
		fn(size)
	}
	return func() { s.subscribers.Delete(id) }
}

// Set records size and publishes it to every subscriber.
func (s *Source) Set(size overflow.Size) {
	s.mu.Lock()
	s.size, s.set = size, true
	s.mu.Unlock()

	s.subscribers.Range(func(_ uint64, fn func(overflow.Size)) bool {
		fn(size)
		return true
	})
}

// Size returns the last size set and whether one was set.
func (s *Source) Size() (overflow.Size, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, s.set
}

// Subscribers returns the number of active subscriptions.
func (s *Source) Subscribers() int {
	return s.subscribers.Size()
}

var _ Notifier = (*Source)(nil)
