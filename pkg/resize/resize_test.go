package resize

import (
	"sync"
	"testing"

	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/turn"
)

type fixed overflow.Size

func (f fixed) Size() overflow.Size { return overflow.Size(f) }

func newManager(t *testing.T, q *turn.Queue) *overflow.Manager {
	t.Helper()
	m := overflow.New(nil, overflow.WithScheduler(q))
	m.Observe(fixed{Width: 1000}, overflow.WithPadding(0))
	for _, id := range []string{"a", "b", "c", "d"} {
		m.AddItems(overflow.Item{ID: id, Element: fixed{Width: 25}})
	}
	q.Drain()
	return m
}

func TestSourceSubscribe(t *testing.T) {
	s := NewSource()
	if _, ok := s.Size(); ok {
		t.Fatal("new source reports a size")
	}

	var got []float64
	cancel := s.Subscribe(func(size overflow.Size) { got = append(got, size.Width) })
	s.Set(overflow.Size{Width: 10})
	s.Set(overflow.Size{Width: 20})

	if s.Subscribers() != 1 {
		t.Errorf("Subscribers() = %d, want 1", s.Subscribers())
	}
	cancel()
	s.Set(overflow.Size{Width: 30})

	if len(got) != 2 || got[0] != 10 || got[1] != 20 {
		t.Errorf("got %v, want [10 20]", got)
	}
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() after cancel = %d", s.Subscribers())
	}
}

func TestSourceReplaysCurrentSize(t *testing.T) {
	s := NewSource()
	s.Set(overflow.Size{Width: 42})

	var got overflow.Size
	s.Subscribe(func(size overflow.Size) { got = size })
	if got.Width != 42 {
		t.Errorf("late subscriber got %v, want width 42", got)
	}
}

func TestObserverCoalescesBurst(t *testing.T) {
	q := turn.NewQueue()
	m := newManager(t, q)
	s := NewSource()
	o := Observe(s, m, q)
	defer o.Close()

	for _, w := range []float64{10, 80, 30, 50} {
		s.Set(overflow.Size{Width: w})
	}
	if q.Len() != 1 {
		t.Fatalf("burst posted %d tasks, want 1", q.Len())
	}
	q.Drain()

	// Only the final report (50) is applied.
	if got := len(m.Visible()); got != 2 {
		t.Errorf("%d visible, want 2", got)
	}

	s.Set(overflow.Size{Width: 1000})
	q.Drain()
	if got := len(m.Visible()); got != 4 {
		t.Errorf("%d visible after second turn, want 4", got)
	}
}

func TestObserverClose(t *testing.T) {
	q := turn.NewQueue()
	m := newManager(t, q)
	s := NewSource()
	o := Observe(s, m, q)

	s.Set(overflow.Size{Width: 10})
	if err := o.Close(); err != nil {
		t.Fatalf("Close() = %v", err)
	}
	if err := o.Close(); err != nil {
		t.Fatalf("second Close() = %v", err)
	}
	q.Drain()

	if m.Observing() {
		t.Error("manager still observing after Close")
	}
	if got := len(m.Visible()); got != 4 {
		t.Errorf("queued report applied after Close: %d visible", got)
	}
	if s.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Close", s.Subscribers())
	}
}

func TestObserverOnLoop(t *testing.T) {
	loop := turn.NewLoop(16)
	m := overflow.New(nil, overflow.WithScheduler(loop))
	s := NewSource()

	ctx := t.Context()
	go loop.Run(ctx)

	if err := loop.Do(ctx, func() {
		m.Observe(fixed{Width: 1000}, overflow.WithPadding(0))
		for _, id := range []string{"a", "b", "c", "d"} {
			m.AddItems(overflow.Item{ID: id, Element: fixed{Width: 25}})
		}
	}); err != nil {
		t.Fatal(err)
	}

	o := Observe(s, m, loop)
	defer o.Close()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set(overflow.Size{Width: float64(i)})
		}()
	}
	wg.Wait()
	s.Set(overflow.Size{Width: 75})

	var visible int
	if err := loop.Do(ctx, func() { visible = len(m.Visible()) }); err != nil {
		t.Fatal(err)
	}
	if visible != 3 {
		t.Errorf("%d visible, want 3", visible)
	}
}
