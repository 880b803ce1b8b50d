package overflow

import (
	"cmp"
	"time"

	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/pqueue"
)

// role is the purpose a queue serves in the fitting pass.
type role int

const (
	evict   role = iota // visible queue: candidates for hiding
	restore             // hidden queue: candidates for showing
)

// edge is an end of the item sequence.
type edge int

const (
	earlier edge = iota
	later
)

// edgePreference returns which end of the sequence a queue prefers when
// priorities tie. Eviction and restoration always prefer opposite ends.
func edgePreference(d Direction, r role) edge {
	if (d == End) == (r == evict) {
		return later
	}
	return earlier
}

// position orders entries by sequence position, then registration order.
func (e *entry) position(o *entry) int {
	if c := cmp.Compare(e.Order, o.Order); c != 0 {
		return c
	}
	return cmp.Compare(e.seq, o.seq)
}

// comparator builds the ordering for a queue role. Priority is the primary
// key (ascending for eviction, descending for restoration); the tie-break
// follows edgePreference for the configured direction.
func (m *Manager) comparator(r role) pqueue.CompareFunc[string] {
	return func(a, b string) int {
		ea, eb := m.items[a], m.items[b]

		var c int
		if r == evict {
			c = cmp.Compare(ea.Priority, eb.Priority)
		} else {
			c = cmp.Compare(eb.Priority, ea.Priority)
		}
		if c != 0 {
			return c
		}

		pos := ea.position(eb)
		if edgePreference(m.cfg.direction, r) == later {
			return -pos
		}
		return pos
	}
}

// extent measures an item along the overflow axis.
func (m *Manager) extent(e *entry) float64 {
	if e.Element == nil {
		return 0
	}
	return e.Element.Size().Along(m.cfg.axis)
}

// indicatorExtent sums the overflow indicators along the overflow axis.
func (m *Manager) indicatorExtent() float64 {
	var total float64
	for _, el := range m.cfg.indicators {
		if el != nil {
			total += el.Size().Along(m.cfg.axis)
		}
	}
	return total
}

// hiddenExtent sums the hidden items along the overflow axis.
func (m *Manager) hiddenExtent() float64 {
	var total float64
	for _, id := range m.hidden.Values() {
		total += m.extent(m.items[id])
	}
	return total
}

// process runs one fitting pass against available capacity.
//
// Overflow indicators take up space only while something is hidden.
func (m *Manager) process(available float64) {
	start := time.Now()

	visibleTop, _ := m.visible.Peek()
	hiddenTop, _ := m.hidden.Peek()

	var base float64
	for _, id := range m.visible.Values() {
		base += m.extent(m.items[id])
	}
	indicators := m.indicatorExtent()
	current := func() float64 {
		if m.hidden.Len() > 0 {
			return base + indicators
		}
		return base
	}

	shown, hidden := 0, 0

	for current() < available && m.hidden.Len() > 0 {
		base += m.show()
		shown++
	}

	for current() > available && m.visible.Len() > m.cfg.minimumVisible {
		base -= m.hide()
		hidden++
	}

	// The indicators may be all that keeps the rest out: once everything
	// is shown they are no longer needed.
	if m.hidden.Len() > 0 && base+m.hiddenExtent() <= available {
		for m.hidden.Len() > 0 {
			base += m.show()
			shown++
		}
	}

	newVisibleTop, _ := m.visible.Peek()
	newHiddenTop, _ := m.hidden.Peek()
	changed := newVisibleTop != visibleTop || newHiddenTop != hiddenTop
	extent := current()

	m.logger.Debug("fitting pass",
		"available", available,
		"extent", extent,
		"shown", shown,
		"hidden", hidden,
		"visible", m.visible.Len(),
		"overflow", m.hidden.Len(),
		"changed", changed)

	if changed {
		m.dispatch()
	}

	m.hooks.OnFit(observability.FitEvent{
		Capacity: available,
		Extent:   extent,
		Shown:    shown,
		Hidden:   hidden,
		Visible:  m.visible.Len(),
		Overflow: m.hidden.Len(),
		Changed:  changed,
		Duration: time.Since(start),
	})
}

// show moves the head of the hidden queue to the visible queue and returns
// its extent.
func (m *Manager) show() float64 {
	id := m.hidden.Dequeue()
	m.visible.Enqueue(id)

	e := m.items[id]
	e.hidden = false
	if g, ok := m.groups[e.GroupID]; ok {
		g.markVisible(id)
	}
	m.cfg.onItemVisibility(e.Item, true)
	return m.extent(e)
}

// hide moves the head of the visible queue to the hidden queue and returns
// its extent.
func (m *Manager) hide() float64 {
	id := m.visible.Dequeue()
	m.hidden.Enqueue(id)

	e := m.items[id]
	e.hidden = true
	if g, ok := m.groups[e.GroupID]; ok {
		g.markHidden(id)
	}
	m.cfg.onItemVisibility(e.Item, false)
	return m.extent(e)
}
