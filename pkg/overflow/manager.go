package overflow

import (
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/pqueue"
	"github.com/matzehuels/overflow/pkg/turn"
)

// entry is a registered item plus engine bookkeeping.
type entry struct {
	Item
	seq    uint64 // registration sequence, breaks Order ties
	hidden bool
}

// Manager is the overflow-fitting engine. The zero value is not usable;
// create one with New.
type Manager struct {
	onUpdate UpdateFunc
	logger   *log.Logger
	hooks    observability.FitHooks

	sched    turn.Scheduler
	own      *turn.Queue // set when no scheduler was supplied
	debounce *turn.Debouncer

	container Element
	observing bool
	cfg       config

	// reported is the last size passed to Resize since Observe. While set,
	// it stands in for the container's own size.
	reported    Size
	hasReported bool

	visible *pqueue.Queue[string]
	hidden  *pqueue.Queue[string]
	items   map[string]*entry
	groups  map[string]*group
	nextSeq uint64

	// dispatching is set while onUpdate runs; mutations are deferred meanwhile.
	dispatching bool
}

// New creates a Manager that reports partition changes to onUpdate.
// onUpdate may be nil.
func New(onUpdate UpdateFunc, opts ...Option) *Manager {
	o := defaultManagerOptions()
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		onUpdate: onUpdate,
		logger:   o.logger,
		hooks:    o.hooks,
		sched:    o.scheduler,
		cfg:      defaultConfig(),
		items:    make(map[string]*entry),
		groups:   make(map[string]*group),
	}
	if m.sched == nil {
		m.own = turn.NewQueue()
		m.sched = m.own
	}
	m.visible = pqueue.New(m.comparator(evict))
	m.hidden = pqueue.New(m.comparator(restore))
	m.debounce = turn.NewDebouncer(m.sched, m.ForceUpdate)
	return m
}

// Observe starts fitting items into container and applies opts on top of
// the current configuration. It emits an update notification immediately.
// Calling Observe again replaces the container and reconfigures.
func (m *Manager) Observe(container Element, opts ...ObserveOption) {
	if m.dispatching {
		m.sched.Defer(func() { m.Observe(container, opts...) })
		return
	}

	prev := m.cfg.direction
	for _, opt := range opts {
		opt(&m.cfg)
	}
	m.container = container
	m.observing = true
	m.hasReported = false

	if m.cfg.direction != prev {
		m.rebuildQueues()
	}

	m.logger.Debug("observe",
		"axis", m.cfg.axis,
		"direction", m.cfg.direction,
		"padding", m.cfg.padding,
		"minimumVisible", m.cfg.minimumVisible,
		"indicators", len(m.cfg.indicators))

	m.dispatch()
}

// Disconnect stops reacting to Resize. Registered items are kept and
// ForceUpdate keeps working against the last container.
func (m *Manager) Disconnect() {
	m.observing = false
}

// Observing reports whether the manager reacts to Resize.
func (m *Manager) Observing() bool {
	return m.observing
}

// AddItems registers items in the visible queue and schedules a debounced
// pass. Registering an id twice replaces the earlier registration.
func (m *Manager) AddItems(items ...Item) {
	if m.dispatching {
		m.sched.Defer(func() { m.AddItems(items...) })
		return
	}

	for _, it := range items {
		if old, ok := m.items[it.ID]; ok {
			m.forget(it.ID)
			if old.hidden {
				m.cfg.onItemVisibility(old.Item, true)
			}
		}
		e := &entry{Item: it, seq: m.nextSeq}
		m.nextSeq++
		m.items[it.ID] = e
		m.visible.Enqueue(it.ID)

		if it.GroupID != "" {
			g, ok := m.groups[it.GroupID]
			if !ok {
				g = newGroup()
				m.groups[it.GroupID] = g
			}
			g.visible[it.ID] = struct{}{}
		}
	}

	m.UpdateOverflow()
}

// RemoveItem deregisters an item, restores its visibility and schedules a
// debounced pass. Unknown ids are ignored.
func (m *Manager) RemoveItem(id string) {
	if m.dispatching {
		m.sched.Defer(func() { m.RemoveItem(id) })
		return
	}

	e, ok := m.items[id]
	if !ok {
		return
	}
	m.forget(id)
	if e.hidden {
		m.cfg.onItemVisibility(e.Item, true)
	}
	m.UpdateOverflow()
}

// forget removes id from the queues, its group and the registry.
func (m *Manager) forget(id string) {
	e := m.items[id]
	m.visible.Remove(id)
	m.hidden.Remove(id)

	if g, ok := m.groups[e.GroupID]; ok {
		delete(g.visible, id)
		delete(g.hidden, id)
		if g.empty() {
			delete(m.groups, e.GroupID)
		}
	}
	delete(m.items, id)
}

// ForceUpdate runs a fitting pass synchronously against the most recent
// size reported through Resize, or the container's current size when none
// was reported. It does nothing if Observe was never called.
func (m *Manager) ForceUpdate() {
	if m.container == nil {
		return
	}
	if m.dispatching {
		m.UpdateOverflow()
		return
	}
	m.process(m.size().Along(m.cfg.axis) - m.cfg.padding)
}

// size is the container size the next pass fits against.
func (m *Manager) size() Size {
	if m.observing && m.hasReported {
		return m.reported
	}
	return m.container.Size()
}

// Resize runs a fitting pass for a reported container size. Reports are
// ignored before Observe and after Disconnect.
func (m *Manager) Resize(size Size) {
	if !m.observing {
		return
	}
	if m.dispatching {
		m.sched.Defer(func() { m.Resize(size) })
		return
	}
	m.reported, m.hasReported = size, true
	m.process(size.Along(m.cfg.axis) - m.cfg.padding)
}

// UpdateOverflow schedules a ForceUpdate. Any number of calls within one
// scheduling turn collapse into a single pass.
func (m *Manager) UpdateOverflow() {
	m.debounce.Trigger()
}

// Flush runs deferred work queued on the manager's private scheduler and
// returns how many callbacks ran. With WithScheduler it does nothing.
func (m *Manager) Flush() int {
	if m.own == nil {
		return 0
	}
	return m.own.Drain()
}

// Len returns the number of registered items.
func (m *Manager) Len() int {
	return len(m.items)
}

// IsVisible reports whether id is registered and currently visible.
func (m *Manager) IsVisible(id string) bool {
	e, ok := m.items[id]
	return ok && !e.hidden
}

// Visible returns the visible items in sequence order.
func (m *Manager) Visible() []Item {
	return m.sorted(m.visible.Values())
}

// Hidden returns the hidden items in sequence order.
func (m *Manager) Hidden() []Item {
	return m.sorted(m.hidden.Values())
}

// Groups returns the derived state of every group.
func (m *Manager) Groups() map[string]GroupState {
	out := make(map[string]GroupState, len(m.groups))
	for id, g := range m.groups {
		out[id] = g.state()
	}
	return out
}

// Snapshot returns the current partition in the shape of an update
// notification.
func (m *Manager) Snapshot() Update {
	return Update{
		VisibleItems:    m.Visible(),
		HiddenItems:     m.Hidden(),
		GroupVisibility: m.Groups(),
	}
}

// Queues exposes the raw heaps for debugging tools. Callers must not
// mutate them.
func (m *Manager) Queues() (visible, hidden *pqueue.Queue[string]) {
	return m.visible, m.hidden
}

// dispatch sends the current partition to onUpdate.
func (m *Manager) dispatch() {
	if m.onUpdate == nil {
		return
	}
	u := m.Snapshot()
	m.dispatching = true
	defer func() { m.dispatching = false }()
	m.onUpdate(u)
}

// sorted resolves ids to items ordered by position in the sequence.
func (m *Manager) sorted(ids []string) []Item {
	entries := make([]*entry, 0, len(ids))
	for _, id := range ids {
		entries = append(entries, m.items[id])
	}
	slices.SortFunc(entries, func(a, b *entry) int { return a.position(b) })

	out := make([]Item, len(entries))
	for i, e := range entries {
		out[i] = e.Item
	}
	return out
}

// rebuildQueues re-heapifies both queues after the comparators changed.
func (m *Manager) rebuildQueues() {
	vis, hid := m.visible.Values(), m.hidden.Values()
	m.visible = pqueue.New(m.comparator(evict))
	m.hidden = pqueue.New(m.comparator(restore))
	for _, id := range vis {
		m.visible.Enqueue(id)
	}
	for _, id := range hid {
		m.hidden.Enqueue(id)
	}
}
