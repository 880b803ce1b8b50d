package overflow

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/turn"
)

// box is a test element with a fixed size that records visibility toggles.
type box struct {
	w, h    float64
	shown   bool
	toggles int
}

func (b *box) Size() Size { return Size{Width: b.w, Height: b.h} }
func (b *box) SetVisible(visible bool) { b.shown = visible; b.toggles++ }

// recorder counts update notifications and keeps the last one.
type recorder struct {
	calls int
	last  Update
}

func (r *recorder) onUpdate(u Update) {
	r.calls++
	r.last = u
}

// row registers len(priorities) items of width 40 with ids "0", "1", ...
func row(m *Manager, priorities ...int) []*box {
	boxes := make([]*box, len(priorities))
	items := make([]Item, len(priorities))
	for i, p := range priorities {
		boxes[i] = &box{w: 40, h: 20, shown: true}
		items[i] = Item{ID: strconv.Itoa(i), Element: boxes[i], Priority: p}
	}
	m.AddItems(items...)
	return boxes
}

func visibleIDs(m *Manager) []string { return ids(m.Visible()) }
func hiddenIDs(m *Manager) []string { return ids(m.Hidden()) }

func TestFitScenarios(t *testing.T) {
	tests := []struct {
		name        string
		width       float64
		height      float64
		priorities  []int
		opts        []ObserveOption
		wantVisible []string
		wantHidden  []string
	}{
		{
			name:        "EqualPrioritiesEvictTrailing",
			width:       200,
			priorities:  []int{0, 0, 0, 0, 0, 0, 0, 0},
			wantVisible: []string{"0", "1", "2", "3"},
			wantHidden:  []string{"4", "5", "6", "7"},
		},
		{
			name:        "MinimumVisibleFloor",
			width:       80,
			priorities:  []int{0, 0, 0, 0, 0, 0, 0, 0},
			opts:        []ObserveOption{WithPadding(0), WithMinimumVisible(5)},
			wantVisible: []string{"0", "1", "2", "3", "4"},
			wantHidden:  []string{"5", "6", "7"},
		},
		{
			name:        "LowestPriorityEvictedFirst",
			width:       200,
			priorities:  []int{2, 3, 6, 1, 4, 5, 0, 7},
			wantVisible: []string{"2", "4", "5", "7"},
			wantHidden:  []string{"0", "1", "3", "6"},
		},
		{
			name:        "StartDirectionEvictsLeading",
			width:       200,
			priorities:  []int{0, 0, 0, 0, 0, 0, 0, 0},
			opts:        []ObserveOption{WithDirection(Start)},
			wantVisible: []string{"4", "5", "6", "7"},
			wantHidden:  []string{"0", "1", "2", "3"},
		},
		{
			name:        "VerticalAxisUsesHeight",
			width:       1000,
			height:      130,
			priorities:  []int{0, 0, 0, 0, 0, 0, 0, 0},
			opts:        []ObserveOption{WithAxis(Vertical)},
			wantVisible: []string{"0", "1", "2", "3", "4", "5"},
			wantHidden:  []string{"6", "7"},
		},
		{
			name:        "EverythingFits",
			width:       1000,
			priorities:  []int{0, 1, 2},
			wantVisible: []string{"0", "1", "2"},
			wantHidden:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(nil)
			m.Observe(&box{w: tt.width, h: tt.height}, tt.opts...)
			row(m, tt.priorities...)
			m.Flush()

			if diff := cmp.Diff(tt.wantVisible, visibleIDs(m)); diff != "" {
				t.Errorf("visible mismatch (-want +got):\n%s", diff)
			}
			if diff := cmp.Diff(tt.wantHidden, hiddenIDs(m)); diff != "" {
				t.Errorf("hidden mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFitNotifiesOnChange(t *testing.T) {
	var r recorder
	m := New(r.onUpdate)
	m.Observe(&box{w: 200})
	if r.calls != 1 {
		t.Fatalf("Observe: calls = %d, want 1", r.calls)
	}

	row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	if r.calls != 1 {
		t.Fatalf("AddItems ran a pass synchronously")
	}
	m.Flush()
	if r.calls != 2 {
		t.Fatalf("after Flush: calls = %d, want 2", r.calls)
	}
	if got := r.last.OverflowCount(); got != 4 {
		t.Errorf("OverflowCount() = %d, want 4", got)
	}
	if !r.last.HasOverflow() || !r.last.IsVisible("3") || r.last.IsVisible("4") {
		t.Errorf("unexpected update %v / %v", r.last.VisibleIDs(), r.last.HiddenIDs())
	}
}

func TestFitIsIdempotent(t *testing.T) {
	for _, priorities := range [][]int{
		{0, 0, 0, 0, 0, 0, 0, 0},
		{2, 3, 6, 1, 4, 5, 0, 7},
	} {
		var r recorder
		m := New(r.onUpdate)
		m.Observe(&box{w: 200})
		row(m, priorities...)
		m.Flush()

		before := r.calls
		wantVisible := visibleIDs(m)
		for range 3 {
			m.ForceUpdate()
		}
		if r.calls != before {
			t.Errorf("%v: repeated passes notified %d times", priorities, r.calls-before)
		}
		if diff := cmp.Diff(wantVisible, visibleIDs(m)); diff != "" {
			t.Errorf("%v: partition drifted (-want +got):\n%s", priorities, diff)
		}
	}
}

func TestPartitionInvariant(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 500})
	row(m, 5, 1, 4, 2, 3, 0, 6, 9, 8, 7)
	m.Flush()

	for _, width := range []float64{500, 50, 120, 0, 250, 410, 90, 1000} {
		m.Resize(Size{Width: width})

		v, h := m.Queues()
		if v.Len()+h.Len() != m.Len() {
			t.Fatalf("width %v: %d visible + %d hidden != %d items", width, v.Len(), h.Len(), m.Len())
		}
		seen := map[string]bool{}
		for _, id := range append(v.Values(), h.Values()...) {
			if seen[id] {
				t.Fatalf("width %v: %s in both queues", width, id)
			}
			seen[id] = true
		}
		if !v.Valid() || !h.Valid() {
			t.Fatalf("width %v: heap property violated", width)
		}

		// Every visible item outranks every hidden one.
		minVisible, maxHidden := math.MaxInt, math.MinInt
		for _, it := range m.Visible() {
			minVisible = min(minVisible, it.Priority)
		}
		for _, it := range m.Hidden() {
			maxHidden = max(maxHidden, it.Priority)
		}
		if len(m.Hidden()) > 0 && len(m.Visible()) > 0 && maxHidden > minVisible {
			t.Errorf("width %v: hidden priority %d above visible %d", width, maxHidden, minVisible)
		}
	}
}

func TestResizeGrowsAndShrinks(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 1000})
	row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	m.Flush()

	steps := []struct {
		width float64
		want  int
	}{
		{1000, 8},
		{200, 4},
		{130, 3},
		{330, 8},
		{329, 7},
		{10, 0},
	}
	for _, s := range steps {
		m.Resize(Size{Width: s.width})
		if got := len(m.Visible()); got != s.want {
			t.Errorf("Resize(%v): %d visible, want %d", s.width, got, s.want)
		}
	}
}

func TestPassesUseLastReportedSize(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 200})
	row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	m.Flush()

	m.Resize(Size{Width: 1000})
	m.AddItems(Item{ID: "x", Element: &box{w: 40}, Order: 8})
	m.Flush()
	if got := len(m.Visible()); got != 9 {
		t.Errorf("after add: %d visible, want 9 (hidden %v)", got, hiddenIDs(m))
	}

	m.RemoveItem("0")
	m.Flush()
	if got := len(m.Visible()); got != 8 {
		t.Errorf("after remove: %d visible, want 8", got)
	}

	// A new Observe makes the container authoritative again.
	m.Observe(&box{w: 200})
	m.ForceUpdate()
	if got := len(m.Visible()); got != 4 {
		t.Errorf("after re-observe: %d visible, want 4", got)
	}
}

func TestOverflowIndicators(t *testing.T) {
	tests := []struct {
		name       string
		width      float64
		indicator  float64
		wantHidden []string
	}{
		// Nothing is hidden, so the indicator takes no space.
		{"IndicatorUnusedWhenAllFit", 210, 30, []string{}},
		{"WideIndicatorUnusedWhenAllFit", 210, 50, []string{}},
		// With one item hidden the indicator is needed and 4*40 + 30 fits.
		{"LastItemStaysHidden", 200, 30, []string{"4"}},
		{"SeveralHidden", 160, 30, []string{"3", "4"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			more := &box{w: tt.indicator}
			m := New(nil)
			m.Observe(&box{w: tt.width}, WithOverflowIndicators(more))
			row(m, 0, 0, 0, 0, 0)
			m.Flush()

			if diff := cmp.Diff(tt.wantHidden, hiddenIDs(m)); diff != "" {
				t.Errorf("hidden mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIndicatorReleasedWhenRestFits(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 160}, WithOverflowIndicators(&box{w: 50}))
	row(m, 0, 0, 0, 0, 0)
	m.Flush()
	if diff := cmp.Diff([]string{"2", "3", "4"}, hiddenIDs(m)); diff != "" {
		t.Fatalf("hidden at 160 (-want +got):\n%s", diff)
	}

	// 3*40 + 50 leaves no room for a fourth item next to the indicator,
	// but all five fit once nothing needs it.
	m.Resize(Size{Width: 210})
	if len(m.Hidden()) != 0 {
		t.Errorf("hidden at 210 = %v, want none", hiddenIDs(m))
	}
}

func TestGroupVisibility(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 1000})
	m.AddItems(
		Item{ID: "a", Element: &box{w: 40}, GroupID: "g1"},
		Item{ID: "b", Element: &box{w: 40}, GroupID: "g1"},
		Item{ID: "c", Element: &box{w: 40}, GroupID: "g2"},
		Item{ID: "d", Element: &box{w: 40}, GroupID: "g2"},
		Item{ID: "e", Element: &box{w: 40}},
	)
	m.Flush()

	steps := []struct {
		width float64
		want  map[string]GroupState
	}{
		{1000, map[string]GroupState{"g1": GroupVisible, "g2": GroupVisible}},
		{150, map[string]GroupState{"g1": GroupVisible, "g2": GroupOverflow}},
		{110, map[string]GroupState{"g1": GroupVisible, "g2": GroupHidden}},
		{50, map[string]GroupState{"g1": GroupOverflow, "g2": GroupHidden}},
		{0, map[string]GroupState{"g1": GroupHidden, "g2": GroupHidden}},
	}
	for _, s := range steps {
		m.Resize(Size{Width: s.width})
		if diff := cmp.Diff(s.want, m.Groups()); diff != "" {
			t.Errorf("Resize(%v) groups (-want +got):\n%s", s.width, diff)
		}
	}

	u := m.Snapshot()
	if st, ok := u.GroupState("g1"); !ok || st != GroupHidden {
		t.Errorf("GroupState(g1) = %q, %v", st, ok)
	}
	if _, ok := u.GroupState("missing"); ok {
		t.Error("GroupState(missing) reported present")
	}
}

func TestRemoveItem(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 200})
	boxes := row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	m.Flush()

	if boxes[7].shown {
		t.Fatal("item 7 should be hidden")
	}

	m.RemoveItem("7")
	if !boxes[7].shown {
		t.Error("removed hidden item was not made visible again")
	}
	if m.Len() != 7 || m.IsVisible("7") {
		t.Errorf("Len() = %d, IsVisible(7) = %v", m.Len(), m.IsVisible("7"))
	}

	// Unknown ids are ignored and schedule nothing.
	m.Flush()
	m.RemoveItem("nope")
	if n := m.Flush(); n != 0 {
		t.Errorf("RemoveItem(unknown) scheduled %d callbacks", n)
	}

	m.RemoveItem("0")
	m.Flush()
	if diff := cmp.Diff([]string{"1", "2", "3", "4"}, visibleIDs(m)); diff != "" {
		t.Errorf("visible after removal (-want +got):\n%s", diff)
	}
}

func TestRemoveLastGroupMember(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 1000})
	m.AddItems(Item{ID: "a", GroupID: "g"}, Item{ID: "b", GroupID: "h"})
	m.Flush()

	m.RemoveItem("a")
	m.Flush()
	if diff := cmp.Diff(map[string]GroupState{"h": GroupVisible}, m.Groups()); diff != "" {
		t.Errorf("groups (-want +got):\n%s", diff)
	}
}

func TestDuplicateIDReplaces(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 1000})
	m.AddItems(Item{ID: "x", Element: &box{w: 40}, GroupID: "g1"})
	m.AddItems(Item{ID: "x", Element: &box{w: 50}, GroupID: "g2", Priority: 3})
	m.Flush()

	if m.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", m.Len())
	}
	v, h := m.Queues()
	if v.Len()+h.Len() != 1 {
		t.Errorf("queues hold %d entries, want 1", v.Len()+h.Len())
	}
	got := m.Visible()[0]
	if got.Priority != 3 || got.GroupID != "g2" {
		t.Errorf("registration = %+v, want the second one", got)
	}
	if _, ok := m.Groups()["g1"]; ok {
		t.Error("stale group g1 kept")
	}
}

func TestDuplicateIDRestoresHiddenElement(t *testing.T) {
	container := &box{w: 100}
	m := New(nil)
	m.Observe(container)
	boxes := row(m, 0, 0, 0)
	m.Flush()
	if boxes[2].shown {
		t.Fatal("item 2 should start hidden")
	}

	container.w = 1000
	m.AddItems(Item{ID: "2", Element: boxes[2]})
	m.Flush()

	if !m.IsVisible("2") {
		t.Fatal("re-registered item should be visible")
	}
	if !boxes[2].shown {
		t.Error("element of a re-registered item left hidden")
	}
}

func TestDebounceCollapsesTriggers(t *testing.T) {
	var passes int
	m := New(nil, WithHooks(fitCounter(func(observability.FitEvent) { passes++ })))
	m.Observe(&box{w: 1000})

	for i := range 5 {
		m.AddItems(Item{ID: strconv.Itoa(i)})
	}
	m.UpdateOverflow()
	m.RemoveItem("0")

	m.Flush()
	if passes != 1 {
		t.Errorf("%d passes, want 1", passes)
	}
}

func TestUpdateBeforeObserveIsNoop(t *testing.T) {
	var r recorder
	m := New(r.onUpdate)
	row(m, 0, 0, 0)
	m.Flush()
	m.ForceUpdate()
	m.Resize(Size{Width: 10})

	if r.calls != 0 {
		t.Errorf("notified %d times before Observe", r.calls)
	}
	if len(m.Visible()) != 3 {
		t.Errorf("items moved before Observe")
	}
}

func TestDisconnectIgnoresResize(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 1000})
	row(m, 0, 0, 0, 0)
	m.Flush()

	m.Disconnect()
	if m.Observing() {
		t.Fatal("Observing() after Disconnect")
	}
	m.Resize(Size{Width: 50})
	if len(m.Hidden()) != 0 {
		t.Errorf("Resize after Disconnect hid %v", hiddenIDs(m))
	}

	// ForceUpdate still measures the last container.
	m.ForceUpdate()
	if len(m.Hidden()) != 0 {
		t.Errorf("ForceUpdate hid %v", hiddenIDs(m))
	}
}

func TestMutationDuringNotificationIsDeferred(t *testing.T) {
	var m *Manager
	var lenInside = -1
	m = New(func(u Update) {
		if lenInside >= 0 {
			return
		}
		m.AddItems(Item{ID: "late", Element: &box{w: 40}})
		m.Resize(Size{Width: 0})
		lenInside = m.Len()
	})
	m.Observe(&box{w: 1000})

	if lenInside != 0 {
		t.Fatalf("Len() inside callback = %d, want 0", lenInside)
	}
	m.Flush()
	if m.Len() != 1 {
		t.Errorf("deferred AddItems did not run: Len() = %d", m.Len())
	}
}

func TestDirectionChangeReordersQueues(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 200})
	row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	m.Flush()

	m.Observe(&box{w: 200}, WithDirection(Start))
	m.ForceUpdate()
	v, h := m.Queues()
	if !v.Valid() || !h.Valid() {
		t.Fatal("heap property violated after direction change")
	}
	if diff := cmp.Diff([]string{"1", "2", "3", "7"}, visibleIDs(m)); diff != "" {
		t.Errorf("visible (-want +got):\n%s", diff)
	}
}

func TestItemVisibilityCallback(t *testing.T) {
	var events []string
	m := New(nil)
	m.Observe(&box{w: 100}, WithItemVisibilityChange(func(it Item, visible bool) {
		events = append(events, it.ID+"="+strconv.FormatBool(visible))
	}))
	row(m, 0, 0, 0)
	m.Flush()

	if diff := cmp.Diff([]string{"2=false"}, events); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestToggler(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 100})
	boxes := row(m, 0, 0, 0)
	m.Flush()

	if !boxes[0].shown || !boxes[1].shown || boxes[2].shown {
		t.Errorf("shown = %v %v %v", boxes[0].shown, boxes[1].shown, boxes[2].shown)
	}
	if boxes[0].toggles != 0 || boxes[2].toggles != 1 {
		t.Errorf("toggles = %d, %d; want 0, 1", boxes[0].toggles, boxes[2].toggles)
	}

	m.Resize(Size{Width: 1000})
	if !boxes[2].shown {
		t.Error("item 2 not restored")
	}
}

func TestNilElementMeasuresZero(t *testing.T) {
	m := New(nil)
	m.Observe(&box{w: 20})
	m.AddItems(Item{ID: "a"}, Item{ID: "b"})
	m.Flush()
	if len(m.Hidden()) != 0 {
		t.Errorf("zero-extent items hidden: %v", hiddenIDs(m))
	}
}

func TestWithSchedulerUsesLoopQueue(t *testing.T) {
	q := turn.NewQueue()
	m := New(nil, WithScheduler(q))
	m.Observe(&box{w: 200})
	row(m, 0, 0, 0, 0, 0, 0, 0, 0)

	if n := m.Flush(); n != 0 {
		t.Errorf("Flush() with external scheduler ran %d", n)
	}
	if q.Drain() != 1 {
		t.Fatal("debounced pass not scheduled on external queue")
	}
	if len(m.Visible()) != 4 {
		t.Errorf("%d visible, want 4", len(m.Visible()))
	}
}

func TestLoggerReceivesPasses(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	m := New(nil, WithLogger(logger))
	m.Observe(&box{w: 200})
	row(m, 0, 0, 0, 0, 0, 0, 0, 0)
	m.Flush()

	out := buf.String()
	for _, want := range []string{"observe", "fitting pass", "overflow=4"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

type fitCounter func(observability.FitEvent)

func (f fitCounter) OnFit(e observability.FitEvent) { f(e) }
