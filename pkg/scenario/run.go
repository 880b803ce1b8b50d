package scenario

import (
	"context"
	"time"

	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/turn"
)

// Result is the outcome of running a scenario.
type Result struct {
	Scenario    string  `json:"scenario,omitempty"`
	Fingerprint string  `json:"fingerprint"`
	Final       Outcome `json:"final"`
	// Steps holds one outcome per scenario step.
	Steps []Outcome `json:"steps,omitempty"`
	// Notifications counts update notifications, including the one sent
	// when observation starts.
	Notifications int           `json:"notifications"`
	Elapsed       time.Duration `json:"elapsed_ns"`
}

// Outcome is the partition at one capacity.
type Outcome struct {
	Capacity float64                        `json:"capacity"`
	Visible  []string                       `json:"visible"`
	Hidden   []string                       `json:"hidden"`
	Groups   map[string]overflow.GroupState `json:"groups,omitempty"`
}

// Run fits the scenario's items into its capacity, then applies each step.
// Extra options configure the engine, for example its logger.
func Run(ctx context.Context, s *Scenario, opts ...overflow.Option) (*Result, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	q := turn.NewQueue()
	res := &Result{Scenario: s.Name, Fingerprint: s.Fingerprint()}
	m := overflow.New(func(overflow.Update) { res.Notifications++ },
		append([]overflow.Option{overflow.WithScheduler(q)}, opts...)...)

	axis, _ := overflow.ParseAxis(s.Axis)
	m.Observe(Extent(axis, s.Capacity), s.ObserveOptions()...)
	m.AddItems(Items(s)...)
	q.Drain()
	res.Final = outcome(s.Capacity, m.Snapshot())

	for _, c := range s.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.Resize(Extent(axis, c).Size())
		q.Drain()
		o := outcome(c, m.Snapshot())
		res.Steps = append(res.Steps, o)
		res.Final = o
	}

	res.Elapsed = time.Since(start)
	return res, nil
}

// Items converts the scenario's items to engine items in sequence order.
func Items(s *Scenario) []overflow.Item {
	items := make([]overflow.Item, len(s.Items))
	for i, it := range s.Items {
		items[i] = overflow.Item{
			ID:       it.ID,
			Element:  fixed(it.Size()),
			Priority: it.Priority,
			GroupID:  it.Group,
			Order:    i,
		}
	}
	return items
}

func outcome(capacity float64, u overflow.Update) Outcome {
	o := Outcome{
		Capacity: capacity,
		Visible:  u.VisibleIDs(),
		Hidden:   u.HiddenIDs(),
	}
	if len(u.GroupVisibility) > 0 {
		o.Groups = u.GroupVisibility
	}
	return o
}
