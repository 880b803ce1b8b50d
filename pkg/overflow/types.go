package overflow

import "fmt"

// Axis selects which dimension of a Size is compared against capacity.
type Axis int

const (
	// Horizontal sums widths. This is the default.
	Horizontal Axis = iota
	// Vertical sums heights.
	Vertical
)

// String returns "horizontal" or "vertical".
func (a Axis) String() string {
	if a == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// ParseAxis parses "horizontal" or "vertical". The empty string is Horizontal.
func ParseAxis(s string) (Axis, error) {
	switch s {
	case "", "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("unknown axis %q", s)
}

// Direction names the end of the sequence that overflows first when
// priorities tie.
type Direction int

const (
	// End evicts trailing items first. This is the default.
	End Direction = iota
	// Start evicts leading items first.
	Start
)

// String returns "end" or "start".
func (d Direction) String() string {
	if d == Start {
		return "start"
	}
	return "end"
}

// ParseDirection parses "end" or "start". The empty string is End.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "", "end":
		return End, nil
	case "start":
		return Start, nil
	}
	return End, fmt.Errorf("unknown direction %q", s)
}

// GroupState is the aggregate visibility of a group of items.
type GroupState string

const (
	GroupVisible  GroupState = "visible"  // no hidden members
	GroupHidden   GroupState = "hidden"   // no visible members
	GroupOverflow GroupState = "overflow" // some of each
)

// Size is a two-dimensional measurement.
type Size struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
}

// Along returns the component of s on axis a.
func (s Size) Along(a Axis) float64 {
	if a == Vertical {
		return s.Height
	}
	return s.Width
}

// Element is a measurable entity: an item, a container or an overflow
// indicator. Size is queried at fitting time and never cached.
type Element interface {
	Size() Size
}

// Toggler is implemented by elements that can show or hide themselves.
// The default visibility callback uses it.
type Toggler interface {
	SetVisible(visible bool)
}

// Item is a unit of layout managed by the engine.
type Item struct {
	// ID uniquely identifies the item.
	ID string
	// Element is measured along the overflow axis; nil measures zero.
	Element Element
	// Priority orders eviction: lower priority items are hidden first.
	Priority int
	// GroupID optionally associates the item with a group.
	GroupID string
	// Order is the item's position in the sequence. Items with equal Order
	// fall back to registration order, so it may be left zero when items
	// are registered in sequence.
	Order int
}

// Update is the payload of an update notification.
type Update struct {
	VisibleItems    []Item
	HiddenItems     []Item
	GroupVisibility map[string]GroupState
}

// UpdateFunc receives update notifications.
type UpdateFunc func(Update)

// HasOverflow reports whether any item is hidden.
func (u Update) HasOverflow() bool {
	return len(u.HiddenItems) > 0
}

// OverflowCount returns the number of hidden items.
func (u Update) OverflowCount() int {
	return len(u.HiddenItems)
}

// IsVisible reports whether the item with the given id is in the visible run.
func (u Update) IsVisible(id string) bool {
	for _, it := range u.VisibleItems {
		if it.ID == id {
			return true
		}
	}
	return false
}

// GroupState returns the state of a group and whether the group exists.
func (u Update) GroupState(id string) (GroupState, bool) {
	s, ok := u.GroupVisibility[id]
	return s, ok
}

// VisibleIDs returns the ids of visible items in sequence order.
func (u Update) VisibleIDs() []string {
	return ids(u.VisibleItems)
}

// HiddenIDs returns the ids of hidden items in sequence order.
func (u Update) HiddenIDs() []string {
	return ids(u.HiddenItems)
}

func ids(items []Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
