package scenario

import (
	"slices"

	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/overflow"
)

// Scenario is a declarative fitting run.
type Scenario struct {
	Name        string `json:"name,omitempty" toml:"name" bson:"name"`
	Description string `json:"description,omitempty" toml:"description,omitempty" bson:"description,omitempty"`

	// Capacity is the container extent along the axis.
	Capacity float64 `json:"capacity" toml:"capacity" bson:"capacity"`
	// Padding overrides overflow.DefaultPadding when set.
	Padding        *float64 `json:"padding,omitempty" toml:"padding,omitempty" bson:"padding,omitempty"`
	Axis           string   `json:"axis,omitempty" toml:"axis,omitempty" bson:"axis,omitempty"`
	Direction      string   `json:"direction,omitempty" toml:"direction,omitempty" bson:"direction,omitempty"`
	MinimumVisible int      `json:"minimum_visible,omitempty" toml:"minimum_visible,omitempty" bson:"minimum_visible,omitempty"`
	// Indicator is the extent of the overflow indicator; zero means none.
	Indicator float64 `json:"indicator,omitempty" toml:"indicator,omitempty" bson:"indicator,omitempty"`

	Items []ItemSpec `json:"items" toml:"items" bson:"items"`

	// Steps are capacities applied one after another once the initial fit
	// is done, as if the container were resized.
	Steps []float64 `json:"steps,omitempty" toml:"steps,omitempty" bson:"steps,omitempty"`
}

// ItemSpec is one item of a scenario. Items are listed in sequence order.
type ItemSpec struct {
	ID       string  `json:"id" toml:"id" bson:"id"`
	Width    float64 `json:"width" toml:"width" bson:"width"`
	Height   float64 `json:"height,omitempty" toml:"height,omitempty" bson:"height,omitempty"`
	Priority int     `json:"priority,omitempty" toml:"priority,omitempty" bson:"priority,omitempty"`
	Group    string  `json:"group,omitempty" toml:"group,omitempty" bson:"group,omitempty"`
}

// Size returns the item's measurement.
func (it ItemSpec) Size() overflow.Size {
	return overflow.Size{Width: it.Width, Height: it.Height}
}

// PaddingOrDefault returns the padding the engine will use.
func (s *Scenario) PaddingOrDefault() float64 {
	if s.Padding == nil {
		return overflow.DefaultPadding
	}
	return *s.Padding
}

// Validate checks the scenario for values the engine cannot run.
func (s *Scenario) Validate() error {
	if s.Name != "" {
		if err := errors.ValidateScenarioName(s.Name); err != nil {
			return err
		}
	}
	if s.Capacity < 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "capacity must not be negative")
	}
	for _, c := range s.Steps {
		if c < 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "step capacity must not be negative")
		}
	}
	if s.MinimumVisible < 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "minimum_visible must not be negative")
	}
	if s.Indicator < 0 {
		return errors.New(errors.ErrCodeInvalidScenario, "indicator must not be negative")
	}
	if _, err := overflow.ParseAxis(s.Axis); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScenario, err, "invalid axis")
	}
	if _, err := overflow.ParseDirection(s.Direction); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidScenario, err, "invalid direction")
	}

	seen := make(map[string]struct{}, len(s.Items))
	for i, it := range s.Items {
		if err := errors.ValidateID(it.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidScenario, err, "item %d", i)
		}
		if _, dup := seen[it.ID]; dup {
			return errors.New(errors.ErrCodeInvalidScenario, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = struct{}{}

		if it.Width < 0 || it.Height < 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "item %q has a negative size", it.ID)
		}
		if it.Group != "" {
			if err := errors.ValidateID(it.Group); err != nil {
				return errors.Wrap(errors.ErrCodeInvalidScenario, err, "item %q group", it.ID)
			}
		}
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Scenario) Clone() *Scenario {
	c := *s
	if s.Padding != nil {
		p := *s.Padding
		c.Padding = &p
	}
	c.Items = slices.Clone(s.Items)
	c.Steps = slices.Clone(s.Steps)
	return &c
}

// ObserveOptions converts the scenario's settings to engine options.
// Invalid axis or direction values fall back to the defaults.
func (s *Scenario) ObserveOptions() []overflow.ObserveOption {
	axis, _ := overflow.ParseAxis(s.Axis)
	dir, _ := overflow.ParseDirection(s.Direction)

	opts := []overflow.ObserveOption{
		overflow.WithAxis(axis),
		overflow.WithDirection(dir),
		overflow.WithPadding(s.PaddingOrDefault()),
		overflow.WithMinimumVisible(s.MinimumVisible),
	}
	if s.Indicator > 0 {
		opts = append(opts, overflow.WithOverflowIndicators(Extent(axis, s.Indicator)))
	}
	return opts
}

// fixed is an Element with a constant size.
type fixed overflow.Size

func (f fixed) Size() overflow.Size { return overflow.Size(f) }

// Extent returns an element measuring v along axis and zero across it.
func Extent(axis overflow.Axis, v float64) overflow.Element {
	if axis == overflow.Vertical {
		return fixed{Height: v}
	}
	return fixed{Width: v}
}
