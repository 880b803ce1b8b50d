package overflow

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/overflow/pkg/observability"
	"github.com/matzehuels/overflow/pkg/turn"
)

// DefaultPadding is subtracted from the container size unless overridden.
const DefaultPadding = 10

// Option configures a Manager at construction.
type Option func(*managerOptions)

type managerOptions struct {
	logger    *log.Logger
	scheduler turn.Scheduler
	hooks     observability.FitHooks
}

// WithLogger sets the logger used for debug output of fitting passes.
// The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(o *managerOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithScheduler sets where debounced passes and deferred mutations run.
//
// Without it the manager keeps a private turn.Queue and deferred work runs
// only when Flush is called.
func WithScheduler(s turn.Scheduler) Option {
	return func(o *managerOptions) {
		if s != nil {
			o.scheduler = s
		}
	}
}

// WithHooks sets the hooks notified after every fitting pass.
// The default is the globally registered observability.Fit().
func WithHooks(h observability.FitHooks) Option {
	return func(o *managerOptions) {
		if h != nil {
			o.hooks = h
		}
	}
}

func defaultManagerOptions() managerOptions {
	return managerOptions{
		logger: log.New(io.Discard),
		hooks:  observability.Fit(),
	}
}

// ObserveOption configures how a Manager fits items into its container.
// Options not passed to Observe keep their previous value.
type ObserveOption func(*config)

// ItemVisibilityFunc is called for each item whose visibility the engine
// changes, and once with visible=true when an item is removed.
type ItemVisibilityFunc func(item Item, visible bool)

type config struct {
	padding          float64
	axis             Axis
	direction        Direction
	minimumVisible   int
	indicators       []Element
	onItemVisibility ItemVisibilityFunc
}

func defaultConfig() config {
	return config{
		padding:          DefaultPadding,
		axis:             Horizontal,
		direction:        End,
		onItemVisibility: toggleElement,
	}
}

// WithPadding sets the space reserved at the end of the container.
func WithPadding(padding float64) ObserveOption {
	return func(c *config) { c.padding = padding }
}

// WithAxis selects the overflow axis.
func WithAxis(axis Axis) ObserveOption {
	return func(c *config) { c.axis = axis }
}

// WithDirection selects which end of the sequence overflows first.
func WithDirection(d Direction) ObserveOption {
	return func(c *config) { c.direction = d }
}

// WithMinimumVisible sets the floor below which the engine never hides items,
// even if the container overflows.
func WithMinimumVisible(n int) ObserveOption {
	return func(c *config) {
		if n < 0 {
			n = 0
		}
		c.minimumVisible = n
	}
}

// WithOverflowIndicators registers auxiliary elements that are shown only
// while items overflow, such as a "more" button. Their extent counts against
// capacity. Passing no elements clears the registration.
func WithOverflowIndicators(elements ...Element) ObserveOption {
	return func(c *config) { c.indicators = elements }
}

// WithItemVisibilityChange replaces the per-item visibility callback.
// The default calls SetVisible on elements that implement Toggler.
func WithItemVisibilityChange(fn ItemVisibilityFunc) ObserveOption {
	return func(c *config) {
		if fn == nil {
			fn = toggleElement
		}
		c.onItemVisibility = fn
	}
}

func toggleElement(item Item, visible bool) {
	if t, ok := item.Element.(Toggler); ok {
		t.SetVisible(visible)
	}
}
