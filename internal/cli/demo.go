package cli

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/resize"
	"github.com/matzehuels/overflow/pkg/scenario"
	"github.com/matzehuels/overflow/pkg/turn"
)

// defaultDemo is the scenario shown when demo gets no argument.
const defaultDemo = "overflow-menu"

// Toolbar styles
var buttonStyle = lipgloss.NewStyle().
	Padding(0, 1).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorCyan)

var (
	moreStyle  = buttonStyle.BorderForeground(colorOrange).Foreground(colorOrange)
	rulerStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// moreWidest is the widest label the overflow indicator reserves room for.
const moreWidest = "» 99"

// demoCommand creates the demo command.
func (c *CLI) demoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "demo [scenario]",
		Short: "Interactive toolbar that overflows with the terminal width",
		Long: `Demo lays out a scenario's items as a toolbar in the terminal. Resizing
the terminal, or narrowing the toolbar with the arrow keys, hides items in
priority order behind a "»" indicator and brings them back as room returns.

Item extents are measured in terminal cells; the scenario's own widths,
capacity and padding are ignored.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeBuiltin,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := defaultDemo
			if len(args) > 0 {
				name = args[0]
			}
			s, err := scenario.Lookup(name)
			if err != nil {
				return err
			}

			model := newDemoModel(s)
			defer model.close()

			_, err = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}
}

// =============================================================================
// Elements
// =============================================================================

// button is a toolbar item measured in terminal cells.
type button struct {
	label string
	style lipgloss.Style
}

func (b button) render() string { return b.style.Render(b.label) }

func (b button) Size() overflow.Size {
	r := b.render()
	return overflow.Size{Width: float64(lipgloss.Width(r)), Height: float64(lipgloss.Height(r))}
}

// viewport measures the toolbar from the last size published by a resize.Source.
type viewport struct{ src *resize.Source }

func (v viewport) Size() overflow.Size {
	size, _ := v.src.Size()
	return size
}

// =============================================================================
// demoModel - Live overflow toolbar
// =============================================================================

// demoModel is the bubbletea model for the demo command. It owns a Manager
// that runs on the bubbletea goroutine: every Update is one turn, and the
// deferred queue is drained before Update returns.
type demoModel struct {
	s         *scenario.Scenario
	m         *overflow.Manager
	q         *turn.Queue
	src       *resize.Source
	obs       *resize.Observer
	container viewport
	direction overflow.Direction

	term          overflow.Size
	narrow        int
	last          overflow.Update
	notifications int
	removed       []overflow.Item
}

func newDemoModel(s *scenario.Scenario) *demoModel {
	d := &demoModel{s: s, q: turn.NewQueue(), src: resize.NewSource()}
	d.direction, _ = overflow.ParseDirection(s.Direction)
	d.container = viewport{src: d.src}

	d.m = overflow.New(d.onUpdate, overflow.WithScheduler(d.q))
	opts := append(s.ObserveOptions(),
		overflow.WithAxis(overflow.Horizontal),
		overflow.WithPadding(0),
		overflow.WithOverflowIndicators(button{label: moreWidest, style: moreStyle}),
	)
	d.m.Observe(d.container, opts...)
	d.m.AddItems(demoItems(s)...)
	d.obs = resize.Observe(d.src, d.m, d.q)
	d.settle()
	return d
}

// demoItems turns scenario items into toolbar buttons labeled by id.
func demoItems(s *scenario.Scenario) []overflow.Item {
	items := scenario.Items(s)
	for i := range items {
		items[i].Element = button{label: items[i].ID, style: buttonStyle}
	}
	return items
}

func (d *demoModel) onUpdate(u overflow.Update) {
	d.last = u
	d.notifications++
}

// publish reports the toolbar width to the resize source.
func (d *demoModel) publish() {
	d.src.Set(overflow.Size{Width: float64(d.width()), Height: d.term.Height})
}

func (d *demoModel) width() int {
	return max(int(d.term.Width)-d.narrow, 0)
}

// settle ends a turn: deferred work runs and the view picks up the
// partition even when no notification was sent, as after a removal.
func (d *demoModel) settle() {
	d.q.Drain()
	d.last = d.m.Snapshot()
}

func (d *demoModel) close() {
	d.obs.Close()
	d.q.Drain()
}

func (d *demoModel) Init() tea.Cmd {
	return nil
}

func (d *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	defer d.settle()

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		d.term = overflow.Size{Width: float64(msg.Width), Height: float64(msg.Height)}
		d.publish()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return d, tea.Quit
		case "left", "h":
			if d.width() > 0 {
				d.narrow++
				d.publish()
			}
		case "right", "l":
			if d.narrow > 0 {
				d.narrow--
				d.publish()
			}
		case "d":
			if d.direction == overflow.End {
				d.direction = overflow.Start
			} else {
				d.direction = overflow.End
			}
			d.m.Observe(d.container, overflow.WithDirection(d.direction))
			d.m.UpdateOverflow()
		case "x":
			if it, ok := lowestPriority(d.last.VisibleItems); ok {
				d.removed = append(d.removed, it)
				d.m.RemoveItem(it.ID)
			}
		case "u":
			if len(d.removed) > 0 {
				d.m.AddItems(d.removed...)
				d.removed = nil
			}
		}
	}
	return d, nil
}

// lowestPriority returns the visible item the engine would evict next,
// ignoring direction.
func lowestPriority(items []overflow.Item) (overflow.Item, bool) {
	if len(items) == 0 {
		return overflow.Item{}, false
	}
	return slices.MinFunc(items, func(a, b overflow.Item) int { return a.Priority - b.Priority }), true
}

func (d *demoModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(d.s.Name))
	if d.s.Description != "" {
		b.WriteString("  " + StyleDim.Render(d.s.Description))
	}
	b.WriteString("\n\n")

	b.WriteString(d.toolbar())
	b.WriteString("\n")
	b.WriteString(rulerStyle.Render(strings.Repeat("─", d.width())))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s\n",
		StyleDim.Render("width"), StyleNumber.Render(fmt.Sprint(d.width())),
		StyleDim.Render("direction"), StyleValue.Render(d.direction.String()),
		StyleDim.Render("notifications"), StyleNumber.Render(fmt.Sprint(d.notifications))))

	hidden := d.last.HiddenIDs()
	if len(hidden) > 0 {
		b.WriteString(StyleDim.Render("hidden ") + StyleHidden.Render(strings.Join(hidden, " ")) + "\n")
	}
	if groups := groupSummary(d.last.GroupVisibility); groups != "" {
		b.WriteString(StyleDim.Render("groups ") + groups + "\n")
	}
	if len(d.removed) > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("removed %d (u to restore)", len(d.removed))) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(StyleDim.Render("←/→ narrow/widen  d direction  x remove  u restore  q quit"))

	return b.String()
}

// toolbar renders the visible items followed by the indicator when needed.
func (d *demoModel) toolbar() string {
	parts := make([]string, 0, len(d.last.VisibleItems)+1)
	for _, it := range d.last.VisibleItems {
		if btn, ok := it.Element.(button); ok {
			parts = append(parts, btn.render())
		}
	}
	if n := d.last.OverflowCount(); n > 0 {
		parts = append(parts, button{label: fmt.Sprintf("» %d", n), style: moreStyle}.render())
	}
	if len(parts) == 0 {
		return ""
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func groupSummary(groups map[string]overflow.GroupState) string {
	if len(groups) == 0 {
		return ""
	}
	ids := make([]string, 0, len(groups))
	for id := range groups {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	parts := make([]string, len(ids))
	for i, id := range ids {
		style := StyleValue
		switch groups[id] {
		case overflow.GroupHidden:
			style = StyleHidden
		case overflow.GroupOverflow:
			style = StyleWarning
		}
		parts[i] = id + ":" + style.Render(string(groups[id]))
	}
	return strings.Join(parts, " ")
}
