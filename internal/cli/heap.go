package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/pqueue"
	"github.com/matzehuels/overflow/pkg/scenario"
	"github.com/matzehuels/overflow/pkg/turn"
)

// heapCommand creates the heap command for visualizing the engine's queues.
func (c *CLI) heapCommand() *cobra.Command {
	var (
		builtin string
		output  string
		format  string
		queue   string
	)

	cmd := &cobra.Command{
		Use:   "heap [scenario.toml|scenario.json]",
		Short: "Render the engine's eviction or restore heap (debug tool)",
		Long: `Render one of the fitting engine's priority queues as a binary tree after
a scenario has been fitted.

The evict queue holds the visible items; its root is the next item to hide.
The restore queue holds the hidden items; its root is the next item to show.`,
		Example: `  # Eviction heap of a built-in scenario as SVG
  overflow heap --builtin priority -o evict.svg

  # Restore heap as Graphviz DOT
  overflow heap --builtin divider-groups --queue restore --format dot`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args, builtin)
			if err != nil {
				return err
			}

			q, err := fittedQueue(s, queue)
			if err != nil {
				return err
			}
			label := heapLabel(s)

			var data []byte
			switch format {
			case "svg":
				if data, err = pqueue.RenderSVG(q, label); err != nil {
					return fmt.Errorf("render: %w", err)
				}
			case "dot":
				data = []byte(pqueue.ToDOT(q, label))
			default:
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want svg or dot)", format)
			}

			if err := writeFile(data, output); err != nil {
				return fmt.Errorf("write output: %w", err)
			}

			if output != "" {
				printSuccess("Heap rendered")
				printKeyValue("Queue", queue)
				printKeyValue("Items", fmt.Sprintf("%d", q.Len()))
				if root, ok := q.Peek(); ok {
					printKeyValue("Root", label(root))
				}
				printFile(output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&builtin, "builtin", "b", "", "use a built-in scenario")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg or dot")
	cmd.Flags().StringVar(&queue, "queue", "evict", "queue to render: evict or restore")

	_ = cmd.RegisterFlagCompletionFunc("builtin", completeBuiltin)
	_ = cmd.RegisterFlagCompletionFunc("queue", cobra.FixedCompletions([]string{"evict", "restore"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// fittedQueue fits s at its final capacity and returns the named queue.
func fittedQueue(s *scenario.Scenario, name string) (*pqueue.Queue[string], error) {
	if name != "evict" && name != "restore" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown queue %q (want evict or restore)", name)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}

	sched := turn.NewQueue()
	m := overflow.New(nil, overflow.WithScheduler(sched))
	axis, _ := overflow.ParseAxis(s.Axis)

	m.Observe(scenario.Extent(axis, s.Capacity), s.ObserveOptions()...)
	m.AddItems(scenario.Items(s)...)
	sched.Drain()
	for _, c := range s.Steps {
		m.Resize(scenario.Extent(axis, c).Size())
		sched.Drain()
	}

	visible, hidden := m.Queues()
	if name == "restore" {
		return hidden, nil
	}
	return visible, nil
}

// heapLabel labels heap nodes with the item id and priority.
func heapLabel(s *scenario.Scenario) func(string) string {
	priority := make(map[string]int, len(s.Items))
	for _, it := range s.Items {
		priority[it.ID] = it.Priority
	}
	return func(id string) string {
		return fmt.Sprintf("%s (p%d)", id, priority[id])
	}
}

// writeFile writes data to path, or to stdout when path is empty.
func writeFile(data []byte, path string) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
