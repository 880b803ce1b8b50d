package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/buildinfo"
	"github.com/matzehuels/overflow/pkg/cache"
	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/overflow"
	"github.com/matzehuels/overflow/pkg/scenario"
)

// fitOverrides are command-line replacements for scenario fields.
type fitOverrides struct {
	capacity       float64
	padding        float64
	direction      string
	minimumVisible int
}

// fitCommand creates the fit command.
func (c *CLI) fitCommand() *cobra.Command {
	var (
		builtin string
		format  string
		noCache bool
		over    fitOverrides
	)

	cmd := &cobra.Command{
		Use:   "fit [scenario.toml|scenario.json]",
		Short: "Fit a scenario and print which items stay visible",
		Long: `Fit runs a scenario through the overflow engine and prints the resulting
partition into visible and hidden items, plus group states.

Scenarios are TOML or JSON files, or one of the built-in presets. Flags
override the scenario's own settings. Results are cached by scenario
fingerprint unless --no-cache is given.`,
		Example: `  # Run a built-in preset
  overflow fit --builtin priority

  # Shrink the container and evict from the start
  overflow fit --builtin dom-order --capacity 120 --direction start

  # Run a scenario file and print JSON
  overflow fit toolbar.toml --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "text" && format != "json" {
				return errors.New(errors.ErrCodeInvalidInput, "unknown format %q (want text or json)", format)
			}

			s, err := loadScenario(args, builtin)
			if err != nil {
				return err
			}
			if err := over.apply(cmd, s); err != nil {
				return err
			}

			cc, err := newCache(noCache)
			if err != nil {
				return fmt.Errorf("open cache: %w", err)
			}
			defer cc.Close()

			ctx := cmd.Context()
			logger := loggerFromContext(ctx)
			prog := newProgress(logger)

			res, cached, err := runFit(ctx, s, cc, logger)
			if err != nil {
				return err
			}
			prog.done("fit complete",
				"scenario", s.Name,
				"visible", len(res.Final.Visible),
				"hidden", len(res.Final.Hidden),
				"cached", cached)

			if format == "json" {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}
			printResult(res, cached)
			return nil
		},
	}

	cmd.Flags().StringVarP(&builtin, "builtin", "b", "", "run a built-in scenario (see 'overflow scenarios')")
	cmd.Flags().Float64Var(&over.capacity, "capacity", 0, "override the container extent")
	cmd.Flags().Float64Var(&over.padding, "padding", overflow.DefaultPadding, "override the padding subtracted from the capacity")
	cmd.Flags().StringVar(&over.direction, "direction", "", "override the overflow direction: end or start")
	cmd.Flags().IntVar(&over.minimumVisible, "minimum-visible", 0, "override the number of items that never hide")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text or json")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")

	_ = cmd.RegisterFlagCompletionFunc("builtin", completeBuiltin)
	_ = cmd.RegisterFlagCompletionFunc("direction", cobra.FixedCompletions([]string{"end", "start"}, cobra.ShellCompDirectiveNoFileComp))
	_ = cmd.RegisterFlagCompletionFunc("format", cobra.FixedCompletions([]string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp))

	return cmd
}

// apply copies the flags the user set onto s and revalidates it.
func (o fitOverrides) apply(cmd *cobra.Command, s *scenario.Scenario) error {
	flags := cmd.Flags()
	if flags.Changed("capacity") {
		s.Capacity = o.capacity
		s.Steps = nil
	}
	if flags.Changed("padding") {
		p := o.padding
		s.Padding = &p
	}
	if flags.Changed("direction") {
		s.Direction = o.direction
	}
	if flags.Changed("minimum-visible") {
		s.MinimumVisible = o.minimumVisible
	}
	return s.Validate()
}

// runFit returns the cached result for s or runs it and caches the outcome.
// Cache failures are logged and otherwise ignored.
func runFit(ctx context.Context, s *scenario.Scenario, cc cache.Cache, logger *log.Logger) (*scenario.Result, bool, error) {
	key := cache.NewDefaultKeyer().ResultKey(s.Fingerprint(), buildinfo.Get().Version)

	data, ok, err := cc.Get(ctx, key)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
	}
	if ok {
		var res scenario.Result
		if err := json.Unmarshal(data, &res); err == nil {
			res.Scenario = s.Name
			logger.Debug("cache hit", "key", key)
			return &res, true, nil
		}
		logger.Debug("discarding unreadable cache entry", "key", key)
	}

	res, err := scenario.Run(ctx, s, overflow.WithLogger(logger))
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(res); err == nil {
		if err := cc.Set(ctx, key, data, cache.DefaultTTL); err != nil {
			logger.Warn("cache write failed", "err", err)
		}
	}
	return res, false, nil
}

// printResult prints a result as text.
func printResult(res *scenario.Result, cached bool) {
	name := res.Scenario
	if name == "" {
		name = "scenario"
	}
	printSuccess("Fitted %s", StyleHighlight.Render(name))

	for i, step := range res.Steps {
		printDetail("step %d: capacity %s → %d visible, %d hidden",
			i+1, formatExtent(step.Capacity), len(step.Visible), len(step.Hidden))
	}

	printKeyValue("Capacity", formatExtent(res.Final.Capacity))
	printIDs("Visible", res.Final.Visible, StyleValue)
	printIDs("Hidden", res.Final.Hidden, StyleHidden)

	groups := make([]string, 0, len(res.Final.Groups))
	for g := range res.Final.Groups {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	for _, g := range groups {
		printKeyValue("Group "+g, string(res.Final.Groups[g]))
	}

	printStats(len(res.Final.Visible), len(res.Final.Hidden), res.Notifications, cached)
}

func formatExtent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
