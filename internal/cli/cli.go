package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/buildinfo"
	"github.com/matzehuels/overflow/pkg/cache"
	"github.com/matzehuels/overflow/pkg/errors"
	"github.com/matzehuels/overflow/pkg/scenario"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "overflow"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Overflow fits prioritized items into a constrained extent",
		Long: `Overflow decides which items of a toolbar-like sequence stay visible when
the container is too small, hiding low-priority items first and restoring
them as space returns.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.fitCommand())
	root.AddCommand(c.scenariosCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.heapCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Shared Helpers
// =============================================================================

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// loadScenario resolves the scenario named by a file argument or a built-in
// name. Exactly one of them must be given.
func loadScenario(args []string, builtin string) (*scenario.Scenario, error) {
	switch {
	case len(args) > 0 && builtin != "":
		return nil, errors.New(errors.ErrCodeInvalidInput, "pass either a scenario file or --builtin, not both")
	case len(args) > 0:
		return scenario.Load(args[0])
	case builtin != "":
		return scenario.Lookup(builtin)
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "no scenario given: pass a file or --builtin (see 'overflow scenarios')")
}

// completeBuiltin offers built-in scenario names for shell completion.
func completeBuiltin(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, s := range scenario.Builtin() {
		names = append(names, s.Name+"\t"+s.Description)
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/overflow/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
