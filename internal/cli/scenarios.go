package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/overflow/pkg/scenario"
)

// scenariosCommand creates the scenarios command.
func (c *CLI) scenariosCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "List the built-in scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(stdout, scenarioTable(scenario.Builtin()))
			printNextStep("Run one", "overflow fit --builtin <name>")
			return nil
		},
	}

	cmd.AddCommand(c.scenariosShowCommand())

	return cmd
}

// scenariosShowCommand creates the "scenarios show" subcommand.
func (c *CLI) scenariosShowCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:               "show <name>",
		Short:             "Print a built-in scenario as TOML or JSON",
		Example:           `  overflow scenarios show divider-groups > groups.toml`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeBuiltin,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := scenario.ParseFormat(format)
			if err != nil {
				return err
			}
			s, err := scenario.Lookup(args[0])
			if err != nil {
				return err
			}
			return scenario.Encode(stdout, s, f)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "toml", "output format: toml or json")

	return cmd
}

// scenarioTable renders scenarios as a bordered table.
func scenarioTable(list []*scenario.Scenario) string {
	rows := make([][]string, 0, len(list))
	for _, s := range list {
		direction := s.Direction
		if direction == "" {
			direction = "end"
		}
		rows = append(rows, []string{
			s.Name,
			strconv.Itoa(len(s.Items)),
			formatExtent(s.Capacity),
			direction,
			s.Description,
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Items", "Capacity", "Direction", "Description").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan).Padding(0, 1)
			case col == 4:
				return lipgloss.NewStyle().Foreground(colorGray).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	return t.Render()
}
