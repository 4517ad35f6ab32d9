// Package tables provides the tables command implementation.
package tables

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/identity"
)

// Tables is the serialized view of the identity tables.
type Tables struct {
	Version string              `json:"version" yaml:"version"`
	Tests   map[string]string   `json:"tests" yaml:"tests"`
	Models  []identity.Identity `json:"models" yaml:"models"`
	Renames []identity.Rename   `json:"renames" yaml:"renames"`
}

// NewCommand creates the tables command using app context.
func NewCommand(app application.Application) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tables",
		GroupID: "management",
		Short:   "Show the identity tables",
		Long: `Tables prints the identity tables merges resolve against: the raw
trial test keys and the test cases they map to, every known model in
canonical order, and the display name corrections applied to existing
results.

The embedded tables are used unless --tables points at a YAML file.`,
		Example: `  trapkit tables                       # Embedded tables
  trapkit tables --tables my.yaml      # Tables from a file
  trapkit tables -o yaml               # Dump as YAML`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := app.Client()
			if err != nil {
				return err
			}

			t, ok := tk.Resolver().(*identity.Table)
			if !ok {
				return errors.NewConfigError("tables", "resolver does not expose its tables", nil)
			}

			view := &Tables{
				Version: t.Version(),
				Tests:   t.Tests(),
				Models:  t.Models(),
				Renames: t.Renames(),
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), view, func() any {
				return buildReport(view)
			})
		},
	}

	return cmd
}

// buildReport lays out the tables for the table and markdown formats.
func buildReport(t *Tables) *output.Report {
	report := &output.Report{
		Title: fmt.Sprintf("Identity tables %s: %d trial keys, %d models, %d renames",
			t.Version, len(t.Tests), len(t.Models), len(t.Renames)),
	}
	report.Add("Tests", table.TestsToTableData(t.Tests))
	report.Add("Models", table.IdentitiesToTableData(t.Models))
	report.Add("Renames", table.RenamesListToTableData(t.Renames))
	return report
}
