// Package aggregate provides the aggregate command implementation.
package aggregate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/identity"
)

// NewCommand creates the aggregate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var paths []string

	cmd := &cobra.Command{
		Use:     "aggregate [trial files...]",
		GroupID: "core",
		Short:   "Compute pass rates from trial batches",
		Long: `Aggregate reads trial batches and reports each model's pass rate on
every test case without touching the knowledge base.

Rows whose test key is not in the identity tables are excluded and
reported. Unknown model keys are kept and shown under their raw key.`,
		Example: `  trapkit aggregate results.csv                # Pass rates for one batch
  trapkit aggregate -t a.csv -t b.xlsx          # Several batches
  trapkit aggregate results.csv -o json         # Machine-readable rates`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files := append(append([]string{}, paths...), args...)
			if len(files) == 0 {
				files = app.Settings().Trials
			}
			if len(files) == 0 {
				return errors.NewValidationError("trials", nil, "at least one trial file is required")
			}

			tk, err := app.Client()
			if err != nil {
				return err
			}

			result, err := tk.Aggregate(cmd.Context(), files...)
			if err != nil {
				return errors.NewCommandError("aggregate", "aggregate trials", err)
			}

			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), result, func() any {
				return buildReport(result, tk.Resolver())
			})
		},
	}

	cmd.Flags().StringSliceVarP(&paths, "trials", "t", nil, "trial batch file (CSV or XLSX), repeatable")

	return cmd
}

// buildReport lays out an aggregation for the table and markdown formats.
func buildReport(result *trapkit.AggregateResult, resolver identity.Resolver) *output.Report {
	agg := result.Result
	report := &output.Report{
		Title: fmt.Sprintf("Aggregated %d rows into %d pass rates (%d models, %d tests)",
			agg.Rows-agg.Skipped, len(agg.Stats), len(agg.Models()), len(agg.Tests())),
	}
	report.Add("Batches", table.BatchesToTableData(result.Batches))
	report.Add("Pass Rates", table.StatsToTableData(agg, resolver))
	report.Add("Models", table.ModelSummariesToTableData(result.Models))
	report.Add("Excluded Rows", table.AggregateWarningsToTableData(agg.Warnings))
	return report
}
