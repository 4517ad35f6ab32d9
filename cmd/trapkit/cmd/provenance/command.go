// Package provenance provides the provenance command implementation.
package provenance

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/provenance"
)

// NewCommand creates the provenance command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		testID string
		report bool
	)

	cmd := &cobra.Command{
		Use:     "provenance <ledger>",
		GroupID: "management",
		Short:   "Show a provenance ledger",
		Args:    cobra.ExactArgs(1),
		Long: `Provenance prints a ledger written by "trapkit update --provenance-out":
every model result added, provider backfilled, display name corrected
and contribution recorded during that run, grouped by test case.`,
		Example: `  trapkit provenance ledger.yaml                      # Every recorded change
  trapkit provenance ledger.yaml --test moving-robot  # One test case
  trapkit provenance ledger.yaml --report             # Per-field report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ledger, err := provenance.Load(args[0])
			if err != nil {
				return errors.NewCommandError("provenance", "load ledger", err)
			}
			if ledger == nil {
				return errors.NewNotFoundError("provenance ledger", args[0])
			}
			if testID != "" {
				ledger.Provenance = filter(ledger.Provenance, testID)
			}

			if report {
				_, err := fmt.Fprint(cmd.OutOrStdout(), provenance.GenerateReport(ledger.Provenance).String())
				return err
			}
			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), ledger, func() any {
				return buildReport(ledger)
			})
		},
	}

	cmd.Flags().StringVar(&testID, "test", "", "only show changes to this test case")
	cmd.Flags().BoolVar(&report, "report", false, "print a per-field report with conflicts")

	return cmd
}

// filter keeps the entries recorded against one test case.
func filter(m provenance.Map, testID string) provenance.Map {
	prefix := string(provenance.ResourceTestCase) + ":" + testID + ":"
	out := make(provenance.Map)
	for key, entries := range m {
		if strings.HasPrefix(key, prefix) {
			out[key] = entries
		}
	}
	return out
}

// buildReport lays out a ledger for the table and markdown formats.
func buildReport(ledger *provenance.File) *output.Report {
	counts := ledger.Provenance.Count()
	actions := make([]string, 0, len(counts))
	for action, n := range counts {
		actions = append(actions, fmt.Sprintf("%s: %d", action, n))
	}
	slices.Sort(actions)

	title := fmt.Sprintf("Run %s, contribution %s, %s", ledger.RunID, ledger.Contribution,
		ledger.Generated.Time.UTC().Format(time.DateTime))
	if ledger.DryRun {
		title += " (dry run)"
	}

	r := &output.Report{Title: title}
	r.Add("Changes", table.ProvenanceToTableData(ledger.Provenance), actions...)
	return r
}
