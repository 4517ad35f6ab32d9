// Package update provides the update command implementation.
package update

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/pkg/errors"
)

// NewCommand creates the update command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var flags *Flags

	cmd := &cobra.Command{
		Use:     "update",
		GroupID: "core",
		Short:   "Merge trial batches into the knowledge base",
		Long: `Update folds new trial data into the knowledge base document:

1. Read every trial batch (CSV or XLSX, one row per trial)
2. Aggregate rows into per-model pass rates on each test case
3. Merge the rates into traps.json, appending models not yet present
4. Record the contribution and write the document back

Existing model results are never overwritten, so re-running the same
batches leaves the document unchanged. Nothing is written when any
stage fails.`,
		Example: `  trapkit update -t anthropic.csv -t openai.csv        # Merge two batches
  trapkit update -t results.xlsx --dry-run              # Preview the merge
  trapkit update -t results.csv --backup                # Keep a backup of the prior document
  trapkit update -t results.csv --provenance-out p.yaml # Write the provenance ledger
  trapkit update -t results.csv -o json                 # Machine-readable result`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tk, err := app.Client()
			if err != nil {
				return err
			}

			opts := BuildUpdateOptions(cmd, flags, app.Settings())
			result, err := tk.Update(cmd.Context(), opts...)
			if err != nil {
				return errors.NewCommandError("update", "update knowledge base", err)
			}

			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), result, func() any {
				return buildReport(result)
			})
		},
	}

	flags = addUpdateFlags(cmd)

	return cmd
}
