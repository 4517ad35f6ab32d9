// Package restore provides the restore command implementation.
package restore

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/save"
)

// NewCommand creates the restore command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var (
		document string
		backup   bool
	)

	cmd := &cobra.Command{
		Use:     "restore <backup>",
		GroupID: "management",
		Short:   "Restore the knowledge base from a backup",
		Args:    cobra.ExactArgs(1),
		Long: `Restore decompresses a backup written by "trapkit update --backup",
checks that it parses as a knowledge base document, and writes it over
the document.`,
		Example: `  trapkit restore backups/traps.20260218T120000Z.json.zst
  trapkit restore old.json.zst -d traps.json --backup   # Keep the current document too`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Settings().Document
			if cmd.Flags().Changed("document") || path == "" {
				path = document
			}
			if path == "" {
				return errors.NewValidationError("document", path, "document path cannot be empty")
			}

			tk, err := app.Client()
			if err != nil {
				return err
			}

			opts := []save.Option{save.WithPath(path)}
			if backup {
				opts = append(opts, save.WithBackup(app.Settings().BackupDir))
			}
			saved, err := tk.Restore(args[0], opts...)
			if err != nil {
				return errors.NewCommandError("restore", "restore document", err)
			}

			return output.Render(cmd.OutOrStdout(), app.OutputFormat(), saved, func() any {
				report := &output.Report{Title: fmt.Sprintf("Restored %s from %s (%d bytes)", saved.Path, args[0], saved.Bytes)}
				if saved.BackupPath != "" {
					report.Add("Backup", table.Data{}, "Previous document: "+saved.BackupPath)
				}
				return report
			})
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "document to restore over (default traps.json)")
	cmd.Flags().BoolVar(&backup, "backup", false, "back up the current document before overwriting it")

	return cmd
}
