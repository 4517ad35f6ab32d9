// Package validate provides the validate command implementation.
package validate

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
	"github.com/agentstation/trapkit/pkg/errors"
)

// NewCommand creates the validate command using app context.
func NewCommand(app application.Application) *cobra.Command {
	var document string

	cmd := &cobra.Command{
		Use:     "validate [document]",
		GroupID: "management",
		Short:   "Check a knowledge base document",
		Args:    cobra.MaximumNArgs(1),
		Long: `Validate checks a knowledge base document without writing it.

The document is checked against the traps.json schema, loaded, and
cross-checked against the identity tables. Schema and load failures make
the command fail; data irregularities such as duplicate model names or
results without a provider are reported as issues.`,
		Example: `  trapkit validate                     # Check the configured document
  trapkit validate traps.json          # Check a specific file
  trapkit validate -o json             # Machine-readable report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.Settings().Document
			if cmd.Flags().Changed("document") || path == "" {
				path = document
			}
			if len(args) == 1 {
				path = args[0]
			}

			tk, err := app.Client()
			if err != nil {
				return err
			}

			v, err := tk.Validate(cmd.Context(), path)
			if err != nil {
				return errors.NewCommandError("validate", "validate document", err)
			}

			if err := output.Render(cmd.OutOrStdout(), app.OutputFormat(), v, func() any {
				return buildReport(v)
			}); err != nil {
				return err
			}

			if !v.Valid() {
				return errors.NewValidationError("document", path, "document is not valid")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&document, "document", "d", "", "knowledge-base document to check (default traps.json)")

	return cmd
}

// buildReport lays out a validation for the table and markdown formats.
func buildReport(v *trapkit.Validation) *output.Report {
	if !v.Valid() {
		report := &output.Report{Title: fmt.Sprintf("%s is not valid", v.Path)}
		lines := v.SchemaErrors
		if v.Err != "" {
			lines = append(lines, v.Err)
		}
		report.Add("Errors", table.Data{}, lines...)
		return report
	}

	report := &output.Report{
		Title: fmt.Sprintf("%s is valid: %d test cases, %d model results, %d issues",
			v.Path, v.TestCases, v.Models, len(v.Issues)),
	}
	report.Add("Issues", table.IssuesToTableData(v.Issues))
	if len(v.MissingTests) > 0 {
		report.Add("Missing Test Cases", table.Data{},
			"Mapped by the identity tables but absent from the document: "+strings.Join(v.MissingTests, ", "))
	}
	if len(v.UnknownTests) > 0 {
		report.Add("Unknown Test Cases", table.Data{},
			"No raw test key maps to: "+strings.Join(v.UnknownTests, ", "))
	}
	return report
}
