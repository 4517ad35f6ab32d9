package update

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/pkg/reconciler"
)

// Flags holds the update command flags.
type Flags struct {
	Document      string
	Trials        []string
	Output        string
	DryRun        bool
	Backup        bool
	BackupDir     string
	ProvenanceOut string
	Timeout       time.Duration

	ContributionID string
	Contributor    string
	Date           string
	Type           string
	Description    string
	Source         string
}

// addUpdateFlags registers the update flags on cmd.
func addUpdateFlags(cmd *cobra.Command) *Flags {
	flags := &Flags{}

	cmd.Flags().StringVarP(&flags.Document, "document", "d", "", "knowledge-base document to merge into (default traps.json)")
	cmd.Flags().StringSliceVarP(&flags.Trials, "trials", "t", nil, "trial batch file (CSV or XLSX), repeatable")
	cmd.Flags().StringVar(&flags.Output, "output", "", "write the merged document here instead of over --document")
	cmd.Flags().BoolVar(&flags.DryRun, "dry-run", false, "merge and report without writing the document")
	cmd.Flags().BoolVar(&flags.Backup, "backup", false, "write a compressed backup of the prior document")
	cmd.Flags().StringVar(&flags.BackupDir, "backup-dir", "", "backup directory (default next to the document)")
	cmd.Flags().StringVar(&flags.ProvenanceOut, "provenance-out", "", "write the field provenance ledger to this YAML file")
	cmd.Flags().DurationVar(&flags.Timeout, "timeout", 0, "timeout for the whole run (0 disables)")

	cmd.Flags().StringVar(&flags.ContributionID, "contribution-id", "", "contribution id recorded on every merged test case")
	cmd.Flags().StringVar(&flags.Contributor, "contributor", "", "contributor name")
	cmd.Flags().StringVar(&flags.Date, "date", "", "contribution date, YYYY-MM-DD")
	cmd.Flags().StringVar(&flags.Type, "type", "", "contribution type")
	cmd.Flags().StringVar(&flags.Description, "description", "", "contribution description")
	cmd.Flags().StringVar(&flags.Source, "source", "", "source text written on new model results (default contributor)")

	return flags
}

// BuildUpdateOptions resolves the flags against the application settings.
// A flag wins only when it was set on the command line. Setting
// --contribution-id to a new id drops the configured contributor, date,
// description and source, which then come from their own flags.
func BuildUpdateOptions(cmd *cobra.Command, flags *Flags, settings application.Settings) []trapkit.UpdateOption {
	changed := cmd.Flags().Changed

	document := settings.Document
	if changed("document") || document == "" {
		document = flags.Document
	}
	paths := settings.Trials
	if changed("trials") {
		paths = flags.Trials
	}

	contribution := settings.Contribution
	if changed("contribution-id") && flags.ContributionID != contribution.ID {
		// A different batch starts from an empty descriptor.
		contribution = reconciler.Contribution{Type: contribution.Type}
	}
	set := func(name string, dst *string, val string) {
		if changed(name) {
			*dst = val
		}
	}
	set("contribution-id", &contribution.ID, flags.ContributionID)
	set("contributor", &contribution.Contributor, flags.Contributor)
	set("date", &contribution.Date, flags.Date)
	set("type", &contribution.Type, flags.Type)
	set("description", &contribution.Description, flags.Description)
	set("source", &contribution.Source, flags.Source)

	opts := []trapkit.UpdateOption{
		trapkit.WithTrials(paths...),
		trapkit.WithContribution(contribution),
		trapkit.WithDryRun(flags.DryRun),
	}
	if document != "" {
		opts = append(opts, trapkit.WithDocument(document))
	}
	if flags.Output != "" {
		opts = append(opts, trapkit.WithOutput(flags.Output))
	}

	backup, backupDir := settings.Backup, settings.BackupDir
	if changed("backup") {
		backup = flags.Backup
	}
	if changed("backup-dir") {
		backup, backupDir = true, flags.BackupDir
	}
	if backup {
		opts = append(opts, trapkit.WithBackup(backupDir))
	}

	if flags.ProvenanceOut != "" {
		opts = append(opts, trapkit.WithProvenanceOut(flags.ProvenanceOut))
	}
	if flags.Timeout > 0 {
		opts = append(opts, trapkit.WithTimeout(flags.Timeout))
	}
	return opts
}
