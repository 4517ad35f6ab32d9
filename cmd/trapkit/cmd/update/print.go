package update

import (
	"fmt"

	"github.com/agentstation/trapkit"
	"github.com/agentstation/trapkit/internal/cmd/output"
	"github.com/agentstation/trapkit/internal/cmd/table"
)

// buildReport lays out an update result for the table and markdown formats.
func buildReport(result *trapkit.Result) *output.Report {
	merge := result.Merge
	report := &output.Report{Title: merge.Summary()}

	lines := make([]string, 0, len(merge.Tests))
	for _, t := range merge.Tests {
		lines = append(lines, t.String())
	}
	report.Add("Batches", table.BatchesToTableData(result.Batches),
		fmt.Sprintf("%d rows read, %d excluded", result.Aggregate.Rows, result.Aggregate.Skipped))
	report.Add("Test Cases", table.TestSummariesToTableData(merge.Tests), lines...)
	report.Add("Display Name Corrections", table.RenamesToTableData(merge.Renames()))
	report.Add("Excluded Rows", table.AggregateWarningsToTableData(result.Aggregate.Warnings))
	report.Add("Warnings", table.WarningsToTableData(merge.Warnings))
	report.Add("Output", table.Data{}, writeLines(result)...)

	return report
}

// writeLines describes what the run wrote.
func writeLines(result *trapkit.Result) []string {
	var lines []string
	switch {
	case result.DryRun:
		lines = append(lines, "Dry run: document not written")
	case result.Written:
		lines = append(lines, fmt.Sprintf("Wrote %s (%d bytes)", result.OutputPath, result.Bytes))
	}
	if result.BackupPath != "" {
		lines = append(lines, "Backup: "+result.BackupPath)
	}
	if result.ProvenancePath != "" {
		lines = append(lines, "Provenance: "+result.ProvenancePath)
	}
	return lines
}
