package table

import (
	"strconv"

	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/reconciler"
)

// TestSummariesToTableData converts per-test merge summaries to table format.
func TestSummariesToTableData(summaries []reconciler.TestSummary) Data {
	rows := make([][]string, 0, len(summaries))
	for _, s := range summaries {
		status := "merged"
		if s.Skipped {
			status = "skipped"
		}
		rows = append(rows, []string{
			s.TestID,
			s.Name,
			strconv.Itoa(s.Existing),
			strconv.Itoa(s.Added),
			strconv.Itoa(s.Final),
			strconv.Itoa(s.Renamed),
			strconv.Itoa(s.Backfilled),
			status,
		})
	}

	return Data{
		Headers: []string{"Test", "Name", "Existing", "Added", "Total", "Renamed", "Backfilled", "Status"},
		Rows:    rows,
		ColumnAlignment: []Align{
			AlignLeft,   // Test
			AlignLeft,   // Name
			AlignRight,  // Existing
			AlignRight,  // Added
			AlignRight,  // Total
			AlignRight,  // Renamed
			AlignRight,  // Backfilled
			AlignCenter, // Status
		},
	}
}

// WarningsToTableData converts merge warnings to table format.
func WarningsToTableData(warnings []reconciler.Warning) Data {
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{string(w.Kind), dash(w.TestID), dash(w.Model), w.Message})
	}
	return Data{
		Headers: []string{"Kind", "Test", "Model", "Message"},
		Rows:    rows,
	}
}

// RenamesToTableData converts applied display name corrections to table format.
func RenamesToTableData(renames []reconciler.AppliedRename) Data {
	rows := make([][]string, 0, len(renames))
	for _, r := range renames {
		rows = append(rows, []string{r.TestID, r.From, r.To, dash(r.Reason)})
	}
	return Data{
		Headers: []string{"Test", "From", "To", "Reason"},
		Rows:    rows,
	}
}

// IssuesToTableData converts document issues to table format.
func IssuesToTableData(issues []kb.Issue) Data {
	rows := make([][]string, 0, len(issues))
	for _, i := range issues {
		rows = append(rows, []string{i.TestID, i.Kind, i.Value, i.Message})
	}
	return Data{
		Headers: []string{"Test", "Kind", "Value", "Message"},
		Rows:    rows,
	}
}
