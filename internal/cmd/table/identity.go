package table

import (
	"slices"

	"github.com/agentstation/trapkit/pkg/identity"
)

// IdentitiesToTableData converts identities to table format in the order given.
func IdentitiesToTableData(ids []identity.Identity) Data {
	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, []string{id.Key, id.DisplayName, id.Provider.String(), dash(id.ReleaseDate)})
	}
	return Data{
		Headers: []string{"Key", "Display Name", "Provider", "Released"},
		Rows:    rows,
	}
}

// TestsToTableData converts the raw test key mapping to table format, sorted
// by raw key.
func TestsToTableData(tests map[string]string) Data {
	keys := make([]string, 0, len(tests))
	for k := range tests {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, []string{k, tests[k]})
	}
	return Data{
		Headers: []string{"Trial Key", "Test Case"},
		Rows:    rows,
	}
}

// RenamesListToTableData converts the rename patch list to table format.
func RenamesListToTableData(renames []identity.Rename) Data {
	rows := make([][]string, 0, len(renames))
	for _, r := range renames {
		rows = append(rows, []string{r.From, r.To, dash(r.Reason)})
	}
	return Data{
		Headers: []string{"From", "To", "Reason"},
		Rows:    rows,
	}
}
