package table

import (
	"strconv"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/trials"
)

// StatsToTableData converts aggregate pass rates to table format, one row
// per (test, model) group.
func StatsToTableData(result *aggregate.Result, resolver identity.Resolver) Data {
	keys := result.Keys()
	rows := make([][]string, 0, len(keys))
	for _, k := range keys {
		s := result.Stats[k]
		id, _ := resolver.Model(k.Model)
		rows = append(rows, []string{
			k.Test,
			id.DisplayName,
			k.Model,
			FormatRate(s.PassRate),
			strconv.Itoa(s.Trials),
		})
	}

	return Data{
		Headers:         []string{"Test", "Model", "Key", "Pass Rate", "Trials"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignRight},
	}
}

// ModelSummariesToTableData converts per-model means to table format.
func ModelSummariesToTableData(models []aggregate.ModelSummary) Data {
	rows := make([][]string, 0, len(models))
	for _, m := range models {
		rows = append(rows, []string{
			m.DisplayName,
			m.Provider.String(),
			strconv.Itoa(m.Tests),
			strconv.Itoa(m.Trials),
			FormatPercent(m.MeanRate),
		})
	}

	return Data{
		Headers:         []string{"Model", "Provider", "Tests", "Trials", "Avg Accuracy"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight},
	}
}

// AggregateWarningsToTableData converts excluded-row warnings to table format.
func AggregateWarningsToTableData(warnings []aggregate.Warning) Data {
	rows := make([][]string, 0, len(warnings))
	for _, w := range warnings {
		rows = append(rows, []string{w.TestKey, strconv.Itoa(w.Rows), w.Message})
	}
	return Data{
		Headers: []string{"Test Key", "Rows", "Message"},
		Rows:    rows,
	}
}

// BatchesToTableData converts the trial batches read in a run to table format.
func BatchesToTableData(batches []trials.Batch) Data {
	rows := make([][]string, 0, len(batches))
	for _, b := range batches {
		rows = append(rows, []string{b.Source, b.Format, strconv.Itoa(b.Rows)})
	}
	return Data{
		Headers:         []string{"Source", "Format", "Rows"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignRight},
	}
}
