package table

import (
	"testing"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/provenance"
	"github.com/agentstation/trapkit/pkg/reconciler"
	"github.com/agentstation/trapkit/pkg/trials"
)

func TestFormatRate(t *testing.T) {
	assert.Equal(t, "0.70", FormatRate(0.7))
	assert.Equal(t, "1.00", FormatRate(1))
	assert.Equal(t, "70%", FormatPercent(0.7))
	assert.Equal(t, "33%", FormatPercent(1.0/3))
}

func TestTestSummariesToTableData(t *testing.T) {
	data := TestSummariesToTableData([]reconciler.TestSummary{
		{TestID: "moving-robot", Name: "Moving Robot", Existing: 1, Added: 2, Final: 3, Renamed: 1},
		{TestID: "colliding-oranges", Name: "Colliding Oranges", Final: 4, Skipped: true},
	})

	want := [][]string{
		{"moving-robot", "Moving Robot", "1", "2", "3", "1", "0", "merged"},
		{"colliding-oranges", "Colliding Oranges", "0", "0", "4", "0", "0", "skipped"},
	}
	if diff := cmp.Diff(want, data.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, data.ColumnAlignment, len(data.Headers))
}

func TestWarningsToTableData(t *testing.T) {
	data := WarningsToTableData([]reconciler.Warning{
		{Kind: reconciler.WarningUnmatchedTestCase, TestID: "shape-overload", Message: "no data"},
	})
	assert.Equal(t, [][]string{{"unmatched_test_case", "shape-overload", "-", "no data"}}, data.Rows)
	assert.True(t, WarningsToTableData(nil).Empty())
}

func TestRenamesToTableData(t *testing.T) {
	data := RenamesToTableData([]reconciler.AppliedRename{
		{TestID: "moving-robot", From: "GPT-5 Instant", To: "GPT-5.1 Instant"},
	})
	assert.Equal(t, [][]string{{"moving-robot", "GPT-5 Instant", "GPT-5.1 Instant", "-"}}, data.Rows)
}

func TestIssuesToTableData(t *testing.T) {
	data := IssuesToTableData([]kb.Issue{
		{TestID: "moving-robot", Kind: kb.IssueMissingProvider, Value: "GPT-4o", Message: "no provider"},
	})
	assert.Equal(t, [][]string{{"moving-robot", "missing_provider", "GPT-4o", "no provider"}}, data.Rows)
}

func TestAggregateTables(t *testing.T) {
	resolver, err := identity.Default()
	assert.NoError(t, err)

	result := &aggregate.Result{Stats: map[aggregate.Key]aggregate.Stat{
		{Model: "gpt-4o", Test: "moving-robot"}:      {PassRate: 0.7, Trials: 10},
		{Model: "mystery", Test: "moving-robot"}:     {PassRate: 1, Trials: 5},
		{Model: "gpt-4o", Test: "colliding-oranges"}: {PassRate: 0.25, Trials: 4},
	}}

	want := [][]string{
		{"colliding-oranges", "GPT-4o", "gpt-4o", "0.25", "4"},
		{"moving-robot", "GPT-4o", "gpt-4o", "0.70", "10"},
		{"moving-robot", "mystery", "mystery", "1.00", "5"},
	}
	if diff := cmp.Diff(want, StatsToTableData(result, resolver).Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	models := ModelSummariesToTableData([]aggregate.ModelSummary{
		{Model: "gpt-4o", DisplayName: "GPT-4o", Provider: "OpenAI", Tests: 2, Trials: 14, MeanRate: 0.6},
	})
	assert.Equal(t, [][]string{{"GPT-4o", "OpenAI", "2", "14", "60%"}}, models.Rows)

	warnings := AggregateWarningsToTableData([]aggregate.Warning{{TestKey: "bogus", Rows: 3, Message: "unmapped"}})
	assert.Equal(t, [][]string{{"bogus", "3", "unmapped"}}, warnings.Rows)

	batches := BatchesToTableData([]trials.Batch{{Source: "a.csv", Format: "csv", Rows: 20}})
	assert.Equal(t, [][]string{{"a.csv", "csv", "20"}}, batches.Rows)
}

func TestIdentityTables(t *testing.T) {
	ids := IdentitiesToTableData([]identity.Identity{
		{Key: "gpt-4o", DisplayName: "GPT-4o", Provider: "OpenAI", ReleaseDate: "2024-05"},
		{Key: "mystery", DisplayName: "mystery", Provider: "Unknown"},
	})
	assert.Equal(t, [][]string{
		{"gpt-4o", "GPT-4o", "OpenAI", "2024-05"},
		{"mystery", "mystery", "Unknown", "-"},
	}, ids.Rows)

	tests := TestsToTableData(map[string]string{"moving_robot": "moving-robot", "colliding_oranges": "colliding-oranges"})
	assert.Equal(t, [][]string{
		{"colliding_oranges", "colliding-oranges"},
		{"moving_robot", "moving-robot"},
	}, tests.Rows)

	renames := RenamesListToTableData([]identity.Rename{{From: "a", To: "b", Reason: "typo"}})
	assert.Equal(t, [][]string{{"a", "b", "typo"}}, renames.Rows)
}

func TestProvenanceToTableData(t *testing.T) {
	older := utc.Time{Time: time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)}
	newer := utc.Time{Time: time.Date(2026, 2, 19, 8, 30, 0, 0, time.UTC)}

	m := provenance.Map{
		"test_case:moving-robot:modelTests[GPT-4o]": {
			{Source: "orig", Action: provenance.ActionAdded, Value: 0.5, Timestamp: older},
			{Source: "run-1", Action: provenance.ActionKept, Value: 0.5, PreviousValue: 0.7, Timestamp: newer},
		},
		"test_case:colliding-oranges:provider": {
			{Action: provenance.ActionBackfilled, Value: "", Timestamp: utc.Time{}},
		},
	}

	want := [][]string{
		{"colliding-oranges", "provider", "backfilled", "<empty>", "-", "-", "-"},
		{"moving-robot", "modelTests[GPT-4o]", "kept", "0.50", "0.70", "run-1", "2026-02-19 08:30:00"},
		{"", "", "added", "0.50", "-", "orig", "2026-02-18 12:00:00"},
	}
	if diff := cmp.Diff(want, ProvenanceToTableData(m).Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitKey(t *testing.T) {
	resource, field := splitKey("test_case:moving-robot:modelTests[GPT-5.1: Thinking]")
	assert.Equal(t, "moving-robot", resource)
	assert.Equal(t, "modelTests[GPT-5.1: Thinking]", field)

	resource, field = splitKey("bare")
	assert.Equal(t, "bare", resource)
	assert.Empty(t, field)
}
