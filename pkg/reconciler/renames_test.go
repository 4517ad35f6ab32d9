package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/reconciler"
)

var defaultRenames = []identity.Rename{
	{From: "GPT-5 Instant", To: "GPT-5.1 Instant"},
	{From: "GPT-5.1 Thinking", To: "GPT-5.1†"},
}

func TestApplyRenamesIsIdempotent(t *testing.T) {
	doc := parseDoc(t, `[{"id":"t1","name":"One","modelTests":[
	  {"model":"GPT-5 Instant","passRate":1,"trials":10},
	  {"model":"GPT-5.1 Thinking","passRate":1,"trials":10},
	  {"model":"Other","passRate":1,"trials":10}
	]}]`)

	report := reconciler.ApplyRenames(doc, defaultRenames)
	require.Len(t, report.Applied, 2)
	once := marshal(t, doc)

	report = reconciler.ApplyRenames(doc, defaultRenames)
	assert.Empty(t, report.Applied)
	assert.Empty(t, report.Warnings)
	assert.Equal(t, once, marshal(t, doc))

	tc, _ := doc.Find("t1")
	assert.Equal(t, []string{"GPT-5.1 Instant", "GPT-5.1†", "Other"}, tc.Models())
}

func TestApplyRenamesSkipsExistingTarget(t *testing.T) {
	doc := parseDoc(t, `[{"id":"t1","name":"One","modelTests":[
	  {"model":"GPT-5.1 Instant","passRate":1,"trials":10},
	  {"model":"GPT-5 Instant","passRate":0.5,"trials":10}
	]}]`)

	report := reconciler.ApplyRenames(doc, defaultRenames)
	assert.Empty(t, report.Applied)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, reconciler.WarningRenameConflict, report.Warnings[0].Kind)

	tc, _ := doc.Find("t1")
	assert.Equal(t, []string{"GPT-5.1 Instant", "GPT-5 Instant"}, tc.Models())
}

func TestApplyRenamesKeepsAttributedEntries(t *testing.T) {
	doc := parseDoc(t, `[{"id":"t1","name":"One","modelTests":[
	  {"model":"GPT-5 Instant","passRate":1,"trials":10,"contributionId":"run-2025"}
	]}]`)

	report := reconciler.ApplyRenames(doc, defaultRenames)
	assert.Empty(t, report.Applied)
	assert.Empty(t, report.Warnings)

	tc, _ := doc.Find("t1")
	assert.Equal(t, []string{"GPT-5 Instant"}, tc.Models())
}

func TestApplyRenamesScopedToContributions(t *testing.T) {
	doc := parseDoc(t, `[{"id":"t1","name":"One","modelTests":[
	  {"model":"GPT-5 Instant","passRate":1,"trials":10,"contributionId":"orig-2025"},
	  {"model":"GPT-5.1 Thinking","passRate":1,"trials":10,"contributionId":"run-2026"}
	]}]`)
	renames := []identity.Rename{
		{From: "GPT-5 Instant", To: "GPT-5.1 Instant", Contributions: []string{"orig-2025"}},
		{From: "GPT-5.1 Thinking", To: "GPT-5.1†", Contributions: []string{"orig-2025"}},
	}

	report := reconciler.ApplyRenames(doc, renames)
	require.Len(t, report.Applied, 1)
	assert.Equal(t, "GPT-5 Instant", report.Applied[0].From)

	tc, _ := doc.Find("t1")
	assert.Equal(t, []string{"GPT-5.1 Instant", "GPT-5.1 Thinking"}, tc.Models())
}

func TestApplyRenamesNoop(t *testing.T) {
	assert.Empty(t, reconciler.ApplyRenames(nil, defaultRenames).Applied)

	doc := parseDoc(t, `[{"id":"t1","name":"One"}]`)
	assert.Empty(t, reconciler.ApplyRenames(doc, nil).Applied)
}
