package reconciler_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/reconciler"
	"github.com/agentstation/trapkit/pkg/trials"
)

const testTables = `
tests:
  t_one: t1
  t_two: t2
  t_three: t3
  t_four: t4
providers:
  - provider: OpenAI
    models:
      - { key: a, name: A, released: "2025-08" }
      - { key: b, name: B, released: "2024-05" }
      - { key: gpt-4o, name: GPT-4o, released: "2024-05" }
      - { key: gpt-5-instant, name: GPT-5 Instant, released: "2025-08" }
      - { key: gpt-5.1-instant, name: GPT-5.1 Instant, released: "2025-11" }
  - provider: Google
    models:
      - { key: gemini-2.5-pro, name: Gemini 2.5 Pro, released: "2025-03" }
legacy_providers:
  Gemini 2.5 Pro: Google
  GPT-5.1 Instant: OpenAI
renames:
  - { from: GPT-5 Instant, to: GPT-5.1 Instant }
`

var testContribution = reconciler.Contribution{
	ID:          "run-2026",
	Contributor: "Tester (2026)",
	Date:        "2026-02-18",
	Type:        "model-data",
	Description: "Extended validation",
	Source:      "Tester (2026), Extended validation",
}

func testResolver(t *testing.T) *identity.Table {
	t.Helper()
	table, err := identity.Parse([]byte(testTables))
	require.NoError(t, err)
	return table
}

func parseDoc(t *testing.T, data string) *kb.Document {
	t.Helper()
	doc, err := kb.Parse([]byte(data))
	require.NoError(t, err)
	return doc
}

func marshal(t *testing.T, doc *kb.Document) string {
	t.Helper()
	data, err := kb.Marshal(doc)
	require.NoError(t, err)
	return string(data)
}

// group returns total rows for one (model, test) pair with correct of them passing.
func group(model, test string, correct, total int) []trials.RawTrial {
	rows := make([]trials.RawTrial, 0, total)
	for i := 0; i < total; i++ {
		rows = append(rows, trials.RawTrial{ModelKey: model, TestKey: test, Correct: i < correct})
	}
	return rows
}

func aggregateOf(t *testing.T, resolver identity.Resolver, groups ...[]trials.RawTrial) *aggregate.Result {
	t.Helper()
	var rows []trials.RawTrial
	for _, g := range groups {
		rows = append(rows, g...)
	}
	return aggregate.Aggregate(rows, resolver)
}

func newReconciler(t *testing.T, resolver identity.Resolver, opts ...reconciler.Option) reconciler.Reconciler {
	t.Helper()
	r, err := reconciler.New(resolver, opts...)
	require.NoError(t, err)
	return r
}
