package provenance

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/agentstation/utc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/trapkit/internal/cmd/application"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/provenance"
	"github.com/agentstation/trapkit/pkg/save"
)

func writeLedger(t *testing.T) string {
	t.Helper()
	tracker := provenance.NewTracker(true)
	now := utc.Now()
	tracker.Track(provenance.ResourceTestCase, "moving-robot", provenance.ModelField("Gemini 2.5 Pro"), provenance.Provenance{
		Source: "run-1", Action: provenance.ActionAdded, Value: 0.9, Timestamp: now,
	})
	tracker.Track(provenance.ResourceTestCase, "colliding-oranges", provenance.ContributionField("run-1"), provenance.Provenance{
		Source: "run-1", Action: provenance.ActionContributed, Value: "run-1", Timestamp: now,
	})

	path := filepath.Join(t.TempDir(), "ledger.yaml")
	ledger := &provenance.File{RunID: "abc", Contribution: "run-1", Generated: now, Provenance: tracker.Map()}
	require.NoError(t, ledger.Save(save.WithPath(path)))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewCommand(&application.Mock{})
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestProvenanceTable(t *testing.T) {
	out, err := run(t, writeLedger(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Run abc, contribution run-1")
	assert.Contains(t, out, "added: 1")
	assert.Contains(t, out, "contributed: 1")
	assert.Contains(t, out, "moving-robot")
	assert.Contains(t, out, "colliding-oranges")
}

func TestProvenanceFilter(t *testing.T) {
	out, err := run(t, writeLedger(t), "--test", "moving-robot")
	require.NoError(t, err)

	assert.Contains(t, out, "moving-robot")
	assert.NotContains(t, out, "colliding-oranges")
}

func TestProvenanceReport(t *testing.T) {
	out, err := run(t, writeLedger(t), "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "Provenance Report")
}

func TestProvenanceMissing(t *testing.T) {
	_, err := run(t, filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}
