package trapkit

import (
	"context"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/logging"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Compile-time interface check to ensure proper implementation.
var _ Aggregator = (*client)(nil)

// Aggregator reduces trial batches to pass rates without a document.
type Aggregator interface {
	Aggregate(ctx context.Context, paths ...string) (*AggregateResult, error)
}

// AggregateResult is the outcome of an aggregation-only run.
type AggregateResult struct {
	Batches []trials.Batch           `json:"batches" yaml:"batches"`
	Result  *aggregate.Result        `json:"result" yaml:"result"`
	Entries []aggregate.Entry        `json:"entries" yaml:"entries"`
	Models  []aggregate.ModelSummary `json:"models" yaml:"models"`
}

// Aggregate reads the trial batches at paths and returns per-test pass
// rates plus each model's mean across tests.
func (c *client) Aggregate(ctx context.Context, paths ...string) (*AggregateResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	rows, batches, err := trials.ReadFiles(ctx, paths, c.options.trialOptions()...)
	if err != nil {
		return nil, errors.WrapResource("load", "trials", "", err)
	}

	agg := aggregate.Aggregate(rows, c.resolver)
	logging.FromContext(ctx).Debug().
		Int("batches", len(batches)).
		Int("rows", agg.Rows).
		Int("groups", len(agg.Stats)).
		Int("skipped", agg.Skipped).
		Msg("Aggregated trial batches")

	return &AggregateResult{
		Batches: batches,
		Result:  agg,
		Entries: agg.Entries(),
		Models:  agg.Summarize(c.resolver),
	}, nil
}
