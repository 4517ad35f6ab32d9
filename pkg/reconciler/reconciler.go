// Package reconciler merges aggregated trial results into the knowledge base.
//
// A merge is deterministic, idempotent and non-destructive: running it twice
// with the same inputs yields the same document as running it once, entries
// already in the document are never removed, reordered or overwritten, and
// data irregularities are reported as warnings instead of failing the run.
package reconciler

import (
	"context"
	"fmt"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/logging"
	"github.com/agentstation/trapkit/pkg/provenance"
)

// Reconciler merges one run's aggregate into a document.
type Reconciler interface {
	// Merge returns a new document with the aggregate merged in. doc is not modified.
	Merge(ctx context.Context, doc *kb.Document, agg *aggregate.Result, contribution Contribution) (*Result, error)
}

// reconciler is the default implementation of Reconciler.
type reconciler struct {
	resolver identity.Resolver
	tracking bool
	renames  bool
	backfill bool
}

// New creates a new Reconciler backed by resolver.
func New(resolver identity.Resolver, opts ...Option) (Reconciler, error) {
	if resolver == nil {
		return nil, &errors.ValidationError{
			Field:   "resolver",
			Message: "cannot be nil",
		}
	}
	options, err := newOptions(opts...)
	if err != nil {
		return nil, err
	}

	return &reconciler{
		resolver: resolver,
		tracking: options.tracking,
		renames:  options.renames,
		backfill: options.backfill,
	}, nil
}

// Merge performs the merge with a clean step-by-step flow.
func (r *reconciler) Merge(ctx context.Context, doc *kb.Document, agg *aggregate.Result, contribution Contribution) (*Result, error) {
	// Step 1: Validate inputs
	if err := r.validate(doc, agg, contribution); err != nil {
		return nil, err
	}
	logger := logging.FromContext(ctx)
	result := NewResult()
	result.Metadata.Contribution = contribution.ID
	tracker := provenance.NewTracker(r.tracking)

	// Step 2: Work on a copy
	working := doc.Clone()

	// Step 3: Correct historical display names
	if r.renames {
		r.applyRenames(ctx, working, tracker, result)
	}

	// Step 4: Resolve candidates per test case
	candidates, warnings := newCollector(r.resolver).collect(agg)
	result.Warnings = append(result.Warnings, warnings...)

	// Step 5: Merge each test case
	m := &merger{
		resolver:     r.resolver,
		tracker:      tracker,
		contribution: contribution,
		backfill:     r.backfill,
	}
	renamed := countByTest(result)
	for i := range working.TestCases {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapCanceled("merge", err)
		}
		tc := &working.TestCases[i]

		cands, ok := candidates[tc.ID]
		if !ok {
			result.Tests = append(result.Tests, TestSummary{
				TestID:   tc.ID,
				Name:     tc.Name,
				Existing: len(tc.ModelTests),
				Final:    len(tc.ModelTests),
				Renamed:  renamed[tc.ID],
				Skipped:  true,
			})
			result.Warnings = append(result.Warnings, Warning{
				Kind:    WarningUnmatchedTestCase,
				TestID:  tc.ID,
				Message: fmt.Sprintf("no trial data for test case %q; left unchanged", tc.ID),
			})
			continue
		}

		summary := m.mergeTestCase(tc, cands)
		summary.Renamed = renamed[tc.ID]
		result.Tests = append(result.Tests, summary)

		logging.FromContext(logging.WithTestCase(ctx, tc.ID)).Debug().
			Int("existing", summary.Existing).
			Int("added", summary.Added).
			Int("kept", summary.Kept).
			Int("backfilled", summary.Backfilled).
			Msg("Merged test case")
	}

	// Step 6: Report aggregate data with nowhere to go
	for _, test := range agg.Tests() {
		if _, ok := working.Find(test); !ok {
			result.Warnings = append(result.Warnings, Warning{
				Kind:    WarningMissingTestCase,
				TestID:  test,
				Message: fmt.Sprintf("trial data for %q has no test case in the document; not merged", test),
			})
		}
	}

	// Step 7: Build and return result
	result.Document = working
	if r.tracking {
		result.Provenance = tracker.Map()
	}
	result.finish()

	logger.Debug().
		Int("merged", result.Metadata.Stats.TestCasesMerged).
		Int("skipped", result.Metadata.Stats.TestCasesSkipped).
		Int("added", result.Metadata.Stats.EntriesAdded).
		Int("warnings", len(result.Warnings)).
		Msg("Merge completed")
	return result, nil
}

func (r *reconciler) validate(doc *kb.Document, agg *aggregate.Result, contribution Contribution) error {
	if doc == nil {
		return errors.NewMergeError("", &errors.ValidationError{Field: "document", Message: "cannot be nil"})
	}
	if agg == nil {
		return errors.NewMergeError("", &errors.ValidationError{Field: "aggregate", Message: "cannot be nil"})
	}
	if err := contribution.Validate(); err != nil {
		return errors.NewMergeError("", err)
	}
	return nil
}

func (r *reconciler) applyRenames(ctx context.Context, doc *kb.Document, tracker provenance.Tracker, result *Result) {
	report := ApplyRenames(doc, r.resolver.Renames())
	result.Warnings = append(result.Warnings, report.Warnings...)
	result.renames = report.Applied

	for _, a := range report.Applied {
		tracker.Track(provenance.ResourceTestCase, a.TestID, provenance.ModelField(a.To), provenance.Provenance{
			Source:        "renames",
			Action:        provenance.ActionRenamed,
			Value:         a.To,
			PreviousValue: a.From,
			Reason:        a.Reason,
		})
		logging.FromContext(logging.WithModel(logging.WithTestCase(ctx, a.TestID), a.From)).Debug().
			Str("to", a.To).
			Msg("Corrected display name")
	}
}

// countByTest counts applied renames per test case id.
func countByTest(result *Result) map[string]int {
	counts := make(map[string]int)
	for _, a := range result.renames {
		counts[a.TestID]++
	}
	return counts
}
