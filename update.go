package trapkit

import (
	"context"
	"time"

	"github.com/agentstation/utc"
	"github.com/google/uuid"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/errors"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/logging"
	"github.com/agentstation/trapkit/pkg/provenance"
	"github.com/agentstation/trapkit/pkg/reconciler"
	"github.com/agentstation/trapkit/pkg/save"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Compile-time interface check to ensure proper implementation.
var _ Updater = (*client)(nil)

// Updater runs the full update pipeline.
type Updater interface {
	Update(ctx context.Context, opts ...UpdateOption) (*Result, error)
}

// UpdateOptions controls one run of the update pipeline.
type UpdateOptions struct {
	// Inputs
	Document string   // Knowledge-base document to merge into
	Trials   []string // Trial batches, read in order and concatenated

	// Contribution added to every merged test case
	Contribution reconciler.Contribution

	// Output control
	OutputPath    string        // Where to write the merged document (empty means Document)
	DryRun        bool          // Merge and report without writing the document
	Backup        bool          // Write a compressed backup of the prior document
	BackupDir     string        // Backup directory (empty means next to the document)
	ProvenanceOut string        // Provenance ledger path (empty means no ledger)
	Timeout       time.Duration // Timeout for the whole run
}

// UpdateOption is a function that configures UpdateOptions.
type UpdateOption func(*UpdateOptions)

// Apply applies the given options to the update options.
func (u *UpdateOptions) Apply(opts ...UpdateOption) *UpdateOptions {
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// DefaultUpdateOptions returns the default update options.
func DefaultUpdateOptions() *UpdateOptions {
	return &UpdateOptions{
		Document: constants.DefaultDocumentPath,
	}
}

// NewUpdateOptions returns the defaults with opts applied.
func NewUpdateOptions(opts ...UpdateOption) *UpdateOptions {
	return DefaultUpdateOptions().Apply(opts...)
}

// Validate checks that the options describe a runnable update.
func (u *UpdateOptions) Validate() error {
	if u.Document == "" {
		return &errors.ValidationError{
			Field:   "Document",
			Message: "document path cannot be empty",
		}
	}
	if len(u.Trials) == 0 {
		return &errors.ValidationError{
			Field:   "Trials",
			Message: "at least one trial file is required",
		}
	}
	if u.Timeout < 0 {
		return &errors.ValidationError{
			Field:   "Timeout",
			Value:   u.Timeout,
			Message: "timeout must be non-negative",
		}
	}
	return u.Contribution.Validate()
}

// target returns the path the merged document is written to.
func (u *UpdateOptions) target() string {
	if u.OutputPath != "" {
		return u.OutputPath
	}
	return u.Document
}

// WithDocument sets the knowledge-base document path.
func WithDocument(path string) UpdateOption {
	return func(u *UpdateOptions) {
		u.Document = path
	}
}

// WithTrials appends trial batch paths.
func WithTrials(paths ...string) UpdateOption {
	return func(u *UpdateOptions) {
		u.Trials = append(u.Trials, paths...)
	}
}

// WithContribution sets the contribution descriptor for the run.
func WithContribution(c reconciler.Contribution) UpdateOption {
	return func(u *UpdateOptions) {
		u.Contribution = c
	}
}

// WithOutput writes the merged document to path instead of over the input.
func WithOutput(path string) UpdateOption {
	return func(u *UpdateOptions) {
		u.OutputPath = path
	}
}

// WithDryRun configures whether the document write is skipped.
func WithDryRun(dryRun bool) UpdateOption {
	return func(u *UpdateOptions) {
		u.DryRun = dryRun
	}
}

// WithBackup enables a compressed backup of the prior document in dir.
func WithBackup(dir string) UpdateOption {
	return func(u *UpdateOptions) {
		u.Backup = true
		u.BackupDir = dir
	}
}

// WithProvenanceOut writes the run's provenance ledger to path.
func WithProvenanceOut(path string) UpdateOption {
	return func(u *UpdateOptions) {
		u.ProvenanceOut = path
	}
}

// WithTimeout bounds the whole run.
func WithTimeout(timeout time.Duration) UpdateOption {
	return func(u *UpdateOptions) {
		u.Timeout = timeout
	}
}

// Result is the outcome of one update run.
type Result struct {
	RunID    string         `json:"runId" yaml:"run_id"`
	Document string         `json:"document" yaml:"document"`
	Batches  []trials.Batch `json:"batches" yaml:"batches"`

	// Aggregate holds the per-model pass rates the merge consumed.
	Aggregate *aggregate.Result `json:"aggregate" yaml:"aggregate"`

	// Merge holds per-test summaries, warnings and the merged document.
	Merge *reconciler.Result `json:"merge" yaml:"merge"`

	// Write outcome. Written is false on dry runs.
	DryRun     bool   `json:"dryRun" yaml:"dry_run"`
	Written    bool   `json:"written" yaml:"written"`
	OutputPath string `json:"outputPath,omitempty" yaml:"output_path,omitempty"`
	BackupPath string `json:"backupPath,omitempty" yaml:"backup_path,omitempty"`
	Bytes      int    `json:"bytes,omitempty" yaml:"bytes,omitempty"`

	ProvenancePath string `json:"provenancePath,omitempty" yaml:"provenance_path,omitempty"`
}

// WarningCount returns the number of aggregation and merge warnings.
func (r *Result) WarningCount() int {
	n := 0
	if r.Aggregate != nil {
		n += len(r.Aggregate.Warnings)
	}
	if r.Merge != nil {
		n += len(r.Merge.Warnings)
	}
	return n
}

// Update reads the trial batches, aggregates them, merges the result into
// the document and writes it back. Nothing is written when any stage before
// the write fails or the context is canceled.
func (c *client) Update(ctx context.Context, opts ...UpdateOption) (*Result, error) {
	// Step 0: Set context
	if ctx == nil {
		ctx = context.Background()
	}

	// Step 1: Parse and validate options
	options := NewUpdateOptions(opts...)
	if options.Contribution.Date == "" {
		options.Contribution.Date = utc.Now().Format(time.DateOnly)
	}
	if err := options.Validate(); err != nil {
		return nil, err
	}

	// Step 2: Setup context with run id and timeout
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	var cancel context.CancelFunc
	if options.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
	} else {
		cancel = func() {} // No-op cancel if no timeout
	}
	defer cancel()

	logger := logging.FromContext(ctx)
	logger.Debug().
		Str("document", options.Document).
		Strs("trials", options.Trials).
		Str("contribution", options.Contribution.ID).
		Bool("dry_run", options.DryRun).
		Msg("Starting update")

	result := &Result{RunID: runID, Document: options.Document, DryRun: options.DryRun}

	// Step 3: Read and aggregate trial batches
	rows, batches, err := trials.ReadFiles(ctx, options.Trials, c.options.trialOptions()...)
	if err != nil {
		return nil, errors.WrapResource("load", "trials", "", err)
	}
	result.Batches = batches
	result.Aggregate = aggregate.Aggregate(rows, c.resolver)

	// Step 4: Load the document
	doc, err := kb.Load(options.Document)
	if err != nil {
		return nil, errors.WrapResource("load", "document", options.Document, err)
	}

	// Step 5: Merge
	merge, err := c.merge(ctx, doc, result.Aggregate, options.Contribution)
	if err != nil {
		return nil, err
	}
	result.Merge = merge
	c.hooks.triggerMerge(doc, merge)

	// Step 6: Persist unless canceled or dry run
	if err := ctx.Err(); err != nil {
		return nil, errors.WrapCanceled("update", err)
	}
	if !options.DryRun {
		saveOpts := []save.Option{save.WithPath(options.target())}
		if options.Backup {
			saveOpts = append(saveOpts, save.WithBackup(options.BackupDir))
		}
		saved, err := kb.Save(merge.Document, saveOpts...)
		if err != nil {
			return nil, errors.WrapResource("save", "document", options.target(), err)
		}
		result.Written = true
		result.OutputPath = saved.Path
		result.BackupPath = saved.BackupPath
		result.Bytes = saved.Bytes
	}

	// Step 7: Write the provenance ledger
	if options.ProvenanceOut != "" {
		ledger := &provenance.File{
			RunID:        runID,
			Contribution: options.Contribution.ID,
			Generated:    utc.Now(),
			DryRun:       options.DryRun,
			Provenance:   merge.Provenance,
		}
		if err := ledger.Save(save.WithPath(options.ProvenanceOut)); err != nil {
			return nil, errors.WrapResource("save", "provenance", options.ProvenanceOut, err)
		}
		result.ProvenancePath = options.ProvenanceOut
	}

	logger.Debug().
		Int("rows", result.Aggregate.Rows).
		Int("added", merge.Metadata.Stats.EntriesAdded).
		Int("warnings", result.WarningCount()).
		Bool("written", result.Written).
		Msg(merge.Summary())

	return result, nil
}

// merge builds a reconciler from the client options and runs it.
func (c *client) merge(ctx context.Context, doc *kb.Document, agg *aggregate.Result, contribution reconciler.Contribution) (*reconciler.Result, error) {
	reconcile, err := reconciler.New(c.resolver,
		reconciler.WithProvenance(c.options.provenance),
		reconciler.WithRenames(c.options.renames),
		reconciler.WithBackfill(c.options.backfill),
	)
	if err != nil {
		return nil, errors.WrapResource("create", "reconciler", "", err)
	}

	result, err := reconcile.Merge(ctx, doc, agg, contribution)
	if err != nil {
		return nil, errors.WrapResource("merge", "document", contribution.ID, err)
	}
	return result, nil
}
