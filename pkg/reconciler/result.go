package reconciler

import (
	"fmt"
	"slices"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/provenance"
)

// WarningKind classifies a non-fatal data irregularity.
type WarningKind string

// Warning kinds.
const (
	// WarningUnmatchedTestCase: a document test case has no aggregate data.
	WarningUnmatchedTestCase WarningKind = "unmatched_test_case"
	// WarningMissingTestCase: aggregate data names a test id absent from the document.
	WarningMissingTestCase WarningKind = "missing_test_case"
	// WarningUnmappedModel: a raw model key is not in the identity table.
	WarningUnmappedModel WarningKind = "unmapped_model"
	// WarningDisplayNameCollision: two raw model keys resolve to one display name.
	WarningDisplayNameCollision WarningKind = "display_name_collision"
	// WarningRenameConflict: a rename target already exists in the test case.
	WarningRenameConflict WarningKind = "rename_conflict"
)

// Warning is one non-fatal irregularity found during a merge.
type Warning struct {
	Kind    WarningKind `json:"kind" yaml:"kind"`
	TestID  string      `json:"testId,omitempty" yaml:"test_id,omitempty"`
	Model   string      `json:"model,omitempty" yaml:"model,omitempty"`
	Message string      `json:"message" yaml:"message"`
}

// String returns the warning message prefixed with its kind.
func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// TestSummary is the per-test-case outcome of a merge.
type TestSummary struct {
	TestID   string `json:"testId" yaml:"test_id"`
	Name     string `json:"name" yaml:"name"`
	Existing int    `json:"existing" yaml:"existing"`
	Added    int    `json:"added" yaml:"added"`
	Final    int    `json:"final" yaml:"final"`

	// Kept counts incoming results blocked by an existing display name.
	Kept int `json:"kept" yaml:"kept"`
	// Backfilled counts existing results that received a provider.
	Backfilled int `json:"backfilled" yaml:"backfilled"`
	// Renamed counts existing results whose display name was corrected.
	Renamed int `json:"renamed" yaml:"renamed"`
	// ContributionAdded reports whether the run's contribution was appended.
	ContributionAdded bool `json:"contributionAdded" yaml:"contribution_added"`
	// Skipped reports that the test case had no aggregate data and is unchanged.
	Skipped bool `json:"skipped" yaml:"skipped"`
}

// String renders the summary line for one test case.
func (s TestSummary) String() string {
	if s.Skipped {
		return fmt.Sprintf("%s: skipped, no data (%d models)", s.Name, s.Final)
	}
	return fmt.Sprintf("%s: %d existing + %d new = %d total models", s.Name, s.Existing, s.Added, s.Final)
}

// Result represents the outcome of a merge.
type Result struct {
	// Document is the merged document. The input document is never modified.
	Document *kb.Document `json:"-" yaml:"-"`

	Tests    []TestSummary `json:"tests" yaml:"tests"`
	Warnings []Warning     `json:"warnings" yaml:"warnings"`

	// Provenance tracking
	Provenance provenance.Map `json:"-" yaml:"-"`

	Metadata ResultMetadata `json:"metadata" yaml:"metadata"`

	renames []AppliedRename
}

// ResultMetadata contains metadata about the merge.
type ResultMetadata struct {
	StartTime    utc.Time         `json:"startTime" yaml:"start_time"`
	EndTime      utc.Time         `json:"endTime" yaml:"end_time"`
	Duration     time.Duration    `json:"duration" yaml:"duration"`
	Contribution string           `json:"contribution" yaml:"contribution"`
	Stats        ResultStatistics `json:"stats" yaml:"stats"`
}

// ResultStatistics contains totals across all test cases.
type ResultStatistics struct {
	TestCasesMerged     int `json:"testCasesMerged" yaml:"test_cases_merged"`
	TestCasesSkipped    int `json:"testCasesSkipped" yaml:"test_cases_skipped"`
	EntriesAdded        int `json:"entriesAdded" yaml:"entries_added"`
	EntriesKept         int `json:"entriesKept" yaml:"entries_kept"`
	EntriesRenamed      int `json:"entriesRenamed" yaml:"entries_renamed"`
	ProvidersBackfilled int `json:"providersBackfilled" yaml:"providers_backfilled"`
	ContributionsAdded  int `json:"contributionsAdded" yaml:"contributions_added"`
}

// NewResult creates a new result with defaults.
func NewResult() *Result {
	return &Result{
		Tests:      []TestSummary{},
		Warnings:   []Warning{},
		Provenance: make(provenance.Map),
		Metadata: ResultMetadata{
			StartTime: utc.Now(),
		},
	}
}

// HasChanges returns true if the merge changed the document.
func (r *Result) HasChanges() bool {
	s := r.Metadata.Stats
	return s.EntriesAdded+s.EntriesRenamed+s.ProvidersBackfilled+s.ContributionsAdded > 0
}

// Renames returns the display name corrections applied during the merge.
func (r *Result) Renames() []AppliedRename {
	return slices.Clone(r.renames)
}

// WarningsOf returns the warnings of one kind.
func (r *Result) WarningsOf(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// Summary returns a human-readable summary of the result.
func (r *Result) Summary() string {
	s := r.Metadata.Stats
	if !r.HasChanges() {
		return fmt.Sprintf("Merge completed. No changes (%d test cases, %d warnings).",
			s.TestCasesMerged+s.TestCasesSkipped, len(r.Warnings))
	}
	return fmt.Sprintf("Merge completed. %d entries added, %d renamed, %d providers backfilled across %d test cases (%d skipped, %d warnings).",
		s.EntriesAdded, s.EntriesRenamed, s.ProvidersBackfilled, s.TestCasesMerged, s.TestCasesSkipped, len(r.Warnings))
}

// finish stamps the end time and totals.
func (r *Result) finish() {
	r.Metadata.EndTime = utc.Now()
	r.Metadata.Duration = r.Metadata.EndTime.Time.Sub(r.Metadata.StartTime.Time)
	for _, t := range r.Tests {
		st := &r.Metadata.Stats
		if t.Skipped {
			st.TestCasesSkipped++
		} else {
			st.TestCasesMerged++
		}
		st.EntriesAdded += t.Added
		st.EntriesKept += t.Kept
		st.EntriesRenamed += t.Renamed
		st.ProvidersBackfilled += t.Backfilled
		if t.ContributionAdded {
			st.ContributionsAdded++
		}
	}
}
