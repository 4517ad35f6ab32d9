package trapkit

import (
	"sync"

	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/reconciler"
)

// Hook function types for merge events
type (
	// ModelAddedHook is called for each model result a merge appends
	ModelAddedHook func(testID string, entry kb.ModelTestResult)

	// TestCaseMergedHook is called once per test case after a merge
	TestCaseMergedHook func(summary reconciler.TestSummary)

	// WarningHook is called for each merge warning
	WarningHook func(warning reconciler.Warning)
)

// Hooks registers callbacks for merge events. Callbacks run synchronously
// after the merge and before the document is written.
type Hooks interface {
	OnModelAdded(ModelAddedHook)
	OnTestCaseMerged(TestCaseMergedHook)
	OnWarning(WarningHook)
}

// hooks manages event callbacks for merges
type hooks struct {
	mu               sync.RWMutex
	onModelAdded     []ModelAddedHook
	onTestCaseMerged []TestCaseMergedHook
	onWarning        []WarningHook
}

// newHooks creates a new hooks instance
func newHooks() *hooks {
	return &hooks{}
}

// OnModelAdded registers a callback for appended model results
func (c *client) OnModelAdded(fn ModelAddedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onModelAdded = append(c.hooks.onModelAdded, fn)
}

// OnTestCaseMerged registers a callback for per-test-case summaries
func (c *client) OnTestCaseMerged(fn TestCaseMergedHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onTestCaseMerged = append(c.hooks.onTestCaseMerged, fn)
}

// OnWarning registers a callback for merge warnings
func (c *client) OnWarning(fn WarningHook) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.onWarning = append(c.hooks.onWarning, fn)
}

// triggerMerge compares the old and merged documents and triggers the
// appropriate hooks.
func (h *hooks) triggerMerge(old *kb.Document, result *reconciler.Result) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.onModelAdded) > 0 {
		renamed := make(map[string][]string)
		for _, r := range result.Renames() {
			renamed[r.TestID] = append(renamed[r.TestID], r.To)
		}
		for _, tc := range result.Document.TestCases {
			existing := make(map[string]bool)
			if prev, ok := old.Find(tc.ID); ok {
				for _, m := range prev.ModelTests {
					existing[m.Model] = true
				}
			}
			for _, name := range renamed[tc.ID] {
				existing[name] = true
			}
			for _, m := range tc.ModelTests {
				if existing[m.Model] {
					continue
				}
				for _, hook := range h.onModelAdded {
					hook(tc.ID, m)
				}
			}
		}
	}

	for _, summary := range result.Tests {
		for _, hook := range h.onTestCaseMerged {
			hook(summary)
		}
	}

	for _, w := range result.Warnings {
		for _, hook := range h.onWarning {
			hook(w)
		}
	}
}
