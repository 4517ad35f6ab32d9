package reconciler

import (
	"fmt"

	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/kb"
)

// AppliedRename records one corrected display name.
type AppliedRename struct {
	TestID string `json:"testId" yaml:"test_id"`
	From   string `json:"from" yaml:"from"`
	To     string `json:"to" yaml:"to"`
	Reason string `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// RenameReport is the outcome of ApplyRenames.
type RenameReport struct {
	Applied  []AppliedRename
	Warnings []Warning
}

// ApplyRenames corrects historical display names in doc in place. An entry
// is only relabelled when the rename applies to its contributionId, so
// results written by earlier runs keep their names. A rename whose target
// already names another entry in the same test case is skipped with a
// warning. Applying the same renames twice gives the same document as once.
func ApplyRenames(doc *kb.Document, renames []identity.Rename) RenameReport {
	var report RenameReport
	if doc == nil || len(renames) == 0 {
		return report
	}

	for ti := range doc.TestCases {
		tc := &doc.TestCases[ti]

		names := make(map[string]int, len(tc.ModelTests))
		for _, m := range tc.ModelTests {
			names[identity.NameKey(m.Model)]++
		}

		for mi := range tc.ModelTests {
			m := &tc.ModelTests[mi]
			r, ok := findRename(renames, m.Model)
			if !ok || !r.Applies(m.ContributionID) {
				continue
			}
			to := identity.NameKey(r.To)
			if names[to] > 0 {
				report.Warnings = append(report.Warnings, Warning{
					Kind:    WarningRenameConflict,
					TestID:  tc.ID,
					Model:   m.Model,
					Message: fmt.Sprintf("cannot rename %q to %q: %q already present", m.Model, r.To, r.To),
				})
				continue
			}
			names[identity.NameKey(m.Model)]--
			names[to]++
			report.Applied = append(report.Applied, AppliedRename{
				TestID: tc.ID,
				From:   m.Model,
				To:     r.To,
				Reason: r.Reason,
			})
			m.Model = r.To
		}
	}
	return report
}

func findRename(renames []identity.Rename, model string) (identity.Rename, bool) {
	key := identity.NameKey(model)
	for _, r := range renames {
		if identity.NameKey(r.From) == key {
			return r, true
		}
	}
	return identity.Rename{}, false
}
