package reconciler

import (
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/kb"
	"github.com/agentstation/trapkit/pkg/provenance"
)

// merger applies one run's candidates to a single test case.
type merger struct {
	resolver     identity.Resolver
	tracker      provenance.Tracker
	contribution Contribution
	backfill     bool
}

// mergeTestCase appends the contribution record and every candidate whose
// display name is not already present, then backfills providers on the
// entries that existed before. Existing entries are never reordered or
// removed.
func (m *merger) mergeTestCase(tc *kb.TestCase, cands []candidate) TestSummary {
	summary := TestSummary{
		TestID:   tc.ID,
		Name:     tc.Name,
		Existing: len(tc.ModelTests),
	}
	source := m.contribution.ID

	if !tc.HasContribution(m.contribution.ID) {
		tc.Contributions = append(tc.Contributions, m.contribution.Record())
		summary.ContributionAdded = true
		m.tracker.Track(provenance.ResourceTestCase, tc.ID, provenance.ContributionField(m.contribution.ID), provenance.Provenance{
			Source: source,
			Action: provenance.ActionContributed,
			Value:  m.contribution.Contributor,
		})
	}

	present := make(map[string]int, len(tc.ModelTests))
	for i, mt := range tc.ModelTests {
		key := identity.NameKey(mt.Model)
		if _, dup := present[key]; !dup {
			present[key] = i
		}
	}

	var added []kb.ModelTestResult
	for _, cand := range cands {
		name := cand.identity.DisplayName
		if i, exists := present[identity.NameKey(name)]; exists {
			summary.Kept++
			var previous any
			if i >= 0 {
				previous = tc.ModelTests[i].PassRate
			}
			m.tracker.Track(provenance.ResourceTestCase, tc.ID, provenance.ModelField(name), provenance.Provenance{
				Source:        source,
				Action:        provenance.ActionKept,
				Value:         cand.stat.PassRate,
				PreviousValue: previous,
				Reason:        "display name already present",
			})
			continue
		}
		present[identity.NameKey(name)] = -1
		added = append(added, kb.ModelTestResult{
			Model:          name,
			PassRate:       cand.stat.PassRate,
			Trials:         cand.stat.Trials,
			Provider:       string(cand.identity.Provider),
			Source:         m.contribution.SourceText(),
			ContributionID: m.contribution.ID,
		})
		m.tracker.Track(provenance.ResourceTestCase, tc.ID, provenance.ModelField(name), provenance.Provenance{
			Source: source,
			Action: provenance.ActionAdded,
			Value:  cand.stat.PassRate,
		})
	}
	tc.ModelTests = append(tc.ModelTests, added...)
	summary.Added = len(added)

	if m.backfill {
		summary.Backfilled = m.backfillProviders(tc, summary.Existing)
	}

	summary.Final = len(tc.ModelTests)
	return summary
}

// backfillProviders sets a provider on the first n entries when they carry no
// provider key and the legacy table knows their display name. An explicit
// null or empty provider is left alone.
func (m *merger) backfillProviders(tc *kb.TestCase, n int) int {
	count := 0
	for i := range tc.ModelTests[:n] {
		mt := &tc.ModelTests[i]
		if mt.HasProvider() {
			continue
		}
		p, ok := m.resolver.LegacyProvider(mt.Model)
		if !ok {
			continue
		}
		mt.Provider = string(p)
		count++
		m.tracker.Track(provenance.ResourceTestCase, tc.ID, provenance.ModelField(mt.Model)+".provider", provenance.Provenance{
			Source: "legacy_providers",
			Action: provenance.ActionBackfilled,
			Value:  string(p),
		})
	}
	return count
}
