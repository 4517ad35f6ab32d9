package reconciler

import (
	"fmt"
	"slices"

	"github.com/agentstation/trapkit/pkg/aggregate"
	"github.com/agentstation/trapkit/pkg/identity"
)

// candidate is one model result offered to a test case.
type candidate struct {
	identity identity.Identity
	stat     aggregate.Stat
}

// collector resolves aggregate keys into per-test candidate lists.
type collector struct {
	resolver identity.Resolver
}

// newCollector creates a new candidate collector.
func newCollector(resolver identity.Resolver) *collector {
	return &collector{resolver: resolver}
}

// collect groups the aggregate by canonical test id. Each list is in
// canonical model order and holds at most one candidate per display name;
// later keys that collide with an earlier display name are dropped and
// reported.
func (c *collector) collect(agg *aggregate.Result) (map[string][]candidate, []Warning) {
	var warnings []Warning

	identities := make(map[string]identity.Identity)
	for _, key := range agg.Models() {
		id, ok := c.resolver.Model(key)
		if !ok {
			warnings = append(warnings, Warning{
				Kind:    WarningUnmappedModel,
				Model:   key,
				Message: fmt.Sprintf("raw model key %q has no identity; using it as display name with provider %s", key, id.Provider),
			})
		}
		identities[key] = id
	}

	byTest := make(map[string][]candidate)
	for _, k := range agg.Keys() {
		byTest[k.Test] = append(byTest[k.Test], candidate{
			identity: identities[k.Model],
			stat:     agg.Stats[k],
		})
	}

	for _, test := range agg.Tests() {
		cands := byTest[test]
		slices.SortStableFunc(cands, func(a, b candidate) int {
			return identity.Compare(a.identity, b.identity)
		})

		seen := make(map[string]string, len(cands))
		kept := cands[:0]
		for _, cand := range cands {
			name := identity.NameKey(cand.identity.DisplayName)
			if first, dup := seen[name]; dup {
				warnings = append(warnings, Warning{
					Kind:   WarningDisplayNameCollision,
					TestID: test,
					Model:  cand.identity.DisplayName,
					Message: fmt.Sprintf("raw keys %q and %q both resolve to %q; keeping %q",
						first, cand.identity.Key, cand.identity.DisplayName, first),
				})
				continue
			}
			seen[name] = cand.identity.Key
			kept = append(kept, cand)
		}
		byTest[test] = kept
	}

	return byTest, warnings
}
