// Package aggregate reduces raw trial rows to per-model, per-test pass rates.
package aggregate

import (
	"cmp"
	"maps"
	"slices"
	"strconv"

	"github.com/agentstation/trapkit/pkg/constants"
	"github.com/agentstation/trapkit/pkg/identity"
	"github.com/agentstation/trapkit/pkg/trials"
)

// Key identifies one aggregate group: a raw model key on a canonical test id.
type Key struct {
	Model string `json:"model" yaml:"model"`
	Test  string `json:"test" yaml:"test"`
}

// Stat is the summary of one group.
type Stat struct {
	PassRate float64 `json:"passRate" yaml:"pass_rate"`
	Trials   int     `json:"trials" yaml:"trials"`
}

// Warning reports rows excluded from aggregation.
type Warning struct {
	TestKey string `json:"testKey" yaml:"test_key"`
	Rows    int    `json:"rows" yaml:"rows"`
	Message string `json:"message" yaml:"message"`
}

// Result is the output of Aggregate.
type Result struct {
	Stats    map[Key]Stat `json:"-" yaml:"-"`
	Warnings []Warning    `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Rows     int          `json:"rows" yaml:"rows"`

	// Skipped counts rows excluded for unmapped test keys.
	Skipped int `json:"skipped" yaml:"skipped"`
}

type tally struct {
	correct int
	total   int
}

// Aggregate groups rows by raw model key and canonical test id. Rows whose
// test key the resolver does not map are excluded and reported, one warning
// per distinct raw key.
func Aggregate(rows []trials.RawTrial, resolver identity.Resolver) *Result {
	tallies := make(map[Key]*tally)
	unmapped := make(map[string]int)

	for _, row := range rows {
		testID, ok := resolver.Test(row.TestKey)
		if !ok {
			unmapped[row.TestKey]++
			continue
		}
		k := Key{Model: row.ModelKey, Test: testID}
		t := tallies[k]
		if t == nil {
			t = &tally{}
			tallies[k] = t
		}
		t.total++
		if row.Correct {
			t.correct++
		}
	}

	result := &Result{
		Stats: make(map[Key]Stat, len(tallies)),
		Rows:  len(rows),
	}
	for k, t := range tallies {
		result.Stats[k] = Stat{
			PassRate: Round(float64(t.correct) / float64(t.total)),
			Trials:   t.total,
		}
	}
	for _, key := range slices.Sorted(maps.Keys(unmapped)) {
		n := unmapped[key]
		result.Skipped += n
		result.Warnings = append(result.Warnings, Warning{
			TestKey: key,
			Rows:    n,
			Message: "no canonical test id for raw test key " + strconv.Quote(key) + "; rows skipped",
		})
	}
	return result
}

// Round rounds a rate to constants.RateDecimals places. It formats the exact
// binary value, so ties resolve half-to-even on the stored float.
func Round(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', constants.RateDecimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}

// Get returns the stat for a raw model key on a canonical test id.
func (r *Result) Get(model, test string) (Stat, bool) {
	s, ok := r.Stats[Key{Model: model, Test: test}]
	return s, ok
}

// Keys returns every group key sorted by test id, then model key.
func (r *Result) Keys() []Key {
	keys := slices.Collect(maps.Keys(r.Stats))
	slices.SortFunc(keys, func(a, b Key) int {
		return cmp.Or(cmp.Compare(a.Test, b.Test), cmp.Compare(a.Model, b.Model))
	})
	return keys
}

// Tests returns the distinct canonical test ids with data, sorted.
func (r *Result) Tests() []string {
	seen := make(map[string]struct{})
	for k := range r.Stats {
		seen[k.Test] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Models returns the distinct raw model keys with data, sorted.
func (r *Result) Models() []string {
	seen := make(map[string]struct{})
	for k := range r.Stats {
		seen[k.Model] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Entry is one group flattened for serialization.
type Entry struct {
	Test     string  `json:"test" yaml:"test"`
	Model    string  `json:"model" yaml:"model"`
	PassRate float64 `json:"passRate" yaml:"pass_rate"`
	Trials   int     `json:"trials" yaml:"trials"`
}

// Entries returns every group in Keys order.
func (r *Result) Entries() []Entry {
	keys := r.Keys()
	out := make([]Entry, 0, len(keys))
	for _, k := range keys {
		s := r.Stats[k]
		out = append(out, Entry{Test: k.Test, Model: k.Model, PassRate: s.PassRate, Trials: s.Trials})
	}
	return out
}
