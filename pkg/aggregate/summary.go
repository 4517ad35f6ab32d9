package aggregate

import (
	"github.com/agentstation/trapkit/pkg/identity"
)

// ModelSummary is one model's accuracy averaged across tests.
type ModelSummary struct {
	Model       string            `json:"model" yaml:"model"`
	DisplayName string            `json:"displayName" yaml:"display_name"`
	Provider    identity.Provider `json:"provider" yaml:"provider"`
	Tests       int               `json:"tests" yaml:"tests"`
	Trials      int               `json:"trials" yaml:"trials"`
	MeanRate    float64           `json:"meanPassRate" yaml:"mean_pass_rate"`
}

// Summarize averages each model's per-test pass rates, unweighted by trial
// count. Models come back in canonical identity order.
func (r *Result) Summarize(resolver identity.Resolver) []ModelSummary {
	byModel := make(map[string]*ModelSummary)
	sums := make(map[string]float64)
	for k, s := range r.Stats {
		m := byModel[k.Model]
		if m == nil {
			id, _ := resolver.Model(k.Model)
			m = &ModelSummary{Model: k.Model, DisplayName: id.DisplayName, Provider: id.Provider}
			byModel[k.Model] = m
		}
		m.Tests++
		m.Trials += s.Trials
		sums[k.Model] += s.PassRate
	}

	ids := make([]identity.Identity, 0, len(byModel))
	for key := range byModel {
		id, _ := resolver.Model(key)
		ids = append(ids, id)
	}
	identity.Sort(ids)

	out := make([]ModelSummary, 0, len(ids))
	for _, id := range ids {
		m := byModel[id.Key]
		m.MeanRate = Round(sums[id.Key] / float64(m.Tests))
		out = append(out, *m)
	}
	return out
}
