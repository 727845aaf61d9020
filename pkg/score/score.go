// Package score reconstructs the retained timestep set from a final store
// snapshot and computes the benchmark metrics, including regret against a
// budget-constrained offline oracle.
//
// The oracle is WRITE-only and ignores ordering/merge effects; it is an
// upper bound used solely as a regret baseline, not a claim about optimal
// online behavior.
package score

import (
	"sort"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/memory"
)

// Metrics is the flat record of all per-run benchmark metrics.
type Metrics struct {
	Recall          float64 `json:"recall"`
	Precision       float64 `json:"precision"`
	F1              float64 `json:"f1"`
	PolicyUtility   float64 `json:"policy_utility"`
	OracleUtility   float64 `json:"oracle_utility"`
	RegretWriteOnly float64 `json:"regret_write_only"`
	UtilityPerKB    float64 `json:"utility_per_kb"`
	DriftCoverage   float64 `json:"drift_coverage"`
	AvgStaleness    float64 `json:"avg_staleness"`
	ExpireRate      float64 `json:"expire_rate"`
	Utilization     float64 `json:"utilization"`
	WriteDensity    float64 `json:"write_density"`
}

// Input bundles everything the scorer needs about one finished run.
type Input struct {
	// Episode is the original episode with hidden labels (not the
	// redacted policy view).
	Episode episode.Episode
	// WrittenSteps are the steps of the final store snapshot, in
	// insertion order.
	WrittenSteps []episode.Step
	// CostSteps are the track-redacted view steps the policy was charged
	// for; the oracle weighs the same views. Falls back to Episode.Steps
	// when nil.
	CostSteps []episode.Step

	BytesUsed     int
	BudgetBytes   int
	WriteActions  int
	ExpireActions int
	// CurrentT is the final processing timestep (last step's T).
	CurrentT int
}

// Score computes all metrics for one run.
func Score(in Input) Metrics {
	retained := RetainedSet(in.Episode, in.WrittenSteps)

	// Deterministic iteration for the float sums below.
	retainedTs := make([]int, 0, len(retained))
	for t := range retained {
		retainedTs = append(retainedTs, t)
	}
	sort.Ints(retainedTs)

	critical := in.Episode.CriticalSteps()
	criticalWritten := 0
	for _, t := range retainedTs {
		if critical[t] {
			criticalWritten++
		}
	}

	var m Metrics
	if len(critical) > 0 {
		m.Recall = float64(criticalWritten) / float64(len(critical))
	}
	if len(retained) > 0 {
		m.Precision = float64(criticalWritten) / float64(len(retained))
	}
	if m.Recall+m.Precision > 0 {
		m.F1 = 2 * m.Recall * m.Precision / (m.Recall + m.Precision)
	}

	utility := in.Episode.UtilityByStep()
	for _, t := range retainedTs {
		m.PolicyUtility += utility[t]
	}
	if in.BytesUsed > 0 {
		m.UtilityPerKB = m.PolicyUtility / (float64(in.BytesUsed) / 1024.0)
	}

	costSteps := in.CostSteps
	if costSteps == nil {
		costSteps = in.Episode.Steps
	}
	costs := make([]int, len(costSteps))
	utils := make([]float64, len(costSteps))
	for i, s := range costSteps {
		costs[i] = memory.EstimateBytes(s)
		utils[i] = utility[s.T]
	}
	m.OracleUtility = Oracle(costs, utils, in.BudgetBytes)
	m.RegretWriteOnly = max(0, m.OracleUtility-m.PolicyUtility)

	if drift := in.Episode.TotalDriftEvents(); drift > 0 {
		m.DriftCoverage = float64(criticalWritten) / float64(drift)
	}

	if len(retainedTs) > 0 {
		var sum float64
		for _, t := range retainedTs {
			sum += float64(in.CurrentT - t)
		}
		m.AvgStaleness = sum / float64(len(retainedTs))
	}

	if in.WriteActions > 0 {
		m.ExpireRate = float64(in.ExpireActions) / float64(in.WriteActions)
	}
	if in.BudgetBytes > 0 {
		m.Utilization = float64(in.BytesUsed) / float64(in.BudgetBytes)
	}
	if len(in.Episode.Steps) > 0 {
		m.WriteDensity = float64(len(retained)) / float64(len(in.Episode.Steps))
	}

	return m
}

// RetainedSet interprets a final store snapshot as the set of retained
// timesteps W:
//
//   - base items (no merge_parent_t) retain their own timestep
//     unconditionally;
//   - a delta item's timestep is retained only if its recorded parent is in
//     the base set AND both timesteps' true episode-level endpoint
//     identities match. Identities are cross-checked against the original
//     episode, not the possibly-redacted view, so a policy cannot forge
//     endpoint equality. Orphaned deltas (base expired) are inert.
func RetainedSet(ep episode.Episode, written []episode.Step) map[int]bool {
	baseTs := make(map[int]bool)
	mergeParent := make(map[int]int)

	for _, step := range written {
		parent, isDelta := deltaParent(step.Metadata)
		if !isDelta {
			baseTs[step.T] = true
		} else {
			mergeParent[step.T] = parent
		}
	}

	episodeAPI := make(map[int]string, len(ep.Steps))
	for _, s := range ep.Steps {
		if api, ok := episode.EndpointIdentity(s.Observation); ok {
			episodeAPI[s.T] = api
		}
	}

	retained := make(map[int]bool, len(baseTs)+len(mergeParent))
	for t := range baseTs {
		retained[t] = true
	}
	for t, p := range mergeParent {
		if !baseTs[p] {
			continue
		}
		tAPI, okT := episodeAPI[t]
		pAPI, okP := episodeAPI[p]
		if !okT || !okP || tAPI != pAPI {
			continue
		}
		retained[t] = true
	}
	return retained
}

func deltaParent(md map[string]any) (int, bool) {
	if md == nil {
		return 0, false
	}
	v, ok := md[memory.MergeParentKey]
	if !ok || v == nil {
		return 0, false
	}
	switch p := v.(type) {
	case int:
		return p, true
	case float64:
		return int(p), true
	default:
		return 0, false
	}
}
