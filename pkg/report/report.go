// Package report aggregates benchmark result records into human-readable
// summaries and runs cross-run sanity checks over them.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/papercomputeco/writebench/pkg/eval"
)

// Metric names one reported metric and how to read it off a result record.
type Metric struct {
	Name  string
	Title string
	Value func(eval.Result) float64
}

// DefaultMetrics returns the metrics the standard summary reports.
func DefaultMetrics() []Metric {
	return []Metric{
		{
			Name:  "f1",
			Title: "Mean F1",
			Value: func(r eval.Result) float64 { return r.F1 },
		},
		{
			Name:  "regret_write_only",
			Title: "Mean regret (WRITE-only oracle gap; lower is better)",
			Value: func(r eval.Result) float64 { return r.RegretWriteOnly },
		},
	}
}

// Summary renders markdown tables of mean metric values per
// (policy, budget) within each mode.
func Summary(results []eval.Result, metrics []Metric) string {
	modes := distinctModes(results)

	var out []string
	out = append(out, "# Results summary")
	for _, m := range metrics {
		out = append(out, fmt.Sprintf("\n## %s", m.Title))
		for _, mode := range modes {
			out = append(out, table(results, m, mode))
		}
	}
	return strings.TrimSpace(strings.Join(out, "\n")) + "\n"
}

func table(results []eval.Result, m Metric, mode string) string {
	policySet := make(map[string]bool)
	budgetSet := make(map[int]bool)
	series := make(map[string]map[int][]float64)

	for _, r := range results {
		if r.Mode != mode {
			continue
		}
		policySet[r.Policy] = true
		budgetSet[r.BudgetBytes] = true
		if series[r.Policy] == nil {
			series[r.Policy] = make(map[int][]float64)
		}
		series[r.Policy][r.BudgetBytes] = append(series[r.Policy][r.BudgetBytes], m.Value(r))
	}

	policies := make([]string, 0, len(policySet))
	for p := range policySet {
		policies = append(policies, p)
	}
	sort.Strings(policies)

	budgets := make([]int, 0, len(budgetSet))
	for b := range budgetSet {
		budgets = append(budgets, b)
	}
	sort.Ints(budgets)

	var out []string
	out = append(out, fmt.Sprintf("## Mode: %s (%s)", mode, m.Name))

	header := make([]string, 0, len(budgets))
	for _, b := range budgets {
		header = append(header, fmt.Sprintf("%d", b))
	}
	out = append(out, "| policy | "+strings.Join(header, " | ")+" |")
	out = append(out, "|---|"+strings.Repeat("---|", len(budgets)))

	for _, p := range policies {
		cells := make([]string, 0, len(budgets))
		for _, b := range budgets {
			cells = append(cells, fmt.Sprintf("%.3f", mean(series[p][b])))
		}
		out = append(out, "| "+p+" | "+strings.Join(cells, " | ")+" |")
	}

	out = append(out, "")
	return strings.Join(out, "\n")
}

func distinctModes(results []eval.Result) []string {
	set := make(map[string]bool)
	for _, r := range results {
		set[r.Mode] = true
	}
	modes := make([]string, 0, len(set))
	for m := range set {
		modes = append(modes, m)
	}
	sort.Strings(modes)
	return modes
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
