package report

import (
	"fmt"
	"sort"

	"github.com/papercomputeco/writebench/pkg/eval"
)

// monotonicity comparisons tolerate float accumulation noise.
const sanityEps = 1e-9

// Sanity runs the standard cross-run checks over a results table:
//
//   - no_mem must have all-zero recall in every mode and budget (it never
//     writes, so any recall indicates label leakage or a scoring bug);
//   - last_kb mean recall must be non-decreasing in budget within each mode
//     (a bigger window never forgets more).
//
// Returns nil when all checks pass.
func Sanity(results []eval.Result) error {
	for _, mode := range distinctModes(results) {
		if err := checkNoMemZeroRecall(results, mode); err != nil {
			return err
		}
		if err := checkLastKBMonotone(results, mode); err != nil {
			return err
		}
	}
	return nil
}

func checkNoMemZeroRecall(results []eval.Result, mode string) error {
	for _, r := range results {
		if r.Mode != mode || r.Policy != "no_mem" {
			continue
		}
		if r.Recall != 0 {
			return fmt.Errorf("report: no_mem recall not zero in mode=%s budget=%d: %g",
				mode, r.BudgetBytes, r.Recall)
		}
	}
	return nil
}

func checkLastKBMonotone(results []eval.Result, mode string) error {
	byBudget := make(map[int][]float64)
	for _, r := range results {
		if r.Mode != mode || r.Policy != "last_kb" {
			continue
		}
		byBudget[r.BudgetBytes] = append(byBudget[r.BudgetBytes], r.Recall)
	}

	budgets := make([]int, 0, len(byBudget))
	for b := range byBudget {
		budgets = append(budgets, b)
	}
	sort.Ints(budgets)

	prev := -1.0
	for _, b := range budgets {
		m := mean(byBudget[b])
		if prev >= 0 && m+sanityEps < prev {
			return fmt.Errorf("report: last_kb recall decreased with budget in mode=%s at budget=%d: %g -> %g",
				mode, b, prev, m)
		}
		prev = m
	}
	return nil
}
