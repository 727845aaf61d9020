package score

import "sort"

// Oracle DP limits: exact 0/1 knapsack is O(steps * budget) and gets
// expensive when sweeping many budgets, so the exact program only runs for
// small budgets and the density-greedy approximation covers the rest.
const (
	dpBudgetCap = 2048
	dpMaxOps    = 25_000_000
)

// Oracle returns the budget-constrained maximum total utility over per-step
// (weight, value) pairs: the WRITE-only offline reference used for regret.
//
// When everything fits, the answer is the plain sum. Small budgets use the
// exact 0/1-knapsack dynamic program over byte capacity; large budgets use a
// value-density-sorted greedy fill with one pass of single-item swap
// refinement. Ties in the greedy sort break by density descending, then
// original step index ascending (stable), so the result is deterministic.
func Oracle(costs []int, values []float64, budgetBytes int) float64 {
	totalCost := 0
	totalValue := 0.0
	for i, w := range costs {
		totalCost += w
		totalValue += values[i]
	}
	if budgetBytes >= totalCost {
		return totalValue
	}

	if budgetBytes <= dpBudgetCap && len(costs)*budgetBytes <= dpMaxOps {
		return knapsackDP(costs, values, budgetBytes)
	}
	return greedyWithSwap(costs, values, budgetBytes)
}

func knapsackDP(costs []int, values []float64, budget int) float64 {
	dp := make([]float64, budget+1)
	for i, w := range costs {
		if w > budget {
			continue
		}
		v := values[i]
		for b := budget; b >= w; b-- {
			if cand := dp[b-w] + v; cand > dp[b] {
				dp[b] = cand
			}
		}
	}
	best := 0.0
	for _, v := range dp {
		if v > best {
			best = v
		}
	}
	return best
}

func greedyWithSwap(costs []int, values []float64, budget int) float64 {
	type item struct {
		idx     int
		weight  int
		value   float64
		density float64
	}
	items := make([]item, len(costs))
	for i, w := range costs {
		d := 0.0
		if w > 0 {
			d = values[i] / float64(w)
		}
		items[i] = item{idx: i, weight: w, value: values[i], density: d}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].density > items[j].density
	})

	used := 0
	total := 0.0
	var picked []item
	pickedIdx := make(map[int]bool, len(items))
	for _, it := range items {
		if used+it.weight <= budget {
			used += it.weight
			total += it.value
			picked = append(picked, it)
			pickedIdx[it.idx] = true
		}
	}

	// Single-pass local improvement: swap in an unpicked item for one picked
	// item wherever the swap strictly improves total value within budget.
	for _, cand := range items {
		if pickedIdx[cand.idx] {
			continue
		}
		for i, old := range picked {
			if used-old.weight+cand.weight <= budget && cand.value > old.value {
				used += cand.weight - old.weight
				total += cand.value - old.value
				delete(pickedIdx, old.idx)
				pickedIdx[cand.idx] = true
				picked[i] = cand
				break
			}
		}
	}

	return total
}
