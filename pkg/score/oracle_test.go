package score_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/score"
)

var _ = Describe("Oracle", func() {
	It("takes everything when the budget covers the total cost", func() {
		got := score.Oracle([]int{10, 20, 30}, []float64{1, 2, 3}, 60)

		Expect(got).To(BeNumerically("~", 6.0, 1e-12))
	})

	It("solves small budgets exactly", func() {
		// Two of three equal-weight items fit; the optimum takes the two
		// most valuable.
		got := score.Oracle([]int{5, 5, 5}, []float64{3, 2, 1}, 10)

		Expect(got).To(BeNumerically("~", 5.0, 1e-12))
	})

	It("prefers one dense item over two light ones when optimal", func() {
		got := score.Oracle([]int{6, 5, 5}, []float64{10, 4, 3}, 10)

		Expect(got).To(BeNumerically("~", 10.0, 1e-12))
	})

	It("skips items heavier than the whole budget", func() {
		got := score.Oracle([]int{100, 5}, []float64{50, 1}, 10)

		Expect(got).To(BeNumerically("~", 1.0, 1e-12))
	})

	It("approximates large budgets by value density", func() {
		// Budget above the exact-DP cap: greedy fill by density.
		costs := []int{1000, 1000, 1000, 1000}
		values := []float64{5, 4, 3, 1}

		got := score.Oracle(costs, values, 3000)

		Expect(got).To(BeNumerically("~", 12.0, 1e-12))
	})

	It("is monotone in budget", func() {
		costs := []int{7, 13, 29, 41, 5}
		values := []float64{2, 6, 9, 11, 1}

		prev := 0.0
		for _, budget := range []int{0, 10, 25, 50, 100} {
			got := score.Oracle(costs, values, budget)
			Expect(got).To(BeNumerically(">=", prev))
			prev = got
		}
	})

	It("returns zero for a zero budget", func() {
		Expect(score.Oracle([]int{5}, []float64{9}, 0)).To(BeZero())
	})
})
