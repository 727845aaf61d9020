package results_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/results"
	"github.com/papercomputeco/writebench/pkg/score"
)

func sampleResult() eval.Result {
	return eval.Result{
		RunID:         "run-1",
		EpisodeID:     "0",
		Policy:        "last_kb",
		Mode:          "default",
		Track:         "unprivileged",
		BudgetBytes:   4096,
		BytesUsed:     4000,
		WriteActions:  40,
		ExpireActions: 12,
		Metrics: score.Metrics{
			Recall:          0.75,
			Precision:       0.3,
			F1:              0.42857142857142855,
			PolicyUtility:   31.5,
			OracleUtility:   40,
			RegretWriteOnly: 8.5,
			UtilityPerKB:    8.064,
			DriftCoverage:   0.75,
			AvgStaleness:    12.25,
			ExpireRate:      0.3,
			Utilization:     0.9765625,
			WriteDensity:    0.2,
		},
	}
}

var _ = Describe("Row", func() {
	It("renders one cell per column", func() {
		row := results.Row(sampleResult())

		Expect(row).To(HaveLen(len(results.Columns)))
		Expect(row[0]).To(Equal("run-1"))
		Expect(row[2]).To(Equal("last_kb"))
		Expect(row[5]).To(Equal("4096"))
	})

	It("round-trips through FromRow without precision loss", func() {
		want := sampleResult()

		got, err := results.FromRow(results.Row(want))

		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	})
})

var _ = Describe("FromRow", func() {
	It("rejects rows with the wrong width", func() {
		_, err := results.FromRow([]string{"too", "short"})

		Expect(err).To(HaveOccurred())
	})

	It("names the bad column on parse failures", func() {
		row := results.Row(sampleResult())
		row[5] = "not-a-number"

		_, err := results.FromRow(row)

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("budget_bytes"))
	})
})
