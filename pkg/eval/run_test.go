package eval_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/logger"
	"github.com/papercomputeco/writebench/pkg/policy"
	"github.com/papercomputeco/writebench/pkg/synthetic"
)

func benchEpisode() episode.Episode {
	cfg := synthetic.DefaultDriftConfig(synthetic.ModeDefault)
	cfg.Steps = 40
	return synthetic.GenerateEpisode(0, cfg)
}

var _ = Describe("Run", func() {
	It("labels the result with episode identity and track", func() {
		r, err := eval.Run(policy.FIFOStoreAll{}, benchEpisode(), 1<<20, eval.TrackUnprivileged)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.EpisodeID).To(Equal("0"))
		Expect(r.Mode).To(Equal("default"))
		Expect(r.Track).To(Equal("unprivileged"))
		Expect(r.BudgetBytes).To(Equal(1 << 20))
	})

	It("counts emitted write and expire actions", func() {
		r, err := eval.Run(policy.LastKB{}, benchEpisode(), 2048, eval.TrackUnprivileged)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.WriteActions).To(BeNumerically(">", 0))
		Expect(r.ExpireActions).To(BeNumerically(">", 0))
		Expect(r.BytesUsed).To(BeNumerically("<=", 2048))
	})

	It("keeps no_mem at zero recall and zero bytes", func() {
		r, err := eval.Run(policy.NoMem{}, benchEpisode(), 4096, eval.TrackUnprivileged)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.Recall).To(BeZero())
		Expect(r.BytesUsed).To(BeZero())
		Expect(r.WriteActions).To(BeZero())
	})

	It("is deterministic for a deterministic policy", func() {
		ep := benchEpisode()

		a, err := eval.Run(policy.UniformSample{EveryN: 5}, ep, 8192, eval.TrackPrivileged)
		Expect(err).NotTo(HaveOccurred())
		b, err := eval.Run(policy.UniformSample{EveryN: 5}, ep, 8192, eval.TrackPrivileged)
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(Equal(b))
	})

	It("absorbs expected failures instead of erroring", func() {
		// FIFO against a tiny budget skips forever but never errors.
		r, err := eval.Run(policy.FIFOStoreAll{}, benchEpisode(), 16, eval.TrackUnprivileged)

		Expect(err).NotTo(HaveOccurred())
		Expect(r.BytesUsed).To(BeZero())
	})
})

var _ = Describe("Grid", func() {
	newGrid := func() *eval.Grid {
		episodesByMode := map[string][]episode.Episode{}
		modes := []string{synthetic.ModeDefault, synthetic.ModeRedundancy}
		for _, mode := range modes {
			cfg := synthetic.DefaultDriftConfig(mode)
			cfg.Steps = 20
			episodesByMode[mode] = synthetic.GenerateEpisodes(2, cfg)
		}
		policies := []eval.NamedPolicy{
			{Name: "no_mem", Policy: policy.NoMem{}},
			{Name: "fifo_store_all", Policy: policy.FIFOStoreAll{}},
		}
		return &eval.Grid{
			Modes:          modes,
			EpisodesByMode: episodesByMode,
			Budgets:        []int{1024, 4096},
			PoliciesByTrack: map[eval.Track][]eval.NamedPolicy{
				eval.TrackUnprivileged: policies,
				eval.TrackPrivileged:   policies,
			},
			Tracks: eval.Tracks(),
			Logger: logger.Nop(),
		}
	}

	It("evaluates every combination exactly once", func() {
		results, err := newGrid().Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		// 2 modes x 2 budgets x 2 episodes x 2 tracks x 2 policies.
		Expect(results).To(HaveLen(32))
	})

	It("assigns one run id to the whole sweep", func() {
		results, err := newGrid().Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		runID := results[0].RunID
		Expect(runID).NotTo(BeEmpty())
		for _, r := range results {
			Expect(r.RunID).To(Equal(runID))
		}
	})

	It("returns results in grid order regardless of scheduling", func() {
		grid := newGrid()
		grid.Workers = 8

		a, err := grid.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		grid = newGrid()
		grid.Workers = 1
		b, err := grid.Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		Expect(a).To(HaveLen(len(b)))
		for i := range a {
			// RunID differs per sweep; everything else must line up.
			a[i].RunID = ""
			b[i].RunID = ""
			Expect(a[i]).To(Equal(b[i]), "result %d", i)
		}
	})

	It("stops when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		grid := newGrid()
		grid.Workers = 1

		_, err := grid.Run(ctx)
		Expect(err).To(MatchError(context.Canceled))
	})
})
