package eval

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/google/uuid"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/policy"
)

// NamedPolicy pairs a policy with the name it is reported under.
type NamedPolicy struct {
	Name   string
	Policy policy.WritePolicy
}

// Grid describes a full benchmark sweep: every
// (mode x budget x episode x track x policy) combination.
//
// Combinations are independent (each gets a fresh store and budget, and
// episodes are read-only), so the sweep fans out over a worker pool. Results
// are reassembled by combination index, not completion order, so output is
// deterministic regardless of scheduling.
type Grid struct {
	// Modes in evaluation order.
	Modes []string
	// EpisodesByMode holds the frozen or generated episodes per mode.
	EpisodesByMode map[string][]episode.Episode
	// Budgets in bytes, evaluated per episode.
	Budgets []int
	// PoliciesByTrack lists the policies evaluated under each track.
	PoliciesByTrack map[Track][]NamedPolicy
	// Tracks in evaluation order.
	Tracks []Track

	// Workers is the pool size; defaults to GOMAXPROCS.
	Workers int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

type gridJob struct {
	idx    int
	mode   string
	budget int
	ep     episode.Episode
	track  Track
	policy NamedPolicy
}

// Run evaluates every combination and returns results in grid order.
func (g *Grid) Run(ctx context.Context) ([]Result, error) {
	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := g.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	tracks := g.Tracks
	if tracks == nil {
		tracks = Tracks()
	}

	runID := uuid.NewString()

	var jobs []gridJob
	for _, mode := range g.Modes {
		for _, budget := range g.Budgets {
			for _, ep := range g.EpisodesByMode[mode] {
				for _, track := range tracks {
					for _, np := range g.PoliciesByTrack[track] {
						jobs = append(jobs, gridJob{
							idx:    len(jobs),
							mode:   mode,
							budget: budget,
							ep:     ep,
							track:  track,
							policy: np,
						})
					}
				}
			}
		}
	}

	logger.Info("running benchmark grid",
		"run_id", runID,
		"combinations", len(jobs),
		"workers", workers,
	)

	results := make([]Result, len(jobs))
	errs := make([]error, len(jobs))
	queue := make(chan gridJob)

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for job := range queue {
				r, err := Run(job.policy.Policy, job.ep, job.budget, job.track)
				if err != nil {
					errs[job.idx] = fmt.Errorf("policy %s, mode %s, budget %d: %w",
						job.policy.Name, job.mode, job.budget, err)
					continue
				}
				r.RunID = runID
				r.Policy = job.policy.Name
				r.Mode = job.mode
				results[job.idx] = r
			}
		}()
	}

	for _, job := range jobs {
		select {
		case queue <- job:
		case <-ctx.Done():
			close(queue)
			wg.Wait()
			return nil, ctx.Err()
		}
	}
	close(queue)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	logger.Info("benchmark grid complete", "run_id", runID, "results", len(results))
	return results, nil
}
