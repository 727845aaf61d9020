package eval

import (
	"fmt"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/memory"
	"github.com/papercomputeco/writebench/pkg/policy"
	"github.com/papercomputeco/writebench/pkg/score"
)

// Run replays one policy over one episode with a freshly constructed store
// and budget, then scores the final store snapshot.
//
// Expected action failures (budget exhausted, merge-legality violations,
// expire of missing/future timesteps, key collisions) are silently absorbed:
// the action has no effect and execution continues. Contract violations
// surface as an error and abort the run; they indicate a bug in the policy
// or the harness.
func Run(pol policy.WritePolicy, ep episode.Episode, budgetBytes int, track Track) (Result, error) {
	store := memory.NewByteStore(memory.NewByteBudget(budgetBytes))

	// Policy/cost view of steps: what could be written to memory under
	// this track. The oracle weighs the same views.
	viewSteps := make([]episode.Step, len(ep.Steps))
	for i, s := range ep.Steps {
		viewSteps[i] = ViewStep(s, track)
	}

	writeActions := 0
	expireActions := 0
	for _, step := range viewSteps {
		actions := pol.Select(step, store)
		for _, a := range actions {
			switch a.Kind {
			case memory.Write:
				writeActions++
			case memory.Expire:
				expireActions++
			}
			if _, err := store.Apply(a, step.T); err != nil {
				return Result{}, fmt.Errorf("eval: step t=%d: %w", step.T, err)
			}
		}
	}

	items := store.Items()
	written := make([]episode.Step, len(items))
	for i, it := range items {
		written[i] = it.Step
	}

	currentT := 0
	if len(ep.Steps) > 0 {
		currentT = ep.Steps[len(ep.Steps)-1].T
	}

	metrics := score.Score(score.Input{
		Episode:       ep,
		WrittenSteps:  written,
		CostSteps:     viewSteps,
		BytesUsed:     store.UsedBytes(),
		BudgetBytes:   budgetBytes,
		WriteActions:  writeActions,
		ExpireActions: expireActions,
		CurrentT:      currentT,
	})

	return Result{
		EpisodeID:     ep.ID(),
		Mode:          ep.Mode(),
		Track:         string(track),
		BudgetBytes:   budgetBytes,
		BytesUsed:     store.UsedBytes(),
		WriteActions:  writeActions,
		ExpireActions: expireActions,
		Metrics:       metrics,
	}, nil
}
