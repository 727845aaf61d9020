// Package synthetic generates drift/redundancy traces: episodes of API
// observations where endpoint versions drift over time. Drift events are
// recorded as hidden critical-step labels with elevated utility; redundancy
// regimes repeat endpoints with low utility.
//
// Generation is fully seeded: the same (seed, episode id, config) always
// produces the same episode, so frozen fixtures and regenerated traces
// agree.
package synthetic

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/papercomputeco/writebench/pkg/episode"
)

// Trace modes.
const (
	ModeDefault         = "default"
	ModeBurstDrift      = "burst_drift"
	ModeRedundancy      = "redundancy"
	ModeBurstRedundancy = "burst_redundancy"
)

// Modes lists all trace modes in evaluation order.
func Modes() []string {
	return []string{ModeDefault, ModeBurstDrift, ModeRedundancy, ModeBurstRedundancy}
}

// DriftConfig parameterizes trace generation.
type DriftConfig struct {
	Steps     int
	APIPool   int
	DriftProb float64
	MaxParams int
	Seed      int64
	Mode      string

	// Burst regime parameters.
	BurstInterval  int
	BurstLen       int
	BurstDriftProb float64

	// Redundancy regime parameter.
	RedundancyProb float64
}

// DefaultDriftConfig returns the standard benchmark trace configuration for
// a mode.
func DefaultDriftConfig(mode string) DriftConfig {
	return DriftConfig{
		Steps:          200,
		APIPool:        8,
		DriftProb:      0.08,
		MaxParams:      6,
		Mode:           mode,
		BurstInterval:  50,
		BurstLen:       8,
		BurstDriftProb: 0.6,
		RedundancyProb: 0.7,
	}
}

func (c DriftConfig) inBurstWindow(t int) bool {
	if c.BurstInterval <= 0 {
		return false
	}
	start := (t / c.BurstInterval) * c.BurstInterval
	return (t - start) < c.BurstLen
}

func buildObservation(apiID, version int, params []string, deprecated bool) map[string]any {
	ps := make([]string, len(params))
	copy(ps, params)
	return map[string]any{
		"api":        fmt.Sprintf("api.v%d.endpoint_%d", version, apiID),
		"params":     ps,
		"deprecated": deprecated,
		"version":    version,
	}
}

// GenerateEpisode generates one drift trace episode.
func GenerateEpisode(episodeID int, cfg DriftConfig) episode.Episode {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(episodeID)))

	versions := make([]int, cfg.APIPool)
	params := make([][]string, cfg.APIPool)
	for idx := range versions {
		versions[idx] = 1
		n := 2 + rng.Intn(cfg.MaxParams-1) // 2..MaxParams inclusive
		ps := make([]string, n)
		for j := range ps {
			ps[j] = fmt.Sprintf("p%d_%d", idx, j)
		}
		params[idx] = ps
	}

	bursty := cfg.Mode == ModeBurstDrift || cfg.Mode == ModeBurstRedundancy
	redundant := cfg.Mode == ModeRedundancy || cfg.Mode == ModeBurstRedundancy

	steps := make([]episode.Step, 0, cfg.Steps)
	var criticalSteps []int
	utilities := make(map[string]float64, cfg.Steps)

	for t := 0; t < cfg.Steps; t++ {
		// Redundancy: often repeat the same endpoint across a streak.
		var apiID int
		if redundant && len(steps) > 0 && rng.Float64() < cfg.RedundancyProb {
			apiID = endpointID(steps[len(steps)-1].Observation)
		} else {
			apiID = rng.Intn(cfg.APIPool)
		}

		driftP := cfg.DriftProb
		if bursty && cfg.inBurstWindow(t) {
			driftP = cfg.BurstDriftProb
		}

		drift := rng.Float64() < driftP
		if drift {
			versions[apiID]++
			if rng.Float64() < 0.5 && len(params[apiID]) > 0 {
				params[apiID] = params[apiID][:len(params[apiID])-1]
			} else {
				params[apiID] = append(params[apiID], fmt.Sprintf("p%d_%d", apiID, versions[apiID]))
			}
		}

		deprecated := drift && rng.Float64() < 0.3
		observation := buildObservation(apiID, versions[apiID], params[apiID], deprecated)

		// Utility regime: bursts/true drift are high utility; redundancy
		// repeats are low.
		var utility float64
		switch {
		case drift && bursty && cfg.inBurstWindow(t):
			utility = 6.0
		case drift:
			utility = 5.0
		case redundant && len(steps) > 0:
			utility = 0.5
		default:
			utility = 1.0
		}

		// `utility` is a supervision signal and is not policy-visible. The
		// privileged track sees the bounded surrogate `priority` instead.
		priority := min(max(utility/6.0, 0.0), 1.0)
		metadata := map[string]any{
			"mode":     cfg.Mode,
			"priority": priority,
		}

		if drift {
			criticalSteps = append(criticalSteps, t)
		}
		utilities[strconv.Itoa(t)] = utility
		steps = append(steps, episode.Step{T: t, Observation: observation, Metadata: metadata})
	}

	maxUtility := 0.0
	for _, u := range utilities {
		maxUtility += u
	}

	labels := map[string]any{
		"episode_id":         episodeID,
		"mode":               cfg.Mode,
		"critical_steps":     criticalSteps,
		"total_drift_events": len(criticalSteps),
		"utility_by_step":    utilities,
		"max_utility":        maxUtility,
	}
	return episode.Episode{Steps: steps, Labels: labels}
}

// GenerateEpisodes generates count episodes with ids 0..count-1.
func GenerateEpisodes(count int, cfg DriftConfig) []episode.Episode {
	episodes := make([]episode.Episode, count)
	for i := range episodes {
		episodes[i] = GenerateEpisode(i, cfg)
	}
	return episodes
}

// FixtureName returns the canonical frozen-fixture file name for a mode. The
// schema tag tracks the episode label format.
func FixtureName(mode string, seed int64, steps, episodes int) string {
	return fmt.Sprintf("episodes__schema=priority_v1__mode=%s__seed=%d__steps=%d__n=%d.jsonl",
		mode, seed, steps, episodes)
}

// endpointID parses the numeric endpoint id back out of an observation's
// "api" field; 0 when the observation has no parseable identity.
func endpointID(observation any) int {
	api, ok := episode.EndpointIdentity(observation)
	if !ok {
		return 0
	}
	parts := strings.Split(api, "endpoint_")
	id, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return id
}
