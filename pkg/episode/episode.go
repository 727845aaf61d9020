// Package episode defines the benchmark's data model: a Step is a single
// timestep of an observation stream, an Episode is an ordered sequence of
// steps plus hidden supervision labels.
//
// Labels are never shown to policies. They carry the signals the scorer and
// the oracle need: which timesteps were drift events, the per-step utility,
// and free-form episode metadata (id, mode).
package episode

import (
	"strconv"
)

// Step is a single timestep in a streaming episode. Steps are created by the
// episode source and treated as read-only; identity within a store is keyed
// by T.
type Step struct {
	T           int            `json:"t"`
	Observation any            `json:"observation"`
	Metadata    map[string]any `json:"metadata"`
}

// Episode is an ordered sequence of steps plus a labels mapping holding
// hidden supervision signals (critical_steps, utility_by_step,
// total_drift_events, episode_id, mode).
type Episode struct {
	Steps  []Step         `json:"steps"`
	Labels map[string]any `json:"labels"`
}

// ID returns the episode_id label as a string, or "" when absent.
func (e Episode) ID() string {
	switch v := e.Labels["episode_id"].(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.Itoa(int(v))
	default:
		return ""
	}
}

// Mode returns the mode label, or "" when absent.
func (e Episode) Mode() string {
	if m, ok := e.Labels["mode"].(string); ok {
		return m
	}
	return ""
}

// CriticalSteps returns the critical_steps label as a set of timesteps.
// Handles both in-memory ([]int) and JSON-decoded ([]any of float64) forms.
func (e Episode) CriticalSteps() map[int]bool {
	out := make(map[int]bool)
	switch v := e.Labels["critical_steps"].(type) {
	case []int:
		for _, t := range v {
			out[t] = true
		}
	case []any:
		for _, raw := range v {
			if t, ok := asInt(raw); ok {
				out[t] = true
			}
		}
	}
	return out
}

// TotalDriftEvents returns the total_drift_events label, or 0 when absent.
func (e Episode) TotalDriftEvents() int {
	if n, ok := asInt(e.Labels["total_drift_events"]); ok {
		return n
	}
	return 0
}

// UtilityByStep returns the utility_by_step label as timestep -> utility.
// JSON object keys are strings, so both string and integer keys are accepted.
func (e Episode) UtilityByStep() map[int]float64 {
	out := make(map[int]float64)
	switch v := e.Labels["utility_by_step"].(type) {
	case map[int]float64:
		for t, u := range v {
			out[t] = u
		}
	case map[string]float64:
		for k, u := range v {
			if t, err := strconv.Atoi(k); err == nil {
				out[t] = u
			}
		}
	case map[string]any:
		for k, raw := range v {
			t, err := strconv.Atoi(k)
			if err != nil {
				continue
			}
			if u, ok := asFloat(raw); ok {
				out[t] = u
			}
		}
	}
	return out
}

// EndpointIdentity returns the endpoint identity field of an observation
// (observation["api"]) and whether it is present as a string. Non-map
// observations have no endpoint identity.
func EndpointIdentity(observation any) (string, bool) {
	obs, ok := observation.(map[string]any)
	if !ok {
		return "", false
	}
	api, ok := obs["api"].(string)
	return api, ok
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		t, err := strconv.Atoi(n)
		if err != nil {
			return 0, false
		}
		return t, true
	default:
		return 0, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
