// Package policy defines the write-policy contract and the deterministic
// baseline policies evaluated by the benchmark.
//
// A policy sees a track-redacted view of each incoming step plus the live
// store, and returns an ordered list of memory actions (e.g. a few EXPIREs
// followed by a WRITE). Policies must be deterministic given (view, store
// state) so benchmark runs are reproducible; they may read store state but
// must not mutate it other than by returning actions.
package policy

import (
	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/memory"
)

// WritePolicy selects one or more memory actions for a single incoming step.
type WritePolicy interface {
	Select(step episode.Step, store *memory.ByteStore) []memory.Action
}

// Func adapts a plain function to the WritePolicy interface.
type Func func(step episode.Step, store *memory.ByteStore) []memory.Action

// Select implements WritePolicy.
func (f Func) Select(step episode.Step, store *memory.ByteStore) []memory.Action {
	return f(step, store)
}

// priorityOf reads the bounded policy-visible priority surrogate from step
// metadata, defaulting to 0.
func priorityOf(md map[string]any) float64 {
	switch v := md["priority"].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
