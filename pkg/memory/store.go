// Package memory implements the byte-budgeted memory store at the core of
// the benchmark: a budget tracker, a deterministic cost model, a closed set
// of memory actions, and a store that validates and applies them.
//
// Action failures come in two classes. Expected failures (budget exhausted,
// merge-legality violations, expiring a missing or future timestep, key
// collisions) return false and leave the store observably unchanged; they
// are first-class benchmarked outcomes, not errors. Contract violations
// (missing required action fields, unknown action kinds) return an error and
// indicate a bug in a policy or the harness.
package memory

import (
	"fmt"

	"github.com/papercomputeco/writebench/pkg/episode"
)

// Metadata keys carried by delta items.
const (
	// MergeParentKey records the base item's timestep on a delta item.
	MergeParentKey = "merge_parent_t"
	// MergeParentAPIKey records the shared endpoint identity at merge time.
	MergeParentAPIKey = "merge_parent_api"
)

// endpointKey is the observation field identifying the logical endpoint a
// step describes. MERGE is only legal within a single endpoint.
const endpointKey = "api"

// MemoryItem is a step retained in the store, annotated with its retention
// timestep and the bytes it was charged. Items are never mutated in place:
// MERGE appends a new delta item instead of rewriting its base.
type MemoryItem struct {
	Step      episode.Step
	WrittenAt int
	ByteCost  int
}

// MergeParent returns the delta item's base timestep, or false for base
// items.
func (it *MemoryItem) MergeParent() (int, bool) {
	if it.Step.Metadata == nil {
		return 0, false
	}
	v, ok := it.Step.Metadata[MergeParentKey]
	if !ok || v == nil {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		return int(t), true
	default:
		return 0, false
	}
}

// Store is the interface policies and the execution loop work against.
type Store interface {
	// Apply validates and applies one action. currentT is the timestep
	// being processed and gates EXPIRE (targets must be strictly in the
	// past). ok=false is an expected failure; err is a contract violation.
	Apply(action Action, currentT int) (ok bool, err error)
	// Items returns retained items in insertion order.
	Items() []*MemoryItem
	// OldestItem returns the head of insertion order, or nil when empty.
	OldestItem() *MemoryItem
	// Clear tears the store down and zeroes the budget.
	Clear()
}

// ByteStore holds retained items keyed by timestep under a byte budget.
// Iteration follows insertion order (retention order, not timestep order).
type ByteStore struct {
	budget *ByteBudget
	items  map[int]*MemoryItem
	order  []int
}

var _ Store = (*ByteStore)(nil)

// NewByteStore creates an empty store owning the given budget.
func NewByteStore(budget *ByteBudget) *ByteStore {
	return &ByteStore{
		budget: budget,
		items:  make(map[int]*MemoryItem),
	}
}

// Remaining returns the budget's unused capacity.
func (s *ByteStore) Remaining() int { return s.budget.Remaining() }

// UsedBytes returns the bytes currently charged against the budget.
func (s *ByteStore) UsedBytes() int { return s.budget.UsedBytes() }

// MaxBytes returns the budget capacity.
func (s *ByteStore) MaxBytes() int { return s.budget.MaxBytes() }

// Len returns the number of retained items.
func (s *ByteStore) Len() int { return len(s.items) }

// Apply implements Store.
func (s *ByteStore) Apply(action Action, currentT int) (bool, error) {
	switch action.Kind {
	case Skip:
		return true, nil
	case Write:
		if action.Step == nil {
			return false, fmt.Errorf("memory: WRITE requires a step")
		}
		return s.write(*action.Step), nil
	case Merge:
		if action.Step == nil || action.TargetT == nil {
			return false, fmt.Errorf("memory: MERGE requires a step and a target_t")
		}
		return s.merge(*action.TargetT, *action.Step, action.Delta), nil
	case Expire:
		if action.TargetT == nil {
			return false, fmt.Errorf("memory: EXPIRE requires a target_t")
		}
		if *action.TargetT >= currentT {
			// Cannot expire the step currently being written, or the future.
			return false, nil
		}
		return s.expire(*action.TargetT), nil
	default:
		return false, fmt.Errorf("memory: unknown action kind %d", action.Kind)
	}
}

// write inserts step as a base item. Writing to an already-occupied key is a
// collision and fails before any budget is charged; callers wanting
// overwrite semantics must EXPIRE first.
func (s *ByteStore) write(step episode.Step) bool {
	if _, exists := s.items[step.T]; exists {
		return false
	}
	cost := EstimateBytes(step)
	if !s.budget.Consume(cost) {
		return false
	}
	s.insert(&MemoryItem{Step: step, WrittenAt: step.T, ByteCost: cost})
	return true
}

// merge validates and applies a MERGE of step against the base item at
// targetT, failing fast at the first violation. Validation order follows the
// benchmark contract; note that budget consumption happens before the
// incoming-key collision check, so a colliding merge that passed every other
// check leaves its bytes charged.
func (s *ByteStore) merge(targetT int, step episode.Step, delta map[string]any) bool {
	base, ok := s.items[targetT]
	if !ok {
		return false
	}

	// No merge chains: the target must itself be a base item.
	if _, isDelta := base.MergeParent(); isDelta {
		return false
	}

	// Same-endpoint guardrail: both observations must be structured and
	// carry the same non-empty endpoint identity.
	baseObs, ok := base.Step.Observation.(map[string]any)
	if !ok {
		return false
	}
	newObs, ok := step.Observation.(map[string]any)
	if !ok {
		return false
	}
	baseAPI, ok := baseObs[endpointKey]
	if !ok || baseAPI == nil {
		return false
	}
	newAPI, ok := newObs[endpointKey]
	if !ok || newAPI == nil {
		return false
	}
	if !episode.CanonicalEqual(baseAPI, newAPI) {
		return false
	}

	expected := computeDelta(baseObs, newObs)
	if delta == nil {
		delta = expected
	} else if !episode.CanonicalEqual(delta, expected) {
		// A caller-supplied delta must match the canonical diff verbatim.
		return false
	}

	// The delta may not redefine the endpoint key.
	if _, found := delta[endpointKey]; found {
		return false
	}

	// A no-op merge must not count as a retained write.
	if len(delta) == 0 {
		return false
	}

	cost := MergeCost(delta)
	if !s.budget.Consume(cost) {
		return false
	}

	// MERGE retains the incoming step's timestep; the key must be free.
	if _, exists := s.items[step.T]; exists {
		return false
	}

	deltaStep := episode.Step{
		T:           step.T,
		Observation: delta,
		Metadata: map[string]any{
			MergeParentKey:    targetT,
			MergeParentAPIKey: baseAPI,
		},
	}
	s.insert(&MemoryItem{Step: deltaStep, WrittenAt: step.T, ByteCost: cost})
	return true
}

// expire removes the item at targetT and credits its bytes back. Fails when
// no such item exists.
func (s *ByteStore) expire(targetT int) bool {
	item, ok := s.items[targetT]
	if !ok {
		return false
	}
	delete(s.items, targetT)
	s.budget.Credit(item.ByteCost)
	for i, t := range s.order {
		if t == targetT {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *ByteStore) insert(item *MemoryItem) {
	s.items[item.Step.T] = item
	s.order = append(s.order, item.Step.T)
}

// Items implements Store. The returned slice is in insertion order.
func (s *ByteStore) Items() []*MemoryItem {
	out := make([]*MemoryItem, 0, len(s.order))
	for _, t := range s.order {
		if item, ok := s.items[t]; ok {
			out = append(out, item)
		}
	}
	return out
}

// OldestItem implements Store: the item at the head of insertion order,
// used by FIFO-style eviction.
func (s *ByteStore) OldestItem() *MemoryItem {
	if len(s.order) == 0 {
		return nil
	}
	return s.items[s.order[0]]
}

// Clear implements Store: drops all items and zeroes the budget.
func (s *ByteStore) Clear() {
	s.items = make(map[int]*MemoryItem)
	s.order = nil
	s.budget.reset()
}

// computeDelta returns the shallow fieldwise delta from oldObs to newObs:
// keys of newObs whose values changed, excluding the endpoint key. Non-map
// observations collapse to {"value": newObs}.
func computeDelta(oldObs, newObs any) map[string]any {
	oldMap, okOld := oldObs.(map[string]any)
	newMap, okNew := newObs.(map[string]any)
	if !okOld || !okNew {
		return map[string]any{"value": newObs}
	}

	delta := make(map[string]any)
	for key, value := range newMap {
		if key == endpointKey {
			continue
		}
		// A missing key reads as null, matching an explicit null value.
		old := oldMap[key]
		if !episode.CanonicalEqual(old, value) {
			delta[key] = value
		}
	}
	return delta
}
