package memory

import "github.com/papercomputeco/writebench/pkg/episode"

// ActionKind enumerates the closed set of memory actions a policy may emit.
// The store applies actions with an exhaustive switch; adding a kind is a
// compile-time exercise at that single boundary.
type ActionKind int

const (
	// Skip is a no-op; always succeeds.
	Skip ActionKind = iota
	// Write retains the incoming step as a new base item.
	Write
	// Merge appends a delta item referencing an existing base item.
	Merge
	// Expire removes a strictly-past item and credits its bytes back.
	Expire
)

// String returns the action kind's wire name.
func (k ActionKind) String() string {
	switch k {
	case Skip:
		return "SKIP"
	case Write:
		return "WRITE"
	case Merge:
		return "MERGE"
	case Expire:
		return "EXPIRE"
	default:
		return "UNKNOWN"
	}
}

// Action is a single memory action produced by a policy for one incoming
// step. A policy may return several actions (e.g. expire-then-write); they
// are applied in the order returned.
//
// Step is required for Write and Merge. TargetT is required for Merge and
// Expire. Delta is optional for Merge: when nil the canonical field-diff is
// used, when supplied it must equal the canonical diff exactly. Reason is a
// free-form annotation for debugging and is ignored by the store.
type Action struct {
	Kind    ActionKind
	Step    *episode.Step
	TargetT *int
	Delta   map[string]any
	Reason  string
}

// SkipAction returns a no-op action.
func SkipAction(reason string) Action {
	return Action{Kind: Skip, Reason: reason}
}

// WriteAction retains step as a new base item.
func WriteAction(step episode.Step, reason string) Action {
	return Action{Kind: Write, Step: &step, Reason: reason}
}

// MergeAction appends a delta of step against the base item at targetT.
// A nil delta means "use the canonical field-diff".
func MergeAction(step episode.Step, targetT int, delta map[string]any, reason string) Action {
	return Action{Kind: Merge, Step: &step, TargetT: &targetT, Delta: delta, Reason: reason}
}

// ExpireAction removes the item at targetT.
func ExpireAction(targetT int, reason string) Action {
	return Action{Kind: Expire, TargetT: &targetT, Reason: reason}
}
