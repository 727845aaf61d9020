package memory

import "github.com/papercomputeco/writebench/pkg/episode"

// Byte accounting constants. A retained item is charged its canonical
// serialized size plus fixed header and index overhead.
const (
	headerOverhead = 32
	indexOverhead  = 16
)

// EstimateBytes returns the byte cost of retaining a step:
// canonical(observation) + canonical(metadata) + header + index overhead.
//
// Pure function over canonical (key-sorted) serialization, so the cost is
// deterministic and independent of original field order. The same definition
// is used wherever cost is charged: WRITE, MERGE delta sizing, and the
// oracle's knapsack weights.
func EstimateBytes(step episode.Step) int {
	payload := len(episode.MustCanonicalJSON(step.Observation))
	metadata := len(episode.MustCanonicalJSON(step.Metadata))
	return payload + metadata + headerOverhead + indexOverhead
}

// MergeCost returns the byte cost of retaining a merge delta:
// canonical(delta) + index overhead. Deltas skip the header charge since
// they piggyback on their base item.
func MergeCost(delta map[string]any) int {
	return len(episode.MustCanonicalJSON(delta)) + indexOverhead
}
