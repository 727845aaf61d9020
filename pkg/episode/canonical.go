package episode

import (
	"encoding/json"
	"fmt"
)

// CanonicalJSON serializes v with deterministic key ordering. encoding/json
// sorts map keys, so any JSON-shaped value (maps, slices, scalars) has
// exactly one canonical encoding regardless of original field order.
//
// The cost model, the merge delta-equality check, and the JSONL writer all
// serialize through this single definition so byte accounting is identical
// everywhere it happens.
func CanonicalJSON(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical serialization: %w", err)
	}
	return data, nil
}

// MustCanonicalJSON is CanonicalJSON for values already validated as
// JSON-shaped (episode data is parsed from JSON or built from literals, so
// serialization cannot fail past load time). It panics on non-serializable
// input, which indicates a harness bug rather than a runtime condition.
func MustCanonicalJSON(v any) []byte {
	data, err := CanonicalJSON(v)
	if err != nil {
		panic(err)
	}
	return data
}

// CanonicalEqual reports whether two JSON-shaped values have the same
// canonical encoding. This is the verbatim value equality used for
// caller-supplied merge deltas.
func CanonicalEqual(a, b any) bool {
	return string(MustCanonicalJSON(a)) == string(MustCanonicalJSON(b))
}
