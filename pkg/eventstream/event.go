// Package eventstream defines transport-neutral event payloads emitted as
// benchmark results are recorded, plus the Publisher interface backends
// implement (kafka for shared pipelines, nop for disabled mode and tests).
package eventstream

import (
	"time"

	"github.com/papercomputeco/writebench/pkg/eval"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeResultRecorded is emitted after one (episode, policy,
	// track, budget, mode) combination finishes scoring.
	EventTypeResultRecorded = "writebench.result.recorded"
)

// ResultRecordedEvent is a transport-neutral event payload for one recorded
// benchmark result.
type ResultRecordedEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Result        eval.Result `json:"result"`
}
