package eventstream_test

import (
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/eventstream"
)

var _ = Describe("ResultRecordedEvent", func() {
	It("marshals the versioned envelope", func() {
		event := eventstream.ResultRecordedEvent{
			SchemaVersion: eventstream.SchemaVersionV1,
			EventType:     eventstream.EventTypeResultRecorded,
			EventID:       "evt-1",
			EmittedAt:     time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
			Result: eval.Result{
				RunID:  "run-1",
				Policy: "last_kb",
			},
		}

		data, err := json.Marshal(event)
		Expect(err).NotTo(HaveOccurred())

		var decoded map[string]any
		Expect(json.Unmarshal(data, &decoded)).To(Succeed())
		Expect(decoded["schema_version"]).To(BeNumerically("==", 1))
		Expect(decoded["event_type"]).To(Equal("writebench.result.recorded"))
		Expect(decoded["event_id"]).To(Equal("evt-1"))
		Expect(decoded).To(HaveKey("emitted_at"))

		result, ok := decoded["result"].(map[string]any)
		Expect(ok).To(BeTrue())
		Expect(result["run_id"]).To(Equal("run-1"))
		Expect(result["policy"]).To(Equal("last_kb"))
	})
})
