package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/memory"
)

var _ = Describe("Cost model", func() {
	Describe("EstimateBytes", func() {
		It("charges canonical payload plus fixed overhead", func() {
			step := episode.Step{
				T:           0,
				Observation: map[string]any{"api": "api.v1.endpoint_0"},
				Metadata:    map[string]any{"mode": "default"},
			}

			obs := len(episode.MustCanonicalJSON(step.Observation))
			md := len(episode.MustCanonicalJSON(step.Metadata))
			Expect(memory.EstimateBytes(step)).To(Equal(obs + md + 48))
		})

		It("is independent of map field order", func() {
			a := episode.Step{T: 0, Observation: map[string]any{"api": "x", "version": 1, "deprecated": false}}
			b := episode.Step{T: 0, Observation: map[string]any{"deprecated": false, "version": 1, "api": "x"}}

			Expect(memory.EstimateBytes(a)).To(Equal(memory.EstimateBytes(b)))
		})

		It("grows with payload size", func() {
			small := episode.Step{T: 0, Observation: map[string]any{"api": "a"}}
			large := episode.Step{T: 0, Observation: map[string]any{"api": "a", "params": []string{"p0", "p1", "p2"}}}

			Expect(memory.EstimateBytes(large)).To(BeNumerically(">", memory.EstimateBytes(small)))
		})
	})

	Describe("MergeCost", func() {
		It("charges the canonical delta plus index overhead only", func() {
			delta := map[string]any{"version": 2}

			Expect(memory.MergeCost(delta)).To(Equal(len(episode.MustCanonicalJSON(delta)) + 16))
		})

		It("is cheaper than writing the full step for a small delta", func() {
			step := episode.Step{
				T:           1,
				Observation: map[string]any{"api": "api.v2.endpoint_0", "params": []string{"p0", "p1"}, "version": 2},
			}
			delta := map[string]any{"version": 2}

			Expect(memory.MergeCost(delta)).To(BeNumerically("<", memory.EstimateBytes(step)))
		})
	})
})
