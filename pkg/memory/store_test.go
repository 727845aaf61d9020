package memory_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/episode"
	"github.com/papercomputeco/writebench/pkg/memory"
)

func obsStep(t int, api string, version int) episode.Step {
	return episode.Step{
		T: t,
		Observation: map[string]any{
			"api":     api,
			"version": version,
		},
		Metadata: map[string]any{"mode": "default"},
	}
}

var _ = Describe("ByteStore", func() {
	var store *memory.ByteStore

	BeforeEach(func() {
		store = memory.NewByteStore(memory.NewByteBudget(10_000))
	})

	Describe("SKIP", func() {
		It("always succeeds and changes nothing", func() {
			ok, err := store.Apply(memory.SkipAction("nothing to do"), 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(store.Len()).To(Equal(0))
			Expect(store.UsedBytes()).To(Equal(0))
		})
	})

	Describe("WRITE", func() {
		It("retains the step and charges its cost", func() {
			step := obsStep(0, "api.v1.endpoint_0", 1)

			ok, err := store.Apply(memory.WriteAction(step, ""), 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(store.Len()).To(Equal(1))
			Expect(store.UsedBytes()).To(Equal(memory.EstimateBytes(step)))
		})

		It("fails on an occupied key without charging", func() {
			step := obsStep(3, "api.v1.endpoint_0", 1)
			ok, err := store.Apply(memory.WriteAction(step, ""), 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			used := store.UsedBytes()

			ok, err = store.Apply(memory.WriteAction(obsStep(3, "api.v1.endpoint_1", 1), ""), 3)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(store.Len()).To(Equal(1))
			Expect(store.UsedBytes()).To(Equal(used))
		})

		It("fails when the budget is exhausted", func() {
			tiny := memory.NewByteStore(memory.NewByteBudget(8))

			ok, err := tiny.Apply(memory.WriteAction(obsStep(0, "api.v1.endpoint_0", 1), ""), 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(tiny.Len()).To(Equal(0))
			Expect(tiny.UsedBytes()).To(Equal(0))
		})

		It("rejects a nil step as a contract violation", func() {
			_, err := store.Apply(memory.Action{Kind: memory.Write}, 0)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("MERGE", func() {
		var base episode.Step

		BeforeEach(func() {
			base = obsStep(0, "api.v1.endpoint_0", 1)
			ok, err := store.Apply(memory.WriteAction(base, ""), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("appends a delta item carrying the parent reference", func() {
			next := obsStep(5, "api.v1.endpoint_0", 2)

			ok, err := store.Apply(memory.MergeAction(next, 0, nil, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(store.Len()).To(Equal(2))

			items := store.Items()
			delta := items[1]
			parent, isDelta := delta.MergeParent()
			Expect(isDelta).To(BeTrue())
			Expect(parent).To(Equal(0))
			Expect(delta.Step.Observation).To(Equal(map[string]any{"version": 2}))
			Expect(delta.Step.Metadata[memory.MergeParentAPIKey]).To(Equal("api.v1.endpoint_0"))
		})

		It("charges the delta cost, not the full step cost", func() {
			next := obsStep(5, "api.v1.endpoint_0", 2)
			before := store.UsedBytes()

			ok, _ := store.Apply(memory.MergeAction(next, 0, nil, ""), 5)

			Expect(ok).To(BeTrue())
			Expect(store.UsedBytes() - before).To(Equal(memory.MergeCost(map[string]any{"version": 2})))
		})

		It("fails when the target is missing", func() {
			ok, err := store.Apply(memory.MergeAction(obsStep(5, "api.v1.endpoint_0", 2), 99, nil, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects merge chains: the target must be a base item", func() {
			ok, _ := store.Apply(memory.MergeAction(obsStep(5, "api.v1.endpoint_0", 2), 0, nil, ""), 5)
			Expect(ok).To(BeTrue())

			ok, err := store.Apply(memory.MergeAction(obsStep(6, "api.v1.endpoint_0", 3), 5, nil, ""), 6)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects merges across endpoint identities", func() {
			ok, err := store.Apply(memory.MergeAction(obsStep(5, "api.v1.endpoint_1", 2), 0, nil, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects a supplied delta that differs from the canonical diff", func() {
			next := obsStep(5, "api.v1.endpoint_0", 2)

			ok, err := store.Apply(memory.MergeAction(next, 0, map[string]any{"version": 3}, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("accepts a supplied delta equal to the canonical diff", func() {
			next := obsStep(5, "api.v1.endpoint_0", 2)

			ok, err := store.Apply(memory.MergeAction(next, 0, map[string]any{"version": 2}, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("rejects an empty delta: identical observations never merge", func() {
			same := obsStep(5, "api.v1.endpoint_0", 1)

			ok, err := store.Apply(memory.MergeAction(same, 0, nil, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(store.Len()).To(Equal(1))
		})

		It("rejects a merge onto an unstructured observation", func() {
			raw := episode.Step{T: 10, Observation: "plain text"}
			ok, _ := store.Apply(memory.WriteAction(raw, ""), 10)
			Expect(ok).To(BeTrue())

			ok, err := store.Apply(memory.MergeAction(obsStep(11, "api.v1.endpoint_0", 2), 10, nil, ""), 11)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("consumes budget before the incoming-key collision check", func() {
			occupying := obsStep(5, "api.v1.endpoint_9", 1)
			ok, _ := store.Apply(memory.WriteAction(occupying, ""), 5)
			Expect(ok).To(BeTrue())
			before := store.UsedBytes()

			colliding := obsStep(5, "api.v1.endpoint_0", 2)
			ok, err := store.Apply(memory.MergeAction(colliding, 0, nil, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			// The merge failed, but its delta bytes stay charged.
			Expect(store.UsedBytes() - before).To(Equal(memory.MergeCost(map[string]any{"version": 2})))
			Expect(store.Len()).To(Equal(2))
		})

		It("rejects a nil step or target as a contract violation", func() {
			_, err := store.Apply(memory.Action{Kind: memory.Merge}, 0)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("EXPIRE", func() {
		BeforeEach(func() {
			ok, err := store.Apply(memory.WriteAction(obsStep(0, "api.v1.endpoint_0", 1), ""), 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
		})

		It("removes a past item and credits its bytes", func() {
			ok, err := store.Apply(memory.ExpireAction(0, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(store.Len()).To(Equal(0))
			Expect(store.UsedBytes()).To(Equal(0))
		})

		It("refuses to expire the current timestep", func() {
			ok, err := store.Apply(memory.ExpireAction(0, ""), 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(store.Len()).To(Equal(1))
		})

		It("refuses to expire the future", func() {
			ok, err := store.Apply(memory.ExpireAction(10, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("fails on a missing item", func() {
			ok, err := store.Apply(memory.ExpireAction(3, ""), 5)

			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
		})

		It("rejects a nil target as a contract violation", func() {
			_, err := store.Apply(memory.Action{Kind: memory.Expire}, 5)

			Expect(err).To(HaveOccurred())
		})
	})

	Describe("iteration", func() {
		It("returns items in insertion order", func() {
			for _, t := range []int{7, 2, 9} {
				ok, err := store.Apply(memory.WriteAction(obsStep(t, "api.v1.endpoint_0", 1), ""), t)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
			}

			items := store.Items()
			ts := []int{items[0].Step.T, items[1].Step.T, items[2].Step.T}
			Expect(ts).To(Equal([]int{7, 2, 9}))
			Expect(store.OldestItem().Step.T).To(Equal(7))
		})

		It("preserves order across expiry", func() {
			for _, t := range []int{1, 2, 3} {
				ok, _ := store.Apply(memory.WriteAction(obsStep(t, "api.v1.endpoint_0", 1), ""), t)
				Expect(ok).To(BeTrue())
			}

			ok, _ := store.Apply(memory.ExpireAction(1, ""), 4)
			Expect(ok).To(BeTrue())

			Expect(store.OldestItem().Step.T).To(Equal(2))
		})

		It("returns nil oldest item when empty", func() {
			Expect(store.OldestItem()).To(BeNil())
		})
	})

	Describe("Clear", func() {
		It("drops items and zeroes the budget", func() {
			ok, _ := store.Apply(memory.WriteAction(obsStep(0, "api.v1.endpoint_0", 1), ""), 0)
			Expect(ok).To(BeTrue())

			store.Clear()

			Expect(store.Len()).To(Equal(0))
			Expect(store.UsedBytes()).To(Equal(0))
			Expect(store.Items()).To(BeEmpty())
		})
	})

	It("rejects unknown action kinds", func() {
		_, err := store.Apply(memory.Action{Kind: memory.ActionKind(42)}, 0)

		Expect(err).To(HaveOccurred())
	})
})
