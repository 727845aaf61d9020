package episode_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/writebench/pkg/episode"
)

func sampleEpisode() episode.Episode {
	return episode.Episode{
		Steps: []episode.Step{
			{
				T:           0,
				Observation: map[string]any{"api": "api.v1.endpoint_0", "version": float64(1)},
				Metadata:    map[string]any{"mode": "default", "priority": 0.5},
			},
			{
				T:           1,
				Observation: map[string]any{"api": "api.v2.endpoint_0", "version": float64(2)},
				Metadata:    map[string]any{"mode": "default", "priority": 1.0},
			},
		},
		Labels: map[string]any{
			"episode_id":         float64(0),
			"mode":               "default",
			"critical_steps":     []any{float64(1)},
			"total_drift_events": float64(1),
			"utility_by_step":    map[string]any{"0": 1.0, "1": 5.0},
		},
	}
}

var _ = Describe("JSONL episodes", func() {
	It("round-trips through write and read", func() {
		var buf bytes.Buffer
		err := episode.Write(&buf, []episode.Episode{sampleEpisode()})
		Expect(err).NotTo(HaveOccurred())

		loaded, err := episode.Read(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(HaveLen(1))

		ep := loaded[0]
		Expect(ep.Steps).To(HaveLen(2))
		Expect(ep.Steps[0].T).To(Equal(0))
		Expect(ep.Steps[1].T).To(Equal(1))
		Expect(ep.Mode()).To(Equal("default"))
		Expect(ep.CriticalSteps()).To(Equal(map[int]bool{1: true}))
		Expect(ep.UtilityByStep()[1]).To(Equal(5.0))
	})

	It("writes one canonical line per episode", func() {
		var buf bytes.Buffer
		err := episode.Write(&buf, []episode.Episode{sampleEpisode(), sampleEpisode()})
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
		Expect(lines).To(HaveLen(2))
		Expect(lines[0]).To(Equal(lines[1]))
	})

	It("skips blank lines", func() {
		var buf bytes.Buffer
		Expect(episode.Write(&buf, []episode.Episode{sampleEpisode()})).To(Succeed())
		input := "\n" + buf.String() + "\n"

		loaded, err := episode.Read(strings.NewReader(input))
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(HaveLen(1))
	})

	It("fails with the line number on malformed JSON", func() {
		_, err := episode.Read(strings.NewReader(`{"steps": []}` + "\n" + `{not json}`))

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	It("rejects an episode without steps", func() {
		_, err := episode.Read(strings.NewReader(`{"labels": {}}`))

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("missing 'steps'"))
	})

	It("rejects a step without a timestep", func() {
		_, err := episode.Read(strings.NewReader(`{"steps": [{"observation": {}}]}`))

		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("missing 't'"))
	})

	It("round-trips through files, creating parent directories", func() {
		dir, err := os.MkdirTemp("", "episodes-*")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() {
			_ = os.RemoveAll(dir)
		})

		path := filepath.Join(dir, "nested", "episodes.jsonl")
		Expect(episode.WriteFile(path, []episode.Episode{sampleEpisode()})).To(Succeed())

		loaded, err := episode.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded).To(HaveLen(1))
	})

	It("includes the path in file read errors", func() {
		_, err := episode.ReadFile("/nonexistent/episodes.jsonl")

		Expect(err).To(HaveOccurred())
	})
})
