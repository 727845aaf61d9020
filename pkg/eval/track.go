// Package eval replays write policies over episodes: it builds the
// track-redacted step views, drives the policy execution loop against a
// fresh byte-budgeted store per run, and fans a full benchmark grid out over
// a worker pool.
package eval

import (
	"fmt"

	"github.com/papercomputeco/writebench/pkg/episode"
)

// Track is the privilege level controlling which metadata keys a policy may
// observe.
type Track string

const (
	// TrackUnprivileged exposes no supervision-derived signals; policies
	// see the observation and the mode tag only.
	TrackUnprivileged Track = "unprivileged"
	// TrackPrivileged additionally exposes the bounded scalar priority
	// surrogate (never the raw hidden utility).
	TrackPrivileged Track = "privileged"
)

// Tracks lists all tracks in evaluation order.
func Tracks() []Track {
	return []Track{TrackUnprivileged, TrackPrivileged}
}

// ParseTrack validates a track name.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackUnprivileged, TrackPrivileged:
		return Track(s), nil
	default:
		return "", fmt.Errorf("eval: unknown track %q", s)
	}
}

// visibleKeys is the per-track allow-list of policy-visible metadata keys.
var visibleKeys = map[Track][]string{
	TrackUnprivileged: {"mode"},
	TrackPrivileged:   {"mode", "priority"},
}

// ViewStep returns the redacted view of step for a track: same timestep and
// observation, metadata filtered to the track's allow-list. The original
// step is not mutated.
func ViewStep(step episode.Step, track Track) episode.Step {
	md := make(map[string]any)
	for _, key := range visibleKeys[track] {
		if v, ok := step.Metadata[key]; ok {
			md[key] = v
		}
	}
	return episode.Step{T: step.T, Observation: step.Observation, Metadata: md}
}
