package episode

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// JSONL episode files: one episode per line, each an object
// {"steps": [{"t": ..., "observation": ..., "metadata": {...}}], "labels": {...}}.
//
// Malformed lines are fatal at load time; the harness never attempts partial
// recovery of a corrupt episode file.

// maxLineBytes bounds a single episode line. Frozen benchmark episodes are a
// few hundred KB at most; 16MB leaves generous headroom.
const maxLineBytes = 16 << 20

type stepJSON struct {
	T           *int           `json:"t"`
	Observation any            `json:"observation"`
	Metadata    map[string]any `json:"metadata"`
}

type episodeJSON struct {
	Steps  *[]stepJSON    `json:"steps"`
	Labels map[string]any `json:"labels"`
}

// Read parses line-delimited episodes from r.
func Read(r io.Reader) ([]Episode, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	var episodes []Episode
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw episodeJSON
		if err := json.Unmarshal(line, &raw); err != nil {
			return nil, fmt.Errorf("line %d: parsing episode: %w", lineNo, err)
		}
		ep, err := fromJSON(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		episodes = append(episodes, ep)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading episodes: %w", err)
	}
	return episodes, nil
}

func fromJSON(raw episodeJSON) (Episode, error) {
	if raw.Steps == nil {
		return Episode{}, fmt.Errorf("episode missing 'steps' field")
	}
	steps := make([]Step, 0, len(*raw.Steps))
	for i, rs := range *raw.Steps {
		if rs.T == nil {
			return Episode{}, fmt.Errorf("step %d missing 't' field", i)
		}
		md := rs.Metadata
		if md == nil {
			md = map[string]any{}
		}
		steps = append(steps, Step{T: *rs.T, Observation: rs.Observation, Metadata: md})
	}
	labels := raw.Labels
	if labels == nil {
		labels = map[string]any{}
	}
	return Episode{Steps: steps, Labels: labels}, nil
}

// ReadFile loads all episodes from a JSONL file.
func ReadFile(path string) ([]Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening episodes file: %w", err)
	}
	defer f.Close()

	episodes, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return episodes, nil
}

// Write serializes episodes to w, one canonical JSON object per line.
func Write(w io.Writer, episodes []Episode) error {
	bw := bufio.NewWriter(w)
	for i, ep := range episodes {
		payload, err := CanonicalJSON(ep)
		if err != nil {
			return fmt.Errorf("episode %d: %w", i, err)
		}
		if _, err := bw.Write(payload); err != nil {
			return fmt.Errorf("writing episode %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing episode %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteFile writes episodes to a JSONL file, creating parent directories as
// needed.
func WriteFile(path string, episodes []Episode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating episodes dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating episodes file: %w", err)
	}
	if err := Write(f, episodes); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
