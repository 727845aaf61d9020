// Package csvfile provides a CSV-backed results sink and reader. The column
// order is results.Columns; files written here feed the summarize and sanity
// commands as well as downstream reporting.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/results"
)

// Sink appends result records to a CSV file, header first.
type Sink struct {
	f *os.File
	w *csv.Writer
}

var _ results.Sink = (*Sink)(nil)

// NewSink creates (or truncates) the CSV file at path, creating parent
// directories as needed, and writes the header row.
func NewSink(path string) (*Sink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating results dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating results file: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(results.Columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing results header: %w", err)
	}

	return &Sink{f: f, w: w}, nil
}

// WriteResults implements results.Sink.
func (s *Sink) WriteResults(_ context.Context, rs []eval.Result) error {
	for _, r := range rs {
		if err := s.w.Write(results.Row(r)); err != nil {
			return fmt.Errorf("writing result row: %w", err)
		}
	}
	s.w.Flush()
	return s.w.Error()
}

// Close implements results.Sink.
func (s *Sink) Close() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// ReadFile loads all result records from a CSV file written by Sink.
func ReadFile(path string) ([]eval.Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening results file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%s: reading results: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s: empty results file", path)
	}

	// Header sanity: the file must carry the canonical column set.
	header := rows[0]
	if len(header) != len(results.Columns) {
		return nil, fmt.Errorf("%s: header has %d columns, want %d", path, len(header), len(results.Columns))
	}
	for i, col := range results.Columns {
		if header[i] != col {
			return nil, fmt.Errorf("%s: column %d is %q, want %q", path, i, header[i], col)
		}
	}

	out := make([]eval.Result, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := results.FromRow(row)
		if err != nil {
			return nil, fmt.Errorf("%s: row %d: %w", path, i+2, err)
		}
		out = append(out, rec)
	}
	return out, nil
}
