// Package results defines where benchmark result records go: a Sink
// interface with CSV, SQLite, and PostgreSQL backends in subpackages, and a
// Reader interface the results API serves from.
//
// The column set and order are fixed here so every backend (and the event
// stream payloads) agree on the tabular shape of a result.
package results

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/papercomputeco/writebench/pkg/eval"
)

// ErrUnsupportedSink reports an unrecognized results sink name.
var ErrUnsupportedSink = errors.New("results: unsupported sink")

// Sink persists benchmark result records.
type Sink interface {
	// WriteResults appends a batch of result records.
	WriteResults(ctx context.Context, results []eval.Result) error

	// Close flushes and releases the sink.
	Close() error
}

// Filter narrows a Reader listing. Zero values mean "any".
type Filter struct {
	Policy      string
	Mode        string
	Track       string
	BudgetBytes int
}

// Reader lists previously persisted results.
type Reader interface {
	// List returns results matching the filter, in insertion order.
	List(ctx context.Context, f Filter) ([]eval.Result, error)

	// Close releases the reader.
	Close() error
}

// Columns is the canonical tabular column order for result records.
var Columns = []string{
	"run_id",
	"episode_id",
	"policy",
	"mode",
	"track",
	"budget_bytes",
	"bytes_used",
	"write_actions",
	"expire_actions",
	"recall",
	"precision",
	"f1",
	"policy_utility",
	"oracle_utility",
	"regret_write_only",
	"utility_per_kb",
	"drift_coverage",
	"avg_staleness",
	"expire_rate",
	"utilization",
	"write_density",
}

// Row renders a result in Columns order.
func Row(r eval.Result) []string {
	return []string{
		r.RunID,
		r.EpisodeID,
		r.Policy,
		r.Mode,
		r.Track,
		strconv.Itoa(r.BudgetBytes),
		strconv.Itoa(r.BytesUsed),
		strconv.Itoa(r.WriteActions),
		strconv.Itoa(r.ExpireActions),
		formatFloat(r.Recall),
		formatFloat(r.Precision),
		formatFloat(r.F1),
		formatFloat(r.PolicyUtility),
		formatFloat(r.OracleUtility),
		formatFloat(r.RegretWriteOnly),
		formatFloat(r.UtilityPerKB),
		formatFloat(r.DriftCoverage),
		formatFloat(r.AvgStaleness),
		formatFloat(r.ExpireRate),
		formatFloat(r.Utilization),
		formatFloat(r.WriteDensity),
	}
}

// FromRow parses a record previously rendered by Row.
func FromRow(row []string) (eval.Result, error) {
	if len(row) != len(Columns) {
		return eval.Result{}, fmt.Errorf("results: row has %d columns, want %d", len(row), len(Columns))
	}

	var r eval.Result
	var err error
	r.RunID = row[0]
	r.EpisodeID = row[1]
	r.Policy = row[2]
	r.Mode = row[3]
	r.Track = row[4]

	ints := []struct {
		dst *int
		col int
	}{
		{&r.BudgetBytes, 5},
		{&r.BytesUsed, 6},
		{&r.WriteActions, 7},
		{&r.ExpireActions, 8},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(row[f.col]); err != nil {
			return eval.Result{}, fmt.Errorf("results: column %s: %w", Columns[f.col], err)
		}
	}

	floats := []struct {
		dst *float64
		col int
	}{
		{&r.Recall, 9},
		{&r.Precision, 10},
		{&r.F1, 11},
		{&r.PolicyUtility, 12},
		{&r.OracleUtility, 13},
		{&r.RegretWriteOnly, 14},
		{&r.UtilityPerKB, 15},
		{&r.DriftCoverage, 16},
		{&r.AvgStaleness, 17},
		{&r.ExpireRate, 18},
		{&r.Utilization, 19},
		{&r.WriteDensity, 20},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(row[f.col], 64); err != nil {
			return eval.Result{}, fmt.Errorf("results: column %s: %w", Columns[f.col], err)
		}
	}

	return r, nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
