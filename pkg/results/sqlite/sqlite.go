// Package sqlite provides a SQLite-backed results store. It implements both
// results.Sink (for eval runs) and results.Reader (for the results API).
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/writebench/pkg/eval"
	"github.com/papercomputeco/writebench/pkg/results"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id            TEXT NOT NULL,
	episode_id        TEXT NOT NULL,
	policy            TEXT NOT NULL,
	mode              TEXT NOT NULL,
	track             TEXT NOT NULL,
	budget_bytes      INTEGER NOT NULL,
	bytes_used        INTEGER NOT NULL,
	write_actions     INTEGER NOT NULL,
	expire_actions    INTEGER NOT NULL,
	recall            REAL NOT NULL,
	precision_        REAL NOT NULL,
	f1                REAL NOT NULL,
	policy_utility    REAL NOT NULL,
	oracle_utility    REAL NOT NULL,
	regret_write_only REAL NOT NULL,
	utility_per_kb    REAL NOT NULL,
	drift_coverage    REAL NOT NULL,
	avg_staleness     REAL NOT NULL,
	expire_rate       REAL NOT NULL,
	utilization       REAL NOT NULL,
	write_density     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_results_policy ON results(policy);
CREATE INDEX IF NOT EXISTS idx_results_mode_track ON results(mode, track);
`

// Store is a SQLite-backed results sink and reader.
type Store struct {
	db *sql.DB
}

var (
	_ results.Sink   = (*Store)(nil)
	_ results.Reader = (*Store)(nil)
)

// New opens (or creates) the SQLite database at dbPath and bootstraps the
// results schema. dbPath may be ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening results database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating results schema: %w", err)
	}

	return &Store{db: db}, nil
}

// WriteResults implements results.Sink. The batch is inserted in one
// transaction.
func (s *Store) WriteResults(ctx context.Context, rs []eval.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning results transaction: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO results (
		run_id, episode_id, policy, mode, track,
		budget_bytes, bytes_used, write_actions, expire_actions,
		recall, precision_, f1, policy_utility, oracle_utility,
		regret_write_only, utility_per_kb, drift_coverage, avg_staleness,
		expire_rate, utilization, write_density
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("preparing results insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rs {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.EpisodeID, r.Policy, r.Mode, r.Track,
			r.BudgetBytes, r.BytesUsed, r.WriteActions, r.ExpireActions,
			r.Recall, r.Precision, r.F1, r.PolicyUtility, r.OracleUtility,
			r.RegretWriteOnly, r.UtilityPerKB, r.DriftCoverage, r.AvgStaleness,
			r.ExpireRate, r.Utilization, r.WriteDensity,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting result: %w", err)
		}
	}

	return tx.Commit()
}

// List implements results.Reader.
func (s *Store) List(ctx context.Context, f results.Filter) ([]eval.Result, error) {
	query := `SELECT run_id, episode_id, policy, mode, track,
		budget_bytes, bytes_used, write_actions, expire_actions,
		recall, precision_, f1, policy_utility, oracle_utility,
		regret_write_only, utility_per_kb, drift_coverage, avg_staleness,
		expire_rate, utilization, write_density
	FROM results`

	var conds []string
	var args []any
	if f.Policy != "" {
		conds = append(conds, "policy = ?")
		args = append(args, f.Policy)
	}
	if f.Mode != "" {
		conds = append(conds, "mode = ?")
		args = append(args, f.Mode)
	}
	if f.Track != "" {
		conds = append(conds, "track = ?")
		args = append(args, f.Track)
	}
	if f.BudgetBytes > 0 {
		conds = append(conds, "budget_bytes = ?")
		args = append(args, f.BudgetBytes)
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	var out []eval.Result
	for rows.Next() {
		var r eval.Result
		if err := rows.Scan(
			&r.RunID, &r.EpisodeID, &r.Policy, &r.Mode, &r.Track,
			&r.BudgetBytes, &r.BytesUsed, &r.WriteActions, &r.ExpireActions,
			&r.Recall, &r.Precision, &r.F1, &r.PolicyUtility, &r.OracleUtility,
			&r.RegretWriteOnly, &r.UtilityPerKB, &r.DriftCoverage, &r.AvgStaleness,
			&r.ExpireRate, &r.Utilization, &r.WriteDensity,
		); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
