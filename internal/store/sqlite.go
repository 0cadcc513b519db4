package store

// sqlite.go: one row per strategy per run. A Compare call produces two rows
// sharing a run_id.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/xtding233/montyhall/internal/montyhall"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id       TEXT     NOT NULL,
    created_at   DATETIME NOT NULL,
    scenario     TEXT     NOT NULL DEFAULT '',
    num_doors    INTEGER  NOT NULL,
    strategy     TEXT     NOT NULL,
    wins         INTEGER  NOT NULL,
    total_trials INTEGER  NOT NULL,
    seed         INTEGER
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_run_id  ON runs(run_id);
`

// Run is one persisted strategy result.
type Run struct {
	RunID     string                   `json:"run_id"`
	CreatedAt time.Time                `json:"created_at"`
	Scenario  string                   `json:"scenario,omitempty"`
	Seed      *uint64                  `json:"seed,omitempty,string"`
	Result    montyhall.StrategyResult `json:"result"`
}

// SQLiteStorage persists run history in SQLite (pure Go, no CGo).
type SQLiteStorage struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteStorage opens (or creates) the database at path and applies the schema.
func NewSQLiteStorage(path string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer; also keeps ":memory:" on one connection
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("store.NewSQLiteStorage: apply schema: %w", err)
	}
	return &SQLiteStorage{db: db, now: time.Now}, nil
}

// SaveComparison stores both strategy results under a new run id and returns it.
func (s *SQLiteStorage) SaveComparison(ctx context.Context, cmp montyhall.Comparison, seed *uint64) (string, error) {
	return s.save(ctx, cmp.Scenario, seed, cmp.Switch, cmp.Stay)
}

// SaveResult stores a single strategy result under a new run id and returns it.
func (s *SQLiteStorage) SaveResult(ctx context.Context, scenario string, res montyhall.StrategyResult, seed *uint64) (string, error) {
	return s.save(ctx, scenario, seed, res)
}

func (s *SQLiteStorage) save(ctx context.Context, scenario string, seed *uint64, results ...montyhall.StrategyResult) (string, error) {
	runID := uuid.New().String()
	now := s.now().UTC()

	var seedArg any
	if seed != nil {
		// SQLite integers are signed 64-bit; store the bit pattern
		seedArg = int64(*seed)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("store.save: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO runs (run_id, created_at, scenario, num_doors, strategy, wins, total_trials, seed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("store.save: prepare: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, runID, now, scenario, r.NumDoors, string(r.Strategy), r.Wins, r.TotalTrials, seedArg); err != nil {
			return "", fmt.Errorf("store.save: insert %s: %w", r.Strategy, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("store.save: commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent rows, newest first. limit <= 0 means 50.
func (s *SQLiteStorage) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, created_at, scenario, num_doors, strategy, wins, total_trials, seed
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store.ListRuns: query: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r        Run
			strategy string
			seed     sql.NullInt64
		)
		if err := rows.Scan(&r.RunID, &r.CreatedAt, &r.Scenario, &r.Result.NumDoors, &strategy,
			&r.Result.Wins, &r.Result.TotalTrials, &seed); err != nil {
			return nil, fmt.Errorf("store.ListRuns: scan: %w", err)
		}
		r.Result.Strategy = montyhall.Strategy(strategy)
		if seed.Valid {
			v := uint64(seed.Int64)
			r.Seed = &v
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store.ListRuns: rows: %w", err)
	}
	return out, nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
