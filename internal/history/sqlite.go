package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id        TEXT PRIMARY KEY,
	created_at    TEXT NOT NULL,
	n             INTEGER NOT NULL,
	potentials    TEXT NOT NULL,
	classes       TEXT NOT NULL,
	tie_break     TEXT NOT NULL,
	energy        TEXT NOT NULL,
	removal_order TEXT NOT NULL,
	duration_ns   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// SQLiteStore keeps runs in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens a SQLite database and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// Single connection: writers are serialized and ":memory:" stays shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts a run.
func (s *SQLiteStore) Save(ctx context.Context, run Run) error {
	potJSON, err := json.Marshal(run.Potentials)
	if err != nil {
		return fmt.Errorf("marshal potentials: %w", err)
	}
	orderJSON, err := json.Marshal(run.Order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, created_at, n, potentials, classes, tie_break, energy, removal_order, duration_ns)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.N,
		string(potJSON),
		run.Classes,
		run.TieBreak,
		strconv.FormatUint(run.Energy, 10),
		string(orderJSON),
		run.Duration.Nanoseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", wrapSQLiteError(err))
	}
	return nil
}

const selectRuns = `SELECT run_id, created_at, n, potentials, classes, tie_break, energy, removal_order, duration_ns FROM runs`

// Get retrieves a run by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE run_id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// List returns runs newest first.
func (s *SQLiteStore) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		run        Run
		createdStr string
		potJSON    string
		energyStr  string
		orderJSON  string
		durationNs int64
	)
	err := sc.Scan(&run.ID, &createdStr, &run.N, &potJSON, &run.Classes, &run.TieBreak, &energyStr, &orderJSON, &durationNs)
	if err != nil {
		return Run{}, err
	}

	run.CreatedAt, err = time.Parse(timeLayout, createdStr)
	if err != nil {
		return Run{}, fmt.Errorf("parse created_at: %w", err)
	}
	if err := json.Unmarshal([]byte(potJSON), &run.Potentials); err != nil {
		return Run{}, fmt.Errorf("unmarshal potentials: %w", err)
	}
	if err := json.Unmarshal([]byte(orderJSON), &run.Order); err != nil {
		return Run{}, fmt.Errorf("unmarshal order: %w", err)
	}
	run.Energy, err = strconv.ParseUint(energyStr, 10, 64)
	if err != nil {
		return Run{}, fmt.Errorf("parse energy: %w", err)
	}
	run.Duration = time.Duration(durationNs)
	return run, nil
}
