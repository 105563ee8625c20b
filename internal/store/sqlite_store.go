package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	strategy     TEXT NOT NULL,
	objective    TEXT NOT NULL,
	evaluations  INTEGER NOT NULL,
	best_score   REAL NOT NULL,
	created_at   TEXT NOT NULL,
	payload      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS runs_created_at ON runs(created_at);
`

// Fixed-width timestamps keep created_at lexically sortable.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store on a single SQLite database.
// The full run is kept as a JSON payload; summary columns serve listings.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at path and runs migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
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

// SaveRun inserts or replaces a run.
func (s *SQLiteStore) SaveRun(run *Run) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}
	if err := run.Validate(); err != nil {
		return err
	}

	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT INTO runs (run_id, strategy, objective, evaluations, best_score, created_at, payload)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			strategy = excluded.strategy,
			objective = excluded.objective,
			evaluations = excluded.evaluations,
			best_score = excluded.best_score,
			created_at = excluded.created_at,
			payload = excluded.payload`,
		run.ID, run.Config.Strategy, run.Config.Objective, run.Evaluations(), run.BestScore,
		run.Timestamp.UTC().Format(sqliteTimeFormat), string(payload),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	slog.Debug("Run saved", "run_id", run.ID, "store", "sqlite")
	return nil
}

// LoadRun retrieves a run by ID.
func (s *SQLiteStore) LoadRun(id string) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("runID cannot be empty")
	}

	var payload string
	err := s.db.QueryRow(`SELECT payload FROM runs WHERE run_id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{RunID: id}
	} else if err != nil {
		return nil, fmt.Errorf("query run: %w", err)
	}

	var run Run
	if err := json.Unmarshal([]byte(payload), &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// ListRuns returns metadata for all runs, oldest first.
func (s *SQLiteStore) ListRuns() ([]RunInfo, error) {
	rows, err := s.db.Query(`SELECT payload FROM runs ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	infos := []RunInfo{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		var run Run
		if err := json.Unmarshal([]byte(payload), &run); err != nil {
			slog.Warn("Skipping unreadable run", "error", err)
			continue
		}
		infos = append(infos, run.ToInfo())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return infos, nil
}

// DeleteRun removes a run by ID.
func (s *SQLiteStore) DeleteRun(id string) error {
	if id == "" {
		return fmt.Errorf("runID cannot be empty")
	}

	res, err := s.db.Exec(`DELETE FROM runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return &NotFoundError{RunID: id}
	}

	slog.Debug("Run deleted", "run_id", id, "store", "sqlite")
	return nil
}
