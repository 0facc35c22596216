// Package history keeps a durable log of past editing runs in a local
// SQLite database, so users can review what was edited with which
// prompts after the session ends.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/manash/imgedit/internal/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at DATETIME NOT NULL,
    finished_at DATETIME,
    size TEXT NOT NULL,
    image_count INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS attempts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    image_index INTEGER NOT NULL,
    image_name TEXT NOT NULL,
    prompt TEXT NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT,
    timestamp DATETIME NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_attempts_run_id ON attempts(run_id);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
`

// Run is one recorded batch or single-image editing run.
type Run struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Size       string
	ImageCount int
}

// AttemptRow is one per-image outcome within a run.
type AttemptRow struct {
	RunID      string
	ImageIndex int
	ImageName  string
	Prompt     string
	Outcome    string
	Detail     string
	Timestamp  time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore() (*Store, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewStoreWithPath(filepath.Join(homeDir, ".imgedit", "history.db"))
}

func NewStoreWithPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a run and returns its generated ID.
func (s *Store) BeginRun(ctx context.Context, size string, imageCount int) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, size, image_count) VALUES (?, ?, ?, ?)`,
		id, s.now().UTC(), size, imageCount)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}
	return id, nil
}

// FinishRun stamps the run's completion time.
func (s *Store) FinishRun(ctx context.Context, runID string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ? WHERE id = ?`, s.now().UTC(), runID)
	return err
}

// RecordAttempts appends the per-image outcomes of a run.
func (s *Store) RecordAttempts(ctx context.Context, runID string, attempts []workflow.Attempt) error {
	for _, a := range attempts {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO attempts (run_id, image_index, image_name, prompt, outcome, detail, timestamp)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, a.Index, a.Name, a.Prompt, string(a.Outcome), a.Detail, s.now().UTC())
		if err != nil {
			return fmt.Errorf("failed to record attempt: %w", err)
		}
	}
	return nil
}

// ListRuns returns runs newest first, capped at limit (0 means all).
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, finished_at, size, image_count
	          FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var finished sql.NullTime
		if err := rows.Scan(&run.ID, &run.StartedAt, &finished, &run.Size, &run.ImageCount); err != nil {
			return nil, err
		}
		run.FinishedAt = finished.Time
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// ListAttempts returns a run's outcomes in batch order.
func (s *Store) ListAttempts(ctx context.Context, runID string) ([]AttemptRow, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, image_index, image_name, prompt, outcome, detail, timestamp
		 FROM attempts WHERE run_id = ? ORDER BY image_index ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []AttemptRow
	for rows.Next() {
		var row AttemptRow
		var detail sql.NullString
		if err := rows.Scan(&row.RunID, &row.ImageIndex, &row.ImageName, &row.Prompt,
			&row.Outcome, &detail, &row.Timestamp); err != nil {
			return nil, err
		}
		row.Detail = detail.String
		result = append(result, row)
	}
	return result, rows.Err()
}

// CountRuns returns the number of recorded runs.
func (s *Store) CountRuns(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&count)
	return count, err
}
