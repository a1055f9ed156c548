// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger keeps a SQLite history of batch runs and their per-file
// outcomes. The history is informational only; it is never consulted to
// skip files on a later run.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/jp2jpg/pkg/types"
)

// defaultLimit caps Runs when the caller passes a non-positive limit.
const defaultLimit = 20

// Ledger manages the history database.
type Ledger struct {
	db *sql.DB
}

// Run is one row of the runs table.
type Run struct {
	ID         int64
	Source     string
	Target     string
	Tool       string
	StartedAt  time.Time
	FinishedAt time.Time
	Converted  int
	Copied     int
	Failed     int
}

// Open opens or creates the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Ledger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			tool TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			converted INTEGER NOT NULL,
			copied INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS files (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			source_path TEXT NOT NULL,
			target_path TEXT NOT NULL,
			status INTEGER NOT NULL,
			severity TEXT,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_files_run_id ON files(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and all of its file outcomes in one transaction and
// returns the new run ID.
func (l *Ledger) Record(ctx context.Context, s types.RunSummary) (int64, error) {
	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (source, target, tool, started_at, finished_at, converted, copied, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Source, s.Target, s.Tool,
		s.StartedAt.UTC().Format(time.RFC3339Nano),
		s.FinishedAt.UTC().Format(time.RFC3339Nano),
		s.Converted, s.Copied, s.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO files (run_id, name, kind, source_path, target_path, status, severity, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing file insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range s.Outcomes {
		if _, err := stmt.ExecContext(ctx, runID, o.Name, string(o.Kind), o.SourcePath, o.TargetPath,
			o.Status, string(o.Severity), o.Error); err != nil {
			return 0, fmt.Errorf("inserting outcome %s: %w", o.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// Runs returns up to limit runs, newest first.
func (l *Ledger) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, source, target, tool, started_at, finished_at, converted, copied, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(&r.ID, &r.Source, &r.Target, &r.Tool, &started, &finished,
			&r.Converted, &r.Copied, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339Nano, finished)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the failed outcomes recorded for runID in insertion order.
func (l *Ledger) Failures(ctx context.Context, runID int64) ([]types.FileOutcome, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT name, kind, source_path, target_path, status, severity, error
		 FROM files WHERE run_id = ? AND severity != '' ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying failures: %w", err)
	}
	defer rows.Close()

	var out []types.FileOutcome
	for rows.Next() {
		var o types.FileOutcome
		var kind, severity string
		var errText sql.NullString
		if err := rows.Scan(&o.Name, &kind, &o.SourcePath, &o.TargetPath, &o.Status, &severity, &errText); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Kind = types.FileKind(kind)
		o.Severity = types.Severity(severity)
		o.Error = errText.String
		out = append(out, o)
	}
	return out, rows.Err()
}
