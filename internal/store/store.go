// Package store provides SQLite-backed persistence for fillback run
// history and the per-module snapshot of each run.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Run status values.
const (
	StatusSucceeded = "succeeded"
	StatusDeclined  = "declined"
	StatusFailed    = "failed"
)

// Run is one recorded fillback invocation.
type Run struct {
	ID          string
	ChangeID    string
	Strategy    string
	SourcePath  string
	OutputDir   string
	Status      string
	Error       string
	Modules     int
	Skipped     int
	ParseErrors int
	Files       int
	StartedAt   time.Time
	Duration    time.Duration
}

// ModuleSnapshot records one analyzed module as of a run.
type ModuleSnapshot struct {
	Name     string
	Language string
	FilePath string
	Public   int
	Private  int
	Imports  int
}

// Store wraps a SQLite database for run history.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) a SQLite database at dbPath and ensures
// all required tables exist. Use ":memory:" for an in-memory database.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// Each connection to ":memory:" is its own database.
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func createTables(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id           TEXT PRIMARY KEY,
			change_id    TEXT NOT NULL,
			strategy     TEXT NOT NULL,
			source_path  TEXT NOT NULL,
			output_dir   TEXT NOT NULL,
			status       TEXT NOT NULL,
			error        TEXT NOT NULL DEFAULT '',
			modules      INTEGER NOT NULL DEFAULT 0,
			skipped      INTEGER NOT NULL DEFAULT 0,
			parse_errors INTEGER NOT NULL DEFAULT 0,
			files        INTEGER NOT NULL DEFAULT 0,
			started_at   INTEGER NOT NULL,
			duration_ms  INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS run_modules (
			run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			name      TEXT NOT NULL,
			language  TEXT NOT NULL,
			file_path TEXT NOT NULL,
			public    INTEGER NOT NULL DEFAULT 0,
			private   INTEGER NOT NULL DEFAULT 0,
			imports   INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, file_path)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// RecordRun persists run and its module snapshots in one transaction. An
// empty ID is replaced with a fresh UUID; the stored ID is returned.
func (s *Store) RecordRun(run Run, modules []ModuleSnapshot) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO runs (id, change_id, strategy, source_path, output_dir, status, error,
		  modules, skipped, parse_errors, files, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ChangeID, run.Strategy, run.SourcePath, run.OutputDir, run.Status, run.Error,
		run.Modules, run.Skipped, run.ParseErrors, run.Files,
		run.StartedAt.UnixMilli(), run.Duration.Milliseconds(),
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM run_modules WHERE run_id = ?`, run.ID); err != nil {
		return "", fmt.Errorf("record run modules: %w", err)
	}
	for _, m := range modules {
		_, err := tx.Exec(
			`INSERT OR REPLACE INTO run_modules (run_id, name, language, file_path, public, private, imports)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.ID, m.Name, m.Language, m.FilePath, m.Public, m.Private, m.Imports,
		)
		if err != nil {
			return "", fmt.Errorf("record run module %s: %w", m.FilePath, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return run.ID, nil
}

const runColumns = `id, change_id, strategy, source_path, output_dir, status, error,
	modules, skipped, parse_errors, files, started_at, duration_ms`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var r Run
	var startedMs, durationMs int64
	err := row.Scan(&r.ID, &r.ChangeID, &r.Strategy, &r.SourcePath, &r.OutputDir, &r.Status, &r.Error,
		&r.Modules, &r.Skipped, &r.ParseErrors, &r.Files, &startedMs, &durationMs)
	if err != nil {
		return Run{}, err
	}
	r.StartedAt = time.UnixMilli(startedMs)
	r.Duration = time.Duration(durationMs) * time.Millisecond
	return r, nil
}

// ListRuns returns the most recent runs first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(
		`SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run by ID. Returns nil if the run is not found.
func (s *Store) GetRun(id string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return &r, nil
}

// ListRunModules returns the module snapshots of a run, sorted by name
// and then path.
func (s *Store) ListRunModules(runID string) ([]ModuleSnapshot, error) {
	rows, err := s.db.Query(
		`SELECT name, language, file_path, public, private, imports
		 FROM run_modules WHERE run_id = ? ORDER BY name, file_path`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list run modules: %w", err)
	}
	defer rows.Close()

	var mods []ModuleSnapshot
	for rows.Next() {
		var m ModuleSnapshot
		if err := rows.Scan(&m.Name, &m.Language, &m.FilePath, &m.Public, &m.Private, &m.Imports); err != nil {
			return nil, fmt.Errorf("scan run module: %w", err)
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// LastRunForChange returns the most recent run recorded under changeID.
// Returns nil if there is none.
func (s *Store) LastRunForChange(changeID string) (*Run, error) {
	r, err := scanRun(s.db.QueryRow(
		`SELECT `+runColumns+` FROM runs WHERE change_id = ?
		 ORDER BY started_at DESC, rowid DESC LIMIT 1`, changeID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last run for change: %w", err)
	}
	return &r, nil
}

// DeleteRun removes a run and its module snapshots.
func (s *Store) DeleteRun(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM run_modules WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("delete run modules: %w", err)
	}
	if _, err := tx.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	return tx.Commit()
}
