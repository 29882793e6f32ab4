package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/yashiro/sitecheck/internal/model"
)

// ErrNotEnoughRuns is returned by Compare when fewer than two runs are
// recorded.
var ErrNotEnoughRuns = errors.New("need at least two recorded runs to compare")

// dbFileName is the database file inside the history directory.
const dbFileName = "sitecheck.db"

// globalFile is the pseudo file path under which site-level issues are
// stored.
const globalFile = ""

// globalCheckKey groups site-level issues in the issues table.
const globalCheckKey = "site"

// DB stores validation runs in SQLite.
// One connection, WAL journal; SQLite only supports a single writer and
// the walker is single-threaded anyway.
type DB struct {
	db     *sql.DB
	dbPath string
}

// Options configures database opening.
type Options struct {
	// CreateIfNotExists creates the directory and database file.
	CreateIfNotExists bool
}

// DefaultOptions returns the options used by `sitecheck check --save`.
func DefaultOptions() Options {
	return Options{CreateIfNotExists: true}
}

// Open opens or creates the history database in the given directory.
func Open(dir string, opts Options) (*DB, error) {
	dbPath := filepath.Join(dir, dbFileName)

	var dsn string
	if opts.CreateIfNotExists {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
		dsn = dbPath + "?mode=rwc"
	} else {
		if _, err := os.Stat(dbPath); err != nil {
			return nil, fmt.Errorf("history database not found at %s: %w", dbPath, err)
		}
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	h := &DB{db: db, dbPath: dbPath}
	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if err := h.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return h, nil
}

// Close closes the database connection.
func (h *DB) Close() error {
	return h.db.Close()
}

// createTables creates the schema if it does not exist.
func (h *DB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site_dir TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		total_files INTEGER NOT NULL,
		files_with_issues INTEGER NOT NULL,
		total_issues INTEGER NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_recorded ON runs(recorded_at);

	CREATE TABLE IF NOT EXISTS issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL,
		file TEXT NOT NULL,
		check_key TEXT NOT NULL,
		issue TEXT NOT NULL,
		FOREIGN KEY(run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_issues_run ON issues(run_id);
	`
	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one recorded validation run.
type Run struct {
	ID              int64
	SiteDir         string
	StartedAt       time.Time
	TotalFiles      int
	FilesWithIssues int
	TotalIssues     int
}

// Issue is one stored violation.
type Issue struct {
	File     string
	CheckKey string
	Issue    string
}

// SaveRun records a finished run and its issues, returning the run id.
func (h *DB) SaveRun(ctx context.Context, report *model.SiteReport) (int64, error) {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO runs (site_dir, started_at, total_files, files_with_issues, total_issues)
		VALUES (?, ?, ?, ?, ?)`,
		report.SiteDir,
		report.StartedAt.UTC(),
		report.TotalFiles,
		report.FilesWithIssues(),
		report.TotalIssues(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO issues (run_id, file, check_key, issue) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare issue insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range report.Files {
		for _, r := range f.Results {
			if !r.Failed() {
				continue
			}
			if r.IsFlag {
				if _, err := stmt.ExecContext(ctx, runID, f.Path, r.Key, r.Key); err != nil {
					return 0, fmt.Errorf("insert flag issue: %w", err)
				}
				continue
			}
			for _, issue := range r.Issues {
				if _, err := stmt.ExecContext(ctx, runID, f.Path, r.Key, issue); err != nil {
					return 0, fmt.Errorf("insert issue: %w", err)
				}
			}
		}
	}
	for _, issue := range report.GlobalIssues {
		if _, err := stmt.ExecContext(ctx, runID, globalFile, globalCheckKey, issue); err != nil {
			return 0, fmt.Errorf("insert global issue: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit save: %w", err)
	}
	return runID, nil
}

// Runs returns the most recent runs, newest first.
func (h *DB) Runs(ctx context.Context, limit int) ([]Run, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT id, site_dir, started_at, total_files, files_with_issues, total_issues
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.SiteDir, &r.StartedAt, &r.TotalFiles, &r.FilesWithIssues, &r.TotalIssues); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunIssues returns all issues recorded for a run.
func (h *DB) RunIssues(ctx context.Context, runID int64) ([]Issue, error) {
	rows, err := h.db.QueryContext(ctx, `
		SELECT file, check_key, issue FROM issues WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("query issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var issues []Issue
	for rows.Next() {
		var i Issue
		if err := rows.Scan(&i.File, &i.CheckKey, &i.Issue); err != nil {
			return nil, fmt.Errorf("scan issue: %w", err)
		}
		issues = append(issues, i)
	}
	return issues, rows.Err()
}
