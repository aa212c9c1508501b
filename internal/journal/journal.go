// Package journal persists execution reports to a SQLite database, giving
// every live run an auditable record of what was planned and what happened.
//
// The engine itself never writes here; commands hand the finished report to
// the journal after execution.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/harrison/organizer/internal/models"
)

//go:embed schema.sql
var schemaSQL string

// Journal records execution reports in a SQLite database.
type Journal struct {
	db   *sql.DB
	path string
}

// RunSummary is one persisted run, as returned by Recent.
type RunSummary struct {
	ID       string
	Started  time.Time
	Finished time.Time
	DryRun   bool
	Total    int
	Applied  int
	Skipped  int
	Failed   int
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// busy_timeout first so the remaining pragmas wait on locks
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init journal schema: %w", err)
	}

	return &Journal{db: db, path: path}, nil
}

// Close closes the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record persists one report and returns the generated run id. The whole
// report is written in a single transaction.
func (j *Journal) Record(ctx context.Context, report *models.Report) (string, error) {
	runID := uuid.NewString()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	applied := report.CountByOutcome(models.OutcomeApplied) + report.CountByOutcome(models.OutcomeWouldApply)
	skipped := report.CountByOutcome(models.OutcomeSkipped)
	failed := report.CountByOutcome(models.OutcomeFailed) + report.CountByOutcome(models.OutcomeWouldFail)

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, finished_at, dry_run, total, applied, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, report.Started, report.Finished, report.DryRun,
		len(report.Results), applied, skipped, failed)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO operations (run_id, seq, kind, source, dest, tag_color, tag_label, rule, outcome, reason, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare operation insert: %w", err)
	}
	defer stmt.Close()

	for seq, res := range report.Results {
		op := res.Operation
		var color, label string
		if op.Tag != nil {
			color = op.Tag.Color
			label = op.Tag.Label
		}
		if _, err := stmt.ExecContext(ctx,
			runID, seq, string(op.Kind), op.Source, op.Dest, color, label,
			op.Rule, string(res.Outcome), res.Reason, res.Timestamp); err != nil {
			return "", fmt.Errorf("failed to record operation %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit journal transaction: %w", err)
	}
	return runID, nil
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, finished_at, dry_run, total, applied, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.Started, &r.Finished, &r.DryRun,
			&r.Total, &r.Applied, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
