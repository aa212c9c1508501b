// Package executor applies an immutable plan in dry-run or live mode,
// producing an ordered report of per-operation outcomes.
//
// Execution is strictly sequential in plan order: this preserves the
// move-then-tag chaining guarantee and deterministic conflict handling.
// Failures never abort the remaining batch; partial completion is an
// accepted outcome and is always fully reported.
package executor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/harrison/organizer/internal/models"
	"github.com/harrison/organizer/internal/tags"
)

// DefaultTagTimeout bounds a single tag adapter call when the caller does
// not configure one.
const DefaultTagTimeout = 10 * time.Second

// Executor consumes plans. The zero value is not usable; construct with New.
type Executor struct {
	tags       tags.Adapter
	tagTimeout time.Duration
}

// New creates an Executor. adapter may be nil when no tag store is
// available; tag operations are then reported as skipped. tagTimeout bounds
// each adapter call (0 = DefaultTagTimeout).
func New(adapter tags.Adapter, tagTimeout time.Duration) *Executor {
	if tagTimeout <= 0 {
		tagTimeout = DefaultTagTimeout
	}
	return &Executor{tags: adapter, tagTimeout: tagTimeout}
}

// DryRun validates every operation's preconditions without touching the
// filesystem and reports would-apply or would-fail per operation.
func (e *Executor) DryRun(ctx context.Context, plan *models.Plan) *models.Report {
	return e.run(ctx, plan, true)
}

// Execute applies the plan in order, one operation at a time. Cancellation
// takes effect between operations: everything before the cancellation point
// is committed and reported, everything after is reported as skipped.
func (e *Executor) Execute(ctx context.Context, plan *models.Plan) *models.Report {
	return e.run(ctx, plan, false)
}

func (e *Executor) run(ctx context.Context, plan *models.Plan, dryRun bool) *models.Report {
	report := &models.Report{
		DryRun:  dryRun,
		Started: time.Now(),
		Results: make([]models.OperationResult, 0, len(plan.Operations)),
	}

	cancelled := false
	for _, op := range plan.Operations {
		if !cancelled && ctx.Err() != nil {
			cancelled = true
		}
		if cancelled {
			report.Results = append(report.Results, result(op, models.OutcomeSkipped, "cancelled"))
			continue
		}

		var res models.OperationResult
		if dryRun {
			res = e.validate(op)
		} else {
			res = e.apply(ctx, op)
		}
		report.Results = append(report.Results, res)
	}

	report.Finished = time.Now()
	return report
}

// validate checks one operation's preconditions without side effects.
func (e *Executor) validate(op models.Operation) models.OperationResult {
	if _, err := os.Lstat(op.Source); err != nil {
		return result(op, models.OutcomeWouldFail, fmt.Sprintf("source not accessible: %v", err))
	}

	if isTransfer(op) {
		if _, err := os.Lstat(op.Dest); err == nil {
			conflict := &ConflictError{Source: op.Source, Dest: op.Dest}
			return result(op, models.OutcomeWouldFail, conflict.Error())
		}
		destDir := filepath.Dir(op.Dest)
		if _, err := os.Stat(destDir); err != nil {
			if !os.IsNotExist(err) {
				return result(op, models.OutcomeWouldFail, fmt.Sprintf("destination directory not accessible: %v", err))
			}
			if !op.CreateDest {
				return result(op, models.OutcomeWouldFail, fmt.Sprintf("destination directory %s does not exist", destDir))
			}
		}
		return result(op, models.OutcomeWouldApply, "")
	}

	// Tag operation
	if e.tags == nil {
		return result(op, models.OutcomeSkipped, "no tag adapter")
	}
	return result(op, models.OutcomeWouldApply, "")
}

// apply performs one operation against the filesystem or tag store.
func (e *Executor) apply(ctx context.Context, op models.Operation) models.OperationResult {
	if isTransfer(op) {
		if err := e.transfer(op); err != nil {
			// An occupied destination skips the operation; it is not an
			// execution failure and never overwrites the existing file
			var conflict *ConflictError
			if errors.As(err, &conflict) {
				return result(op, models.OutcomeSkipped, err.Error())
			}
			return result(op, models.OutcomeFailed, err.Error())
		}
		return result(op, models.OutcomeApplied, "")
	}
	return e.applyTag(ctx, op)
}

// transfer moves or renames a file. An occupied destination yields a
// ConflictError; existing files are never silently clobbered.
func (e *Executor) transfer(op models.Operation) error {
	if _, err := os.Lstat(op.Source); err != nil {
		return fmt.Errorf("source not accessible: %w", err)
	}
	if _, err := os.Lstat(op.Dest); err == nil {
		return &ConflictError{Source: op.Source, Dest: op.Dest}
	}

	destDir := filepath.Dir(op.Dest)
	if _, err := os.Stat(destDir); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("destination directory not accessible: %w", err)
		}
		if !op.CreateDest {
			return fmt.Errorf("destination directory %s does not exist", destDir)
		}
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return fmt.Errorf("failed to create destination directory: %w", err)
		}
	}

	if err := os.Rename(op.Source, op.Dest); err != nil {
		// Rename cannot cross filesystems; fall back to copy and remove
		if errors.Is(err, syscall.EXDEV) {
			return copyAndRemove(op.Source, op.Dest)
		}
		return fmt.Errorf("failed to move %s: %w", op.Source, err)
	}
	return nil
}

// applyTag applies a tag through the adapter, bounded by the tag timeout.
// Adapter failures surface as TagError in the report and never abort the
// remaining plan.
func (e *Executor) applyTag(ctx context.Context, op models.Operation) models.OperationResult {
	if e.tags == nil {
		return result(op, models.OutcomeSkipped, "no tag adapter")
	}
	if op.Tag == nil {
		return result(op, models.OutcomeSkipped, "no tag to apply")
	}

	tagCtx, cancel := context.WithTimeout(ctx, e.tagTimeout)
	defer cancel()

	code := tags.ColorCode(op.Tag.Color)
	if err := e.tags.Apply(tagCtx, op.Source, code, op.Tag.Label); err != nil {
		tagErr := &TagError{Path: op.Source, Err: err}
		return result(op, models.OutcomeFailed, tagErr.Error())
	}
	return result(op, models.OutcomeApplied, "")
}

// isTransfer reports whether the operation relocates a file.
func isTransfer(op models.Operation) bool {
	switch op.Kind {
	case models.OpMove, models.OpRename:
		return true
	case models.OpMarkDuplicate:
		return op.Dest != ""
	default:
		return false
	}
}

func result(op models.Operation, outcome models.Outcome, reason string) models.OperationResult {
	return models.OperationResult{
		Operation: op,
		Outcome:   outcome,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// copyAndRemove emulates a move across filesystem boundaries.
func copyAndRemove(source, dest string) error {
	in, err := os.Open(source)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", source, err)
	}

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dest)
		return fmt.Errorf("failed to copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to finish copy to %s: %w", dest, err)
	}

	if err := os.Remove(source); err != nil {
		return fmt.Errorf("copied but failed to remove %s: %w", source, err)
	}
	return nil
}
