// Package scanner walks configured root directories and produces FileRecord
// snapshots for the downstream matching and planning stages.
//
// Roots are scanned concurrently, bounded by a configurable limit, and the
// results are merged in completion order. Traversal order is therefore not
// stable across runs; downstream stages only use it for the documented
// tie-breaking rules, never for correctness.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/harrison/organizer/internal/models"
)

// ScanError reports an unreadable scan root. It is fatal for that root but
// not for the run; other roots are still scanned.
type ScanError struct {
	// Root is the root directory that could not be scanned
	Root string
	// Err is the underlying filesystem error
	Err error
}

// Error implements the error interface for ScanError.
func (e *ScanError) Error() string {
	return fmt.Sprintf("failed to scan root %s: %v", e.Root, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *ScanError) Unwrap() error {
	return e.Err
}

// Options configures a scan pass.
type Options struct {
	// Exclude is a list of glob patterns matched against base names.
	// Matching files and directories are skipped.
	Exclude []string
	// MaxConcurrency bounds the number of roots scanned in parallel
	// (0 = scan roots sequentially).
	MaxConcurrency int
	// IncludeHidden includes dotfiles; hidden directories are always skipped.
	IncludeHidden bool
}

// Result contains the merged output of one scan pass.
type Result struct {
	// Records are the scanned files in completion order, ScanIndex assigned
	Records []*models.FileRecord
	// Errors holds *ScanError values for unreadable roots and plain warnings
	// for subdirectories that were skipped
	Errors []error
}

// Scanner produces FileRecords from a set of root directories.
type Scanner struct {
	opts Options
}

// New creates a Scanner with the given options.
func New(opts Options) *Scanner {
	return &Scanner{opts: opts}
}

// Scan walks every root depth-first and returns the merged records. Symbolic
// links are never followed (prevents cycles) and directories are never
// emitted. An unreadable root contributes a *ScanError to Result.Errors; an
// unreadable subdirectory contributes a warning and is skipped. Scan only
// returns a non-nil error when the context is cancelled.
func (s *Scanner) Scan(ctx context.Context, roots []string) (*Result, error) {
	result := &Result{}

	limit := s.opts.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	appendRecord := func(path string, info fs.FileInfo) {
		mu.Lock()
		defer mu.Unlock()
		result.Records = append(result.Records,
			models.NewFileRecord(path, info.Size(), info.ModTime(), len(result.Records)))
	}
	appendErr := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		result.Errors = append(result.Errors, err)
	}

	for _, root := range roots {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		wg.Add(1)
		go func(root string) {
			defer wg.Done()
			defer func() { <-sem }()
			s.scanRoot(ctx, root, appendRecord, appendErr)
		}(root)
	}

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// scanRoot walks a single root, reporting records and warnings through the
// supplied callbacks.
func (s *Scanner) scanRoot(ctx context.Context, root string, emit func(string, fs.FileInfo), warn func(error)) {
	info, err := os.Stat(root)
	if err != nil {
		warn(&ScanError{Root: root, Err: err})
		return
	}

	// A root may be a single file
	if !info.IsDir() {
		if info.Mode().IsRegular() && s.includeName(info.Name()) {
			if abs, err := filepath.Abs(root); err == nil {
				emit(abs, info)
			}
		}
		return
	}

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			if path == root {
				return &ScanError{Root: root, Err: err}
			}
			warn(fmt.Errorf("skipping %s: %w", path, err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path == root {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") || s.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		// Regular files only: symlinks, sockets and devices are skipped
		if !d.Type().IsRegular() {
			return nil
		}
		if !s.includeName(d.Name()) {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			warn(fmt.Errorf("skipping %s: %w", path, err))
			return nil
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			warn(fmt.Errorf("failed to resolve path %s: %w", path, err))
			return nil
		}

		emit(abs, fi)
		return nil
	})

	if walkErr != nil && ctx.Err() == nil {
		if scanErr, ok := walkErr.(*ScanError); ok {
			warn(scanErr)
		} else {
			warn(&ScanError{Root: root, Err: walkErr})
		}
	}
}

// includeName applies hidden-file and exclusion filters to a base name.
func (s *Scanner) includeName(name string) bool {
	if !s.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}
	return !s.excluded(name)
}

// excluded reports whether a base name matches an exclusion pattern.
func (s *Scanner) excluded(name string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}
