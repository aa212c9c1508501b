package executor

import "fmt"

// ConflictError reports a destination that is already occupied at execute
// time. The operation is skipped, never retried and never overwrites the
// existing file.
type ConflictError struct {
	// Source is the path the operation would have moved or renamed
	Source string
	// Dest is the occupied destination path
	Dest string
}

// Error implements the error interface for ConflictError.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("destination %s already exists (from %s)", e.Dest, e.Source)
}

// TagError reports a tag adapter failure. Tag application is best-effort:
// a TagError is recorded in the report and never aborts the remaining plan.
type TagError struct {
	// Path is the file the tag should have been applied to
	Path string
	// Err is the underlying adapter error
	Err error
}

// Error implements the error interface for TagError.
func (e *TagError) Error() string {
	return fmt.Sprintf("failed to tag %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for error wrapping support.
func (e *TagError) Unwrap() error {
	return e.Err
}
