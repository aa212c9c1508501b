// Package tags provides the tag-store adapter consumed by the executor.
//
// The real implementation drives macOS Finder tags through the xattr and
// osascript command-line tools; a noop adapter stands in on platforms
// without a tag store. The engine only depends on the Adapter interface.
package tags

import (
	"context"
	"strings"
)

// Adapter is the capability the executor uses to read and write file tags.
// Implementations must honor context cancellation: a stalled call is bounded
// by the caller-supplied deadline.
type Adapter interface {
	// Apply adds a tag to the file. colorCode is a Finder label index in
	// 1..7 (0 = no color); label may be empty for a color-only tag.
	// Applying an already-present tag is a no-op.
	Apply(ctx context.Context, path string, colorCode int, label string) error
	// List returns the tag labels currently applied to the file.
	List(ctx context.Context, path string) ([]string, error)
}

// Finder label color indices. Index 0 means no color.
var colorIndex = map[string]int{
	"gray":   1,
	"grey":   1,
	"red":    2,
	"orange": 3,
	"yellow": 4,
	"green":  5,
	"blue":   6,
	"purple": 7,
}

// ColorCode maps a color name to its Finder label index. Unknown or empty
// names map to 0 (no color).
func ColorCode(name string) int {
	return colorIndex[strings.ToLower(strings.TrimSpace(name))]
}

// ValidColor reports whether name is a recognized tag color.
func ValidColor(name string) bool {
	return name == "" || ColorCode(name) != 0
}
