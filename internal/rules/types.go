// Package rules defines the declarative rule model (conditions and actions)
// and loads ordered rule sets from YAML files.
//
// Rules are grouped into four categories (move, rename, tag, duplicate), one
// YAML file per category. Within a category the declaration order defines
// matcher precedence: the first rule whose condition is fully satisfied wins
// and later rules in the same category are not consulted for that file.
// Different categories are independent and cumulative.
package rules

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/harrison/organizer/internal/models"
)

// Category identifies one rule set.
type Category string

const (
	// CategoryMove holds rules that relocate files
	CategoryMove Category = "move"
	// CategoryRename holds rules that rename files in place
	CategoryRename Category = "rename"
	// CategoryTag holds rules that only apply Finder tags
	CategoryTag Category = "tag"
	// CategoryDuplicate holds duplicate-detection rules
	CategoryDuplicate Category = "duplicate"
)

// Categories lists all rule categories in planning order.
var Categories = []Category{CategoryMove, CategoryRename, CategoryTag, CategoryDuplicate}

// ByteSize is a size in bytes parsed from either a YAML integer or a
// human-readable string such as "100MB". Units are binary (1MB = 1024*1024).
type ByteSize int64

// UnmarshalYAML implements yaml.Unmarshaler for ByteSize.
func (b *ByteSize) UnmarshalYAML(value *yaml.Node) error {
	var raw any
	if err := value.Decode(&raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case int:
		*b = ByteSize(v)
	case int64:
		*b = ByteSize(v)
	case uint64:
		*b = ByteSize(v)
	case float64:
		*b = ByteSize(v)
	case string:
		n, err := ParseSize(v)
		if err != nil {
			return err
		}
		*b = ByteSize(n)
	default:
		return fmt.Errorf("invalid size value %v", raw)
	}
	return nil
}

// Condition is the predicate of a rule. All present fields must hold for the
// condition to match (logical AND); absent fields are not constraints.
type Condition struct {
	// Path requires the file to live under this (tilde-expanded) directory
	Path string `yaml:"path"`
	// Extension requires case-insensitive membership in this set
	Extension []string `yaml:"extension"`
	// Pattern matches the raw filename. It is treated as a regular
	// expression first; if it does not compile it falls back to a literal
	// substring match.
	Pattern string `yaml:"pattern"`
	// NamePattern is a strict regular expression over the filename.
	// A malformed NamePattern disables the rule for the run.
	NamePattern string `yaml:"name_pattern"`
	// SizeGt requires the file size to strictly exceed this many bytes
	SizeGt ByteSize `yaml:"size_gt"`
	// SizeLt requires the file size to be strictly below this many bytes
	SizeLt ByteSize `yaml:"size_lt"`
	// AgeGtDays requires the file age in whole days to strictly exceed this
	AgeGtDays int `yaml:"age_gt_days"`

	compiled *compiledCondition
}

// Action is the effect attached to a matched rule. Which fields are relevant
// depends on the rule's category.
type Action struct {
	// Move is the destination directory for move rules
	Move string `yaml:"move"`
	// CreateIfMissing allows the executor to create the destination directory
	CreateIfMissing bool `yaml:"create_if_missing"`
	// Replace substitutes duplication decorations like " (1)" in the stem.
	// A pointer so that an explicit empty string (strip the decoration) is
	// distinguishable from an absent field.
	Replace *string `yaml:"replace"`
	// Prefix is prepended to the stem, joined with Separator
	Prefix string `yaml:"prefix"`
	// Suffix is appended to the stem, joined with Separator
	Suffix string `yaml:"suffix"`
	// Separator joins prefix/stem/suffix parts (default "-")
	Separator string `yaml:"separator"`
	// Clean strips control characters and collapses whitespace in the stem
	Clean bool `yaml:"clean"`
	// Tag is applied to the file (for tag rules, or chained after a move)
	Tag *models.TagSpec `yaml:"tag"`
}

// Rule is one named entry of a rule set.
type Rule struct {
	// Name identifies the rule in previews and reports
	Name string `yaml:"name"`
	// Condition decides whether the rule applies to a file
	Condition Condition `yaml:"condition"`
	// Action is performed when the condition matches
	Action Action `yaml:"action"`
	// Enabled defaults to true when absent
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the rule participates in matching.
func (r *Rule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// KeepPolicy selects the keeper of a duplicate group.
type KeepPolicy string

const (
	// KeepNewest keeps the member with the latest modification time
	KeepNewest KeepPolicy = "newest"
	// KeepOldest keeps the member with the earliest modification time
	KeepOldest KeepPolicy = "oldest"
	// KeepFirst keeps the member first encountered in the scan
	KeepFirst KeepPolicy = "first"
)

// DuplicateAction configures what happens to non-keeper duplicates.
type DuplicateAction struct {
	// Keep selects the keeper (newest, oldest, first; default newest)
	Keep KeepPolicy `yaml:"keep"`
	// Tag marks non-keepers with a Finder tag when set
	Tag *models.TagSpec `yaml:"tag"`
	// MoveTo relocates non-keepers into a review directory when set
	MoveTo string `yaml:"move_to"`
}

// DuplicateRule configures one duplicate-detection pass.
type DuplicateRule struct {
	// Name identifies the rule in previews and reports
	Name string `yaml:"name"`
	// CheckBy selects the equivalence key: "content" (default) or "name"
	CheckBy string `yaml:"check_by"`
	// Action configures keeper selection and non-keeper handling
	Action DuplicateAction `yaml:"action"`
	// Enabled defaults to true when absent
	Enabled *bool `yaml:"enabled"`
}

// IsEnabled reports whether the rule participates in duplicate detection.
func (r *DuplicateRule) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Set holds all loaded rule sets for one run, in declaration order.
type Set struct {
	Move      []Rule
	Rename    []Rule
	Tag       []Rule
	Duplicate []DuplicateRule
}

// Empty reports whether no category contains an enabled rule.
func (s *Set) Empty() bool {
	return len(s.Move) == 0 && len(s.Rename) == 0 && len(s.Tag) == 0 && len(s.Duplicate) == 0
}
