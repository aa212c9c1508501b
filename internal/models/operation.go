package models

import "fmt"

// OperationKind identifies the type of a planned file operation.
type OperationKind string

const (
	// OpMove moves a file into a destination directory
	OpMove OperationKind = "move"
	// OpRename renames a file in place
	OpRename OperationKind = "rename"
	// OpTag applies a Finder tag (color and/or label) to a file
	OpTag OperationKind = "tag"
	// OpMarkDuplicate marks a non-keeper duplicate (realized as a tag or a
	// move to a review directory, depending on the rule's handling)
	OpMarkDuplicate OperationKind = "duplicate"
)

// TagSpec describes a Finder tag to apply.
type TagSpec struct {
	// Color is the tag color name (gray, red, orange, yellow, green, blue, purple)
	Color string `yaml:"color"`
	// Label is the tag label text
	Label string `yaml:"label"`
}

// Operation is a planned, not-yet-applied unit of work. Operations are pure
// value objects; building one has no side effect.
type Operation struct {
	// Kind is the operation type
	Kind OperationKind
	// Source is the absolute path the operation reads from. For operations
	// chained after a Move of the same file this is the post-move path.
	Source string
	// Dest is the destination path for Move/Rename and duplicate move_to
	// handling; empty for pure Tag operations.
	Dest string
	// Tag is the tag to apply for Tag operations and tag-based duplicate
	// handling; nil otherwise.
	Tag *TagSpec
	// Rule is the name of the rule that produced the operation
	Rule string
	// CreateDest indicates the executor may create the destination directory
	CreateDest bool
}

// Preview returns a human-readable one-line description of the operation.
func (o Operation) Preview() string {
	switch o.Kind {
	case OpMove:
		return fmt.Sprintf("move %s -> %s", o.Source, o.Dest)
	case OpRename:
		return fmt.Sprintf("rename %s -> %s", o.Source, o.Dest)
	case OpTag:
		return fmt.Sprintf("tag %s [%s]", o.Source, o.tagString())
	case OpMarkDuplicate:
		if o.Dest != "" {
			return fmt.Sprintf("duplicate %s -> %s", o.Source, o.Dest)
		}
		return fmt.Sprintf("duplicate %s [%s]", o.Source, o.tagString())
	default:
		return fmt.Sprintf("%s %s", o.Kind, o.Source)
	}
}

func (o Operation) tagString() string {
	if o.Tag == nil {
		return ""
	}
	if o.Tag.Color != "" && o.Tag.Label != "" {
		return o.Tag.Color + ":" + o.Tag.Label
	}
	return o.Tag.Color + o.Tag.Label
}

// Summary holds per-kind operation counts for one plan.
type Summary struct {
	Total      int
	Moves      int
	Renames    int
	Tags       int
	Duplicates int
}

// Plan is an ordered, immutable sequence of Operations produced for one scan
// pass. It is consumed exactly once by the executor and then discarded.
type Plan struct {
	// Operations in execution order
	Operations []Operation
	// Counts summarizes the plan per operation kind
	Counts Summary
}

// NewPlan builds a Plan from an ordered operation list, computing counts.
func NewPlan(ops []Operation) *Plan {
	p := &Plan{Operations: ops}
	p.Counts.Total = len(ops)
	for _, op := range ops {
		switch op.Kind {
		case OpMove:
			p.Counts.Moves++
		case OpRename:
			p.Counts.Renames++
		case OpTag:
			p.Counts.Tags++
		case OpMarkDuplicate:
			p.Counts.Duplicates++
		}
	}
	return p
}

// Empty reports whether the plan contains no operations.
func (p *Plan) Empty() bool {
	return len(p.Operations) == 0
}
