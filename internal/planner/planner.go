// Package planner combines matcher results and duplicate groups into an
// ordered, immutable plan of operations.
//
// Planning is single-threaded: operations are emitted in a deterministic
// order (per-record in scan order, duplicate handling last) so that chained
// move-then-tag pairs stay adjacent and destination-conflict counters are
// assigned deterministically.
package planner

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/harrison/organizer/internal/dedup"
	"github.com/harrison/organizer/internal/models"
	"github.com/harrison/organizer/internal/rules"
)

// maxConflictSuffix bounds destination disambiguation attempts. Exhausting it
// means the rule set funnels an absurd number of files onto one name, which
// is treated as an internal invariant violation rather than a per-file issue.
const maxConflictSuffix = 1000

// BuildError reports an internal invariant violation during planning. It is
// fatal: the plan is aborted before any mutation can occur.
type BuildError struct {
	// Msg describes the violated invariant
	Msg string
}

// Error implements the error interface for BuildError.
func (e *BuildError) Error() string {
	return "plan build failed: " + e.Msg
}

// TagLister reports the tag labels currently applied to a path. It is
// consulted during planning so that already-tagged files plan no operation,
// keeping repeated runs idempotent.
type TagLister interface {
	List(ctx context.Context, path string) ([]string, error)
}

// Builder turns one scan pass plus the loaded rule set into a plan.
type Builder struct {
	rules   *rules.Set
	grouper *dedup.Grouper
	lister  TagLister
	now     time.Time
}

// New creates a Builder. lister may be nil, in which case tag operations are
// always planned. now anchors age calculations for the whole pass.
func New(set *rules.Set, grouper *dedup.Grouper, lister TagLister, now time.Time) *Builder {
	return &Builder{rules: set, grouper: grouper, lister: lister, now: now}
}

// Build consumes the scan output once and emits the plan. The returned
// warnings are non-fatal (unreadable duplicate candidates, tag listing
// failures); a non-nil error is a *BuildError and means no plan exists.
func (b *Builder) Build(ctx context.Context, records []*models.FileRecord) (*models.Plan, []error, error) {
	var (
		ops      []models.Operation
		warnings []error
	)

	// Destination paths claimed by earlier operations in this plan. A later
	// operation targeting a claimed path gets a counter suffix; nothing is
	// ever dropped because of a collision.
	claimed := make(map[string]bool)

	// Current path of each record after operations planned so far. Chained
	// operations (tag after move, duplicate handling after move or rename)
	// always reference the post-move path.
	current := make(map[*models.FileRecord]string)
	for _, r := range records {
		current[r] = r.Path
	}

	for _, r := range records {
		if rule, ok := rules.FirstMatch(b.rules.Move, r, b.now); ok {
			op, dest, err := b.planMove(r, current[r], rule, claimed)
			if err != nil {
				return nil, warnings, err
			}
			if op != nil {
				ops = append(ops, *op)
				current[r] = dest
				if rule.Action.Tag != nil {
					// Chained tag references the post-move path
					ops = append(ops, models.Operation{
						Kind:   models.OpTag,
						Source: dest,
						Tag:    rule.Action.Tag,
						Rule:   rule.Name,
					})
				}
			}
		}

		if rule, ok := rules.FirstMatch(b.rules.Rename, r, b.now); ok {
			op, dest, err := b.planRename(current[r], rule, claimed)
			if err != nil {
				return nil, warnings, err
			}
			if op != nil {
				ops = append(ops, *op)
				current[r] = dest
			}
		}

		if rule, ok := rules.FirstMatch(b.rules.Tag, r, b.now); ok {
			if rule.Action.Tag == nil {
				warnings = append(warnings, fmt.Errorf("rule %q matched %s but has no tag action", rule.Name, r.Path))
			} else if applied, err := b.tagApplied(ctx, current[r], rule.Action.Tag); err != nil {
				warnings = append(warnings, err)
			} else if !applied {
				ops = append(ops, models.Operation{
					Kind:   models.OpTag,
					Source: current[r],
					Tag:    rule.Action.Tag,
					Rule:   rule.Name,
				})
			}
		}
	}

	dupOps, dupWarns, err := b.planDuplicates(ctx, records, current, claimed)
	warnings = append(warnings, dupWarns...)
	if err != nil {
		return nil, warnings, err
	}
	ops = append(ops, dupOps...)

	return models.NewPlan(ops), warnings, nil
}

// planMove emits a move operation unless the file already lives in the
// destination directory (a no-op move plans nothing, which keeps repeated
// runs idempotent). Returns the claimed destination path.
func (b *Builder) planMove(r *models.FileRecord, source string, rule *rules.Rule, claimed map[string]bool) (*models.Operation, string, error) {
	if rule.Action.Move == "" {
		return nil, "", &BuildError{Msg: fmt.Sprintf("rule %q has no move destination", rule.Name)}
	}
	destDir := rules.ExpandPath(rule.Action.Move)
	if filepath.Dir(source) == destDir {
		return nil, "", nil
	}

	dest, err := claim(filepath.Join(destDir, filepath.Base(source)), claimed)
	if err != nil {
		return nil, "", err
	}

	return &models.Operation{
		Kind:       models.OpMove,
		Source:     source,
		Dest:       dest,
		Rule:       rule.Name,
		CreateDest: rule.Action.CreateIfMissing,
	}, dest, nil
}

// planRename emits a rename operation, or nothing when the name already
// matches the target convention.
func (b *Builder) planRename(source string, rule *rules.Rule, claimed map[string]bool) (*models.Operation, string, error) {
	name := filepath.Base(source)
	newName, err := ApplyRename(name, &rule.Action)
	if err != nil {
		return nil, "", &BuildError{Msg: fmt.Sprintf("rule %q on %s: %v", rule.Name, source, err)}
	}
	if newName == name {
		return nil, "", nil
	}

	dest, err := claim(filepath.Join(filepath.Dir(source), newName), claimed)
	if err != nil {
		return nil, "", err
	}

	return &models.Operation{
		Kind:   models.OpRename,
		Source: source,
		Dest:   dest,
		Rule:   rule.Name,
	}, dest, nil
}

// planDuplicates applies the first enabled duplicate rule. The keeper of each
// group receives no operation; every other member is marked via tag or moved
// to the review directory, referencing post-move paths planned earlier.
func (b *Builder) planDuplicates(ctx context.Context, records []*models.FileRecord, current map[*models.FileRecord]string, claimed map[string]bool) ([]models.Operation, []error, error) {
	if b.grouper == nil {
		return nil, nil, nil
	}
	var rule *rules.DuplicateRule
	for i := range b.rules.Duplicate {
		if b.rules.Duplicate[i].IsEnabled() {
			rule = &b.rules.Duplicate[i]
			break
		}
	}
	if rule == nil {
		return nil, nil, nil
	}

	groups, warnings, err := b.grouper.Find(ctx, records, rule)
	if err != nil {
		return nil, warnings, err
	}

	var ops []models.Operation
	for _, group := range groups {
		for _, dup := range group.Duplicates {
			source := current[dup]

			if rule.Action.MoveTo != "" {
				destDir := rules.ExpandPath(rule.Action.MoveTo)
				dest, err := claim(filepath.Join(destDir, filepath.Base(source)), claimed)
				if err != nil {
					return nil, warnings, err
				}
				ops = append(ops, models.Operation{
					Kind:       models.OpMarkDuplicate,
					Source:     source,
					Dest:       dest,
					Rule:       rule.Name,
					CreateDest: true,
				})
				continue
			}

			tag := rule.Action.Tag
			if tag == nil {
				tag = &models.TagSpec{Label: "duplicate"}
			}
			applied, err := b.tagApplied(ctx, source, tag)
			if err != nil {
				warnings = append(warnings, err)
			}
			if applied {
				continue
			}
			ops = append(ops, models.Operation{
				Kind:   models.OpMarkDuplicate,
				Source: source,
				Tag:    tag,
				Rule:   rule.Name,
			})
		}
	}
	return ops, warnings, nil
}

// tagApplied checks the tag store for an already-present tag. Without a
// lister the tag is assumed absent.
func (b *Builder) tagApplied(ctx context.Context, path string, tag *models.TagSpec) (bool, error) {
	if b.lister == nil {
		return false, nil
	}
	labels, err := b.lister.List(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to list tags on %s: %w", path, err)
	}
	want := tag.Label
	if want == "" {
		want = tag.Color
	}
	for _, label := range labels {
		if strings.EqualFold(label, want) {
			return true, nil
		}
	}
	return false, nil
}

// claim reserves a destination path, appending "_1", "_2", ... before the
// extension when the path was already claimed by an earlier operation.
func claim(dest string, claimed map[string]bool) (string, error) {
	if !claimed[dest] {
		claimed[dest] = true
		return dest, nil
	}

	ext := filepath.Ext(dest)
	stem := strings.TrimSuffix(dest, ext)
	for n := 1; n <= maxConflictSuffix; n++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, n, ext)
		if !claimed[candidate] {
			claimed[candidate] = true
			return candidate, nil
		}
	}
	return "", &BuildError{Msg: fmt.Sprintf("no free destination for %s after %d attempts", dest, maxConflictSuffix)}
}

// Duplication decorations appended by browsers and copy tools. Anchored to
// the end of the stem: a parenthesized number in the middle of a name is part
// of the name, not a decoration.
var (
	decorationRe = regexp.MustCompile(`\s*(\(\d+\)|（\d+）|\[\d+\])\s*$`)
	controlRe    = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f™©®]`)
	spaceRunRe   = regexp.MustCompile(`\s+`)
)

// ApplyRename computes the new filename for a rename action. The extension
// is preserved; only the stem is rewritten. Returns the input unchanged when
// every transformation is a no-op, and an error when the result would be an
// empty filename.
func ApplyRename(name string, action *rules.Action) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	if action.Replace != nil {
		stem = decorationRe.ReplaceAllString(stem, *action.Replace)
	}

	if action.Clean {
		stem = controlRe.ReplaceAllString(stem, "")
		stem = spaceRunRe.ReplaceAllString(stem, " ")
		stem = strings.TrimSpace(stem)
	}

	sep := action.Separator
	if sep == "" {
		sep = "-"
	}
	// A stem already carrying the prefix or suffix is left alone, so renaming
	// an already-renamed file is a no-op
	if action.Prefix != "" && !strings.HasPrefix(stem, action.Prefix+sep) {
		stem = action.Prefix + sep + stem
	}
	if action.Suffix != "" && !strings.HasSuffix(stem, sep+action.Suffix) {
		stem = stem + sep + action.Suffix
	}

	// Collapse separator runs introduced by composing transformations
	sepRun := regexp.MustCompile(regexp.QuoteMeta(sep) + `+`)
	stem = sepRun.ReplaceAllString(stem, sep)
	stem = strings.Trim(stem, sep)

	if stem == "" {
		return "", fmt.Errorf("rename of %q produces an empty filename", name)
	}
	return stem + ext, nil
}
