// Package dedup clusters scanned file records into duplicate groups by
// content digest or normalized filename and selects the keeper of each group.
package dedup

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/harrison/organizer/internal/models"
	"github.com/harrison/organizer/internal/rules"
)

// Group is a set of records sharing an equivalence key. The keeper is the
// member retained; all others are duplicate candidates.
type Group struct {
	// Key is the shared content digest or normalized name
	Key string
	// Keeper is the member selected by the rule's keep policy
	Keeper *models.FileRecord
	// Duplicates are the non-keeper members, in scan order
	Duplicates []*models.FileRecord
}

// Grouper finds duplicate groups among file records.
type Grouper struct {
	// MaxConcurrency bounds concurrent content hashing (0 = sequential)
	MaxConcurrency int
}

// Decoration suffixes appended by browsers and copy tools: " (1)", "（2）",
// "[3]". Anchored to the end of the stem so a numbered part mid-name is
// never treated as a copy decoration.
var decorationRe = regexp.MustCompile(`\s*(\(\d+\)|（\d+）|\[\d+\])\s*$`)

// Find clusters records per the rule's check_by key, discards singleton
// groups, and selects keepers per the rule's keep policy. Records whose
// content cannot be read are skipped with a warning. Group order follows the
// scan order of each group's first member.
func (g *Grouper) Find(ctx context.Context, records []*models.FileRecord, rule *rules.DuplicateRule) ([]Group, []error, error) {
	var (
		keyed map[string][]*models.FileRecord
		warns []error
		err   error
	)

	if rule.CheckBy == "name" {
		keyed = groupByName(records)
	} else {
		keyed, warns, err = g.groupByContent(ctx, records)
		if err != nil {
			return nil, warns, err
		}
	}

	var groups []Group
	for key, members := range keyed {
		if len(members) < 2 {
			continue
		}
		keeper := selectKeeper(members, rule.Action.Keep)
		group := Group{Key: key, Keeper: keeper}
		for _, m := range members {
			if m != keeper {
				group.Duplicates = append(group.Duplicates, m)
			}
		}
		groups = append(groups, group)
	}

	// Map iteration order is random; restore scan order for determinism
	sortGroups(groups)
	return groups, warns, nil
}

// groupByName keys records by normalized filename.
func groupByName(records []*models.FileRecord) map[string][]*models.FileRecord {
	keyed := make(map[string][]*models.FileRecord)
	for _, r := range records {
		key := NormalizeName(r.Name())
		keyed[key] = append(keyed[key], r)
	}
	return keyed
}

// groupByContent keys records by full content digest. Only files sharing a
// size with at least one other file are hashed; a unique size cannot have a
// content duplicate. Hashing fans out across workers, and the per-record
// digest cache guarantees no file is hashed twice.
func (g *Grouper) groupByContent(ctx context.Context, records []*models.FileRecord) (map[string][]*models.FileRecord, []error, error) {
	bySize := make(map[int64][]*models.FileRecord)
	for _, r := range records {
		bySize[r.Size] = append(bySize[r.Size], r)
	}

	var candidates []*models.FileRecord
	for _, same := range bySize {
		if len(same) > 1 {
			candidates = append(candidates, same...)
		}
	}

	limit := g.MaxConcurrency
	if limit <= 0 {
		limit = 1
	}
	sem := make(chan struct{}, limit)

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		warns []error
	)
	keyed := make(map[string][]*models.FileRecord)

	for _, r := range candidates {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return nil, warns, ctx.Err()
		}

		wg.Add(1)
		go func(r *models.FileRecord) {
			defer wg.Done()
			defer func() { <-sem }()

			digest, err := r.Digest()
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				warns = append(warns, fmt.Errorf("skipping %s: %w", r.Path, err))
				return
			}
			keyed[digest] = append(keyed[digest], r)
		}(r)
	}

	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, warns, err
	}

	// Hashing completes in arbitrary order; restore scan order per group
	for _, members := range keyed {
		sortByScanIndex(members)
	}
	return keyed, warns, nil
}

// NormalizeName case-folds a filename and strips trailing numeric-suffix
// decorations from the stem, so "Report (1).PDF" and "report.pdf" share a key.
func NormalizeName(name string) string {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	stem = decorationRe.ReplaceAllString(stem, "")
	return strings.ToLower(strings.TrimSpace(stem) + ext)
}

// selectKeeper applies the keep policy. Timestamp ties break toward the
// first-encountered record in scan order.
func selectKeeper(members []*models.FileRecord, keep rules.KeepPolicy) *models.FileRecord {
	keeper := members[0]
	switch keep {
	case rules.KeepNewest:
		for _, m := range members[1:] {
			if m.ModTime.After(keeper.ModTime) {
				keeper = m
			}
		}
	case rules.KeepOldest:
		for _, m := range members[1:] {
			if m.ModTime.Before(keeper.ModTime) {
				keeper = m
			}
		}
	case rules.KeepFirst:
		for _, m := range members {
			if m.ScanIndex < keeper.ScanIndex {
				keeper = m
			}
		}
	}
	return keeper
}

func sortByScanIndex(members []*models.FileRecord) {
	sort.Slice(members, func(i, j int) bool {
		return members[i].ScanIndex < members[j].ScanIndex
	})
}

func sortGroups(groups []Group) {
	first := func(g Group) int {
		idx := g.Keeper.ScanIndex
		for _, d := range g.Duplicates {
			if d.ScanIndex < idx {
				idx = d.ScanIndex
			}
		}
		return idx
	}
	sort.Slice(groups, func(i, j int) bool {
		return first(groups[i]) < first(groups[j])
	})
}
