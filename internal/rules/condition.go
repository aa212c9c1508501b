package rules

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/harrison/organizer/internal/models"
)

// compiledCondition holds the prepared matchers for one condition.
type compiledCondition struct {
	pathPrefix string
	extensions map[string]bool
	patternRe  *regexp.Regexp // nil when the pattern is a literal substring
	patternLit string
	nameRe     *regexp.Regexp
}

// Compile prepares the condition's matchers. It must be called once before
// Matches. A malformed name_pattern yields a ConditionError; the pattern
// field never fails because an uncompilable pattern degrades to a literal
// substring match.
func (c *Condition) Compile(ruleName string) error {
	cc := &compiledCondition{}

	if c.Path != "" {
		cc.pathPrefix = ExpandPath(c.Path)
	}

	if len(c.Extension) > 0 {
		cc.extensions = make(map[string]bool, len(c.Extension))
		for _, ext := range c.Extension {
			cc.extensions[strings.ToLower(strings.TrimPrefix(ext, "."))] = true
		}
	}

	if c.Pattern != "" {
		if re, err := regexp.Compile(c.Pattern); err == nil {
			cc.patternRe = re
		} else {
			cc.patternLit = c.Pattern
		}
	}

	if c.NamePattern != "" {
		re, err := regexp.Compile(c.NamePattern)
		if err != nil {
			return &ConditionError{Rule: ruleName, Field: "name_pattern", Err: err}
		}
		cc.nameRe = re
	}

	c.compiled = cc
	return nil
}

// Matches evaluates the condition against a file record as a logical AND of
// all present fields. It panics if Compile was not called first.
func (c *Condition) Matches(r *models.FileRecord, now time.Time) bool {
	cc := c.compiled
	if cc == nil {
		panic("rules: condition used before Compile")
	}

	if cc.pathPrefix != "" && !pathContains(cc.pathPrefix, r.Path) {
		return false
	}

	if cc.extensions != nil && !cc.extensions[r.Ext] {
		return false
	}

	if cc.patternRe != nil && !cc.patternRe.MatchString(r.Name()) {
		return false
	}
	if cc.patternRe == nil && cc.patternLit != "" && !strings.Contains(r.Name(), cc.patternLit) {
		return false
	}

	if cc.nameRe != nil && !cc.nameRe.MatchString(r.Name()) {
		return false
	}

	if c.SizeGt > 0 && r.Size <= int64(c.SizeGt) {
		return false
	}
	if c.SizeLt > 0 && r.Size >= int64(c.SizeLt) {
		return false
	}

	if c.AgeGtDays > 0 && r.AgeDays(now) <= c.AgeGtDays {
		return false
	}

	return true
}

// FirstMatch returns the first enabled rule in declaration order whose
// condition matches the record. This first-match-wins policy decides which
// action applies when several rules in the same category could match.
func FirstMatch(set []Rule, r *models.FileRecord, now time.Time) (*Rule, bool) {
	for i := range set {
		if !set[i].IsEnabled() {
			continue
		}
		if set[i].Condition.Matches(r, now) {
			return &set[i], true
		}
	}
	return nil, false
}

// ExpandPath expands a leading tilde to the user's home directory and
// returns an absolute, cleaned path.
func ExpandPath(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = filepath.Join(home, strings.TrimPrefix(p, "~"))
		}
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

// pathContains reports whether path is dir itself or lives under dir,
// respecting path separator boundaries.
func pathContains(dir, path string) bool {
	dir = filepath.Clean(dir)
	path = filepath.Clean(path)
	if path == dir {
		return true
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}
