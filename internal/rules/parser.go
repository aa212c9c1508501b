package rules

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/harrison/organizer/internal/tags"
)

// File names of the per-category rule files inside the rules directory.
var categoryFiles = map[Category]string{
	CategoryMove:      "move.yaml",
	CategoryRename:    "rename.yaml",
	CategoryTag:       "tag.yaml",
	CategoryDuplicate: "duplicate.yaml",
}

// ruleFile is the top-level document of a rule file.
type ruleFile struct {
	Rules []yaml.Node `yaml:"rules"`
}

// Parser loads rule sets from a rules directory.
type Parser struct {
	rulesDir string
}

// NewParser creates a Parser that reads rule files from rulesDir.
func NewParser(rulesDir string) *Parser {
	return &Parser{rulesDir: rulesDir}
}

// Load reads all four category files and returns the loaded rule set plus
// the list of non-fatal problems encountered. A missing category file yields
// an empty set for that category. Rules with malformed conditions are
// disabled (not returned) and reported via the problems slice; rules that
// fail to decode at all are likewise skipped and reported. Only an unreadable
// or syntactically invalid file is a hard error.
func (p *Parser) Load() (*Set, []error, error) {
	set := &Set{}
	var problems []error

	for _, cat := range Categories {
		nodes, err := p.readCategory(cat)
		if err != nil {
			return nil, nil, err
		}

		for i, node := range nodes {
			if cat == CategoryDuplicate {
				rule, err := decodeDuplicateRule(node, i)
				if err != nil {
					problems = append(problems, err)
					continue
				}
				if rule.IsEnabled() {
					set.Duplicate = append(set.Duplicate, *rule)
				}
				continue
			}

			rule, err := decodeRule(node, i)
			if err != nil {
				problems = append(problems, err)
				continue
			}
			if !rule.IsEnabled() {
				continue
			}
			if err := rule.Condition.Compile(rule.Name); err != nil {
				// Malformed pattern disables this rule for the run
				problems = append(problems, err)
				continue
			}
			switch cat {
			case CategoryMove:
				set.Move = append(set.Move, *rule)
			case CategoryRename:
				set.Rename = append(set.Rename, *rule)
			case CategoryTag:
				set.Tag = append(set.Tag, *rule)
			}
		}
	}

	return set, problems, nil
}

// readCategory parses one category file into its raw rule nodes.
// A missing file is not an error.
func (p *Parser) readCategory(cat Category) ([]yaml.Node, error) {
	path := filepath.Join(p.rulesDir, categoryFiles[cat])
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rule file %s: %w", path, err)
	}

	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse rule file %s: %w", path, err)
	}
	return doc.Rules, nil
}

func decodeRule(node yaml.Node, index int) (*Rule, error) {
	var rule Rule
	if err := node.Decode(&rule); err != nil {
		return nil, fmt.Errorf("rule #%d: %w", index+1, err)
	}
	if rule.Name == "" {
		rule.Name = fmt.Sprintf("rule #%d", index+1)
	}
	if rule.Action.Separator == "" {
		rule.Action.Separator = "-"
	}
	if rule.Action.Tag != nil && !tags.ValidColor(rule.Action.Tag.Color) {
		return nil, fmt.Errorf("rule %q: unknown tag color %q", rule.Name, rule.Action.Tag.Color)
	}
	return &rule, nil
}

func decodeDuplicateRule(node yaml.Node, index int) (*DuplicateRule, error) {
	var rule DuplicateRule
	if err := node.Decode(&rule); err != nil {
		return nil, fmt.Errorf("duplicate rule #%d: %w", index+1, err)
	}
	if rule.Name == "" {
		rule.Name = fmt.Sprintf("duplicate rule #%d", index+1)
	}
	if rule.CheckBy == "" {
		rule.CheckBy = "content"
	}
	if rule.CheckBy != "content" && rule.CheckBy != "name" {
		return nil, fmt.Errorf("duplicate rule %q: invalid check_by %q (want content or name)", rule.Name, rule.CheckBy)
	}
	if rule.Action.Keep == "" {
		rule.Action.Keep = KeepNewest
	}
	switch rule.Action.Keep {
	case KeepNewest, KeepOldest, KeepFirst:
	default:
		return nil, fmt.Errorf("duplicate rule %q: invalid keep %q (want newest, oldest or first)", rule.Name, rule.Action.Keep)
	}
	if rule.Action.Tag != nil && !tags.ValidColor(rule.Action.Tag.Color) {
		return nil, fmt.Errorf("duplicate rule %q: unknown tag color %q", rule.Name, rule.Action.Tag.Color)
	}
	return &rule, nil
}
