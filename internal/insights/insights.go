// Package insights gathers directory statistics for the AI collaborator that
// proposes organization rules. This package only prepares data; the analysis
// itself happens outside the engine.
package insights

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/harrison/organizer/internal/rules"
)

// largeFileThreshold marks files worth calling out individually.
const largeFileThreshold = 50 * 1024 * 1024

// Age bucket boundaries in days.
var ageBuckets = []struct {
	Label   string
	MaxDays int
}{
	{"this week", 7},
	{"this month", 30},
	{"this quarter", 90},
	{"older", -1},
}

// FileStat describes one file in the scanned directory.
type FileStat struct {
	Name string
	Size int64
}

// ExtCount is one extension histogram entry.
type ExtCount struct {
	Ext   string
	Count int
}

// FolderCount is one immediate subdirectory with its direct file count.
type FolderCount struct {
	Name  string
	Count int
}

// AgeCount is one age-bucket histogram entry.
type AgeCount struct {
	Label string
	Count int
}

// Summary holds the statistics of one directory (top level only).
type Summary struct {
	Path         string
	TotalFiles   int
	TotalFolders int
	TotalSize    int64
	ByExtension  []ExtCount
	ByAge        []AgeCount
	TopFiles     []FileStat
	LargeFiles   []FileStat
	Folders      []FolderCount
}

// Analyze scans the top level of dir and returns its summary. Unreadable
// entries are skipped silently, matching the tool's preview-first posture.
func Analyze(dir string) (*Summary, error) {
	dir = rules.ExpandPath(dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	summary := &Summary{Path: dir}
	extCounts := make(map[string]int)
	ageCounts := make([]int, len(ageBuckets))
	now := time.Now()

	for _, entry := range entries {
		if entry.IsDir() {
			summary.TotalFolders++
			count := 0
			if subEntries, err := os.ReadDir(filepath.Join(dir, entry.Name())); err == nil {
				for _, sub := range subEntries {
					if !sub.IsDir() {
						count++
					}
				}
			}
			summary.Folders = append(summary.Folders, FolderCount{Name: entry.Name(), Count: count})
			continue
		}

		info, err := entry.Info()
		if err != nil {
			continue
		}
		summary.TotalFiles++
		summary.TotalSize += info.Size()
		ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(entry.Name()), "."))
		extCounts[ext]++

		stat := FileStat{Name: entry.Name(), Size: info.Size()}
		summary.TopFiles = append(summary.TopFiles, stat)
		if info.Size() > largeFileThreshold {
			summary.LargeFiles = append(summary.LargeFiles, stat)
		}

		ageDays := int(now.Sub(info.ModTime()).Hours() / 24)
		for i, bucket := range ageBuckets {
			if bucket.MaxDays < 0 || ageDays < bucket.MaxDays {
				ageCounts[i]++
				break
			}
		}
	}

	for i, bucket := range ageBuckets {
		if ageCounts[i] > 0 {
			summary.ByAge = append(summary.ByAge, AgeCount{Label: bucket.Label, Count: ageCounts[i]})
		}
	}

	for ext, count := range extCounts {
		summary.ByExtension = append(summary.ByExtension, ExtCount{Ext: ext, Count: count})
	}
	sort.Slice(summary.ByExtension, func(i, j int) bool {
		if summary.ByExtension[i].Count != summary.ByExtension[j].Count {
			return summary.ByExtension[i].Count > summary.ByExtension[j].Count
		}
		return summary.ByExtension[i].Ext < summary.ByExtension[j].Ext
	})
	sort.Slice(summary.TopFiles, func(i, j int) bool {
		return summary.TopFiles[i].Size > summary.TopFiles[j].Size
	})
	if len(summary.TopFiles) > 20 {
		summary.TopFiles = summary.TopFiles[:20]
	}
	sort.Slice(summary.Folders, func(i, j int) bool {
		return summary.Folders[i].Count > summary.Folders[j].Count
	})

	return summary, nil
}

// AnalysisPrompt renders the summary as a structured prompt for the rule
// suggestion collaborator.
func AnalysisPrompt(s *Summary) string {
	var sb strings.Builder

	sb.WriteString("## Directory analysis task\n\n")
	sb.WriteString("Analyze this directory and suggest file organization rules.\n\n")
	sb.WriteString("### Directory\n")
	fmt.Fprintf(&sb, "- Path: %s\n", s.Path)
	fmt.Fprintf(&sb, "- Files: %d\n", s.TotalFiles)
	fmt.Fprintf(&sb, "- Folders: %d\n", s.TotalFolders)
	fmt.Fprintf(&sb, "- Total size: %s\n", humanize.IBytes(uint64(s.TotalSize)))

	sb.WriteString("\n### By extension\n")
	for i, ec := range s.ByExtension {
		if i == 15 {
			break
		}
		name := "." + ec.Ext
		if ec.Ext == "" {
			name = "(none)"
		}
		fmt.Fprintf(&sb, "  - %s: %d\n", name, ec.Count)
	}

	if len(s.ByAge) > 0 {
		sb.WriteString("\n### By age\n")
		for _, ac := range s.ByAge {
			fmt.Fprintf(&sb, "  - %s: %d\n", ac.Label, ac.Count)
		}
	}

	if len(s.Folders) > 0 {
		sb.WriteString("\n### Subdirectories\n")
		for i, fc := range s.Folders {
			if i == 10 {
				break
			}
			fmt.Fprintf(&sb, "  - %s: %d files\n", fc.Name, fc.Count)
		}
	}

	sb.WriteString("\n### Largest files\n")
	for i, f := range s.TopFiles {
		if i == 10 {
			break
		}
		fmt.Fprintf(&sb, "  - %s (%s)\n", f.Name, humanize.IBytes(uint64(f.Size)))
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString("Suggest move/tag rules in this YAML shape:\n\n")
	sb.WriteString("```yaml\nrules:\n  - name: \"Spreadsheets\"\n    condition:\n      path: \"~/Downloads\"\n      extension: [\"xlsx\", \"xls\"]\n    action:\n      move: \"~/Documents/Spreadsheets\"\n      create_if_missing: true\n```\n\n")
	sb.WriteString("Give the rules directly, ordered by priority.\n")
	return sb.String()
}

// Render formats the summary for direct display to the user.
func Render(s *Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Path: %s\n", s.Path)
	fmt.Fprintf(&sb, "Files: %d (%s)\n", s.TotalFiles, humanize.IBytes(uint64(s.TotalSize)))

	if len(s.ByExtension) > 0 {
		sb.WriteString("\nFile types:\n")
		for i, ec := range s.ByExtension {
			if i == 10 {
				break
			}
			name := "." + ec.Ext
			if ec.Ext == "" {
				name = "(none)"
			}
			fmt.Fprintf(&sb, "  %s: %d\n", name, ec.Count)
		}
	}

	if len(s.ByAge) > 0 {
		sb.WriteString("\nBy age:\n")
		for _, ac := range s.ByAge {
			fmt.Fprintf(&sb, "  %s: %d\n", ac.Label, ac.Count)
		}
	}

	if len(s.LargeFiles) > 0 {
		sb.WriteString("\nLarge files (>50MiB):\n")
		for i, f := range s.LargeFiles {
			if i == 10 {
				break
			}
			fmt.Fprintf(&sb, "  - %s (%s)\n", f.Name, humanize.IBytes(uint64(f.Size)))
		}
	}

	return sb.String()
}
