package tags

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// userTagsAttr is the extended attribute Finder stores its tags in.
const userTagsAttr = "com.apple.metadata:_kMDItemUserTags"

// FinderAdapter applies and reads macOS Finder tags. Tags are written as an
// XML property list of "name\ncolorIndex" strings via xattr; colors
// additionally fall back to setting the Finder label index via osascript so
// they render even when Spotlight has not reindexed the attribute.
type FinderAdapter struct{}

// NewFinderAdapter creates a FinderAdapter.
func NewFinderAdapter() *FinderAdapter {
	return &FinderAdapter{}
}

// Apply implements Adapter. Existing tags are preserved; the new tag is
// appended only when absent, so application is additive and idempotent.
func (a *FinderAdapter) Apply(ctx context.Context, path string, colorCode int, label string) error {
	entry := tagEntry(colorCode, label)
	if entry == "" {
		return nil
	}

	existing, err := a.list(ctx, path)
	if err != nil {
		// Unreadable or absent attribute: start from an empty tag list
		existing = nil
	}
	for _, tag := range existing {
		if strings.EqualFold(tag, entry) {
			return nil
		}
	}
	updated := append(existing, entry)

	if err := a.write(ctx, path, updated); err != nil {
		return err
	}

	if colorCode > 0 {
		// Best effort; the xattr write above already carries the color
		_ = a.setLabelIndex(ctx, path, colorCode)
	}
	return nil
}

// List implements Adapter, returning label names without color indices.
func (a *FinderAdapter) List(ctx context.Context, path string) ([]string, error) {
	entries, err := a.list(ctx, path)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(entries))
	for _, entry := range entries {
		name, _, _ := strings.Cut(entry, "\n")
		labels = append(labels, name)
	}
	return labels, nil
}

// tagEntry builds the Finder tag string "name\nindex".
func tagEntry(colorCode int, label string) string {
	name := label
	if name == "" {
		name = colorName(colorCode)
	}
	if name == "" {
		return ""
	}
	if colorCode > 0 {
		return name + "\n" + strconv.Itoa(colorCode)
	}
	return name
}

func colorName(code int) string {
	for name, idx := range colorIndex {
		if idx == code && name != "grey" {
			return name
		}
	}
	return ""
}

var plistStringRe = regexp.MustCompile(`(?s)<string>(.*?)</string>`)

// list reads the raw tag entries from the extended attribute. Attributes
// written by this adapter are XML plists; a binary plist written by Finder
// itself yields no entries, which callers treat as an empty tag list.
func (a *FinderAdapter) list(ctx context.Context, path string) ([]string, error) {
	out, err := exec.CommandContext(ctx, "xattr", "-p", userTagsAttr, path).Output()
	if err != nil {
		return nil, fmt.Errorf("xattr read failed: %w", err)
	}

	var entries []string
	for _, m := range plistStringRe.FindAllStringSubmatch(string(out), -1) {
		entries = append(entries, xmlUnescape(m[1]))
	}
	return entries, nil
}

// write stores the tag entries as an XML property list.
func (a *FinderAdapter) write(ctx context.Context, path string, entries []string) error {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">` + "\n")
	sb.WriteString("<plist version=\"1.0\">\n<array>\n")
	for _, entry := range entries {
		sb.WriteString("\t<string>" + xmlEscape(entry) + "</string>\n")
	}
	sb.WriteString("</array>\n</plist>\n")

	cmd := exec.CommandContext(ctx, "xattr", "-w", userTagsAttr, sb.String(), path)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("xattr write failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

// setLabelIndex sets the classic Finder label color through AppleScript.
func (a *FinderAdapter) setLabelIndex(ctx context.Context, path string, index int) error {
	script := fmt.Sprintf(`tell application "Finder"
	set theFile to POSIX file %q as alias
	set label index of theFile to %d
end tell`, path, index)
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript failed: %s: %w", strings.TrimSpace(string(out)), err)
	}
	return nil
}

var xmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
var xmlUnescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&amp;", "&")

func xmlEscape(s string) string   { return xmlEscaper.Replace(s) }
func xmlUnescape(s string) string { return xmlUnescaper.Replace(s) }
