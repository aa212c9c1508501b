package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/home/u/.organizer")

	if !cfg.DryRun {
		t.Error("DryRun should default to true")
	}
	if cfg.MaxConcurrency != 4 {
		t.Errorf("MaxConcurrency = %d, want 4", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.TagTimeout != 10*time.Second {
		t.Errorf("TagTimeout = %v, want 10s", cfg.TagTimeout)
	}
	if cfg.RulesDir != "/home/u/.organizer/rules" {
		t.Errorf("RulesDir = %q", cfg.RulesDir)
	}
	if cfg.JournalPath != "/home/u/.organizer/journal.db" {
		t.Errorf("JournalPath = %q", cfg.JournalPath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.DryRun || cfg.MaxConcurrency != 4 {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	content := `scan_paths:
  - ~/Downloads
  - ~/Desktop
exclude:
  - "*.tmp"
dry_run: false
max_concurrency: 8
log_level: debug
tag_timeout: 30s
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.ScanPaths) != 2 {
		t.Errorf("ScanPaths = %v", cfg.ScanPaths)
	}
	if cfg.DryRun {
		t.Error("DryRun should be overridden to false")
	}
	if cfg.MaxConcurrency != 8 {
		t.Errorf("MaxConcurrency = %d, want 8", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.TagTimeout != 30*time.Second {
		t.Errorf("TagTimeout = %v, want 30s", cfg.TagTimeout)
	}
	if cfg.RulesDir != filepath.Join(dir, "rules") {
		t.Errorf("unset rules_dir should keep default, got %q", cfg.RulesDir)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("scan_paths: [unclosed"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestLoadInvalidTagTimeout(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("tag_timeout: soon\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid tag_timeout")
	}
}

func TestMergeWithFlags(t *testing.T) {
	cfg := DefaultConfig(t.TempDir())
	cfg.ScanPaths = []string{"/from/file"}

	dryRun := false
	maxConcurrency := 2
	logLevel := "warn"
	cfg.MergeWithFlags([]string{"/from/flag"}, &dryRun, &maxConcurrency, &logLevel)

	if len(cfg.ScanPaths) != 1 || cfg.ScanPaths[0] != "/from/flag" {
		t.Errorf("ScanPaths = %v, want flag value", cfg.ScanPaths)
	}
	if cfg.DryRun {
		t.Error("DryRun should be overridden to false")
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", cfg.MaxConcurrency)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}

	// Nil flags leave everything alone
	cfg.MergeWithFlags(nil, nil, nil, nil)
	if cfg.LogLevel != "warn" || cfg.MaxConcurrency != 2 {
		t.Error("nil flags must not reset values")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"negative concurrency", func(c *Config) { c.MaxConcurrency = -1 }, true},
		{"bad log level", func(c *Config) { c.LogLevel = "verbose" }, true},
		{"negative tag timeout", func(c *Config) { c.TagTimeout = -time.Second }, true},
		{"zero concurrency", func(c *Config) { c.MaxConcurrency = 0 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig(t.TempDir())
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaths(t *testing.T) {
	cfg := DefaultConfig("/x/.organizer")
	if cfg.File() != "/x/.organizer/config.yaml" {
		t.Errorf("File() = %q", cfg.File())
	}
	if cfg.LockPath() != "/x/.organizer/run.lock" {
		t.Errorf("LockPath() = %q", cfg.LockPath())
	}
	if cfg.Dir() != "/x/.organizer" {
		t.Errorf("Dir() = %q", cfg.Dir())
	}
}
