// Package config loads the organizer configuration from
// ~/.organizer/config.yaml. Configuration is read once per invocation and
// immutable for the run; CLI flags override file values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultDirName is the config directory under the user's home.
const DefaultDirName = ".organizer"

// Config represents organizer configuration options.
type Config struct {
	// ScanPaths are the root directories scanned each run
	ScanPaths []string `yaml:"scan_paths"`

	// Exclude are glob patterns (matched against base names) to skip
	Exclude []string `yaml:"exclude"`

	// DryRun previews operations without executing them
	DryRun bool `yaml:"dry_run"`

	// MaxConcurrency bounds concurrent scanning and hashing (0 = sequential)
	MaxConcurrency int `yaml:"max_concurrency"`

	// LogLevel sets console verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// TagTimeout bounds a single tag adapter call
	TagTimeout time.Duration `yaml:"-"`

	// RulesDir is the directory holding the per-category rule files
	RulesDir string `yaml:"rules_dir"`

	// JournalPath is the SQLite execution journal location
	JournalPath string `yaml:"journal_path"`

	configDir string
}

// DefaultConfig returns a Config with sensible defaults rooted in dir.
func DefaultConfig(dir string) *Config {
	return &Config{
		ScanPaths:      nil,
		DryRun:         true,
		MaxConcurrency: 4,
		LogLevel:       "info",
		TagTimeout:     10 * time.Second,
		RulesDir:       filepath.Join(dir, "rules"),
		JournalPath:    filepath.Join(dir, "journal.db"),
		configDir:      dir,
	}
}

// DefaultDir returns ~/.organizer (falling back to a relative .organizer
// when the home directory cannot be resolved).
func DefaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(home, DefaultDirName)
}

// Dir returns the config directory this configuration is rooted in.
func (c *Config) Dir() string {
	return c.configDir
}

// File returns the path of the config file inside the config directory.
func (c *Config) File() string {
	return filepath.Join(c.configDir, "config.yaml")
}

// LockPath returns the run lock file path.
func (c *Config) LockPath() string {
	return filepath.Join(c.configDir, "run.lock")
}

// Load reads configuration from dir/config.yaml. A missing file returns
// defaults without error; a malformed file is an error.
func Load(dir string) (*Config, error) {
	cfg := DefaultConfig(dir)
	path := cfg.File()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Durations arrive as strings in YAML
	type yamlConfig struct {
		ScanPaths      []string `yaml:"scan_paths"`
		Exclude        []string `yaml:"exclude"`
		DryRun         *bool    `yaml:"dry_run"`
		MaxConcurrency *int     `yaml:"max_concurrency"`
		LogLevel       string   `yaml:"log_level"`
		TagTimeout     string   `yaml:"tag_timeout"`
		RulesDir       string   `yaml:"rules_dir"`
		JournalPath    string   `yaml:"journal_path"`
	}

	var raw yamlConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if len(raw.ScanPaths) > 0 {
		cfg.ScanPaths = raw.ScanPaths
	}
	if len(raw.Exclude) > 0 {
		cfg.Exclude = raw.Exclude
	}
	if raw.DryRun != nil {
		cfg.DryRun = *raw.DryRun
	}
	if raw.MaxConcurrency != nil {
		cfg.MaxConcurrency = *raw.MaxConcurrency
	}
	if raw.LogLevel != "" {
		cfg.LogLevel = raw.LogLevel
	}
	if raw.TagTimeout != "" {
		timeout, err := time.ParseDuration(raw.TagTimeout)
		if err != nil {
			return nil, fmt.Errorf("invalid tag_timeout %q: %w", raw.TagTimeout, err)
		}
		cfg.TagTimeout = timeout
	}
	if raw.RulesDir != "" {
		cfg.RulesDir = raw.RulesDir
	}
	if raw.JournalPath != "" {
		cfg.JournalPath = raw.JournalPath
	}

	return cfg, nil
}

// MergeWithFlags applies CLI flag values. Non-nil values override the
// configuration loaded from file.
func (c *Config) MergeWithFlags(scanPaths []string, dryRun *bool, maxConcurrency *int, logLevel *string) {
	if len(scanPaths) > 0 {
		c.ScanPaths = scanPaths
	}
	if dryRun != nil {
		c.DryRun = *dryRun
	}
	if maxConcurrency != nil {
		c.MaxConcurrency = *maxConcurrency
	}
	if logLevel != nil && *logLevel != "" {
		c.LogLevel = *logLevel
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	if c.MaxConcurrency < 0 {
		return fmt.Errorf("max_concurrency must be >= 0, got %d", c.MaxConcurrency)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	if c.TagTimeout < 0 {
		return fmt.Errorf("tag_timeout must be >= 0, got %v", c.TagTimeout)
	}
	return nil
}
