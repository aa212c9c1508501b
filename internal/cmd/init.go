package cmd

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/config"
	"github.com/harrison/organizer/internal/filelock"
	"github.com/harrison/organizer/internal/logger"
)

const defaultConfigYAML = `# Organizer configuration.
# Roots scanned by "organizer run" (tilde is expanded).
scan_paths:
  - ~/Downloads

# Glob patterns (matched against base names) to skip while scanning.
exclude: []

# Preview by default; "organizer run --execute" overrides this.
dry_run: true

# Concurrent scanning and content hashing limit.
max_concurrency: 4

# Console verbosity: debug, info, warn, error.
log_level: info
`

const exampleMoveYAML = `# Move rules. First matching rule wins; edit to taste.
rules:
  - name: "Archive installers"
    enabled: false
    condition:
      path: "~/Downloads"
      extension: ["dmg", "pkg"]
      age_gt_days: 30
    action:
      move: "~/Downloads/Installers"
      create_if_missing: true
      tag:
        color: gray
        label: installer
`

const exampleDuplicateYAML = `# Duplicate detection. check_by: content compares full file contents.
rules:
  - name: "Tag duplicate downloads"
    enabled: false
    check_by: content
    action:
      keep: newest
      tag:
        color: red
        label: duplicate
`

// NewInitCommand creates the init command
func NewInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config directory with starter files",
		Long: `Create the config directory (~/.organizer by default) with a commented
config.yaml and example rule files. Existing files are never overwritten.`,
		Args: cobra.NoArgs,
		RunE: initCommand,
	}
}

// initCommand implements the init command logic
func initCommand(cmd *cobra.Command, args []string) error {
	dir := configDir(cmd)
	cfg := config.DefaultConfig(dir)
	console := logger.NewConsole(cmd.OutOrStdout(), "info")

	if err := os.MkdirAll(cfg.RulesDir, 0o755); err != nil {
		return err
	}

	starters := map[string]string{
		cfg.File(): defaultConfigYAML,
		filepath.Join(cfg.RulesDir, "move.yaml"):      exampleMoveYAML,
		filepath.Join(cfg.RulesDir, "duplicate.yaml"): exampleDuplicateYAML,
	}

	for path, content := range starters {
		if _, err := os.Stat(path); err == nil {
			console.Printf("kept existing %s\n", path)
			continue
		}
		if err := filelock.AtomicWrite(path, []byte(content), 0o644); err != nil {
			return err
		}
		console.Printf("created %s\n", path)
	}

	console.Printf("\nEdit the rule files, then preview with 'organizer run'.\n")
	return nil
}
