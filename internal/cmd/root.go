// Package cmd wires the organizer CLI: flag handling, configuration loading
// and presentation around the scanning/planning/execution engine.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/config"
)

// Version is injected at build time via -ldflags
var Version = "dev"

// NewRootCommand creates and returns the root cobra command for organizer
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organizer",
		Short: "Rule-driven file organizer",
		Long: `Organizer tidies directories according to declarative YAML rules:
moving, renaming and tagging files and detecting duplicates by content.

Every run first builds a plan from a filesystem scan and the loaded rules.
By default the plan is only previewed; pass --execute to apply it.`,
		Version: Version,
		// Silence usage on errors to avoid duplicate help text
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config-dir", "", "Config directory (default: ~/.organizer)")

	cmd.AddCommand(NewRunCommand())
	cmd.AddCommand(NewValidateCommand())
	cmd.AddCommand(NewInsightsCommand())
	cmd.AddCommand(NewInitCommand())
	cmd.AddCommand(NewHistoryCommand())

	return cmd
}

// configDir resolves the config directory from the persistent flag.
func configDir(cmd *cobra.Command) string {
	dir, _ := cmd.Flags().GetString("config-dir")
	if dir == "" {
		return config.DefaultDir()
	}
	return dir
}
