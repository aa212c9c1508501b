package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/config"
	"github.com/harrison/organizer/internal/logger"
)

// NewValidateCommand creates the validate command
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check rule files without scanning or executing",
		Long: `Load every rule file from the rules directory and report problems:
YAML syntax errors, malformed patterns, invalid size strings, unknown
duplicate policies. Rules with problems would be disabled during a run.`,
		Args: cobra.NoArgs,
		RunE: validateCommand,
	}
}

// validateCommand implements the validate command logic
func validateCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir(cmd))
	if err != nil {
		return err
	}

	console := logger.NewConsole(cmd.OutOrStdout(), cfg.LogLevel)

	set, problems, err := loadRules(cfg)
	if err != nil {
		return err
	}

	console.Printf("Rules directory: %s\n", cfg.RulesDir)
	console.Printf("  move:      %d rule(s)\n", len(set.Move))
	console.Printf("  rename:    %d rule(s)\n", len(set.Rename))
	console.Printf("  tag:       %d rule(s)\n", len(set.Tag))
	console.Printf("  duplicate: %d rule(s)\n", len(set.Duplicate))

	if len(problems) > 0 {
		console.Printf("\nProblems:\n")
		for _, p := range problems {
			console.Printf("  - %v\n", p)
		}
		return fmt.Errorf("%d rule(s) have problems", len(problems))
	}

	console.Printf("\nAll rules are valid.\n")
	return nil
}
