package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/config"
	"github.com/harrison/organizer/internal/journal"
	"github.com/harrison/organizer/internal/logger"
)

// NewHistoryCommand creates the history command
func NewHistoryCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent runs from the journal",
		Args:  cobra.NoArgs,
		RunE:  historyCommand,
	}

	cmd.Flags().Int("limit", 10, "Number of runs to show")

	return cmd
}

// historyCommand implements the history command logic
func historyCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir(cmd))
	if err != nil {
		return err
	}

	console := logger.NewConsole(cmd.OutOrStdout(), cfg.LogLevel)

	if _, err := os.Stat(cfg.JournalPath); os.IsNotExist(err) {
		console.Printf("No runs recorded yet.\n")
		return nil
	}

	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return err
	}
	defer j.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	runs, err := j.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		console.Printf("No runs recorded yet.\n")
		return nil
	}

	for _, run := range runs {
		console.Printf("%s  %s  %d op(s): %d applied, %d skipped, %d failed\n",
			run.Started.Format("2006-01-02 15:04:05"), run.ID[:8],
			run.Total, run.Applied, run.Skipped, run.Failed)
	}
	return nil
}
