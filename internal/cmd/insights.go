package cmd

import (
	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/insights"
)

// NewInsightsCommand creates the insights command
func NewInsightsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "insights <directory>",
		Short: "Summarize a directory's contents",
		Long: `Scan the top level of a directory and print its composition: file
counts, sizes, extension histogram and the largest files.

With --prompt the summary is rendered as an analysis prompt for an AI
assistant that suggests organization rules; the engine itself never talks
to a model.`,
		Args: cobra.ExactArgs(1),
		RunE: insightsCommand,
	}

	cmd.Flags().Bool("prompt", false, "Emit an AI analysis prompt instead of the summary")

	return cmd
}

// insightsCommand implements the insights command logic
func insightsCommand(cmd *cobra.Command, args []string) error {
	summary, err := insights.Analyze(args[0])
	if err != nil {
		return err
	}

	if prompt, _ := cmd.Flags().GetBool("prompt"); prompt {
		cmd.Print(insights.AnalysisPrompt(summary))
		return nil
	}
	cmd.Print(insights.Render(summary))
	return nil
}
