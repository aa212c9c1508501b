package logger

import (
	"time"

	"github.com/fatih/color"

	"github.com/harrison/organizer/internal/models"
)

// RenderPlan prints a numbered preview of every planned operation plus the
// per-kind summary counts.
func (c *Console) RenderPlan(plan *models.Plan) {
	if plan.Empty() {
		c.Printf("Nothing to do: no rule matched and no duplicates were found.\n")
		return
	}

	c.Printf("\nPlanned operations:\n")
	for i, op := range plan.Operations {
		c.Printf("%3d. [%s] %s\n", i+1, op.Kind, op.Preview())
	}

	c.Printf("\nSummary: %d total (%d move, %d rename, %d tag, %d duplicate)\n",
		plan.Counts.Total, plan.Counts.Moves, plan.Counts.Renames,
		plan.Counts.Tags, plan.Counts.Duplicates)
}

// RenderReport prints per-operation outcomes and the closing totals.
func (c *Console) RenderReport(report *models.Report) {
	heading := "Execution report"
	if report.DryRun {
		heading = "Dry-run report"
	}
	c.Printf("\n%s:\n", heading)

	for i, res := range report.Results {
		line := res.Operation.Preview()
		if res.Reason != "" {
			line += " (" + res.Reason + ")"
		}
		c.Printf("%3d. %s %s\n", i+1, c.outcomeBadge(res.Outcome), line)
	}

	c.Printf("\n%d applied, %d skipped, %d failed (of %d) in %s\n",
		report.CountByOutcome(models.OutcomeApplied)+report.CountByOutcome(models.OutcomeWouldApply),
		report.CountByOutcome(models.OutcomeSkipped),
		report.CountByOutcome(models.OutcomeFailed)+report.CountByOutcome(models.OutcomeWouldFail),
		len(report.Results),
		report.Finished.Sub(report.Started).Round(time.Millisecond))
}

// outcomeBadge formats an outcome, colored on terminals.
func (c *Console) outcomeBadge(o models.Outcome) string {
	badge := "[" + string(o) + "]"
	if !c.color {
		return badge
	}
	switch o {
	case models.OutcomeApplied, models.OutcomeWouldApply:
		return color.GreenString(badge)
	case models.OutcomeFailed, models.OutcomeWouldFail:
		return color.RedString(badge)
	default:
		return color.YellowString(badge)
	}
}
