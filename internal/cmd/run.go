package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/harrison/organizer/internal/config"
	"github.com/harrison/organizer/internal/dedup"
	"github.com/harrison/organizer/internal/executor"
	"github.com/harrison/organizer/internal/filelock"
	"github.com/harrison/organizer/internal/journal"
	"github.com/harrison/organizer/internal/logger"
	"github.com/harrison/organizer/internal/models"
	"github.com/harrison/organizer/internal/planner"
	"github.com/harrison/organizer/internal/rules"
	"github.com/harrison/organizer/internal/scanner"
	"github.com/harrison/organizer/internal/tags"
)

// NewRunCommand creates the run command
func NewRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan, plan and (optionally) execute organization rules",
		Long: `Scan the configured roots, match every enabled rule, detect duplicates
and build a plan of operations.

Without --execute the plan is validated in dry-run mode and printed; nothing
on disk changes. With --execute the plan is applied operation by operation,
and the outcome of every operation is recorded in the journal.

Examples:
  organizer run                          # preview using configured scan paths
  organizer run --scan-path ~/Downloads  # preview one directory
  organizer run --execute                # apply the plan
  organizer run --execute --max-concurrency 8`,
		Args: cobra.NoArgs,
		RunE: runCommand,
	}

	cmd.Flags().StringArray("scan-path", nil, "Root directory to scan (repeatable; overrides config)")
	cmd.Flags().Bool("execute", false, "Apply the plan instead of previewing it")
	cmd.Flags().Int("max-concurrency", -1, "Concurrent scanning/hashing limit (-1 = use config)")
	cmd.Flags().String("log-level", "", "Console verbosity (debug, info, warn, error)")

	return cmd
}

// runCommand implements the run command logic
func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configDir(cmd))
	if err != nil {
		return err
	}

	scanPaths, _ := cmd.Flags().GetStringArray("scan-path")
	logLevel, _ := cmd.Flags().GetString("log-level")

	var maxConcurrency *int
	if v, _ := cmd.Flags().GetInt("max-concurrency"); v >= 0 {
		maxConcurrency = &v
	}

	// The config file's dry_run applies unless --execute was given explicitly
	var dryRun *bool
	if cmd.Flags().Changed("execute") {
		execute, _ := cmd.Flags().GetBool("execute")
		v := !execute
		dryRun = &v
	}
	cfg.MergeWithFlags(scanPaths, dryRun, maxConcurrency, &logLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	console := logger.NewConsole(cmd.OutOrStdout(), cfg.LogLevel)

	// Cancellation takes effect between operations, never mid-operation
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	set, problems, err := loadRules(cfg)
	if err != nil {
		return err
	}
	for _, p := range problems {
		console.Warnf("rule disabled: %v", p)
	}
	if set.Empty() {
		console.Printf("No enabled rules found in %s.\n", cfg.RulesDir)
		console.Printf("Run 'organizer init' to create example rule files,\n")
		console.Printf("or 'organizer insights <dir>' to analyze a directory first.\n")
		return nil
	}

	roots := cfg.ScanPaths
	if len(roots) == 0 {
		roots = rootsFromRules(set)
	}
	if len(roots) == 0 {
		return fmt.Errorf("no scan paths configured: set scan_paths in %s or pass --scan-path", cfg.File())
	}

	console.Infof("Scanning %d root(s)...", len(roots))
	scan, err := scanner.New(scanner.Options{
		Exclude:        cfg.Exclude,
		MaxConcurrency: cfg.MaxConcurrency,
	}).Scan(ctx, roots)
	if err != nil {
		return err
	}
	for _, warn := range scan.Errors {
		console.Warnf("%v", warn)
	}
	console.Infof("Scanned %d file(s)", len(scan.Records))

	adapter := tagAdapter()
	grouper := &dedup.Grouper{MaxConcurrency: cfg.MaxConcurrency}

	var lister planner.TagLister
	if adapter != nil {
		lister = adapter
	}
	plan, warnings, err := planner.New(set, grouper, lister, time.Now()).Build(ctx, scan.Records)
	if err != nil {
		return err
	}
	for _, warn := range warnings {
		console.Warnf("%v", warn)
	}

	console.RenderPlan(plan)
	if plan.Empty() {
		return nil
	}

	exec := executor.New(adapter, cfg.TagTimeout)

	if cfg.DryRun {
		report := exec.DryRun(ctx, plan)
		console.RenderReport(report)
		console.Printf("\nPreview only. Re-run with --execute to apply.\n")
		return nil
	}

	// One live run at a time per config directory
	lock := filelock.NewRunLock(cfg.LockPath())
	ok, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("another organizer run is in progress (lock: %s)", cfg.LockPath())
	}
	defer lock.Unlock()

	report := exec.Execute(ctx, plan)
	console.RenderReport(report)

	if runID, err := recordRun(ctx, cfg, report); err != nil {
		console.Warnf("failed to record run in journal: %v", err)
	} else {
		console.Infof("Recorded run %s", runID)
	}

	if report.Failed() {
		return fmt.Errorf("%d operation(s) failed", report.CountByOutcome(models.OutcomeFailed))
	}
	return nil
}

// loadRules loads all rule files from the configured rules directory.
func loadRules(cfg *config.Config) (*rules.Set, []error, error) {
	return rules.NewParser(cfg.RulesDir).Load()
}

// rootsFromRules collects the distinct condition paths of the loaded rules,
// so a bare "organizer run" scans the directories the rules talk about.
func rootsFromRules(set *rules.Set) []string {
	seen := make(map[string]bool)
	var roots []string
	for _, list := range [][]rules.Rule{set.Move, set.Rename, set.Tag} {
		for _, rule := range list {
			if rule.Condition.Path == "" {
				continue
			}
			root := rules.ExpandPath(rule.Condition.Path)
			if !seen[root] {
				seen[root] = true
				roots = append(roots, root)
			}
		}
	}
	return roots
}

// tagAdapter returns the platform tag adapter, or nil when the platform has
// no tag store (tag operations are then reported as skipped).
func tagAdapter() tags.Adapter {
	if runtime.GOOS == "darwin" {
		return tags.NewFinderAdapter()
	}
	return nil
}

// recordRun persists a live run's report to the journal.
func recordRun(ctx context.Context, cfg *config.Config, report *models.Report) (string, error) {
	j, err := journal.Open(cfg.JournalPath)
	if err != nil {
		return "", err
	}
	defer j.Close()
	return j.Record(ctx, report)
}
