package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"tablesync/core/reconcile"
	"tablesync/feature/tablesync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// backupCmd represents the backup command
var backupCmd = &cobra.Command{
	Use:     "backup",
	Aliases: []string{"bup"},
	Short:   "Copy the relational database into the key-value store",
	Long: `Reads every selected table from the relational database and makes the
key-value store hold exactly the same entities: missing or changed items are
written, items without a matching row are deleted.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, tablesync.ModeBackup)
	},
}

// recoveryCmd represents the recovery command
var recoveryCmd = &cobra.Command{
	Use:     "recovery",
	Aliases: []string{"rec"},
	Short:   "Restore the relational database from the key-value store",
	Long: `Reads every selected table from the key-value store and makes the relational
database hold exactly the same rows. Values are coerced to the declared column
types; entities that cannot be coerced are reported and skipped.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSync(cmd, tablesync.ModeRecovery)
	},
}

func init() {
	for _, c := range []*cobra.Command{backupCmd, recoveryCmd} {
		c.Flags().StringSliceP("table", "t", nil, "Only synchronize these tables (repeatable)")
		c.Flags().Bool("dry-run", false, "Compute the changes without writing them")
		c.Flags().Int("concurrency", 0, "Tables synchronized at once (default from config)")
		c.Flags().Int("workers", 0, "Goroutines applying one table's changes (default from config)")
		c.Flags().Bool("json", false, "Print the run report as JSON")
		RootCmd.AddCommand(c)
	}
}

func runSync(cmd *cobra.Command, mode tablesync.Mode) error {
	ctx := cmd.Context()

	tables, _ := cmd.Flags().GetStringSlice("table")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	workers, _ := cmd.Flags().GetInt("workers")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := bootstrap(ctx, true)
	if err != nil {
		return err
	}
	defer a.close()

	svc, err := tablesync.NewService(a.db, a.kv, a.cfg.Sync, a.log, a.metrics)
	if err != nil {
		return err
	}

	report, err := svc.Run(ctx, mode, tablesync.RunOptions{
		Tables:      tables,
		DryRun:      dryRun,
		Concurrency: concurrency,
		Workers:     workers,
	})
	if report == nil {
		return fmt.Errorf("%s failed: %w", mode, err)
	}
	runErr := err

	if a.cfg.Metrics.PushgatewayURL != "" {
		if err := a.metrics.Push(ctx, a.cfg.Metrics); err != nil {
			a.log.Warn("Failed to push metrics", zap.Error(err))
		}
	}

	if jsonOutput {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	} else {
		printReport(report)
	}

	if runErr != nil {
		return fmt.Errorf("%s aborted: %w", mode, runErr)
	}
	if err := report.Err(); err != nil {
		totals := report.Totals()
		return fmt.Errorf("%s finished with %d failed tables and %d failed entities: %w",
			mode, totals.FailedTables, totals.EntityErrors, err)
	}
	if ctx.Err() != nil {
		return fmt.Errorf("%s interrupted: %w", mode, ctx.Err())
	}
	return nil
}

func printReport(report *reconcile.Report) {
	title := "Synchronization"
	if report.DryRun {
		title += " (dry run)"
	}
	fmt.Printf("\n=== %s %s ===\n", title, report.Mode)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TABLE\tUPSERTS\tDELETES\tERRORS\tSTATUS")
	for _, t := range report.Tables {
		status := "ok"
		switch {
		case t.Err != nil:
			status = t.Err.Error()
		case len(t.Errors) > 0:
			status = "partial"
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%d/%d\t%d\t%s\n",
			t.Table, t.Upserted, t.Planned.Upserts, t.Deleted, t.Planned.Deletes, len(t.Errors), status)
	}
	_ = w.Flush()

	totals := report.Totals()
	fmt.Printf("Tables: %d (failed %d)\n", totals.Tables, totals.FailedTables)
	fmt.Printf("Upserted: %d, Deleted: %d\n", totals.Upserted, totals.Deleted)
	fmt.Printf("Execution Time: %s\n", report.Duration.String())
}
