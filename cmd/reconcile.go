package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"attendance-reconciler/core/database"
	"attendance-reconciler/core/reconcile"
	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/roster"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	bucketPrefix string
	uploadReport bool
	persistRun   bool
)

// reconcileCmd reconciles a folder (or bucket prefix) of attendance workbooks.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile [folder]",
	Short: "Reconcile attendance workbooks into a ranked report",
	Long: `Reconcile every .xlsx workbook in a folder into one attendance report.

Sheets with an email column are processed first and teach the reconciler which
email belongs to which name. Sheets that only list names are processed second
and resolved through those bindings, or through a generated address.

Examples:
  # Reconcile ./input_files
  attendance reconcile

  # Reconcile another folder with 4 workers
  attendance reconcile ./week-12 --workers 4

  # Read inputs from object storage and publish the report there
  attendance reconcile --bucket-prefix inputs/week-12 --upload

  # Keep the run in the history database
  attendance reconcile --persist`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReconcile,
}

func init() {
	addReconcileFlags(reconcileCmd)
	reconcileCmd.Flags().StringVar(&bucketPrefix, "bucket-prefix", "", "Read workbooks from object storage under this prefix")
	reconcileCmd.Flags().BoolVar(&uploadReport, "upload", false, "Publish the report to object storage")
	reconcileCmd.Flags().BoolVar(&persistRun, "persist", false, "Store the run in the history database")

	RootCmd.AddCommand(reconcileCmd)
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, l, err := bootstrap()
	if err != nil {
		return err
	}
	defer l.Sync()

	rc, err := applyReconcileFlags(cmd, cfg.Reconcile)
	if err != nil {
		return err
	}

	fromBucket := cmd.Flags().Changed("bucket-prefix")
	folder := rc.InputDir
	if len(args) > 0 {
		folder = args[0]
	}

	var client storage.Client
	if fromBucket || uploadReport {
		client, err = storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	var db *gorm.DB
	if persistRun {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return fmt.Errorf("database connection required for --persist: %w", err)
		}
	}

	svc := roster.NewService(client, cfg.Storage, rc, db, l)
	svc.OnPhase(printPhase)

	var (
		inputs []reconcile.Input
		source string
	)
	if fromBucket {
		prefix := bucketPrefix
		if prefix == "" {
			prefix = cfg.Storage.InputPrefix
		}
		source = fmt.Sprintf("s3://%s/%s", cfg.Storage.Bucket, prefix)
		inputs, err = roster.ListBucket(ctx, client, cfg.Storage.Bucket, prefix)
	} else {
		source = folder
		inputs, err = roster.ListDirectory(folder)
	}
	if err != nil {
		return fmt.Errorf("invalid input location: %w", err)
	}

	printBanner(source, len(inputs), rc.WorkerCount())
	res, err := svc.Reconcile(ctx, inputs)
	if err != nil {
		return fmt.Errorf("reconciliation failed: %w", err)
	}

	pterm.Println()
	if len(res.Entries) == 0 {
		pterm.Warning.Println("No attendance records found, no report written")
		printSummary(res.Summary)
		return nil
	}

	printTop(res.Entries, rc.Top)

	if err := roster.SaveReport(rc.Output, res.Entries); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	pterm.Success.Printfln("Report exported to: %s", rc.Output)
	pterm.Printfln("  Total unique people: %d", len(res.Entries))

	if uploadReport {
		key, err := svc.PublishReport(ctx, res)
		if err != nil {
			return fmt.Errorf("failed to publish report: %w", err)
		}
		pterm.Success.Printfln("Report uploaded to: s3://%s/%s", cfg.Storage.Bucket, key)
	}

	if persistRun {
		if err := svc.MigrateHistory(ctx); err != nil {
			return fmt.Errorf("failed to prepare history tables: %w", err)
		}
		rec, err := svc.Persist(ctx, res, source)
		if err != nil {
			return fmt.Errorf("failed to persist run: %w", err)
		}
		l.Info("Run persisted", zap.String("run_id", rec.ID), zap.Int("appearances", len(rec.Appearances)))
	}

	printSummary(res.Summary)
	return nil
}

// addReconcileFlags registers the flags that override reconcile.Config.
func addReconcileFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Report path (default from RECONCILE_OUTPUT)")
	cmd.Flags().IntP("workers", "w", 0, "Files processed concurrently (0 = 2x CPUs)")
	cmd.Flags().Duration("timeout", 0, "Per phase timeout once all files are submitted")
	cmd.Flags().Int("top", 0, "Rows shown in the console report (default from RECONCILE_TOP)")
}

// applyReconcileFlags overlays the flags set on cmd onto base and validates the
// result.
func applyReconcileFlags(cmd *cobra.Command, base reconcile.Config) (reconcile.Config, error) {
	rc := base
	flags := cmd.Flags()
	var err error
	if flags.Changed("output") {
		rc.Output, err = flags.GetString("output")
	}
	if err == nil && flags.Changed("workers") {
		rc.Workers, err = flags.GetInt("workers")
	}
	if err == nil && flags.Changed("timeout") {
		rc.PhaseTimeout, err = flags.GetDuration("timeout")
	}
	if err == nil && flags.Changed("top") {
		rc.Top, err = flags.GetInt("top")
	}
	if err != nil {
		return rc, fmt.Errorf("failed to read flags: %w", err)
	}
	if err := rc.Validate(); err != nil {
		return rc, fmt.Errorf("invalid flags: %w", err)
	}
	return rc, nil
}
