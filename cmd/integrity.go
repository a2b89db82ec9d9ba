package cmd

import (
	"context"
	"fmt"

	"attendance-reconciler/core/database"
	"attendance-reconciler/core/storage"
	"attendance-reconciler/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Check object storage and the history database",
	Long:  `Checks that the attendance bucket and its prefixes exist, counts waiting workbooks and validates the run history schema.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// storageCheckCmd represents the integrity storage command
var storageCheckCmd = &cobra.Command{
	Use:   "storage",
	Short: "Check and fix the bucket layout",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// databaseCheckCmd represents the integrity database command
var databaseCheckCmd = &cobra.Command{
	Use:   "database",
	Short: "Check the run history schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(storageCheckCmd, databaseCheckCmd)

	storageCheckCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create the bucket and missing prefixes")
}

func runIntegrityChecks(ctx context.Context, runStorage, runDatabase bool) error {
	cfg, logg, err := bootstrap()
	if err != nil {
		return err
	}
	defer logg.Sync()

	store, err := storage.NewClient(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	var db *gorm.DB
	if runDatabase {
		if conn, err := database.Connect(cfg.Database); err != nil {
			logg.Warn("Optional database connection failed", zap.Error(err))
		} else {
			db = conn
		}
	}

	svc := integrity.NewService(store, cfg.Storage, logg, db)

	if runStorage {
		logg.Info("Checking storage layout...", zap.String("bucket", cfg.Storage.Bucket))
		report, err := svc.CheckStorage(ctx)
		if err != nil {
			return fmt.Errorf("storage check failed: %w", err)
		}

		if !report.BucketExists {
			logg.Warn("Bucket does not exist", zap.String("bucket", report.Bucket))
		}
		if len(report.MissingPrefixes) == 0 {
			logg.Info("Storage layout is intact.")
		} else {
			logg.Warn("Missing prefixes detected", zap.Strings("missing", report.MissingPrefixes))

			if fixFlag {
				logg.Info("Fixing storage layout...")
				if err := svc.FixStorage(ctx, report.MissingPrefixes); err != nil {
					return fmt.Errorf("failed to fix storage: %w", err)
				}
				logg.Info("Storage layout fixed successfully.")
			} else {
				logg.Info("Run 'integrity storage --fix' to create them.")
			}
		}
		logg.Info("Workbooks waiting",
			zap.String("prefix", report.InputPrefix),
			zap.Int("workbooks", report.Workbooks),
			zap.Int("ignored", report.Ignored),
		)
	}

	if runDatabase {
		logg.Info("Checking history schema...")
		report, err := svc.CheckDatabase()
		if err != nil {
			logg.Error("Database schema check failed", zap.Error(err))
			return nil
		}

		if report.Matched {
			logg.Info("History schema matches the expected definition.")
			return nil
		}
		logg.Warn("History schema mismatches found")
		for table, tblReport := range report.Tables {
			if tblReport.Status == "ok" {
				continue
			}
			if len(tblReport.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tblReport.MissingColumns))
			}
			if len(tblReport.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tblReport.TypeMismatches))
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
	}
	return nil
}
