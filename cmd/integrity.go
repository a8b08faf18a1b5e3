package cmd

import (
	"context"
	"fmt"

	"challan-reconciler/core/config"
	"challan-reconciler/core/logger"
	"challan-reconciler/feature/integrity"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var fixFlag bool

// integrityCmd represents the integrity command
var integrityCmd = &cobra.Command{
	Use:   "integrity",
	Short: "Perform integrity checks on the archive backends",
	Long:  `Checks the archive bucket folder structure and the archive database schema.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, true)
	},
}

// structureCmd represents the integrity structure command
var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Check and fix the archive folder structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), true, false)
	},
}

// databaseCmd represents the integrity database command
var databaseCmd = &cobra.Command{
	Use:   "database",
	Short: "Check and migrate the archive database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIntegrityChecks(cmd.Context(), false, true)
	},
}

func init() {
	RootCmd.AddCommand(integrityCmd)
	integrityCmd.AddCommand(structureCmd, databaseCmd)

	structureCmd.Flags().BoolVar(&fixFlag, "fix", false, "Create missing folders")
	databaseCmd.Flags().BoolVar(&fixFlag, "fix", false, "Migrate missing tables and columns")
}

func runIntegrityChecks(ctx context.Context, runStructure, runDatabase bool) error {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logg.Sync()

	svc := integrity.NewService(openStorage(ctx, cfg, logg), cfg.Storage.Bucket, logg, openDatabase(cfg, logg))

	if runStructure {
		logg.Info("Checking folder structure...")
		missing, err := svc.CheckStructure(ctx)
		if err != nil {
			return fmt.Errorf("structure check failed: %w", err)
		}

		if len(missing) == 0 {
			logg.Info("Structure is intact.")
		} else {
			logg.Warn("Missing folders detected", zap.Strings("missing", missing))
			if fixFlag {
				if err := svc.FixStructure(ctx, missing); err != nil {
					return fmt.Errorf("failed to fix structure: %w", err)
				}
				logg.Info("Structure fixed successfully.")
			} else {
				logg.Info("Run with --fix to create missing folders.")
			}
		}
	}

	if runDatabase {
		logg.Info("Checking database schema...", zap.String("target", cfg.Database.Describe()))
		if fixFlag {
			if err := svc.FixDatabase(); err != nil {
				return fmt.Errorf("failed to migrate schema: %w", err)
			}
			logg.Info("Schema migrated.")
		}

		report, err := svc.CheckDatabase()
		if err != nil {
			return fmt.Errorf("schema check failed: %w", err)
		}
		if report.Matched {
			logg.Info("Schema matches expected definition.", zap.String("driver", report.Driver))
			return nil
		}

		logg.Warn("Schema mismatches found", zap.String("driver", report.Driver))
		for table, tbl := range report.Tables {
			if tbl.Status == "ok" {
				continue
			}
			if tbl.Status == "missing" {
				logg.Warn("Missing table", zap.String("table", table))
				continue
			}
			if len(tbl.MissingColumns) > 0 {
				logg.Warn("Missing Columns", zap.String("table", table), zap.Strings("columns", tbl.MissingColumns))
			}
			if len(tbl.TypeMismatches) > 0 {
				logg.Warn("Type Mismatches", zap.String("table", table), zap.Strings("mismatches", tbl.TypeMismatches))
			}
		}
		for _, e := range report.Errors {
			logg.Error("Inspection Error", zap.String("error", e))
		}
	}
	return nil
}
