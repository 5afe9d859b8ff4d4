// ABOUTME: CLI command for copying data between storage backends.
// ABOUTME: Moves tracking rows and measurements from the current store to SQLite or Postgres.
package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/harperreed/measure/internal/config"
	"github.com/harperreed/measure/internal/storage"
	"github.com/spf13/cobra"
)

var (
	migrateTo     string
	migratePath   string
	migrateDSN    string
	migrateDryRun bool
	migrateForce  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy data to another storage backend",
	Long: `Copy every tracking row and measurement from the current store into
another backend.

The destination must be empty unless --force is given. The current store is
left untouched; switch to the new backend with 'measure config set backend'.

USAGE:

  measure migrate --to postgres --dsn postgres://localhost/measure --dry-run
  measure migrate --to postgres --dsn postgres://localhost/measure
  measure migrate --to sqlite --path ~/backup/measure.db`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if migrateTo != "sqlite" && migrateTo != "postgres" {
			return fmt.Errorf("unknown backend: %q (use sqlite or postgres)", migrateTo)
		}

		if migrateDryRun {
			n, err := repo.CountMeasurements(ctx, "")
			if err != nil {
				return err
			}
			rows, err := repo.ListTypes(ctx)
			if err != nil {
				return err
			}
			color.Yellow("Dry run mode - no changes will be made")
			fmt.Fprintf(cmd.OutOrStdout(), "Would migrate %d types and %d measurements to %s\n", len(rows), n, migrateTo)
			return nil
		}

		var dst storage.Repository
		var err error
		switch migrateTo {
		case "sqlite":
			if migratePath == "" {
				return fmt.Errorf("--path is required for sqlite")
			}
			dst, err = storage.Open(config.ExpandPath(migratePath), catalog, storage.WithLogger(logger))
		case "postgres":
			dsn := migrateDSN
			if dsn == "" {
				dsn = cfg.PostgresDSN
			}
			if dsn == "" {
				return fmt.Errorf("--dsn is required for postgres")
			}
			dst, err = storage.OpenPostgres(ctx, dsn, catalog, storage.WithLogger(logger))
		}
		if err != nil {
			return fmt.Errorf("failed to open destination: %w", err)
		}
		defer dst.Close()

		if !migrateForce {
			empty, err := storage.IsEmpty(ctx, dst)
			if err != nil {
				return err
			}
			if !empty {
				return fmt.Errorf("destination already has measurements (use --force to merge)")
			}
		}

		summary, err := storage.MigrateData(ctx, repo, dst)
		if err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		color.Green("✓ Migrated %d types and %d measurements to %s", summary.Types, summary.Measurements, migrateTo)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateTo, "to", "", "destination backend: sqlite or postgres")
	migrateCmd.Flags().StringVar(&migratePath, "path", "", "destination SQLite file")
	migrateCmd.Flags().StringVar(&migrateDSN, "dsn", "", "destination Postgres DSN (default: postgres_dsn setting)")
	migrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "preview migration without making changes")
	migrateCmd.Flags().BoolVar(&migrateForce, "force", false, "migrate into a non-empty destination")
	_ = migrateCmd.MarkFlagRequired("to")
	rootCmd.AddCommand(migrateCmd)
}
