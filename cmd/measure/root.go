// ABOUTME: Root Cobra command for measure CLI.
// ABOUTME: Loads config, logger, the type catalog and storage in PersistentPre/PostRunE.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/harperreed/measure/internal/config"
	"github.com/harperreed/measure/internal/logging"
	"github.com/harperreed/measure/internal/models"
	"github.com/harperreed/measure/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dbPath  string
	verbose bool

	cfg     *config.Config
	logger  *slog.Logger
	catalog *models.Catalog
	repo    storage.Repository
)

// noStorage marks commands that only touch the config file.
const noStorage = "no-storage"

var rootCmd = &cobra.Command{
	Use:   "measure",
	Short: "Body measurement tracker",
	Long: `Measure is a CLI tool for tracking body measurements and weight-loss progress.

WHAT IT TRACKS:

  WEIGHT    kg / lb, always tracked
  BODYFAT   percent   (config set track_bodyfat true)
  WAIST     cm / in   (config set track_waist true)
  HEIGHT    cm / in   used for BMI when no height is configured
  Custom types with their own unit, maximum and step sizes (measure types)

QUICK START:

  $ measure config set goal 75          # Goal weight in your unit system
  $ measure config set height 180       # Height for BMI
  $ measure add 82.5                    # Log your weight
  $ measure add waist 91 --comment "after run"
  $ measure list                        # See recent measurements
  $ measure stats                       # BMI, loss, daily average, goal date
  $ measure chart --days 90 -o weight.svg

UNITS:

  Values are stored metric. 'measure config set units imperial' shows and
  reads lb and in everywhere instead.

MCP AND METRICS:

  'measure mcp' starts a Model Context Protocol server on stdio.
  'measure serve' exposes Prometheus metrics on /metrics.

DATA STORAGE:

  SQLite at ~/.local/share/measure/measure.db by default, or Postgres with
  'measure config set backend postgres' and 'config set postgres_dsn ...'.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "help" || cmd.Name() == "completion" {
			return nil
		}
		logger = logging.FromEnv(verbose)

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.ApplyEnv(); err != nil {
			return err
		}
		if skipsStorage(cmd) {
			return nil
		}
		return openRepo(cmd.Context())
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if repo != nil {
			err := repo.Close()
			repo = nil
			return err
		}
		return nil
	},
}

func skipsStorage(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[noStorage]; ok {
			return true
		}
	}
	return false
}

// openRepo builds the catalog, opens the configured store and merges the
// persisted tracking rows and the optional types file into the catalog.
func openRepo(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	catalog = models.NewCatalog()

	var err error
	if dbPath != "" {
		repo, err = storage.Open(config.ExpandPath(dbPath), catalog, storage.WithLogger(logger))
	} else {
		repo, err = cfg.OpenStorage(ctx, catalog, storage.WithLogger(logger))
	}
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}

	if cfg.TypesFile != "" {
		defs, err := config.LoadTypes(cfg.TypesFile)
		if err != nil {
			return fmt.Errorf("failed to load types file: %w", err)
		}
		for _, row := range defs {
			if _, err := repo.SaveType(ctx, row); err != nil {
				return fmt.Errorf("failed to save type %s: %w", row.Name, err)
			}
		}
	}

	rows, err := repo.ListTypes(ctx)
	if err != nil {
		return fmt.Errorf("failed to load types: %w", err)
	}
	catalog.Load(rows)
	logger.Debug("catalog loaded", "types", len(catalog.Types()))
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")
}
