package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/iocache"
	"github.com/huangsam/hotmap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errTrackingDisabled is returned when an analysis subcommand runs without a backend.
var errTrackingDisabled = errors.New("analysis tracking is not enabled. Set --analysis-backend or HOTMAP_ANALYSIS_BACKEND")

// analysisSetup loads minimal configuration needed for analysis operations.
// This is used by commands that need analysis access without full shared setup.
func analysisSetup() error {
	if err := storeSetup(); err != nil {
		return err
	}
	if cfg.AnalysisBackend == "" || cfg.AnalysisBackend == schema.NoneBackend {
		return errTrackingDisabled
	}

	// No result cache for analysis commands
	storeCfg := cfg.Clone()
	storeCfg.CacheBackend = ""
	if err := iocache.InitStores(storeCfg); err != nil {
		return fmt.Errorf("failed to initialize analysis: %w", err)
	}
	cacheManager = iocache.Manager
	return nil
}

// analysisSetupWrapper wraps analysisSetup to provide PreRunE for analysis commands.
func analysisSetupWrapper(_ *cobra.Command, _ []string) error {
	return analysisSetup()
}

// analysisMigrateSetup loads minimal configuration needed for migrate and clear.
// It does NOT initialize stores or create tables, so migrations can run on a
// fresh database and clearing does not reopen what it removes.
func analysisMigrateSetup(_ *cobra.Command, _ []string) error {
	if err := storeSetup(); err != nil {
		return err
	}
	if cfg.AnalysisBackend == "" {
		return errTrackingDisabled
	}
	return nil
}

// analysisCmd focused on analysis data management.
//
// Note: Analysis subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by the root command. This avoids Git repo validation
// for simple analysis operations.
var analysisCmd = &cobra.Command{
	Use:   "analysis",
	Short: "Manage historical analysis tracking and exports",
	Long: `Manage the history of analysis runs.

When --analysis-backend is set, hotmap records every run, storing:
- Run metadata (run ID, repository, timing, configuration)
- One row per ranked hotspot (revisions, lines, churn, authors, score, label)

This enables trend tracking across runs and data export for BI tools.

Supported backends: SQLite, MySQL, PostgreSQL, or None (disabled, the default)

Subcommands:
  status  - Show analysis tracking statistics
  export  - Export data to Parquet for analytics
  clear   - Remove all tracking data
  migrate - Run database schema migrations

Examples:
  # Check tracking status
  hotmap analysis status --analysis-backend sqlite

  # Export for analysis in pandas/DuckDB
  hotmap analysis export --analysis-backend sqlite --output-file runs`,
}

// analysisClearCmd clears the analysis data.
var analysisClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all historical analysis tracking data",
	Long: `Delete all stored analysis runs and hotspot records.

WARNING: This action cannot be undone. Consider exporting data first.

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the analysis and migration tables

Examples:
  # Export before clearing
  hotmap analysis export --output-file backup
  hotmap analysis clear`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearAnalysis(cfg.AnalysisBackend, iocache.AnalysisConnString(cfg)); err != nil {
			contract.LogFatal("Failed to clear analysis data", err)
		}
		fmt.Println("Analysis data cleared successfully.")
	},
}

// analysisStatusCmd shows analysis status.
var analysisStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display analysis tracking statistics and connection details",
	Long: `Show detailed information about historical analysis tracking.

Displays:
- Backend type and connection status
- Total number of analysis runs stored
- Last and oldest analysis run timestamps
- Total hotspots recorded across all runs
- Database table sizes

Examples:
  # Check analysis tracking status
  hotmap analysis status`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := cacheManager.GetAnalysisStore().GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get analysis status", err)
		}
		iocache.PrintAnalysisStatus(os.Stdout, status)
	},
}

// analysisExportCmd exports analysis data to Parquet files.
var analysisExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical data to Parquet for BI tools and analytics",
	Long: `Export all stored analysis data to Parquet format.

Writes two files next to the --output-file base path:
- <base>.analysis_runs.parquet    - one row per analysis run
- <base>.hotspot_records.parquet  - one row per recorded hotspot

Requires: --output-file parameter

Examples:
  # Export all data
  hotmap analysis export --output-file hotmap-data

  # Use with DuckDB for analysis
  duckdb -c "SELECT * FROM read_parquet('hotmap-data.hotspot_records.parquet') LIMIT 10"`,
	PreRunE: analysisSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteAnalysisExport(os.Stdout, cacheManager.GetAnalysisStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export analysis data", err)
		}
	},
}

// analysisMigrateCmd runs database migrations for the analysis store.
var analysisMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the analysis tracking store.

By default, migrates to the latest version. Use --target-version for specific versions.

Examples:
  # Migrate to latest version (default)
  hotmap analysis migrate

  # Migrate to specific version
  hotmap analysis migrate --target-version 1

  # Rollback all migrations
  hotmap analysis migrate --target-version 0`,
	PreRunE: analysisMigrateSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateAnalysis(cfg.AnalysisBackend, iocache.AnalysisConnString(cfg), targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}
