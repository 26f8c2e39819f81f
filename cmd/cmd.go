// Package cmd defines the command-line interface for hotmap.
package cmd

import (
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(excludesCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(analysisCmd)
	rootCmd.AddCommand(mcpCmd)

	// Add the cache subcommands to the parent cache command
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheStatusCmd)
	cacheCmd.AddCommand(cacheListCmd)

	// Add the analysis subcommands to the parent analysis command
	analysisCmd.AddCommand(analysisClearCmd)
	analysisCmd.AddCommand(analysisStatusCmd)
	analysisCmd.AddCommand(analysisExportCmd)
	analysisCmd.AddCommand(analysisMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("since", "", "Only count commits after this date (YYYY-MM-DD, RFC3339 or 'N units ago')")
	rootCmd.PersistentFlags().StringP("output-dir", "o", contract.DefaultOutputDir, "Directory for the visualization bundle")
	rootCmd.PersistentFlags().IntP("port", "p", contract.DefaultPort, "First port to try when serving the visualization")
	rootCmd.PersistentFlags().Bool("no-open", false, "Do not open a browser when serving")
	rootCmd.PersistentFlags().Bool("no-serve", false, "Write the bundle and exit without serving it")
	rootCmd.PersistentFlags().StringSliceP("exclude", "e", nil, "Additional glob pattern to exclude (repeatable or comma-separated)")
	rootCmd.PersistentFlags().Bool("no-default-excludes", false, "Use only the --exclude patterns, dropping the built-in list")
	rootCmd.PersistentFlags().Bool("cache", false, "Reuse a cached result when HEAD and commit count are unchanged")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable the result cache even if --cache is set")
	rootCmd.PersistentFlags().Bool("clear-cache", false, "Delete the cached result for this analysis before running")
	rootCmd.PersistentFlags().IntP("limit", "l", contract.DefaultResultLimit, "Number of hotspots to print")
	rootCmd.PersistentFlags().String("format", string(schema.TextOut), "Output format: text or csv or json or parquet")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers for line counting")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for SQLite databases (default: user cache dir)")
	rootCmd.PersistentFlags().String("cache-backend", string(schema.SQLiteBackend), "Cache backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("cache-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("analysis-backend", "", "Analysis tracking backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("analysis-db-connect", "", "Database connection string for analysis tracking (must differ from cache-db-connect)")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of analysisMigrateCmd to Viper
	analysisMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(analysisMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding analysis migrate flags", err)
	}
}
