package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/iocache"
	"github.com/huangsam/hotmap/internal/outwriter"
	"github.com/huangsam/hotmap/schema"
	"github.com/spf13/cobra"
)

// storeSetup loads the storage settings shared by the cache and analysis subcommands.
// It skips repository validation entirely.
func storeSetup() error {
	if err := loadInput(); err != nil {
		return err
	}
	if err := contract.ProcessStoreConfig(cfg, input); err != nil {
		return err
	}

	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Output = schema.OutputMode(strings.ToLower(input.Format))
	if cfg.Output == "" {
		cfg.Output = schema.TextOut
	}
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Format)
	}
	return nil
}

// cacheSetup initializes only the result cache.
func cacheSetup() error {
	if err := storeSetup(); err != nil {
		return err
	}

	// No analysis tracking for cache commands
	storeCfg := cfg.Clone()
	storeCfg.AnalysisBackend = ""
	if err := iocache.InitStores(storeCfg); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	cacheManager = iocache.Manager
	return nil
}

// cacheSetupWrapper wraps cacheSetup to provide PreRunE for cache commands.
func cacheSetupWrapper(_ *cobra.Command, _ []string) error {
	return cacheSetup()
}

// cacheCmd focused on cache management.
//
// Note: Cache subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by the root command. This avoids Git repo validation
// for simple cache operations.
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the analysis result cache",
	Long: `Manage the cache of finished analyses.

With --cache, hotmap stores each analysis keyed by repository, since-date and
exclusions. A cached result is reused only while HEAD and the commit count in
the analyzed window are both unchanged.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status - Show cache statistics and connection info
  list   - List cached analyses
  clear  - Remove all cached data

Examples:
  # Check cache status
  hotmap cache status

  # Clear cache after rewriting history
  hotmap cache clear`,
}

// cacheClearCmd clears the cache.
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached analysis results",
	Long: `Delete all cached analysis results from the configured backend.

Use this when:
- Repository history was rewritten with an equal commit count
- Cache may be stale or corrupted
- Reclaiming disk space

For SQLite: Deletes the database file
For MySQL/PostgreSQL: Drops the cache table

Examples:
  # Clear SQLite cache (default)
  hotmap cache clear

  # Clear MySQL cache (set connection string via env variable)
  HOTMAP_CACHE_BACKEND=mysql HOTMAP_CACHE_DB_CONNECT="..." hotmap cache clear`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		// Clearing must not open the database it is about to remove
		return storeSetup()
	},
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearCache(cfg.CacheBackend, iocache.CacheConnString(cfg)); err != nil {
			contract.LogFatal("Failed to clear cache", err)
		}
		fmt.Println("Cache cleared successfully.")
	},
}

// cacheStatusCmd shows cache status.
var cacheStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display cache statistics and connection details",
	Long: `Show detailed information about the result cache.

Displays:
- Backend type and connection status
- Total number of cached entries
- Last and oldest cache entry timestamps
- Cache table size

Examples:
  # Check cache status
  hotmap cache status`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := cacheManager.GetCacheStore()
		if store == nil {
			contract.LogFatal("Failed to get cache status", fmt.Errorf("cache backend is not configured"))
		}
		status, err := store.GetStatus()
		if err != nil {
			contract.LogFatal("Failed to get cache status", err)
		}
		iocache.PrintCacheStatus(os.Stdout, status)
	},
}

// cacheListCmd lists cached entries.
var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached analyses",
	Long: `List every cached analysis, newest first.

Each row shows the key prefix, repository, since-date, HEAD, commit count,
cache time and payload size.

Examples:
  # Show cached analyses as a table
  hotmap cache list

  # Dump them as JSON
  hotmap cache list --format json`,
	PreRunE: cacheSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		store := cacheManager.GetCacheStore()
		if store == nil {
			contract.LogFatal("Failed to list cache", fmt.Errorf("cache backend is not configured"))
		}
		entries, err := store.Entries()
		if err != nil {
			contract.LogFatal("Failed to list cache", err)
		}
		if err := outwriter.PrintCacheEntries(entries, cfg); err != nil {
			contract.LogFatal("Failed to print cache entries", err)
		}
	},
}
