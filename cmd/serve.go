package cmd

import (
	"fmt"
	"strings"

	"github.com/huangsam/hotmap/core"
	"github.com/huangsam/hotmap/core/match"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/spf13/cobra"
)

// serveSetup resolves only what serving an existing bundle needs.
func serveSetup(_ *cobra.Command, args []string) error {
	if err := loadInput(); err != nil {
		return err
	}

	cfg.OutputDir = input.OutputDir
	if len(args) == 1 {
		cfg.OutputDir = args[0]
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = contract.DefaultOutputDir
	}
	if input.Port <= 0 || input.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535 (received %d)", input.Port)
	}
	cfg.Port = input.Port
	cfg.NoOpen = input.NoOpen
	return nil
}

// serveCmd serves a bundle written by an earlier run.
var serveCmd = &cobra.Command{
	Use:   "serve [dir]",
	Short: "Serve an existing visualization bundle",
	Long: `Serve a visualization bundle written by an earlier 'hotmap --no-serve' run.

The directory must contain index.html and hotspot_data.json. The server tries
the configured port and the next 100 ports, then stops on Ctrl+C.

Examples:
  # Serve the default output directory
  hotmap serve

  # Serve a specific bundle on port 9000 without opening a browser
  hotmap serve ./reports/api -p 9000 --no-open`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: serveSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteHotspotServe(rootCtx, cfg, cacheManager)
	},
}

// excludesSetup resolves the effective exclusion set without touching a repository.
func excludesSetup(_ *cobra.Command, _ []string) error {
	if err := loadInput(); err != nil {
		return err
	}

	cfg.OutputFile = input.OutputFile
	cfg.NoDefaultExcludes = input.NoDefaultExcludes
	cfg.ExtraExcludes = nil
	for _, p := range input.Exclude {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			cfg.ExtraExcludes = append(cfg.ExtraExcludes, trimmed)
		}
	}
	cfg.Excludes = match.BuildExclusions(cfg.ExtraExcludes, cfg.NoDefaultExcludes)
	return nil
}

// excludesCmd prints the patterns that keep files out of the analysis.
var excludesCmd = &cobra.Command{
	Use:   "excludes",
	Short: "List the exclusion patterns applied to tracked files",
	Long: `Print the effective exclusion patterns.

Built-in patterns cover lock files, dependency and build directories, IDE files,
binaries and media, minified output, archives and generated files. Patterns
added with --exclude are marked as custom.

Examples:
  # Show the built-in list
  hotmap excludes

  # Preview the list with extra patterns
  hotmap excludes -e "docs/**" -e "*.pb.go"

  # Only custom patterns
  hotmap excludes --no-default-excludes -e "vendor/**"`,
	Args:    cobra.NoArgs,
	PreRunE: excludesSetup,
	RunE: func(_ *cobra.Command, _ []string) error {
		return core.ExecuteHotspotExcludes(rootCtx, cfg, cacheManager)
	},
}
