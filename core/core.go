// Package core has core logic for analysis, caching and presentation of hotspots.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/huangsam/hotmap/core/algo"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/outwriter"
	"github.com/huangsam/hotmap/internal/viz"
	"github.com/huangsam/hotmap/schema"
)

// ExecutorFunc defines the function signature for executing different analysis modes.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error

// ExecuteHotspotAnalyze runs the analysis, writes the visualization bundle,
// prints the top hotspots and serves the bundle unless told not to.
// It serves as the main entry point for the root command.
func ExecuteHotspotAnalyze(ctx context.Context, cfg *contract.Config, mgr contract.CacheManager) error {
	return runAnalyze(ctx, cfg, contract.NewLocalGitClient(), mgr, viz.Serve)
}

// ExecuteHotspotServe serves an existing bundle from cfg.OutputDir.
func ExecuteHotspotServe(ctx context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	if err := viz.CheckBundle(cfg.OutputDir); err != nil {
		return err
	}
	return viz.Serve(ctx, cfg.OutputDir, cfg.Port, !cfg.NoOpen)
}

// ExecuteHotspotExcludes prints the effective exclusion set.
func ExecuteHotspotExcludes(_ context.Context, cfg *contract.Config, _ contract.CacheManager) error {
	return outwriter.PrintExcludes(cfg.Excludes, cfg)
}

// serveFunc matches viz.Serve so tests can skip the listener.
type serveFunc func(ctx context.Context, dir string, port int, open bool) error

func runAnalyze(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager, serve serveFunc) error {
	start := time.Now()

	if cfg.ClearCache && mgr != nil {
		existed, err := ClearCachedAnalysis(cfg, mgr.GetCacheStore())
		switch {
		case err != nil:
			contract.LogWarn("Cannot clear cache entry", err)
		case existed:
			logStep(ctx, "🗑️  Cleared cached result for this repository")
		default:
			logStep(ctx, "🗑️  No cached result to clear")
		}
	}

	result, err := GetAnalysisResult(ctx, cfg, client, mgr)
	if err != nil {
		return err
	}

	bundleDir, err := viz.WriteBundle(cfg.OutputDir, result)
	if err != nil {
		return fmt.Errorf("cannot write visualization: %w", err)
	}
	logStep(ctx, "✅ Wrote %d hotspots to %s", len(result.Hotspots), bundleDir)

	ranked := algo.RankHotspots(result.Hotspots, cfg.ResultLimit)
	if cfg.OutputFile != "" && cfg.Output != schema.TextOut {
		// File exports carry the full ranked list.
		ranked = result.Hotspots
	}
	if err := outwriter.PrintHotspots(ranked, cfg, time.Since(start)); err != nil {
		return err
	}

	if cfg.NoServe {
		logStep(ctx, "💡 Run 'hotmap serve %s' to view the visualization", bundleDir)
		return nil
	}
	return serve(ctx, bundleDir, cfg.Port, !cfg.NoOpen)
}
