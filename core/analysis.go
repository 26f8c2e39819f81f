package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/huangsam/hotmap/core/agg"
	"github.com/huangsam/hotmap/core/algo"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
)

// GetAnalysisResult runs the pipeline for cfg, consulting the cache and
// recording the run in the analysis store when those are configured.
func GetAnalysisResult(ctx context.Context, cfg *contract.Config, client contract.GitClient, mgr contract.CacheManager) (*schema.AnalysisResult, error) {
	logAnalysisHeader(ctx, cfg)

	var cacheStore contract.CacheStore
	var analysisStore contract.AnalysisStore
	if mgr != nil {
		cacheStore = mgr.GetCacheStore()
		analysisStore = mgr.GetAnalysisStore()
	}

	state := resolveRepoState(ctx, cfg, client)
	ctx = beginTracking(ctx, cfg, analysisStore)

	logStep(ctx, "📊 Collecting history and file sizes...")
	result, hit, err := CachedAnalysis(ctx, cfg, client, cacheStore, state)
	if err != nil {
		endTracking(ctx, analysisStore, &schema.AnalysisResult{})
		return nil, err
	}
	if hit {
		logStep(ctx, "💾 Cache hit (head %s, %d commits)", shortHash(result.GitHead), result.CommitCount)
	}

	endTracking(ctx, analysisStore, result)
	return result, nil
}

// computeAnalysis is the uncached pipeline: extract, score, build the tree.
func computeAnalysis(ctx context.Context, cfg *contract.Config, client contract.GitClient, state RepoState) (*schema.AnalysisResult, error) {
	history, lines, err := agg.CollectHistory(ctx, cfg, client)
	if err != nil {
		return nil, err
	}
	logStep(ctx, "🧮 Scoring %d changed files against %d tracked files...", len(history.Revisions), len(lines))

	entries := algo.ScoreHotspots(history.Revisions, lines, history.Churn, history.Authors)
	if len(entries) == 0 {
		return nil, contract.ErrNoHotspots
	}
	algo.AttachCommits(entries, history.Commits)

	commitMessages := make(map[string][]schema.CommitRecord, len(entries))
	for _, e := range entries {
		commitMessages[e.Path] = e.Commits
	}

	logStep(ctx, "🌳 Building hierarchy for %d hotspots...", len(entries))
	return &schema.AnalysisResult{
		RunID:          uuid.New().String(),
		Repository:     cfg.RepoPath,
		AnalyzedAt:     time.Now().UTC(),
		SinceDate:      cfg.Since,
		GitHead:        state.Head,
		CommitCount:    state.CommitCount,
		Hotspots:       entries,
		Hierarchy:      algo.BuildHierarchy(entries),
		CommitMessages: commitMessages,
	}, nil
}

// beginTracking opens an analysis run row when tracking is enabled.
func beginTracking(ctx context.Context, cfg *contract.Config, store contract.AnalysisStore) context.Context {
	if store == nil {
		return ctx
	}
	configParams := map[string]any{
		"repo_path":           cfg.RepoPath,
		"since":               cfg.Since,
		"excludes":            cfg.ExtraExcludes,
		"no_default_excludes": cfg.NoDefaultExcludes,
		"use_cache":           cfg.UseCache,
		"workers":             cfg.Workers,
	}
	analysisID, err := store.BeginAnalysis(uuid.New().String(), cfg.RepoPath, time.Now(), configParams)
	if err != nil {
		contract.LogWarn("Analysis tracking initialization failed", err)
		return ctx
	}
	return withAnalysisID(ctx, analysisID)
}

// endTracking records the hotspots of a finished run and closes its row.
func endTracking(ctx context.Context, store contract.AnalysisStore, result *schema.AnalysisResult) {
	analysisID, ok := getAnalysisID(ctx)
	if store == nil || !ok || analysisID <= 0 {
		return
	}
	now := time.Now()
	if len(result.Hotspots) > 0 {
		if err := store.RecordHotspots(analysisID, now, result.Hotspots); err != nil {
			contract.LogWarn(fmt.Sprintf("Failed to record hotspots for run %d", analysisID), err)
		}
	}
	if err := store.EndAnalysis(analysisID, now, len(result.Hotspots)); err != nil {
		contract.LogWarn("Failed to finalize analysis tracking", err)
	}
}
