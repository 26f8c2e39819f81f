package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/hotmap/core"
	"github.com/huangsam/hotmap/core/algo"
	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/mark3labs/mcp-go/mcp"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.CacheManager
	client  contract.GitClient
}

// rankedHotspot is the tool view of a hotspot; commit lists go through get_file_commits.
type rankedHotspot struct {
	Rank          int     `json:"rank"`
	Path          string  `json:"file"`
	HotspotScore  float64 `json:"hotspot_score"`
	Label         string  `json:"label"`
	Revisions     int     `json:"revisions"`
	Lines         int     `json:"lines"`
	NormRevisions float64 `json:"norm_revisions"`
	Authors       int     `json:"authors,omitempty"`
	ChurnAdded    int     `json:"churn_added,omitempty"`
	ChurnDeleted  int     `json:"churn_deleted,omitempty"`
}

// configFor applies the per-call overrides on top of the server config.
func (h *toolHandler) configFor(ctx context.Context, request mcp.CallToolRequest) (*contract.Config, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		root, err := h.client.GetRepoRoot(ctx, p)
		if err != nil {
			return nil, err
		}
		cfg.RepoPath = root
	}
	if s := request.GetString("since", ""); s != "" {
		since, err := contract.NormalizeSince(s, time.Now())
		if err != nil {
			return nil, err
		}
		cfg.Since = since
		cfg.SinceInput = s
	}
	return cfg, nil
}

// analyze runs (or loads from cache) the analysis for a tool call.
func (h *toolHandler) analyze(ctx context.Context, request mcp.CallToolRequest) (*schema.AnalysisResult, *contract.Config, *mcp.CallToolResult) {
	cfg, err := h.configFor(ctx, request)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("invalid parameters: %v", err))
	}
	result, err := core.GetAnalysisResult(core.WithSuppressHeader(ctx), cfg, h.client, h.mgr)
	if err != nil {
		return nil, nil, mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err))
	}
	return result, cfg, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetHotspots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, cfg, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	limit := cfg.ResultLimit
	if l := request.GetInt("limit", 0); l > 0 {
		limit = l
	}

	ranked := algo.RankHotspots(result.Hotspots, limit)
	output := make([]rankedHotspot, len(ranked))
	for i, e := range ranked {
		output[i] = rankedHotspot{
			Rank:          i + 1,
			Path:          e.Path,
			HotspotScore:  e.HotspotScore,
			Label:         contract.GetPlainLabel(e.HotspotScore),
			Revisions:     e.Revisions,
			Lines:         e.Lines,
			NormRevisions: e.NormRevisions,
			Authors:       e.Authors,
			ChurnAdded:    e.ChurnAdded,
			ChurnDeleted:  e.ChurnDeleted,
		}
	}
	return jsonResult(output)
}

func (h *toolHandler) handleGetHierarchy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, _, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}
	return jsonResult(result.Hierarchy)
}

func (h *toolHandler) handleGetFileCommits(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", "")
	if path == "" {
		return mcp.NewToolResultError("path is required"), nil
	}

	result, cfg, errResult := h.analyze(ctx, request)
	if errResult != nil {
		return errResult, nil
	}

	relPath, err := contract.NormalizeRepoPath(cfg.RepoPath, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	commits, ok := result.CommitMessages[relPath]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("%s is not a hotspot in this analysis", relPath)), nil
	}
	return jsonResult(commits)
}

func (h *toolHandler) handleListExcludes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	excludes := h.baseCfg.Excludes
	if excludes == nil {
		excludes = []string{}
	}
	return jsonResult(excludes)
}
