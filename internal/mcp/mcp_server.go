// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer initializes and configures the hotmap MCP server without starting it.
func NewMCPServer(baseCfg *contract.Config, mgr contract.CacheManager) *server.MCPServer {
	return newServer(baseCfg, mgr, contract.NewLocalGitClient())
}

func newServer(baseCfg *contract.Config, mgr contract.CacheManager, client contract.GitClient) *server.MCPServer {
	s := server.NewMCPServer(
		"hotmap",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
		client:  client,
	}

	s.AddTool(mcp.NewTool("get_hotspots",
		mcp.WithDescription("Rank files by hotspot score (frequently changed and large) from git history."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository (defaults to the configured repository).")),
		mcp.WithString("since", mcp.Description("Only consider commits after this date (YYYY-MM-DD or e.g. '6 months ago').")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of results returned.")),
	), h.handleGetHotspots)

	s.AddTool(mcp.NewTool("get_hierarchy",
		mcp.WithDescription("Return the directory tree of scored files used by the circle-packing view."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("since", mcp.Description("Only consider commits after this date.")),
	), h.handleGetHierarchy)

	s.AddTool(mcp.NewTool("get_file_commits",
		mcp.WithDescription("List the commits that touched a hotspot file, newest first."),
		mcp.WithString("path", mcp.Description("Repository-relative path of the file."), mcp.Required()),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository.")),
		mcp.WithString("since", mcp.Description("Only consider commits after this date.")),
	), h.handleGetFileCommits)

	s.AddTool(mcp.NewTool("list_default_excludes",
		mcp.WithDescription("List the exclusion patterns applied to the analysis."),
	), h.handleListExcludes)

	return s
}

// StartMCPServer starts the hotmap MCP server on stdio.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.CacheManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
