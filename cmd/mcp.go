package cmd

import (
	"github.com/huangsam/hotmap/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp [repo-path]",
	Short: "Start the hotmap MCP server",
	Long: `Launch an MCP server over stdio so AI agents can run hotspot analysis.

Tools:
  get_hotspots           - ranked hotspots for a repository
  get_hierarchy          - the directory tree used by the visualization
  get_file_commits       - commit messages that touched one hotspot
  list_default_excludes  - the effective exclusion patterns

The positional path and flags set the defaults; each tool call may override
repo_path and since.`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, cacheManager)
	},
}
