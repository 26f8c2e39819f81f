package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/huangsam/hotmap/internal/contract"
)

// logAnalysisHeader prints a concise, 2-line header for an analysis run.
func logAnalysisHeader(ctx context.Context, cfg *contract.Config) {
	if shouldSuppressHeader(ctx) {
		return
	}
	repoName := filepath.Base(cfg.RepoPath)
	if repoName == "" || repoName == "." {
		repoName = "current"
	}
	since := cfg.Since
	if since == "" {
		since = "all history"
	}

	fmt.Printf("🔎 Repo: %s (%d exclusion patterns)\n", repoName, len(cfg.Excludes))
	fmt.Printf("📅 Since: %s\n", since)
}

// logStep prints one progress line unless headers are suppressed.
func logStep(ctx context.Context, format string, args ...any) {
	if shouldSuppressHeader(ctx) {
		return
	}
	fmt.Printf(format+"\n", args...)
}

// shortHash trims a commit hash for display.
func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
