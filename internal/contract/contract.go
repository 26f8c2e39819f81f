// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/hotmap/schema"
)

// Sentinel errors shared across the pipeline.
var (
	// ErrGitNotFound means the git executable could not be located.
	ErrGitNotFound = errors.New("git executable not found")

	// ErrNotRepository means the target path is not inside a Git work tree.
	ErrNotRepository = errors.New("not a git repository")

	// ErrGitCommandFailed means git ran but exited with a non-zero status.
	ErrGitCommandFailed = errors.New("git command failed")

	// ErrNoHotspots means the analysis finished without any qualifying files.
	ErrNoHotspots = errors.New("no hotspots found")
)

// GitClient defines the read-only history queries the analysis depends on.
// This allows the core analysis logic to be tested without needing a real git executable.
type GitClient interface {
	// --- Generic / Low-Level ---

	// Run executes a git command and returns its standard output.
	// Its use should be minimized in favor of the explicit methods below.
	Run(ctx context.Context, repoPath string, args ...string) ([]byte, error)

	// --- Reference Resolution ---

	// GetRepoHash returns the current HEAD commit hash of the repository.
	GetRepoHash(ctx context.Context, repoPath string) (string, error)

	// GetRepoRoot returns the absolute path to the root of the Git repository
	// containing the given context path.
	GetRepoRoot(ctx context.Context, contextPath string) (string, error)

	// GetCommitCount returns the number of commits reachable from HEAD, optionally after since.
	GetCommitCount(ctx context.Context, repoPath string, since string) (int, error)

	// --- History Logs ---

	// RevisionLog lists the files changed by every commit, one path per line.
	RevisionLog(ctx context.Context, repoPath string, since string) ([]byte, error)

	// NumstatLog lists added/deleted line counts per file per commit.
	NumstatLog(ctx context.Context, repoPath string, since string) ([]byte, error)

	// AuthorLog lists each commit's author name followed by its changed files.
	AuthorLog(ctx context.Context, repoPath string, since string) ([]byte, error)

	// CommitLog lists a COMMIT: marker line per commit followed by its changed files.
	CommitLog(ctx context.Context, repoPath string, since string) ([]byte, error)

	// --- Working Tree ---

	// ListTrackedFiles returns every path tracked in the index.
	ListTrackedFiles(ctx context.Context, repoPath string) ([]string, error)
}

// CacheManager defines the interface for managing cache stores.
// This allows the cache layer to be mocked for testing.
type CacheManager interface {
	GetCacheStore() CacheStore
	GetAnalysisStore() AnalysisStore
}

// CacheStore defines the interface for cached analysis results.
// Get returns a nil entry and nil error when the key is absent.
type CacheStore interface {
	Get(key string) (*schema.CacheEntry, error)
	Set(entry schema.CacheEntry) error
	Delete(key string) (bool, error)
	Entries() ([]schema.CacheEntryInfo, error)
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// AnalysisStore defines the interface for tracking analysis runs and their hotspots.
type AnalysisStore interface {
	// BeginAnalysis creates a new analysis run and returns its unique ID
	BeginAnalysis(runID, repository string, startTime time.Time, configParams map[string]any) (int64, error)

	// EndAnalysis updates the analysis run with completion data
	EndAnalysis(analysisID int64, endTime time.Time, totalHotspots int) error

	// RecordHotspots stores one row per scored file
	RecordHotspots(analysisID int64, analysisTime time.Time, entries []schema.HotspotEntry) error

	// GetStatus returns status information about the analysis store
	GetStatus() (schema.AnalysisStatus, error)

	// GetAllAnalysisRuns returns every recorded run, oldest first
	GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error)

	// GetAllHotspotRecords returns every recorded hotspot row
	GetAllHotspotRecords() ([]schema.HotspotRecord, error)

	// Close closes the underlying connection
	Close() error
}
