package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/internal/iocache"
	"github.com/huangsam/hotmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGenerateCacheKey(t *testing.T) {
	base := GenerateCacheKey("/repo", "2024-01-01", []string{"*.lock", "vendor/*"})

	assert.Len(t, base, 64)
	assert.Equal(t, base, GenerateCacheKey("/repo", "2024-01-01", []string{"vendor/*", "*.lock"}), "exclusion order is irrelevant")
	assert.NotEqual(t, base, GenerateCacheKey("/other", "2024-01-01", []string{"*.lock", "vendor/*"}))
	assert.NotEqual(t, base, GenerateCacheKey("/repo", "", []string{"*.lock", "vendor/*"}))
	assert.NotEqual(t, base, GenerateCacheKey("/repo", "2024-01-01", []string{"*.lock"}))
}

func TestIsCacheValid(t *testing.T) {
	stored := func(head string, count, version int) *schema.CacheEntry {
		return &schema.CacheEntry{
			CacheEntryInfo: schema.CacheEntryInfo{GitHead: head, CommitCount: count},
			Version:        version,
		}
	}

	tests := []struct {
		name  string
		entry *schema.CacheEntry
		state RepoState
		want  bool
	}{
		{"same head and count", stored("X", 5, currentCacheVersion), RepoState{"X", 5}, true},
		{"head moved", stored("X", 5, currentCacheVersion), RepoState{"Y", 5}, false},
		{"count changed", stored("X", 5, currentCacheVersion), RepoState{"X", 6}, false},
		{"old version", stored("X", 5, currentCacheVersion-1), RepoState{"X", 5}, false},
		{"unknown head", stored("", 0, currentCacheVersion), RepoState{"", 0}, false},
		{"missing entry", nil, RepoState{"X", 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsCacheValid(tt.entry, tt.state))
		})
	}
}

func TestEncodeDecodeResult(t *testing.T) {
	result := &schema.AnalysisResult{
		RunID:       "run-1",
		Repository:  "/repo",
		AnalyzedAt:  time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		GitHead:     testHead,
		CommitCount: 12,
		Hotspots: []schema.HotspotEntry{
			{FileStats: schema.FileStats{Path: "a.go", Revisions: 3, Lines: 40, Commits: []schema.CommitRecord{}}, HotspotScore: 1, NormRevisions: 1},
		},
		Hierarchy:      &schema.HierarchyNode{Name: schema.RootNodeName},
		CommitMessages: map[string][]schema.CommitRecord{"a.go": {}},
	}

	blob, err := encodeResult(result)
	require.NoError(t, err)

	decoded, err := decodeResult(blob)
	require.NoError(t, err)
	assert.Equal(t, result, decoded)

	_, err = decodeResult([]byte("not zstd"))
	assert.Error(t, err)
}

func validEntry(t *testing.T, key string) *schema.CacheEntry {
	t.Helper()
	blob, err := encodeResult(&schema.AnalysisResult{
		RunID:    "cached-run",
		GitHead:  testHead,
		Hotspots: []schema.HotspotEntry{{FileStats: schema.FileStats{Path: "cached.go", Lines: 99}}},
	})
	require.NoError(t, err)
	return &schema.CacheEntry{
		CacheEntryInfo: schema.CacheEntryInfo{Key: key, GitHead: testHead, CommitCount: testCommitCt},
		Version:        currentCacheVersion,
		Value:          blob,
	}
}

func TestCachedAnalysis_Hit(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = true
	key := GenerateCacheKey(cfg.RepoPath, cfg.Since, cfg.Excludes)

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(validEntry(t, key), nil)

	result, hit, err := CachedAnalysis(ctx, cfg, client, store, RepoState{Head: testHead, CommitCount: testCommitCt})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "cached-run", result.RunID)

	client.AssertNotCalled(t, "RevisionLog", mock.Anything, mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything)
}

func TestCachedAnalysis_RelativeSinceKeysOnInput(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = true
	cfg.SinceInput = "6 months ago"
	key := GenerateCacheKey(cfg.RepoPath, "6 months ago", cfg.Excludes)
	require.NotEqual(t, key, GenerateCacheKey(cfg.RepoPath, cfg.Since, cfg.Excludes))

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(validEntry(t, key), nil)

	_, hit, err := CachedAnalysis(ctx, cfg, client, store, RepoState{Head: testHead, CommitCount: testCommitCt})
	require.NoError(t, err)
	assert.True(t, hit, "the resolved timestamp moves every run, the typed bound does not")
}

func TestCachedAnalysis_StaleEntryRecomputes(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = true
	key := GenerateCacheKey(cfg.RepoPath, cfg.Since, cfg.Excludes)
	newHead := "9999999999999999999999999999999999999999"

	store := &iocache.MockCacheStore{}
	store.On("Get", key).Return(validEntry(t, key), nil)
	store.On("Set", mock.MatchedBy(func(e schema.CacheEntry) bool {
		return e.Key == key && e.GitHead == newHead && e.CommitCount == testCommitCt &&
			e.Version == currentCacheVersion && e.SizeBytes == int64(len(e.Value))
	})).Return(nil)

	result, hit, err := CachedAnalysis(ctx, cfg, client, store, RepoState{Head: newHead, CommitCount: testCommitCt})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "src/app.py", result.Hotspots[0].Path)
	store.AssertExpectations(t)
}

func TestCachedAnalysis_MissStoresDecodableEntry(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = true
	state := RepoState{Head: testHead, CommitCount: testCommitCt}

	var saved schema.CacheEntry
	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, nil)
	store.On("Set", mock.Anything).Run(func(args mock.Arguments) {
		saved = args.Get(0).(schema.CacheEntry)
	}).Return(nil)

	fresh, hit, err := CachedAnalysis(ctx, cfg, client, store, state)
	require.NoError(t, err)
	assert.False(t, hit)

	require.True(t, IsCacheValid(&saved, state))
	restored, err := decodeResult(saved.Value)
	require.NoError(t, err)
	assert.Equal(t, fresh.Hotspots, restored.Hotspots)
	assert.Equal(t, fresh.RunID, restored.RunID)
}

func TestCachedAnalysis_StoreFailuresDegrade(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = true

	store := &iocache.MockCacheStore{}
	store.On("Get", mock.Anything).Return(nil, errors.New("disk I/O error"))
	store.On("Set", mock.Anything).Return(errors.New("read-only database"))

	result, hit, err := CachedAnalysis(ctx, cfg, client, store, RepoState{Head: testHead, CommitCount: testCommitCt})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, result.Hotspots, 2)
}

func TestCachedAnalysis_Disabled(t *testing.T) {
	ctx := WithSuppressHeader(context.Background())
	cfg, client := newTestRepo(t)
	cfg.UseCache = false

	store := &iocache.MockCacheStore{}
	_, hit, err := CachedAnalysis(ctx, cfg, client, store, RepoState{Head: testHead, CommitCount: testCommitCt})
	require.NoError(t, err)
	assert.False(t, hit)
	store.AssertNotCalled(t, "Get", mock.Anything)
	store.AssertNotCalled(t, "Set", mock.Anything)
}

func TestResolveRepoState(t *testing.T) {
	ctx := context.Background()
	cfg := &contract.Config{RepoPath: "/repo", Since: "2024-01-01"}

	client := &contract.MockGitClient{}
	client.On("GetRepoHash", ctx, "/repo").Return("", contract.ErrGitCommandFailed)
	client.On("GetCommitCount", ctx, "/repo", "2024-01-01").Return(0, contract.ErrGitCommandFailed)
	assert.Equal(t, RepoState{}, resolveRepoState(ctx, cfg, client))

	client = &contract.MockGitClient{}
	client.On("GetRepoHash", ctx, "/repo").Return(testHead, nil)
	client.On("GetCommitCount", ctx, "/repo", "2024-01-01").Return(42, nil)
	assert.Equal(t, RepoState{Head: testHead, CommitCount: 42}, resolveRepoState(ctx, cfg, client))
}

func TestClearCachedAnalysis(t *testing.T) {
	cfg := &contract.Config{RepoPath: "/repo", Excludes: []string{"*.lock"}}
	key := GenerateCacheKey("/repo", "", []string{"*.lock"})

	store := &iocache.MockCacheStore{}
	store.On("Delete", key).Return(true, nil)

	existed, err := ClearCachedAnalysis(cfg, store)
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = ClearCachedAnalysis(cfg, nil)
	require.NoError(t, err)
	assert.False(t, existed)
}
