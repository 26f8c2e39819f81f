package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/klauspost/compress/zstd"
)

// currentCacheVersion defines the version of the cache schema
const currentCacheVersion = 1

// Shared codecs; EncodeAll and DecodeAll are safe for concurrent use.
var (
	cacheEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	cacheDecoder, _ = zstd.NewReader(nil)
)

// RepoState identifies the repository snapshot a result was computed from.
type RepoState struct {
	Head        string
	CommitCount int
}

// GenerateCacheKey derives the cache key from the analysis parameters.
// Exclusion order does not affect the key.
func GenerateCacheKey(repoPath, since string, excludes []string) string {
	sorted := slices.Clone(excludes)
	slices.Sort(sorted)
	sum := sha256.Sum256([]byte(repoPath + "\x00" + since + "\x00" + strings.Join(sorted, "\x00")))
	return hex.EncodeToString(sum[:])
}

// IsCacheValid reports whether a stored entry still describes the repository.
// Validity requires the same cache version, the same head and the same commit count.
// An unknown head never validates.
func IsCacheValid(entry *schema.CacheEntry, state RepoState) bool {
	if entry == nil || state.Head == "" {
		return false
	}
	return entry.Version == currentCacheVersion &&
		entry.GitHead == state.Head &&
		entry.CommitCount == state.CommitCount
}

// resolveRepoState reads head and commit count; failures leave zero values.
func resolveRepoState(ctx context.Context, cfg *contract.Config, client contract.GitClient) RepoState {
	var state RepoState
	head, err := client.GetRepoHash(ctx, cfg.RepoPath)
	if err != nil {
		contract.LogWarn("Cannot resolve HEAD", err)
	} else {
		state.Head = head
	}
	count, err := client.GetCommitCount(ctx, cfg.RepoPath, cfg.Since)
	if err != nil {
		contract.LogWarn("Cannot count commits", err)
	} else {
		state.CommitCount = count
	}
	return state
}

// encodeResult serializes a result for storage.
func encodeResult(result *schema.AnalysisResult) ([]byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return cacheEncoder.EncodeAll(data, make([]byte, 0, len(data)/4)), nil
}

// decodeResult restores a result written by encodeResult.
func decodeResult(blob []byte) (*schema.AnalysisResult, error) {
	data, err := cacheDecoder.DecodeAll(blob, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress cache entry: %w", err)
	}
	var result schema.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("decode cache entry: %w", err)
	}
	return &result, nil
}

// lookupCache returns a valid cached result or nil.
// Any read or decode failure is a miss.
func lookupCache(store contract.CacheStore, key string, state RepoState) *schema.AnalysisResult {
	entry, err := store.Get(key)
	if err != nil {
		contract.LogWarn("Cache read failed", err)
		return nil
	}
	if !IsCacheValid(entry, state) {
		return nil
	}
	result, err := decodeResult(entry.Value)
	if err != nil {
		contract.LogWarn("Cache entry unreadable", err)
		return nil
	}
	return result
}

// storeCache writes a finished result; failures only warn.
func storeCache(store contract.CacheStore, key string, result *schema.AnalysisResult) {
	blob, err := encodeResult(result)
	if err != nil {
		contract.LogWarn("Cache encode failed", err)
		return
	}
	entry := schema.CacheEntry{
		CacheEntryInfo: schema.CacheEntryInfo{
			Key:         key,
			Repository:  result.Repository,
			SinceDate:   result.SinceDate,
			GitHead:     result.GitHead,
			CommitCount: result.CommitCount,
			CachedAt:    time.Now().UTC(),
			SizeBytes:   int64(len(blob)),
		},
		Version: currentCacheVersion,
		Value:   blob,
	}
	if err := store.Set(entry); err != nil {
		contract.LogWarn("Cache write failed", err)
	}
}

// CachedAnalysis returns a cached result when one is valid for the current
// repository state and computes (then stores) a fresh one otherwise.
// The boolean reports a cache hit.
func CachedAnalysis(ctx context.Context, cfg *contract.Config, client contract.GitClient, store contract.CacheStore, state RepoState) (*schema.AnalysisResult, bool, error) {
	if store == nil || !cfg.UseCache {
		result, err := computeAnalysis(ctx, cfg, client, state)
		return result, false, err
	}

	key := GenerateCacheKey(cfg.RepoPath, cfg.CacheSince(), cfg.Excludes)
	if result := lookupCache(store, key, state); result != nil {
		return result, true, nil
	}

	result, err := computeAnalysis(ctx, cfg, client, state)
	if err != nil {
		return nil, false, err
	}
	storeCache(store, key, result)
	return result, false, nil
}

// ClearCachedAnalysis deletes the entry for this configuration.
// It reports whether an entry existed.
func ClearCachedAnalysis(cfg *contract.Config, store contract.CacheStore) (bool, error) {
	if store == nil {
		return false, nil
	}
	return store.Delete(GenerateCacheKey(cfg.RepoPath, cfg.CacheSince(), cfg.Excludes))
}
