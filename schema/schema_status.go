package schema

import "time"

// CacheStatus represents the status of the cache store.
type CacheStatus struct {
	Backend         string    `json:"backend"`
	Connected       bool      `json:"connected"`
	TotalEntries    int       `json:"total_entries"`
	LastEntryTime   time.Time `json:"last_entry_time"`
	OldestEntryTime time.Time `json:"oldest_entry_time"`
	TableSizeBytes  int64     `json:"table_size_bytes"`
}

// CacheEntryInfo describes one cached analysis without its payload.
type CacheEntryInfo struct {
	Key         string    `json:"key"`
	Repository  string    `json:"repository"`
	SinceDate   string    `json:"since_date"`
	GitHead     string    `json:"git_head"`
	CommitCount int       `json:"commit_count"`
	CachedAt    time.Time `json:"cached_at"`
	SizeBytes   int64     `json:"size_bytes"`
}

// AnalysisStatus represents the status of the analysis store.
type AnalysisStatus struct {
	Backend       string           `json:"backend"`
	Connected     bool             `json:"connected"`
	TotalRuns     int              `json:"total_runs"`
	LastRunID     int64            `json:"last_run_id"`
	LastRunTime   time.Time        `json:"last_run_time"`
	OldestRunTime time.Time        `json:"oldest_run_time"`
	TotalHotspots int              `json:"total_hotspots"`
	TableSizes    map[string]int64 `json:"table_sizes"`
}
