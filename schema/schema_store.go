package schema

import "time"

// CacheEntry is a full cache row: validation metadata plus the encoded result.
type CacheEntry struct {
	CacheEntryInfo
	Version int
	Value   []byte
}

// AnalysisRunRecord represents a row from the hotmap_analysis_runs table.
type AnalysisRunRecord struct {
	AnalysisID    int64
	RunID         string
	Repository    string
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	TotalHotspots int32
	ConfigParams  *string
}

// HotspotRecord represents a row from the hotmap_hotspot_records table.
type HotspotRecord struct {
	AnalysisID    int64
	FilePath      string
	AnalysisTime  time.Time
	Revisions     int32
	Lines         int32
	ChurnAdded    int32
	ChurnDeleted  int32
	Authors       int32
	HotspotScore  float64
	NormRevisions float64
	ScoreLabel    string
}
