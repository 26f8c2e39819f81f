// Package schema has the models shared by every part of hotmap.
package schema

import "time"

// CommitRecord is one commit as seen by the commit-metadata query.
type CommitRecord struct {
	Hash    string `json:"hash"`
	Author  string `json:"author"`
	Date    string `json:"date"` // YYYY-MM-DD
	Message string `json:"message"`
}

// ChurnStats holds cumulative added/deleted lines for a path.
type ChurnStats struct {
	Added   int `json:"added"`
	Deleted int `json:"deleted"`
}

// Total returns added plus deleted lines.
func (c ChurnStats) Total() int {
	return c.Added + c.Deleted
}

// HistoryOutput is the combined result of the four history queries.
type HistoryOutput struct {
	Revisions map[string]int            // path -> revision count
	Churn     map[string]ChurnStats     // path -> added/deleted lines
	Authors   map[string]int            // path -> distinct author count
	Commits   map[string][]CommitRecord // path -> commits, newest first
}

// NewHistoryOutput returns a HistoryOutput with all maps allocated.
func NewHistoryOutput() *HistoryOutput {
	return &HistoryOutput{
		Revisions: make(map[string]int),
		Churn:     make(map[string]ChurnStats),
		Authors:   make(map[string]int),
		Commits:   make(map[string][]CommitRecord),
	}
}

// FileStats is the joined view of one file across revision, size, churn and author data.
type FileStats struct {
	Path         string         `json:"file"`
	Revisions    int            `json:"revisions"`
	Lines        int            `json:"lines"`
	ChurnAdded   int            `json:"churn_added,omitempty"`
	ChurnDeleted int            `json:"churn_deleted,omitempty"`
	Authors      int            `json:"authors,omitempty"`
	Commits      []CommitRecord `json:"commits"`
}

// HotspotEntry is a scored file.
type HotspotEntry struct {
	FileStats
	HotspotScore  float64 `json:"hotspot_score"`
	NormRevisions float64 `json:"norm_revisions"`
	TotalChurn    int     `json:"total_churn,omitempty"`
}

// LeafMetrics are the per-file attributes carried by a leaf of the hierarchy.
type LeafMetrics struct {
	FullPath      string         `json:"fullPath"`
	Size          int            `json:"size"`
	Revisions     int            `json:"revisions"`
	HotspotScore  float64        `json:"hotspot_score"`
	NormRevisions float64        `json:"norm_revisions"`
	Authors       int            `json:"authors,omitempty"`
	Churn         int            `json:"churn,omitempty"`
	Commits       []CommitRecord `json:"commits,omitempty"`
}

// HierarchyNode is either a directory (Children set, LeafMetrics nil) or a file leaf.
type HierarchyNode struct {
	Name     string           `json:"name"`
	Children []*HierarchyNode `json:"children,omitempty"`
	*LeafMetrics
}

// IsLeaf reports whether the node represents a file.
func (n *HierarchyNode) IsLeaf() bool {
	return n.LeafMetrics != nil
}

// AnalysisResult is the artifact produced by one analysis, persisted by the cache
// and consumed by the visualization.
type AnalysisResult struct {
	RunID          string                    `json:"run_id"`
	Repository     string                    `json:"repository"`
	AnalyzedAt     time.Time                 `json:"analyzed_at"`
	SinceDate      string                    `json:"since_date,omitempty"`
	GitHead        string                    `json:"git_head"`
	CommitCount    int                       `json:"commit_count"`
	Hotspots       []HotspotEntry            `json:"hotspots"`
	Hierarchy      *HierarchyNode            `json:"hierarchy"`
	CommitMessages map[string][]CommitRecord `json:"commit_messages"`
}
