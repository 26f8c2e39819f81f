// Package algo has the scoring, ranking and hierarchy algorithms.
package algo

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/huangsam/hotmap/schema"
)

// Scoring constants.
const (
	RevisionWeight = 0.7 // change frequency is the primary signal
	SizeWeight     = 0.3 // line count stands in for complexity
	MinLines       = 10  // smaller files are never scored
	ScoreDecimals  = 4
)

// roundTo rounds x half away from zero to the given number of decimals.
func roundTo(x float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(x*p) / p
}

// ScoreHotspots joins the revision and line-count maps and scores every file
// present in both with at least MinLines lines. Churn and author counts are
// attached when present but never affect the score. Either of them may be nil.
// The result is sorted by score descending, then by path.
func ScoreHotspots(revisions, loc map[string]int, churn map[string]schema.ChurnStats, authors map[string]int) []schema.HotspotEntry {
	candidates := make([]string, 0, min(len(revisions), len(loc)))
	maxRevisions, maxLoc := 0, 0
	for path, revs := range revisions {
		lines, ok := loc[path]
		if !ok || lines < MinLines {
			continue
		}
		candidates = append(candidates, path)
		maxRevisions = max(maxRevisions, revs)
		maxLoc = max(maxLoc, lines)
	}
	if maxRevisions == 0 {
		maxRevisions = 1
	}
	if maxLoc == 0 {
		maxLoc = 1
	}

	entries := make([]schema.HotspotEntry, 0, len(candidates))
	for _, path := range candidates {
		revs, lines := revisions[path], loc[path]
		normRevisions := float64(revs) / float64(maxRevisions)
		normLoc := float64(lines) / float64(maxLoc)

		entry := schema.HotspotEntry{
			FileStats: schema.FileStats{
				Path:      path,
				Revisions: revs,
				Lines:     lines,
			},
			HotspotScore:  roundTo(RevisionWeight*normRevisions+SizeWeight*normLoc, ScoreDecimals),
			NormRevisions: roundTo(normRevisions, ScoreDecimals),
		}
		if c, ok := churn[path]; ok {
			entry.ChurnAdded = c.Added
			entry.ChurnDeleted = c.Deleted
			entry.TotalChurn = c.Total()
		}
		if a, ok := authors[path]; ok {
			entry.Authors = a
		}
		entries = append(entries, entry)
	}

	SortHotspots(entries)
	return entries
}

// SortHotspots orders entries by score descending, breaking ties by path.
func SortHotspots(entries []schema.HotspotEntry) {
	slices.SortStableFunc(entries, func(a, b schema.HotspotEntry) int {
		if c := cmp.Compare(b.HotspotScore, a.HotspotScore); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
}

// AttachCommits sets each entry's commit list. Files without commits get an empty list.
func AttachCommits(entries []schema.HotspotEntry, commits map[string][]schema.CommitRecord) {
	for i := range entries {
		if records, ok := commits[entries[i].Path]; ok {
			entries[i].Commits = records
		} else {
			entries[i].Commits = []schema.CommitRecord{}
		}
	}
}
