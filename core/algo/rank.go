package algo

import "github.com/huangsam/hotmap/schema"

// RankHotspots returns the top 'limit' entries of an already sorted list.
// A non-positive limit or one larger than the list returns everything.
func RankHotspots(entries []schema.HotspotEntry, limit int) []schema.HotspotEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}
