package algo

import (
	"testing"
)

// FuzzScoreHotspots checks the range, floor and maximum properties of the scorer.
func FuzzScoreHotspots(f *testing.F) {
	f.Add(uint16(10), uint16(50), uint16(2), uint16(20), uint16(0), uint16(9))
	f.Add(uint16(0), uint16(0), uint16(0), uint16(0), uint16(0), uint16(0))
	f.Add(uint16(65535), uint16(10), uint16(1), uint16(65535), uint16(3), uint16(10))

	f.Fuzz(func(t *testing.T, r1, l1, r2, l2, r3, l3 uint16) {
		revisions := map[string]int{"a": int(r1), "b": int(r2), "c": int(r3)}
		loc := map[string]int{"a": int(l1), "b": int(l2), "c": int(l3)}

		entries := ScoreHotspots(revisions, loc, nil, nil)

		maxRev := 0
		for _, e := range entries {
			if e.Lines < MinLines {
				t.Fatalf("%s has %d lines, below the floor", e.Path, e.Lines)
			}
			if e.HotspotScore < 0 || e.HotspotScore > 1 {
				t.Fatalf("%s score %v outside [0,1]", e.Path, e.HotspotScore)
			}
			maxRev = max(maxRev, e.Revisions)
		}
		for i, e := range entries {
			if i > 0 && entries[i-1].HotspotScore < e.HotspotScore {
				t.Fatalf("entries not sorted at %d", i)
			}
			if maxRev > 0 && e.Revisions == maxRev && e.NormRevisions != 1.0 {
				t.Fatalf("%s has max revisions but norm %v", e.Path, e.NormRevisions)
			}
		}
	})
}
