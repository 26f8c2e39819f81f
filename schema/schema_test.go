package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChurnStatsTotal(t *testing.T) {
	assert.Equal(t, 0, ChurnStats{}.Total())
	assert.Equal(t, 15, ChurnStats{Added: 10, Deleted: 5}.Total())
}

func TestHierarchyNodeJSON(t *testing.T) {
	root := &HierarchyNode{
		Name: RootNodeName,
		Children: []*HierarchyNode{
			{
				Name: "src",
				Children: []*HierarchyNode{
					{Name: "main.go", LeafMetrics: &LeafMetrics{FullPath: "src/main.go", Size: 42, Revisions: 3, HotspotScore: 1, NormRevisions: 1}},
				},
			},
		},
	}

	data, err := json.Marshal(root)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "root", raw["name"])
	assert.NotContains(t, raw, "size", "directory nodes carry no metrics")

	src := raw["children"].([]any)[0].(map[string]any)
	assert.NotContains(t, src, "fullPath")
	leaf := src["children"].([]any)[0].(map[string]any)
	assert.Equal(t, "src/main.go", leaf["fullPath"])
	assert.EqualValues(t, 42, leaf["size"])
	assert.NotContains(t, leaf, "children")

	// Round trip keeps the leaf/directory split.
	var decoded HierarchyNode
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.False(t, decoded.IsLeaf())
	require.Len(t, decoded.Children, 1)
	assert.False(t, decoded.Children[0].IsLeaf())
	require.Len(t, decoded.Children[0].Children, 1)
	assert.True(t, decoded.Children[0].Children[0].IsLeaf())
	assert.Equal(t, 42, decoded.Children[0].Children[0].Size)
}

func TestHotspotEntryJSONFlattensFileStats(t *testing.T) {
	entry := HotspotEntry{
		FileStats:     FileStats{Path: "a.py", Revisions: 10, Lines: 50, Commits: []CommitRecord{}},
		HotspotScore:  1,
		NormRevisions: 1,
	}
	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"file":"a.py","revisions":10,"lines":50,"commits":[],"hotspot_score":1,"norm_revisions":1}`, string(data))
}
