package parquet

import (
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hotmap/schema"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll reads every row of a Parquet file written by this package.
func readAll[T any](t *testing.T, path string) []T {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	reader := parquet.NewGenericReader[T](file)
	defer func() { _ = reader.Close() }()

	rows := make([]T, reader.NumRows())
	n, err := reader.Read(rows)
	if err != nil && err != io.EOF {
		require.NoError(t, err)
	}
	return rows[:n]
}

func TestStructTags(t *testing.T) {
	tests := []struct {
		name    string
		schema  *parquet.Schema
		columns []string
	}{
		{"analysis runs", parquet.SchemaOf(new(AnalysisRun)), []string{
			"analysis_id", "run_id", "repository", "start_time", "end_time", "run_duration_ms", "total_hotspots", "config_params",
		}},
		{"hotspot records", parquet.SchemaOf(new(HotspotRecord)), []string{
			"analysis_id", "file_path", "analysis_time", "revisions", "lines", "churn_added", "churn_deleted", "authors", "hotspot_score", "norm_revisions", "score_label",
		}},
		{"hotspots", parquet.SchemaOf(new(Hotspot)), []string{
			"rank", "file_path", "revisions", "lines", "hotspot_score", "norm_revisions", "label",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, col := range tt.columns {
				_, ok := tt.schema.Lookup(col)
				assert.True(t, ok, "column %s should exist", col)
			}
		})
	}
}

func TestWriteAnalysisRunsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.parquet")
	end := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	duration := int32(1500)
	params := `{"since":"2024-01-01"}`

	data := []AnalysisRun{
		{AnalysisID: 1, RunID: "r-1", Repository: "/repo", StartTime: end.Add(-1500 * time.Millisecond), EndTime: &end, RunDurationMs: &duration, TotalHotspots: 12, ConfigParams: &params},
		{AnalysisID: 2, RunID: "r-2", Repository: "/repo", StartTime: end},
	}
	require.NoError(t, WriteAnalysisRunsParquet(data, path))

	rows := readAll[AnalysisRun](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, "r-1", rows[0].RunID)
	require.NotNil(t, rows[0].EndTime)
	assert.WithinDuration(t, end, *rows[0].EndTime, time.Nanosecond)
	assert.Equal(t, duration, *rows[0].RunDurationMs)
	assert.Equal(t, params, *rows[0].ConfigParams)
	assert.Nil(t, rows[1].EndTime)
	assert.Nil(t, rows[1].RunDurationMs)
	assert.Nil(t, rows[1].ConfigParams)
}

func TestWriteHotspotRecordsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "records.parquet")
	records := ConvertHotspotRecords([]schema.HotspotRecord{
		{AnalysisID: 1, FilePath: "src/a.go", AnalysisTime: time.Now().UTC(), Revisions: 9, Lines: 300, ChurnAdded: 40, ChurnDeleted: 10, Authors: 2, HotspotScore: 0.91, NormRevisions: 1, ScoreLabel: "Critical"},
	})
	require.NoError(t, WriteHotspotRecordsParquet(records, path))

	rows := readAll[HotspotRecord](t, path)
	require.Len(t, rows, 1)
	assert.Equal(t, "src/a.go", rows[0].FilePath)
	assert.Equal(t, int32(300), rows[0].Lines)
	assert.InDelta(t, 0.91, rows[0].HotspotScore, 1e-9)
}

func TestWriteHotspotsParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hotspots.parquet")
	entries := []schema.HotspotEntry{
		{FileStats: schema.FileStats{Path: "a.py", Revisions: 10, Lines: 50}, HotspotScore: 1, NormRevisions: 1},
		{FileStats: schema.FileStats{Path: "b.py", Revisions: 2, Lines: 20, Authors: 3}, HotspotScore: 0.26, NormRevisions: 0.2},
	}
	require.NoError(t, WriteHotspotsParquet(ConvertHotspotEntries(entries), path))

	rows := readAll[Hotspot](t, path)
	require.Len(t, rows, 2)
	assert.Equal(t, int32(1), rows[0].Rank)
	assert.Equal(t, "Critical", rows[0].Label)
	assert.Equal(t, int32(2), rows[1].Rank)
	assert.Equal(t, int32(3), rows[1].Authors)
	assert.Equal(t, "Low", rows[1].Label)
}

func TestWriteParquet_EmptyAndBadPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.parquet")
	require.NoError(t, WriteAnalysisRunsParquet([]AnalysisRun{}, path))
	assert.Empty(t, readAll[AnalysisRun](t, path))

	err := WriteHotspotsParquet(nil, filepath.Join(t.TempDir(), "missing", "x.parquet"))
	assert.Error(t, err)
}
