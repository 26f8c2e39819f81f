package iocache

import (
	"testing"
	"time"

	"github.com/huangsam/hotmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHotspots() []schema.HotspotEntry {
	return []schema.HotspotEntry{
		{
			FileStats:     schema.FileStats{Path: "src/app.py", Revisions: 10, Lines: 50, ChurnAdded: 30, ChurnDeleted: 5, Authors: 2},
			HotspotScore:  1,
			NormRevisions: 1,
		},
		{
			FileStats:     schema.FileStats{Path: "src/util.py", Revisions: 2, Lines: 20},
			HotspotScore:  0.26,
			NormRevisions: 0.2,
		},
	}
}

func TestAnalysisStore_NoneBackend(t *testing.T) {
	store, err := NewAnalysisStore(schema.NoneBackend, "")
	require.NoError(t, err)
	require.NotNil(t, store)

	analysisID, err := store.BeginAnalysis("run", "/repo", time.Now(), map[string]any{"test": "value"})
	assert.NoError(t, err)
	assert.Equal(t, int64(0), analysisID)

	assert.NoError(t, store.EndAnalysis(1, time.Now(), 10))
	assert.NoError(t, store.RecordHotspots(1, time.Now(), testHotspots()))

	runs, err := store.GetAllAnalysisRuns()
	assert.NoError(t, err)
	assert.Empty(t, runs)

	assert.NoError(t, store.Close())
}

func TestAnalysisStore_SQLite(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	startTime := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	analysisID, err := store.BeginAnalysis("run-1", "/test/repo", startTime, map[string]any{
		"since": "2024-01-01",
		"limit": 10,
	})
	require.NoError(t, err)
	assert.Greater(t, analysisID, int64(0))

	require.NoError(t, store.RecordHotspots(analysisID, startTime, testHotspots()))
	require.NoError(t, store.EndAnalysis(analysisID, startTime.Add(1500*time.Millisecond), 2))

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	run := runs[0]
	assert.Equal(t, analysisID, run.AnalysisID)
	assert.Equal(t, "run-1", run.RunID)
	assert.Equal(t, "/test/repo", run.Repository)
	assert.True(t, run.StartTime.Equal(startTime))
	require.NotNil(t, run.EndTime)
	require.NotNil(t, run.RunDurationMs)
	assert.Equal(t, int32(1500), *run.RunDurationMs)
	assert.Equal(t, int32(2), run.TotalHotspots)
	require.NotNil(t, run.ConfigParams)
	assert.JSONEq(t, `{"since":"2024-01-01","limit":10}`, *run.ConfigParams)

	records, err := store.GetAllHotspotRecords()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "src/app.py", records[0].FilePath)
	assert.Equal(t, int32(10), records[0].Revisions)
	assert.Equal(t, int32(30), records[0].ChurnAdded)
	assert.Equal(t, "Critical", records[0].ScoreLabel)
	assert.Equal(t, "src/util.py", records[1].FilePath)
	assert.Equal(t, "Low", records[1].ScoreLabel)
	assert.True(t, records[1].AnalysisTime.Equal(startTime))

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Equal(t, analysisID, status.LastRunID)
	assert.Equal(t, 2, status.TotalHotspots)
	assert.Equal(t, int64(1), status.TableSizes[analysisRunsTable])
	assert.Equal(t, int64(2), status.TableSizes[hotspotRecordsTable])
}

func TestAnalysisStore_OpenRunHasNoEndTime(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.BeginAnalysis("run-open", "/repo", time.Now(), nil)
	require.NoError(t, err)

	runs, err := store.GetAllAnalysisRuns()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Nil(t, runs[0].EndTime)
	assert.Nil(t, runs[0].RunDurationMs)
	assert.Equal(t, int32(0), runs[0].TotalHotspots)
}

func TestAnalysisStore_EndUnknownRun(t *testing.T) {
	store, err := NewAnalysisStore(schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	err = store.EndAnalysis(999, time.Now(), 0)
	assert.Error(t, err)
}
