package iocache

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/huangsam/hotmap/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateAnalysis_NoneBackend(t *testing.T) {
	err := MigrateAnalysis(schema.NoneBackend, "", -1)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "migrations are not supported for NoneBackend")
}

func TestMigrateAnalysis_SQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test_migration.db")

	// Up to latest, then again as a no-op
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))
	_, err := os.Stat(dbPath)
	assert.NoError(t, err)
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))

	// Step down to version 1, back to 0, and up to 2
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 1))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 0))
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, 2))
}

func TestMigrateAnalysis_StoreCompatible(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "analysis.db")
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, dbPath, -1))

	store, err := NewAnalysisStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	id, err := store.BeginAnalysis("run", "/repo", time.Now(), nil)
	require.NoError(t, err)
	assert.NoError(t, store.RecordHotspots(id, time.Now(), testHotspots()))
}

func TestMigrateAnalysis_SQLiteInMemory(t *testing.T) {
	require.NoError(t, MigrateAnalysis(schema.SQLiteBackend, ":memory:", -1))
}
