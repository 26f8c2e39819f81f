package iocache

import (
	"time"

	"github.com/huangsam/hotmap/internal/contract"
	"github.com/huangsam/hotmap/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetCacheStore implements the CacheManager interface.
func (m *MockCacheManager) GetCacheStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetAnalysisStore implements the CacheManager interface.
func (m *MockCacheManager) GetAnalysisStore() contract.AnalysisStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.AnalysisStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) (*schema.CacheEntry, error) {
	args := m.Called(key)
	entry, _ := args.Get(0).(*schema.CacheEntry)
	return entry, args.Error(1)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(entry schema.CacheEntry) error {
	args := m.Called(entry)
	return args.Error(0)
}

// Delete implements the CacheStore interface.
func (m *MockCacheStore) Delete(key string) (bool, error) {
	args := m.Called(key)
	return args.Bool(0), args.Error(1)
}

// Entries implements the CacheStore interface.
func (m *MockCacheStore) Entries() ([]schema.CacheEntryInfo, error) {
	args := m.Called()
	entries, _ := args.Get(0).([]schema.CacheEntryInfo)
	return entries, args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockAnalysisStore is a mock implementation of AnalysisStore for testing.
type MockAnalysisStore struct {
	mock.Mock
}

var _ contract.AnalysisStore = &MockAnalysisStore{} // Compile-time check

// BeginAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) BeginAnalysis(runID, repository string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(runID, repository, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndAnalysis implements the AnalysisStore interface.
func (m *MockAnalysisStore) EndAnalysis(analysisID int64, endTime time.Time, totalHotspots int) error {
	args := m.Called(analysisID, endTime, totalHotspots)
	return args.Error(0)
}

// RecordHotspots implements the AnalysisStore interface.
func (m *MockAnalysisStore) RecordHotspots(analysisID int64, analysisTime time.Time, entries []schema.HotspotEntry) error {
	args := m.Called(analysisID, analysisTime, entries)
	return args.Error(0)
}

// Close implements the AnalysisStore interface.
func (m *MockAnalysisStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetStatus() (schema.AnalysisStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.AnalysisStatus), args.Error(1)
}

// GetAllAnalysisRuns implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllAnalysisRuns() ([]schema.AnalysisRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.AnalysisRunRecord)
	return runs, args.Error(1)
}

// GetAllHotspotRecords implements the AnalysisStore interface.
func (m *MockAnalysisStore) GetAllHotspotRecords() ([]schema.HotspotRecord, error) {
	args := m.Called()
	records, _ := args.Get(0).([]schema.HotspotRecord)
	return records, args.Error(1)
}
