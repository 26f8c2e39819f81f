package iocache

import (
	"sync"

	"github.com/huangsam/hotmap/internal/contract"
)

// CacheStoreManager holds the result cache and the analysis tracking store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	analysis     contract.AnalysisStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// NewCacheStoreManager wraps already opened stores. Either may be nil.
func NewCacheStoreManager(cache contract.CacheStore, analysis contract.AnalysisStore) *CacheStoreManager {
	return &CacheStoreManager{cache: cache, analysis: analysis}
}

// GetCacheStore returns the result CacheStore.
func (mgr *CacheStoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetAnalysisStore returns the AnalysisStore, or nil when tracking is off.
func (mgr *CacheStoreManager) GetAnalysisStore() contract.AnalysisStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.analysis
}
