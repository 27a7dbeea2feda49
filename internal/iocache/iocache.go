// Package iocache is for caching I/O calls and persisting batch results.
package iocache

import (
	"sync"

	"github.com/evamaxfield/repo-statistics/internal/contract"
)

// CacheStoreManager manages the activity cache and the result store.
type CacheStoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	activity     contract.CacheStore
	results      contract.ResultStore
}

var _ contract.CacheManager = &CacheStoreManager{} // Compile-time check

// GetActivityStore returns the activity CacheStore.
func (mgr *CacheStoreManager) GetActivityStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.activity
}

// GetResultStore returns the metrics/errors ResultStore.
func (mgr *CacheStoreManager) GetResultStore() contract.ResultStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.results
}
