package iocache

import (
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetActivityStore implements the CacheManager interface.
func (m *MockCacheManager) GetActivityStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetResultStore implements the CacheManager interface.
func (m *MockCacheManager) GetResultStore() contract.ResultStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.ResultStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	return args.Get(0).([]byte), args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockResultStore is a mock implementation of ResultStore for testing.
type MockResultStore struct {
	mock.Mock
}

var _ contract.ResultStore = &MockResultStore{} // Compile-time check

// UpsertMetrics implements the ResultStore interface.
func (m *MockResultStore) UpsertMetrics(repoID string, rec schema.MetricRecord, processedAt time.Time) error {
	args := m.Called(repoID, rec, processedAt)
	return args.Error(0)
}

// UpsertError implements the ResultStore interface.
func (m *MockResultStore) UpsertError(e schema.RepoError) error {
	args := m.Called(e)
	return args.Error(0)
}

// ListMetricsKeys implements the ResultStore interface.
func (m *MockResultStore) ListMetricsKeys() ([]string, error) {
	args := m.Called()
	keys, _ := args.Get(0).([]string)
	return keys, args.Error(1)
}

// LoadMetricsTable implements the ResultStore interface.
func (m *MockResultStore) LoadMetricsTable() (map[string]schema.MetricRecord, error) {
	args := m.Called()
	table, _ := args.Get(0).(map[string]schema.MetricRecord)
	return table, args.Error(1)
}

// LoadErrorsTable implements the ResultStore interface.
func (m *MockResultStore) LoadErrorsTable() (map[string]schema.RepoError, error) {
	args := m.Called()
	table, _ := args.Get(0).(map[string]schema.RepoError)
	return table, args.Error(1)
}

// GetStatus implements the ResultStore interface.
func (m *MockResultStore) GetStatus() (schema.ResultStoreStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.ResultStoreStatus), args.Error(1)
}

// Close implements the ResultStore interface.
func (m *MockResultStore) Close() error {
	args := m.Called()
	return args.Error(0)
}
