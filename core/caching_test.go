package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

type memCacheStore struct {
	data    map[string][]byte
	version map[string]int
	ts      map[string]int64
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{
		data:    make(map[string][]byte),
		version: make(map[string]int),
		ts:      make(map[string]int64),
	}
}

func (s *memCacheStore) Get(key string) ([]byte, int, int64, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, 0, 0, errors.New("miss")
	}
	return v, s.version[key], s.ts[key], nil
}

func (s *memCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	s.data[key] = value
	s.version[key] = version
	s.ts[key] = timestamp
	return nil
}

func (s *memCacheStore) GetStatus() (schema.CacheStatus, error) {
	return schema.CacheStatus{Backend: "memory", Connected: true, TotalEntries: len(s.data)}, nil
}

func (s *memCacheStore) Close() error { return nil }

type cachingManager struct {
	activity contract.CacheStore
}

func (m *cachingManager) GetActivityStore() contract.CacheStore { return m.activity }
func (m *cachingManager) GetResultStore() contract.ResultStore  { return nil }

func TestCachedEventSetRoundTrip(t *testing.T) {
	key := contract.RepoIdentityKey("/tmp/repo")
	source := &mockSource{sets: map[string]*schema.EventSet{key: simpleEventSet(key)}}
	mgr := &cachingManager{activity: newMemCacheStore()}
	cfg := &contract.Config{}

	first, err := cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)
	require.EqualValues(t, 1, source.eventCalls.Load())

	second, err := cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, source.eventCalls.Load(), "second read must come from cache")
	assert.Equal(t, first.RepoID, second.RepoID)
	assert.Len(t, second.Commits, len(first.Commits))
}

func TestCachedEventSetVersionMismatch(t *testing.T) {
	key := contract.RepoIdentityKey("/tmp/repo")
	source := &mockSource{sets: map[string]*schema.EventSet{key: simpleEventSet(key)}}
	store := newMemCacheStore()
	mgr := &cachingManager{activity: store}
	cfg := &contract.Config{}

	_, err := cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)

	// Poison the stored version; the next read must recompute.
	for k := range store.version {
		store.version[k] = currentCacheVersion + 1
	}
	_, err = cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.eventCalls.Load())
}

func TestCachedEventSetStaleEntry(t *testing.T) {
	key := contract.RepoIdentityKey("/tmp/repo")
	source := &mockSource{sets: map[string]*schema.EventSet{key: simpleEventSet(key)}}
	store := newMemCacheStore()
	mgr := &cachingManager{activity: store}
	cfg := &contract.Config{}

	_, err := cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)

	// Age the entry past the TTL.
	for k := range store.ts {
		store.ts[k] = time.Now().Add(-cacheTTL - time.Hour).Unix()
	}
	_, err = cachedEventSet(context.Background(), cfg, source, mgr, "/tmp/repo", key)
	require.NoError(t, err)
	assert.EqualValues(t, 2, source.eventCalls.Load())
}

func TestCachedEventSetWithoutManager(t *testing.T) {
	key := contract.RepoIdentityKey("/tmp/repo")
	source := &mockSource{sets: map[string]*schema.EventSet{key: simpleEventSet(key)}}

	_, err := cachedEventSet(context.Background(), &contract.Config{}, source, nil, "/tmp/repo", key)
	require.NoError(t, err)
	assert.EqualValues(t, 1, source.eventCalls.Load())
}
