package iocache

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/evamaxfield/repo-statistics/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClearCacheSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewCacheStore(activityTable, schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Set("key", []byte("value"), 1, 42))
	require.NoError(t, store.Close())

	require.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))

	// Clearing an already-missing file is not an error
	assert.NoError(t, ClearCache(schema.SQLiteBackend, dbPath, ""))
}

func TestClearCacheSQLiteEmptyPath(t *testing.T) {
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
}

func TestClearCacheNoneBackend(t *testing.T) {
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
}

func TestClearResultsSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	store, err := NewResultStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	require.NoError(t, ClearResults(schema.SQLiteBackend, dbPath, ""))

	_, err = os.Stat(dbPath)
	assert.True(t, os.IsNotExist(err))
}

func TestClearResultsUnsupportedBackend(t *testing.T) {
	assert.Error(t, ClearResults(schema.DatabaseBackend("oracle"), "", ""))
}

func TestMigrateResultsSQLite(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "results.db")

	// Up to latest, then a second run is a no-op
	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))
	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, -1))

	// The migrated tables accept result rows
	store, err := NewResultStore(schema.SQLiteBackend, dbPath)
	require.NoError(t, err)
	keys, err := store.ListMetricsKeys()
	require.NoError(t, err)
	assert.Empty(t, keys)
	require.NoError(t, store.Close())

	// Down to zero
	require.NoError(t, MigrateResults(schema.SQLiteBackend, dbPath, 0))
}

func TestMigrateResultsNoneBackend(t *testing.T) {
	assert.Error(t, MigrateResults(schema.NoneBackend, "", -1))
}
