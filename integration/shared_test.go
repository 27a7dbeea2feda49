//go:build database

package integration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evamaxfield/repo-statistics/internal/iocache"
	"github.com/evamaxfield/repo-statistics/schema"
)

// exerciseStores runs the full persistence round trip against a live server:
// migrate up, upsert and reload metrics and errors, cache set/get, then
// migrate back down. Both container tests share it so the MySQL and
// PostgreSQL dialects stay behaviorally identical.
func exerciseStores(t *testing.T, backend schema.DatabaseBackend, connStr string) {
	t.Helper()

	require.NoError(t, iocache.MigrateResults(backend, connStr, -1))

	results, err := iocache.NewResultStore(backend, connStr)
	require.NoError(t, err)

	repoID := "https://github.com/example/sustained"
	first := schema.NewMetricRecord()
	first["commits_count"] = 3
	require.NoError(t, results.UpsertMetrics(repoID, first, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)))

	// A second write for the same identity must replace the first row.
	second := schema.NewMetricRecord()
	second["commits_count"] = 9
	processedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, results.UpsertMetrics(repoID, second, processedAt))

	keys, err := results.ListMetricsKeys()
	require.NoError(t, err)
	assert.Equal(t, []string{repoID}, keys)

	table, err := results.LoadMetricsTable()
	require.NoError(t, err)
	require.Len(t, table, 1)
	assert.EqualValues(t, 9, table[repoID]["commits_count"])

	brokenID := "https://github.com/example/broken"
	require.NoError(t, results.UpsertError(schema.RepoError{
		RepoID:   brokenID,
		Message:  "clone failed",
		FailedAt: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
	}))
	require.NoError(t, results.UpsertError(schema.RepoError{
		RepoID:   brokenID,
		Message:  "history unreadable",
		FailedAt: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}))

	errTable, err := results.LoadErrorsTable()
	require.NoError(t, err)
	require.Len(t, errTable, 1)
	assert.Equal(t, "history unreadable", errTable[brokenID].Message)

	status, err := results.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, string(backend), status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, status.MetricsRows)
	assert.Equal(t, 1, status.ErrorRows)
	assert.Equal(t, processedAt.Unix(), status.LastProcessed.Unix())

	require.NoError(t, results.Close())

	cache, err := iocache.NewCacheStore("activity_cache", backend, connStr)
	require.NoError(t, err)

	ts := time.Now().Unix()
	require.NoError(t, cache.Set("repo-a", []byte("first"), 1, ts))
	require.NoError(t, cache.Set("repo-a", []byte("second"), 2, ts+10))
	require.NoError(t, cache.Set("repo-b", []byte("other"), 2, ts))

	data, version, gotTs, err := cache.Get("repo-a")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
	assert.Equal(t, 2, version)
	assert.Equal(t, ts+10, gotTs)

	cacheStatus, err := cache.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, 2, cacheStatus.TotalEntries)
	// Server backends report a per-entry size estimate rather than a file size.
	assert.Equal(t, int64(2000), cacheStatus.TableSizeBytes)

	require.NoError(t, cache.Close())

	require.NoError(t, iocache.MigrateResults(backend, connStr, 0))
}
