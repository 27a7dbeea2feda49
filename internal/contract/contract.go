// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"
	"time"

	"github.com/evamaxfield/repo-statistics/schema"
)

// CommitSource defines the operations needed to turn a repository identity
// into a normalized event set. This allows the core pipeline to be tested
// without a real git executable.
type CommitSource interface {
	// Resolve turns a repository identity (local path or remote URL) into a
	// working tree path. For remote identities this clones into a temporary
	// directory; cleanup removes it and is non-nil in every success case.
	Resolve(ctx context.Context, identity string) (repoPath string, cleanup func(), err error)

	// Events reads the full commit history, contributor roster and tag list
	// of the repository at repoPath into a normalized event set.
	Events(ctx context.Context, repoPath, repoID string) (*schema.EventSet, error)

	// RepoHash returns the current HEAD commit hash of the repository.
	RepoHash(ctx context.Context, repoPath string) (string, error)
}

// PlatformClient fetches hosting-platform counters for a repository.
type PlatformClient interface {
	Fetch(ctx context.Context, owner, name string) (schema.PlatformMetrics, error)
}

// Linter scans a working tree for documentation and CI artifacts.
type Linter interface {
	Scan(repoPath string) (schema.LinterMetrics, error)
}

// CacheManager defines the interface for managing the persistent stores.
// This allows the storage layer to be mocked for testing.
type CacheManager interface {
	GetActivityStore() CacheStore
	GetResultStore() ResultStore
}

// CacheStore defines the interface for event-set cache storage.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// ResultStore defines the interface for the consolidated metrics and errors
// tables. Upserts are keyed by repository identity and must be idempotent so
// concurrent batch runs and retries never lose or duplicate rows.
type ResultStore interface {
	// UpsertMetrics merges one metric record into the metrics table.
	UpsertMetrics(repoID string, rec schema.MetricRecord, processedAt time.Time) error

	// UpsertError merges one failure into the errors table.
	UpsertError(e schema.RepoError) error

	// ListMetricsKeys returns the repository identities present in the
	// metrics table, used for the cache partition at batch start.
	ListMetricsKeys() ([]string, error)

	// LoadMetricsTable reads the full metrics table keyed by repository identity.
	LoadMetricsTable() (map[string]schema.MetricRecord, error)

	// LoadErrorsTable reads the full errors table keyed by repository identity.
	LoadErrorsTable() (map[string]schema.RepoError, error)

	// GetStatus returns status information about the result store.
	GetStatus() (schema.ResultStoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
