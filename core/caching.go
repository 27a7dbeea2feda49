package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// currentCacheVersion defines the version of the cached event set layout.
const currentCacheVersion = 1

// cacheTTL bounds how long a cached event set stays valid even when the
// HEAD hash is unchanged (clock-skewed clones, force pushes).
const cacheTTL = 7 * 24 * time.Hour

// cachedEventSet reads the normalized event set through the activity cache,
// falling back to a direct read when no cache store is configured.
func cachedEventSet(
	ctx context.Context,
	cfg *contract.Config,
	source contract.CommitSource,
	mgr contract.CacheManager,
	repoPath, repoID string,
) (*schema.EventSet, error) {
	var activity contract.CacheStore
	if mgr != nil {
		activity = mgr.GetActivityStore()
	}
	if activity == nil {
		return source.Events(ctx, repoPath, repoID)
	}

	key := eventSetCacheKey(ctx, cfg, source, repoPath, repoID)

	if set := checkEventSetHit(activity, key); set != nil {
		return set, nil
	}

	return readAndStore(ctx, source, activity, key, repoPath, repoID)
}

// checkEventSetHit attempts to retrieve and validate a cached event set.
func checkEventSetHit(activity contract.CacheStore, key string) *schema.EventSet {
	data, version, ts, err := activity.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version == currentCacheVersion {
		entryTimestamp := time.Unix(ts, 0)
		if time.Since(entryTimestamp) <= cacheTTL {
			var set schema.EventSet
			if err := json.Unmarshal(data, &set); err == nil {
				return &set // Cache hit
			}
		}
	}

	return nil // Cache miss (stale or version mismatch)
}

// readAndStore reads the history and stores it in the cache.
func readAndStore(
	ctx context.Context,
	source contract.CommitSource,
	activity contract.CacheStore,
	key, repoPath, repoID string,
) (*schema.EventSet, error) {
	set, err := source.Events(ctx, repoPath, repoID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(set); err == nil {
		_ = activity.Set(key, data, currentCacheVersion, time.Now().Unix())
	}

	return set, nil
}

// eventSetCacheKey creates a unique key for one repository's normalized
// history. The HEAD hash invalidates the entry when the repository moves;
// the window bounds keep differently windowed runs apart.
func eventSetCacheKey(ctx context.Context, cfg *contract.Config, source contract.CommitSource, repoPath, repoID string) string {
	repoHash, err := source.RepoHash(ctx, repoPath)
	if err != nil {
		repoHash = ""
	}

	key := fmt.Sprintf("%s:%d:%d:%s",
		repoID,
		cfg.StartTime.Unix(),
		cfg.EndTime.Unix(),
		repoHash,
	)
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
