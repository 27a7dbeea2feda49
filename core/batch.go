package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// BatchDeps bundles the external collaborators a batch run needs.
type BatchDeps struct {
	Source   contract.CommitSource
	Platform contract.PlatformClient
	Linter   contract.Linter
	Manager  contract.CacheManager
}

// repoOutcome is one worker's report for one repository.
type repoOutcome struct {
	repoID   string
	identity string
	rec      schema.MetricRecord
	err      error
}

// RunBatch runs the metrics engine over every requested repository. Each
// repository walks PENDING -> (CACHED | RUNNING) -> (SUCCEEDED | FAILED);
// one failure never aborts sibling work. Results merge into the persistent
// tables under a single-writer discipline, so the output is identical
// regardless of worker count.
func RunBatch(ctx context.Context, cfg *contract.Config, deps *BatchDeps) (*schema.BatchResult, error) {
	result := schema.NewBatchResult()

	// Deduplicate by identity key while preserving input order.
	identities := make(map[string]string, len(cfg.Repos))
	var ordered []string
	for _, repo := range cfg.Repos {
		key := contract.RepoIdentityKey(repo)
		if _, seen := identities[key]; seen {
			continue
		}
		identities[key] = repo
		ordered = append(ordered, key)
		result.States[key] = schema.PendingState
	}

	var store contract.ResultStore
	if deps.Manager != nil {
		store = deps.Manager.GetResultStore()
	}

	toProcess := partitionCached(cfg, store, ordered, result)

	for start := 0; start < len(toProcess); start += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := start + cfg.BatchSize
		if end > len(toProcess) {
			end = len(toProcess)
		}
		runChunk(ctx, cfg, deps, store, identities, toProcess[start:end], result)
	}

	mergeCachedRows(cfg, store, result)
	return result, nil
}

// partitionCached splits the repository list into already-cached and
// to-process sets by consulting the metrics table, unless the caller forces
// full reprocessing.
func partitionCached(cfg *contract.Config, store contract.ResultStore, ordered []string, result *schema.BatchResult) []string {
	if cfg.IgnoreCachedResults || store == nil {
		return ordered
	}

	keys, err := store.ListMetricsKeys()
	if err != nil {
		contract.LogWarn("Cache partition failed, reprocessing everything", err)
		return ordered
	}
	cached := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		cached[k] = struct{}{}
	}

	var toProcess []string
	for _, key := range ordered {
		if _, hit := cached[key]; hit {
			result.States[key] = schema.CachedState
		} else {
			toProcess = append(toProcess, key)
		}
	}
	return toProcess
}

// runChunk dispatches one chunk of repositories across the worker pool and
// merges the outcomes. The merge runs on this goroutine only.
func runChunk(
	ctx context.Context,
	cfg *contract.Config,
	deps *BatchDeps,
	store contract.ResultStore,
	identities map[string]string,
	chunk []string,
	result *schema.BatchResult,
) {
	repoCh := make(chan string, len(chunk))
	outCh := make(chan repoOutcome, len(chunk))
	var wg sync.WaitGroup

	for range cfg.Workers {
		wg.Go(func() {
			for key := range repoCh {
				identity := identities[key]
				rec, err := analyzeGuarded(ctx, cfg, identity, deps)
				outCh <- repoOutcome{repoID: key, identity: identity, rec: rec, err: err}
			}
		})
	}

	for _, key := range chunk {
		result.States[key] = schema.RunningState
		repoCh <- key
	}
	close(repoCh)

	wg.Wait()
	close(outCh)

	for out := range outCh {
		mergeOutcome(store, result, out)
	}
}

// analyzeGuarded invokes the single-repository pipeline with a panic
// boundary, so a crash in one repository degrades to a row in the errors table.
func analyzeGuarded(ctx context.Context, cfg *contract.Config, identity string, deps *BatchDeps) (rec schema.MetricRecord, err error) {
	defer func() {
		if r := recover(); r != nil {
			rec = nil
			err = fmt.Errorf("panic during analysis: %v", r)
		}
	}()
	return AnalyzeRepository(ctx, cfg, identity, deps.Source, deps.Platform, deps.Linter, deps.Manager)
}

// mergeOutcome records one outcome into the consolidated tables and the
// persistent store. Upserts are idempotent, so retries never duplicate rows.
func mergeOutcome(store contract.ResultStore, result *schema.BatchResult, out repoOutcome) {
	if out.err != nil {
		e := schema.RepoError{
			RepoID:   out.repoID,
			Message:  out.err.Error(),
			FailedAt: time.Now().UTC(),
		}
		result.Errors[out.repoID] = e
		result.States[out.repoID] = schema.FailedState
		if store != nil {
			if err := store.UpsertError(e); err != nil {
				contract.LogWarn("Persisting error row failed", err)
			}
		}
		return
	}

	result.Metrics[out.repoID] = out.rec
	result.States[out.repoID] = schema.SucceededState
	if store != nil {
		if err := store.UpsertMetrics(out.repoID, out.rec, time.Now().UTC()); err != nil {
			contract.LogWarn("Persisting metrics row failed", err)
		}
	}
}

// disabledFamilies lists the families the current toggles leave unset. A
// family shared by several toggles counts only when all of them are off.
func disabledFamilies(cfg *contract.Config) []schema.MetricFamily {
	var fams []schema.MetricFamily
	if !cfg.ComputeTimeseries {
		fams = append(fams,
			schema.FamilyWeeklySeries,
			schema.FamilyMonthlySeries,
			schema.FamilyEpisodes,
			schema.FamilyRecency,
		)
	}
	if !cfg.ComputeContributorStability {
		fams = append(fams, schema.FamilyStability)
	}
	if !cfg.ComputeContributorDistribution && !cfg.ComputeContributorAbsence {
		fams = append(fams, schema.FamilyDistribution)
	}
	if !cfg.ComputeTags {
		fams = append(fams, schema.FamilyTags)
	}
	if !cfg.ComputeRepoLinter {
		fams = append(fams, schema.FamilyRepoLinter)
	}
	if !cfg.ComputePlatform {
		fams = append(fams, schema.FamilyPlatform)
	}
	return fams
}

// mergeCachedRows backfills the metric records of cache-hit repositories
// from the persistent metrics table. Families the current run disables are
// nulled, so a stale row never surfaces values a fresh run would not compute.
func mergeCachedRows(cfg *contract.Config, store contract.ResultStore, result *schema.BatchResult) {
	hasCached := false
	for _, state := range result.States {
		if state == schema.CachedState {
			hasCached = true
			break
		}
	}
	if !hasCached || store == nil {
		return
	}

	table, err := store.LoadMetricsTable()
	if err != nil {
		contract.LogWarn("Loading cached metrics rows failed", err)
		return
	}
	disabled := disabledFamilies(cfg)
	for key, state := range result.States {
		if state != schema.CachedState {
			continue
		}
		if rec, ok := table[key]; ok {
			for _, fam := range disabled {
				rec.NullFamily(fam)
			}
			result.Metrics[key] = rec
		}
	}
}
