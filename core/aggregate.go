// Package core implements the metrics computation engine and the batch
// orchestrator. Everything below the entry points is a pure computation over
// an immutable event set; the only blocking calls are the external
// collaborators behind the contract interfaces.
package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/evamaxfield/repo-statistics/core/stats"
	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

// ErrEmptyHistory marks a repository with no commits inside the analysis window.
var ErrEmptyHistory = errors.New("no commits in analysis window")

// substantialPercentile is the lines-changed percentile above which a commit
// counts as substantial.
const substantialPercentile = 10

// recencyWeeks is the trailing weekly-bucket window for the
// active_weeks_frac_last_year metric.
const recencyWeeks = 52

// ExternalInputs carries the collaborator-supplied metric families that the
// engine merges verbatim instead of computing.
type ExternalInputs struct {
	Platform *schema.PlatformMetrics
	Linter   *schema.LinterMetrics
}

// AnalyzeRepository is the single-repository entry point: it resolves the
// identity, builds the normalized event set (through the activity cache),
// fetches the collaborator inputs concurrently and computes the full metric
// record.
func AnalyzeRepository(
	ctx context.Context,
	cfg *contract.Config,
	identity string,
	source contract.CommitSource,
	platform contract.PlatformClient,
	linter contract.Linter,
	mgr contract.CacheManager,
) (schema.MetricRecord, error) {
	repoID := contract.RepoIdentityKey(identity)

	repoPath, cleanup, err := source.Resolve(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", repoID, err)
	}
	defer cleanup()

	set, err := cachedEventSet(ctx, cfg, source, mgr, repoPath, repoID)
	if err != nil {
		return nil, fmt.Errorf("read history of %s: %w", repoID, err)
	}

	ext, err := fetchExternalInputs(ctx, cfg, identity, repoPath, platform, linter)
	if err != nil {
		return nil, err
	}

	return ComputeMetrics(set, cfg, ext, time.Now().UTC())
}

// fetchExternalInputs gathers the platform and linter families concurrently.
// A disabled toggle skips the fetch entirely.
func fetchExternalInputs(
	ctx context.Context,
	cfg *contract.Config,
	identity, repoPath string,
	platform contract.PlatformClient,
	linter contract.Linter,
) (*ExternalInputs, error) {
	ext := &ExternalInputs{}
	g, gctx := errgroup.WithContext(ctx)

	if cfg.ComputePlatform && platform != nil {
		owner, name, err := contract.SplitOwnerName(identity)
		if err != nil {
			// Local working trees have no platform counterpart.
			contract.LogWarn("Skipping platform metrics", err)
		} else {
			g.Go(func() error {
				pm, err := platform.Fetch(gctx, owner, name)
				if err != nil {
					return fmt.Errorf("platform metrics for %s/%s: %w", owner, name, err)
				}
				ext.Platform = &pm
				return nil
			})
		}
	}

	if cfg.ComputeRepoLinter && linter != nil {
		g.Go(func() error {
			lm, err := linter.Scan(repoPath)
			if err != nil {
				return fmt.Errorf("linter scan: %w", err)
			}
			ext.Linter = &lm
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ext, nil
}

// ComputeMetrics turns one normalized event set into the full metric record.
// The key set of the result is the complete catalogue regardless of toggles;
// disabled families keep their nil values. Returns ErrEmptyHistory when the
// analysis window leaves no commits.
func ComputeMetrics(set *schema.EventSet, cfg *contract.Config, ext *ExternalInputs, processedAt time.Time) (schema.MetricRecord, error) {
	if ext == nil {
		ext = &ExternalInputs{}
	}

	commits := filterWindow(set.Commits, cfg.StartTime, cfg.EndTime)
	if len(commits) == 0 {
		return nil, ErrEmptyHistory
	}
	commits = markDerivedFlags(commits, set.Contributors, cfg.BotNameIndicators, cfg.BotEmailIndicators)

	rec := schema.NewMetricRecord()

	fillProvenance(rec, set.RepoID, cfg, processedAt)
	fillSummary(rec, commits)
	fillCommitSize(rec, commits)
	fillFileScope(rec, commits)

	if cfg.ComputeTimeseries {
		weekly := BuildPeriodSeries(commits, schema.Weekly)
		monthly := BuildPeriodSeries(commits, schema.Monthly)
		fillSeries(rec, "weekly", weekly)
		fillSeries(rec, "monthly", monthly)
		fillEpisodes(rec, "", weekly)
		fillEpisodes(rec, "monthly_", monthly)
		fillRecency(rec, commits, weekly, processedAt)
	}

	groups := GroupByContributor(commits)
	if cfg.ComputeContributorStability {
		fillStability(rec, commits, groups)
	}
	if cfg.ComputeContributorAbsence {
		fillAbsenceFactors(rec, groups)
	}
	if cfg.ComputeContributorDistribution {
		fillDistribution(rec, commits, groups)
	}

	if cfg.ComputeTags {
		fillTags(rec, filterTagWindow(set.Tags, cfg.StartTime, cfg.EndTime))
	}
	if cfg.ComputeRepoLinter && ext.Linter != nil {
		fillLinter(rec, *ext.Linter)
	}
	if cfg.ComputePlatform && ext.Platform != nil {
		fillPlatform(rec, *ext.Platform)
	}

	return rec, nil
}

// filterWindow keeps commits inside the half-open [start, end) window. Zero
// bounds leave that side open. Input order is preserved.
func filterWindow(commits []schema.CommitEvent, start, end time.Time) []schema.CommitEvent {
	if start.IsZero() && end.IsZero() {
		return commits
	}
	out := make([]schema.CommitEvent, 0, len(commits))
	for _, c := range commits {
		ts := c.Timestamp
		if !start.IsZero() && ts.Before(start) {
			continue
		}
		if !end.IsZero() && !ts.Before(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// filterTagWindow applies the same half-open window to tag records.
func filterTagWindow(tags []schema.TagRecord, start, end time.Time) []schema.TagRecord {
	if start.IsZero() && end.IsZero() {
		return tags
	}
	out := make([]schema.TagRecord, 0, len(tags))
	for _, t := range tags {
		if !start.IsZero() && t.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && !t.Timestamp.Before(end) {
			continue
		}
		out = append(out, t)
	}
	return out
}

// markDerivedFlags rebuilds the commit slice with the two derived flags set:
// bot authorship from the indicator substrings against the contributor's
// name and email, and substantiality from the lines-changed distribution of
// the windowed commits. The input slice is never mutated.
func markDerivedFlags(
	commits []schema.CommitEvent,
	contributors map[string]schema.ContributorIdentity,
	nameIndicators, emailIndicators []string,
) []schema.CommitEvent {
	lines := make([]float64, len(commits))
	for i, c := range commits {
		lines[i] = float64(c.LinesChanged())
	}
	threshold := stats.Percentile(lines, substantialPercentile)

	out := make([]schema.CommitEvent, len(commits))
	for i, c := range commits {
		c.IsSubstantial = float64(c.LinesChanged()) > threshold
		identity := contributors[c.Contributor]
		c.IsBot = matchesAny(identity.Name, nameIndicators) || matchesAny(identity.Email, emailIndicators)
		out[i] = c
	}
	return out
}

func fillProvenance(rec schema.MetricRecord, repoID string, cfg *contract.Config, processedAt time.Time) {
	rec["repo_id"] = repoID
	if !cfg.StartTime.IsZero() {
		rec["start_datetime"] = cfg.StartTime.UTC().Format(time.RFC3339)
	}
	if !cfg.EndTime.IsZero() {
		rec["end_datetime"] = cfg.EndTime.UTC().Format(time.RFC3339)
	}
	rec["processed_at"] = processedAt.Format(time.RFC3339)
}

func fillSummary(rec schema.MetricRecord, commits []schema.CommitEvent) {
	rec["commits_count"] = len(commits)

	nonBot := 0
	contributors := make(map[string]struct{})
	for _, c := range commits {
		if !c.IsBot {
			nonBot++
			contributors[c.Contributor] = struct{}{}
		}
	}
	rec["non_bot_commits_count"] = nonBot
	rec["unique_contributors_count"] = len(contributors)

	first := commits[0].Timestamp
	last := commits[len(commits)-1].Timestamp
	rec["first_commit_datetime"] = first.UTC().Format(time.RFC3339)
	rec["last_commit_datetime"] = last.UTC().Format(time.RFC3339)
	rec["project_duration_days"] = contract.DaysBetween(first, last)
}

func fillCommitSize(rec schema.MetricRecord, commits []schema.CommitEvent) {
	lines := make([]float64, len(commits))
	substantial := 0
	for i, c := range commits {
		lines[i] = float64(c.LinesChanged())
		if c.IsSubstantial {
			substantial++
		}
	}
	if m, ok := stats.Mean(lines); ok {
		rec["mean_lines_changed"] = m
	}
	if m, ok := stats.Median(lines); ok {
		rec["median_lines_changed"] = m
	}
	rec["substantial_commits_count"] = substantial

	// Inter-commit intervals are undefined for single-commit histories.
	if len(commits) >= 2 {
		intervals := make([]float64, 0, len(commits)-1)
		for i := 1; i < len(commits); i++ {
			intervals = append(intervals, commits[i].Timestamp.Sub(commits[i-1].Timestamp).Hours())
		}
		if m, ok := stats.Mean(intervals); ok {
			rec["mean_commit_interval_hours"] = m
		}
		if m, ok := stats.Median(intervals); ok {
			rec["median_commit_interval_hours"] = m
		}
	}
}

func fillFileScope(rec schema.MetricRecord, commits []schema.CommitEvent) {
	files := make(map[string]struct{})
	var fileTouches, codeLines, allLines int
	for _, c := range commits {
		fileTouches += len(c.Files)
		for _, f := range c.Files {
			files[f.Path] = struct{}{}
		}
		codeLines += c.CodeLinesChanged()
		allLines += c.LinesChanged()
	}
	rec["distinct_files_count"] = len(files)
	rec["mean_files_per_commit"] = float64(fileTouches) / float64(len(commits))
	if allLines > 0 {
		rec["code_lines_changed_frac"] = float64(codeLines) / float64(allLines)
	}
}

func fillSeries(rec schema.MetricRecord, prefix string, series schema.PeriodSeries) {
	counts := series.CommitCounts()
	lines := series.LineCounts()

	rec[prefix+"_commit_entropy"] = stats.Entropy(counts)
	if cv, ok := stats.Variation(counts); ok {
		rec[prefix+"_commit_variation"] = cv
	}
	rec[prefix+"_lines_entropy"] = stats.Entropy(lines)
	if cv, ok := stats.Variation(lines); ok {
		rec[prefix+"_lines_variation"] = cv
	}

	if n := len(series.Buckets); n > 0 {
		active := 0
		for _, b := range series.Buckets {
			if b.Active() {
				active++
			}
		}
		rec[prefix+"_active_frac"] = float64(active) / float64(n)
	}
}

func fillEpisodes(rec schema.MetricRecord, prefix string, series schema.PeriodSeries) {
	active, inactive := SplitRuns(DetectEpisodes(series.ActivityFlags()))

	if s, ok := stats.SpanStats(active); ok {
		rec[prefix+"median_commit_span"] = s.Median
		rec[prefix+"mean_commit_span"] = s.Mean
		rec[prefix+"std_commit_span"] = s.Std
	}
	if s, ok := stats.SpanStats(inactive); ok {
		rec[prefix+"median_no_commit_span"] = s.Median
		rec[prefix+"mean_no_commit_span"] = s.Mean
		rec[prefix+"std_no_commit_span"] = s.Std
	}
}

// fillRecency derives the freshness metrics: days since the newest commit at
// processing time, and the active fraction of the trailing year of weekly
// buckets (capped at the series length for young projects).
func fillRecency(rec schema.MetricRecord, commits []schema.CommitEvent, weekly schema.PeriodSeries, processedAt time.Time) {
	last := commits[len(commits)-1].Timestamp
	rec["days_since_last_commit"] = contract.DaysBetween(last, processedAt)

	n := len(weekly.Buckets)
	if n == 0 {
		return
	}
	window := recencyWeeks
	if n < window {
		window = n
	}
	active := 0
	for _, b := range weekly.Buckets[n-window:] {
		if b.Active() {
			active++
		}
	}
	rec["active_weeks_frac_last_year"] = float64(active) / float64(window)
}

func fillStability(rec schema.MetricRecord, commits []schema.CommitEvent, groups ContributorGroups) {
	s := ContributorStability(groups)
	rec["stable_contributors_count"] = s.StableCount
	rec["transient_contributors_count"] = s.TransientCount
	if !s.HasSpans {
		return
	}
	rec["median_contribution_span_days"] = s.MedianSpanDays
	rec["mean_contribution_span_days"] = s.MeanSpanDays

	duration := contract.DaysBetween(commits[0].Timestamp, commits[len(commits)-1].Timestamp)
	if duration > 0 {
		rec["normalized_median_contribution_span"] = s.MedianSpanDays / duration
		rec["normalized_mean_contribution_span"] = s.MeanSpanDays / duration
	}
}

func fillAbsenceFactors(rec schema.MetricRecord, groups ContributorGroups) {
	if n, ok := AbsenceFactor(groups, true); ok {
		rec["contributor_absence_factor_code"] = n
	}
	if n, ok := AbsenceFactor(groups, false); ok {
		rec["contributor_absence_factor_all"] = n
	}
}

func fillDistribution(rec schema.MetricRecord, commits []schema.CommitEvent, groups ContributorGroups) {
	commitGini, linesGini := ContributorGini(groups)
	rec["contributor_commit_gini"] = commitGini
	rec["contributor_lines_gini"] = linesGini

	if score, ok := SpecializationScore(groups); ok {
		rec["specialization_score"] = score
	}
	specialists, generalists := SpecialistCounts(groups)
	rec["specialist_contributors_count"] = specialists
	rec["generalist_contributors_count"] = generalists

	same, change := Turnover(commits)
	rec["turnover_same_count"] = same
	rec["turnover_change_count"] = change
}

func fillTags(rec schema.MetricRecord, tags []schema.TagRecord) {
	rec["tags_count"] = len(tags)
	semver := 0
	for _, t := range tags {
		if t.IsSemVer {
			semver++
		}
	}
	rec["semver_tags_count"] = semver

	if len(tags) == 0 {
		return
	}
	times := make([]time.Time, len(tags))
	for i, t := range tags {
		times[i] = t.Timestamp
	}
	sort.Slice(times, func(i, j int) bool { return times[i].Before(times[j]) })
	rec["last_tag_datetime"] = times[len(times)-1].UTC().Format(time.RFC3339)

	if len(times) >= 2 {
		gaps := make([]float64, 0, len(times)-1)
		for i := 1; i < len(times); i++ {
			gaps = append(gaps, contract.DaysBetween(times[i-1], times[i]))
		}
		if m, ok := stats.Mean(gaps); ok {
			rec["mean_days_between_tags"] = m
		}
	}
}

func fillLinter(rec schema.MetricRecord, lm schema.LinterMetrics) {
	rec["has_license"] = lm.HasLicense
	rec["has_readme"] = lm.HasReadme
	rec["has_changelog"] = lm.HasChangelog
	rec["has_contributing"] = lm.HasContributing
	rec["has_ci_config"] = lm.HasCIConfig
}

func fillPlatform(rec schema.MetricRecord, pm schema.PlatformMetrics) {
	rec["stargazers_count"] = pm.StargazersCount
	rec["forks_count"] = pm.ForksCount
	rec["watchers_count"] = pm.WatchersCount
	rec["open_issues_count"] = pm.OpenIssuesCount
	rec["primary_language"] = pm.PrimaryLanguage
}

func matchesAny(s string, indicators []string) bool {
	lowered := strings.ToLower(s)
	for _, ind := range indicators {
		if ind == "" {
			continue
		}
		if strings.Contains(lowered, strings.ToLower(ind)) {
			return true
		}
	}
	return false
}
