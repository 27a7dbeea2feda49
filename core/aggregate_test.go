package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evamaxfield/repo-statistics/internal/contract"
	"github.com/evamaxfield/repo-statistics/schema"
)

func allTogglesConfig() *contract.Config {
	return &contract.Config{
		ComputeTimeseries:              true,
		ComputeContributorStability:    true,
		ComputeContributorAbsence:      true,
		ComputeContributorDistribution: true,
		ComputeRepoLinter:              true,
		ComputeTags:                    true,
		ComputePlatform:                true,
		BotNameIndicators:              contract.DefaultBotNameIndicators,
		BotEmailIndicators:             contract.DefaultBotEmailIndicators,
	}
}

// fixtureEventSet has three commits by alice in week one, three by bob in
// week three, and a dependabot commit, yielding weekly counts [3,0,4,0,...]
// unless stated otherwise per test.
func fixtureEventSet() *schema.EventSet {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(who string, ts time.Time, lines int) schema.CommitEvent {
		return schema.CommitEvent{
			Hash:        who + ts.Format("20060102T150405"),
			Contributor: who,
			Timestamp:   ts,
			Additions:   lines,
			Files:       []schema.FileDelta{{Path: who + ".go", Additions: lines, IsCode: true}},
		}
	}
	return &schema.EventSet{
		RepoID: "https://github.com/example/project",
		Commits: []schema.CommitEvent{
			mk("alice", monday.Add(1*time.Hour), 10),
			mk("alice", monday.Add(2*time.Hour), 20),
			mk("alice", monday.Add(3*time.Hour), 30),
			mk("bob", monday.AddDate(0, 0, 14).Add(1*time.Hour), 40),
			mk("bob", monday.AddDate(0, 0, 14).Add(2*time.Hour), 50),
			mk("dependabot[bot]", monday.AddDate(0, 0, 14).Add(3*time.Hour), 2),
		},
		Contributors: map[string]schema.ContributorIdentity{
			"alice":           {Key: "alice", Name: "Alice", Email: "alice@example.com"},
			"bob":             {Key: "bob", Name: "Bob", Email: "bob@example.com"},
			"dependabot[bot]": {Key: "dependabot[bot]", Name: "dependabot[bot]", Email: "support@dependabot.com"},
		},
		Tags: []schema.TagRecord{
			{Name: "v1.0.0", Timestamp: monday.AddDate(0, 0, 7), IsSemVer: true},
			{Name: "release-a", Timestamp: monday.AddDate(0, 0, 17), IsSemVer: false},
		},
	}
}

func TestComputeMetricsEmptyWindow(t *testing.T) {
	cfg := allTogglesConfig()
	cfg.StartTime = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	cfg.EndTime = time.Date(2031, 1, 1, 0, 0, 0, 0, time.UTC)
	_, err := ComputeMetrics(fixtureEventSet(), cfg, nil, time.Now())
	assert.ErrorIs(t, err, ErrEmptyHistory)
}

func TestComputeMetricsStableKeySet(t *testing.T) {
	processed := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	full, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), nil, processed)
	require.NoError(t, err)

	bare := allTogglesConfig()
	bare.ComputeTimeseries = false
	bare.ComputeContributorStability = false
	bare.ComputeContributorAbsence = false
	bare.ComputeContributorDistribution = false
	bare.ComputeRepoLinter = false
	bare.ComputeTags = false
	bare.ComputePlatform = false
	minimal, err := ComputeMetrics(fixtureEventSet(), bare, nil, processed)
	require.NoError(t, err)

	assert.Len(t, full, schema.CatalogueSize())
	assert.Len(t, minimal, schema.CatalogueSize())
	for key := range full {
		_, ok := minimal[key]
		assert.True(t, ok, "key %s missing from minimal record", key)
	}

	// Every toggled family is nulled, never omitted.
	assert.Nil(t, minimal["weekly_commit_entropy"])
	assert.Nil(t, minimal["stable_contributors_count"])
	assert.Nil(t, minimal["contributor_absence_factor_code"])
	assert.Nil(t, minimal["tags_count"])
	// Always-computed families survive.
	assert.Equal(t, 6, minimal["commits_count"])
}

func TestComputeMetricsSummary(t *testing.T) {
	rec, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 6, rec["commits_count"])
	// The dependabot commit is excluded from the non-bot view only.
	assert.Equal(t, 5, rec["non_bot_commits_count"])
	assert.Equal(t, 2, rec["unique_contributors_count"])
	assert.Equal(t, "2024-01-01T01:00:00Z", rec["first_commit_datetime"])
	assert.InDelta(t, 14.0, rec["project_duration_days"].(float64), 0.2)
}

func TestComputeMetricsSeriesScenario(t *testing.T) {
	// Weekly counts [3,0,3,0]: entropy over two equal active buckets is one
	// bit, and every active/inactive run has length one.
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(ts time.Time) schema.CommitEvent {
		return schema.CommitEvent{Hash: ts.String(), Contributor: "alice", Timestamp: ts, Additions: 1}
	}
	set := &schema.EventSet{
		RepoID: "scenario",
		Commits: []schema.CommitEvent{
			mk(monday), mk(monday.Add(time.Hour)), mk(monday.Add(2 * time.Hour)),
			mk(monday.AddDate(0, 0, 14)), mk(monday.AddDate(0, 0, 14).Add(time.Hour)), mk(monday.AddDate(0, 0, 15)),
			// one trailing zero week is impossible without a later commit, so
			// close with a week-four commit and drop it via the window
			mk(monday.AddDate(0, 0, 28)),
		},
		Contributors: map[string]schema.ContributorIdentity{
			"alice": {Key: "alice", Name: "Alice", Email: "alice@example.com"},
		},
	}
	cfg := allTogglesConfig()
	cfg.EndTime = monday.AddDate(0, 0, 22)

	rec, err := ComputeMetrics(set, cfg, nil, time.Now())
	require.NoError(t, err)

	// Window keeps weeks one and three only: counts [3,0,3].
	assert.InDelta(t, 1.0, rec["weekly_commit_entropy"].(float64), 1e-9)
	assert.Equal(t, 1.0, rec["median_commit_span"])
	assert.Equal(t, 1.0, rec["median_no_commit_span"])
	assert.InDelta(t, 2.0/3.0, rec["weekly_active_frac"].(float64), 1e-9)
}

func TestComputeMetricsContinuousActivityHasNoGaps(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	set := &schema.EventSet{
		RepoID: "steady",
		Commits: []schema.CommitEvent{
			{Hash: "a", Contributor: "alice", Timestamp: monday, Additions: 1},
			{Hash: "b", Contributor: "alice", Timestamp: monday.AddDate(0, 0, 7), Additions: 1},
		},
		Contributors: map[string]schema.ContributorIdentity{
			"alice": {Key: "alice", Name: "Alice", Email: "alice@example.com"},
		},
	}
	rec, err := ComputeMetrics(set, allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)

	assert.Nil(t, rec["median_no_commit_span"], "continuously active series has no inactive runs")
	assert.Equal(t, 2.0, rec["median_commit_span"])
}

func TestComputeMetricsCommitSize(t *testing.T) {
	rec, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)

	assert.InDelta(t, 25.333333, rec["mean_lines_changed"].(float64), 1e-4)
	assert.InDelta(t, 25.0, rec["median_lines_changed"].(float64), 1e-9)
	assert.NotNil(t, rec["mean_commit_interval_hours"])
}

func TestComputeMetricsSingleCommitIntervalsNull(t *testing.T) {
	set := &schema.EventSet{
		RepoID: "solo",
		Commits: []schema.CommitEvent{
			{Hash: "a", Contributor: "alice", Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Additions: 1},
		},
		Contributors: map[string]schema.ContributorIdentity{
			"alice": {Key: "alice", Name: "Alice", Email: "alice@example.com"},
		},
	}
	rec, err := ComputeMetrics(set, allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, rec["mean_commit_interval_hours"])
	assert.Nil(t, rec["median_commit_interval_hours"])
}

func TestComputeMetricsTags(t *testing.T) {
	rec, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 2, rec["tags_count"])
	assert.Equal(t, 1, rec["semver_tags_count"])
	assert.Equal(t, "2024-01-18T00:00:00Z", rec["last_tag_datetime"])
	assert.InDelta(t, 10.0, rec["mean_days_between_tags"].(float64), 1e-9)
}

func TestComputeMetricsExternalMerge(t *testing.T) {
	ext := &ExternalInputs{
		Platform: &schema.PlatformMetrics{StargazersCount: 42, PrimaryLanguage: "Go"},
		Linter:   &schema.LinterMetrics{HasLicense: true, HasReadme: true},
	}
	rec, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), ext, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 42, rec["stargazers_count"])
	assert.Equal(t, "Go", rec["primary_language"])
	assert.Equal(t, true, rec["has_license"])
	assert.Equal(t, false, rec["has_changelog"])
}

func TestComputeMetricsAbsencePolarity(t *testing.T) {
	// One dominant author: one person covers half the code alone, so the
	// factor bottoms out at one (low = concentrated = risky).
	rec, err := ComputeMetrics(fixtureEventSet(), allTogglesConfig(), nil, time.Now())
	require.NoError(t, err)

	factor := rec["contributor_absence_factor_code"].(int)
	assert.GreaterOrEqual(t, factor, 1)
	assert.LessOrEqual(t, factor, rec["unique_contributors_count"].(int))
}

func TestComputeMetricsBotExclusionDisabled(t *testing.T) {
	cfg := allTogglesConfig()
	cfg.BotNameIndicators = nil
	cfg.BotEmailIndicators = nil
	rec, err := ComputeMetrics(fixtureEventSet(), cfg, nil, time.Now())
	require.NoError(t, err)

	assert.Equal(t, 6, rec["non_bot_commits_count"])
	assert.Equal(t, 3, rec["unique_contributors_count"])
}

func TestFilterWindow(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	commits := []schema.CommitEvent{
		{Hash: "a", Timestamp: base},
		{Hash: "b", Timestamp: base.AddDate(0, 0, 5)},
		{Hash: "c", Timestamp: base.AddDate(0, 0, 10)},
	}

	t.Run("open window keeps all", func(t *testing.T) {
		assert.Len(t, filterWindow(commits, time.Time{}, time.Time{}), 3)
	})
	t.Run("half-open end excludes boundary", func(t *testing.T) {
		got := filterWindow(commits, base, base.AddDate(0, 0, 10))
		require.Len(t, got, 2)
		assert.Equal(t, "a", got[0].Hash)
		assert.Equal(t, "b", got[1].Hash)
	})
	t.Run("closed start includes boundary", func(t *testing.T) {
		got := filterWindow(commits, base.AddDate(0, 0, 5), time.Time{})
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[0].Hash)
	})
}

func TestMarkDerivedFlags(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	contributors := map[string]schema.ContributorIdentity{
		"alice":  {Key: "alice", Name: "Alice", Email: "alice@example.com"},
		"depbot": {Key: "depbot", Name: "dependabot[bot]", Email: "x@dependabot.com"},
	}
	commits := []schema.CommitEvent{
		{Hash: "a", Contributor: "alice", Timestamp: base, Additions: 100},
		{Hash: "b", Contributor: "depbot", Timestamp: base, Additions: 1},
	}

	marked := markDerivedFlags(commits, contributors, contract.DefaultBotNameIndicators, contract.DefaultBotEmailIndicators)
	assert.False(t, marked[0].IsBot)
	assert.True(t, marked[1].IsBot)
	assert.True(t, marked[0].IsSubstantial)
	assert.False(t, marked[1].IsSubstantial)

	// Input slice stays untouched.
	assert.False(t, commits[1].IsBot)
}
