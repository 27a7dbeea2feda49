package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evamaxfield/repo-statistics/schema"
)

func commitAt(t time.Time, lines int) schema.CommitEvent {
	return schema.CommitEvent{
		Hash:        "deadbeef",
		Contributor: "alice",
		Timestamp:   t,
		Additions:   lines,
	}
}

func TestBucketStartWeekly(t *testing.T) {
	// 2024-03-14 is a Thursday; its week opens Monday 2024-03-11.
	got := bucketStart(time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC), schema.Weekly)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC), got)

	// A Monday is its own week start.
	monday := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, bucketStart(monday, schema.Weekly))

	// Sunday belongs to the week that opened six days earlier.
	got = bucketStart(time.Date(2024, 3, 17, 23, 59, 0, 0, time.UTC), schema.Weekly)
	assert.Equal(t, monday, got)
}

func TestBucketStartMonthly(t *testing.T) {
	got := bucketStart(time.Date(2024, 3, 14, 15, 30, 0, 0, time.UTC), schema.Monthly)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestBuildPeriodSeriesEmpty(t *testing.T) {
	series := BuildPeriodSeries(nil, schema.Weekly)
	assert.Empty(t, series.Buckets)
}

func TestBuildPeriodSeriesGapFilled(t *testing.T) {
	// Commits in weeks 1 and 3; week 2 must appear as an explicit zero bucket.
	commits := []schema.CommitEvent{
		commitAt(time.Date(2024, 3, 12, 10, 0, 0, 0, time.UTC), 5),
		commitAt(time.Date(2024, 3, 13, 10, 0, 0, 0, time.UTC), 7),
		commitAt(time.Date(2024, 3, 26, 10, 0, 0, 0, time.UTC), 3),
	}
	series := BuildPeriodSeries(commits, schema.Weekly)
	require.Len(t, series.Buckets, 3)

	assert.Equal(t, 2, series.Buckets[0].Commits)
	assert.Equal(t, 12, series.Buckets[0].LinesChanged)
	assert.Equal(t, 0, series.Buckets[1].Commits)
	assert.Equal(t, 0, series.Buckets[1].LinesChanged)
	assert.Equal(t, 1, series.Buckets[2].Commits)

	for i, b := range series.Buckets {
		assert.Equal(t, b.Start.AddDate(0, 0, 7), b.End)
		if i > 0 {
			assert.Equal(t, series.Buckets[i-1].End, b.Start, "buckets must be contiguous")
		}
	}
}

func TestBuildPeriodSeriesMonthly(t *testing.T) {
	commits := []schema.CommitEvent{
		commitAt(time.Date(2024, 1, 31, 23, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), 2),
	}
	series := BuildPeriodSeries(commits, schema.Monthly)
	require.Len(t, series.Buckets, 4)
	assert.Equal(t, 1, series.Buckets[0].Commits)
	assert.Equal(t, 0, series.Buckets[1].Commits)
	assert.Equal(t, 0, series.Buckets[2].Commits)
	assert.Equal(t, 1, series.Buckets[3].Commits)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), series.Buckets[0].Start)
}

func TestBuildPeriodSeriesSingleCommit(t *testing.T) {
	commits := []schema.CommitEvent{
		commitAt(time.Date(2024, 3, 14, 10, 0, 0, 0, time.UTC), 9),
	}
	series := BuildPeriodSeries(commits, schema.Weekly)
	require.Len(t, series.Buckets, 1)
	assert.Equal(t, 1, series.Buckets[0].Commits)
	assert.Equal(t, []float64{1}, series.CommitCounts())
	assert.Equal(t, []int{1}, series.ActivityFlags())
}

func TestActivityFlags(t *testing.T) {
	commits := []schema.CommitEvent{
		commitAt(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 3, 12, 1, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 3, 12, 2, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 3, 26, 0, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 3, 26, 1, 0, 0, 0, time.UTC), 1),
		commitAt(time.Date(2024, 3, 26, 2, 0, 0, 0, time.UTC), 1),
	}
	series := BuildPeriodSeries(commits, schema.Weekly)
	assert.Equal(t, []int{1, 0, 1}, series.ActivityFlags())
	assert.Equal(t, []float64{3, 0, 3}, series.CommitCounts())
}
