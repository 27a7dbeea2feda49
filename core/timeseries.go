package core

import (
	"time"

	"github.com/evamaxfield/repo-statistics/schema"
)

// bucketStart returns the calendar start of the bucket containing t for the
// given granularity: the preceding UTC Monday for weekly, the first day of
// the month for monthly.
func bucketStart(t time.Time, g schema.Granularity) time.Time {
	t = t.UTC()
	switch g {
	case schema.Monthly:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
		// time.Weekday numbers Sunday as 0; shift so Monday opens the week.
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	}
}

// bucketEnd returns the exclusive end of a bucket opening at start.
func bucketEnd(start time.Time, g schema.Granularity) time.Time {
	if g == schema.Monthly {
		return start.AddDate(0, 1, 0)
	}
	return start.AddDate(0, 0, 7)
}

// BuildPeriodSeries buckets commits into a contiguous, gap-filled sequence
// of calendar periods spanning from the first commit's bucket to the last
// commit's bucket inclusive. Periods with zero commits are explicit buckets;
// dropping them would corrupt every downstream entropy and span metric.
// Commits must be ordered ascending by timestamp.
func BuildPeriodSeries(commits []schema.CommitEvent, g schema.Granularity) schema.PeriodSeries {
	series := schema.PeriodSeries{Granularity: g}
	if len(commits) == 0 {
		return series
	}

	first := bucketStart(commits[0].Timestamp, g)
	last := bucketStart(commits[len(commits)-1].Timestamp, g)

	for start := first; !start.After(last); start = bucketEnd(start, g) {
		series.Buckets = append(series.Buckets, schema.TimePeriodBucket{
			Start: start,
			End:   bucketEnd(start, g),
		})
	}

	idx := 0
	for _, c := range commits {
		ts := c.Timestamp.UTC()
		for idx < len(series.Buckets)-1 && !ts.Before(series.Buckets[idx].End) {
			idx++
		}
		series.Buckets[idx].Commits++
		series.Buckets[idx].LinesChanged += c.LinesChanged()
	}
	return series
}
