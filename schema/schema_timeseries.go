package schema

import "time"

// Granularity is the calendar width of a time-series bucket.
type Granularity string

// All granularities supported by the time-series builder.
const (
	Weekly  Granularity = "weekly"
	Monthly Granularity = "monthly"
)

// TimePeriodBucket is a half-open interval [Start, End) holding the commit
// count and lines-changed sum for that period. Series are contiguous and
// gap-filled: zero-activity periods are explicit buckets, never omitted.
type TimePeriodBucket struct {
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Commits      int       `json:"commits"`
	LinesChanged int       `json:"lines_changed"`
}

// Active reports whether any commit landed in this bucket.
func (b TimePeriodBucket) Active() bool {
	return b.Commits > 0
}

// PeriodSeries is the aligned bucket sequence for one granularity, spanning
// from the first commit's bucket to the last commit's bucket inclusive.
type PeriodSeries struct {
	Granularity Granularity        `json:"granularity"`
	Buckets     []TimePeriodBucket `json:"buckets"`
}

// CommitCounts returns the per-bucket commit counts as weights.
func (s PeriodSeries) CommitCounts() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = float64(b.Commits)
	}
	return out
}

// LineCounts returns the per-bucket lines-changed sums as weights.
func (s PeriodSeries) LineCounts() []float64 {
	out := make([]float64, len(s.Buckets))
	for i, b := range s.Buckets {
		out[i] = float64(b.LinesChanged)
	}
	return out
}

// ActivityFlags returns the binary activity sequence (1 = active bucket).
func (s PeriodSeries) ActivityFlags() []int {
	out := make([]int, len(s.Buckets))
	for i, b := range s.Buckets {
		if b.Active() {
			out[i] = 1
		}
	}
	return out
}

// EpisodeState is the shared activity state of a run of buckets.
type EpisodeState string

// All episode states.
const (
	ActiveEpisode   EpisodeState = "active"
	InactiveEpisode EpisodeState = "inactive"
)

// Episode is a maximal run of consecutive buckets sharing one activity state.
type Episode struct {
	State  EpisodeState `json:"state"`
	Length int          `json:"length"` // Number of buckets, always >= 1
}
