package core

import (
	"sort"

	"github.com/evamaxfield/repo-statistics/core/stats"
	"github.com/evamaxfield/repo-statistics/schema"
)

// specialistFileLimit is the distinct-file threshold separating specialists
// from generalists over the project lifetime.
const specialistFileLimit = 3

// turnoverWindowFrac is the share of the commit sequence, by index, taken
// from each end for the turnover comparison.
const turnoverWindowFrac = 0.2

// ContributorGroups maps a canonical contributor key to their commits,
// ordered ascending by timestamp.
type ContributorGroups map[string][]schema.CommitEvent

// GroupByContributor buckets commits per contributor, skipping bot-flagged
// commits. Commit order within each group follows the input order.
func GroupByContributor(commits []schema.CommitEvent) ContributorGroups {
	groups := make(ContributorGroups)
	for _, c := range commits {
		if c.IsBot {
			continue
		}
		groups[c.Contributor] = append(groups[c.Contributor], c)
	}
	return groups
}

// sortedKeys returns contributor keys in lexical order so that aggregates
// over float sums are deterministic across runs.
func (g ContributorGroups) sortedKeys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StabilitySummary is the repository-level view of contributor engagement
// spans. Span statistics are undefined when no contributor exists.
type StabilitySummary struct {
	StableCount    int
	TransientCount int
	MedianSpanDays float64
	MeanSpanDays   float64
	HasSpans       bool
}

// ContributorStability classifies each contributor as stable (commits in at
// least two distinct weekly buckets) or transient, and summarizes engagement
// spans in days (last commit minus first commit per contributor).
func ContributorStability(groups ContributorGroups) StabilitySummary {
	var summary StabilitySummary
	var spans []float64
	for _, key := range groups.sortedKeys() {
		commits := groups[key]
		buckets := make(map[int64]struct{})
		for _, c := range commits {
			buckets[bucketStart(c.Timestamp, schema.Weekly).Unix()] = struct{}{}
		}
		if len(buckets) >= 2 {
			summary.StableCount++
		} else {
			summary.TransientCount++
		}

		first := commits[0].Timestamp
		last := commits[len(commits)-1].Timestamp
		spans = append(spans, last.Sub(first).Hours()/24)
	}

	if s, ok := stats.SpanStats(spans); ok {
		summary.MedianSpanDays = s.Median
		summary.MeanSpanDays = s.Mean
		summary.HasSpans = true
	}
	return summary
}

// AbsenceFactor ranks contributors by total contribution volume descending
// and counts how many are consumed before the running sum reaches half the
// total. Higher counts mean contribution is spread across more people, so
// higher is safer. codeOnly restricts the volume to code-classified files.
// The second return is false when nobody contributed any volume.
func AbsenceFactor(groups ContributorGroups, codeOnly bool) (int, bool) {
	volumes := make([]float64, 0, len(groups))
	var total float64
	for _, key := range groups.sortedKeys() {
		var v float64
		for _, c := range groups[key] {
			if codeOnly {
				v += float64(c.CodeLinesChanged())
			} else {
				v += float64(c.LinesChanged())
			}
		}
		volumes = append(volumes, v)
		total += v
	}
	if total <= 0 {
		return 0, false
	}

	sort.Sort(sort.Reverse(sort.Float64Slice(volumes)))
	var running float64
	for i, v := range volumes {
		running += v
		if running >= total/2 {
			return i + 1, true
		}
	}
	return len(volumes), true
}

// SpecializationScore is the mean per-contributor file entropy across
// contributors that touched more than one distinct file, weighting each
// file by the lines that contributor changed in it. The second return is
// false when no contributor qualifies.
func SpecializationScore(groups ContributorGroups) (float64, bool) {
	var entropies []float64
	for _, key := range groups.sortedKeys() {
		perFile := make(map[string]float64)
		for _, c := range groups[key] {
			for _, f := range c.Files {
				perFile[f.Path] += float64(f.LinesChanged())
			}
		}
		if len(perFile) <= 1 {
			continue
		}
		weights := make([]float64, 0, len(perFile))
		for _, w := range perFile {
			weights = append(weights, w)
		}
		entropies = append(entropies, stats.Entropy(weights))
	}
	return stats.Mean(entropies)
}

// SpecialistCounts splits contributors into specialists (at most three
// distinct files over the project lifetime) and generalists (more).
func SpecialistCounts(groups ContributorGroups) (specialists, generalists int) {
	for _, commits := range groups {
		files := make(map[string]struct{})
		for _, c := range commits {
			for _, f := range c.Files {
				files[f.Path] = struct{}{}
			}
		}
		if len(files) <= specialistFileLimit {
			specialists++
		} else {
			generalists++
		}
	}
	return specialists, generalists
}

// Turnover compares the contributor sets of the first and last 20% of the
// commit sequence by index. same is the intersection size, change the
// symmetric difference size. Bot commits are skipped before windowing.
func Turnover(commits []schema.CommitEvent) (same, change int) {
	var human []schema.CommitEvent
	for _, c := range commits {
		if !c.IsBot {
			human = append(human, c)
		}
	}
	if len(human) == 0 {
		return 0, 0
	}

	window := int(float64(len(human)) * turnoverWindowFrac)
	if window < 1 {
		window = 1
	}

	early := make(map[string]struct{})
	for _, c := range human[:window] {
		early[c.Contributor] = struct{}{}
	}
	late := make(map[string]struct{})
	for _, c := range human[len(human)-window:] {
		late[c.Contributor] = struct{}{}
	}

	for k := range early {
		if _, ok := late[k]; ok {
			same++
		} else {
			change++
		}
	}
	for k := range late {
		if _, ok := early[k]; !ok {
			change++
		}
	}
	return same, change
}

// ContributorGini returns the bounded Gini coefficients over per-contributor
// commit counts and lines changed.
func ContributorGini(groups ContributorGroups) (commitGini, linesGini float64) {
	counts := make([]float64, 0, len(groups))
	lines := make([]float64, 0, len(groups))
	for _, key := range groups.sortedKeys() {
		commits := groups[key]
		counts = append(counts, float64(len(commits)))
		var l float64
		for _, c := range commits {
			l += float64(c.LinesChanged())
		}
		lines = append(lines, l)
	}
	return stats.BoundedGini(counts), stats.BoundedGini(lines)
}
