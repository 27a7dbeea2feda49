// Package stats has the pure statistics primitives used by the metrics
// engine: Shannon entropy, coefficient of variation, Gini coefficient and
// run-length span statistics. All functions are stateless and side-effect
// free; undefined conditions resolve to a documented zero or ok=false,
// never an error.
package stats

import (
	"math"
	"sort"

	mstats "github.com/montanaflynn/stats"
)

// Entropy treats values as unnormalized weights, converts them to a
// probability distribution and returns the base-2 Shannon entropy over the
// strictly positive entries. An empty, all-zero or single-bucket input
// yields 0 by convention.
func Entropy(values []float64) float64 {
	var sum float64
	for _, v := range values {
		if v > 0 {
			sum += v
		}
	}
	if sum <= 0 {
		return 0
	}

	var h float64
	for _, v := range values {
		if v <= 0 {
			continue
		}
		p := v / sum
		h -= p * math.Log2(p)
	}
	if h < 0 {
		return 0
	}
	return h
}

// Variation returns the coefficient of variation (population standard
// deviation over mean). The second return is false when the mean is zero
// or the input is empty, where the ratio is undefined.
func Variation(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean, err := mstats.Mean(values)
	if err != nil || mean == 0 {
		return 0, false
	}
	sigma, err := mstats.StandardDeviationPopulation(values)
	if err != nil {
		return 0, false
	}
	return sigma / mean, true
}

// Gini computes the Gini coefficient over non-negative values using the
// sorted-rank form G = (2*sum(i*x_i))/(n*sum(x)) - (n+1)/n with 1-based
// ranks. Returns 0 when n <= 1 or the sum is zero; the result is clamped
// to [0,1] against floating-point drift.
func Gini(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum, rankSum float64
	for i, v := range sorted {
		sum += v
		rankSum += float64(i+1) * v
	}
	if sum == 0 {
		return 0
	}

	g := (2*rankSum)/(float64(n)*sum) - float64(n+1)/float64(n)
	return math.Min(math.Max(g, 0), 1)
}

// BoundedGini applies the n/(n-1) small-sample correction so that maximal
// inequality reaches 1.0 for any n > 1. Used for contributor-level
// concentration metrics.
func BoundedGini(values []float64) float64 {
	n := len(values)
	if n <= 1 {
		return 0
	}
	g := Gini(values) * float64(n) / float64(n-1)
	return math.Min(math.Max(g, 0), 1)
}

// Spans holds the summary statistics over a set of run lengths.
type Spans struct {
	Median float64
	Mean   float64
	Std    float64
}

// SpanStats returns median, mean and population standard deviation over a
// set of positive run lengths. The second return is false when the set is
// empty, where every statistic is undefined.
func SpanStats(runs []float64) (Spans, bool) {
	if len(runs) == 0 {
		return Spans{}, false
	}
	median, err := mstats.Median(runs)
	if err != nil {
		return Spans{}, false
	}
	mean, err := mstats.Mean(runs)
	if err != nil {
		return Spans{}, false
	}
	std, err := mstats.StandardDeviationPopulation(runs)
	if err != nil {
		return Spans{}, false
	}
	return Spans{Median: median, Mean: mean, Std: std}, true
}

// Percentile returns the p-th percentile of values, or 0 for empty input.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	out, err := mstats.Percentile(values, p)
	if err != nil {
		return 0
	}
	return out
}

// Mean returns the arithmetic mean, or ok=false for empty input.
func Mean(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	mean, err := mstats.Mean(values)
	if err != nil {
		return 0, false
	}
	return mean, true
}

// Median returns the median, or ok=false for empty input.
func Median(values []float64) (float64, bool) {
	if len(values) == 0 {
		return 0, false
	}
	median, err := mstats.Median(values)
	if err != nil {
		return 0, false
	}
	return median, true
}
