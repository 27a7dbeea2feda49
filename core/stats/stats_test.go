package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntropy(t *testing.T) {
	for _, tc := range []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"all zero", []float64{0, 0, 0}, 0},
		{"single bucket", []float64{7}, 0},
		{"one hot", []float64{0, 5, 0, 0}, 0},
		{"uniform four", []float64{2, 2, 2, 2}, 2},
		{"uniform eight", []float64{1, 1, 1, 1, 1, 1, 1, 1}, 3},
		{"half half", []float64{3, 3}, 1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Entropy(tc.values), 1e-9)
		})
	}
}

func TestEntropyScaleInvariant(t *testing.T) {
	base := []float64{1, 2, 3, 4}
	scaled := []float64{10, 20, 30, 40}
	assert.InDelta(t, Entropy(base), Entropy(scaled), 1e-9)
}

func TestVariation(t *testing.T) {
	t.Run("empty is undefined", func(t *testing.T) {
		_, ok := Variation(nil)
		assert.False(t, ok)
	})
	t.Run("zero mean is undefined", func(t *testing.T) {
		_, ok := Variation([]float64{0, 0, 0})
		assert.False(t, ok)
	})
	t.Run("constant series has zero variation", func(t *testing.T) {
		cv, ok := Variation([]float64{4, 4, 4, 4})
		assert.True(t, ok)
		assert.InDelta(t, 0, cv, 1e-9)
	})
	t.Run("known value", func(t *testing.T) {
		// mean 3, population stddev sqrt(2)
		cv, ok := Variation([]float64{1, 2, 3, 4, 5})
		assert.True(t, ok)
		assert.InDelta(t, math.Sqrt(2)/3, cv, 1e-9)
	})
}

func TestGini(t *testing.T) {
	for _, tc := range []struct {
		name   string
		values []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{9}, 0},
		{"all equal", []float64{5, 5, 5, 5}, 0},
		{"all zero", []float64{0, 0}, 0},
		{"two maximal", []float64{10, 0}, 0.5},
		{"moderate", []float64{1, 2, 3, 4}, 0.25},
	} {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Gini(tc.values), 1e-9)
		})
	}
}

func TestGiniScaleInvariant(t *testing.T) {
	assert.InDelta(t, Gini([]float64{1, 2, 7}), Gini([]float64{10, 20, 70}), 1e-9)
}

func TestGiniOrderInvariant(t *testing.T) {
	assert.InDelta(t, Gini([]float64{7, 1, 2}), Gini([]float64{1, 2, 7}), 1e-9)
}

func TestBoundedGini(t *testing.T) {
	t.Run("maximal inequality reaches one", func(t *testing.T) {
		assert.InDelta(t, 1.0, BoundedGini([]float64{10, 0}), 1e-9)
	})
	t.Run("all equal stays zero", func(t *testing.T) {
		assert.InDelta(t, 0, BoundedGini([]float64{3, 3, 3}), 1e-9)
	})
	t.Run("clamped to one", func(t *testing.T) {
		assert.LessOrEqual(t, BoundedGini([]float64{100, 0, 0, 0}), 1.0)
	})
	t.Run("single contributor", func(t *testing.T) {
		assert.Equal(t, 0.0, BoundedGini([]float64{42}))
	})
}

func TestSpanStats(t *testing.T) {
	t.Run("empty is undefined", func(t *testing.T) {
		_, ok := SpanStats(nil)
		assert.False(t, ok)
	})
	t.Run("single run", func(t *testing.T) {
		s, ok := SpanStats([]float64{4})
		assert.True(t, ok)
		assert.Equal(t, 4.0, s.Median)
		assert.Equal(t, 4.0, s.Mean)
		assert.Equal(t, 0.0, s.Std)
	})
	t.Run("known values", func(t *testing.T) {
		s, ok := SpanStats([]float64{1, 2, 3, 4})
		assert.True(t, ok)
		assert.InDelta(t, 2.5, s.Median, 1e-9)
		assert.InDelta(t, 2.5, s.Mean, 1e-9)
		assert.InDelta(t, math.Sqrt(1.25), s.Std, 1e-9)
	})
}

func TestPercentile(t *testing.T) {
	assert.Equal(t, 0.0, Percentile(nil, 10))
	got := Percentile([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 10)
	assert.Greater(t, got, 0.0)
	assert.LessOrEqual(t, got, 2.0)
}

func TestMeanMedian(t *testing.T) {
	_, ok := Mean(nil)
	assert.False(t, ok)
	_, ok = Median(nil)
	assert.False(t, ok)

	m, ok := Mean([]float64{1, 2, 3})
	assert.True(t, ok)
	assert.Equal(t, 2.0, m)

	md, ok := Median([]float64{1, 2, 3, 100})
	assert.True(t, ok)
	assert.Equal(t, 2.5, md)
}
