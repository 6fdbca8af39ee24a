// Package stats provides the scalar column statistics the stateful
// operators fit on: mean, standard deviation, median and quantiles.
// Missing values (NaN) are excluded from every computation, matching
// how the fitted parameters are defined over observed data only.
package stats

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// dropNaN returns a copy of xs without NaN entries.
func dropNaN(xs []float64) []float64 {
	out := make([]float64, 0, len(xs))
	for _, x := range xs {
		if !math.IsNaN(x) {
			out = append(out, x)
		}
	}
	return out
}

// Mean returns the arithmetic mean of the observed values in xs.
// Returns NaN when no values are observed.
func Mean(xs []float64) float64 {
	obs := dropNaN(xs)
	if len(obs) == 0 {
		return math.NaN()
	}
	return stat.Mean(obs, nil)
}

// StdDev returns the sample standard deviation (n-1 denominator) of the
// observed values in xs. Returns NaN with fewer than two observations.
func StdDev(xs []float64) float64 {
	obs := dropNaN(xs)
	if len(obs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(obs, nil)
}

// Quantile returns the p-quantile (0 <= p <= 1) of the observed values
// in xs using linear interpolation between order statistics, the same
// convention the fitted quartile bounds are defined with. Returns NaN
// when no values are observed.
func Quantile(xs []float64, p float64) float64 {
	obs := dropNaN(xs)
	if len(obs) == 0 || p < 0 || p > 1 {
		return math.NaN()
	}

	sorted := append([]float64(nil), obs...)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}

	pos := p * float64(len(sorted)-1)
	lower := int(math.Floor(pos))
	upper := int(math.Ceil(pos))
	if lower == upper {
		return sorted[lower]
	}
	frac := pos - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// Median returns the 0.5-quantile of the observed values in xs.
func Median(xs []float64) float64 {
	return Quantile(xs, 0.5)
}

// IQR returns the interquartile range Q3-Q1 of the observed values in xs.
func IQR(xs []float64) float64 {
	return Quantile(xs, 0.75) - Quantile(xs, 0.25)
}

// Clip pulls v into the closed interval [low, high]. NaN passes through.
func Clip(v, low, high float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	if v < low {
		return low
	}
	if v > high {
		return high
	}
	return v
}
