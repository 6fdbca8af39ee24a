// Package knn provides flat (exhaustive) nearest-neighbor search over
// in-memory numeric rows: a distance-weighted imputer for missing
// values and a small k-nearest-neighbor classifier.
package knn

import "math"

// Weights selects how neighbor contributions are combined.
type Weights string

const (
	// Uniform weights every neighbor equally.
	Uniform Weights = "uniform"
	// Distance weights each neighbor by the inverse of its distance.
	Distance Weights = "distance"
)

func validWeights(w Weights) bool {
	return w == Uniform || w == Distance
}

// euclidean returns the Euclidean distance between two fully observed
// rows of equal length.
func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

// nanEuclidean returns the Euclidean distance between two rows that may
// contain missing coordinates (NaN). The squared distance is computed
// over mutually observed coordinates and scaled up by the fraction of
// coordinates used, so rows with few shared observations are not
// artificially close. Returns NaN when no coordinate is mutually
// observed.
func nanEuclidean(a, b []float64) float64 {
	var sum float64
	present := 0
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			continue
		}
		d := a[i] - b[i]
		sum += d * d
		present++
	}
	if present == 0 {
		return math.NaN()
	}
	return math.Sqrt(float64(len(a)) / float64(present) * sum)
}
