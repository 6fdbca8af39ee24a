package knn

import (
	"math"
	"sort"

	"github.com/prepline/prepline/internal/errors"
)

// Imputer fills missing coordinates (NaN) with a weighted mean of the
// values the k nearest training rows hold there. Rows are compared with
// the missing-aware Euclidean distance. Missing-indicator columns are
// never produced.
type Imputer struct {
	neighbors int
	weights   Weights

	train    [][]float64
	colMeans []float64
}

// NewImputer creates an Imputer with the given neighbor count and
// weighting scheme.
func NewImputer(neighbors int, weights Weights) *Imputer {
	return &Imputer{neighbors: neighbors, weights: weights}
}

// Fit stores the training rows and each column's observed mean, the
// fallback for coordinates no donor observes.
func (im *Imputer) Fit(rows [][]float64) error {
	if im.neighbors <= 0 {
		return errors.NewInvalidConfigError("KNNImpute", "neighbor count must be positive")
	}
	if !validWeights(im.weights) {
		return errors.NewInvalidConfigError("KNNImpute", "weights must be 'uniform' or 'distance', got '"+string(im.weights)+"'")
	}
	if len(rows) == 0 {
		return errors.NewInvalidInputError("KNNImpute", "training data has no rows")
	}

	width := len(rows[0])
	train := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return errors.NewInvalidInputError("KNNImpute", "training rows have inconsistent widths")
		}
		train[i] = append([]float64(nil), row...)
	}

	colMeans := make([]float64, width)
	for j := 0; j < width; j++ {
		var sum float64
		count := 0
		for _, row := range train {
			if !math.IsNaN(row[j]) {
				sum += row[j]
				count++
			}
		}
		if count == 0 {
			colMeans[j] = math.NaN()
		} else {
			colMeans[j] = sum / float64(count)
		}
	}

	im.train = train
	im.colMeans = colMeans
	return nil
}

// Fitted reports whether Fit has completed successfully.
func (im *Imputer) Fitted() bool {
	return im.train != nil
}

// Transform returns a copy of rows with every missing coordinate
// filled in from the fitted training data. Row order and width are
// preserved.
func (im *Imputer) Transform(rows [][]float64) ([][]float64, error) {
	if im.train == nil {
		return nil, errors.NewNotFittedError("KNNImpute")
	}

	width := len(im.colMeans)
	out := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, errors.NewInvalidInputError("KNNImpute", "row width does not match fitted data")
		}
		out[i] = append([]float64(nil), row...)
		for j, v := range row {
			if math.IsNaN(v) {
				out[i][j] = im.imputeValue(row, j)
			}
		}
	}
	return out, nil
}

type donor struct {
	dist  float64
	value float64
}

// imputeValue fills coordinate col of row from the nearest training
// rows that observe it.
func (im *Imputer) imputeValue(row []float64, col int) float64 {
	var donors []donor
	for _, trainRow := range im.train {
		if math.IsNaN(trainRow[col]) {
			continue
		}
		d := nanEuclidean(row, trainRow)
		if math.IsNaN(d) {
			continue
		}
		donors = append(donors, donor{dist: d, value: trainRow[col]})
	}

	if len(donors) == 0 {
		return im.colMeans[col]
	}

	sort.Slice(donors, func(a, b int) bool { return donors[a].dist < donors[b].dist })
	if len(donors) > im.neighbors {
		donors = donors[:im.neighbors]
	}

	if im.weights == Distance {
		// Exact matches dominate: average them uniformly instead of
		// dividing by zero.
		var exact []donor
		for _, d := range donors {
			if d.dist == 0 {
				exact = append(exact, d)
			}
		}
		if len(exact) > 0 {
			donors = exact
		} else {
			var weightedSum, weightTotal float64
			for _, d := range donors {
				w := 1 / d.dist
				weightedSum += w * d.value
				weightTotal += w
			}
			return weightedSum / weightTotal
		}
	}

	var sum float64
	for _, d := range donors {
		sum += d.value
	}
	return sum / float64(len(donors))
}
