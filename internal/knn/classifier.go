package knn

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/prepline/prepline/internal/errors"
)

// Classifier is a k-nearest-neighbor classifier over dense numeric
// feature matrices. Prediction is a (possibly distance-weighted)
// majority vote among the k nearest training rows.
type Classifier struct {
	neighbors int
	weights   Weights

	features *mat.Dense
	labels   []float64
}

// NewClassifier creates a Classifier with the given neighbor count and
// weighting scheme.
func NewClassifier(neighbors int, weights Weights) *Classifier {
	return &Classifier{neighbors: neighbors, weights: weights}
}

// Fit stores the training matrix and labels.
func (c *Classifier) Fit(features *mat.Dense, labels []float64) error {
	if c.neighbors <= 0 {
		return errors.NewInvalidConfigError("KNNClassifier", "neighbor count must be positive")
	}
	if !validWeights(c.weights) {
		return errors.NewInvalidConfigError("KNNClassifier", "weights must be 'uniform' or 'distance', got '"+string(c.weights)+"'")
	}

	rows, _ := features.Dims()
	if rows == 0 {
		return errors.NewInvalidInputError("KNNClassifier", "training data has no rows")
	}
	if rows != len(labels) {
		return errors.NewLengthMismatchError("KNNClassifier", rows, len(labels))
	}

	c.features = mat.DenseCopyOf(features)
	c.labels = append([]float64(nil), labels...)
	return nil
}

// Predict returns the vote-winning label for each row of features.
func (c *Classifier) Predict(features *mat.Dense) ([]float64, error) {
	votes, err := c.vote(features)
	if err != nil {
		return nil, err
	}

	predictions := make([]float64, len(votes))
	for i, rowVotes := range votes {
		best := math.NaN()
		bestWeight := math.Inf(-1)
		for _, v := range rowVotes {
			if v.weight > bestWeight {
				bestWeight = v.weight
				best = v.label
			}
		}
		predictions[i] = best
	}
	return predictions, nil
}

// PredictProba returns, for each row, the weight fraction of neighbors
// voting for the positive class (label 1). Intended for binary
// problems feeding a threshold sweep.
func (c *Classifier) PredictProba(features *mat.Dense) ([]float64, error) {
	votes, err := c.vote(features)
	if err != nil {
		return nil, err
	}

	probs := make([]float64, len(votes))
	for i, rowVotes := range votes {
		var positive, total float64
		for _, v := range rowVotes {
			total += v.weight
			if v.label == 1 {
				positive += v.weight
			}
		}
		if total > 0 {
			probs[i] = positive / total
		}
	}
	return probs, nil
}

type labelVote struct {
	label  float64
	weight float64
}

// vote collects per-row neighbor votes, ordered by first appearance so
// ties resolve deterministically toward the nearest neighbor's label.
func (c *Classifier) vote(features *mat.Dense) ([][]labelVote, error) {
	if c.features == nil {
		return nil, errors.NewNotFittedError("KNNClassifier")
	}

	rows, cols := features.Dims()
	trainRows, trainCols := c.features.Dims()
	if cols != trainCols {
		return nil, errors.NewInvalidInputError("KNNClassifier", "feature width does not match fitted data")
	}

	k := c.neighbors
	if k > trainRows {
		k = trainRows
	}

	result := make([][]labelVote, rows)
	for i := 0; i < rows; i++ {
		query := mat.Row(nil, i, features)

		type neighbor struct {
			dist  float64
			label float64
		}
		neighbors := make([]neighbor, trainRows)
		for j := 0; j < trainRows; j++ {
			neighbors[j] = neighbor{
				dist:  euclidean(query, mat.Row(nil, j, c.features)),
				label: c.labels[j],
			}
		}
		sort.SliceStable(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })
		neighbors = neighbors[:k]

		// Exact training matches dominate a distance-weighted vote: the
		// vote is restricted to the zero-distance set, weighted
		// uniformly, so the weight fractions stay finite.
		exact := c.weights == Distance && neighbors[0].dist == 0

		var rowVotes []labelVote
		for _, n := range neighbors {
			if exact && n.dist != 0 {
				break
			}
			w := 1.0
			if c.weights == Distance && !exact {
				w = 1 / n.dist
			}
			found := false
			for vi := range rowVotes {
				if rowVotes[vi].label == n.label {
					rowVotes[vi].weight += w
					found = true
					break
				}
			}
			if !found {
				rowVotes = append(rowVotes, labelVote{label: n.label, weight: w})
			}
		}
		result[i] = rowVotes
	}
	return result, nil
}
