package knn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/prepline/prepline/internal/errors"
)

func TestEuclidean(t *testing.T) {
	assert.InDelta(t, 5.0, euclidean([]float64{0, 0}, []float64{3, 4}), 1e-12)
	assert.InDelta(t, 0.0, euclidean([]float64{1, 2}, []float64{1, 2}), 1e-12)
}

func TestNanEuclidean(t *testing.T) {
	nan := math.NaN()

	// Fully observed rows match plain Euclidean.
	assert.InDelta(t, 5.0, nanEuclidean([]float64{0, 0}, []float64{3, 4}), 1e-12)

	// Missing coordinates are skipped and the distance scaled up by
	// the fraction of coordinates used.
	d := nanEuclidean([]float64{0, nan}, []float64{3, 4})
	assert.InDelta(t, math.Sqrt(2.0/1.0*9.0), d, 1e-12)

	// No mutual observation yields NaN.
	assert.True(t, math.IsNaN(nanEuclidean([]float64{nan, 1}, []float64{2, nan})))
}

func TestImputerUniform(t *testing.T) {
	nan := math.NaN()
	rows := [][]float64{
		{1, 10},
		{2, 20},
		{3, 30},
		{nan, 21},
	}

	im := NewImputer(2, Uniform)
	require.NoError(t, im.Fit(rows))
	require.True(t, im.Fitted())

	out, err := im.Transform(rows)
	require.NoError(t, err)

	// Nearest donors by the second coordinate are rows 1 and 2.
	assert.InDelta(t, 2.5, out[3][0], 1e-12)
	// Observed values are untouched.
	assert.Equal(t, 1.0, out[0][0])
	// The input rows are not modified.
	assert.True(t, math.IsNaN(rows[3][0]))
}

func TestImputerDistanceWeights(t *testing.T) {
	nan := math.NaN()
	rows := [][]float64{
		{0, 1},
		{0, 3},
		{nan, 0},
	}

	im := NewImputer(2, Distance)
	require.NoError(t, im.Fit(rows))

	out, err := im.Transform([][]float64{{nan, 0}})
	require.NoError(t, err)

	// Distances (scaled): d1 = sqrt(2)*1, d2 = sqrt(2)*3. Weighted
	// mean of values 1 and 3 with weights 1/d.
	d1 := math.Sqrt(2.0)
	d2 := 3 * math.Sqrt(2.0)
	expected := (1/d1*1 + 1/d2*3) / (1/d1 + 1/d2)
	assert.InDelta(t, expected, out[0][0], 1e-12)
}

func TestImputerExactMatchDominates(t *testing.T) {
	nan := math.NaN()
	rows := [][]float64{
		{5, 1},
		{9, 1},
		{7, 2},
	}

	im := NewImputer(3, Distance)
	require.NoError(t, im.Fit(rows))

	out, err := im.Transform([][]float64{{nan, 1}})
	require.NoError(t, err)

	// Two zero-distance donors average uniformly; the farther donor
	// is ignored.
	assert.InDelta(t, 7.0, out[0][0], 1e-12)
}

func TestImputerColumnMeanFallback(t *testing.T) {
	nan := math.NaN()
	rows := [][]float64{
		{1, 4},
		{3, 8},
	}

	im := NewImputer(1, Uniform)
	require.NoError(t, im.Fit(rows))

	// A row with no observed coordinate has no usable donor distance.
	out, err := im.Transform([][]float64{{nan, nan}})
	require.NoError(t, err)
	assert.InDelta(t, 2.0, out[0][0], 1e-12)
	assert.InDelta(t, 6.0, out[0][1], 1e-12)
}

func TestImputerErrors(t *testing.T) {
	assert.ErrorIs(t, NewImputer(0, Uniform).Fit([][]float64{{1}}), errors.ErrInvalidConfig)
	assert.ErrorIs(t, NewImputer(1, Weights("manhattan")).Fit([][]float64{{1}}), errors.ErrInvalidConfig)
	assert.Error(t, NewImputer(1, Uniform).Fit(nil))
	assert.Error(t, NewImputer(1, Uniform).Fit([][]float64{{1, 2}, {3}}))

	_, err := NewImputer(1, Uniform).Transform([][]float64{{1}})
	assert.ErrorIs(t, err, errors.ErrNotFitted)

	im := NewImputer(1, Uniform)
	require.NoError(t, im.Fit([][]float64{{1, 2}}))
	_, err = im.Transform([][]float64{{1}})
	assert.Error(t, err)
}

func trainingMatrix() (*mat.Dense, []float64) {
	// Two well-separated clusters.
	features := mat.NewDense(6, 2, []float64{
		0, 0,
		0, 1,
		1, 0,
		10, 10,
		10, 11,
		11, 10,
	})
	labels := []float64{0, 0, 0, 1, 1, 1}
	return features, labels
}

func TestClassifierPredict(t *testing.T) {
	features, labels := trainingMatrix()

	clf := NewClassifier(3, Uniform)
	require.NoError(t, clf.Fit(features, labels))

	queries := mat.NewDense(2, 2, []float64{
		0.5, 0.5,
		10.5, 10.5,
	})
	predicted, err := clf.Predict(queries)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, predicted)
}

func TestClassifierPredictProba(t *testing.T) {
	features, labels := trainingMatrix()

	clf := NewClassifier(3, Uniform)
	require.NoError(t, clf.Fit(features, labels))

	queries := mat.NewDense(2, 2, []float64{
		0, 0,
		10, 10,
	})
	probs, err := clf.PredictProba(queries)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, probs[0], 1e-12)
	assert.InDelta(t, 1.0, probs[1], 1e-12)
}

func TestClassifierDistanceWeighting(t *testing.T) {
	features := mat.NewDense(3, 1, []float64{0, 10, 11})
	labels := []float64{0, 1, 1}

	clf := NewClassifier(3, Distance)
	require.NoError(t, clf.Fit(features, labels))

	// Near the single 0-labeled point, its 1/d weight beats the two
	// distant 1-labeled points combined.
	predicted, err := clf.Predict(mat.NewDense(1, 1, []float64{1}))
	require.NoError(t, err)
	assert.Equal(t, []float64{0}, predicted)

	// An exact match restricts the vote to the zero-distance set.
	predicted, err = clf.Predict(mat.NewDense(1, 1, []float64{10}))
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, predicted)
}

func TestClassifierExactMatchProba(t *testing.T) {
	features := mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	})
	labels := []float64{1, 0}

	clf := NewClassifier(2, Distance)
	require.NoError(t, clf.Fit(features, labels))

	// A query identical to a training row votes only among its exact
	// matches, uniformly, so the probability is a finite 0 or 1.
	probs, err := clf.PredictProba(mat.NewDense(2, 2, []float64{
		0, 0,
		1, 1,
	}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, probs[0])
	assert.Equal(t, 0.0, probs[1])

	// Duplicated training rows with split labels average uniformly.
	dup := mat.NewDense(3, 1, []float64{4, 4, 9})
	clf = NewClassifier(3, Distance)
	require.NoError(t, clf.Fit(dup, []float64{1, 0, 1}))

	probs, err = clf.PredictProba(mat.NewDense(1, 1, []float64{4}))
	require.NoError(t, err)
	assert.InDelta(t, 0.5, probs[0], 1e-12)
}

func TestClassifierNeighborCapAndErrors(t *testing.T) {
	features := mat.NewDense(2, 1, []float64{0, 1})
	labels := []float64{0, 1}

	// More neighbors than training rows is capped, not an error.
	clf := NewClassifier(10, Uniform)
	require.NoError(t, clf.Fit(features, labels))
	_, err := clf.Predict(mat.NewDense(1, 1, []float64{0}))
	require.NoError(t, err)

	assert.ErrorIs(t, NewClassifier(0, Uniform).Fit(features, labels), errors.ErrInvalidConfig)
	assert.ErrorIs(t, NewClassifier(3, Uniform).Fit(features, []float64{1}), errors.ErrLengthMismatch)

	_, err = NewClassifier(3, Uniform).Predict(features)
	assert.ErrorIs(t, err, errors.ErrNotFitted)

	// Width mismatch at predict time.
	wide := mat.NewDense(1, 2, []float64{1, 2})
	_, err = clf.Predict(wide)
	assert.Error(t, err)
}
