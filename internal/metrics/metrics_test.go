package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
)

func TestConfusionBasedScores(t *testing.T) {
	actual := []float64{1, 1, 1, 0, 0, 0}
	predicted := []float64{1, 1, 0, 1, 0, 0}
	// tp=2 fp=1 fn=1 tn=2

	tests := []struct {
		name     string
		score    func(actual, predicted []float64) (float64, error)
		expected float64
	}{
		{"precision", Precision, 2.0 / 3.0},
		{"recall", Recall, 2.0 / 3.0},
		{"f1", F1, 2.0 / 3.0},
		{"accuracy", Accuracy, 4.0 / 6.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.score(actual, predicted)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)
		})
	}
}

func TestScoreDegenerateCases(t *testing.T) {
	// No positive predictions: precision 0 rather than 0/0.
	p, err := Precision([]float64{1, 0}, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p)

	// No actual positives: recall 0.
	r, err := Recall([]float64{0, 0}, []float64{1, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, r)

	// Both zero: F1 0.
	f, err := F1([]float64{1, 1}, []float64{0, 0})
	require.NoError(t, err)
	assert.Equal(t, 0.0, f)
}

func TestScoreErrors(t *testing.T) {
	_, err := Precision([]float64{1}, []float64{1, 0})
	assert.ErrorIs(t, err, errors.ErrLengthMismatch)

	_, err = Accuracy(nil, nil)
	assert.Error(t, err)
}

func TestAUCPerfectAndReversed(t *testing.T) {
	actual := []float64{0, 0, 1, 1}

	perfect, err := AUC(actual, []float64{0.1, 0.2, 0.8, 0.9})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, perfect, 1e-12)

	reversed, err := AUC(actual, []float64{0.9, 0.8, 0.2, 0.1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, reversed, 1e-12)
}

func TestAUCTiesAndSingleClass(t *testing.T) {
	// All scores tied: AUC 0.5 by average ranks.
	tied, err := AUC([]float64{0, 1, 0, 1}, []float64{0.5, 0.5, 0.5, 0.5})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, tied, 1e-12)

	// Single class present: the curve is undefined, report 0.5.
	single, err := AUC([]float64{1, 1}, []float64{0.2, 0.9})
	require.NoError(t, err)
	assert.Equal(t, 0.5, single)
}

func TestThresholdSweep(t *testing.T) {
	actual := []float64{0, 0, 1, 1}
	probabilities := []float64{0.2, 0.4, 0.6, 0.8}
	thresholds := []float64{0.3, 0.5, 0.7}

	table, err := ThresholdSweep(actual, probabilities, thresholds)
	require.NoError(t, err)
	defer table.Release()

	assert.Equal(t, []string{"threshold", "precision", "recall", "f1", "accuracy", "auc"}, table.Columns())
	assert.Equal(t, 3, table.Len())

	column := func(name string) []float64 {
		col, ok := table.Column(name)
		require.True(t, ok)
		values, ok := dataframe.AsFloat64Values(col)
		require.True(t, ok)
		return values
	}

	// threshold 0.3: predicts 0,1,1,1 -> p=2/3 r=1; 0.5: 0,0,1,1 ->
	// perfect; 0.7: 0,0,0,1 -> p=1 r=1/2.
	assert.InDelta(t, 2.0/3.0, column("precision")[0], 1e-12)
	assert.InDelta(t, 1.0, column("recall")[0], 1e-12)
	assert.InDelta(t, 1.0, column("f1")[1], 1e-12)
	assert.InDelta(t, 1.0, column("accuracy")[1], 1e-12)
	assert.InDelta(t, 0.5, column("recall")[2], 1e-12)

	// AUC does not depend on the threshold.
	for _, auc := range column("auc") {
		assert.InDelta(t, 1.0, auc, 1e-12)
	}
}

func TestThresholdSweepBoundaryInclusive(t *testing.T) {
	// A probability equal to the threshold counts as positive.
	table, err := ThresholdSweep([]float64{1}, []float64{0.5}, []float64{0.5})
	require.NoError(t, err)
	defer table.Release()

	col, _ := table.Column("recall")
	values, _ := dataframe.AsFloat64Values(col)
	assert.Equal(t, 1.0, values[0])
}

func TestThresholdSweepErrors(t *testing.T) {
	_, err := ThresholdSweep([]float64{1}, []float64{0.5}, nil)
	assert.Error(t, err)
	_, err = ThresholdSweep([]float64{1, 0}, []float64{0.5}, []float64{0.5})
	assert.ErrorIs(t, err, errors.ErrLengthMismatch)
}
