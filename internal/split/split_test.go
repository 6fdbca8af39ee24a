package split

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/series"
	"github.com/prepline/prepline/internal/testutil"
	"github.com/prepline/prepline/internal/transform"
)

func labelIndex(labels []float64) *dataframe.GroupIndex {
	gi := dataframe.NewGroupIndex(2)
	for i, l := range labels {
		if l == 1 {
			gi.Add("1", i)
		} else {
			gi.Add("0", i)
		}
	}
	return gi
}

func balancedLabels(n int) []float64 {
	labels := make([]float64, n)
	for i := range labels {
		labels[i] = float64(i % 2)
	}
	return labels
}

func TestStratifiedIndicesProportions(t *testing.T) {
	labels := balancedLabels(100)
	gi := labelIndex(labels)

	train, test, err := StratifiedIndices(gi, 0.2, 42)
	require.NoError(t, err)

	assert.Len(t, train, 80)
	assert.Len(t, test, 20)

	count := func(idx []int) (zeros, ones int) {
		for _, i := range idx {
			if labels[i] == 1 {
				ones++
			} else {
				zeros++
			}
		}
		return
	}

	trainZeros, trainOnes := count(train)
	testZeros, testOnes := count(test)
	assert.Equal(t, 40, trainZeros)
	assert.Equal(t, 40, trainOnes)
	assert.Equal(t, 10, testZeros)
	assert.Equal(t, 10, testOnes)

	// No row lands in both partitions.
	seen := make(map[int]bool)
	for _, i := range append(append([]int(nil), train...), test...) {
		assert.False(t, seen[i], "row %d assigned twice", i)
		seen[i] = true
	}
}

func TestStratifiedIndicesDeterministic(t *testing.T) {
	labels := balancedLabels(40)
	gi := labelIndex(labels)

	train1, test1, err := StratifiedIndices(gi, 0.25, 7)
	require.NoError(t, err)
	train2, test2, err := StratifiedIndices(gi, 0.25, 7)
	require.NoError(t, err)

	assert.Equal(t, train1, train2)
	assert.Equal(t, test1, test2)

	_, test3, err := StratifiedIndices(gi, 0.25, 8)
	require.NoError(t, err)
	assert.NotEqual(t, test1, test3)
}

func TestStratifiedIndicesTinyGroupKeepsTrainRow(t *testing.T) {
	// A group so small the rounded test count would swallow it
	// entirely keeps at least one training row.
	gi := dataframe.NewGroupIndex(1)
	gi.Add("only", 0)
	gi.Add("only", 1)

	train, test, err := StratifiedIndices(gi, 0.9, 1)
	require.NoError(t, err)
	assert.Len(t, train, 1)
	assert.Len(t, test, 1)
}

func TestStratifiedIndicesInvalidFraction(t *testing.T) {
	gi := labelIndex(balancedLabels(10))

	for _, fraction := range []float64{0, 1, -0.5, 1.5} {
		_, _, err := StratifiedIndices(gi, fraction, 0)
		assert.ErrorIs(t, err, errors.ErrInvalidConfig, "fraction %v", fraction)
	}
}

func labeledFrame(t *testing.T, n int) *dataframe.DataFrame {
	t.Helper()
	mem := testutil.SetupAllocator(t)

	groups := make([]string, n)
	x := make([]float64, n)
	y := make([]float64, n)
	names := []string{"a", "b", "c"}
	for i := 0; i < n; i++ {
		groups[i] = names[i%len(names)]
		x[i] = float64(i)
		y[i] = float64(i % 2)
	}
	return dataframe.New(
		series.New("group", groups, mem),
		series.New("x", x, mem),
		series.New("label", y, mem),
	)
}

func TestSetup(t *testing.T) {
	df := labeledFrame(t, 40)
	defer df.Release()

	pipeline := transform.NewPipeline(
		transform.Step{Name: "target_group", Transformer: transform.NewTargetEncode("group", 5)},
		transform.Step{Name: "scale_x", Transformer: transform.NewRobustScale("x")},
	)

	ds, err := Setup(df, "label", pipeline, 0.25, 3)
	require.NoError(t, err)

	trainRows, trainCols := ds.XTrain.Dims()
	testRows, testCols := ds.XTest.Dims()
	assert.Equal(t, 30, trainRows)
	assert.Equal(t, 10, testRows)
	assert.Equal(t, 2, trainCols) // label column excluded from features
	assert.Equal(t, 2, testCols)
	assert.Len(t, ds.YTrain, 30)
	assert.Len(t, ds.YTest, 10)

	assert.True(t, pipeline.Fitted())

	// Stratification balances labels in both partitions.
	var trainOnes float64
	for _, l := range ds.YTrain {
		trainOnes += l
	}
	assert.Equal(t, 15.0, trainOnes)
}

func TestSetupErrors(t *testing.T) {
	df := labeledFrame(t, 12)
	defer df.Release()

	pipeline := transform.NewPipeline()

	_, err := Setup(df, "nope", pipeline, 0.25, 0)
	assert.ErrorIs(t, err, errors.ErrColumnNotFound)

	_, err = Setup(df, "group", pipeline, 0.25, 0)
	assert.ErrorIs(t, err, errors.ErrNotNumeric)

	// A pipeline that leaves a string column behind cannot feed a
	// numeric model.
	_, err = Setup(df, "label", pipeline, 0.25, 0)
	assert.ErrorIs(t, err, errors.ErrNotNumeric)
}

func TestMatrix(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := dataframe.New(
		series.New("a", []float64{1, 2}, mem),
		series.New("b", []float64{3, 4}, mem),
	)
	defer df.Release()

	m, err := Matrix(df)
	require.NoError(t, err)

	rows, cols := m.Dims()
	assert.Equal(t, 2, rows)
	assert.Equal(t, 2, cols)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 3.0, m.At(0, 1))
	assert.Equal(t, 4.0, m.At(1, 1))

	empty := dataframe.New()
	_, err = Matrix(empty)
	assert.Error(t, err)
}
