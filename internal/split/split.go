// Package split performs stratified train/test partitioning and drives
// the fit-on-train / apply-to-both dataset setup that feeds a
// classifier.
package split

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/transform"
)

// StratifiedIndices partitions row indices into train and test sets,
// preserving each label value's proportion across the partitions. The
// shuffle is driven entirely by seed, so a fixed seed yields a fixed
// split.
func StratifiedIndices(labels *dataframe.GroupIndex, testFraction float64, seed int64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, errors.NewInvalidConfigError("Split", "test fraction must be in (0,1)")
	}

	rng := rand.New(rand.NewSource(seed))

	for _, key := range labels.Keys() {
		rows, _ := labels.Rows(key)
		shuffled := append([]int(nil), rows...)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		testCount := int(math.Round(testFraction * float64(len(shuffled))))
		if testCount >= len(shuffled) {
			testCount = len(shuffled) - 1
		}
		test = append(test, shuffled[:testCount]...)
		train = append(train, shuffled[testCount:]...)
	}

	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	rng.Shuffle(len(test), func(i, j int) { test[i], test[j] = test[j], test[i] })

	if len(train) == 0 {
		return nil, nil, errors.NewInvalidInputError("Split", "stratified split produced an empty training partition")
	}
	return train, test, nil
}

// Dataset holds the numeric output of a fitted split: feature matrices
// and label vectors for both partitions.
type Dataset struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain []float64
	YTest  []float64
}

// Setup stratified-splits a labeled frame, fits the pipeline on the
// training partition, transforms both partitions, and converts the
// results to flat numeric arrays. The pipeline is left fitted.
func Setup(df *dataframe.DataFrame, labelColumn string, pipeline *transform.Pipeline, testFraction float64, seed int64) (*Dataset, error) {
	labelCol, ok := df.Column(labelColumn)
	if !ok {
		return nil, errors.NewColumnNotFoundError("Split", labelColumn)
	}
	labels, ok := dataframe.AsFloat64Values(labelCol)
	if !ok {
		return nil, errors.NewNotNumericError("Split", labelColumn)
	}

	groups := dataframe.BuildGroupIndex(labelCol)
	trainIdx, testIdx, err := StratifiedIndices(groups, testFraction, seed)
	if err != nil {
		return nil, err
	}

	features := df.Drop(labelColumn)
	defer features.Release()

	trainDF, err := features.Take(trainIdx)
	if err != nil {
		return nil, errors.NewInternalError("Split", err)
	}
	defer trainDF.Release()
	testDF, err := features.Take(testIdx)
	if err != nil {
		return nil, errors.NewInternalError("Split", err)
	}
	defer testDF.Release()

	yTrain := takeLabels(labels, trainIdx)
	yTest := takeLabels(labels, testIdx)

	trainOut, err := pipeline.FitTransform(trainDF, yTrain)
	if err != nil {
		return nil, err
	}
	defer trainOut.Release()
	testOut, err := pipeline.Transform(testDF)
	if err != nil {
		return nil, err
	}
	defer testOut.Release()

	xTrain, err := Matrix(trainOut)
	if err != nil {
		return nil, err
	}
	xTest, err := Matrix(testOut)
	if err != nil {
		return nil, err
	}

	return &Dataset{
		XTrain: xTrain,
		XTest:  xTest,
		YTrain: yTrain,
		YTest:  yTest,
	}, nil
}

// Matrix converts a fully numeric frame to a dense row-major matrix.
// Any remaining non-numeric column is a contract violation: the
// pipeline left the frame unfit for a numeric model.
func Matrix(df *dataframe.DataFrame) (*mat.Dense, error) {
	names := df.Columns()
	if len(names) == 0 || df.Len() == 0 {
		return nil, errors.NewInvalidInputError("Split", "frame has no data to convert")
	}

	cols := make([][]float64, len(names))
	for j, name := range names {
		col, _ := df.Column(name)
		values, ok := dataframe.AsFloat64Values(col)
		if !ok {
			return nil, errors.NewNotNumericError("Split", name)
		}
		cols[j] = values
	}

	rows := df.Len()
	data := make([]float64, 0, rows*len(names))
	for i := 0; i < rows; i++ {
		for j := range names {
			data = append(data, cols[j][i])
		}
	}
	return mat.NewDense(rows, len(names), data), nil
}

func takeLabels(labels []float64, indices []int) []float64 {
	out := make([]float64, len(indices))
	for i, idx := range indices {
		out[i] = labels[idx]
	}
	return out
}
