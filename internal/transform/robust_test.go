package transform

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/testutil"
)

func TestRobustScaleTransform(t *testing.T) {
	df := singleColumnFrame(t, "x", []float64{1, 2, 3, 4, 5})
	defer df.Release()

	// median 3, IQR 2
	out, err := NewRobustScale("x").FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	testutil.AssertFloatColumn(t, out, "x", []float64{-1, -0.5, 0, 0.5, 1})
}

func TestRobustScaleMedianMapsToZero(t *testing.T) {
	df := singleColumnFrame(t, "x", []float64{10, 20, 30, 40, 50})
	defer df.Release()

	r := NewRobustScale("x")
	out, err := r.FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	col, _ := out.Column("x")
	assert.Equal(t, "0", col.GetAsString(2))
}

func TestRobustScaleZeroIQRLeavesColumnUntouched(t *testing.T) {
	df := singleColumnFrame(t, "x", []float64{7, 7, 7, 7})
	defer df.Release()

	out, err := NewRobustScale("x").FitTransform(df, nil)
	require.NoError(t, err)
	defer out.Release()

	testutil.AssertFloatColumn(t, out, "x", []float64{7, 7, 7, 7})
}

func TestRobustScaleMissingPassesThrough(t *testing.T) {
	train := singleColumnFrame(t, "x", []float64{1, 2, 3, 4, 5})
	defer train.Release()

	r := NewRobustScale("x")
	require.NoError(t, r.Fit(train, nil))

	apply := singleColumnFrame(t, "x", []float64{3, math.NaN(), 5})
	defer apply.Release()
	out, err := r.Transform(apply)
	require.NoError(t, err)
	defer out.Release()

	testutil.AssertFloatColumn(t, out, "x", []float64{0, math.NaN(), 1})
}

func TestRobustScaleErrors(t *testing.T) {
	mem := testutil.SetupAllocator(t)
	df := testutil.CreatePassengerFrame(mem)
	defer df.Release()

	_, err := NewRobustScale("Age").Transform(df)
	assert.ErrorIs(t, err, errors.ErrNotFitted)
	assert.ErrorIs(t, NewRobustScale("Gender").Fit(df, nil), errors.ErrNotNumeric)
	assert.ErrorIs(t, NewRobustScale("Nope").Fit(df, nil), errors.ErrColumnNotFound)
}
