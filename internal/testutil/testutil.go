// Package testutil provides common testing utilities shared by the
// prepline test files: allocator setup, standard test DataFrames with
// and without missing values, and DataFrame assertions.
package testutil

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/series"
)

// SetupAllocator returns the allocator used across tests.
func SetupAllocator(tb testing.TB) memory.Allocator {
	tb.Helper()
	return memory.NewGoAllocator()
}

// CreatePassengerFrame creates the standard test DataFrame used by the
// operator tests:
//
//   - Gender (string): ["Male", "Female", "Male", "Female", "Male", "Female"]
//   - Joined (string): ["S", "C", "S", "S", "Q", "C"]
//   - Age (float64):   [22, 38, NaN, 35, 54, 2]
//   - Fare (float64):  [7.25, 71.28, 7.92, 53.1, 51.86, NaN]
//
// NaN entries are stored as nulls.
func CreatePassengerFrame(allocator memory.Allocator) *dataframe.DataFrame {
	nan := math.NaN()
	return dataframe.New(
		series.New("Gender", []string{"Male", "Female", "Male", "Female", "Male", "Female"}, allocator),
		series.New("Joined", []string{"S", "C", "S", "S", "Q", "C"}, allocator),
		series.New("Age", []float64{22, 38, nan, 35, 54, 2}, allocator),
		series.New("Fare", []float64{7.25, 71.28, 7.92, 53.1, 51.86, nan}, allocator),
	)
}

// PassengerLabels returns binary labels aligned with CreatePassengerFrame.
func PassengerLabels() []float64 {
	return []float64{0, 1, 1, 1, 0, 1}
}

// CreateNumericFrame creates a small all-numeric DataFrame:
//
//   - x (float64): [1, 2, 3, 4, 5]
//   - y (float64): [10, 20, 30, 40, 50]
func CreateNumericFrame(allocator memory.Allocator) *dataframe.DataFrame {
	return dataframe.New(
		series.New("x", []float64{1, 2, 3, 4, 5}, allocator),
		series.New("y", []float64{10, 20, 30, 40, 50}, allocator),
	)
}

// AssertFrameHasColumns asserts that the DataFrame has exactly the
// expected columns, in order.
func AssertFrameHasColumns(t *testing.T, df *dataframe.DataFrame, expected []string) {
	t.Helper()
	require.NotNil(t, df)
	assert.Equal(t, expected, df.Columns())
}

// AssertFloatColumn asserts a float64 column's values, treating NaN as
// equal to NaN and comparing real values within a tolerance.
func AssertFloatColumn(t *testing.T, df *dataframe.DataFrame, name string, expected []float64) {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, "column %s not found", name)
	values, ok := dataframe.AsFloat64Values(col)
	require.True(t, ok, "column %s is not numeric", name)
	require.Len(t, values, len(expected))
	for i := range expected {
		if math.IsNaN(expected[i]) {
			assert.True(t, math.IsNaN(values[i]), "row %d: expected NaN, got %v", i, values[i])
			continue
		}
		assert.InDelta(t, expected[i], values[i], 1e-9, "row %d", i)
	}
}

// AssertStringColumn asserts a string column's values.
func AssertStringColumn(t *testing.T, df *dataframe.DataFrame, name string, expected []string) {
	t.Helper()
	col, ok := df.Column(name)
	require.True(t, ok, "column %s not found", name)
	values, ok := dataframe.AsStringValues(col)
	require.True(t, ok, "column %s is not a string column", name)
	assert.Equal(t, expected, values)
}

// AssertFrameUnchanged asserts that two frames have the same columns
// and identical rendered cell values. Used to verify that transforms
// never mutate their input.
func AssertFrameUnchanged(t *testing.T, before, after *dataframe.DataFrame) {
	t.Helper()
	require.Equal(t, before.Columns(), after.Columns())
	require.Equal(t, before.Len(), after.Len())
	for _, name := range before.Columns() {
		b, _ := before.Column(name)
		a, _ := after.Column(name)
		for i := 0; i < before.Len(); i++ {
			assert.Equal(t, b.GetAsString(i), a.GetAsString(i),
				"column %s row %d changed", name, i)
		}
	}
}
