package dataframe

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/array"
)

// AsStringValues extracts the values of a string column. The second
// return value is false when the column is not string-typed.
func AsStringValues(s ISeries) ([]string, bool) {
	arr := s.Array()
	defer arr.Release()

	typedArr, ok := arr.(*array.String)
	if !ok {
		return nil, false
	}

	values := make([]string, typedArr.Len())
	for i := 0; i < typedArr.Len(); i++ {
		if !typedArr.IsNull(i) {
			values[i] = typedArr.Value(i)
		}
	}
	return values, true
}

// AsFloat64Values extracts the values of a numeric (int64 or float64)
// column as float64, with NaN standing in for nulls. The second return
// value is false when the column is not numeric.
func AsFloat64Values(s ISeries) ([]float64, bool) {
	arr := s.Array()
	defer arr.Release()

	switch typedArr := arr.(type) {
	case *array.Float64:
		values := make([]float64, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if typedArr.IsNull(i) {
				values[i] = math.NaN()
			} else {
				values[i] = typedArr.Value(i)
			}
		}
		return values, true

	case *array.Int64:
		values := make([]float64, typedArr.Len())
		for i := 0; i < typedArr.Len(); i++ {
			if typedArr.IsNull(i) {
				values[i] = math.NaN()
			} else {
				values[i] = float64(typedArr.Value(i))
			}
		}
		return values, true

	default:
		return nil, false
	}
}

// IsNumeric reports whether the column holds int64 or float64 values.
func IsNumeric(s ISeries) bool {
	arr := s.Array()
	defer arr.Release()

	switch arr.(type) {
	case *array.Float64, *array.Int64:
		return true
	default:
		return false
	}
}
