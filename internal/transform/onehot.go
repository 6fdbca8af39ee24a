package transform

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/series"
)

// OneHot replaces a categorical column with one 0/1 indicator column
// per distinct observed value, named "<column>_<value>". The indicator
// columns are appended after the remaining columns in
// first-observation order. Stateless: the produced schema depends on
// the values observed at transform time.
type OneHot struct {
	column string
}

// NewOneHot creates a OneHot operator for the given column.
func NewOneHot(column string) *OneHot {
	return &OneHot{column: column}
}

// Name implements Transformer.
func (o *OneHot) Name() string { return "OneHot" }

// Fit is a no-op.
func (o *OneHot) Fit(_ *dataframe.DataFrame, _ []float64) error {
	return nil
}

// Transform expands the target column into indicator columns.
func (o *OneHot) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	col, ok := df.Column(o.column)
	if !ok {
		return nil, errors.NewColumnNotFoundError(o.Name(), o.column)
	}

	values, ok := dataframe.AsStringValues(col)
	if !ok {
		return nil, errors.NewInvalidInputError(o.Name(), "column '"+o.column+"' is not a string column")
	}

	// Distinct values in first-observation order.
	seen := make(map[string]bool)
	var distinct []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			distinct = append(distinct, v)
		}
	}

	mem := memory.NewGoAllocator()
	result := df.Drop(o.column)
	for _, value := range distinct {
		indicators := make([]int64, len(values))
		for i, v := range values {
			if v == value {
				indicators[i] = 1
			}
		}
		name := o.column + "_" + value
		next := result.WithColumn(name, series.New(name, indicators, mem))
		result.Release()
		result = next
	}

	return result, nil
}

// FitTransform implements Transformer.
func (o *OneHot) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(o, df, labels)
}
