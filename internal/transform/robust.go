package transform

import (
	"math"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/series"
	"github.com/prepline/prepline/internal/stats"
)

// robustParams holds the fitted center and spread of a RobustScale.
type robustParams struct {
	median float64
	iqr    float64
}

// RobustScale rescales a numeric column to (v - median) / IQR, with
// both statistics fitted on training data. A zero IQR leaves the
// column untouched: near-constant and binary columns would otherwise
// divide by zero.
type RobustScale struct {
	column string
	fitted *robustParams
}

// NewRobustScale creates a RobustScale operator for the given column.
func NewRobustScale(column string) *RobustScale {
	return &RobustScale{column: column}
}

// Name implements Transformer.
func (r *RobustScale) Name() string { return "RobustScale" }

// Fit computes the training column's median and IQR.
func (r *RobustScale) Fit(df *dataframe.DataFrame, _ []float64) error {
	values, err := numericColumn(r.Name(), r.column, df)
	if err != nil {
		return err
	}

	r.fitted = &robustParams{
		median: stats.Median(values),
		iqr:    stats.IQR(values),
	}
	return nil
}

// Transform rescales the target column with the fitted parameters.
func (r *RobustScale) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if r.fitted == nil {
		return nil, errors.NewNotFittedError(r.Name())
	}

	values, err := numericColumn(r.Name(), r.column, df)
	if err != nil {
		return nil, err
	}

	if r.fitted.iqr == 0 {
		return df.Copy(), nil
	}

	scaled := make([]float64, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			scaled[i] = v
			continue
		}
		scaled[i] = (v - r.fitted.median) / r.fitted.iqr
	}

	newCol := series.New(r.column, scaled, memory.NewGoAllocator())
	return df.WithColumn(r.column, newCol), nil
}

// FitTransform implements Transformer.
func (r *RobustScale) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(r, df, labels)
}
