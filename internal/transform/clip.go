package transform

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/series"
	"github.com/prepline/prepline/internal/stats"
)

const sigmaMultiplier = 3.0

// clipBounds holds a fitted [low, high] clipping interval.
type clipBounds struct {
	low  float64
	high float64
}

// numericColumn extracts the target column as float64 values, failing
// with the operator's contract errors when absent or non-numeric.
func numericColumn(op, column string, df *dataframe.DataFrame) ([]float64, error) {
	col, ok := df.Column(column)
	if !ok {
		return nil, errors.NewColumnNotFoundError(op, column)
	}
	values, ok := dataframe.AsFloat64Values(col)
	if !ok {
		return nil, errors.NewNotNumericError(op, column)
	}
	return values, nil
}

// clipColumn replaces the target column with its values clipped into
// [bounds.low, bounds.high]. Missing values pass through.
func clipColumn(column string, df *dataframe.DataFrame, values []float64, bounds clipBounds) *dataframe.DataFrame {
	clipped := make([]float64, len(values))
	for i, v := range values {
		clipped[i] = stats.Clip(v, bounds.low, bounds.high)
	}
	newCol := series.New(column, clipped, memory.NewGoAllocator())
	return df.WithColumn(column, newCol)
}

// SigmaClip clips a numeric column into [mean-3*stddev, mean+3*stddev],
// with the mean and standard deviation fitted on training data.
type SigmaClip struct {
	column string
	fitted *clipBounds
}

// NewSigmaClip creates a SigmaClip operator for the given column.
func NewSigmaClip(column string) *SigmaClip {
	return &SigmaClip{column: column}
}

// Name implements Transformer.
func (s *SigmaClip) Name() string { return "SigmaClip" }

// Fit computes the clipping bounds from the training column.
func (s *SigmaClip) Fit(df *dataframe.DataFrame, _ []float64) error {
	values, err := numericColumn(s.Name(), s.column, df)
	if err != nil {
		return err
	}

	mean := stats.Mean(values)
	sd := stats.StdDev(values)
	s.fitted = &clipBounds{
		low:  mean - sigmaMultiplier*sd,
		high: mean + sigmaMultiplier*sd,
	}
	return nil
}

// Transform clips the target column into the fitted bounds.
func (s *SigmaClip) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if s.fitted == nil {
		return nil, errors.NewNotFittedError(s.Name())
	}
	values, err := numericColumn(s.Name(), s.column, df)
	if err != nil {
		return nil, err
	}
	return clipColumn(s.column, df, values, *s.fitted), nil
}

// FitTransform implements Transformer.
func (s *SigmaClip) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(s, df, labels)
}

// Bounds returns the fitted clipping interval, or false before Fit.
func (s *SigmaClip) Bounds() (low, high float64, ok bool) {
	if s.fitted == nil {
		return 0, 0, false
	}
	return s.fitted.low, s.fitted.high, true
}

// Fence selects which Tukey fence pair a TukeyFence operator applies.
type Fence string

const (
	// InnerFence clips at Q1-1.5*IQR / Q3+1.5*IQR.
	InnerFence Fence = "inner"
	// OuterFence clips at Q1-3.0*IQR / Q3+3.0*IQR.
	OuterFence Fence = "outer"
)

const (
	innerFenceFactor = 1.5
	outerFenceFactor = 3.0
)

// tukeyBounds holds both fitted fence pairs.
type tukeyBounds struct {
	inner clipBounds
	outer clipBounds
}

// TukeyFence clips a numeric column at Tukey's fences. Both fence
// pairs are computed at fit time; the construction-time choice selects
// which pair Transform applies.
type TukeyFence struct {
	column string
	fence  Fence
	fitted *tukeyBounds
}

// NewTukeyFence creates a TukeyFence operator for the given column and
// fence choice.
func NewTukeyFence(column string, fence Fence) *TukeyFence {
	return &TukeyFence{column: column, fence: fence}
}

// Name implements Transformer.
func (t *TukeyFence) Name() string { return "TukeyFence" }

func (t *TukeyFence) validateFence() error {
	switch t.fence {
	case InnerFence, OuterFence:
		return nil
	default:
		return errors.NewInvalidConfigError(t.Name(), "fence must be 'inner' or 'outer', got '"+string(t.fence)+"'")
	}
}

// Fit computes both fence pairs from the training column's quartiles.
func (t *TukeyFence) Fit(df *dataframe.DataFrame, _ []float64) error {
	if err := t.validateFence(); err != nil {
		return err
	}

	values, err := numericColumn(t.Name(), t.column, df)
	if err != nil {
		return err
	}

	q1 := stats.Quantile(values, 0.25)
	q3 := stats.Quantile(values, 0.75)
	iqr := q3 - q1

	t.fitted = &tukeyBounds{
		inner: clipBounds{low: q1 - innerFenceFactor*iqr, high: q3 + innerFenceFactor*iqr},
		outer: clipBounds{low: q1 - outerFenceFactor*iqr, high: q3 + outerFenceFactor*iqr},
	}
	return nil
}

// Transform clips the target column at the selected fence pair.
func (t *TukeyFence) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := t.validateFence(); err != nil {
		return nil, err
	}
	if t.fitted == nil {
		return nil, errors.NewNotFittedError(t.Name())
	}

	values, err := numericColumn(t.Name(), t.column, df)
	if err != nil {
		return nil, err
	}

	bounds := t.fitted.inner
	if t.fence == OuterFence {
		bounds = t.fitted.outer
	}
	return clipColumn(t.column, df, values, bounds), nil
}

// FitTransform implements Transformer.
func (t *TukeyFence) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(t, df, labels)
}

// Bounds returns the fitted fence pair Transform would apply, or false
// before Fit.
func (t *TukeyFence) Bounds() (low, high float64, ok bool) {
	if t.fitted == nil {
		return 0, 0, false
	}
	bounds := t.fitted.inner
	if t.fence == OuterFence {
		bounds = t.fitted.outer
	}
	return bounds.low, bounds.high, true
}
