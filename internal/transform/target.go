package transform

import (
	"math"
	"sort"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/logging"
	"github.com/prepline/prepline/internal/series"
	"github.com/prepline/prepline/internal/stats"
)

// targetStats holds the fitted encodings of a TargetEncode operator.
type targetStats struct {
	encodings  map[string]float64
	globalMean float64
}

// TargetEncode replaces a categorical column with the smoothed mean
// label value of each category:
//
//	encoded = (n*categoryMean + s*globalMean) / (n + s)
//
// where n is the category's occurrence count and s the smoothing
// strength. Larger s pulls rare categories harder toward the global
// mean. Fitting is supervised and requires labels parallel to the
// frame's rows.
//
// A category never seen during fit encodes to NaN, the numeric missing
// sentinel: no encoding exists for it, and downstream numeric code is
// expected to accept the marker. This is deliberate and logged as a
// warning, not an error.
type TargetEncode struct {
	column    string
	smoothing float64
	fitted    *targetStats
}

// NewTargetEncode creates a TargetEncode operator with the given
// smoothing strength.
func NewTargetEncode(column string, smoothing float64) *TargetEncode {
	return &TargetEncode{column: column, smoothing: smoothing}
}

// Name implements Transformer.
func (t *TargetEncode) Name() string { return "TargetEncode" }

// Fit computes the smoothed per-category encodings from the training
// frame and its labels.
func (t *TargetEncode) Fit(df *dataframe.DataFrame, labels []float64) error {
	if t.smoothing < 0 {
		return errors.NewInvalidConfigError(t.Name(), "smoothing must be non-negative")
	}

	col, ok := df.Column(t.column)
	if !ok {
		return errors.NewColumnNotFoundError(t.Name(), t.column)
	}
	if labels == nil || len(labels) != df.Len() {
		return errors.NewLengthMismatchError(t.Name(), df.Len(), len(labels))
	}

	globalMean := stats.Mean(labels)

	groups := dataframe.BuildGroupIndex(col)
	encodings := make(map[string]float64, groups.Size())
	for _, key := range groups.Keys() {
		rows, _ := groups.Rows(key)
		var sum float64
		for _, idx := range rows {
			sum += labels[idx]
		}
		n := float64(len(rows))
		categoryMean := sum / n
		encodings[key] = (n*categoryMean + t.smoothing*globalMean) / (n + t.smoothing)
	}

	t.fitted = &targetStats{
		encodings:  encodings,
		globalMean: globalMean,
	}
	return nil
}

// Transform replaces each category value with its fitted encoding.
func (t *TargetEncode) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if t.fitted == nil {
		return nil, errors.NewNotFittedError(t.Name())
	}

	col, ok := df.Column(t.column)
	if !ok {
		return nil, errors.NewColumnNotFoundError(t.Name(), t.column)
	}

	encoded := make([]float64, col.Len())
	unseen := make(map[string]bool)
	for i := 0; i < col.Len(); i++ {
		key := col.GetAsString(i)
		if value, ok := t.fitted.encodings[key]; ok {
			encoded[i] = value
		} else {
			encoded[i] = math.NaN()
			unseen[key] = true
		}
	}

	if len(unseen) > 0 {
		categories := make([]string, 0, len(unseen))
		for c := range unseen {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		logging.Warn(t.Name(), "categories unseen during fit encode to the missing sentinel",
			zap.String("column", t.column), zap.Strings("categories", categories))
	}

	newCol := series.New(t.column, encoded, memory.NewGoAllocator())
	return df.WithColumn(t.column, newCol), nil
}

// FitTransform implements Transformer.
func (t *TargetEncode) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(t, df, labels)
}

// Encodings returns the fitted category encodings, or false before Fit.
func (t *TargetEncode) Encodings() (map[string]float64, bool) {
	if t.fitted == nil {
		return nil, false
	}
	out := make(map[string]float64, len(t.fitted.encodings))
	for k, v := range t.fitted.encodings {
		out[k] = v
	}
	return out, true
}
