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
)

// NumericMapping encodes a string column as float64 according to a
// fixed value-to-number table. Values outside the table become NaN so
// a downstream imputer can fill them. Stateless.
type NumericMapping struct {
	column  string
	mapping map[string]float64
}

// NewNumericMapping creates a NumericMapping operator for the given column.
func NewNumericMapping(column string, mapping map[string]float64) *NumericMapping {
	return &NumericMapping{column: column, mapping: mapping}
}

// Name implements Transformer.
func (m *NumericMapping) Name() string { return "NumericMapping" }

// Fit is a no-op; the operator is fully defined by its construction
// parameters.
func (m *NumericMapping) Fit(_ *dataframe.DataFrame, _ []float64) error {
	if m.mapping == nil {
		return errors.NewInvalidConfigError(m.Name(), "mapping table must not be nil")
	}
	return nil
}

// Transform replaces the target column with its numeric encoding.
func (m *NumericMapping) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if m.mapping == nil {
		return nil, errors.NewInvalidConfigError(m.Name(), "mapping table must not be nil")
	}

	col, ok := df.Column(m.column)
	if !ok {
		return nil, errors.NewColumnNotFoundError(m.Name(), m.column)
	}

	values, ok := dataframe.AsStringValues(col)
	if !ok {
		return nil, errors.NewInvalidInputError(m.Name(), "column '"+m.column+"' is not a string column")
	}

	var unmapped []string
	seen := make(map[string]bool)
	encoded := make([]float64, len(values))
	for i, v := range values {
		if image, ok := m.mapping[v]; ok {
			encoded[i] = image
			continue
		}
		encoded[i] = math.NaN()
		if !seen[v] {
			seen[v] = true
			unmapped = append(unmapped, v)
		}
	}
	if len(unmapped) > 0 {
		sort.Strings(unmapped)
		logging.Warn(m.Name(), "column values have no mapping and become missing",
			zap.String("column", m.column), zap.Strings("values", unmapped))
	}

	newCol := series.New(m.column, encoded, memory.NewGoAllocator())
	return df.WithColumn(m.column, newCol), nil
}

// FitTransform implements Transformer.
func (m *NumericMapping) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(m, df, labels)
}
