package transform

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/logging"
	"github.com/prepline/prepline/internal/series"
)

// Mapping replaces the values of a string column according to a fixed
// value-to-value table. Values outside the table pass through
// unchanged. Stateless.
//
// A mapping key that never occurs in the data, or a data value the
// table does not cover, is a data-quality signal: both are logged as
// warnings and processing continues.
type Mapping struct {
	column  string
	mapping map[string]string
}

// NewMapping creates a Mapping operator for the given column.
func NewMapping(column string, mapping map[string]string) *Mapping {
	return &Mapping{column: column, mapping: mapping}
}

// Name implements Transformer.
func (m *Mapping) Name() string { return "Mapping" }

// Fit is a no-op; the operator is fully defined by its construction
// parameters.
func (m *Mapping) Fit(_ *dataframe.DataFrame, _ []float64) error {
	if m.mapping == nil {
		return errors.NewInvalidConfigError(m.Name(), "mapping table must not be nil")
	}
	return nil
}

// Transform applies the mapping to the target column.
func (m *Mapping) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
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

	observed := make(map[string]bool, len(values))
	for _, v := range values {
		observed[v] = true
	}

	var keysNotFound []string
	for k := range m.mapping {
		if !observed[k] {
			keysNotFound = append(keysNotFound, k)
		}
	}
	var valuesNotMapped []string
	for v := range observed {
		if _, mapped := m.mapping[v]; !mapped {
			valuesNotMapped = append(valuesNotMapped, v)
		}
	}
	sort.Strings(keysNotFound)
	sort.Strings(valuesNotMapped)

	if len(keysNotFound) > 0 {
		logging.Warn(m.Name(), "mapping keys never appear in the column",
			zap.String("column", m.column), zap.Strings("keys", keysNotFound))
	}
	if len(valuesNotMapped) > 0 {
		logging.Warn(m.Name(), "column values have no mapping and pass through unchanged",
			zap.String("column", m.column), zap.Strings("values", valuesNotMapped))
	}

	mapped := make([]string, len(values))
	for i, v := range values {
		if image, ok := m.mapping[v]; ok {
			mapped[i] = image
		} else {
			mapped[i] = v
		}
	}

	newCol := series.New(m.column, mapped, memory.NewGoAllocator())
	return df.WithColumn(m.column, newCol), nil
}

// FitTransform implements Transformer.
func (m *Mapping) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(m, df, labels)
}
