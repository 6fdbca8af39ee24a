package transform

import (
	"go.uber.org/zap"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/logging"
)

// SelectMode chooses between keeping and dropping the listed columns.
type SelectMode string

const (
	// Keep retains only the listed columns, in the listed order.
	Keep SelectMode = "keep"
	// Drop removes the listed columns.
	Drop SelectMode = "drop"
)

// SelectColumns keeps or drops a fixed list of columns. In keep mode a
// listed column absent from the data is fatal: the caller asked to keep
// something that does not exist. In drop mode an absent listed column
// is only a warning, since dropping it is harmless. Stateless.
type SelectColumns struct {
	columns []string
	mode    SelectMode
}

// NewSelectColumns creates a SelectColumns operator.
func NewSelectColumns(columns []string, mode SelectMode) *SelectColumns {
	return &SelectColumns{columns: append([]string(nil), columns...), mode: mode}
}

// NewKeepColumns creates a keep-mode SelectColumns operator.
func NewKeepColumns(columns ...string) *SelectColumns {
	return NewSelectColumns(columns, Keep)
}

// NewDropColumns creates a drop-mode SelectColumns operator.
func NewDropColumns(columns ...string) *SelectColumns {
	return NewSelectColumns(columns, Drop)
}

// Name implements Transformer.
func (s *SelectColumns) Name() string { return "SelectColumns" }

// Fit is a no-op beyond mode validation.
func (s *SelectColumns) Fit(_ *dataframe.DataFrame, _ []float64) error {
	return s.validateMode()
}

func (s *SelectColumns) validateMode() error {
	switch s.mode {
	case Keep, Drop:
		return nil
	default:
		return errors.NewInvalidConfigError(s.Name(), "mode must be 'keep' or 'drop', got '"+string(s.mode)+"'")
	}
}

// Transform applies the column selection.
func (s *SelectColumns) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if err := s.validateMode(); err != nil {
		return nil, err
	}

	var absent []string
	for _, name := range s.columns {
		if !df.HasColumn(name) {
			absent = append(absent, name)
		}
	}

	switch s.mode {
	case Keep:
		if len(absent) > 0 {
			return nil, errors.NewColumnNotFoundError(s.Name(), absent[0])
		}
		return df.Select(s.columns...), nil

	default: // Drop
		if len(absent) > 0 {
			logging.Warn(s.Name(), "dropping columns that are already absent",
				zap.Strings("columns", absent))
		}
		return df.Drop(s.columns...), nil
	}
}

// FitTransform implements Transformer.
func (s *SelectColumns) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(s, df, labels)
}
