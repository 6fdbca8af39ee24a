package transform

import (
	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/knn"
	"github.com/prepline/prepline/internal/series"
)

// KNNImpute fills missing values in every numeric column using a
// distance-weighted nearest-neighbor imputer fitted on training data.
// Non-numeric columns pass through unchanged, and no missing-indicator
// columns are added. The output frame keeps the input's column names,
// order and row count.
type KNNImpute struct {
	neighbors int
	weights   knn.Weights

	imputer *knn.Imputer
	columns []string
}

// NewKNNImpute creates a KNNImpute operator.
func NewKNNImpute(neighbors int, weights knn.Weights) *KNNImpute {
	return &KNNImpute{neighbors: neighbors, weights: weights}
}

// Name implements Transformer.
func (k *KNNImpute) Name() string { return "KNNImpute" }

// numericMatrix extracts the named numeric columns of df as rows.
func numericMatrix(op string, df *dataframe.DataFrame, columns []string) ([][]float64, error) {
	width := len(columns)
	cols := make([][]float64, width)
	for j, name := range columns {
		values, err := numericColumn(op, name, df)
		if err != nil {
			return nil, err
		}
		cols[j] = values
	}

	rows := make([][]float64, df.Len())
	for i := range rows {
		rows[i] = make([]float64, width)
		for j := range columns {
			rows[i][j] = cols[j][i]
		}
	}
	return rows, nil
}

// Fit learns the imputation model from the training frame's numeric
// columns.
func (k *KNNImpute) Fit(df *dataframe.DataFrame, _ []float64) error {
	var numeric []string
	for _, name := range df.Columns() {
		col, _ := df.Column(name)
		if dataframe.IsNumeric(col) {
			numeric = append(numeric, name)
		}
	}
	if len(numeric) == 0 {
		return errors.NewInvalidInputError(k.Name(), "frame has no numeric columns to impute")
	}

	rows, err := numericMatrix(k.Name(), df, numeric)
	if err != nil {
		return err
	}

	imputer := knn.NewImputer(k.neighbors, k.weights)
	if err := imputer.Fit(rows); err != nil {
		return err
	}

	k.imputer = imputer
	k.columns = numeric
	return nil
}

// Transform fills missing values in the fitted numeric columns.
func (k *KNNImpute) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if k.imputer == nil {
		return nil, errors.NewNotFittedError(k.Name())
	}

	rows, err := numericMatrix(k.Name(), df, k.columns)
	if err != nil {
		return nil, err
	}

	filled, err := k.imputer.Transform(rows)
	if err != nil {
		return nil, err
	}

	mem := memory.NewGoAllocator()
	result := df.Copy()
	for j, name := range k.columns {
		values := make([]float64, len(filled))
		for i := range filled {
			values[i] = filled[i][j]
		}
		next := result.WithColumn(name, series.New(name, values, mem))
		result.Release()
		result = next
	}
	return result, nil
}

// FitTransform implements Transformer.
func (k *KNNImpute) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return fitTransform(k, df, labels)
}
