// Package prepline provides a column-oriented data preprocessing
// library: an Arrow-backed DataFrame, composable fit/transform
// operators, stratified dataset splitting, binary classification
// metrics, and split-stability and hyperparameter search helpers.
// This package is the public API for the library.
package prepline

import (
	"github.com/apache/arrow-go/v18/arrow/memory"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/prepline/prepline/internal/config"
	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/io"
	"github.com/prepline/prepline/internal/knn"
	"github.com/prepline/prepline/internal/logging"
	"github.com/prepline/prepline/internal/metrics"
	"github.com/prepline/prepline/internal/search"
	"github.com/prepline/prepline/internal/series"
	"github.com/prepline/prepline/internal/split"
	"github.com/prepline/prepline/internal/transform"
)

// Core data types.
type (
	// DataFrame is an immutable, column-oriented table backed by
	// Apache Arrow arrays.
	DataFrame = dataframe.DataFrame
	// ISeries is the type-erased column interface.
	ISeries = dataframe.ISeries
)

// Transform types.
type (
	// Transformer is the interface every preprocessing operator
	// implements.
	Transformer = transform.Transformer
	// Step is a named pipeline stage.
	Step = transform.Step
	// Pipeline chains transformers with cumulative fitting.
	Pipeline = transform.Pipeline

	// SelectMode selects keep or drop semantics for SelectColumns.
	SelectMode = transform.SelectMode
	// Fence selects the inner or outer Tukey fence pair.
	Fence = transform.Fence
	// Weights selects uniform or distance neighbor weighting.
	Weights = knn.Weights
	// Classifier is a k-nearest-neighbor binary classifier.
	Classifier = knn.Classifier
)

// Re-exported mode constants.
const (
	Keep = transform.Keep
	Drop = transform.Drop

	InnerFence = transform.InnerFence
	OuterFence = transform.OuterFence

	Uniform  = knn.Uniform
	Distance = knn.Distance
)

// Split and search types.
type (
	// Dataset is the result of a stratified split and pipeline
	// application: train/test feature matrices plus label slices.
	Dataset = split.Dataset
	// StabilityOptions configures SplitStability.
	StabilityOptions = search.StabilityOptions
	// StabilityResult is the outcome of a split-stability search.
	StabilityResult = search.StabilityResult
	// HalvingConfig configures HalvingGridSearch.
	HalvingConfig = search.HalvingConfig
	// HalvingResult is the outcome of a halving grid search.
	HalvingResult = search.HalvingResult
	// PipelineConfig declaratively describes a pipeline.
	PipelineConfig = config.PipelineConfig
	// StepConfig declaratively describes one pipeline step.
	StepConfig = config.StepConfig
)

// NewSeries creates a new typed column from values. For float64
// values, NaN entries are stored as nulls.
func NewSeries[T any](name string, values []T, mem memory.Allocator) ISeries {
	return series.New(name, values, mem)
}

// NewDataFrame creates a new DataFrame from columns.
func NewDataFrame(cols ...ISeries) *DataFrame {
	return dataframe.New(cols...)
}

// ReadCSV reads a CSV file into a DataFrame, inferring column types.
// Empty cells in numeric columns become missing values.
func ReadCSV(filename string) (*DataFrame, error) {
	return io.ReadFile(filename)
}

// WriteCSV writes a DataFrame to a CSV file. Missing values are
// written as empty cells.
func WriteCSV(filename string, df *DataFrame) error {
	return io.WriteFile(filename, df)
}

// Operator constructors.

// NewMapping replaces string values in a column by a fixed table;
// values outside the table pass through unchanged.
func NewMapping(column string, mapping map[string]string) Transformer {
	return transform.NewMapping(column, mapping)
}

// NewNumericMapping encodes a string column as float64 by a fixed
// table; values outside the table become missing.
func NewNumericMapping(column string, mapping map[string]float64) Transformer {
	return transform.NewNumericMapping(column, mapping)
}

// NewOneHot expands a column into 0/1 indicator columns, one per
// distinct value in order of first appearance.
func NewOneHot(column string) Transformer {
	return transform.NewOneHot(column)
}

// NewKeepColumns keeps only the listed columns, in the listed order.
func NewKeepColumns(columns ...string) Transformer {
	return transform.NewKeepColumns(columns...)
}

// NewDropColumns removes the listed columns.
func NewDropColumns(columns ...string) Transformer {
	return transform.NewDropColumns(columns...)
}

// NewSigmaClip clips a numeric column at mean ± 3 standard deviations
// learned during fit.
func NewSigmaClip(column string) Transformer {
	return transform.NewSigmaClip(column)
}

// NewTukeyFence clips a numeric column at the chosen Tukey fence pair
// learned during fit.
func NewTukeyFence(column string, fence Fence) Transformer {
	return transform.NewTukeyFence(column, fence)
}

// NewRobustScale centers a numeric column on its median and scales by
// its interquartile range.
func NewRobustScale(column string) Transformer {
	return transform.NewRobustScale(column)
}

// NewKNNImpute fills missing numeric values from the k nearest rows of
// the fitted data.
func NewKNNImpute(neighbors int, weights Weights) Transformer {
	return transform.NewKNNImpute(neighbors, weights)
}

// NewTargetEncode replaces a categorical column with smoothed
// label-mean encodings learned during fit.
func NewTargetEncode(column string, smoothing float64) Transformer {
	return transform.NewTargetEncode(column, smoothing)
}

// NewKNNClassifier creates a k-nearest-neighbor binary classifier for
// evaluating preprocessed datasets.
func NewKNNClassifier(neighbors int, weights Weights) *knn.Classifier {
	return knn.NewClassifier(neighbors, weights)
}

// NewPipeline composes steps into a pipeline; Fit runs each step's
// FitTransform in order so later steps fit on already-transformed data.
func NewPipeline(steps ...Step) *Pipeline {
	return transform.NewPipeline(steps...)
}

// Split and evaluation.

// SetupDataset splits a labeled DataFrame into stratified train and
// test partitions, fits the pipeline on the train partition only, and
// returns the transformed feature matrices with their labels.
func SetupDataset(df *DataFrame, labelColumn string, pipeline *Pipeline, testFraction float64, seed int64) (*Dataset, error) {
	return split.Setup(df, labelColumn, pipeline, testFraction, seed)
}

// ThresholdSweep evaluates binary classification metrics at each
// probability threshold and returns one row per threshold.
func ThresholdSweep(actual []float64, probabilities []float64, thresholds []float64) (*DataFrame, error) {
	return metrics.ThresholdSweep(actual, probabilities, thresholds)
}

// SplitStability evaluates split seeds 0..samples-1 and returns the
// seed whose test/train F1 ratio lies closest to the mean ratio. A nil
// opts selects the defaults.
func SplitStability(df *DataFrame, labelColumn string, pipeline *Pipeline, samples int, opts *StabilityOptions) (*StabilityResult, error) {
	return search.SplitStability(df, labelColumn, pipeline, samples, opts)
}

// HalvingGridSearch runs successive-halving hyperparameter search over
// a parameter grid. A nil cfg selects the defaults.
func HalvingGridSearch(features *mat.Dense, labels []float64, factory search.EstimatorFactory, grid map[string][]any, cfg *HalvingConfig) (*HalvingResult, error) {
	return search.HalvingGridSearch(features, labels, factory, grid, cfg)
}

// LoadPipelineConfig loads a declarative pipeline description from a
// JSON or YAML file.
func LoadPipelineConfig(filename string) (PipelineConfig, error) {
	return config.LoadFromFile(filename)
}

// PresetPipeline looks up a named preset pipeline configuration.
func PresetPipeline(name string) (PipelineConfig, bool) {
	return config.Preset(name)
}

// SetLogger installs the zap logger used for data-quality warnings.
// The default logger discards everything.
func SetLogger(l *zap.Logger) {
	logging.SetLogger(l)
}
