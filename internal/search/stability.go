// Package search provides the split-stability search over random seeds
// and a successive-halving grid search for hyperparameters.
package search

import (
	"math"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/knn"
	"github.com/prepline/prepline/internal/metrics"
	"github.com/prepline/prepline/internal/split"
	"github.com/prepline/prepline/internal/transform"
)

// StabilityOptions tunes the split-stability search.
type StabilityOptions struct {
	// TestFraction is the test share of each candidate split.
	TestFraction float64
	// Neighbors configures the probe classifier.
	Neighbors int
	// MinTrainF1 is the minimal-signal threshold: seeds whose train F1
	// falls below it are skipped, since a test/train ratio against a
	// near-zero denominator is meaningless.
	MinTrainF1 float64
}

func (o *StabilityOptions) withDefaults() StabilityOptions {
	out := StabilityOptions{TestFraction: 0.2, Neighbors: 5, MinTrainF1: 0.1}
	if o == nil {
		return out
	}
	if o.TestFraction > 0 {
		out.TestFraction = o.TestFraction
	}
	if o.Neighbors > 0 {
		out.Neighbors = o.Neighbors
	}
	if o.MinTrainF1 > 0 {
		out.MinTrainF1 = o.MinTrainF1
	}
	return out
}

// StabilityResult reports the chosen seed and the per-seed test/train
// F1 ratios. Skipped seeds hold NaN.
type StabilityResult struct {
	BestSeed int64
	Ratios   []float64
}

// SplitStability evaluates `samples` split seeds (0..samples-1). For
// each seed it stratified-splits the frame, fits the pipeline, trains
// a small nearest-neighbor classifier, and records the ratio of test
// to train F1. It returns the seed whose ratio lies closest to the
// mean ratio over all valid seeds: the most typical, least
// train/test-divergent split. Ties go to the first seed at minimal
// distance. The search is a heuristic, not an optimum.
func SplitStability(df *dataframe.DataFrame, labelColumn string, pipeline *transform.Pipeline, samples int, opts *StabilityOptions) (*StabilityResult, error) {
	if samples <= 0 {
		return nil, errors.NewInvalidConfigError("SplitStability", "sample count must be positive")
	}
	o := opts.withDefaults()

	ratios := make([]float64, samples)
	for seed := 0; seed < samples; seed++ {
		ratios[seed] = math.NaN()

		ds, err := split.Setup(df, labelColumn, pipeline, o.TestFraction, int64(seed))
		if err != nil {
			return nil, err
		}

		clf := knn.NewClassifier(o.Neighbors, knn.Uniform)
		if err := clf.Fit(ds.XTrain, ds.YTrain); err != nil {
			return nil, err
		}

		trainPred, err := clf.Predict(ds.XTrain)
		if err != nil {
			return nil, err
		}
		testPred, err := clf.Predict(ds.XTest)
		if err != nil {
			return nil, err
		}

		trainF1, err := metrics.F1(ds.YTrain, trainPred)
		if err != nil {
			return nil, err
		}
		if trainF1 < o.MinTrainF1 {
			continue
		}
		testF1, err := metrics.F1(ds.YTest, testPred)
		if err != nil {
			return nil, err
		}

		ratios[seed] = testF1 / trainF1
	}

	var sum float64
	valid := 0
	for _, r := range ratios {
		if !math.IsNaN(r) {
			sum += r
			valid++
		}
	}
	if valid == 0 {
		return nil, errors.NewInvalidInputError("SplitStability", "no seed produced a train F1 above the minimal-signal threshold")
	}
	mean := sum / float64(valid)

	bestSeed := -1
	bestDist := math.Inf(1)
	for seed, r := range ratios {
		if math.IsNaN(r) {
			continue
		}
		if dist := math.Abs(r - mean); dist < bestDist {
			bestDist = dist
			bestSeed = seed
		}
	}

	return &StabilityResult{
		BestSeed: int64(bestSeed),
		Ratios:   ratios,
	}, nil
}
