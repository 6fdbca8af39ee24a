package search

import (
	"math"
	"math/rand"
	"sort"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/mat"

	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/metrics"
)

// Estimator is the minimal classifier contract the halving search
// tunes: a fit/predict pair over dense matrices.
type Estimator interface {
	Fit(features *mat.Dense, labels []float64) error
	Predict(features *mat.Dense) ([]float64, error)
}

// EstimatorFactory builds an estimator for one parameter combination.
type EstimatorFactory func(params map[string]any) (Estimator, error)

// Scorer maps true and predicted labels to a scalar score
// (higher is better).
type Scorer func(actual, predicted []float64) (float64, error)

// HalvingConfig carries the pass-through configuration surface of the
// successive-halving search.
type HalvingConfig struct {
	// Factor is the reduction factor: each iteration keeps the best
	// 1/Factor of the surviving candidates and multiplies the
	// training-resource budget by Factor. Defaults to 3.
	Factor int
	// MinResources is the sample budget of the first iteration.
	// Defaults to a budget sized so every candidate gets scored at
	// least once before any elimination.
	MinResources int
	// Scoring scores a candidate on held-out folds. Defaults to F1.
	Scoring Scorer
	// Folds is the number of cross-validation folds per evaluation.
	// Defaults to 3.
	Folds int
	// Seed drives the evaluation shuffle.
	Seed int64
}

func (c *HalvingConfig) withDefaults(n int) HalvingConfig {
	out := HalvingConfig{Factor: 3, Folds: 3, Scoring: metrics.F1}
	if c != nil {
		if c.Factor > 1 {
			out.Factor = c.Factor
		}
		if c.MinResources > 0 {
			out.MinResources = c.MinResources
		}
		if c.Scoring != nil {
			out.Scoring = c.Scoring
		}
		if c.Folds > 1 {
			out.Folds = c.Folds
		}
		out.Seed = c.Seed
	}
	if out.MinResources == 0 {
		out.MinResources = 2 * out.Folds
		if out.MinResources > n {
			out.MinResources = n
		}
	}
	return out
}

// HalvingIteration records one elimination round.
type HalvingIteration struct {
	Resources  int
	Candidates int
	BestScore  float64
}

// HalvingResult reports the winning parameter combination.
type HalvingResult struct {
	BestParams map[string]any
	BestScore  float64
	Iterations []HalvingIteration
}

type candidate struct {
	params map[string]any
	score  float64
}

// HalvingGridSearch tunes an estimator over the full cartesian product
// of the parameter grid by successive halving: every surviving
// candidate is cross-validated on a growing subsample, and after each
// round only the top 1/factor survive. The last surviving candidate
// (scored on the largest budget it saw) wins.
func HalvingGridSearch(features *mat.Dense, labels []float64, factory EstimatorFactory, grid map[string][]any, config *HalvingConfig) (*HalvingResult, error) {
	rows, _ := features.Dims()
	if rows == 0 || rows != len(labels) {
		return nil, errors.NewLengthMismatchError("HalvingGridSearch", rows, len(labels))
	}
	if len(grid) == 0 {
		return nil, errors.NewInvalidConfigError("HalvingGridSearch", "parameter grid is empty")
	}
	cfg := config.withDefaults(rows)

	candidates := expandGrid(grid)
	if len(candidates) == 0 {
		return nil, errors.NewInvalidConfigError("HalvingGridSearch", "parameter grid expands to no combinations")
	}

	// Fixed shuffled evaluation order so growing budgets reuse
	// earlier samples.
	rng := rand.New(rand.NewSource(cfg.Seed))
	order := rng.Perm(rows)

	var iterations []HalvingIteration
	resources := cfg.MinResources

	for {
		if resources > rows {
			resources = rows
		}

		for i := range candidates {
			score, err := evaluate(features, labels, order[:resources], factory, candidates[i].params, cfg)
			if err != nil {
				return nil, err
			}
			candidates[i].score = score
		}
		sort.SliceStable(candidates, func(a, b int) bool { return candidates[a].score > candidates[b].score })

		iterations = append(iterations, HalvingIteration{
			Resources:  resources,
			Candidates: len(candidates),
			BestScore:  candidates[0].score,
		})

		if len(candidates) == 1 || resources == rows {
			break
		}

		survivors := (len(candidates) + cfg.Factor - 1) / cfg.Factor
		if survivors < 1 {
			survivors = 1
		}
		candidates = candidates[:survivors]
		resources *= cfg.Factor
	}

	return &HalvingResult{
		BestParams: candidates[0].params,
		BestScore:  candidates[0].score,
		Iterations: iterations,
	}, nil
}

// evaluate cross-validates one candidate on the given sample indices.
func evaluate(features *mat.Dense, labels []float64, indices []int, factory EstimatorFactory, params map[string]any, cfg HalvingConfig) (float64, error) {
	folds := cfg.Folds
	if folds > len(indices) {
		folds = len(indices)
	}
	if folds < 2 {
		return 0, errors.NewInvalidInputError("HalvingGridSearch", "not enough samples to cross-validate")
	}

	_, width := features.Dims()

	var total float64
	for fold := 0; fold < folds; fold++ {
		var trainIdx, testIdx []int
		for i, idx := range indices {
			if i%folds == fold {
				testIdx = append(testIdx, idx)
			} else {
				trainIdx = append(trainIdx, idx)
			}
		}

		xTrain, yTrain := subset(features, labels, trainIdx, width)
		xTest, yTest := subset(features, labels, testIdx, width)

		est, err := factory(params)
		if err != nil {
			return 0, err
		}
		if err := est.Fit(xTrain, yTrain); err != nil {
			return 0, err
		}
		predicted, err := est.Predict(xTest)
		if err != nil {
			return 0, err
		}
		score, err := cfg.Scoring(yTest, predicted)
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total / float64(folds), nil
}

func subset(features *mat.Dense, labels []float64, indices []int, width int) (*mat.Dense, []float64) {
	data := make([]float64, 0, len(indices)*width)
	y := make([]float64, len(indices))
	for i, idx := range indices {
		data = append(data, mat.Row(nil, idx, features)...)
		y[i] = labels[idx]
	}
	return mat.NewDense(len(indices), width, data), y
}

// expandGrid enumerates the cartesian product of the grid in sorted
// key order, so candidate ordering is deterministic.
func expandGrid(grid map[string][]any) []candidate {
	keys := maps.Keys(grid)
	slices.Sort(keys)

	combos := []map[string]any{{}}
	for _, key := range keys {
		values := grid[key]
		if len(values) == 0 {
			return nil
		}
		var next []map[string]any
		for _, combo := range combos {
			for _, value := range values {
				extended := make(map[string]any, len(combo)+1)
				for k, v := range combo {
					extended[k] = v
				}
				extended[key] = value
				next = append(next, extended)
			}
		}
		combos = next
	}

	candidates := make([]candidate, len(combos))
	for i, combo := range combos {
		candidates[i] = candidate{params: combo, score: math.NaN()}
	}
	return candidates
}
