// Package metrics provides binary classification scores (precision,
// recall, F1, accuracy, ROC AUC) and the threshold sweep that tabulates
// them over a range of decision thresholds.
package metrics

import (
	"sort"

	"github.com/apache/arrow-go/v18/arrow/memory"

	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
	"github.com/prepline/prepline/internal/series"
)

// confusion counts the four binary outcomes, treating label 1 as the
// positive class.
type confusion struct {
	tp, fp, tn, fn float64
}

func confusionOf(actual, predicted []float64) confusion {
	var c confusion
	for i := range actual {
		switch {
		case actual[i] == 1 && predicted[i] == 1:
			c.tp++
		case actual[i] != 1 && predicted[i] == 1:
			c.fp++
		case actual[i] == 1 && predicted[i] != 1:
			c.fn++
		default:
			c.tn++
		}
	}
	return c
}

func checkLengths(op string, actual, predicted []float64) error {
	if len(actual) != len(predicted) {
		return errors.NewLengthMismatchError(op, len(actual), len(predicted))
	}
	if len(actual) == 0 {
		return errors.NewInvalidInputError(op, "no samples to score")
	}
	return nil
}

// Precision returns tp/(tp+fp), or 0 when nothing was predicted positive.
func Precision(actual, predicted []float64) (float64, error) {
	if err := checkLengths("Precision", actual, predicted); err != nil {
		return 0, err
	}
	c := confusionOf(actual, predicted)
	if c.tp+c.fp == 0 {
		return 0, nil
	}
	return c.tp / (c.tp + c.fp), nil
}

// Recall returns tp/(tp+fn), or 0 when no positives exist.
func Recall(actual, predicted []float64) (float64, error) {
	if err := checkLengths("Recall", actual, predicted); err != nil {
		return 0, err
	}
	c := confusionOf(actual, predicted)
	if c.tp+c.fn == 0 {
		return 0, nil
	}
	return c.tp / (c.tp + c.fn), nil
}

// F1 returns the harmonic mean of precision and recall, or 0 when both
// are zero.
func F1(actual, predicted []float64) (float64, error) {
	if err := checkLengths("F1", actual, predicted); err != nil {
		return 0, err
	}
	p, _ := Precision(actual, predicted)
	r, _ := Recall(actual, predicted)
	if p+r == 0 {
		return 0, nil
	}
	return 2 * p * r / (p + r), nil
}

// Accuracy returns the fraction of correct predictions.
func Accuracy(actual, predicted []float64) (float64, error) {
	if err := checkLengths("Accuracy", actual, predicted); err != nil {
		return 0, err
	}
	c := confusionOf(actual, predicted)
	return (c.tp + c.tn) / (c.tp + c.tn + c.fp + c.fn), nil
}

// AUC returns the area under the ROC curve for binary labels and
// continuous scores, computed from the rank statistic with tied scores
// assigned their average rank. Returns 0.5 when only one class is
// present (the curve is undefined).
func AUC(actual, scores []float64) (float64, error) {
	if err := checkLengths("AUC", actual, scores); err != nil {
		return 0, err
	}

	n := len(scores)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return scores[order[a]] < scores[order[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && scores[order[j]] == scores[order[i]] {
			j++
		}
		// Average rank for the tie group (1-based ranks).
		avg := float64(i+j+1) / 2
		for k := i; k < j; k++ {
			ranks[order[k]] = avg
		}
		i = j
	}

	var positives, rankSum float64
	for i := range actual {
		if actual[i] == 1 {
			positives++
			rankSum += ranks[i]
		}
	}
	negatives := float64(n) - positives
	if positives == 0 || negatives == 0 {
		return 0.5, nil
	}

	return (rankSum - positives*(positives+1)/2) / (positives * negatives), nil
}

// ThresholdSweep scores the probabilities against every threshold and
// returns one row per threshold: threshold, precision, recall, f1,
// accuracy, auc. The AUC column is constant across rows since it does
// not depend on the threshold.
func ThresholdSweep(actual, probabilities []float64, thresholds []float64) (*dataframe.DataFrame, error) {
	if err := checkLengths("ThresholdSweep", actual, probabilities); err != nil {
		return nil, err
	}
	if len(thresholds) == 0 {
		return nil, errors.NewInvalidInputError("ThresholdSweep", "no thresholds given")
	}

	auc, err := AUC(actual, probabilities)
	if err != nil {
		return nil, err
	}

	n := len(thresholds)
	precisions := make([]float64, n)
	recalls := make([]float64, n)
	f1s := make([]float64, n)
	accuracies := make([]float64, n)
	aucs := make([]float64, n)

	for i, threshold := range thresholds {
		predicted := make([]float64, len(probabilities))
		for j, p := range probabilities {
			if p >= threshold {
				predicted[j] = 1
			}
		}
		precisions[i], _ = Precision(actual, predicted)
		recalls[i], _ = Recall(actual, predicted)
		f1s[i], _ = F1(actual, predicted)
		accuracies[i], _ = Accuracy(actual, predicted)
		aucs[i] = auc
	}

	mem := memory.NewGoAllocator()
	return dataframe.New(
		series.New("threshold", append([]float64(nil), thresholds...), mem),
		series.New("precision", precisions, mem),
		series.New("recall", recalls, mem),
		series.New("f1", f1s, mem),
		series.New("accuracy", accuracies, mem),
		series.New("auc", aucs, mem),
	), nil
}
