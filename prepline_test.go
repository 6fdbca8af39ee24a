package prepline_test

import (
	"math"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prepline/prepline"
)

// subscriberFrame builds a small labeled table with the kinds of
// problems the operators exist for: categorical columns, an outlier,
// and missing values.
func subscriberFrame(mem memory.Allocator) (*prepline.DataFrame, []float64) {
	n := 24
	os := make([]string, n)
	age := make([]float64, n)
	spent := make([]float64, n)
	labels := make([]float64, n)
	for i := 0; i < n; i++ {
		if i%2 == 0 {
			os[i] = "Android"
			age[i] = 20 + float64(i%8)
			spent[i] = 10 + float64(i%5)
		} else {
			os[i] = "iOS"
			age[i] = 40 + float64(i%8)
			spent[i] = 60 + float64(i%5)
			labels[i] = 1
		}
	}
	age[4] = math.NaN()
	spent[7] = 500 // obvious outlier
	df := prepline.NewDataFrame(
		prepline.NewSeries("OS", os, mem),
		prepline.NewSeries("Age", age, mem),
		prepline.NewSeries("Spent", spent, mem),
		prepline.NewSeries("label", labels, mem),
	)
	return df, labels
}

func subscriberPipeline() *prepline.Pipeline {
	return prepline.NewPipeline(
		prepline.Step{Name: "map_os", Transformer: prepline.NewNumericMapping("OS",
			map[string]float64{"Android": 0, "iOS": 1})},
		prepline.Step{Name: "clip_spent", Transformer: prepline.NewTukeyFence("Spent", prepline.OuterFence)},
		prepline.Step{Name: "scale_age", Transformer: prepline.NewRobustScale("Age")},
		prepline.Step{Name: "impute", Transformer: prepline.NewKNNImpute(3, prepline.Uniform)},
	)
}

func TestEndToEnd(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	df, _ := subscriberFrame(mem)
	defer df.Release()

	ds, err := prepline.SetupDataset(df, "label", subscriberPipeline(), 0.25, 42)
	require.NoError(t, err)

	trainRows, cols := ds.XTrain.Dims()
	testRows, _ := ds.XTest.Dims()
	assert.Equal(t, 18, trainRows)
	assert.Equal(t, 6, testRows)
	assert.Equal(t, 3, cols)
	assert.Len(t, ds.YTrain, trainRows)
	assert.Len(t, ds.YTest, testRows)

	clf := prepline.NewKNNClassifier(3, prepline.Distance)
	require.NoError(t, clf.Fit(ds.XTrain, ds.YTrain))

	probabilities, err := clf.PredictProba(ds.XTest)
	require.NoError(t, err)

	report, err := prepline.ThresholdSweep(ds.YTest, probabilities, []float64{0.25, 0.5, 0.75})
	require.NoError(t, err)
	defer report.Release()

	assert.Equal(t, []string{"threshold", "precision", "recall", "f1", "accuracy", "auc"}, report.Columns())
	assert.Equal(t, 3, report.Len())

	// Classes are cleanly separated, so the mid threshold is perfect.
	f1, ok := report.Column("f1")
	require.True(t, ok)
	assert.Equal(t, "1", f1.GetAsString(1))
}

func TestPresetPipeline(t *testing.T) {
	pc, ok := prepline.PresetPipeline("titanic")
	require.True(t, ok)

	pipeline, err := pc.Build()
	require.NoError(t, err)
	assert.False(t, pipeline.Fitted())
	assert.Len(t, pipeline.Steps(), 8)

	_, ok = prepline.PresetPipeline("unknown")
	assert.False(t, ok)
}

func TestSplitStabilityFacade(t *testing.T) {
	mem := memory.NewGoAllocator()
	df, _ := subscriberFrame(mem)
	defer df.Release()

	result, err := prepline.SplitStability(df, "label", subscriberPipeline(), 5, nil)
	require.NoError(t, err)
	assert.Len(t, result.Ratios, 5)
	assert.GreaterOrEqual(t, result.BestSeed, int64(0))
}
