package config

// Split seeds found by search.SplitStability for the bundled example
// datasets.
const (
	TitanicSplitSeed int64 = 107
	ChurnSplitSeed   int64 = 113
)

// TitanicPreset returns the preprocessing pipeline for the Titanic
// passenger dataset: encode Gender and Class, target-encode the port
// of joining, clip Age and Fare at the outer Tukey fences, robust-scale
// both, and impute what is left missing.
func TitanicPreset() PipelineConfig {
	return PipelineConfig{
		Name: "titanic",
		Steps: []StepConfig{
			{Name: "map_gender", Kind: KindNumericMapping, Column: "Gender",
				NumericMapping: map[string]float64{"Male": 0, "Female": 1}},
			{Name: "map_class", Kind: KindNumericMapping, Column: "Class",
				NumericMapping: map[string]float64{"Crew": 0, "C3": 1, "C2": 2, "C1": 3}},
			{Name: "target_joined", Kind: KindTargetEncode, Column: "Joined", Smoothing: 10},
			{Name: "tukey_age", Kind: KindTukeyFence, Column: "Age", Fence: "outer"},
			{Name: "tukey_fare", Kind: KindTukeyFence, Column: "Fare", Fence: "outer"},
			{Name: "scale_age", Kind: KindRobustScale, Column: "Age"},
			{Name: "scale_fare", Kind: KindRobustScale, Column: "Fare"},
			{Name: "impute", Kind: KindKNNImpute, Neighbors: 5},
		},
	}
}

// ChurnPreset returns the preprocessing pipeline for the customer
// churn dataset. The Age and Time Spent columns use the inner Tukey
// fences because that dataset clips far more aggressively.
func ChurnPreset() PipelineConfig {
	return PipelineConfig{
		Name: "churn",
		Steps: []StepConfig{
			{Name: "map_os", Kind: KindNumericMapping, Column: "OS",
				NumericMapping: map[string]float64{"Android": 0, "iOS": 1}},
			{Name: "target_isp", Kind: KindTargetEncode, Column: "ISP", Smoothing: 10},
			{Name: "map_level", Kind: KindNumericMapping, Column: "Experience Level",
				NumericMapping: map[string]float64{"low": 0, "medium": 1, "high": 2}},
			{Name: "map_gender", Kind: KindNumericMapping, Column: "Gender",
				NumericMapping: map[string]float64{"Male": 0, "Female": 1}},
			{Name: "tukey_age", Kind: KindTukeyFence, Column: "Age", Fence: "inner"},
			{Name: "tukey_time_spent", Kind: KindTukeyFence, Column: "Time Spent", Fence: "inner"},
			{Name: "scale_age", Kind: KindRobustScale, Column: "Age"},
			{Name: "scale_time_spent", Kind: KindRobustScale, Column: "Time Spent"},
			{Name: "impute", Kind: KindKNNImpute, Neighbors: 5},
		},
	}
}

// Preset looks up a named preset pipeline.
func Preset(name string) (PipelineConfig, bool) {
	switch name {
	case "titanic":
		return TitanicPreset(), true
	case "churn":
		return ChurnPreset(), true
	default:
		return PipelineConfig{}, false
	}
}
