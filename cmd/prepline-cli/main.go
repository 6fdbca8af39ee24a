// Command prepline-cli fits a preprocessing pipeline on a labeled CSV
// dataset and reports classification metrics across probability
// thresholds. It can also search for a stable train/test split seed.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/prepline/prepline"
	"github.com/prepline/prepline/internal/config"
	"github.com/prepline/prepline/internal/version"
)

func customUsage() {
	fmt.Fprintf(os.Stderr, "prepline CLI (version %s)\n\n", version.Version)
	fmt.Fprintf(os.Stderr, "Usage: prepline-cli [options]\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	fmt.Fprintf(os.Stderr, "  --input FILE\n\t\tCSV dataset to process (required)\n")
	fmt.Fprintf(os.Stderr, "  --label NAME\n\t\tName of the binary label column (required)\n")
	fmt.Fprintf(os.Stderr, "  --preset NAME\n\t\tBuilt-in pipeline preset (titanic, churn)\n")
	fmt.Fprintf(os.Stderr, "  --config FILE\n\t\tPipeline description file (JSON or YAML)\n")
	fmt.Fprintf(os.Stderr, "  --test-fraction F\n\t\tFraction of rows held out for testing (default: 0.2)\n")
	fmt.Fprintf(os.Stderr, "  --seed N\n\t\tSplit seed (default: 0)\n")
	fmt.Fprintf(os.Stderr, "  --neighbors N\n\t\tNeighbors for the evaluation classifier (default: 5)\n")
	fmt.Fprintf(os.Stderr, "  --find-seed N\n\t\tSearch seeds 0..N-1 for the most stable split and exit\n")
	fmt.Fprintf(os.Stderr, "  --verbose\n\t\tLog data-quality warnings to stderr\n")
	fmt.Fprintf(os.Stderr, "  -v, --version\n\t\tPrint version information and exit\n")
	fmt.Fprintf(os.Stderr, "  -h, --help\n\t\tShow this help message and exit\n")
}

func main() {
	versionFlag := flag.Bool("v", false, "Print version and exit")
	flag.BoolVar(versionFlag, "version", false, "Print version and exit") // alias
	inputFlag := flag.String("input", "", "CSV dataset to process")
	labelFlag := flag.String("label", "", "Name of the binary label column")
	presetFlag := flag.String("preset", "", "Built-in pipeline preset")
	configFlag := flag.String("config", "", "Pipeline description file")
	testFractionFlag := flag.Float64("test-fraction", 0, "Fraction of rows held out for testing")
	seedFlag := flag.Int64("seed", 0, "Split seed")
	neighborsFlag := flag.Int("neighbors", config.DefaultNeighbors, "Neighbors for the evaluation classifier")
	findSeedFlag := flag.Int("find-seed", 0, "Search seeds 0..N-1 for the most stable split and exit")
	verboseFlag := flag.Bool("verbose", false, "Log data-quality warnings to stderr")

	//nolint:reassign // Standard Go pattern for customizing flag usage message
	flag.Usage = customUsage
	flag.Parse()

	if *versionFlag {
		fmt.Print(version.Info().String())
		return
	}
	if *inputFlag == "" || *labelFlag == "" {
		flag.Usage()
		os.Exit(1)
	}

	opts := config.LoadFromEnv()
	if *testFractionFlag > 0 {
		opts.TestFraction = *testFractionFlag
	}
	if *seedFlag != 0 {
		opts.Seed = *seedFlag
	}
	if *verboseFlag || opts.Verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("creating logger: %v", err)
		}
		defer func() { _ = logger.Sync() }()
		prepline.SetLogger(logger)
	}

	pipelineConfig, err := loadPipelineConfig(*presetFlag, *configFlag)
	if err != nil {
		log.Fatalf("loading pipeline: %v", err)
	}
	pipeline, err := pipelineConfig.Build()
	if err != nil {
		log.Fatalf("building pipeline %q: %v", pipelineConfig.Name, err)
	}

	df, err := prepline.ReadCSV(*inputFlag)
	if err != nil {
		log.Fatalf("reading dataset: %v", err)
	}
	defer df.Release()

	if *findSeedFlag > 0 {
		runFindSeed(df, *labelFlag, pipeline, *findSeedFlag, opts)
		return
	}
	runEvaluate(df, *labelFlag, pipeline, *neighborsFlag, opts)
}

func loadPipelineConfig(preset, file string) (config.PipelineConfig, error) {
	switch {
	case preset != "" && file != "":
		return config.PipelineConfig{}, fmt.Errorf("--preset and --config are mutually exclusive")
	case preset != "":
		pc, ok := config.Preset(preset)
		if !ok {
			return config.PipelineConfig{}, fmt.Errorf("unknown preset %q", preset)
		}
		return pc, nil
	case file != "":
		return config.LoadFromFile(file)
	default:
		return config.PipelineConfig{}, fmt.Errorf("one of --preset or --config is required")
	}
}

func runEvaluate(df *prepline.DataFrame, label string, pipeline *prepline.Pipeline, neighbors int, opts config.RunOptions) {
	dataset, err := prepline.SetupDataset(df, label, pipeline, opts.TestFraction, opts.Seed)
	if err != nil {
		log.Fatalf("splitting dataset: %v", err)
	}

	model := prepline.NewKNNClassifier(neighbors, prepline.Uniform)
	if err := model.Fit(dataset.XTrain, dataset.YTrain); err != nil {
		log.Fatalf("fitting classifier: %v", err)
	}
	probabilities, err := model.PredictProba(dataset.XTest)
	if err != nil {
		log.Fatalf("predicting: %v", err)
	}

	thresholds := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9}
	table, err := prepline.ThresholdSweep(dataset.YTest, probabilities, thresholds)
	if err != nil {
		log.Fatalf("computing metrics: %v", err)
	}
	defer table.Release()

	trainRows, _ := dataset.XTrain.Dims()
	testRows, _ := dataset.XTest.Dims()
	fmt.Printf("split: %d train rows, %d test rows (seed %d)\n\n", trainRows, testRows, opts.Seed)
	fmt.Println(table.String())
}

func runFindSeed(df *prepline.DataFrame, label string, pipeline *prepline.Pipeline, samples int, opts config.RunOptions) {
	result, err := prepline.SplitStability(df, label, pipeline, samples, &prepline.StabilityOptions{
		TestFraction: opts.TestFraction,
	})
	if err != nil {
		log.Fatalf("searching split seeds: %v", err)
	}
	fmt.Printf("most stable split seed: %d (evaluated %d seeds)\n", result.BestSeed, samples)
}
