// Package config provides declarative pipeline configuration for prepline.
//
// A pipeline can be described as data (JSON or YAML), validated, and
// built into a runnable transform.Pipeline. Two ready-made presets are
// included for the bundled example datasets.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/prepline/prepline/internal/knn"
	"github.com/prepline/prepline/internal/transform"
)

// Step kinds accepted in a StepConfig.
const (
	KindMapping        = "mapping"
	KindNumericMapping = "numeric_mapping"
	KindOneHot         = "one_hot"
	KindSelect         = "select"
	KindSigmaClip      = "sigma_clip"
	KindTukeyFence     = "tukey_fence"
	KindRobustScale    = "robust_scale"
	KindKNNImpute      = "knn_impute"
	KindTargetEncode   = "target_encode"
)

// Default values applied by WithDefaults.
const (
	DefaultNeighbors    = 5
	DefaultSmoothing    = 10.0
	DefaultTestFraction = 0.2
)

// StepConfig describes one pipeline step. Only the fields relevant to
// the step's kind are consulted; Validate rejects kinds with missing
// required fields.
type StepConfig struct {
	Name           string             `json:"name" yaml:"name"`
	Kind           string             `json:"kind" yaml:"kind"`
	Column         string             `json:"column,omitempty" yaml:"column,omitempty"`
	Columns        []string           `json:"columns,omitempty" yaml:"columns,omitempty"`
	Mode           string             `json:"mode,omitempty" yaml:"mode,omitempty"`
	Fence          string             `json:"fence,omitempty" yaml:"fence,omitempty"`
	Mapping        map[string]string  `json:"mapping,omitempty" yaml:"mapping,omitempty"`
	NumericMapping map[string]float64 `json:"numeric_mapping,omitempty" yaml:"numeric_mapping,omitempty"`
	Neighbors      int                `json:"neighbors,omitempty" yaml:"neighbors,omitempty"`
	Weights        string             `json:"weights,omitempty" yaml:"weights,omitempty"`
	Smoothing      float64            `json:"smoothing,omitempty" yaml:"smoothing,omitempty"`
}

// PipelineConfig describes a whole preprocessing pipeline.
type PipelineConfig struct {
	Name  string       `json:"name" yaml:"name"`
	Steps []StepConfig `json:"steps" yaml:"steps"`
}

// Validate checks the configuration and returns an error describing the
// first problem found.
func (pc *PipelineConfig) Validate() error {
	if len(pc.Steps) == 0 {
		return fmt.Errorf("pipeline %q has no steps", pc.Name)
	}
	for i, step := range pc.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Name, err)
		}
	}
	return nil
}

func (sc *StepConfig) validate() error {
	switch sc.Kind {
	case KindMapping:
		if sc.Column == "" || len(sc.Mapping) == 0 {
			return fmt.Errorf("mapping step requires column and mapping table")
		}
	case KindNumericMapping:
		if sc.Column == "" || len(sc.NumericMapping) == 0 {
			return fmt.Errorf("numeric_mapping step requires column and numeric_mapping table")
		}
	case KindOneHot, KindSigmaClip, KindRobustScale, KindTargetEncode:
		if sc.Column == "" {
			return fmt.Errorf("%s step requires column", sc.Kind)
		}
	case KindSelect:
		if len(sc.Columns) == 0 {
			return fmt.Errorf("select step requires columns")
		}
		if sc.Mode != string(transform.Keep) && sc.Mode != string(transform.Drop) {
			return fmt.Errorf("select step mode must be %q or %q, got %q",
				transform.Keep, transform.Drop, sc.Mode)
		}
	case KindTukeyFence:
		if sc.Column == "" {
			return fmt.Errorf("tukey_fence step requires column")
		}
		if sc.Fence != string(transform.InnerFence) && sc.Fence != string(transform.OuterFence) {
			return fmt.Errorf("tukey_fence step fence must be %q or %q, got %q",
				transform.InnerFence, transform.OuterFence, sc.Fence)
		}
	case KindKNNImpute:
		if sc.Neighbors < 0 {
			return fmt.Errorf("knn_impute neighbors must not be negative, got %d", sc.Neighbors)
		}
		if sc.Weights != "" && sc.Weights != string(knn.Uniform) && sc.Weights != string(knn.Distance) {
			return fmt.Errorf("knn_impute weights must be %q or %q, got %q",
				knn.Uniform, knn.Distance, sc.Weights)
		}
	default:
		return fmt.Errorf("unknown step kind %q", sc.Kind)
	}
	if sc.Smoothing < 0 {
		return fmt.Errorf("smoothing must not be negative, got %v", sc.Smoothing)
	}
	return nil
}

// WithDefaults returns a copy of the configuration with zero values
// replaced by sensible defaults.
func (pc PipelineConfig) WithDefaults() PipelineConfig {
	steps := make([]StepConfig, len(pc.Steps))
	copy(steps, pc.Steps)
	for i := range steps {
		switch steps[i].Kind {
		case KindKNNImpute:
			if steps[i].Neighbors == 0 {
				steps[i].Neighbors = DefaultNeighbors
			}
			if steps[i].Weights == "" {
				steps[i].Weights = string(knn.Uniform)
			}
		case KindTargetEncode:
			if steps[i].Smoothing == 0 {
				steps[i].Smoothing = DefaultSmoothing
			}
		}
		if steps[i].Name == "" {
			steps[i].Name = fmt.Sprintf("%s_%d", steps[i].Kind, i)
		}
	}
	pc.Steps = steps
	return pc
}

// Build validates the configuration, applies defaults, and constructs
// the pipeline it describes.
func (pc PipelineConfig) Build() (*transform.Pipeline, error) {
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	applied := pc.WithDefaults()

	steps := make([]transform.Step, 0, len(applied.Steps))
	for _, sc := range applied.Steps {
		t, err := sc.build()
		if err != nil {
			return nil, err
		}
		steps = append(steps, transform.Step{Name: sc.Name, Transformer: t})
	}
	return transform.NewPipeline(steps...), nil
}

func (sc StepConfig) build() (transform.Transformer, error) {
	switch sc.Kind {
	case KindMapping:
		return transform.NewMapping(sc.Column, sc.Mapping), nil
	case KindNumericMapping:
		return transform.NewNumericMapping(sc.Column, sc.NumericMapping), nil
	case KindOneHot:
		return transform.NewOneHot(sc.Column), nil
	case KindSelect:
		return transform.NewSelectColumns(sc.Columns, transform.SelectMode(sc.Mode)), nil
	case KindSigmaClip:
		return transform.NewSigmaClip(sc.Column), nil
	case KindTukeyFence:
		return transform.NewTukeyFence(sc.Column, transform.Fence(sc.Fence)), nil
	case KindRobustScale:
		return transform.NewRobustScale(sc.Column), nil
	case KindKNNImpute:
		return transform.NewKNNImpute(sc.Neighbors, knn.Weights(sc.Weights)), nil
	case KindTargetEncode:
		return transform.NewTargetEncode(sc.Column, sc.Smoothing), nil
	default:
		return nil, fmt.Errorf("unknown step kind %q", sc.Kind)
	}
}

// LoadFromFile loads a pipeline configuration from a JSON or YAML file,
// selected by extension.
func LoadFromFile(filename string) (PipelineConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("reading config file: %w", err)
	}

	var pc PipelineConfig
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(data, &pc); err != nil {
			return PipelineConfig{}, fmt.Errorf("parsing JSON config: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &pc); err != nil {
			return PipelineConfig{}, fmt.Errorf("parsing YAML config: %w", err)
		}
	default:
		return PipelineConfig{}, fmt.Errorf("unsupported config format: %s", filepath.Ext(filename))
	}

	if err := pc.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return pc, nil
}

// RunOptions holds runtime options for the split-and-fit driver,
// overridable through PREPLINE_ environment variables.
type RunOptions struct {
	TestFraction float64 `json:"test_fraction" yaml:"test_fraction"`
	Seed         int64   `json:"seed" yaml:"seed"`
	Verbose      bool    `json:"verbose" yaml:"verbose"`
}

// NewRunOptions returns options populated with defaults.
func NewRunOptions() RunOptions {
	return RunOptions{TestFraction: DefaultTestFraction}
}

// LoadFromEnv overlays PREPLINE_TEST_FRACTION, PREPLINE_SEED and
// PREPLINE_VERBOSE onto a default RunOptions.
func LoadFromEnv() RunOptions {
	opts := NewRunOptions()
	if v := os.Getenv("PREPLINE_TEST_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f < 1 {
			opts.TestFraction = f
		}
	}
	if v := os.Getenv("PREPLINE_SEED"); v != "" {
		if s, err := strconv.ParseInt(v, 10, 64); err == nil {
			opts.Seed = s
		}
	}
	if v := os.Getenv("PREPLINE_VERBOSE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			opts.Verbose = b
		}
	}
	return opts
}
