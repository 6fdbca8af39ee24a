// Package transform implements the column operators and the pipeline
// composing them. Each operator targets a single named column and obeys
// one contract: Fit learns any parameters from a training frame (a
// no-op for stateless operators), Transform applies them to a frame
// without modifying it. Stateful operators reject Transform until Fit
// has succeeded.
package transform

import (
	"github.com/prepline/prepline/internal/dataframe"
	"github.com/prepline/prepline/internal/errors"
)

// Transformer is the common contract of all column operators.
// Labels are only consulted by supervised operators (target encoding);
// the others ignore them.
type Transformer interface {
	// Fit learns the operator's parameters from df. Stateless
	// operators return nil without inspecting df.
	Fit(df *dataframe.DataFrame, labels []float64) error

	// Transform applies the operator and returns a new frame.
	// df is never modified.
	Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error)

	// FitTransform fits on df and returns the transformed frame.
	FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error)

	// Name identifies the operator in errors and warnings.
	Name() string
}

// fitTransform is the shared FitTransform implementation.
func fitTransform(t Transformer, df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	if err := t.Fit(df, labels); err != nil {
		return nil, err
	}
	return t.Transform(df)
}

// Step names a transformer inside a pipeline.
type Step struct {
	Name        string
	Transformer Transformer
}

// Pipeline chains transformers in order: fitting runs each step on the
// output of the previous step's fit-transform, so later operators only
// ever see already-transformed data. Transform replays the fitted
// steps without re-fitting.
type Pipeline struct {
	steps  []Step
	fitted bool
}

// NewPipeline creates a pipeline from the given steps.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the pipeline's steps in order.
func (p *Pipeline) Steps() []Step {
	return append([]Step(nil), p.steps...)
}

// Fit fits each step in order, each on the cumulative output of the
// previous steps. The intermediate frames are released as fitting
// advances.
func (p *Pipeline) Fit(df *dataframe.DataFrame, labels []float64) error {
	_, err := p.fit(df, labels, false)
	return err
}

// FitTransform fits the pipeline and returns the fully transformed
// training frame.
func (p *Pipeline) FitTransform(df *dataframe.DataFrame, labels []float64) (*dataframe.DataFrame, error) {
	return p.fit(df, labels, true)
}

func (p *Pipeline) fit(df *dataframe.DataFrame, labels []float64, keepResult bool) (*dataframe.DataFrame, error) {
	current := df
	for _, step := range p.steps {
		next, err := step.Transformer.FitTransform(current, labels)
		if err != nil {
			if current != df {
				current.Release()
			}
			return nil, &errors.TransformError{
				Op:      "Pipeline",
				Message: "step '" + step.Name + "' failed during fit",
				Cause:   err,
			}
		}
		if current != df {
			current.Release()
		}
		current = next
	}
	p.fitted = true

	if current == df {
		current = df.Copy()
	}
	if !keepResult {
		current.Release()
		return nil, nil
	}
	return current, nil
}

// Transform replays the fitted steps on a new frame.
func (p *Pipeline) Transform(df *dataframe.DataFrame) (*dataframe.DataFrame, error) {
	if !p.fitted {
		return nil, errors.NewNotFittedError("Pipeline")
	}

	current := df
	for _, step := range p.steps {
		next, err := step.Transformer.Transform(current)
		if err != nil {
			if current != df {
				current.Release()
			}
			return nil, &errors.TransformError{
				Op:      "Pipeline",
				Message: "step '" + step.Name + "' failed during transform",
				Cause:   err,
			}
		}
		if current != df {
			current.Release()
		}
		current = next
	}

	if current == df {
		current = df.Copy()
	}
	return current, nil
}

// Fitted reports whether Fit has completed successfully.
func (p *Pipeline) Fitted() bool {
	return p.fitted
}

// Name implements Transformer, so pipelines nest.
func (p *Pipeline) Name() string {
	return "Pipeline"
}
