// Package automation runs scripted sequences of simulations described in
// YAML scenario files, and one-parameter sweeps.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/metrics"
	"github.com/san-kum/loopsim/internal/sim"
	"github.com/san-kum/loopsim/internal/storage"
	"github.com/san-kum/loopsim/internal/ui"
)

// Scenario defines a scripted simulation sequence
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Workers     int            `yaml:"workers"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep is a single run of a scenario. Params are applied on top
// of the preset, or of the process defaults when no preset is named.
type ScenarioStep struct {
	Name    string                 `yaml:"name"`
	Process string                 `yaml:"process"`
	Preset  string                 `yaml:"preset"`
	Params  map[string]interface{} `yaml:"params"`
	Save    bool                   `yaml:"save"`
}

// StepResult is the outcome of one scenario step. ID is set for saved steps.
type StepResult struct {
	Name   string
	ID     string
	Output *sim.Output
}

var ErrEmptyScenario = errors.New("automation: scenario has no steps")

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

func (s ScenarioStep) label(i int) string {
	if s.Name != "" {
		return s.Name
	}
	return fmt.Sprintf("step %d", i+1)
}

// Config resolves the configuration of the step.
func (s ScenarioStep) Config() (config.Config, error) {
	return config.Resolve(s.Process, s.Preset, s.Params)
}

// RunScenario executes all steps of a scenario concurrently and stores the
// steps marked for saving in st. Results keep the order of the steps.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store) ([]StepResult, error) {
	if len(scenario.Steps) == 0 {
		return nil, ErrEmptyScenario
	}

	cfgs := make([]config.Config, 0, len(scenario.Steps))
	for i, step := range scenario.Steps {
		cfg, err := step.Config()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.label(i), err)
		}
		cfgs = append(cfgs, cfg)
	}

	ui.Debug("Running scenario %q with %d steps", scenario.Name, len(cfgs))
	outputs, err := sim.Batch(ctx, cfgs, scenario.Workers, metrics.Default)
	if err != nil {
		var batchErr *sim.BatchError
		if errors.As(err, &batchErr) {
			return nil, fmt.Errorf("%s: %w", scenario.Steps[batchErr.Index].label(batchErr.Index), err)
		}
		return nil, err
	}

	results := make([]StepResult, len(outputs))
	for i, out := range outputs {
		step := scenario.Steps[i]
		results[i] = StepResult{Name: step.label(i), Output: out}
		if !step.Save || st == nil {
			continue
		}

		id, err := st.Save(storage.Metadata{
			Process: out.Config.Process,
			Preset:  step.Preset,
			Steps:   out.Result.Steps,
			Config:  out.Config,
			Metrics: out.Result.Metrics,
		}, out.Table)
		if err != nil {
			return results, fmt.Errorf("%s: saving run: %w", results[i].Name, err)
		}
		results[i].ID = id
	}

	return results, nil
}

// ParameterSweep runs simulations across evenly spaced values of one
// parameter.
type ParameterSweep struct {
	Base      config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
	Workers   int
}

// SweepResult holds results from a parameter sweep
type SweepResult struct {
	ParamValue float64
	Final      float64
	Saturated  int
	Metrics    map[string]float64
}

// Values returns the parameter values visited by the sweep.
func (s *ParameterSweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.ParamMin}
	}
	paramStep := (s.ParamMax - s.ParamMin) / float64(s.NumSteps-1)
	values := make([]float64, s.NumSteps)
	for i := range values {
		values[i] = s.ParamMin + float64(i)*paramStep
	}
	return values
}

// RunSweep executes a parameter sweep. Final is the last value of the
// controlled variable.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	values := sweep.Values()

	cfgs := make([]config.Config, len(values))
	for i, v := range values {
		cfg := sweep.Base
		if err := cfg.Apply(map[string]interface{}{sweep.ParamName: v}); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, v, err)
		}
		cfgs[i] = cfg
	}

	outputs, err := sim.Batch(ctx, cfgs, sweep.Workers, metrics.Default)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(outputs))
	for i, out := range outputs {
		final, _ := out.Result.Value(out.Result.Final(), out.Result.Controlled)
		results[i] = SweepResult{
			ParamValue: values[i],
			Final:      final,
			Saturated:  out.Result.Saturated,
			Metrics:    out.Result.Metrics,
		}
	}

	return results, nil
}
