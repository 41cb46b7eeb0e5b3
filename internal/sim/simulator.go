package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/control"
	"github.com/san-kum/loopsim/internal/decimate"
	"github.com/san-kum/loopsim/internal/process"
	"github.com/san-kum/loopsim/internal/table"
)

// DefaultIterationLimit bounds a run whose duration is not positive.
const DefaultIterationLimit = 100000

// Engine advances one process model under PID control. An Engine runs at
// most once and is not safe for concurrent use.
type Engine struct {
	model   process.Model
	cfg     config.Config
	pid     *control.PID
	steps   int
	metrics []Metric

	phase  Phase
	result *Result
}

// New validates cfg and prepares an engine for model.
func New(model process.Model, cfg config.Config) (*Engine, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	coef := process.NewCoefficients(cfg)
	return &Engine{
		model:   model,
		cfg:     cfg,
		pid:     control.NewPID(cfg.Kp, coef.TpTi, coef.TdTp, cfg.UMin, cfg.UMax),
		steps:   StepCount(cfg),
		metrics: make([]Metric, 0),
		phase:   Initializing,
	}, nil
}

func (e *Engine) AddMetric(m Metric) { e.metrics = append(e.metrics, m) }

func (e *Engine) Phase() Phase { return e.phase }

// Steps returns the number of steps Run will take.
func (e *Engine) Steps() int { return e.steps }

// Result returns the result of a finished run.
func (e *Engine) Result() (*Result, error) {
	if e.phase != Terminated {
		return nil, ErrNotRun
	}
	return e.result, nil
}

// Run executes the loop. Calling Run again returns the same result.
func (e *Engine) Run() (*Result, error) {
	if e.phase == Terminated {
		return e.result, nil
	}
	e.phase = Running

	for _, m := range e.metrics {
		m.Reset()
	}

	setpoint := e.model.Setpoint()
	result := &Result{
		Process:    e.model.Name(),
		Primary:    e.model.Primary(),
		Controlled: e.model.Controlled(),
		Channels:   e.model.Channels(),
		Flows:      e.model.Flows(),
		Setpoint:   setpoint,
		Tp:         e.cfg.Tp,
		Records:    make([]Record, 0, e.steps+1),
		DivergedAt: -1,
		Metrics:    make(map[string]float64),
	}

	x := e.model.Initial()
	result.Records = append(result.Records, Record{X: x.Clone()})

	var sumE, prevE float64
	for k := 1; k <= e.steps; k++ {
		ek := setpoint - e.model.Observe(x)
		sumE += ek
		u := e.pid.Compute(ek, sumE, prevE)

		x = e.model.Step(u, x)

		rec := Record{
			Step: k,
			T:    float64(k) * e.cfg.Tp,
			E:    ek,
			U:    u,
			X:    x.Clone(),
		}
		result.Records = append(result.Records, rec)
		result.Steps++

		if e.pid.Saturated(u) {
			result.Saturated++
		}
		if result.DivergedAt < 0 && !x.IsValid() {
			result.DivergedAt = k
		}
		for _, m := range e.metrics {
			m.Observe(rec)
		}

		prevE = ek
	}

	for _, m := range e.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	result.Last = result.Records[len(result.Records)-1]

	e.result = result
	e.phase = Terminated
	return result, nil
}

// StepCount returns the number of simulation steps for cfg: floor(T/Tp)
// for a positive duration, DefaultIterationLimit otherwise, capped by a
// positive IterationLimit and never below one. T=0 means no duration was
// given, so it runs to the limit while a positive T shorter than Tp runs
// a single step.
func StepCount(cfg config.Config) int {
	n := DefaultIterationLimit
	if cfg.T > 0 && cfg.Tp > 0 {
		steps := math.Floor(cfg.T / cfg.Tp)
		if steps < float64(math.MaxInt32) {
			n = int(steps)
		} else {
			n = math.MaxInt32
		}
	}
	if cfg.IterationLimit > 0 && cfg.IterationLimit < n {
		n = cfg.IterationLimit
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Simulate validates cfg, runs the configured process and decimates the
// series at cfg.SaveTolerance.
func Simulate(cfg config.Config, metrics ...Metric) (*table.Table, *Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	model, err := process.New(cfg, process.NewCoefficients(cfg))
	if err != nil {
		return nil, nil, err
	}

	engine, err := New(model, cfg)
	if err != nil {
		return nil, nil, err
	}
	for _, m := range metrics {
		engine.AddMetric(m)
	}

	result, err := engine.Run()
	if err != nil {
		return nil, nil, err
	}

	out, err := decimate.Decimate(result.Full(), result.Primary, cfg.SaveTolerance)
	if err != nil {
		return nil, nil, fmt.Errorf("decimate %s: %w", result.Process, err)
	}
	return out, result, nil
}
