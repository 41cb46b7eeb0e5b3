package process

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/loopsim/internal/config"
)

var ErrUnknownProcess = errors.New("process: unknown process")

type Factory func(cfg config.Config, coef Coefficients) Model

type Registry struct {
	models map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{
		models: make(map[string]Factory),
	}

	r.Register(config.ProcessTank, func(cfg config.Config, coef Coefficients) Model { return NewTank(cfg, coef) })
	r.Register(config.ProcessTurbine, func(cfg config.Config, coef Coefficients) Model { return NewTurbine(cfg, coef) })

	return r
}

func (r *Registry) Register(name string, fn Factory) {
	r.models[name] = fn
}

// New builds the model named by cfg.Process.
func (r *Registry) New(cfg config.Config, coef Coefficients) (Model, error) {
	fn, ok := r.models[cfg.Process]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProcess, cfg.Process)
	}
	return fn(cfg, coef), nil
}

func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var defaultRegistry = NewRegistry()

// New builds a model from the default registry.
func New(cfg config.Config, coef Coefficients) (Model, error) {
	return defaultRegistry.New(cfg, coef)
}
