package config

import (
	"fmt"

	"github.com/san-kum/loopsim/internal/util"
)

// MaxSaveDecimals bounds the rounding precision implied by save_tolerance,
// about the precision of a float64.
const MaxSaveDecimals = 15

// Validate checks the numeric preconditions of a run. Degenerate
// denominators such as Ti, A or u_max-u_min are allowed; they are guarded
// during the run.
func (c *Config) Validate() error {
	if c.Process != ProcessTank && c.Process != ProcessTurbine {
		return fmt.Errorf("%w: %q", ErrUnknownProcess, c.Process)
	}

	for _, p := range c.params() {
		if !util.IsFinite(p.value) {
			return &ConfigurationError{Field: p.key, Value: p.value, Reason: "must be a finite number"}
		}
	}

	if c.Tp <= 0 {
		return &ConfigurationError{Field: "tp", Value: c.Tp, Reason: "sampling period must be positive"}
	}
	if c.T < 0 {
		return &ConfigurationError{Field: "t", Value: c.T, Reason: "simulated time must not be negative"}
	}
	if c.SaveTolerance <= 0 {
		return &ConfigurationError{Field: "save_tolerance", Value: c.SaveTolerance, Reason: "must be positive"}
	}
	if !util.IsFinite(1/c.SaveTolerance) || util.Decimals(c.SaveTolerance) > MaxSaveDecimals {
		return &ConfigurationError{Field: "save_tolerance", Value: c.SaveTolerance, Reason: fmt.Sprintf("must not need more than %d decimal places", MaxSaveDecimals)}
	}
	if c.IterationLimit < 0 {
		return &ConfigurationError{Field: "iteration_limit", Value: float64(c.IterationLimit), Reason: "must not be negative"}
	}
	if c.UMin > c.UMax {
		return &ConfigurationError{Field: "u_min", Value: c.UMin, Reason: fmt.Sprintf("must not exceed u_max (%v)", c.UMax)}
	}

	if c.Process == ProcessTurbine && 2*c.G*c.L < 0 {
		return &ConfigurationError{Field: "g", Value: c.G, Reason: "2*g*L must not be negative"}
	}

	return nil
}
