package config

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is matched by every ConfigurationError and by
	// parameter decoding failures.
	ErrInvalidConfig = errors.New("config: invalid configuration")

	ErrUnknownProcess = errors.New("config: unknown process")
)

// ConfigurationError reports a parameter that violates a numeric
// precondition of the simulation. It is returned before any step runs.
type ConfigurationError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrInvalidConfig
}
