package sim

import (
	"errors"
	"fmt"
)

var (
	// ErrNilModel indicates an engine was built without a process model.
	ErrNilModel = errors.New("sim: nil process model")

	// ErrNotRun indicates a result was requested before the engine ran.
	ErrNotRun = errors.New("sim: engine has not run")
)

// BatchError identifies which configuration of a batch failed.
type BatchError struct {
	Index   int
	Process string
	Wrapped error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("sim: config %d (%s): %v", e.Index, e.Process, e.Wrapped)
}

func (e *BatchError) Unwrap() error {
	return e.Wrapped
}
