package metrics

import (
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/loopsim/internal/sim"
)

type errorSamples struct {
	values []float64
}

func (s *errorSamples) Observe(rec sim.Record) { s.values = append(s.values, rec.E) }

func (s *errorSamples) Reset() { s.values = s.values[:0] }

// ErrorMean is the mean control error.
type ErrorMean struct{ errorSamples }

func NewErrorMean() *ErrorMean { return &ErrorMean{} }

func (m *ErrorMean) Name() string { return "error_mean" }

func (m *ErrorMean) Value() float64 {
	if len(m.values) == 0 {
		return 0
	}
	return stat.Mean(m.values, nil)
}

// ErrorStdDev is the sample standard deviation of the control error.
type ErrorStdDev struct{ errorSamples }

func NewErrorStdDev() *ErrorStdDev { return &ErrorStdDev{} }

func (m *ErrorStdDev) Name() string { return "error_stddev" }

func (m *ErrorStdDev) Value() float64 {
	if len(m.values) < 2 {
		return 0
	}
	return stat.StdDev(m.values, nil)
}
