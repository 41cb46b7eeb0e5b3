package sim

import (
	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/process"
	"github.com/san-kum/loopsim/internal/table"
)

// Record is one row of the undecimated series. Step 0 is the initial
// condition with zero error and zero control.
type Record struct {
	Step int
	T    float64
	E    float64
	U    float64
	X    process.State
}

type Phase int

const (
	Initializing Phase = iota
	Running
	Terminated
)

func (p Phase) String() string {
	switch p {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return "unknown"
}

// Metric accumulates a scalar over the records of a run. The initial
// record is not observed.
type Metric interface {
	Name() string
	Observe(rec Record)
	Value() float64
	Reset()
}

// MetricSet builds a fresh set of metrics for one run.
type MetricSet func(cfg config.Config) []Metric

type Result struct {
	Process    string
	Primary    string
	Controlled string
	Channels   []string
	Flows      []string
	Setpoint   float64
	Tp         float64
	// Records is the undecimated series, nil once dropped.
	Records []Record
	Last    Record
	Steps   int

	// Saturated counts the steps whose control output sat on a clamp bound.
	Saturated int
	// DivergedAt is the first step with a non-finite state, or -1.
	DivergedAt int

	Metrics map[string]float64
}

// Columns returns the column names of Full.
func (r *Result) Columns() []string {
	cols := make([]string, 0, 3+len(r.Channels))
	cols = append(cols, "t", "e", "u")
	return append(cols, r.Channels...)
}

// Full returns the undecimated series, one row per record, or an empty
// table after DropRecords.
func (r *Result) Full() *table.Table {
	t := table.New(r.Columns(), len(r.Records))
	for _, rec := range r.Records {
		row := make([]float64, 0, 3+len(rec.X))
		row = append(row, rec.T, rec.E, rec.U)
		row = append(row, rec.X...)
		t.Append(row)
	}
	return t
}

// Value returns the named column of rec in the layout of Full.
func (r *Result) Value(rec Record, column string) (float64, bool) {
	switch column {
	case "t":
		return rec.T, true
	case "e":
		return rec.E, true
	case "u":
		return rec.U, true
	}
	for i, c := range r.Channels {
		if c == column {
			return rec.X[i], true
		}
	}
	return 0, false
}

// Final returns the last record. It survives DropRecords.
func (r *Result) Final() Record {
	return r.Last
}

// DropRecords releases the undecimated series. Full is empty afterwards.
func (r *Result) DropRecords() {
	r.Records = nil
}

// Output bundles the decimated table of one configuration with its run.
type Output struct {
	Config config.Config
	Table  *table.Table
	Result *Result
}
