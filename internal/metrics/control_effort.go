package metrics

import (
	"math"

	"github.com/san-kum/loopsim/internal/sim"
)

// ControlEffort is the mean absolute control output over the steps of a run.
type ControlEffort struct {
	total float64
	n     int
}

func NewControlEffort() *ControlEffort { return &ControlEffort{} }

func (m *ControlEffort) Name() string { return "control_effort" }

func (m *ControlEffort) Observe(rec sim.Record) {
	m.total += math.Abs(rec.U)
	m.n++
}

func (m *ControlEffort) Value() float64 {
	if m.n == 0 {
		return 0
	}
	return m.total / float64(m.n)
}

func (m *ControlEffort) Reset() { m.total, m.n = 0, 0 }

// ControlVariation is the total variation sum(|u_k - u_{k-1}|) of the
// control output, starting from the zero output of the initial record.
type ControlVariation struct {
	prev  float64
	total float64
}

func NewControlVariation() *ControlVariation { return &ControlVariation{} }

func (m *ControlVariation) Name() string { return "control_variation" }

func (m *ControlVariation) Observe(rec sim.Record) {
	m.total += math.Abs(rec.U - m.prev)
	m.prev = rec.U
}

func (m *ControlVariation) Value() float64 { return m.total }

func (m *ControlVariation) Reset() { m.prev, m.total = 0, 0 }
