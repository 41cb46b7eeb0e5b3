package metrics

import (
	"math"

	"github.com/san-kum/loopsim/internal/sim"
)

// IAE is the integral of the absolute error, sum(|e|)*Tp.
type IAE struct {
	tp  float64
	sum float64
}

func NewIAE(tp float64) *IAE {
	return &IAE{tp: tp}
}

func (m *IAE) Name() string { return "iae" }

func (m *IAE) Observe(rec sim.Record) {
	m.sum += math.Abs(rec.E)
}

func (m *IAE) Value() float64 { return m.sum * m.tp }

func (m *IAE) Reset() { m.sum = 0 }
