package metrics

import "github.com/san-kum/loopsim/internal/sim"

// Saturation is the fraction of steps whose control output sits on a
// clamp bound.
type Saturation struct {
	uMin, uMax float64
	hits       int
	samples    int
}

func NewSaturation(uMin, uMax float64) *Saturation {
	return &Saturation{uMin: uMin, uMax: uMax}
}

func (s *Saturation) Name() string { return "saturation" }

func (s *Saturation) Observe(rec sim.Record) {
	s.samples++
	if rec.U <= s.uMin || rec.U >= s.uMax {
		s.hits++
	}
}

func (s *Saturation) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return float64(s.hits) / float64(s.samples)
}

func (s *Saturation) Reset() {
	s.hits = 0
	s.samples = 0
}
