package metrics

import (
	"math"

	"github.com/asecurityteam/rolling"

	"github.com/san-kum/loopsim/internal/sim"
)

const (
	DefaultSettlingBand   = 0.02
	DefaultSettlingWindow = 10
)

// SettlingTime is the time of the last step at which the rolling maximum of
// |e| lay outside band*|setpoint|. It is 0 when the band is never left and
// the final time when the loop never settles.
type SettlingTime struct {
	limit  float64
	size   int
	window *rolling.PointPolicy
	last   float64
}

func NewSettlingTime(setpoint, band float64, window int) *SettlingTime {
	if window < 1 {
		window = 1
	}
	return &SettlingTime{
		limit:  band * math.Abs(setpoint),
		size:   window,
		window: rolling.NewPointPolicy(rolling.NewWindow(window)),
	}
}

func (s *SettlingTime) Name() string { return "settling_time" }

func (s *SettlingTime) Observe(rec sim.Record) {
	s.window.Append(math.Abs(rec.E))
	if s.window.Reduce(rolling.Max) > s.limit {
		s.last = rec.T
	}
}

func (s *SettlingTime) Value() float64 { return s.last }

func (s *SettlingTime) Reset() {
	s.window = rolling.NewPointPolicy(rolling.NewWindow(s.size))
	s.last = 0
}
