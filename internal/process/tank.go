package process

import (
	"math"

	"github.com/san-kum/loopsim/internal/config"
)

const (
	TankQd = iota
	TankQo
	TankH
)

var tankChannels = []string{"Qd", "Qo", "h"}

// Tank is a reservoir whose inflow is proportional to the control output
// and whose outflow follows Torricelli's law. The level is not clamped to
// [h_min, h_max]; those bounds are informational only.
type Tank struct {
	HInit float64
	HDest float64
	HMin  float64
	HMax  float64
	Beta  float64

	tpA    float64
	qdPerU float64
}

func NewTank(cfg config.Config, coef Coefficients) *Tank {
	return &Tank{
		HInit:  cfg.HInit,
		HDest:  cfg.HDest,
		HMin:   cfg.HMin,
		HMax:   cfg.HMax,
		Beta:   cfg.Beta,
		tpA:    coef.TpA,
		qdPerU: coef.QdPerU,
	}
}

func (t *Tank) Name() string       { return config.ProcessTank }
func (t *Tank) Channels() []string { return tankChannels }
func (t *Tank) Primary() string    { return "h" }
func (t *Tank) Controlled() string { return "h" }
func (t *Tank) Flows() []string    { return []string{"Qd", "Qo"} }
func (t *Tank) Setpoint() float64  { return t.HDest }

func (t *Tank) Observe(x State) float64 {
	return x[TankH]
}

func (t *Tank) Initial() State {
	return State{0, 0, t.HInit}
}

func (t *Tank) Step(u float64, prev State) State {
	h := prev[TankH]

	qd := u * t.qdPerU

	// no outflow from a negative level
	qo := 0.0
	if h >= 0 {
		qo = t.Beta * math.Sqrt(h)
	}

	return State{qd, qo, h + t.tpA*(qd-qo)}
}
