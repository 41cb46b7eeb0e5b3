package process

import "github.com/san-kum/loopsim/internal/config"

const (
	TurbineS = iota
	TurbineQ
	TurbineHLoss
	TurbineDeltaH
	TurbineH
	TurbineP
)

var turbineChannels = []string{"S", "Q", "H_loss", "delta_H", "H", "P"}

// Turbine models a mini hydro plant: the control output opens a valve of
// cross-section S, the resulting flow Q produces power P at head H.
type Turbine struct {
	PInit float64
	PDest float64
	Beta  float64

	root2gL float64
	gEtaT   float64
	akl     float64
	lPerG   float64
	hh      float64
}

func NewTurbine(cfg config.Config, coef Coefficients) *Turbine {
	return &Turbine{
		PInit:   cfg.PInit,
		PDest:   cfg.PDest,
		Beta:    cfg.Beta,
		root2gL: coef.Root2gL,
		gEtaT:   coef.GEtaT,
		akl:     coef.AKL,
		lPerG:   coef.LPerG,
		hh:      coef.HH,
	}
}

func (t *Turbine) Name() string       { return config.ProcessTurbine }
func (t *Turbine) Channels() []string { return turbineChannels }
func (t *Turbine) Primary() string    { return "H" }
func (t *Turbine) Controlled() string { return "P" }
func (t *Turbine) Flows() []string    { return []string{"Q"} }
func (t *Turbine) Setpoint() float64  { return t.PDest }

func (t *Turbine) Observe(x State) float64 {
	return x[TurbineP]
}

func (t *Turbine) Initial() State {
	x := make(State, len(turbineChannels))
	x[TurbineP] = t.PInit
	return x
}

func (t *Turbine) Step(u float64, prev State) State {
	s := u * t.Beta
	q := s * t.root2gL
	hLoss := t.akl * q * q

	// water hammer from the change in flow; undefined for a closed valve
	deltaH := 0.0
	if s != 0 {
		deltaH = -t.lPerG / s * (q - prev[TurbineQ])
	}

	h := t.hh + deltaH - hLoss
	p := t.gEtaT * q * h

	x := make(State, len(turbineChannels))
	x[TurbineS] = s
	x[TurbineQ] = q
	x[TurbineHLoss] = hLoss
	x[TurbineDeltaH] = deltaH
	x[TurbineH] = h
	x[TurbineP] = p
	return x
}
