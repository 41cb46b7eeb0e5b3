package control

import "github.com/san-kum/loopsim/internal/util"

type PID struct {
	Kp   float64
	TpTi float64
	TdTp float64
	UMin float64
	UMax float64
}

// NewPID builds the law from the gain, the precomputed Tp/Ti and Td/Tp
// ratios and the output clamp range.
func NewPID(kp, tpTi, tdTp, uMin, uMax float64) *PID {
	return &PID{
		Kp:   kp,
		TpTi: tpTi,
		TdTp: tdTp,
		UMin: uMin,
		UMax: uMax,
	}
}

// Raw returns the unclamped correction.
func (p *PID) Raw(e, sumE, prevE float64) float64 {
	return p.Kp * (e + p.TpTi*sumE + p.TdTp*(e-prevE))
}

// Compute returns the control output for the current error e, the sum of
// all errors so far including e, and the previous error.
func (p *PID) Compute(e, sumE, prevE float64) float64 {
	return util.Clamp(p.Raw(e, sumE, prevE), p.UMin, p.UMax)
}

// Saturated reports whether u sits on one of the clamp bounds.
func (p *PID) Saturated(u float64) bool {
	return u <= p.UMin || u >= p.UMax
}

// GetParams returns the parameters of the law.
func (p *PID) GetParams() map[string]float64 {
	return map[string]float64{
		"kp":    p.Kp,
		"tp/ti": p.TpTi,
		"td/tp": p.TdTp,
		"u_min": p.UMin,
		"u_max": p.UMax,
	}
}
