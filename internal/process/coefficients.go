package process

import (
	"math"

	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/util"
)

// Coefficients are constants derived from a Config at run start.
type Coefficients struct {
	TpTi float64
	TdTp float64

	// tank
	TpA    float64
	QdPerU float64

	// turbine
	Root2gL float64
	GEtaT   float64
	AKL     float64
	LPerG   float64
	HH      float64
}

func NewCoefficients(cfg config.Config) Coefficients {
	return Coefficients{
		TpTi:    util.Div(cfg.Tp, cfg.Ti),
		TdTp:    util.Div(cfg.Td, cfg.Tp),
		TpA:     util.Div(cfg.Tp, cfg.A),
		QdPerU:  util.Div(cfg.QdMax-cfg.QdMin, cfg.UMax-cfg.UMin),
		Root2gL: math.Sqrt(math.Max(0, 2*cfg.G*cfg.L)),
		GEtaT:   cfg.G * cfg.EtaT,
		AKL:     cfg.A * cfg.K * cfg.L,
		LPerG:   util.Div(cfg.L, cfg.G),
		HH:      cfg.G * cfg.L * cfg.Ro,
	}
}
