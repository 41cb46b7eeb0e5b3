// Package metrics provides scalar performance measures of a closed-loop run.
package metrics

import (
	"github.com/san-kum/loopsim/internal/config"
	"github.com/san-kum/loopsim/internal/sim"
)

// Default returns the standard metric set for cfg. It satisfies
// sim.MetricSet.
func Default(cfg config.Config) []sim.Metric {
	return []sim.Metric{
		NewIAE(cfg.Tp),
		NewControlEffort(),
		NewControlVariation(),
		NewSaturation(cfg.UMin, cfg.UMax),
		NewErrorMean(),
		NewErrorStdDev(),
		NewSettlingTime(setpoint(cfg), DefaultSettlingBand, DefaultSettlingWindow),
	}
}

func setpoint(cfg config.Config) float64 {
	if cfg.Process == config.ProcessTurbine {
		return cfg.PDest
	}
	return cfg.HDest
}
