package config

import (
	"fmt"
	"strconv"
)

type param struct {
	key   string
	label string
	unit  string
	value float64
}

func (c *Config) common() []param {
	return []param{
		{"kp", "Controller gain", "-", c.Kp},
		{"ti", "Integral time", "s", c.Ti},
		{"td", "Derivative time", "s", c.Td},
		{"tp", "Sampling period", "s", c.Tp},
		{"t", "Simulated time", "s", c.T},
		{"u_min", "Control output min", "V", c.UMin},
		{"u_max", "Control output max", "V", c.UMax},
		{"save_tolerance", "Save tolerance", "-", c.SaveTolerance},
	}
}

func (c *Config) tank() []param {
	return []param{
		{"h_init", "Initial level", "m", c.HInit},
		{"h_dest", "Target level", "m", c.HDest},
		{"h_min", "Level min", "m", c.HMin},
		{"h_max", "Level max", "m", c.HMax},
		{"qd_min", "Inflow min", "m^3/s", c.QdMin},
		{"qd_max", "Inflow max", "m^3/s", c.QdMax},
		{"a", "Cross-section area", "m^2", c.A},
		{"beta", "Outflow coefficient", "m^5/2/s", c.Beta},
	}
}

func (c *Config) turbine() []param {
	return []param{
		{"p_init", "Initial power", "W", c.PInit},
		{"p_dest", "Target power", "W", c.PDest},
		{"g", "Gravity", "m/s^2", c.G},
		{"l", "Penstock length", "m", c.L},
		{"ro", "Density", "kg/m^3", c.Ro},
		{"eta_t", "Turbine efficiency", "-", c.EtaT},
		{"a", "Pipe friction", "-", c.A},
		{"k", "Friction correction", "-", c.K},
		{"beta", "Valve coefficient", "m^2/V", c.Beta},
	}
}

// params returns the parameters that matter for the configured process.
func (c *Config) params() []param {
	ps := c.common()
	switch c.Process {
	case ProcessTurbine:
		ps = append(ps, c.turbine()...)
	default:
		ps = append(ps, c.tank()...)
	}
	return ps
}

// Summary describes the configuration as "label: value [unit]" lines.
func (c *Config) Summary() []string {
	lines := []string{fmt.Sprintf("Process: %s", c.Process)}
	for _, p := range c.params() {
		lines = append(lines, fmt.Sprintf("%s: %s [%s]", p.label, strconv.FormatFloat(p.value, 'g', -1, 64), p.unit))
	}
	if c.IterationLimit > 0 {
		lines = append(lines, fmt.Sprintf("Iteration limit: %d", c.IterationLimit))
	}
	return lines
}
