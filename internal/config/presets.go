package config

import (
	"fmt"
	"sort"
)

var Presets = map[string]map[string]func() Config{
	ProcessTank: {
		"default": DefaultTank,
		"fill": func() Config {
			c := DefaultTank()
			c.Kp = 0.05
			c.HInit = 0
			c.HDest = 5
			c.QdMax = 0.5
			c.T = 1000
			c.SaveTolerance = 0.01
			return c
		},
		"drain": func() Config {
			c := DefaultTank()
			c.HInit = 8
			c.HDest = 2
			c.T = 2000
			c.SaveTolerance = 0.01
			return c
		},
	},
	ProcessTurbine: {
		"default": DefaultTurbine,
		"idle": func() Config {
			c := DefaultTurbine()
			c.Kp = 0
			c.PDest = 0
			c.T = 100
			return c
		},
	},
}

// GetPreset returns a fresh copy of the named preset, or nil if it is unknown.
func GetPreset(process, preset string) *Config {
	processPresets, ok := Presets[process]
	if !ok {
		return nil
	}
	fn, ok := processPresets[preset]
	if !ok {
		return nil
	}
	cfg := fn()
	return &cfg
}

func ListPresets(process string) []string {
	processPresets, ok := Presets[process]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(processPresets))
	for name := range processPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds a validated configuration from the process defaults, or
// the named preset when one is given, with params applied on top.
func Resolve(process, preset string, params map[string]interface{}) (Config, error) {
	cfg, err := Default(process)
	if err != nil {
		return cfg, err
	}
	if preset != "" {
		p := GetPreset(process, preset)
		if p == nil {
			return cfg, fmt.Errorf("%w: unknown preset %q for %s", ErrInvalidConfig, preset, process)
		}
		cfg = *p
	}

	if len(params) > 0 {
		if err := cfg.Apply(params); err != nil {
			return cfg, err
		}
	}
	cfg.Process = process
	return cfg, cfg.Validate()
}
