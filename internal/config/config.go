package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	ProcessTank    = "tank"
	ProcessTurbine = "turbine"
)

const (
	DefaultTp            = 0.1
	DefaultDuration      = 5000.0
	DefaultTi            = 0.25
	DefaultTd            = 0.01
	DefaultSaveTolerance = 0.001
)

// Config is the immutable parameter record of a single simulation run.
// Tank and Turbine share the controller, timing and limit fields; A and
// beta are reused by both variants with variant specific meaning.
type Config struct {
	Process string `yaml:"process" mapstructure:"process" json:"process"`

	Kp float64 `yaml:"kp" mapstructure:"kp" json:"kp"`
	Ti float64 `yaml:"ti" mapstructure:"ti" json:"ti"`
	Td float64 `yaml:"td" mapstructure:"td" json:"td"`
	Tp float64 `yaml:"tp" mapstructure:"tp" json:"tp"`
	T  float64 `yaml:"t" mapstructure:"t" json:"t"`

	UMin float64 `yaml:"u_min" mapstructure:"u_min" json:"u_min"`
	UMax float64 `yaml:"u_max" mapstructure:"u_max" json:"u_max"`

	A    float64 `yaml:"a" mapstructure:"a" json:"a"`
	Beta float64 `yaml:"beta" mapstructure:"beta" json:"beta"`

	HInit float64 `yaml:"h_init" mapstructure:"h_init" json:"h_init"`
	HDest float64 `yaml:"h_dest" mapstructure:"h_dest" json:"h_dest"`
	HMin  float64 `yaml:"h_min" mapstructure:"h_min" json:"h_min"`
	HMax  float64 `yaml:"h_max" mapstructure:"h_max" json:"h_max"`
	QdMin float64 `yaml:"qd_min" mapstructure:"qd_min" json:"qd_min"`
	QdMax float64 `yaml:"qd_max" mapstructure:"qd_max" json:"qd_max"`

	G     float64 `yaml:"g" mapstructure:"g" json:"g"`
	L     float64 `yaml:"l" mapstructure:"l" json:"l"`
	Ro    float64 `yaml:"ro" mapstructure:"ro" json:"ro"`
	EtaT  float64 `yaml:"eta_t" mapstructure:"eta_t" json:"eta_t"`
	K     float64 `yaml:"k" mapstructure:"k" json:"k"`
	PInit float64 `yaml:"p_init" mapstructure:"p_init" json:"p_init"`
	PDest float64 `yaml:"p_dest" mapstructure:"p_dest" json:"p_dest"`

	SaveTolerance  float64 `yaml:"save_tolerance" mapstructure:"save_tolerance" json:"save_tolerance"`
	IterationLimit int     `yaml:"iteration_limit" mapstructure:"iteration_limit" json:"iteration_limit"`
}

// Processes lists the supported process variants.
func Processes() []string {
	return []string{ProcessTank, ProcessTurbine}
}

// Default returns the reference configuration of the given process variant.
func Default(process string) (Config, error) {
	switch process {
	case ProcessTank:
		return DefaultTank(), nil
	case ProcessTurbine:
		return DefaultTurbine(), nil
	}
	return Config{}, fmt.Errorf("%w: %q", ErrUnknownProcess, process)
}

func DefaultTank() Config {
	return Config{
		Process:       ProcessTank,
		Kp:            0.0015,
		Ti:            DefaultTi,
		Td:            DefaultTd,
		Tp:            DefaultTp,
		T:             DefaultDuration,
		UMin:          0,
		UMax:          10,
		A:             2,
		Beta:          0.035,
		HInit:         0,
		HDest:         1.5,
		HMin:          0,
		HMax:          10,
		QdMin:         0,
		QdMax:         0.05,
		SaveTolerance: DefaultSaveTolerance,
	}
}

func DefaultTurbine() Config {
	return Config{
		Process:       ProcessTurbine,
		Kp:            0.00015,
		Ti:            DefaultTi,
		Td:            DefaultTd,
		Tp:            DefaultTp,
		T:             DefaultDuration,
		UMin:          0,
		UMax:          1000,
		A:             0.01,
		Beta:          0.00035,
		G:             10,
		L:             10,
		Ro:            1000,
		EtaT:          0.9,
		K:             1,
		PInit:         0,
		PDest:         5_600_000,
		SaveTolerance: DefaultSaveTolerance,
	}
}

// LoadYAML reads a yaml file on top of the defaults of the process it names.
func LoadYAML(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var head struct {
		Process string `yaml:"process"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	if head.Process == "" {
		head.Process = ProcessTank
	}

	cfg, err := Default(head.Process)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
