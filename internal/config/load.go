package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	configName = "loopsim"
	envPrefix  = "LOOPSIM"
)

// DefaultDataDir returns the directory runs are stored in unless overridden.
func DefaultDataDir() string {
	home, err := homedir.Dir()
	if err != nil {
		return ".loopsim"
	}
	return filepath.Join(home, ".loopsim")
}

// Load reads a configuration file (or searches ".", $HOME and /etc/loopsim
// when path is empty) and LOOPSIM_* environment variables on top of the
// defaults of the process. An explicit process argument wins over the
// "process" key of the file. A missing file is not an error when searching.
func Load(path string, process string) (*Config, error) {
	return LoadPreset(path, process, "")
}

// LoadPreset is Load with the named preset in place of the process
// defaults.
func LoadPreset(path, process, preset string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath("/etc/loopsim/")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if process == "" {
		process = v.GetString("process")
	}
	if process == "" {
		process = ProcessTank
	}

	cfg, err := Default(process)
	if err != nil {
		return nil, err
	}
	if preset != "" {
		p := GetPreset(process, preset)
		if p == nil {
			return nil, fmt.Errorf("%w: unknown preset %q for %s (available: %v)", ErrInvalidConfig, preset, process, ListPresets(process))
		}
		cfg = *p
	}
	defaults, err := cfg.ToMap()
	if err != nil {
		return nil, err
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.Set("process", process)

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}
	return &cfg, nil
}

// FromMap builds the configuration of a process from a parameter mapping as
// supplied by an external settings layer. Keys are matched case
// insensitively against the parameter names; unknown keys are rejected.
func FromMap(process string, params map[string]interface{}) (*Config, error) {
	cfg, err := Default(process)
	if err != nil {
		return nil, err
	}
	if err := cfg.Apply(params); err != nil {
		return nil, err
	}
	cfg.Process = process
	return &cfg, nil
}

// Apply overwrites the named parameters of c. Decoding failures match
// ErrInvalidConfig.
func (c *Config) Apply(params map[string]interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(params); err != nil {
		return fmt.Errorf("%w: decoding parameters: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ToMap returns the configuration as a parameter mapping keyed by the
// parameter names.
func (c *Config) ToMap() (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if err := mapstructure.Decode(c, &out); err != nil {
		return nil, err
	}
	return out, nil
}
