// Package config provides environment-backed defaults for the CLI.
package config

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/spf13/viper"
)

// Config holds scan and presentation defaults. Values come from DUX_*
// environment variables with built-in fallbacks; command-line flags override
// both. There is no configuration file and no persisted state.
type Config struct {
	// Workers is the number of concurrent subtree tasks.
	Workers int `mapstructure:"workers"`
	// Apparent measures logical file length instead of allocated storage.
	Apparent bool `mapstructure:"apparent"`
	// Quiet suppresses the warning list after the report.
	Quiet bool `mapstructure:"quiet"`
	// Verbose enables debug logging.
	Verbose bool `mapstructure:"verbose"`
}

// Load builds the configuration from environment variables and defaults.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("workers", runtime.NumCPU())
	v.SetDefault("apparent", false)
	v.SetDefault("quiet", false)
	v.SetDefault("verbose", false)

	v.SetEnvPrefix("DUX")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling configuration: %w", err)
	}

	return &cfg, nil
}

// Validate rejects option combinations that cannot run.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return errors.New("workers must be at least 1")
	}

	return nil
}
