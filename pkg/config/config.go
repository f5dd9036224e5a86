// Package config provides configuration loading and management for
// reflspeckit. It handles loading configuration from YAML files and provides
// default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/z-vig/reflspeckit/pkg/continuum"
	"github.com/z-vig/reflspeckit/pkg/pipeline"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Pipeline parameters
	Pipeline struct {
		// SigmaThreshold is the z-score above which a sample is an outlier
		SigmaThreshold float64 `yaml:"sigmaThreshold"`

		// FilterWidth is the box-filter window size in samples
		FilterWidth int `yaml:"filterWidth"`

		// FitOrder is the polynomial order for absorption-feature fits
		FitOrder int `yaml:"fitOrder"`
	} `yaml:"pipeline"`

	// Continuum-removal parameters
	Continuum struct {
		// WidePeakRanges selects the wide second-pass peak windows for
		// instruments with coverage past 2600 nm
		WidePeakRanges bool `yaml:"widePeakRanges"`
	} `yaml:"continuum"`

	// Output parameters
	Output struct {
		// Verbose controls the level of progress output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Pipeline.SigmaThreshold = pipeline.DefaultSigmaThreshold
	cfg.Pipeline.FilterWidth = pipeline.DefaultFilterWidth
	cfg.Pipeline.FitOrder = 4

	cfg.Continuum.WidePeakRanges = false

	cfg.Output.Verbose = true

	return cfg
}

// ContinuumStrategy builds the continuum-removal strategy the configuration
// selects.
func (c *Config) ContinuumStrategy() continuum.DoubleLine {
	d := continuum.NewDoubleLine()
	if c.Continuum.WidePeakRanges {
		d.PeakRanges = continuum.WidePeakRanges
	}
	return d
}

// LoadConfig reads configuration from a YAML file. A missing file is not an
// error; the defaults are returned unchanged.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file, creating parent
// directories as needed.
func SaveConfig(cfg *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// CreateDefaultConfigFile writes the default configuration to path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
