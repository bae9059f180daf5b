// Package config provides configuration loading and management for tomopre.
// It handles loading configuration from YAML files and provides default
// values for every preprocessing stage.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML.
type Config struct {
	// Normalize parameters
	Normalize struct {
		// Cutoff clamps normalized values from above when positive.
		// Zero disables the clamp.
		Cutoff float64 `yaml:"cutoff"`
	} `yaml:"normalize"`

	// Median filter parameters
	Median struct {
		// Axis selects the filtered plane orientation:
		// 0 slice-pixel, 1 projection-pixel, 2 projection-slice.
		Axis int `yaml:"axis"`

		// SizeRows and SizeCols give the filter window extent.
		SizeRows int `yaml:"sizeRows"`
		SizeCols int `yaml:"sizeCols"`
	} `yaml:"median"`

	// Center search parameters
	Center struct {
		// Slice drives the search; -1 means the middle slice.
		Slice int `yaml:"slice"`

		// Tol is the desired sub-pixel accuracy of the center.
		Tol float64 `yaml:"tol"`

		// FilterSigma smooths reconstructions before histogramming.
		FilterSigma float64 `yaml:"filterSigma"`

		// MaxIterations bounds the Nelder-Mead budget.
		MaxIterations int `yaml:"maxIterations"`
	} `yaml:"center"`

	// Ring suppression parameters
	Rings struct {
		// Level is the number of wavelet decomposition levels.
		Level int `yaml:"level"`

		// Wavelet names the filter bank.
		Wavelet string `yaml:"wavelet"`

		// Sigma is the Fourier damping parameter.
		Sigma float64 `yaml:"sigma"`

		// Workers caps concurrent slice filtering; 0 uses all CPUs.
		Workers int `yaml:"workers"`
	} `yaml:"rings"`

	// Phase retrieval parameters
	Phase struct {
		// Enabled switches the stage on.
		Enabled bool `yaml:"enabled"`

		// PixelSize is the detector pixel size in cm.
		PixelSize float64 `yaml:"pixelSize"`

		// Dist is the propagation distance in cm.
		Dist float64 `yaml:"dist"`

		// Energy is the x-ray energy in keV.
		Energy float64 `yaml:"energy"`

		// Alpha regularizes the Fresnel kernel.
		Alpha float64 `yaml:"alpha"`
	} `yaml:"phase"`

	// Output parameters
	Output struct {
		// Verbose enables debug-level logging.
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Median.Axis = 1
	cfg.Median.SizeRows = 1
	cfg.Median.SizeCols = 3

	cfg.Center.Slice = -1
	cfg.Center.Tol = 0.5
	cfg.Center.FilterSigma = 2
	cfg.Center.MaxIterations = 200

	cfg.Rings.Level = 6
	cfg.Rings.Wavelet = "db10"
	cfg.Rings.Sigma = 2

	cfg.Phase.Alpha = 1

	return cfg
}

// LoadConfig loads configuration from a YAML file.
// If the file doesn't exist, it returns the default configuration.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file.
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
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

// CreateDefaultConfigFile creates a default configuration file at the
// specified path.
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
