// Package config provides configuration loading and management for
// changedetect. It handles loading configuration from YAML files and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"changedetect/pkg/detect"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Detection parameters
	Detection struct {
		// BlockSize is the side length of the blocks and neighborhoods
		// used by the pipeline (must be odd)
		BlockSize int `yaml:"blockSize"`

		// Clusters is the number of k-means groups
		Clusters int `yaml:"clusters"`

		// MaxIterations caps the k-means refinement loop
		MaxIterations int `yaml:"maxIterations"`

		// Seed fixes the k-means initialization for reproducible runs
		Seed int64 `yaml:"seed"`

		// Workers is the number of goroutines used for feature
		// extraction
		Workers int `yaml:"workers"`
	} `yaml:"detection"`

	// Stream parameters for the incremental compression model
	Stream struct {
		// Components is the number of basis vectors the streaming
		// model retains
		Components int `yaml:"components"`
	} `yaml:"stream"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Detection defaults mirror detect.DefaultParams
	params := detect.DefaultParams()
	cfg.Detection.BlockSize = params.BlockSize
	cfg.Detection.Clusters = params.Clusters
	cfg.Detection.MaxIterations = params.MaxIterations
	cfg.Detection.Seed = params.Seed
	cfg.Detection.Workers = params.Workers

	// Stream defaults match the reference incremental model
	cfg.Stream.Components = 50

	// Output defaults
	cfg.Output.Verbose = true

	return cfg
}

// DetectionParams converts the detection section into the parameter
// struct consumed by detect.NewDetector.
func (c *Config) DetectionParams() detect.Params {
	return detect.Params{
		BlockSize:     c.Detection.BlockSize,
		Clusters:      c.Detection.Clusters,
		MaxIterations: c.Detection.MaxIterations,
		Seed:          c.Detection.Seed,
		Workers:       c.Detection.Workers,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	return SaveConfig(DefaultConfig(), configPath)
}
