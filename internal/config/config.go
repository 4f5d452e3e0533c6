// Package config provides configuration management.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"rental-engine/internal/logging"
)

// Config is the main application configuration
type Config struct {
	// Version is the configuration version
	Version string `json:"version"`

	// Catalog locates the product catalog
	Catalog CatalogConfig `json:"catalog"`

	// Optimizer bounds the rate-based search
	Optimizer OptimizerConfig `json:"optimizer"`

	// Output contains output configuration
	Output OutputConfig `json:"output"`

	// Logging contains logging configuration
	Logging logging.Config `json:"logging"`
}

// CatalogConfig contains catalog-related settings
type CatalogConfig struct {
	// Path is an HCL catalog file or a directory of *.hcl files
	Path string `json:"path"`

	// Strict rejects catalogs that fail validation instead of warning
	Strict bool `json:"strict"`
}

// OptimizerConfig contains rate optimizer settings
type OptimizerConfig struct {
	// MaxSteps caps the dynamic-programming table; beyond it the fallback plan is used
	MaxSteps int `json:"max_steps"`

	// CacheEntries sizes the rate plan cache; 0 disables it
	CacheEntries int `json:"cache_entries"`
}

// OutputConfig contains output-related settings
type OutputConfig struct {
	// DefaultFormat is the default output format (cli, json)
	DefaultFormat string `json:"default_format"`

	// ShowPlan prints rate plan lines and allocations
	ShowPlan bool `json:"show_plan"`

	// NoColor disables ANSI colors in cli output
	NoColor bool `json:"no_color"`
}

// DefaultMaxSteps is the default optimizer table ceiling
const DefaultMaxSteps = 500000

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Version: "1.0",
		Catalog: CatalogConfig{
			Path:   "catalog.hcl",
			Strict: true,
		},
		Optimizer: OptimizerConfig{
			MaxSteps:     DefaultMaxSteps,
			CacheEntries: 4096,
		},
		Output: OutputConfig{
			DefaultFormat: "cli",
			ShowPlan:      true,
		},
		Logging: logging.DefaultConfig(),
	}
}

// DefaultPath returns $HOME/.rental-engine.json
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".rental-engine.json")
}

// Load loads configuration from a file. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, err
	}
	if config.Optimizer.MaxSteps <= 0 {
		config.Optimizer.MaxSteps = DefaultMaxSteps
	}

	return config, nil
}

// Save saves configuration to a file
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Global configuration instance
var globalConfig = Default()

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// Set sets the global configuration
func Set(config *Config) {
	globalConfig = config
}
