// Package config provides configuration loading and management for semonto:
// the tool config, the ontology registry, and the per-ontology mapping and
// constraints files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete semonto configuration
type Config struct {
	Fetch    FetchConfig    `yaml:"fetch"`
	Registry RegistryConfig `yaml:"registry"`
	Log      LogConfig      `yaml:"log"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// FetchConfig configures how ontology sources are read
type FetchConfig struct {
	// Timeout bounds a URL fetch (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
	// MaxBytes caps the size of a source document (default: 64 MiB)
	MaxBytes int64 `yaml:"max_bytes"`
	// UserAgent is sent with URL fetches
	UserAgent string `yaml:"user_agent"`
}

// RegistryConfig locates the ontology registry
type RegistryConfig struct {
	// Path is a registry file (YAML or JSON). Empty means discover entries
	// under SearchDir.
	Path string `yaml:"path"`
	// SearchDir is scanned for *_summary.json files when Path is empty
	SearchDir string `yaml:"search_dir"`
}

// LogConfig configures logging
type LogConfig struct {
	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`
}

// MetricsConfig configures operation metrics export
type MetricsConfig struct {
	// Textfile, when set, receives the metrics in Prometheus text format
	// after each command.
	Textfile string `yaml:"textfile"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			Timeout:   30 * time.Second,
			MaxBytes:  64 << 20,
			UserAgent: "semonto/1.0",
		},
		Registry: RegistryConfig{
			Path:      "",
			SearchDir: "references",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.MaxBytes <= 0 {
		return fmt.Errorf("fetch.max_bytes must be positive")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.Fetch.Timeout != 0 {
		c.Fetch.Timeout = other.Fetch.Timeout
	}
	if other.Fetch.MaxBytes != 0 {
		c.Fetch.MaxBytes = other.Fetch.MaxBytes
	}
	if other.Fetch.UserAgent != "" {
		c.Fetch.UserAgent = other.Fetch.UserAgent
	}

	if other.Registry.Path != "" {
		c.Registry.Path = other.Registry.Path
	}
	if other.Registry.SearchDir != "" {
		c.Registry.SearchDir = other.Registry.SearchDir
	}

	if other.Log.Level != "" {
		c.Log.Level = other.Log.Level
	}

	if other.Metrics.Textfile != "" {
		c.Metrics.Textfile = other.Metrics.Textfile
	}
}
