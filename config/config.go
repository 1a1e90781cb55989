// Package config provides configuration loading and management for
// Plotdeck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Plotdeck configuration
type Config struct {
	Model  ModelConfig  `yaml:"model"`
	Retry  RetryConfig  `yaml:"retry"`
	Server ServerConfig `yaml:"server"`
	NATS   NATSConfig   `yaml:"nats"`
	Usage  UsageConfig  `yaml:"usage"`
}

// ModelConfig configures the model gateway
type ModelConfig struct {
	// Provider is the gateway provider ("openai", "anthropic", "ollama")
	Provider string `yaml:"provider"`
	// Name is the model identifier (e.g., "gpt-4o-mini")
	Name string `yaml:"name"`
	// Endpoint overrides the provider's default API endpoint
	Endpoint string `yaml:"endpoint"`
	// Temperature controls randomness (0.0-1.0, default: 0.1)
	Temperature float64 `yaml:"temperature"`
	// MaxTokens caps response length (0 = provider default)
	MaxTokens int `yaml:"max_tokens"`
	// Timeout is the maximum time to wait for model responses
	Timeout time.Duration `yaml:"timeout"`
}

// RetryConfig configures the gateway retry policy
type RetryConfig struct {
	// MaxAttempts is the total attempts per request (default 2: one
	// retry with the identical prompt)
	MaxAttempts int `yaml:"max_attempts"`
	// BackoffBase is the initial backoff duration
	BackoffBase time.Duration `yaml:"backoff_base"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	// Listen is the address the API binds to
	Listen string `yaml:"listen"`
}

// NATSConfig configures the optional usage-record mirror
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// Subject overrides the default publish subject
	Subject string `yaml:"subject"`
}

// UsageConfig configures the usage ledger
type UsageConfig struct {
	// MaxRecords bounds the in-memory request log
	MaxRecords int `yaml:"max_records"`
	// RecentLimit is how many records the usage endpoint returns
	RecentLimit int `yaml:"recent_limit"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{
			Provider:    "openai",
			Name:        "gpt-4o-mini",
			Temperature: 0.1,
			Timeout:     60 * time.Second,
		},
		Retry: RetryConfig{
			MaxAttempts: 2,
			BackoffBase: 2 * time.Second,
		},
		Server: ServerConfig{
			Listen: ":8080",
		},
		Usage: UsageConfig{
			MaxRecords:  1000,
			RecentLimit: 10,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Model.Provider == "" {
		return fmt.Errorf("model.provider is required")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model.name is required")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 1 {
		return fmt.Errorf("model.temperature must be between 0 and 1")
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("retry.max_attempts must be at least 1")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("server.listen is required")
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
	// Ensure parent directory exists
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

// Merge merges another config into this one (other takes precedence for
// non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Model
	if other.Model.Provider != "" {
		c.Model.Provider = other.Model.Provider
	}
	if other.Model.Name != "" {
		c.Model.Name = other.Model.Name
	}
	if other.Model.Endpoint != "" {
		c.Model.Endpoint = other.Model.Endpoint
	}
	if other.Model.Temperature != 0 {
		c.Model.Temperature = other.Model.Temperature
	}
	if other.Model.MaxTokens != 0 {
		c.Model.MaxTokens = other.Model.MaxTokens
	}
	if other.Model.Timeout != 0 {
		c.Model.Timeout = other.Model.Timeout
	}

	// Retry
	if other.Retry.MaxAttempts != 0 {
		c.Retry.MaxAttempts = other.Retry.MaxAttempts
	}
	if other.Retry.BackoffBase != 0 {
		c.Retry.BackoffBase = other.Retry.BackoffBase
	}

	// Server
	if other.Server.Listen != "" {
		c.Server.Listen = other.Server.Listen
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}

	// Usage
	if other.Usage.MaxRecords != 0 {
		c.Usage.MaxRecords = other.Usage.MaxRecords
	}
	if other.Usage.RecentLimit != 0 {
		c.Usage.RecentLimit = other.Usage.RecentLimit
	}
}
