// Package config loads agent settings from defaults, a YAML file and the
// environment, in that order of precedence.
//
//	cfg, err := config.NewLoader().
//	    WithConfigPath("reagent.yaml").
//	    Load()
//
// The model connection uses the unprefixed MODEL, API_KEY, BASE_URL and
// TIMEOUT variables so an existing .env for an OpenAI-compatible endpoint
// works unchanged. Everything else is read from REAGENT_* variables.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete reagent configuration.
type Config struct {
	Model ModelConfig `yaml:"model"`
	Agent AgentConfig `yaml:"agent"`
	Log   LogConfig   `yaml:"log"`
}

// ModelConfig describes the OpenAI-compatible endpoint.
type ModelConfig struct {
	Name    string        `yaml:"name"`
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`

	// RPS caps model calls per second. Zero means unlimited.
	RPS float64 `yaml:"rps"`

	// Temperature is the sampling temperature, 0 to 2.
	Temperature float64 `yaml:"temperature"`
}

// AgentConfig controls the loop.
type AgentConfig struct {
	MaxSteps     int    `yaml:"max_steps"`
	Stream       bool   `yaml:"stream"`
	Instructions string `yaml:"instructions"`

	// Memory is how many finished exchanges the CLI carries into later
	// questions. Zero disables memory.
	Memory int `yaml:"memory"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is json or console.
	Format string `yaml:"format"`
	// Transcript writes a YAML transcript of every run to stderr.
	Transcript bool `yaml:"transcript"`
}

// Defaults
const (
	DefaultMaxSteps    = 5
	DefaultTimeout     = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultLevel       = "info"
	DefaultFormat      = "console"
)

// DefaultConfig returns the configuration used before any file or
// environment variable is applied.
func DefaultConfig() *Config {
	return &Config{
		Model: ModelConfig{Timeout: DefaultTimeout, Temperature: DefaultTemperature},
		Agent: AgentConfig{MaxSteps: DefaultMaxSteps},
		Log:   LogConfig{Level: DefaultLevel, Format: DefaultFormat},
	}
}

var (
	ErrMissingModel = errors.New("MODEL, API_KEY, and BASE_URL must be provided")
	ErrInvalid      = errors.New("invalid config")
)

// Validate reports the first problem that would stop an agent from running.
func (c *Config) Validate() error {
	if c.Model.Name == "" || c.Model.APIKey == "" || c.Model.BaseURL == "" {
		return ErrMissingModel
	}
	if c.Agent.MaxSteps < 1 {
		return fmt.Errorf("%w: max_steps must be at least 1, got %d", ErrInvalid, c.Agent.MaxSteps)
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive, got %s", ErrInvalid, c.Model.Timeout)
	}
	if c.Model.RPS < 0 {
		return fmt.Errorf("%w: rps must not be negative, got %g", ErrInvalid, c.Model.RPS)
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("%w: temperature must be between 0 and 2, got %g", ErrInvalid, c.Model.Temperature)
	}
	if c.Agent.Memory < 0 {
		return fmt.Errorf("%w: memory must not be negative, got %d", ErrInvalid, c.Agent.Memory)
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("%w: log format must be json or console, got %q", ErrInvalid, c.Log.Format)
	}
	return nil
}
