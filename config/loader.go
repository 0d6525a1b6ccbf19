package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvModel        = "MODEL"
	EnvAPIKey       = "API_KEY"
	EnvBaseURL      = "BASE_URL"
	EnvTimeout      = "TIMEOUT"
	EnvMaxSteps     = "REAGENT_MAX_STEPS"
	EnvStream       = "REAGENT_STREAM"
	EnvLogLevel     = "REAGENT_LOG_LEVEL"
	EnvLogFormat    = "REAGENT_LOG_FORMAT"
	EnvRPS          = "REAGENT_RPS"
	EnvTemperature  = "REAGENT_TEMPERATURE"
	EnvMemory       = "REAGENT_MEMORY"
	EnvInstructions = "REAGENT_INSTRUCTIONS"
)

// Loader builds a Config.
type Loader struct {
	configPath string
	lookupEnv  func(string) (string, bool)
}

// NewLoader creates a Loader that reads the process environment.
func NewLoader() *Loader {
	return &Loader{lookupEnv: os.LookupEnv}
}

// WithConfigPath sets the YAML file to read. A missing file is not an error.
func (l *Loader) WithConfigPath(path string) *Loader {
	l.configPath = path
	return l
}

// WithLookupEnv replaces the environment lookup.
func (l *Loader) WithLookupEnv(fn func(string) (string, bool)) *Loader {
	l.lookupEnv = fn
	return l
}

// Load applies defaults, then the YAML file, then the environment. It does
// not validate; call Config.Validate.
func (l *Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.configPath != "" {
		if err := l.loadFromFile(cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := l.loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	return cfg, nil
}

// Load is shorthand for NewLoader().WithConfigPath(path).Load().
func Load(path string) (*Config, error) {
	return NewLoader().WithConfigPath(path).Load()
}

func (l *Loader) loadFromFile(cfg *Config) error {
	data, err := os.ReadFile(l.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

type binding struct {
	key string
	set func(value string) error
}

func (l *Loader) loadFromEnv(cfg *Config) error {
	bindings := []binding{
		{EnvModel, setString(&cfg.Model.Name)},
		{EnvAPIKey, setString(&cfg.Model.APIKey)},
		{EnvBaseURL, setString(&cfg.Model.BaseURL)},
		{EnvTimeout, setDuration(&cfg.Model.Timeout)},
		{EnvRPS, setFloat(&cfg.Model.RPS)},
		{EnvTemperature, setFloat(&cfg.Model.Temperature)},
		{EnvMaxSteps, setInt(&cfg.Agent.MaxSteps)},
		{EnvStream, setBool(&cfg.Agent.Stream)},
		{EnvMemory, setInt(&cfg.Agent.Memory)},
		{EnvInstructions, setString(&cfg.Agent.Instructions)},
		{EnvLogLevel, setString(&cfg.Log.Level)},
		{EnvLogFormat, setString(&cfg.Log.Format)},
	}

	for _, b := range bindings {
		value, ok := l.lookupEnv(b.key)
		value = strings.TrimSpace(value)
		if !ok || value == "" {
			continue
		}
		if err := b.set(value); err != nil {
			return fmt.Errorf("failed to set %s: %w", b.key, err)
		}
	}
	return nil
}

func setString(dst *string) func(string) error {
	return func(v string) error {
		*dst = v
		return nil
	}
}

func setInt(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func setFloat(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}

func setBool(dst *bool) func(string) error {
	return func(v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		*dst = b
		return nil
	}
}

// setDuration accepts Go durations ("90s") and bare seconds ("60").
func setDuration(dst *time.Duration) func(string) error {
	return func(v string) error {
		if secs, err := strconv.Atoi(v); err == nil {
			*dst = time.Duration(secs) * time.Second
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}
