package models

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// DefaultTimeout bounds a single HTTP request to the provider.
const DefaultTimeout = 60 * time.Second

// DefaultTemperature is the sampling temperature config files start from.
const DefaultTemperature = 0.7

// OpenAIConfig describes an OpenAI-compatible chat completions endpoint.
type OpenAIConfig struct {
	Model   string
	APIKey  string
	BaseURL string

	// Timeout is the per-request HTTP timeout. Zero means DefaultTimeout.
	Timeout time.Duration

	// Temperature is sent on every call. The zero value asks for greedy
	// decoding; use DefaultTemperature for the usual sampling.
	Temperature float64

	// JSONMode asks the provider for a JSON object response. Only enable it
	// for prompts whose whole reply is JSON, such as a planner.
	JSONMode bool
}

// ErrIncompleteConfig is returned by NewOpenAI when a required field is empty.
var ErrIncompleteConfig = errors.New("MODEL, API_KEY, and BASE_URL must be provided")

// NewOpenAI creates a Model backed by any OpenAI-compatible endpoint.
//
// Additional openai.Option values are applied after the config, so they can
// replace the HTTP client or organization.
//
// Example:
//
//	model, err := models.NewOpenAI(models.OpenAIConfig{
//	    Model:   "gpt-4o-mini",
//	    APIKey:  os.Getenv("API_KEY"),
//	    BaseURL: "https://api.openai.com/v1",
//	})
func NewOpenAI(cfg OpenAIConfig, opts ...openai.Option) (*LCG, error) {
	if cfg.Model == "" || cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil, ErrIncompleteConfig
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	allOpts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	allOpts = append(allOpts, opts...)

	llm, err := openai.New(allOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}
	return NewLCG(llm).WithCallOptions(cfg.CallOptions()...), nil
}

// CallOptions returns the per-call options the config asks for.
func (cfg OpenAIConfig) CallOptions() []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(cfg.Temperature)}
	if cfg.JSONMode {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}
