// Package llm provides the language model boundary: provider configuration,
// provider clients and tolerant parsing of model output.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGroq is Groq's OpenAI-compatible endpoint
	ProviderGroq Provider = "groq"
	// ProviderOpenAI is the OpenAI provider
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderMock is a deterministic offline provider
	ProviderMock Provider = "mock"
)

const (
	// AnalysisTemperature keeps profile extraction deterministic
	AnalysisTemperature float32 = 0
	// GenerationTemperature allows variation in generated content
	GenerationTemperature float32 = 0.7

	// DefaultTimeout bounds a single provider call
	DefaultTimeout = 60 * time.Second

	// GroqBaseURL is the OpenAI-compatible base URL for Groq
	GroqBaseURL = "https://api.groq.com/openai/v1/"
)

var defaultModels = map[Provider]string{
	ProviderGroq:   "llama3-8b-8192",
	ProviderOpenAI: "gpt-4o-mini",
	ProviderGemini: "gemini-2.5-flash",
	ProviderMock:   "mock-voice",
}

// Config holds the model configuration for the application
type Config struct {
	Provider Provider
	Model    string
	BaseURL  string
	Timeout  time.Duration
}

// DefaultConfig returns the default configuration (Groq)
func DefaultConfig() *Config {
	return DefaultConfigFor(ProviderGroq)
}

// DefaultConfigFor returns the default configuration for a provider
func DefaultConfigFor(p Provider) *Config {
	cfg := &Config{
		Provider: p,
		Model:    defaultModels[p],
		Timeout:  DefaultTimeout,
	}
	if p == ProviderGroq {
		cfg.BaseURL = GroqBaseURL
	}
	return cfg
}

// ParseProvider converts a configuration string into a Provider
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return ProviderGroq, nil
	}
	if _, ok := defaultModels[p]; !ok {
		return "", fmt.Errorf("unknown llm provider %q", s)
	}
	return p, nil
}

// GetModel returns the configured model, falling back to the provider default
func (c *Config) GetModel() string {
	if c.Model != "" {
		return c.Model
	}
	return defaultModels[c.Provider]
}

// GetTimeout returns the configured timeout or DefaultTimeout
func (c *Config) GetTimeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return DefaultTimeout
}

// WithModel returns a new Config with a specific model
func (c *Config) WithModel(model string) *Config {
	newConfig := *c
	newConfig.Model = model
	return &newConfig
}
