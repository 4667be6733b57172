package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Client is an abstraction over LLM providers
type Client interface {
	// Complete sends a single user prompt and returns the raw text answer
	Complete(ctx context.Context, prompt string, temperature float32) (string, error)
	// Model returns the provider model used for completions
	Model() string
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGroq, ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini:
		return NewGeminiClient(ctx, config, apiKey)
	case ProviderMock:
		return NewMockClient(), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", config.Provider)
	}
}

// completeWithTimeout runs call under the configured deadline and converts
// failures into *APICallError
func completeWithTimeout(ctx context.Context, provider Provider, timeout time.Duration, call func(context.Context) (string, error)) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	text, err := call(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", &APICallError{
				Provider: provider,
				Message:  fmt.Sprintf("provider did not respond within %s", timeout),
				Cause:    err,
			}
		}
		return "", &APICallError{Provider: provider, Message: "completion request failed", Cause: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &APICallError{Provider: provider, Message: "no text returned", Cause: ErrEmptyResponse}
	}
	return text, nil
}
