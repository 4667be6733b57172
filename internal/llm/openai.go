package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI and OpenAI-compatible endpoints such as Groq
type OpenAIClient struct {
	client openai.Client
	config *Config
}

// NewOpenAIClient creates a chat completions client
func NewOpenAIClient(config *Config, apiKey string) (*OpenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.GetModel() == "" {
		return nil, fmt.Errorf("no model configured for provider %s", config.Provider)
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		config: config,
	}, nil
}

// Complete sends the prompt as a single user message
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return completeWithTimeout(ctx, c.config.Provider, c.config.GetTimeout(), func(ctx context.Context) (string, error) {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:       openai.ChatModel(c.config.GetModel()),
			Messages:    []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
			Temperature: openai.Float(float64(temperature)),
		})
		if err != nil {
			return "", err
		}
		if len(resp.Choices) == 0 {
			return "", errors.New("empty choices")
		}
		return resp.Choices[0].Message.Content, nil
	})
}

// Model returns the chat model name
func (c *OpenAIClient) Model() string {
	return c.config.GetModel()
}

// Close is a no-op; the HTTP transport is shared
func (c *OpenAIClient) Close() error {
	return nil
}
