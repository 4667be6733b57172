package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrBlocked is returned when Gemini refuses a prompt or stops a candidate for safety
var ErrBlocked = errors.New("response blocked by provider")

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a Gemini client authenticated with apiKey
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if config.GetModel() == "" {
		return nil, fmt.Errorf("no model configured for provider %s", config.Provider)
	}

	opts := []option.ClientOption{option.WithAPIKey(apiKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithEndpoint(config.BaseURL))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, config: config}, nil
}

// Complete sends prompt as a single-turn request at the given temperature
func (c *GeminiClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	return completeWithTimeout(ctx, ProviderGemini, c.config.GetTimeout(), func(ctx context.Context) (string, error) {
		model := c.client.GenerativeModel(c.config.GetModel())
		model.SetTemperature(temperature)
		model.SetCandidateCount(1)

		resp, err := model.GenerateContent(ctx, genai.Text(prompt))
		if err != nil {
			return "", err
		}
		return responseText(resp)
	})
}

// Model returns the Gemini model name
func (c *GeminiClient) Model() string {
	return c.config.GetModel()
}

// Close releases the underlying connection
func (c *GeminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// responseText concatenates the text parts of the first candidate.
// Blocked prompts and safety stops yield ErrBlocked.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != genai.BlockReasonUnspecified {
		return "", fmt.Errorf("prompt %s: %w", fb.BlockReason, ErrBlocked)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates: %w", ErrEmptyResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("candidate stopped for safety: %w", ErrBlocked)
	}
	if candidate.Content == nil {
		return "", fmt.Errorf("no content: %w", ErrEmptyResponse)
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text parts: %w", ErrEmptyResponse)
	}
	return sb.String(), nil
}
