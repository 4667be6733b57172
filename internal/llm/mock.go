package llm

import (
	"context"
	"fmt"
	"regexp"
	"sync"
)

const mockProfile = `Here is the analysis:
{
  "formality": "semi-formal",
  "tone": "warm and direct",
  "sentence_length": "medium",
  "vocabulary_patterns": ["plain language", "second person address", "concrete examples"],
  "tone_keywords": ["friendly", "clear", "confident", "practical", "upbeat"]
}`

var mockTopicPattern = regexp.MustCompile(`about "([^"]*)"`)

// MockCall records one Complete invocation
type MockCall struct {
	Prompt      string
	Temperature float32
}

// MockClient is a deterministic offline Client.
// With no Response set it answers analysis-temperature prompts with a canned
// profile and other prompts with a short piece naming the topic.
type MockClient struct {
	Response string
	Err      error

	mu    sync.Mutex
	calls []MockCall
}

// NewMockClient creates a mock client with canned answers
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Complete records the call and returns the configured answer
func (m *MockClient) Complete(ctx context.Context, prompt string, temperature float32) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Prompt: prompt, Temperature: temperature})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", &APICallError{Provider: ProviderMock, Message: "context done", Cause: err}
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Response != "" {
		return m.Response, nil
	}
	if temperature == AnalysisTemperature {
		return mockProfile, nil
	}

	topic := "your topic"
	if match := mockTopicPattern.FindStringSubmatch(prompt); match != nil {
		topic = match[1]
	}
	return fmt.Sprintf("**%s** matters. Here is a short, clear take on %s written in the requested voice.", topic, topic), nil
}

// Calls returns a copy of recorded calls
func (m *MockClient) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// Model returns the mock model name
func (m *MockClient) Model() string {
	return defaultModels[ProviderMock]
}

// Close is a no-op
func (m *MockClient) Close() error {
	return nil
}
