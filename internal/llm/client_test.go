package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleteWithTimeout_Success(t *testing.T) {
	text, err := completeWithTimeout(context.Background(), ProviderGroq, time.Second, func(context.Context) (string, error) {
		return "hello", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestCompleteWithTimeout_Deadline(t *testing.T) {
	_, err := completeWithTimeout(context.Background(), ProviderGroq, 10*time.Millisecond, func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, ProviderGroq, apiErr.Provider)
	assert.Contains(t, err.Error(), "did not respond")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCompleteWithTimeout_ProviderError(t *testing.T) {
	cause := errors.New("401 unauthorized")
	_, err := completeWithTimeout(context.Background(), ProviderOpenAI, time.Second, func(context.Context) (string, error) {
		return "", cause
	})

	var apiErr *APICallError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "API call failed")
}

func TestCompleteWithTimeout_EmptyText(t *testing.T) {
	_, err := completeWithTimeout(context.Background(), ProviderGemini, time.Second, func(context.Context) (string, error) {
		return "  \n", nil
	})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestNewClient(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultConfigFor(ProviderMock), "")
	require.NoError(t, err)
	assert.Equal(t, "mock-voice", client.Model())
	assert.NoError(t, client.Close())

	client, err = NewClient(context.Background(), DefaultConfig(), "gsk-test")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, "llama3-8b-8192", client.Model())

	_, err = NewClient(context.Background(), &Config{Provider: "nope"}, "key")
	assert.Error(t, err)
}

func TestNewClient_MissingAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderGroq, ProviderOpenAI, ProviderGemini} {
		_, err := NewClient(context.Background(), DefaultConfigFor(p), "")
		assert.Error(t, err, "provider %s", p)
	}
}

func TestMockClient(t *testing.T) {
	m := NewMockClient()

	profile, err := m.Complete(context.Background(), "analyze this", AnalysisTemperature)
	require.NoError(t, err)
	obj := ExtractJSON(profile)
	require.NotNil(t, obj)
	assert.Equal(t, "semi-formal", obj["formality"])

	content, err := m.Complete(context.Background(), `Write a short piece about "remote work" now`, GenerationTemperature)
	require.NoError(t, err)
	assert.Contains(t, content, "remote work")

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, AnalysisTemperature, calls[0].Temperature)
	assert.Equal(t, GenerationTemperature, calls[1].Temperature)
}

func TestMockClient_Overrides(t *testing.T) {
	m := &MockClient{Response: "fixed"}
	text, err := m.Complete(context.Background(), "anything", 0.3)
	require.NoError(t, err)
	assert.Equal(t, "fixed", text)

	boom := &APICallError{Provider: ProviderMock, Message: "down"}
	m = &MockClient{Err: boom}
	_, err = m.Complete(context.Background(), "anything", 0)
	assert.ErrorIs(t, err, boom)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewMockClient().Complete(ctx, "anything", 0)
	var apiErr *APICallError
	assert.ErrorAs(t, err, &apiErr)
}
