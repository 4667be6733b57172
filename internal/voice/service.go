// Package voice derives brand voice profiles from sample text and generates content in a saved voice.
package voice

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/llm"
	"github.com/jonathan/brand-voice/internal/schemas"
	"github.com/jonathan/brand-voice/internal/textbudget"
	"github.com/jonathan/brand-voice/internal/types"
)

// AnalyzeInput is pasted text plus already extracted files
type AnalyzeInput struct {
	Texts []string
	Files []extract.ExtractedText
}

// AnalyzeResult is a validated profile together with the model output it came from
type AnalyzeResult struct {
	Profile     *types.ToneProfile
	Raw         string
	PromptChars int
}

// Service runs analysis and generation against an LLM client
type Service struct {
	client   llm.Client
	logger   *zap.Logger
	markdown goldmark.Markdown
}

// NewService creates a Service
func NewService(client llm.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		logger:   logger,
		markdown: goldmark.New(),
	}
}

// Analyze derives a ToneProfile from the input.
// Missing input fails before any model call; output that is not a valid
// profile fails with the raw model text attached.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (*AnalyzeResult, error) {
	combined, err := extract.Combine(in.Texts, in.Files)
	if errors.Is(err, extract.ErrNoInput) {
		return nil, ErrNoInput
	}
	if err != nil {
		return nil, err
	}

	prompt := BuildAnalysisPrompt(combined)

	s.logger.Info("analyzing tone",
		zap.String("model", s.client.Model()),
		zap.Int("input_chars", len(combined)),
		zap.Int("estimated_tokens", textbudget.EstimateTokens(prompt)))

	raw, err := s.client.Complete(ctx, prompt, llm.AnalysisTemperature)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to analyze tone",
			Cause:   err,
		}
	}

	s.logger.Debug("raw analysis output", zap.String("raw", raw))

	obj := llm.ExtractJSON(raw)
	if obj == nil {
		return nil, &MalformedOutputError{Raw: raw}
	}

	if err := schemas.ValidateToneProfile(obj); err != nil {
		var schemaErr *schemas.ValidationError
		if errors.As(err, &schemaErr) {
			return nil, &ValidationError{Fields: schemaErr.Messages(), Raw: raw, Cause: err}
		}
		return nil, fmt.Errorf("failed to validate tone profile: %w", err)
	}

	profile, err := decodeProfile(obj)
	if err != nil {
		return nil, &MalformedOutputError{Raw: raw, Cause: err}
	}

	return &AnalyzeResult{
		Profile:     profile,
		Raw:         raw,
		PromptChars: len(prompt),
	}, nil
}

// Generate writes a short piece about topic in the voice of profile
func (s *Service) Generate(ctx context.Context, profile *types.ToneProfile, topic string) (*types.GeneratedContent, error) {
	if profile == nil {
		return nil, &MissingFieldError{Field: "profile"}
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, &MissingFieldError{Field: "topic"}
	}

	if err := profile.Validate(); err != nil {
		return nil, &ValidationError{Fields: types.ValidationMessages(err), Cause: err}
	}

	prompt := BuildGenerationPrompt(profile, topic)

	s.logger.Info("generating content",
		zap.String("model", s.client.Model()),
		zap.String("topic", topic))

	raw, err := s.client.Complete(ctx, prompt, llm.GenerationTemperature)
	if err != nil {
		return nil, &APICallError{
			Message: "failed to generate content",
			Cause:   err,
		}
	}

	text, wordCount, trimmed := textbudget.TrimWords(raw, textbudget.GeneratedMaxWords)

	html, err := s.renderHTML(text)
	if err != nil {
		return nil, fmt.Errorf("failed to render content: %w", err)
	}

	return &types.GeneratedContent{
		Text:      text,
		HTML:      html,
		WordCount: wordCount,
		Trimmed:   trimmed,
	}, nil
}

func (s *Service) renderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(text), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// decodeProfile converts a schema-checked JSON object into a ToneProfile
func decodeProfile(obj map[string]any) (*types.ToneProfile, error) {
	data, err := json.Marshal(obj)
	if err != nil {
		return nil, err
	}
	var profile types.ToneProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return &profile, nil
}
