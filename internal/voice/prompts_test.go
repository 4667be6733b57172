package voice

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/brand-voice/internal/llm"
	"github.com/jonathan/brand-voice/internal/schemas"
	"github.com/jonathan/brand-voice/internal/types"
)

func TestBuildAnalysisPrompt(t *testing.T) {
	text := "We ship fast and talk plainly. Customers come first."

	prompt := BuildAnalysisPrompt(text)

	assert.Contains(t, prompt, "brand voice analyzer")
	assert.Contains(t, prompt, text)
	assert.Contains(t, prompt, `"formal", "semi-formal", or "informal"`)
	assert.Contains(t, prompt, `"short", "medium", "long", or "varied"`)
	assert.Contains(t, prompt, "3-5 patterns")
	assert.Contains(t, prompt, "array of 5 descriptive words")
	assert.Contains(t, prompt, "Return ONLY the JSON object:")
	assert.NotContains(t, prompt, "{{.")
}

func TestBuildAnalysisPrompt_Deterministic(t *testing.T) {
	assert.Equal(t, BuildAnalysisPrompt("same"), BuildAnalysisPrompt("same"))
}

func TestBuildAnalysisPrompt_TemplateTextInInput(t *testing.T) {
	prompt := BuildAnalysisPrompt("literal {{.Example}} in user text")
	assert.Contains(t, prompt, "literal {{.Example}} in user text")
}

// The prompt's example, the struct tags and the schema must name the same fields.
func TestAnalysisPromptFieldContract(t *testing.T) {
	prompt := BuildAnalysisPrompt("Plain sample text without braces.")

	fields := types.ProfileFieldNames()
	required, err := schemas.RequiredFields()
	require.NoError(t, err)
	assert.ElementsMatch(t, fields, required)

	for _, field := range fields {
		assert.Contains(t, prompt, fmt.Sprintf("%q:", field))
	}

	example := llm.ExtractJSON(prompt)
	require.NotNil(t, example, "prompt example must be a JSON object")
	assert.Len(t, example, len(fields))
	assert.NoError(t, schemas.ValidateToneProfile(example), "prompt example must satisfy the schema")
}

func TestBuildGenerationPrompt(t *testing.T) {
	profile := &types.ToneProfile{
		Formality:          "informal",
		Tone:               "playful and bold",
		SentenceLength:     "short",
		VocabularyPatterns: []string{"slang", "questions", "emoji"},
		ToneKeywords:       []string{"fun", "light", "quick", "bold", "loud"},
	}

	prompt := BuildGenerationPrompt(profile, "summer sale")

	assert.Contains(t, prompt, `about "summer sale"`)
	assert.Contains(t, prompt, "MAX 100 words")
	assert.Contains(t, prompt, "Formality: informal")
	assert.Contains(t, prompt, "Tone: playful and bold")
	assert.Contains(t, prompt, "Sentence length: short")
	assert.Contains(t, prompt, "Vocabulary patterns: slang, questions, emoji")
	assert.Contains(t, prompt, "Tone keywords: fun, light, quick, bold, loud")
	assert.Contains(t, prompt, "No meta-commentary")
	assert.NotContains(t, prompt, Placeholder)
}

func TestBuildGenerationPrompt_MissingToneKeywords(t *testing.T) {
	profile := &types.ToneProfile{
		Formality:          "formal",
		Tone:               "measured",
		SentenceLength:     "long",
		VocabularyPatterns: []string{"citations", "hedging", "passive voice"},
	}

	var prompt string
	require.NotPanics(t, func() {
		prompt = BuildGenerationPrompt(profile, "quarterly results")
	})
	assert.Contains(t, prompt, "Tone keywords: "+Placeholder)
	assert.Contains(t, prompt, "Vocabulary patterns: citations, hedging, passive voice")
}

func TestBuildGenerationPrompt_NilProfile(t *testing.T) {
	prompt := BuildGenerationPrompt(nil, "anything")
	assert.Contains(t, prompt, "Formality: "+Placeholder)
	assert.Contains(t, prompt, "Tone: "+Placeholder)
	assert.Contains(t, prompt, "Sentence length: "+Placeholder)
	assert.Contains(t, prompt, "Vocabulary patterns: "+Placeholder)
}
