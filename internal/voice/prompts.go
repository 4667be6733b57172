package voice

import (
	"strings"

	"github.com/jonathan/brand-voice/internal/prompts"
	"github.com/jonathan/brand-voice/internal/types"
)

// Placeholder stands in for profile fields that are missing or empty
const Placeholder = "(not specified)"

// BuildAnalysisPrompt constructs the prompt that asks the model for a ToneProfile
func BuildAnalysisPrompt(combinedText string) string {
	return prompts.MustRender(prompts.AnalyzeToneProfile, map[string]string{
		"Example": prompts.MustGet(prompts.ToneProfileExample),
		"Text":    combinedText,
	})
}

// BuildGenerationPrompt constructs the content generation prompt.
// A nil profile or missing fields render as Placeholder.
func BuildGenerationPrompt(profile *types.ToneProfile, topic string) string {
	if profile == nil {
		profile = &types.ToneProfile{}
	}

	return prompts.MustRender(prompts.GenerateContent, map[string]string{
		"Topic":              topic,
		"Formality":          orPlaceholder(profile.Formality),
		"Tone":               orPlaceholder(profile.Tone),
		"SentenceLength":     orPlaceholder(profile.SentenceLength),
		"VocabularyPatterns": joinList(profile.VocabularyPatterns),
		"ToneKeywords":       joinList(profile.ToneKeywords),
	})
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func joinList(items []string) string {
	kept := make([]string, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	if len(kept) == 0 {
		return Placeholder
	}
	return strings.Join(kept, ", ")
}
