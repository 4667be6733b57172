//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validProfile() ToneProfile {
	return ToneProfile{
		Formality:          FormalitySemiFormal,
		Tone:               "warm and direct",
		SentenceLength:     SentenceMedium,
		VocabularyPatterns: []string{"plain language", "second person", "concrete examples"},
		ToneKeywords:       []string{"friendly", "clear", "confident", "practical", "upbeat"},
	}
}

func TestToneProfile_JSONMarshaling(t *testing.T) {
	profile := validProfile()

	jsonBytes, err := json.MarshalIndent(profile, "", "  ")
	require.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"formality": "semi-formal"`)
	assert.Contains(t, string(jsonBytes), `"tone": "warm and direct"`)
	assert.Contains(t, string(jsonBytes), `"sentence_length": "medium"`)
	assert.Contains(t, string(jsonBytes), `"vocabulary_patterns"`)
	assert.Contains(t, string(jsonBytes), `"tone_keywords"`)

	var unmarshaled ToneProfile
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, profile, unmarshaled)
}

func TestSavedProfile_StoredShape(t *testing.T) {
	saved := SavedProfile{Name: "Acme", Profile: validProfile()}

	jsonBytes, err := json.Marshal(saved)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(jsonBytes, &raw))
	assert.Contains(t, raw, "name")
	assert.Contains(t, raw, "data")
	assert.Len(t, raw, 2)
}

func TestGeneratedContent_JSON(t *testing.T) {
	jsonBytes, err := json.Marshal(GeneratedContent{Text: "hi", HTML: "<p>hi</p>\n", WordCount: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"generated":"hi","html":"<p>hi</p>\n","word_count":1,"trimmed":false}`, string(jsonBytes))
}

func TestToneProfile_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *ToneProfile)
		wantErr bool
		errMsg  string
	}{
		{name: "valid profile", mutate: func(*ToneProfile) {}},
		{name: "five patterns", mutate: func(p *ToneProfile) {
			p.VocabularyPatterns = []string{"a", "b", "c", "d", "e"}
		}},
		{name: "bad formality", mutate: func(p *ToneProfile) { p.Formality = "casual" }, wantErr: true, errMsg: "formality: must be one of: formal, semi-formal, informal"},
		{name: "missing tone", mutate: func(p *ToneProfile) { p.Tone = "" }, wantErr: true, errMsg: "tone: is required"},
		{name: "bad sentence length", mutate: func(p *ToneProfile) { p.SentenceLength = "tiny" }, wantErr: true, errMsg: "sentence_length"},
		{name: "too few patterns", mutate: func(p *ToneProfile) { p.VocabularyPatterns = []string{"a", "b"} }, wantErr: true, errMsg: "vocabulary_patterns: must have at least 3 items"},
		{name: "too many patterns", mutate: func(p *ToneProfile) {
			p.VocabularyPatterns = []string{"a", "b", "c", "d", "e", "f"}
		}, wantErr: true, errMsg: "vocabulary_patterns: must have at most 5 items"},
		{name: "four keywords", mutate: func(p *ToneProfile) { p.ToneKeywords = p.ToneKeywords[:4] }, wantErr: true, errMsg: "tone_keywords: must have exactly 5 items"},
		{name: "missing keywords", mutate: func(p *ToneProfile) { p.ToneKeywords = nil }, wantErr: true, errMsg: "tone_keywords: is required"},
		{name: "empty keyword", mutate: func(p *ToneProfile) { p.ToneKeywords[2] = "" }, wantErr: true, errMsg: "tone_keywords[2]: is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProfile()
			tt.mutate(&p)

			err := p.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, ValidationMessages(err)[0], tt.errMsg)
		})
	}
}

func TestToneProfile_ValidateNil(t *testing.T) {
	var p *ToneProfile
	assert.Error(t, p.Validate())
}

func TestProfileFieldNames(t *testing.T) {
	assert.Equal(t, []string{"formality", "tone", "sentence_length", "vocabulary_patterns", "tone_keywords"}, ProfileFieldNames())
}

func TestValidationMessages_OtherErrors(t *testing.T) {
	assert.Nil(t, ValidationMessages(nil))
	assert.Equal(t, []string{"boom"}, ValidationMessages(errors.New("boom")))
}
