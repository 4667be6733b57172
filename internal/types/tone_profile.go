// Package types provides type definitions for structured data used throughout the brand-voice system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Formality values accepted in a ToneProfile
const (
	FormalityFormal     = "formal"
	FormalitySemiFormal = "semi-formal"
	FormalityInformal   = "informal"
)

// Sentence length values accepted in a ToneProfile
const (
	SentenceShort  = "short"
	SentenceMedium = "medium"
	SentenceLong   = "long"
	SentenceVaried = "varied"
)

// ToneProfile describes a brand's writing style as derived by the analysis model
type ToneProfile struct {
	Formality          string   `json:"formality" validate:"required,oneof=formal semi-formal informal"`
	Tone               string   `json:"tone" validate:"required"`
	SentenceLength     string   `json:"sentence_length" validate:"required,oneof=short medium long varied"`
	VocabularyPatterns []string `json:"vocabulary_patterns" validate:"required,min=3,max=5,dive,required"`
	ToneKeywords       []string `json:"tone_keywords" validate:"required,len=5,dive,required"`
}

// SavedProfile is a named ToneProfile in the client-local store.
// Names are not unique.
type SavedProfile struct {
	Name    string      `json:"name"`
	Profile ToneProfile `json:"data"`
}

// GeneratedContent is the outcome of a generation request
type GeneratedContent struct {
	Text      string `json:"generated"`
	HTML      string `json:"html"`
	WordCount int    `json:"word_count"`
	Trimmed   bool   `json:"trimmed"`
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func profileValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate validates the ToneProfile using the validator.
func (p *ToneProfile) Validate() error {
	if p == nil {
		return errors.New("profile is nil")
	}
	return profileValidator().Struct(p)
}

// ProfileFieldNames returns the JSON field names of ToneProfile in declaration order
func ProfileFieldNames() []string {
	t := reflect.TypeOf(ToneProfile{})
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		names = append(names, name)
	}
	return names
}

// ValidationMessages flattens validator errors into "field: problem" strings.
// Errors of other kinds are returned as a single message.
func ValidationMessages(err error) []string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(fe), describe(fe)))
	}
	return msgs
}

// fieldPath strips the struct name prefix from a namespace such as ToneProfile.tone_keywords[2]
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "min":
		return fmt.Sprintf("must have at least %s items", fe.Param())
	case "max":
		return fmt.Sprintf("must have at most %s items", fe.Param())
	case "len":
		return fmt.Sprintf("must have exactly %s items", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
