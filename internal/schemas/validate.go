// Package schemas provides JSON Schema validation of model output and stored profiles.
package schemas

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed tone_profile.schema.json
var toneProfileSchema string

const toneProfileSchemaName = "tone_profile.schema.json"

var (
	compiledToneProfile *gojsonschema.Schema
	compileErr          error
	compileOnce         sync.Once
)

// ValidationError represents a schema validation error with field paths
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

// SchemaLoadError represents errors loading or parsing the schema itself
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("validation failed:\n")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s: %s\n", i+1, err.Field, err.Message))
	}
	return sb.String()
}

// Messages returns the field errors as "field: message" strings
func (ve *ValidationError) Messages() []string {
	msgs := make([]string, 0, len(ve.Errors))
	for _, fe := range ve.Errors {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return msgs
}

// ToneProfileSchema returns the embedded ToneProfile schema document
func ToneProfileSchema() string {
	return toneProfileSchema
}

// RequiredFields returns the required property names of the ToneProfile schema
func RequiredFields() ([]string, error) {
	var doc struct {
		Required []string `json:"required"`
	}
	if err := json.Unmarshal([]byte(toneProfileSchema), &doc); err != nil {
		return nil, &SchemaLoadError{Path: toneProfileSchemaName, Message: "invalid schema document", Cause: err}
	}
	return doc.Required, nil
}

func toneProfile() (*gojsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiledToneProfile, compileErr = gojsonschema.NewSchema(gojsonschema.NewStringLoader(toneProfileSchema))
		if compileErr != nil {
			compileErr = &SchemaLoadError{Path: toneProfileSchemaName, Message: "schema compilation failed", Cause: compileErr}
		}
	})
	return compiledToneProfile, compileErr
}

// ValidateToneProfile validates a decoded JSON value (typically map[string]any) against the ToneProfile schema
func ValidateToneProfile(doc any) error {
	schema, err := toneProfile()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &SchemaLoadError{
			Path:    toneProfileSchemaName,
			Message: "document could not be loaded",
			Cause:   err,
		}
	}
	return resultError(result)
}

// ValidateToneProfileFile validates a JSON file against the ToneProfile schema
func ValidateToneProfileFile(jsonPath string) error {
	absPath, err := filepath.Abs(jsonPath)
	if err != nil {
		return fmt.Errorf("failed to resolve JSON path: %w", err)
	}

	data, err := os.ReadFile(absPath)
	if os.IsNotExist(err) {
		return fmt.Errorf("JSON file not found: %s", absPath)
	}
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}

	return ValidateJSONString(toneProfileSchema, string(data))
}

// ValidateJSONString validates JSON string content against schema string content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaContent)
	documentLoader := gojsonschema.NewStringLoader(jsonContent)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return &SchemaLoadError{
			Path:    "(string schema)",
			Message: "schema validation failed during load",
			Cause:   err,
		}
	}
	return resultError(result)
}

// resultError builds a structured error from a failed validation result
func resultError(result *gojsonschema.Result) error {
	if result.Valid() {
		return nil
	}

	validationErr := &ValidationError{
		Errors: make([]FieldError, 0, len(result.Errors())),
	}

	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		validationErr.Errors = append(validationErr.Errors, FieldError{
			Field:   field,
			Message: desc.Description(),
		})
	}

	return validationErr
}
