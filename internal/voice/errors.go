package voice

import (
	"fmt"
	"strings"

	"github.com/jonathan/brand-voice/internal/extract"
)

// ErrNoInput is returned when neither text nor usable files were supplied
var ErrNoInput = fmt.Errorf("no input provided: %w", extract.ErrNoInput)

// APICallError represents a failed language model call
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError represents model output from which no JSON object could be recovered
type MalformedOutputError struct {
	Raw   string
	Cause error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed model output: %v", e.Cause)
	}
	return "malformed model output: no JSON object found"
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}

// MissingFieldError represents a required generation input that was not supplied
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// ValidationError represents a profile that does not satisfy the ToneProfile rules.
// Raw carries the model output when the profile came from analysis.
type ValidationError struct {
	Fields []string
	Raw    string
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error: invalid tone profile"
	}
	return fmt.Sprintf("validation error: invalid tone profile: %s", strings.Join(e.Fields, "; "))
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}
