package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse is returned when a provider answers without any text
var ErrEmptyResponse = errors.New("empty response from provider")

// APICallError represents a failed or unanswered provider call
type APICallError struct {
	Provider Provider
	Message  string
	Cause    error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("API call failed: %s: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("API call failed: %s: %s", e.Provider, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
