package extract

import (
	"errors"
	"fmt"
)

// ErrNoInput is returned when neither pasted text nor extracted file text is available
var ErrNoInput = errors.New("no text provided")

// UnsupportedFileTypeError represents a document whose type matches no extractor
type UnsupportedFileTypeError struct {
	DeclaredType string
}

func (e *UnsupportedFileTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.DeclaredType)
}

// ExtractionError represents a document that matched an extractor but could not be decoded
type ExtractionError struct {
	Name  string
	Cause error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed for %s: %v", e.Name, e.Cause)
	}
	return fmt.Sprintf("extraction failed for %s", e.Name)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
