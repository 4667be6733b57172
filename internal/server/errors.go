package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/brand-voice/internal/extract"
	"github.com/jonathan/brand-voice/internal/voice"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		reqErr      *ErrValidation
		missing     *voice.MissingFieldError
		invalid     *voice.ValidationError
		tooLarge    *http.MaxBytesError
		unsupported *extract.UnsupportedFileTypeError
		apiErr      *voice.APICallError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, voice.ErrNoInput),
		errors.As(err, &reqErr),
		errors.As(err, &missing),
		errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &unsupported):
		return http.StatusUnsupportedMediaType
	case errors.As(err, &apiErr):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
