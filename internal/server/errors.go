// Package server provides the HTTP surface of the course-correction edge API.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jencodes13/course-correction/internal/auth"
	"github.com/jencodes13/course-correction/internal/genai"
)

// ErrValidation indicates request validation failure.
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the response status for an error. Model contract
// violations map to 502: the upstream model, not the client, broke the
// request contract. Everything else unrecognized is a 500.
func HTTPStatus(err error) int {
	var ve *ErrValidation
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, genai.ErrModelContract):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// userMessage maps an error to the generic client-facing message for its
// class. Upstream detail stays in the server logs.
func userMessage(err error) string {
	var ve *ErrValidation
	switch {
	case errors.As(err, &ve):
		return ve.Error()
	case errors.Is(err, auth.ErrUnauthenticated):
		return "Unauthorized"
	case errors.Is(err, genai.ErrModelContract):
		return "The AI service returned an unusable response. Please try again."
	default:
		return "An internal error occurred. Please try again."
	}
}
