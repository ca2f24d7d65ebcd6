// Package server provides the HTTP REST API for the ghost job detector.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jonathan/ghost-job-detector/internal/analysis"
	"github.com/jonathan/ghost-job-detector/internal/ingest"
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrNotFound indicates the requested resource does not exist
type ErrNotFound struct {
	Resource string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var validationErr *ErrValidation
	var notFoundErr *ErrNotFound
	var inputErr *analysis.InputError

	switch {
	case errors.As(err, &validationErr), errors.As(err, &inputErr):
		return http.StatusBadRequest
	case errors.As(err, &notFoundErr):
		return http.StatusNotFound
	case errors.Is(err, ingest.ErrFetchFailed), errors.Is(err, ingest.ErrIncompleteRecord):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
