// Package server provides the HTTP REST API for the job tracker.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/job-tracker/internal/db"
	"github.com/jonathan/job-tracker/internal/extract"
)

// ErrJobNotFound indicates the requested job does not exist
type ErrJobNotFound struct {
	ID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.ID)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrSearchDisabled indicates search enrichment is not configured
type ErrSearchDisabled struct{}

func (e *ErrSearchDisabled) Error() string {
	return "search enrichment is not configured"
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var notFound *ErrJobNotFound
	if errors.As(err, &notFound) {
		return http.StatusNotFound
	}
	var validation *ErrValidation
	if errors.As(err, &validation) {
		return http.StatusBadRequest
	}
	var disabled *ErrSearchDisabled
	if errors.As(err, &disabled) {
		return http.StatusServiceUnavailable
	}

	if errors.Is(err, db.ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, db.ErrInvalidUpdate) {
		return http.StatusBadRequest
	}

	var extractErr *extract.Error
	if errors.As(err, &extractErr) {
		switch extractErr.Reason {
		case extract.ReasonSchemaViolation:
			return http.StatusUnprocessableEntity
		case extract.ReasonLLMUnreachable, extract.ReasonEmptyResponse:
			return http.StatusBadGateway
		}
	}

	return http.StatusInternalServerError
}
