// Package server provides the HTTP REST API for the remote-job marketplace.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/remoteboard/remoteboard/internal/autoapply"
)

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrJobNotFound indicates the referenced listing does not exist
type ErrJobNotFound struct {
	JobID uuid.UUID
}

func (e *ErrJobNotFound) Error() string {
	return fmt.Sprintf("job not found: %s", e.JobID)
}

// HTTPStatus returns the appropriate HTTP status code for an error.
// Auto-apply engine failures caused by the upstream form (fetch, parse,
// navigation) map to 502; our own storage or plumbing failures map to 500.
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrEmailAlreadyExists:
		return http.StatusConflict
	case *ErrInvalidCredentials, *ErrPasswordMismatch:
		return http.StatusUnauthorized
	case *ErrUserNotFound, *ErrJobNotFound:
		return http.StatusNotFound
	case *ErrValidation:
		return http.StatusBadRequest
	}

	var analysisErr *autoapply.AnalysisError
	var previewErr *autoapply.PreviewError
	if errors.As(err, &analysisErr) || errors.As(err, &previewErr) {
		return http.StatusBadGateway
	}

	var submitErr *autoapply.SubmitError
	if errors.As(err, &submitErr) {
		if submitErr.Kind == autoapply.SubmitErrorNetwork {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	}

	return http.StatusInternalServerError
}
