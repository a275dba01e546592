package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/remoteboard/remoteboard/internal/autoapply"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "email already exists maps to conflict",
			err:        &ErrEmailAlreadyExists{Email: "a@b.com"},
			wantStatus: http.StatusConflict,
		},
		{
			name:       "invalid credentials maps to unauthorized",
			err:        &ErrInvalidCredentials{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "password mismatch maps to unauthorized",
			err:        &ErrPasswordMismatch{},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "user not found maps to not found",
			err:        &ErrUserNotFound{UserID: uuid.New()},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "job not found maps to not found",
			err:        &ErrJobNotFound{JobID: uuid.New()},
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "validation maps to bad request",
			err:        &ErrValidation{Field: "email", Message: "required"},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "analysis failure maps to bad gateway",
			err:        &autoapply.AnalysisError{URL: "https://x", Message: "fetch failed"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "preview failure maps to bad gateway",
			err:        &autoapply.PreviewError{URL: "https://x", Message: "fetch failed"},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "wrapped analysis failure still maps to bad gateway",
			err: fmt.Errorf("handler: %w",
				&autoapply.AnalysisError{URL: "https://x", Message: "timeout"}),
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "network submit failure maps to bad gateway",
			err: &autoapply.SubmitError{
				Kind: autoapply.SubmitErrorNetwork, URL: "https://x", Message: "no response",
			},
			wantStatus: http.StatusBadGateway,
		},
		{
			name: "internal submit failure maps to internal error",
			err: &autoapply.SubmitError{
				Kind: autoapply.SubmitErrorInternal, URL: "https://x", Message: "insert failed",
			},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "unknown error maps to internal error",
			err:        errors.New("something else"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStatus, HTTPStatus(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.Contains(t, (&ErrEmailAlreadyExists{Email: "a@b.com"}).Error(), "a@b.com")
	assert.Equal(t, "invalid email or password", (&ErrInvalidCredentials{}).Error())
	assert.Equal(t, "current password is incorrect", (&ErrPasswordMismatch{}).Error())

	id := uuid.New()
	assert.Contains(t, (&ErrJobNotFound{JobID: id}).Error(), id.String())
}
