// Package types defines the request and response payloads of the
// marketplace API. Requests validate themselves against their
// go-playground/validator tags.
package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// validate is shared by every Validate method; the validator caches struct
// metadata, so one instance serves the whole package.
var validate = validator.New()

// CreateUserRequest is the register payload.
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,min=1"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone,omitempty"`
}

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account shape returned by the API. The password hash lives
// only in the db layer and never crosses this boundary.
type User struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone,omitempty"`
	PasswordSet bool      `json:"password_set"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// LoginResponse carries the user and a fresh session token; register and
// login share it.
type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// UpdatePasswordRequest rotates a password. The current password is required
// so a stolen session token cannot lock the owner out.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

// Validate checks the request against its validation tags.
func (r *CreateUserRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *LoginRequest) Validate() error { return validate.Struct(r) }

// Validate checks the request against its validation tags.
func (r *UpdatePasswordRequest) Validate() error { return validate.Struct(r) }
