package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/remoteboard/remoteboard/internal/types"
)

// AuthHandler owns the credential endpoints: register, login, and password
// changes. Successful register and login responses carry a fresh session
// token alongside the user.
type AuthHandler struct {
	userService *UserService
	jwtService  *JWTService
	validator   *validator.Validate
}

// NewAuthHandler creates an AuthHandler over the given services.
func NewAuthHandler(userService *UserService, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		jwtService:  jwtService,
		validator:   validator.New(),
	}
}

// Register creates an account and logs it in.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req types.CreateUserRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Register(r.Context(), &req)
	if err != nil {
		h.fail(w, HTTPStatus(err), err.Error())
		return
	}

	h.session(w, http.StatusCreated, user)
}

// Login checks credentials and issues a session token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.userService.Login(r.Context(), &req)
	if err != nil {
		h.fail(w, HTTPStatus(err), err.Error())
		return
	}

	h.session(w, http.StatusOK, user)
}

// UpdatePasswordWithUserID changes the password for an already-authenticated
// user. The current password is re-checked; a session token alone is not
// enough to rotate credentials.
func (h *AuthHandler) UpdatePasswordWithUserID(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	var req types.UpdatePasswordRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
		h.fail(w, HTTPStatus(err), err.Error())
		return
	}

	h.respond(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

// decode reads and validates a JSON request body, writing the 400 itself
// when the body is unusable.
func (h *AuthHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.fail(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		h.fail(w, http.StatusBadRequest, extractValidationErrors(err))
		return false
	}
	return true
}

// session issues a token for the user and writes the login payload.
func (h *AuthHandler) session(w http.ResponseWriter, status int, user *types.User) {
	token, err := h.jwtService.GenerateToken(user.ID)
	if err != nil {
		h.fail(w, http.StatusInternalServerError, "Failed to generate token")
		return
	}
	h.respond(w, status, types.LoginResponse{User: user, Token: token})
}

func (h *AuthHandler) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[auth] failed to encode response: %v", err)
	}
}

func (h *AuthHandler) fail(w http.ResponseWriter, status int, message string) {
	h.respond(w, status, map[string]string{"error": message})
}

// extractValidationErrors renders the first field failure from a validator
// error as a client-facing message.
func extractValidationErrors(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("validation error: %s - %s", verrs[0].Field(), verrs[0].Tag())
	}
	return "validation error: invalid request"
}
