package handlers

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/auth"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/isdelr/auth-service/internal/services"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles HTTP requests for registration, login and the
// authenticated user's own data.
type AuthHandler struct {
	service services.AuthServiceProvider
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service services.AuthServiceProvider) *AuthHandler {
	return &AuthHandler{service: service}
}

// RegisterPayload defines the structure for registration requests.
type RegisterPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the payload shape before it reaches the service.
func (p RegisterPayload) Validate() error {
	return services.Credentials{Email: services.NormalizeEmail(p.Email), Password: p.Password}.Validate()
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileResponse echoes the identity carried by the caller's token.
type ProfileResponse struct {
	Message string      `json:"message"`
	User    ProfileUser `json:"user"`
}

// ProfileUser holds the token claims in their wire form.
type ProfileUser struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	Iat  int64       `json:"iat"`
	Exp  int64       `json:"exp"`
}

// Register handles new user registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload RegisterPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := payload.Validate(); err != nil {
		writeValidationError(w, err)
		return
	}

	user, err := h.service.Register(r.Context(), payload.Email, payload.Password)
	if err != nil {
		var ve *apperr.ValidationError
		if errors.As(err, &ve) {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error:  "Invalid registration data",
				Fields: map[string]string{ve.Field: ve.Reason},
			})
			return
		}
		log.Error().Err(err).Msg("Failed to register user")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}

	log.Info().Str("user_id", user.ID).Msg("User registered")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User created"})
}

// Login handles user authentication and JWT generation.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.service.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		var ae *apperr.AuthError
		if errors.As(err, &ae) {
			log.Warn().Msg("Failed authentication attempt")
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		log.Error().Err(err).Msg("Failed to log in user")
		writeError(w, http.StatusInternalServerError, "Login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Profile returns the identity claims carried by the caller's token.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve identity from context")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	writeJSON(w, http.StatusOK, ProfileResponse{
		Message: "Protected route accessed",
		User: ProfileUser{
			ID:   id.ID,
			Role: id.Role,
			Iat:  id.IssuedAt.Unix(),
			Exp:  id.ExpiresAt.Unix(),
		},
	})
}

// GetMe retrieves the currently authenticated user fresh from the store.
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		log.Error().Msg("Could not retrieve identity from context")
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.service.GetUser(r.Context(), id.ID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			log.Warn().Str("user_id", id.ID).Msg("User from token not found in DB")
			writeError(w, http.StatusNotFound, "User not found")
			return
		}
		log.Error().Err(err).Str("user_id", id.ID).Msg("Failed to fetch user")
		writeError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	writeJSON(w, http.StatusOK, user.Sanitized())
}

func writeValidationError(w http.ResponseWriter, err error) {
	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		log.Error().Err(err).Msg("Failed to validate payload")
		writeError(w, http.StatusInternalServerError, "Registration failed")
		return
	}
	fields := make(map[string]string, len(fieldErrs))
	for f, e := range fieldErrs {
		fields[f] = e.Error()
	}
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Invalid registration data", Fields: fields})
}
