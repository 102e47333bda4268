package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/rs/zerolog/log"
)

// TokenValidator recovers claims from a signed token.
type TokenValidator interface {
	Validate(tokenStr string) (*Claims, error)
}

// Identity is the caller resolved from a valid bearer token.
type Identity struct {
	ID        string      `json:"id"`
	Role      models.Role `json:"role"`
	IssuedAt  time.Time   `json:"iat"`
	ExpiresAt time.Time   `json:"exp"`
}

type contextKey string

// IdentityKey is the context key for the resolved identity.
const IdentityKey = contextKey("identity")

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, IdentityKey, id)
}

// IdentityFromContext returns the identity attached by the gate, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// Gate authorizes requests carrying an `Authorization: Bearer <token>`
// header. It never consults the credential store.
type Gate struct {
	validator TokenValidator
}

// NewGate creates a Gate backed by validator.
func NewGate(validator TokenValidator) *Gate {
	return &Gate{validator: validator}
}

// Authorize resolves the identity of r. Every validation failure collapses
// into the same "unauthorized" rejection.
func (g *Gate) Authorize(r *http.Request) (Identity, error) {
	tokenStr, ok := bearerToken(r.Header.Get("Authorization"))
	if !ok {
		return Identity{}, &apperr.RejectionError{Reason: apperr.ReasonMissingToken}
	}

	claims, err := g.validator.Validate(tokenStr)
	if err != nil {
		log.Debug().Str("reason", apperr.ValidationReason(err)).Msg("Rejected bearer token")
		return Identity{}, &apperr.RejectionError{Reason: apperr.ReasonUnauthorized}
	}

	id := Identity{ID: claims.Subject, Role: claims.Role}
	if claims.IssuedAt != nil {
		id.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		id.ExpiresAt = claims.ExpiresAt.Time
	}
	return id, nil
}

// Middleware protects next: rejected requests get a 401 and never reach it.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := g.Authorize(r)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
	})
}

// RequireRole allows only identities holding one of roles. It must be
// mounted behind Middleware.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if !slices.Contains(roles, id.Role) {
				log.Warn().Str("user_id", id.ID).Str("role", string(id.Role)).Msg("Role not permitted")
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	return token, true
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
