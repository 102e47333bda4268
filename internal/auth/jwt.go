package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/models"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 24 * time.Hour

// Claims defines the JWT claims structure: sub, role, iat and exp.
type Claims struct {
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HS256-signed tokens. It holds only
// read-only configuration and is safe for concurrent use.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// TokenOption configures a TokenManager.
type TokenOption func(*TokenManager)

// WithClock overrides the time source used for iat, exp and expiry checks.
func WithClock(now func() time.Time) TokenOption {
	return func(m *TokenManager) {
		m.now = now
	}
}

// NewTokenManager creates a TokenManager signing with secret.
func NewTokenManager(secret []byte, ttl time.Duration, opts ...TokenOption) (*TokenManager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is empty")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	m := &TokenManager{
		secret: append([]byte(nil), secret...),
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithStrictDecoding(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	return m, nil
}

// TTL returns the lifetime of issued tokens.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a signed token for the given subject and role.
func (m *TokenManager) Issue(subjectID string, role models.Role) (string, error) {
	now := m.now()
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature of tokenStr, then its expiry, and returns
// its claims. The HMAC is checked over the raw header and payload segments
// before either is decoded.
func (m *TokenManager) Validate(tokenStr string) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return nil, &apperr.ValidationError{Reason: apperr.ReasonMalformed}
	}

	sig, err := m.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, &apperr.ValidationError{Reason: apperr.ReasonBadSignature}
	}
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, m.secret); err != nil {
		return nil, &apperr.ValidationError{Reason: apperr.ReasonBadSignature}
	}

	claims := &Claims{}
	_, err = m.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, &apperr.ValidationError{Reason: apperr.ReasonExpired}
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, &apperr.ValidationError{Reason: apperr.ReasonBadSignature}
	default:
		return nil, &apperr.ValidationError{Reason: apperr.ReasonMalformed}
	}

	if claims.Subject == "" || !claims.Role.Valid() || claims.IssuedAt == nil {
		return nil, &apperr.ValidationError{Reason: apperr.ReasonMalformed}
	}
	return claims, nil
}
