package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/auth"
	"github.com/isdelr/auth-service/internal/models"
	"github.com/isdelr/auth-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// AuthServiceProvider defines the interface for authentication services.
type AuthServiceProvider interface {
	Register(ctx context.Context, email, password string) (models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetUser(ctx context.Context, id string) (models.User, error)
}

// TokenIssuer signs tokens for authenticated users.
type TokenIssuer interface {
	Issue(subjectID string, role models.Role) (string, error)
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  repository.UserRepository
	hasher auth.PasswordHasher
	tokens TokenIssuer
	events EventServiceProvider

	// dummyHash is compared against when no account matches, so an unknown
	// email costs the same bcrypt work as a wrong password.
	dummyHash string
}

// NewAuthService creates a new AuthService. events may be nil.
func NewAuthService(users repository.UserRepository, hasher auth.PasswordHasher, tokens TokenIssuer, events EventServiceProvider) (*AuthService, error) {
	dummy, err := hasher.Hash("dummy-password-for-timing")
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		events:    events,
		dummyHash: dummy,
	}, nil
}

// Register validates the credentials, hashes the password and stores a new
// user with the default role.
func (s *AuthService) Register(ctx context.Context, email, password string) (models.User, error) {
	creds := Credentials{Email: NormalizeEmail(email), Password: password}
	if err := creds.Validate(); err != nil {
		return models.User{}, toValidationError(err)
	}

	hash, err := s.hasher.Hash(creds.Password)
	if err != nil {
		return models.User{}, err
	}

	user := &models.User{
		Email:        creds.Email,
		PasswordHash: hash,
		Role:         models.DefaultRole,
		IsActive:     true,
	}
	if err := s.users.Insert(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			s.record(ctx, models.EventRegistrationError, LevelWarn, "registration with an existing email", nil)
			return models.User{}, &apperr.ConflictError{Resource: "user"}
		}
		s.record(ctx, models.EventRegistrationError, LevelError, "user store unavailable", nil)
		return models.User{}, &apperr.StorageError{Op: "insert user", Err: err}
	}

	s.record(ctx, models.EventUserRegistered, LevelInfo, "user registered", &user.ID)
	return user.Sanitized(), nil
}

// Login verifies the credentials and returns a signed token. Unknown email,
// wrong password and a deactivated account all produce the same AuthError.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.hasher.Verify(password, s.dummyHash)
			s.record(ctx, models.EventLoginFailed, LevelWarn, "unknown email", nil)
			return "", apperr.InvalidCredentials()
		}
		return "", &apperr.StorageError{Op: "find user by email", Err: err}
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.record(ctx, models.EventLoginFailed, LevelWarn, "wrong password", &user.ID)
		return "", apperr.InvalidCredentials()
	}
	if !user.IsActive {
		s.record(ctx, models.EventLoginFailed, LevelWarn, "inactive account", &user.ID)
		return "", apperr.InvalidCredentials()
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.record(ctx, models.EventLoginSucceeded, LevelInfo, "login succeeded", &user.ID)
	return token, nil
}

// GetUser retrieves a fresh copy of a user record by id.
func (s *AuthService) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return models.User{}, err
		}
		return models.User{}, &apperr.StorageError{Op: "find user by id", Err: err}
	}
	return user.Sanitized(), nil
}

func (s *AuthService) record(ctx context.Context, eventType, level, message string, userID *string) {
	if s.events == nil {
		return
	}
	if err := s.events.CreateEvent(ctx, eventType, level, message, userID); err != nil {
		log.Warn().Err(err).Str("event_type", eventType).Msg("Failed to record auth event")
	}
}
