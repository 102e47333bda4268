// Package apperr defines the error taxonomy shared by the auth core and the
// HTTP boundary that translates it into client-facing responses.
package apperr

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by repositories when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// Reasons carried by ValidationError when a token fails validation.
const (
	ReasonMalformed    = "malformed"
	ReasonBadSignature = "badSignature"
	ReasonExpired      = "expired"
)

// Reasons carried by AuthError and RejectionError.
const (
	ReasonInvalidCredentials = "invalidCredentials"
	ReasonMissingToken       = "missingToken"
	ReasonUnauthorized       = "unauthorized"
)

// ValidationError reports malformed input: a bad request field or a token
// that cannot be trusted. It never has side effects.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// ConflictError reports an attempt to create an identity that already exists.
type ConflictError struct {
	Resource string
}

func (e *ConflictError) Error() string {
	return e.Resource + " already exists"
}

// AuthError reports a credential mismatch. The reason is deliberately generic.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "authentication failed: " + e.Reason
}

// RejectionError reports a request refused by the access gate.
type RejectionError struct {
	Reason string
}

func (e *RejectionError) Error() string {
	return "request rejected: " + e.Reason
}

// StorageError wraps a failure of the credential store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// HashingError wraps a failure of the password hasher.
type HashingError struct {
	Err error
}

func (e *HashingError) Error() string {
	return fmt.Sprintf("hashing password: %v", e.Err)
}

func (e *HashingError) Unwrap() error { return e.Err }

// InvalidCredentials returns the single error shown for every failed login.
func InvalidCredentials() *AuthError {
	return &AuthError{Reason: ReasonInvalidCredentials}
}

// ValidationReason returns the reason of a ValidationError anywhere in err's
// chain, or "" when there is none.
func ValidationReason(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Reason
	}
	return ""
}
