package models

import "time"

// Event types recorded in the audit log.
const (
	EventUserRegistered    = "user.registered"
	EventRegistrationError = "user.register.failed"
	EventLoginSucceeded    = "user.login"
	EventLoginFailed       = "user.login.failed"
)

// Event represents an auditable authentication outcome.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`  // e.g., "user.login", "user.login.failed"
	Level     string    `json:"level"` // e.g., "info", "warn", "error"
	Message   string    `json:"message"`
	UserID    *string   `json:"userId,omitempty"` // Nullable when no account matched
	CreatedAt time.Time `json:"createdAt"`
}
