// Package repository holds the credential store and the audit event store.
// SQL implementations share one code path and differ only by dialect.
package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/isdelr/auth-service/internal/models"
)

// ErrDuplicateEmail is returned by Insert when the email is already taken.
var ErrDuplicateEmail = errors.New("email already registered")

// UserRepository persists user records keyed by id and by email.
type UserRepository interface {
	// Insert stores user, assigning its ID and CreatedAt.
	Insert(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByID(ctx context.Context, id string) (models.User, error)
}

// EventRepository persists audit events.
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) error
	Recent(ctx context.Context, limit int) ([]models.Event, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// Dialect selects placeholder syntax and constraint error detection.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// rebind rewrites `?` placeholders to `$n` for Postgres.
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// now returns the insert timestamp, truncated to the precision both
// supported databases store.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
