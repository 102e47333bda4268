package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/models"
)

// SQLUserRepository stores users in the auth_users table.
type SQLUserRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewUserRepository creates a user repository over db.
func NewUserRepository(db *sql.DB, dialect Dialect) *SQLUserRepository {
	return &SQLUserRepository{db: db, dialect: dialect}
}

// Insert creates a new user row. The unique email constraint is enforced by
// the database.
func (r *SQLUserRepository) Insert(ctx context.Context, user *models.User) error {
	user.ID = uuid.New().String()
	user.CreatedAt = now()

	query := r.dialect.rebind(`INSERT INTO auth_users (id, email, password_hash, role, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.Email, user.PasswordHash, string(user.Role), user.IsActive, user.CreatedAt)
	if err != nil {
		if r.dialect.isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// FindByEmail retrieves a single user by email, including the password hash.
func (r *SQLUserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	query := r.dialect.rebind(`SELECT id, email, password_hash, role, is_active, created_at
		FROM auth_users WHERE email = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, email))
}

// FindByID retrieves a single user by id, including the password hash.
func (r *SQLUserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	query := r.dialect.rebind(`SELECT id, email, password_hash, role, is_active, created_at
		FROM auth_users WHERE id = ?`)
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLUserRepository) scanOne(row *sql.Row) (models.User, error) {
	var user models.User
	var role string
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.IsActive, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, apperr.ErrNotFound
		}
		return models.User{}, fmt.Errorf("db error: %w", err)
	}
	user.Role = models.Role(role)
	user.CreatedAt = user.CreatedAt.UTC()
	return user, nil
}
