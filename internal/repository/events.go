package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/auth-service/internal/models"
)

// SQLEventRepository stores audit events in the auth_events table.
type SQLEventRepository struct {
	db      *sql.DB
	dialect Dialect
}

// NewEventRepository creates an event repository over db.
func NewEventRepository(db *sql.DB, dialect Dialect) *SQLEventRepository {
	return &SQLEventRepository{db: db, dialect: dialect}
}

// Create stores a new event, assigning its ID and CreatedAt.
func (r *SQLEventRepository) Create(ctx context.Context, event *models.Event) error {
	event.ID = uuid.New().String()
	event.CreatedAt = now()

	query := r.dialect.rebind(`INSERT INTO auth_events (id, type, level, message, user_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.Type, event.Level, event.Message, event.UserID, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Recent retrieves the most recent events, newest first.
func (r *SQLEventRepository) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	query := r.dialect.rebind(`SELECT id, type, level, message, user_id, created_at
		FROM auth_events ORDER BY created_at DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var event models.Event
		var userID sql.NullString
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &userID, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if userID.Valid {
			event.UserID = &userID.String
		}
		event.CreatedAt = event.CreatedAt.UTC()
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return events, nil
}

// DeleteOlderThan removes events created before cutoff and returns how many
// were removed.
func (r *SQLEventRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.dialect.rebind(`DELETE FROM auth_events WHERE created_at < ?`)
	res, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return res.RowsAffected()
}
