package services

import (
	"context"
	"time"

	"github.com/isdelr/auth-service/internal/models"
	"github.com/isdelr/auth-service/internal/repository"
)

// Event levels.
const (
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// EventServiceProvider defines the interface for event services.
type EventServiceProvider interface {
	CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
	PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// EventService provides business logic for the audit log.
type EventService struct {
	repo repository.EventRepository
	now  func() time.Time
}

// NewEventService creates a new EventService.
func NewEventService(repo repository.EventRepository) *EventService {
	return &EventService{repo: repo, now: time.Now}
}

// CreateEvent appends a new event to the audit log.
func (s *EventService) CreateEvent(ctx context.Context, eventType, level, message string, userID *string) error {
	event := models.Event{
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	}
	return s.repo.Create(ctx, &event)
}

// GetRecentEvents retrieves the most recent events.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	return s.repo.Recent(ctx, limit)
}

// PruneEvents deletes events older than the given age.
func (s *EventService) PruneEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.repo.DeleteOlderThan(ctx, s.now().Add(-olderThan))
}
