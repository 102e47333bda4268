package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/auth-service/internal/apperr"
	"github.com/isdelr/auth-service/internal/models"
)

// MemoryUserRepository is an in-process UserRepository.
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]models.User
	byEmail map[string]string
}

// NewMemoryUserRepository creates an empty in-memory user store.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]models.User),
		byEmail: make(map[string]string),
	}
}

func (r *MemoryUserRepository) Insert(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[user.Email]; taken {
		return ErrDuplicateEmail
	}
	user.ID = uuid.New().String()
	user.CreatedAt = now()
	r.byID[user.ID] = *user
	r.byEmail[user.Email] = user.ID
	return nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.byID[id]
	if !ok {
		return models.User{}, apperr.ErrNotFound
	}
	return user, nil
}

// Len returns the number of stored users.
func (r *MemoryUserRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// SetActive flips the active flag of a stored user. It is a test fixture:
// no service operation changes the flag.
func (r *MemoryUserRepository) SetActive(id string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.byID[id]
	if !ok {
		return false
	}
	user.IsActive = active
	r.byID[id] = user
	return true
}

// Delete removes a stored user. It is a test fixture for records that
// disappear after a token was issued.
func (r *MemoryUserRepository) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user, ok := r.byID[id]; ok {
		delete(r.byEmail, user.Email)
		delete(r.byID, id)
	}
}

// MemoryEventRepository is an in-process EventRepository.
type MemoryEventRepository struct {
	mu     sync.Mutex
	events []models.Event
}

// NewMemoryEventRepository creates an empty in-memory event store.
func NewMemoryEventRepository() *MemoryEventRepository {
	return &MemoryEventRepository{}
}

func (r *MemoryEventRepository) Create(_ context.Context, event *models.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	event.ID = uuid.New().String()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now()
	}
	r.events = append(r.events, *event)
	return nil
}

func (r *MemoryEventRepository) Recent(_ context.Context, limit int) ([]models.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Event, len(r.events))
	copy(out, r.events)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit >= 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryEventRepository) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.events[:0]
	var removed int64
	for _, e := range r.events {
		if e.CreatedAt.Before(cutoff) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	r.events = kept
	return removed, nil
}
