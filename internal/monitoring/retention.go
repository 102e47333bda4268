package monitoring

import (
	"context"
	"fmt"
	"time"

	"github.com/isdelr/auth-service/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

const pruneTimeout = 30 * time.Second

// RetentionScheduler periodically deletes audit events older than the
// configured retention.
type RetentionScheduler struct {
	eventSvc  services.EventServiceProvider
	retention time.Duration
	cron      *cron.Cron
}

// NewRetentionScheduler creates a scheduler that prunes on the given cron
// expression (standard five fields or a descriptor such as "@daily").
func NewRetentionScheduler(eventSvc services.EventServiceProvider, schedule string, retention time.Duration) (*RetentionScheduler, error) {
	s := &RetentionScheduler{
		eventSvc:  eventSvc,
		retention: retention,
		cron:      cron.New(),
	}
	if _, err := s.cron.AddFunc(schedule, s.prune); err != nil {
		return nil, fmt.Errorf("invalid prune schedule %q: %w", schedule, err)
	}
	return s, nil
}

// Run starts the scheduler in the background.
func (s *RetentionScheduler) Run() {
	log.Info().Dur("retention", s.retention).Msg("Starting event retention scheduler")
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running prune to finish.
func (s *RetentionScheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("Stopped event retention scheduler")
}

func (s *RetentionScheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	removed, err := s.eventSvc.PruneEvents(ctx, s.retention)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prune auth events")
		return
	}
	if removed > 0 {
		log.Info().Int64("removed", removed).Msg("Pruned auth events")
	}
}
