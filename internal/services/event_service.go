package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
	"github.com/miska-voutilainen/wsk-assignments-week3/internal/store"
)

// EventServiceProvider defines the interface for the audit trail.
type EventServiceProvider interface {
	Record(ctx context.Context, eventType, level, message string, userID *int64)
	GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error)
}

// EventService records audit events for security-relevant actions.
type EventService struct {
	events *store.EventStore
}

// NewEventService creates a new EventService.
func NewEventService(events *store.EventStore) *EventService {
	return &EventService{events: events}
}

// Record logs a new audit event. Failures are logged and swallowed; the
// audit trail must never fail the operation it describes.
func (s *EventService) Record(ctx context.Context, eventType, level, message string, userID *int64) {
	err := s.events.Create(ctx, models.Event{
		ID:      uuid.New().String(),
		Type:    eventType,
		Level:   level,
		Message: message,
		UserID:  userID,
	})
	if err != nil {
		log.Error().Err(err).Str("event_type", eventType).Msg("Failed to record audit event")
	}
}

// GetRecentEvents retrieves the most recent audit events.
func (s *EventService) GetRecentEvents(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.events.Recent(ctx, limit)
}
