package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/miska-voutilainen/wsk-assignments-week3/internal/models"
)

// EventStore persists audit events.
type EventStore struct {
	db *sql.DB
}

// NewEventStore creates a new EventStore.
func NewEventStore(db *sql.DB) *EventStore {
	return &EventStore{db: db}
}

// Create inserts a new audit event.
func (s *EventStore) Create(ctx context.Context, event models.Event) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, type, level, message, user_id) VALUES (?, ?, ?, ?, ?)`,
		event.ID, event.Type, event.Level, event.Message, event.UserID)
	return err
}

// Recent retrieves the most recent events, newest first.
func (s *EventStore) Recent(ctx context.Context, limit int) ([]models.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, level, message, user_id, created_at FROM events ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var event models.Event
		if err := rows.Scan(&event.ID, &event.Type, &event.Level, &event.Message, &event.UserID, &event.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}
