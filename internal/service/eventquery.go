package service

import (
	"context"
	"time"

	"github.com/gesa962/Campus-Connect/internal/domain"
)

// EventQueryService provides read-only derived views over events. No
// authorization is applied beyond what the caller already resolved.
type EventQueryService struct {
	events domain.EventRepository
}

// NewEventQueryService creates a new EventQueryService.
func NewEventQueryService(events domain.EventRepository) *EventQueryService {
	return &EventQueryService{events: events}
}

// GetByID returns a single event regardless of its active flag.
func (s *EventQueryService) GetByID(ctx context.Context, eventID int64) (*domain.Event, error) {
	return s.events.GetByID(ctx, eventID)
}

// ListActive returns active events ordered by event time ascending.
func (s *EventQueryService) ListActive(ctx context.Context) ([]domain.Event, error) {
	return s.events.ListActive(ctx)
}

// ListUpcoming returns active events strictly in the future, ordered by event
// time ascending.
func (s *EventQueryService) ListUpcoming(ctx context.Context) ([]domain.Event, error) {
	return s.events.ListUpcoming(ctx, time.Now())
}

// ListOpenRegistration returns active events whose registration deadline is
// still ahead, ordered by deadline ascending.
func (s *EventQueryService) ListOpenRegistration(ctx context.Context) ([]domain.Event, error) {
	return s.events.ListOpenRegistration(ctx, time.Now())
}

// ListByCategory returns active events in a category, ordered by event time
// ascending.
func (s *EventQueryService) ListByCategory(ctx context.Context, category string) ([]domain.Event, error) {
	return s.events.ListByCategory(ctx, category)
}

// ListByCreator returns every event the user created, active or not, newest
// first.
func (s *EventQueryService) ListByCreator(ctx context.Context, userID int64) ([]domain.Event, error) {
	return s.events.ListByCreator(ctx, userID)
}

// ListByParticipant returns active events the user is registered for, ordered
// by event time ascending.
func (s *EventQueryService) ListByParticipant(ctx context.Context, userID int64) ([]domain.Event, error) {
	return s.events.ListByParticipant(ctx, userID)
}

// Search returns active events whose title or description contains the
// keyword as a case-sensitive substring, ordered by event time ascending.
func (s *EventQueryService) Search(ctx context.Context, keyword string) ([]domain.Event, error) {
	return s.events.Search(ctx, keyword)
}
