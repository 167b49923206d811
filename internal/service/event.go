package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gesa962/Campus-Connect/internal/domain"
)

// EventService owns the event registration state machine: creation, sparse
// updates, deletion, deactivation, and capacity-bounded join/leave. All
// mutations on one event run under that event's mutex, so the capacity check
// and the participant insert can never interleave with a concurrent join.
type EventService struct {
	events domain.EventRepository
	users  domain.UserRepository
	locks  *keyedMutex
}

// NewEventService creates a new EventService.
func NewEventService(events domain.EventRepository, users domain.UserRepository) *EventService {
	return &EventService{events: events, users: users, locks: newKeyedMutex()}
}

// Create persists a new event. Only admins may create events.
func (s *EventService) Create(ctx context.Context, principal *domain.User, event *domain.Event) (*domain.Event, error) {
	if principal.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: only admins can create events", domain.ErrForbidden)
	}

	if event.Title == "" || event.Description == "" || event.Location == "" {
		return nil, fmt.Errorf("%w: title, description, and location are required", domain.ErrInvalidInput)
	}
	if event.EventDateTime.IsZero() || event.RegistrationDeadline.IsZero() {
		return nil, fmt.Errorf("%w: event date and registration deadline are required", domain.ErrInvalidInput)
	}
	if event.MaxParticipants < 0 {
		return nil, fmt.Errorf("%w: max participants cannot be negative", domain.ErrInvalidInput)
	}

	event.CreatedByID = principal.ID
	event.IsActive = true
	event.Participants = nil

	if err := s.events.Create(ctx, event); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return event, nil
}

// Update applies a sparse patch to an event. Only the creator may update, and
// the patch is persisted all-or-nothing in a single statement.
func (s *EventService) Update(ctx context.Context, principal *domain.User, eventID int64, patch domain.EventPatch) (*domain.Event, error) {
	mu := s.locks.lock(eventID)
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedByID != principal.ID {
		return nil, fmt.Errorf("%w: you can only update events you created", domain.ErrForbidden)
	}

	applyPatch(event, patch)

	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return event, nil
}

func applyPatch(event *domain.Event, patch domain.EventPatch) {
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.Location != nil {
		event.Location = *patch.Location
	}
	if patch.EventDateTime != nil {
		event.EventDateTime = *patch.EventDateTime
	}
	if patch.RegistrationDeadline != nil {
		event.RegistrationDeadline = *patch.RegistrationDeadline
	}
	// Zero or negative means "no change", never "set to unbounded".
	if patch.MaxParticipants > 0 {
		event.MaxParticipants = patch.MaxParticipants
	}
	if patch.Category != nil {
		event.Category = *patch.Category
	}
	if patch.Organizer != nil {
		event.Organizer = *patch.Organizer
	}
}

// Delete removes an event permanently. Only the creator may delete. Deletion
// is not bound by the active flag.
func (s *EventService) Delete(ctx context.Context, principal *domain.User, eventID int64) error {
	mu := s.locks.lock(eventID)
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if event.CreatedByID != principal.ID {
		return fmt.Errorf("%w: you can only delete events you created", domain.ErrForbidden)
	}

	if err := s.events.Delete(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.locks.forget(eventID)
	return nil
}

// Deactivate sets the active flag to false. Only the creator may deactivate.
// There is no reactivate operation; the transition is one-way.
func (s *EventService) Deactivate(ctx context.Context, principal *domain.User, eventID int64) (*domain.Event, error) {
	mu := s.locks.lock(eventID)
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.CreatedByID != principal.ID {
		return nil, fmt.Errorf("%w: you can only deactivate events you created", domain.ErrForbidden)
	}

	event.IsActive = false
	if err := s.events.Update(ctx, event); err != nil {
		return nil, fmt.Errorf("deactivate event: %w", err)
	}
	return event, nil
}

// Join registers the principal for an event. Preconditions are checked in
// order, each yielding a distinct failure: the event must exist, be active,
// have an open registration window and free capacity, and the principal must
// not already be registered.
func (s *EventService) Join(ctx context.Context, principal *domain.User, eventID int64) (*domain.Event, error) {
	mu := s.locks.lock(eventID)
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if !event.IsActive {
		return nil, fmt.Errorf("%w: event is not active", domain.ErrConflict)
	}
	if !event.IsRegistrationOpen(time.Now()) {
		return nil, fmt.Errorf("%w: registration is closed", domain.ErrConflict)
	}
	if event.IsFull() {
		return nil, fmt.Errorf("%w: event is full", domain.ErrConflict)
	}
	if event.HasParticipant(principal.ID) {
		return nil, fmt.Errorf("%w: already registered", domain.ErrConflict)
	}

	if err := s.events.AddParticipant(ctx, eventID, principal.ID); err != nil {
		return nil, err
	}

	return s.events.GetByID(ctx, eventID)
}

// Leave removes the principal's registration. Leaving is always allowed once
// registered, regardless of the active flag or the deadline.
func (s *EventService) Leave(ctx context.Context, principal *domain.User, eventID int64) (*domain.Event, error) {
	mu := s.locks.lock(eventID)
	defer mu.Unlock()

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !event.HasParticipant(principal.ID) {
		return nil, fmt.Errorf("%w: not registered", domain.ErrConflict)
	}

	if err := s.events.RemoveParticipant(ctx, eventID, principal.ID); err != nil {
		return nil, err
	}

	return s.events.GetByID(ctx, eventID)
}
