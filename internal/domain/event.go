package domain

import (
	"context"
	"time"
)

// Event is a campus event open for participant registration. Cross-references
// are held as IDs (creator, participants) and resolved through repositories
// rather than embedded object graphs.
type Event struct {
	ID                   int64
	Title                string
	Description          string
	Location             string
	EventDateTime        time.Time
	RegistrationDeadline time.Time
	MaxParticipants      int // 0 means unbounded
	Category             string
	Organizer            string
	CreatedByID          int64
	IsActive             bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Participants         []int64 // user IDs, set semantics
}

// IsRegistrationOpen reports whether the event accepts new registrations
// at the given instant.
func (e *Event) IsRegistrationOpen(now time.Time) bool {
	return now.Before(e.RegistrationDeadline) && e.IsActive
}

// IsFull reports whether the participant limit has been reached.
// A limit of zero never fills up.
func (e *Event) IsFull() bool {
	return e.MaxParticipants > 0 && len(e.Participants) >= e.MaxParticipants
}

// HasParticipant reports whether the user is registered for the event.
func (e *Event) HasParticipant(userID int64) bool {
	for _, id := range e.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

// EventPatch carries partial updates for an event. Nil fields are left
// unchanged. MaxParticipants applies only when strictly positive; zero or
// negative means "no change", not "unbounded". The creator is never patchable.
type EventPatch struct {
	Title                *string
	Description          *string
	Location             *string
	EventDateTime        *time.Time
	RegistrationDeadline *time.Time
	MaxParticipants      int
	Category             *string
	Organizer            *string
}

// EventRepository defines persistence operations for events.
//
// AddParticipant must be conditional at the storage layer: the insert succeeds
// only while the participant count is below MaxParticipants (or the limit is
// zero), so the capacity invariant holds even without caller-side
// serialization. It reports ErrConflict-wrapped errors for a full event or a
// duplicate registration.
type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id int64) (*Event, error)
	Update(ctx context.Context, event *Event) error
	Delete(ctx context.Context, id int64) error

	AddParticipant(ctx context.Context, eventID, userID int64) error
	RemoveParticipant(ctx context.Context, eventID, userID int64) error

	ListActive(ctx context.Context) ([]Event, error)
	ListUpcoming(ctx context.Context, now time.Time) ([]Event, error)
	ListOpenRegistration(ctx context.Context, now time.Time) ([]Event, error)
	ListByCategory(ctx context.Context, category string) ([]Event, error)
	ListByCreator(ctx context.Context, userID int64) ([]Event, error)
	ListByParticipant(ctx context.Context, userID int64) ([]Event, error)
	Search(ctx context.Context, keyword string) ([]Event, error)
	CountByCreator(ctx context.Context, userID int64) (int, error)
}
