package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gesa962/Campus-Connect/internal/domain"
)

// EventRepository implements domain.EventRepository using SQLite.
type EventRepository struct {
	db *sql.DB
}

// NewEventRepository creates a new SQLite-backed EventRepository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{db: db.SqlDB}
}

const eventColumns = `id, title, description, location, event_date_time, registration_deadline, max_participants, category, organizer, created_by, is_active, created_at, updated_at`

func (r *EventRepository) Create(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO events (title, description, location, event_date_time, registration_deadline, max_participants, category, organizer, created_by, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.Title, event.Description, event.Location, event.EventDateTime,
		event.RegistrationDeadline, event.MaxParticipants, event.Category,
		event.Organizer, event.CreatedByID, event.IsActive, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	event.ID = id
	event.CreatedAt = now
	event.UpdatedAt = now
	return nil
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*domain.Event, error) {
	event := &domain.Event{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id,
	).Scan(
		&event.ID, &event.Title, &event.Description, &event.Location,
		&event.EventDateTime, &event.RegistrationDeadline, &event.MaxParticipants,
		&event.Category, &event.Organizer, &event.CreatedByID, &event.IsActive,
		&event.CreatedAt, &event.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("query event by id: %w", err)
	}

	participants, err := r.participantsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	event.Participants = participants
	return event, nil
}

// Update persists all mutable fields in a single statement, so a sparse patch
// is applied all-or-nothing. The creator and creation time are never written.
func (r *EventRepository) Update(ctx context.Context, event *domain.Event) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE events SET title = ?, description = ?, location = ?, event_date_time = ?, registration_deadline = ?, max_participants = ?, category = ?, organizer = ?, is_active = ?, updated_at = ?
		 WHERE id = ?`,
		event.Title, event.Description, event.Location, event.EventDateTime,
		event.RegistrationDeadline, event.MaxParticipants, event.Category,
		event.Organizer, event.IsActive, now, event.ID,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}

	event.UpdatedAt = now
	return nil
}

func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AddParticipant registers a user for an event. The insert is conditional on
// the current participant count being below the limit, so the capacity
// invariant holds at the storage layer regardless of caller serialization.
func (r *EventRepository) AddParticipant(ctx context.Context, eventID, userID int64) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`INSERT INTO event_participants (event_id, user_id, registered_at)
		 SELECT e.id, ?, ?
		 FROM events e
		 WHERE e.id = ?
		   AND (e.max_participants = 0
		        OR (SELECT COUNT(*) FROM event_participants p WHERE p.event_id = e.id) < e.max_participants)`,
		userID, now, eventID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: already registered", domain.ErrConflict)
		}
		return fmt.Errorf("insert participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.eventExists(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: event is full", domain.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE events SET updated_at = ? WHERE id = ?`, now, eventID); err != nil {
		return fmt.Errorf("touch event: %w", err)
	}

	return tx.Commit()
}

// RemoveParticipant removes a user's registration.
func (r *EventRepository) RemoveParticipant(ctx context.Context, eventID, userID int64) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`DELETE FROM event_participants WHERE event_id = ? AND user_id = ?`, eventID, userID)
	if err != nil {
		return fmt.Errorf("delete participant: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		exists, err := r.eventExists(ctx, tx, eventID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrNotFound
		}
		return fmt.Errorf("%w: not registered", domain.ErrConflict)
	}

	if _, err := tx.ExecContext(ctx, `UPDATE events SET updated_at = ? WHERE id = ?`, now, eventID); err != nil {
		return fmt.Errorf("touch event: %w", err)
	}

	return tx.Commit()
}

func (r *EventRepository) eventExists(ctx context.Context, tx *sql.Tx, eventID int64) (bool, error) {
	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE id = ?`, eventID).Scan(&count); err != nil {
		return false, fmt.Errorf("query event exists: %w", err)
	}
	return count > 0, nil
}

func (r *EventRepository) ListActive(ctx context.Context) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_active = 1 ORDER BY event_date_time ASC`)
}

func (r *EventRepository) ListUpcoming(ctx context.Context, now time.Time) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_active = 1 AND event_date_time > ? ORDER BY event_date_time ASC`,
		now.UTC())
}

func (r *EventRepository) ListOpenRegistration(ctx context.Context, now time.Time) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_active = 1 AND registration_deadline > ? ORDER BY registration_deadline ASC`,
		now.UTC())
}

func (r *EventRepository) ListByCategory(ctx context.Context, category string) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE is_active = 1 AND category = ? ORDER BY event_date_time ASC`,
		category)
}

func (r *EventRepository) ListByCreator(ctx context.Context, userID int64) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events WHERE created_by = ? ORDER BY created_at DESC`,
		userID)
}

func (r *EventRepository) ListByParticipant(ctx context.Context, userID int64) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events e
		 JOIN event_participants p ON p.event_id = e.id
		 WHERE p.user_id = ? AND e.is_active = 1
		 ORDER BY e.event_date_time ASC`,
		userID)
}

// Search matches a case-sensitive substring against title or description.
// instr is used instead of LIKE, which is case-insensitive for ASCII in SQLite.
func (r *EventRepository) Search(ctx context.Context, keyword string) ([]domain.Event, error) {
	return r.list(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE is_active = 1 AND (instr(title, ?) > 0 OR instr(description, ?) > 0)
		 ORDER BY event_date_time ASC`,
		keyword, keyword)
}

func (r *EventRepository) CountByCreator(ctx context.Context, userID int64) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM events WHERE created_by = ?`, userID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count events by creator: %w", err)
	}
	return count, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]domain.Event, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []domain.Event
	for rows.Next() {
		var event domain.Event
		if err := rows.Scan(
			&event.ID, &event.Title, &event.Description, &event.Location,
			&event.EventDateTime, &event.RegistrationDeadline, &event.MaxParticipants,
			&event.Category, &event.Organizer, &event.CreatedByID, &event.IsActive,
			&event.CreatedAt, &event.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadParticipants(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) participantsFor(ctx context.Context, eventID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM event_participants WHERE event_id = ?`, eventID)
	if err != nil {
		return nil, fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan participant: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// loadParticipants fills the participant ID sets for a batch of events with a
// single query.
func (r *EventRepository) loadParticipants(ctx context.Context, events []domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	placeholders := make([]string, len(events))
	args := make([]any, len(events))
	index := make(map[int64]*domain.Event, len(events))
	for i := range events {
		placeholders[i] = "?"
		args[i] = events[i].ID
		index[events[i].ID] = &events[i]
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT event_id, user_id FROM event_participants WHERE event_id IN (`+strings.Join(placeholders, ", ")+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("query participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, userID int64
		if err := rows.Scan(&eventID, &userID); err != nil {
			return fmt.Errorf("scan participant: %w", err)
		}
		if event, ok := index[eventID]; ok {
			event.Participants = append(event.Participants, userID)
		}
	}
	return rows.Err()
}
