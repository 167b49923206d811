package service_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gesa962/Campus-Connect/internal/domain"
	"github.com/gesa962/Campus-Connect/internal/repository/sqlite"
	"github.com/gesa962/Campus-Connect/internal/service"
)

func newTestEventService(t *testing.T) (*service.EventService, *sqlite.DB) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return service.NewEventService(db.Events(), db.Users()), db
}

func seedUser(t *testing.T, db *sqlite.DB, username string, role domain.Role) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:     username,
		Email:        username + "@campus.edu",
		PasswordHash: "hash",
		Role:         role,
	}
	if err := db.Users().Create(context.Background(), user); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func draftEvent(maxParticipants int) *domain.Event {
	now := time.Now()
	return &domain.Event{
		Title:                "Robotics Workshop",
		Description:          "Hands-on introduction to campus robotics.",
		Location:             "Engineering Hall 2",
		EventDateTime:        now.Add(48 * time.Hour),
		RegistrationDeadline: now.Add(24 * time.Hour),
		MaxParticipants:      maxParticipants,
		Category:             "Academic",
		Organizer:            "Robotics Club",
	}
}

func seedEvent(t *testing.T, svc *service.EventService, admin *domain.User, maxParticipants int) *domain.Event {
	t.Helper()
	event, err := svc.Create(context.Background(), admin, draftEvent(maxParticipants))
	if err != nil {
		t.Fatalf("seed event: %v", err)
	}
	return event
}

func TestEventService_Create_Admin(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)

	event, err := svc.Create(context.Background(), admin, draftEvent(10))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if event.ID == 0 {
		t.Fatal("expected event ID to be set")
	}
	if event.CreatedByID != admin.ID {
		t.Fatalf("expected creator %d, got %d", admin.ID, event.CreatedByID)
	}
	if !event.IsActive {
		t.Fatal("expected new event to be active")
	}
	if len(event.Participants) != 0 {
		t.Fatalf("expected no participants, got %d", len(event.Participants))
	}
	if event.CreatedAt.IsZero() || event.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestEventService_Create_NonAdmin(t *testing.T) {
	svc, db := newTestEventService(t)
	student := seedUser(t, db, "student", domain.RoleStudent)

	_, err := svc.Create(context.Background(), student, draftEvent(10))
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// Nothing must be persisted.
	events, err := db.Events().ListByCreator(context.Background(), student.ID)
	if err != nil {
		t.Fatalf("ListByCreator: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no persisted events, got %d", len(events))
	}
}

func TestEventService_Update_SparsePatch(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	title := "Renamed Workshop"
	updated, err := svc.Update(context.Background(), admin, event.ID, domain.EventPatch{Title: &title})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Title != title {
		t.Fatalf("expected title %q, got %q", title, updated.Title)
	}
	if updated.Description != event.Description {
		t.Fatalf("description changed: %q -> %q", event.Description, updated.Description)
	}
	if updated.Location != event.Location {
		t.Fatalf("location changed: %q -> %q", event.Location, updated.Location)
	}
	if !updated.EventDateTime.Equal(event.EventDateTime) {
		t.Fatal("event time changed by title-only patch")
	}
	if !updated.RegistrationDeadline.Equal(event.RegistrationDeadline) {
		t.Fatal("deadline changed by title-only patch")
	}
	if updated.MaxParticipants != event.MaxParticipants {
		t.Fatalf("max participants changed: %d -> %d", event.MaxParticipants, updated.MaxParticipants)
	}
	if updated.Category != event.Category || updated.Organizer != event.Organizer {
		t.Fatal("category or organizer changed by title-only patch")
	}
	if updated.CreatedByID != admin.ID {
		t.Fatal("creator changed by patch")
	}
}

func TestEventService_Update_ZeroMaxParticipantsMeansNoChange(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 25)

	updated, err := svc.Update(context.Background(), admin, event.ID, domain.EventPatch{MaxParticipants: 0})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MaxParticipants != 25 {
		t.Fatalf("expected limit to stay 25, got %d", updated.MaxParticipants)
	}

	updated, err = svc.Update(context.Background(), admin, event.ID, domain.EventPatch{MaxParticipants: 40})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.MaxParticipants != 40 {
		t.Fatalf("expected limit 40, got %d", updated.MaxParticipants)
	}
}

func TestEventService_Update_NonCreator(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	other := seedUser(t, db, "other", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	title := "Hijacked"
	_, err := svc.Update(context.Background(), other, event.ID, domain.EventPatch{Title: &title})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEventService_Update_NotFound(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)

	title := "Ghost"
	_, err := svc.Update(context.Background(), admin, 9999, domain.EventPatch{Title: &title})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventService_Delete(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	if err := svc.Delete(context.Background(), admin, event.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	_, err := db.Events().GetByID(context.Background(), event.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestEventService_Delete_NonCreator(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	other := seedUser(t, db, "other", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	err := svc.Delete(context.Background(), other, event.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEventService_Delete_InactiveEvent(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	if _, err := svc.Deactivate(context.Background(), admin, event.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	// Deletion is not bound by the active flag.
	if err := svc.Delete(context.Background(), admin, event.ID); err != nil {
		t.Fatalf("Delete after deactivate: %v", err)
	}
	_ = db
}

func TestEventService_Deactivate(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	if _, err := svc.Join(context.Background(), student, event.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}

	deactivated, err := svc.Deactivate(context.Background(), admin, event.ID)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if deactivated.IsActive {
		t.Fatal("expected event to be inactive")
	}
	// Deactivation must not touch participants.
	got, err := db.Events().GetByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Participants) != 1 {
		t.Fatalf("expected 1 participant after deactivate, got %d", len(got.Participants))
	}
}

func TestEventService_Deactivate_NonCreator(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	other := seedUser(t, db, "other", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 10)

	_, err := svc.Deactivate(context.Background(), other, event.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestEventService_Join(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	joined, err := svc.Join(context.Background(), student, event.ID)
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	if !joined.HasParticipant(student.ID) {
		t.Fatal("expected student to be registered")
	}
	if len(joined.Participants) != 1 {
		t.Fatalf("expected 1 participant, got %d", len(joined.Participants))
	}
}

func TestEventService_Join_NotFound(t *testing.T) {
	svc, db := newTestEventService(t)
	student := seedUser(t, db, "student", domain.RoleStudent)

	_, err := svc.Join(context.Background(), student, 12345)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestEventService_Join_Inactive(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	if _, err := svc.Deactivate(context.Background(), admin, event.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	_, err := svc.Join(context.Background(), student, event.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "not active") {
		t.Fatalf("expected 'not active' reason, got %q", err)
	}
}

func TestEventService_Join_DeadlinePassed(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)

	draft := draftEvent(10)
	draft.RegistrationDeadline = time.Now().Add(-time.Second)
	event, err := svc.Create(context.Background(), admin, draft)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err = svc.Join(context.Background(), student, event.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "registration is closed") {
		t.Fatalf("expected 'registration is closed' reason, got %q", err)
	}
}

func TestEventService_Join_Twice(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	if _, err := svc.Join(context.Background(), student, event.ID); err != nil {
		t.Fatalf("first Join: %v", err)
	}

	_, err := svc.Join(context.Background(), student, event.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "already registered") {
		t.Fatalf("expected 'already registered' reason, got %q", err)
	}

	got, err := db.Events().GetByID(context.Background(), event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Participants) != 1 {
		t.Fatalf("participant count changed by duplicate join: %d", len(got.Participants))
	}
}

func TestEventService_Leave_NotRegistered(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	_, err := svc.Leave(context.Background(), student, event.ID)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "not registered") {
		t.Fatalf("expected 'not registered' reason, got %q", err)
	}
}

func TestEventService_Leave_AfterDeactivate(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	student := seedUser(t, db, "student", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 10)

	if _, err := svc.Join(context.Background(), student, event.ID); err != nil {
		t.Fatalf("Join: %v", err)
	}
	if _, err := svc.Deactivate(context.Background(), admin, event.ID); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}

	// Leaving stays possible once the event is inactive.
	left, err := svc.Leave(context.Background(), student, event.ID)
	if err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if left.HasParticipant(student.ID) {
		t.Fatal("expected student to be removed")
	}
}

func TestEventService_CapacityScenario(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	userA := seedUser(t, db, "alice", domain.RoleStudent)
	userB := seedUser(t, db, "bob", domain.RoleStudent)
	userC := seedUser(t, db, "carol", domain.RoleStudent)
	event := seedEvent(t, svc, admin, 2)
	ctx := context.Background()

	if _, err := svc.Join(ctx, userA, event.ID); err != nil {
		t.Fatalf("A joins: %v", err)
	}
	if _, err := svc.Join(ctx, userB, event.ID); err != nil {
		t.Fatalf("B joins: %v", err)
	}

	_, err := svc.Join(ctx, userC, event.ID)
	if !errors.Is(err, domain.ErrConflict) || !strings.Contains(err.Error(), "event is full") {
		t.Fatalf("expected 'event is full' conflict for C, got %v", err)
	}

	got, _ := db.Events().GetByID(ctx, event.ID)
	if len(got.Participants) != 2 {
		t.Fatalf("expected 2 participants, got %d", len(got.Participants))
	}

	if _, err := svc.Leave(ctx, userA, event.ID); err != nil {
		t.Fatalf("A leaves: %v", err)
	}
	if _, err := svc.Join(ctx, userC, event.ID); err != nil {
		t.Fatalf("C joins after A left: %v", err)
	}

	got, _ = db.Events().GetByID(ctx, event.ID)
	if len(got.Participants) != 2 {
		t.Fatalf("expected 2 participants after rejoin, got %d", len(got.Participants))
	}
}

func TestEventService_Join_UnboundedCapacity(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)
	event := seedEvent(t, svc, admin, 0)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		student := seedUser(t, db, fmt.Sprintf("student%d", i), domain.RoleStudent)
		if _, err := svc.Join(ctx, student, event.ID); err != nil {
			t.Fatalf("join %d: %v", i, err)
		}
	}

	got, _ := db.Events().GetByID(ctx, event.ID)
	if len(got.Participants) != 5 {
		t.Fatalf("expected 5 participants, got %d", len(got.Participants))
	}
}

func TestEventService_Join_ConcurrentNoOverEnrollment(t *testing.T) {
	svc, db := newTestEventService(t)
	admin := seedUser(t, db, "admin", domain.RoleAdmin)

	const capacity = 5
	const joiners = 20
	event := seedEvent(t, svc, admin, capacity)
	ctx := context.Background()

	students := make([]*domain.User, joiners)
	for i := range students {
		students[i] = seedUser(t, db, fmt.Sprintf("student%d", i), domain.RoleStudent)
	}

	var successes atomic.Int64
	var g errgroup.Group
	for _, student := range students {
		g.Go(func() error {
			_, err := svc.Join(ctx, student, event.ID)
			if err == nil {
				successes.Add(1)
				return nil
			}
			if errors.Is(err, domain.ErrConflict) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent join: %v", err)
	}

	if successes.Load() != capacity {
		t.Fatalf("expected exactly %d successful joins, got %d", capacity, successes.Load())
	}

	got, err := db.Events().GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(got.Participants) != capacity {
		t.Fatalf("over-enrollment: %d participants for capacity %d", len(got.Participants), capacity)
	}
}
