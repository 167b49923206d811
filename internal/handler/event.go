package handler

import (
	"net/http"
	"time"

	"github.com/gesa962/Campus-Connect/internal/domain"
	"github.com/gesa962/Campus-Connect/internal/service"
)

// EventHandler handles event discovery and registration requests.
type EventHandler struct {
	registry *service.EventService
	queries  *service.EventQueryService
}

// NewEventHandler creates a new EventHandler.
func NewEventHandler(registry *service.EventService, queries *service.EventQueryService) *EventHandler {
	return &EventHandler{registry: registry, queries: queries}
}

type createEventRequest struct {
	Title                string    `json:"title"`
	Description          string    `json:"description"`
	Location             string    `json:"location"`
	EventDateTime        time.Time `json:"eventDateTime"`
	RegistrationDeadline time.Time `json:"registrationDeadline"`
	MaxParticipants      int       `json:"maxParticipants"`
	Category             string    `json:"category"`
	Organizer            string    `json:"organizer"`
}

type updateEventRequest struct {
	Title                *string    `json:"title"`
	Description          *string    `json:"description"`
	Location             *string    `json:"location"`
	EventDateTime        *time.Time `json:"eventDateTime"`
	RegistrationDeadline *time.Time `json:"registrationDeadline"`
	MaxParticipants      int        `json:"maxParticipants"`
	Category             *string    `json:"category"`
	Organizer            *string    `json:"organizer"`
}

// HandleListActive lists all active events.
// GET /api/events/public/all
func (h *EventHandler) HandleListActive(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListActive(r.Context())
	if err != nil {
		writeServiceError(w, "list active events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleListUpcoming lists active events in the future.
// GET /api/events/public/upcoming
func (h *EventHandler) HandleListUpcoming(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListUpcoming(r.Context())
	if err != nil {
		writeServiceError(w, "list upcoming events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleListOpenRegistration lists active events still accepting registrations.
// GET /api/events/public/open-registration
func (h *EventHandler) HandleListOpenRegistration(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListOpenRegistration(r.Context())
	if err != nil {
		writeServiceError(w, "list open registration events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleListByCategory lists active events in a category.
// GET /api/events/public/category/{category}
func (h *EventHandler) HandleListByCategory(w http.ResponseWriter, r *http.Request) {
	events, err := h.queries.ListByCategory(r.Context(), r.PathValue("category"))
	if err != nil {
		writeServiceError(w, "list events by category", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleSearch searches active events by keyword.
// GET /api/events/public/search?keyword=...
func (h *EventHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeError(w, http.StatusBadRequest, "Query parameter \"keyword\" is required.")
		return
	}

	events, err := h.queries.Search(r.Context(), keyword)
	if err != nil {
		writeServiceError(w, "search events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleGetEvent returns a single event by ID, active or not.
// GET /api/events/public/{eventId}
func (h *EventHandler) HandleGetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	event, err := h.queries.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleMyEvents lists every event the principal created, newest first.
// GET /api/events/my-events
func (h *EventHandler) HandleMyEvents(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	events, err := h.queries.ListByCreator(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list my events", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleMyParticipations lists active events the principal registered for.
// GET /api/events/my-participations
func (h *EventHandler) HandleMyParticipations(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	events, err := h.queries.ListByParticipant(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, "list my participations", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTOs(events))
}

// HandleCreateEvent creates a new event. Admin principals only.
// POST /api/events
func (h *EventHandler) HandleCreateEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req createEventRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	event, err := h.registry.Create(r.Context(), user, &domain.Event{
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		EventDateTime:        req.EventDateTime,
		RegistrationDeadline: req.RegistrationDeadline,
		MaxParticipants:      req.MaxParticipants,
		Category:             req.Category,
		Organizer:            req.Organizer,
	})
	if err != nil {
		writeServiceError(w, "create event", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEventDTO(event))
}

// HandleUpdateEvent applies a sparse patch to an event. Creator only.
// PUT /api/events/{eventId}
func (h *EventHandler) HandleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req updateEventRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	event, err := h.registry.Update(r.Context(), user, id, domain.EventPatch{
		Title:                req.Title,
		Description:          req.Description,
		Location:             req.Location,
		EventDateTime:        req.EventDateTime,
		RegistrationDeadline: req.RegistrationDeadline,
		MaxParticipants:      req.MaxParticipants,
		Category:             req.Category,
		Organizer:            req.Organizer,
	})
	if err != nil {
		writeServiceError(w, "update event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleDeleteEvent removes an event permanently. Creator only.
// DELETE /api/events/{eventId}
func (h *EventHandler) HandleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	if err := h.registry.Delete(r.Context(), user, id); err != nil {
		writeServiceError(w, "delete event", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDeactivateEvent sets an event inactive. Creator only, one-way.
// PUT /api/events/{eventId}/deactivate
func (h *EventHandler) HandleDeactivateEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	event, err := h.registry.Deactivate(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, "deactivate event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleJoinEvent registers the principal for an event.
// POST /api/events/{eventId}/join
func (h *EventHandler) HandleJoinEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	event, err := h.registry.Join(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, "join event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(event))
}

// HandleLeaveEvent removes the principal's registration.
// POST /api/events/{eventId}/leave
func (h *EventHandler) HandleLeaveEvent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	id, err := pathID(r, "eventId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	event, err := h.registry.Leave(r.Context(), user, id)
	if err != nil {
		writeServiceError(w, "leave event", err)
		return
	}
	writeJSON(w, http.StatusOK, toEventDTO(event))
}
