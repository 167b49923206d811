package handler

import (
	"net/http"

	"github.com/gesa962/Campus-Connect/internal/service"
)

// RegisterRoutes sets up all HTTP routes on the given mux. Public discovery
// endpoints need no authentication; mutation and "my" endpoints require a
// resolved principal; user administration requires the admin role.
func RegisterRoutes(
	mux *http.ServeMux,
	auth *service.AuthService,
	users *service.UserService,
	registry *service.EventService,
	queries *service.EventQueryService,
	limiter *service.TokenBucket,
) {
	authHandler := NewAuthHandler(auth, limiter)
	userHandler := NewUserHandler(users)
	eventHandler := NewEventHandler(registry, queries)

	mux.HandleFunc("GET /healthz", HandleHealthz)

	// Authentication.
	mux.HandleFunc("POST /api/auth/login", authHandler.HandleLogin)
	mux.HandleFunc("POST /api/auth/register/student", authHandler.HandleRegisterStudent)
	mux.HandleFunc("POST /api/auth/register/admin", authHandler.HandleRegisterAdmin)

	// Public event discovery.
	mux.HandleFunc("GET /api/events/public/all", eventHandler.HandleListActive)
	mux.HandleFunc("GET /api/events/public/upcoming", eventHandler.HandleListUpcoming)
	mux.HandleFunc("GET /api/events/public/open-registration", eventHandler.HandleListOpenRegistration)
	mux.HandleFunc("GET /api/events/public/category/{category}", eventHandler.HandleListByCategory)
	mux.HandleFunc("GET /api/events/public/search", eventHandler.HandleSearch)
	mux.HandleFunc("GET /api/events/public/{eventId}", eventHandler.HandleGetEvent)

	// Event mutations and per-principal views.
	protected := func(h http.HandlerFunc) http.Handler { return RequireAuth(auth, h) }
	mux.Handle("GET /api/events/my-events", protected(eventHandler.HandleMyEvents))
	mux.Handle("GET /api/events/my-participations", protected(eventHandler.HandleMyParticipations))
	mux.Handle("POST /api/events", protected(eventHandler.HandleCreateEvent))
	mux.Handle("PUT /api/events/{eventId}", protected(eventHandler.HandleUpdateEvent))
	mux.Handle("DELETE /api/events/{eventId}", protected(eventHandler.HandleDeleteEvent))
	mux.Handle("PUT /api/events/{eventId}/deactivate", protected(eventHandler.HandleDeactivateEvent))
	mux.Handle("POST /api/events/{eventId}/join", protected(eventHandler.HandleJoinEvent))
	mux.Handle("POST /api/events/{eventId}/leave", protected(eventHandler.HandleLeaveEvent))

	// Profile.
	mux.Handle("GET /api/users/profile", protected(userHandler.HandleGetProfile))
	mux.Handle("PUT /api/users/profile", protected(userHandler.HandleUpdateProfile))

	// User administration.
	admin := func(h http.HandlerFunc) http.Handler { return RequireAdmin(auth, h) }
	mux.Handle("GET /api/users/students", admin(userHandler.HandleListStudents))
	mux.Handle("GET /api/users/admins", admin(userHandler.HandleListAdmins))
	mux.Handle("GET /api/users/{userId}", admin(userHandler.HandleGetUser))
	mux.Handle("PUT /api/users/{userId}", admin(userHandler.HandleUpdateUser))
	mux.Handle("DELETE /api/users/{userId}", admin(userHandler.HandleDeleteUser))
}
