package handler

import (
	"net/http"

	"github.com/gesa962/Campus-Connect/internal/domain"
	"github.com/gesa962/Campus-Connect/internal/service"
)

// UserHandler handles profile and user administration requests.
type UserHandler struct {
	users *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *service.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type userPatchRequest struct {
	FirstName  *string `json:"firstName"`
	LastName   *string `json:"lastName"`
	Email      *string `json:"email"`
	Password   *string `json:"password"`
	StudentID  *string `json:"studentId"`
	Department *string `json:"department"`
}

func (r userPatchRequest) toPatch() service.UserPatch {
	return service.UserPatch{
		FirstName:  r.FirstName,
		LastName:   r.LastName,
		Email:      r.Email,
		Password:   r.Password,
		StudentID:  r.StudentID,
		Department: r.Department,
	}
}

// HandleGetProfile returns the authenticated user's profile.
// GET /api/users/profile
func (h *UserHandler) HandleGetProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleUpdateProfile applies a sparse update to the authenticated user's
// profile.
// PUT /api/users/profile
func (h *UserHandler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	var req userPatchRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.users.Update(r.Context(), user.ID, req.toPatch())
	if err != nil {
		writeServiceError(w, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// HandleListStudents lists all student accounts. Admin only.
// GET /api/users/students
func (h *UserHandler) HandleListStudents(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, domain.RoleStudent)
}

// HandleListAdmins lists all admin accounts. Admin only.
// GET /api/users/admins
func (h *UserHandler) HandleListAdmins(w http.ResponseWriter, r *http.Request) {
	h.listByRole(w, r, domain.RoleAdmin)
}

func (h *UserHandler) listByRole(w http.ResponseWriter, r *http.Request, role domain.Role) {
	users, err := h.users.ListByRole(r.Context(), role)
	if err != nil {
		writeServiceError(w, "list users by role", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTOs(users))
}

// HandleGetUser returns a user by ID. Admin only.
// GET /api/users/{userId}
func (h *UserHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeServiceError(w, "get user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleUpdateUser applies a sparse update to any user. Admin only.
// PUT /api/users/{userId}
func (h *UserHandler) HandleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	var req userPatchRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.users.Update(r.Context(), id, req.toPatch())
	if err != nil {
		writeServiceError(w, "update user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(updated))
}

// HandleDeleteUser deletes a user. Admin only. Deletion is refused while the
// user still owns events.
// DELETE /api/users/{userId}
func (h *UserHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "userId")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	if err := h.users.Delete(r.Context(), id); err != nil {
		writeServiceError(w, "delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
