package handler

import (
	"net"
	"net/http"

	"github.com/gesa962/Campus-Connect/internal/domain"
	"github.com/gesa962/Campus-Connect/internal/service"
)

// AuthHandler handles login and account registration requests.
type AuthHandler struct {
	auth    *service.AuthService
	limiter *service.TokenBucket
}

// NewAuthHandler creates a new AuthHandler. The limiter throttles login and
// registration attempts per client address.
func NewAuthHandler(auth *service.AuthService, limiter *service.TokenBucket) *AuthHandler {
	return &AuthHandler{auth: auth, limiter: limiter}
}

type registerRequest struct {
	Username   string `json:"username"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	StudentID  string `json:"studentId"`
	Department string `json:"department"`
}

// HandleLogin processes a JSON login request.
// POST /api/auth/login
// Request:  {"username":"...","password":"..."}
// Response: {"token":"...","user":{...}}
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.allow(r) {
		writeError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		return
	}

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, "login user", err)
		return
	}

	userID, _ := h.auth.ValidateToken(token)
	user, err := h.auth.GetUserByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, "get user after login", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  toUserDTO(user),
	})
}

// HandleRegisterStudent registers a new student account.
// POST /api/auth/register/student
func (h *AuthHandler) HandleRegisterStudent(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleStudent)
}

// HandleRegisterAdmin registers a new admin account.
// POST /api/auth/register/admin
func (h *AuthHandler) HandleRegisterAdmin(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, domain.RoleAdmin)
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, role domain.Role) {
	if !h.allow(r) {
		writeError(w, http.StatusTooManyRequests, "Too many attempts. Please try again later.")
		return
	}

	var req registerRequest
	if err := readJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	user, err := h.auth.Register(r.Context(), service.RegisterInput{
		Username:   req.Username,
		Email:      req.Email,
		Password:   req.Password,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		StudentID:  req.StudentID,
		Department: req.Department,
	}, role)
	if err != nil {
		writeServiceError(w, "register user", err)
		return
	}

	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

func (h *AuthHandler) allow(r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return h.limiter.Allow(host)
}
