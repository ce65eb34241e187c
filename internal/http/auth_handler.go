package http

import (
	"log/slog"
	"net/http"

	"github.com/fjod/sweetshop/internal/auth"
	"github.com/fjod/sweetshop/internal/domain"
	"github.com/fjod/sweetshop/internal/logger"
)

type AuthHandler struct {
	users  *auth.UserStore
	admins *auth.AdminStore
	log    *slog.Logger
}

func NewAuthHandler(users *auth.UserStore, admins *auth.AdminStore, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, admins: admins, log: logger.OrNop(log)}
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := h.users.Register(r.Context(), req)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, u)
}

// Logout answers 204 even when the slot could not be cleared; the error is
// reported but the in-memory identity is already gone.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.users.Logout(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, ok := h.users.Current()
	if !ok {
		unauthenticated(w, "user")
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var patch domain.UserPatch
	if !decodeJSON(w, r, &patch) {
		return
	}
	if patch.Gender != nil && !patch.Gender.Valid() {
		respondError(w, http.StatusBadRequest, "invalid_gender", "gender must be male, female or other")
		return
	}
	u, err := h.users.UpdateUser(r.Context(), patch)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, u)
}

func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequestDTO
	if !decodeJSON(w, r, &req) {
		return
	}
	a, err := h.admins.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		handleError(w, r, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

func (h *AuthHandler) AdminLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.admins.Logout(r.Context()); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) AdminMe(w http.ResponseWriter, r *http.Request) {
	a, ok := h.admins.Current()
	if !ok {
		unauthenticated(w, "admin")
		return
	}
	respondJSON(w, http.StatusOK, a)
}
