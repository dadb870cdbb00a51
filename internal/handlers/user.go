package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomhub/roomhub/internal/middleware"
	"github.com/roomhub/roomhub/internal/models"
	"github.com/roomhub/roomhub/internal/repo"
)

type UserHandler struct {
	Repo *repo.UserRepo
}

func validRole(role string) bool {
	switch role {
	case models.RoleLecturer, models.RoleAdmin, models.RoleSuperAdmin:
		return true
	}
	return false
}

//
// ==========================
// List Users
// ==========================
//

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Repo.List(r.Context())
	if err != nil {
		DomainError(w, err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	WriteJSON(w, http.StatusOK, users)
}

//
// ==========================
// Create User
// ==========================
//

// CreateUser registers an account. Only a superadmin may grant the admin or
// superadmin role; admins create lecturers.
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username" validate:"required,min=2,max=64"`
		Name     string `json:"name" validate:"max=255"`
		Password string `json:"password" validate:"required,min=8,max=72"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "validation_error", "invalid json", http.StatusBadRequest)
		return
	}

	validate := validator.New()
	if err := validate.Struct(input); err != nil {
		JSONError(w, "validation_error", err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if input.Role == "" {
		input.Role = models.RoleLecturer
	}
	if !validRole(input.Role) {
		JSONError(w, "validation_error", "unknown role", http.StatusUnprocessableEntity)
		return
	}
	if input.Role != models.RoleLecturer && middleware.Role(r.Context()) != models.RoleSuperAdmin {
		JSONError(w, "forbidden", "only a superadmin may grant elevated roles", http.StatusForbidden)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		JSONError(w, "internal", ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	user, err := h.Repo.Create(r.Context(), input.Username, input.Name, string(hash), input.Role)
	if err != nil {
		if e, ok := err.(*pq.Error); ok && e.Code == "23505" {
			JSONError(w, "validation_error", "username already taken", http.StatusUnprocessableEntity)
			return
		}
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, user)
}

//
// ==========================
// Change Role
// ==========================
//

// ChangeRole updates a user's role. Superadmin only; a superadmin cannot
// demote their own account, so the system always keeps one.
func (h *UserHandler) ChangeRole(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid user id", http.StatusBadRequest)
		return
	}

	var input struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "validation_error", "invalid json", http.StatusBadRequest)
		return
	}
	if !validRole(input.Role) {
		JSONError(w, "validation_error", "unknown role", http.StatusUnprocessableEntity)
		return
	}

	actorID := middleware.UserID(r.Context())
	if id == actorID && input.Role != models.RoleSuperAdmin {
		JSONError(w, "forbidden", "cannot demote your own account", http.StatusForbidden)
		return
	}

	user, err := h.Repo.ChangeRole(r.Context(), id, input.Role, actorID)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

//
// ==========================
// Deactivate User
// ==========================
//

// DeactivateUser disables login for an account. Superadmin only; deactivating
// your own account is refused.
func (h *UserHandler) DeactivateUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid user id", http.StatusBadRequest)
		return
	}

	actorID := middleware.UserID(r.Context())
	if id == actorID {
		JSONError(w, "forbidden", "cannot deactivate your own account", http.StatusForbidden)
		return
	}

	user, err := h.Repo.Deactivate(r.Context(), id, actorID)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
