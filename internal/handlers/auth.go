package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomhub/roomhub/internal/middleware"
	"github.com/roomhub/roomhub/internal/repo"
)

type AuthHandler struct {
	UserRepo *repo.UserRepo
	Secret   []byte

	// ExpireHours is the issued token lifetime (default 24 when zero).
	ExpireHours int
}

// Login verifies username/password and issues a JWT carrying user_id,
// username, and role. Deactivated accounts cannot log in.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "validation_error", "invalid json", http.StatusBadRequest)
		return
	}

	user, err := h.UserRepo.GetByUsername(r.Context(), input.Username)
	if err != nil {
		JSONError(w, "unauthorized", "invalid credentials", http.StatusUnauthorized)
		return
	}
	if !user.IsActive {
		JSONError(w, "unauthorized", "invalid credentials", http.StatusUnauthorized)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		JSONError(w, "unauthorized", "invalid credentials", http.StatusUnauthorized)
		return
	}

	expire := h.ExpireHours
	if expire <= 0 {
		expire = 24
	}
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(time.Duration(expire) * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(h.Secret)
	if err != nil {
		JSONError(w, "internal", "failed to issue token", http.StatusInternalServerError)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": signed,
		"user":  user,
	})
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.UserRepo.GetByID(r.Context(), middleware.UserID(r.Context()))
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, user)
}
