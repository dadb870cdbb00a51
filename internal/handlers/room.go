package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/middleware"
	"github.com/roomhub/roomhub/internal/models"
	"github.com/roomhub/roomhub/internal/repo"
)

type RoomHandler struct {
	Repo    *repo.RoomRepo
	Service *booking.Service
}

//
// ==========================
// List Rooms
// ==========================
//

func (h *RoomHandler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Repo.List(r.Context())
	if err != nil {
		DomainError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	WriteJSON(w, http.StatusOK, rooms)
}

//
// ==========================
// Available Rooms
// ==========================
//

// AvailableRooms returns active rooms free for the whole requested range.
// Query: start, end (RFC3339).
func (h *RoomHandler) AvailableRooms(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		JSONError(w, "validation_error", "invalid start, want RFC3339", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		JSONError(w, "validation_error", "invalid end, want RFC3339", http.StatusBadRequest)
		return
	}

	rooms, err := h.Service.AvailableRooms(r.Context(), booking.TimeRange{Start: start, End: end})
	if err != nil {
		DomainError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	WriteJSON(w, http.StatusOK, rooms)
}

//
// ==========================
// Get Room By ID
// ==========================
//

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid room id", http.StatusBadRequest)
		return
	}

	room, err := h.Repo.GetByID(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

//
// ==========================
// Create Room
// ==========================
//

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=255"`
		Location string `json:"location" validate:"max=255"`
		Capacity int    `json:"capacity" validate:"required,min=1"`
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

	room, err := h.Repo.Create(r.Context(), input.Name, input.Location, input.Capacity, true)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, room)
}

//
// ==========================
// Update Room
// ==========================
//

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid room id", http.StatusBadRequest)
		return
	}

	var input struct {
		Name     string `json:"name" validate:"required,min=2,max=255"`
		Location string `json:"location" validate:"max=255"`
		Capacity int    `json:"capacity" validate:"required,min=1"`
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

	room, err := h.Repo.Update(r.Context(), id, input.Name, input.Location, input.Capacity)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}

//
// ==========================
// Deactivate Room
// ==========================
//

// DeactivateRoom soft-disables a room. The room stops appearing in
// availability; existing bookings are untouched.
func (h *RoomHandler) DeactivateRoom(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid room id", http.StatusBadRequest)
		return
	}

	room, err := h.Repo.Deactivate(r.Context(), id, middleware.UserID(r.Context()))
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, room)
}
