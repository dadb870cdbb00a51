package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/metrics"
	"github.com/roomhub/roomhub/internal/middleware"
	"github.com/roomhub/roomhub/internal/models"
)

type BookingHandler struct {
	Service *booking.Service
}

func actorFrom(r *http.Request) booking.Actor {
	ctx := r.Context()
	return booking.Actor{
		ID:        middleware.UserID(ctx),
		Authority: models.IsAuthority(middleware.Role(ctx)),
	}
}

//
// ==========================
// List Bookings (by date)
// ==========================
//

// ListBookings returns live bookings overlapping one day. Query: date
// (YYYY-MM-DD, default today).
func (h *BookingHandler) ListBookings(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if d := r.URL.Query().Get("date"); d != "" {
		parsed, err := time.Parse("2006-01-02", d)
		if err != nil {
			JSONError(w, "validation_error", "invalid date, want YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		day = parsed
	}

	bookings, err := h.Service.ListForDate(r.Context(), day)
	if err != nil {
		DomainError(w, err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	WriteJSON(w, http.StatusOK, bookings)
}

//
// ==========================
// Get Booking By ID
// ==========================
//

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid booking id", http.StatusBadRequest)
		return
	}

	b, err := h.Service.Get(r.Context(), id)
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, b)
}

//
// ==========================
// Create Booking
// ==========================
//

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var input struct {
		RoomID      int       `json:"room_id"`
		Title       string    `json:"title"`
		StartTime   time.Time `json:"start_time"`
		EndTime     time.Time `json:"end_time"`
		OccupantID  int       `json:"occupant_id"`
		AdminReason string    `json:"admin_reason"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "validation_error", "invalid json", http.StatusBadRequest)
		return
	}

	b, err := h.Service.Create(r.Context(), actorFrom(r), booking.CreateInput{
		RoomID:      input.RoomID,
		Title:       input.Title,
		Range:       booking.TimeRange{Start: input.StartTime, End: input.EndTime},
		OccupantID:  input.OccupantID,
		AdminReason: input.AdminReason,
	})
	metrics.RecordTransition(string(booking.ActionCreate), Outcome(err))
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, b)
}

//
// ==========================
// Lifecycle transitions
// ==========================
//

// Approve moves a pending booking to approved. Admin or superadmin only.
func (h *BookingHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, booking.ActionApprove,
		func(ctx context.Context, actor booking.Actor, id int, _ string) (*models.Booking, error) {
			return h.Service.Approve(ctx, actor, id)
		})
}

// Reject moves a pending booking to rejected with a mandatory reason.
func (h *BookingHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, booking.ActionReject, h.Service.Reject)
}

// RequestCancel lets the booking's occupant ask for cancellation of an
// approved booking.
func (h *BookingHandler) RequestCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, booking.ActionRequestCancel, h.Service.RequestCancel)
}

// Cancel confirms a cancellation request.
func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, booking.ActionCancel, h.Service.Cancel)
}

// RejectCancel denies a cancellation request, restoring approved.
func (h *BookingHandler) RejectCancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, booking.ActionRejectCancel, h.Service.RejectCancel)
}

func (h *BookingHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	act booking.Action,
	apply func(ctx context.Context, actor booking.Actor, id int, reason string) (*models.Booking, error),
) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		JSONError(w, "validation_error", "invalid booking id", http.StatusBadRequest)
		return
	}

	var input struct {
		Reason string `json:"reason"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			JSONError(w, "validation_error", "invalid json", http.StatusBadRequest)
			return
		}
	}

	b, err := apply(r.Context(), actorFrom(r), id, input.Reason)
	metrics.RecordTransition(string(act), Outcome(err))
	if err != nil {
		DomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, b)
}
