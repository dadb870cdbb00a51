package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/roomhub/roomhub/internal/booking"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with "error" (machine-readable kind) and "message".
func JSONError(w http.ResponseWriter, kind, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": kind, "message": message})
}

// WriteJSON sends v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// DomainError translates booking package errors into HTTP responses:
// validation 422 with field details, conflicts 422, forbidden 403, not found
// 404, contention 503 with Retry-After. Everything else logs and returns 500.
func DomainError(w http.ResponseWriter, err error) {
	var ve *booking.ValidationError
	var te *booking.InvalidTransitionError
	switch {
	case errors.As(err, &ve):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   "validation_error",
			"message": ve.Error(),
			"fields":  ve.Fields,
		})
	case errors.As(err, &te):
		JSONError(w, "invalid_transition", te.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, booking.ErrRoomUnavailable):
		JSONError(w, "room_unavailable", err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, booking.ErrForbidden):
		JSONError(w, "forbidden", err.Error(), http.StatusForbidden)
	case errors.Is(err, booking.ErrNotFound):
		JSONError(w, "not_found", err.Error(), http.StatusNotFound)
	case errors.Is(err, booking.ErrStoreContention):
		w.Header().Set("Retry-After", "1")
		JSONError(w, "transient", err.Error(), http.StatusServiceUnavailable)
	default:
		slog.Error("unhandled error", "err", err)
		JSONError(w, "internal", ErrMessageInternal, http.StatusInternalServerError)
	}
}

// Outcome classifies err for the transition metrics counter.
func Outcome(err error) string {
	var ve *booking.ValidationError
	var te *booking.InvalidTransitionError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &ve):
		return "invalid"
	case errors.As(err, &te):
		return "invalid"
	case errors.Is(err, booking.ErrRoomUnavailable):
		return "conflict"
	case errors.Is(err, booking.ErrForbidden):
		return "forbidden"
	case errors.Is(err, booking.ErrNotFound):
		return "invalid"
	default:
		return "error"
	}
}
