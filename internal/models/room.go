package models

import "time"

// Room is a bookable resource. Deactivation is a soft flag: an inactive room
// takes no new bookings and is excluded from availability, but bookings that
// already reference it remain valid history.
type Room struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Capacity  int       `json:"capacity"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Snapshot returns the room state for audit old/new values.
func (r *Room) Snapshot() map[string]any {
	return map[string]any{
		"id":        r.ID,
		"name":      r.Name,
		"location":  r.Location,
		"capacity":  r.Capacity,
		"is_active": r.IsActive,
	}
}
