package models

import "time"

// Status is the lifecycle state of a booking. Transitions between statuses go
// through the state machine in internal/booking; nothing else writes Status.
type Status string

const (
	StatusPending         Status = "pending"
	StatusApproved        Status = "approved"
	StatusCancelRequested Status = "cancel_requested"
	StatusCancelled       Status = "cancelled"
	StatusRejected        Status = "rejected"
)

// Terminal reports whether no further transition is defined from s.
// Terminal bookings are kept forever as historical records.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusRejected
}

// Booking is one room reservation. OccupantID is the person the room is booked
// for; CreatedBy is the actor who created it (an authority may book on behalf
// of someone else). The reason fields accumulate over the lifecycle: each
// transition fills in its own field and leaves the earlier ones intact.
type Booking struct {
	ID         int       `json:"id"`
	OccupantID int       `json:"occupant_id"`
	CreatedBy  int       `json:"created_by"`
	RoomID     int       `json:"room_id"`
	Title      string    `json:"title"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     Status    `json:"status"`

	RejectionReason     *string `json:"rejection_reason,omitempty"`
	CancelRequestReason *string `json:"cancel_request_reason,omitempty"`
	CancelReason        *string `json:"cancel_reason,omitempty"`
	CancelRejectReason  *string `json:"cancel_reject_reason,omitempty"`
	AdminReason         *string `json:"admin_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Snapshot returns the full-entity state used for audit old/new values.
// Audit snapshots are complete, not diffs, so an investigator never has to
// reconstruct a row from deltas.
func (b *Booking) Snapshot() map[string]any {
	snap := map[string]any{
		"id":          b.ID,
		"occupant_id": b.OccupantID,
		"created_by":  b.CreatedBy,
		"room_id":     b.RoomID,
		"title":       b.Title,
		"start_time":  b.StartTime.UTC().Format(time.RFC3339Nano),
		"end_time":    b.EndTime.UTC().Format(time.RFC3339Nano),
		"status":      string(b.Status),
	}
	addReason := func(key string, v *string) {
		if v != nil {
			snap[key] = *v
		}
	}
	addReason("rejection_reason", b.RejectionReason)
	addReason("cancel_request_reason", b.CancelRequestReason)
	addReason("cancel_reason", b.CancelReason)
	addReason("cancel_reject_reason", b.CancelRejectReason)
	addReason("admin_reason", b.AdminReason)
	return snap
}
