package models

import "time"

// Subject types for the polymorphic audit reference.
const (
	SubjectBooking = "booking"
	SubjectRoom    = "room"
	SubjectUser    = "user"
)

// AuditEntry is one immutable audit log row. Entries are append-only: nothing
// updates or deletes them once written. ActorID is nil for system-initiated
// changes. OldValues/NewValues are full snapshots of the subject before and
// after the mutation; OldValues is nil on creation.
type AuditEntry struct {
	ID          int64          `json:"id"`
	ActorID     *int           `json:"actor_id"`
	Action      string         `json:"action"`
	SubjectType string         `json:"subject_type"` // booking, room, user
	SubjectID   int            `json:"subject_id"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	Reason      *string        `json:"reason,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
