package booking

import (
	"github.com/roomhub/roomhub/internal/models"
)

// Action tags one lifecycle transition. The same tag names the audit entry
// the transition produces.
type Action string

const (
	ActionCreate        Action = "booking_created"
	ActionApprove       Action = "booking_approved"
	ActionReject        Action = "booking_rejected"
	ActionRequestCancel Action = "booking_cancel_requested"
	ActionCancel        Action = "booking_cancelled"
	ActionRejectCancel  Action = "booking_cancel_rejected"
)

// Actor is the capability view of the authenticated caller. The state machine
// never sees roles or identity beyond this: Authority covers approve/reject/
// cancel/reject-cancel, and ID establishes booking ownership.
type Actor struct {
	ID        int
	Authority bool
}

// transition describes one legal (status, action) pair. occupantOnly means
// only the booking's occupant may perform it; every other transition requires
// an authority.
type transition struct {
	from           models.Status
	to             models.Status
	occupantOnly   bool
	reasonRequired bool
	setReason      func(b *models.Booking, reason string)
}

var transitions = map[Action]transition{
	ActionApprove: {
		from: models.StatusPending,
		to:   models.StatusApproved,
	},
	ActionReject: {
		from:           models.StatusPending,
		to:             models.StatusRejected,
		reasonRequired: true,
		setReason:      func(b *models.Booking, r string) { b.RejectionReason = &r },
	},
	ActionRequestCancel: {
		from:           models.StatusApproved,
		to:             models.StatusCancelRequested,
		occupantOnly:   true,
		reasonRequired: true,
		setReason:      func(b *models.Booking, r string) { b.CancelRequestReason = &r },
	},
	ActionCancel: {
		from:           models.StatusCancelRequested,
		to:             models.StatusCancelled,
		reasonRequired: true,
		setReason:      func(b *models.Booking, r string) { b.CancelReason = &r },
	},
	ActionRejectCancel: {
		from:           models.StatusCancelRequested,
		to:             models.StatusApproved,
		reasonRequired: true,
		setReason:      func(b *models.Booking, r string) { b.CancelRejectReason = &r },
	},
}

// from returns the status a transition action requires the booking to be in.
func (a Action) from() (models.Status, bool) {
	t, ok := transitions[a]
	return t.from, ok
}

// Apply validates act against the booking's current state and the actor's
// capability, then mutates b in memory: new status plus the reason field
// specific to this transition. Reason fields written by earlier transitions
// are historical and stay untouched.
//
// Check order is a contract: authorization first (ErrForbidden), state
// validity second (InvalidTransitionError), reason presence last.
func Apply(b *models.Booking, act Action, actor Actor, reason string) error {
	t, ok := transitions[act]
	if !ok {
		return &InvalidTransitionError{Status: b.Status, Action: act}
	}

	if t.occupantOnly {
		if actor.ID != b.OccupantID {
			return ErrForbidden
		}
	} else if !actor.Authority {
		return ErrForbidden
	}

	if b.Status != t.from {
		return &InvalidTransitionError{Status: b.Status, Action: act}
	}

	if t.reasonRequired && reason == "" {
		return &ValidationError{Fields: map[string]string{"reason": "required"}}
	}
	if len(reason) > MaxReasonLen {
		return &ValidationError{Fields: map[string]string{"reason": "too long"}}
	}

	b.Status = t.to
	if t.setReason != nil {
		t.setReason(b, reason)
	}
	return nil
}
