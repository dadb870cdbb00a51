package booking

import (
	"context"
	"errors"
	"time"

	"github.com/roomhub/roomhub/internal/models"
)

// Input length bounds shared by the service and the HTTP layer.
const (
	MaxTitleLen  = 255
	MaxReasonLen = 1000
)

// Store is the durable collaborator. It is the single source of truth and the
// synchronization point: CreateBooking and TransitionBooking must commit the
// row mutation and its audit entry as one atomic unit, and must themselves
// enforce the no-overlap invariant (CreateBooking) and the expected-status
// guard (TransitionBooking) under concurrent callers.
type Store interface {
	GetBooking(ctx context.Context, id int) (*models.Booking, error)
	GetRoom(ctx context.Context, id int) (*models.Room, error)

	// IsAvailable reports whether no {pending, approved} booking for roomID
	// overlaps rng. excludeBookingID > 0 ignores that booking (re-validation).
	IsAvailable(ctx context.Context, roomID int, rng TimeRange, excludeBookingID int) (bool, error)

	// AvailableRooms returns active rooms with no conflicting {pending,
	// approved} booking in rng, ordered by name.
	AvailableRooms(ctx context.Context, rng TimeRange) ([]models.Room, error)

	// ListOverlapping returns {pending, approved} bookings overlapping rng,
	// ordered by start time ascending.
	ListOverlapping(ctx context.Context, rng TimeRange) ([]models.Booking, error)

	// CreateBooking inserts b and its audit entry in one transaction,
	// re-checking availability inside it. The store fills entry.SubjectID and
	// entry.NewValues from the inserted row. Returns ErrRoomUnavailable when
	// a conflicting booking exists or raced the insert.
	CreateBooking(ctx context.Context, b *models.Booking, entry *models.AuditEntry) (*models.Booking, error)

	// TransitionBooking conditionally updates b (only while the row's status
	// still equals expected) and appends entry in the same transaction. A
	// lost race surfaces as InvalidTransitionError with the current status.
	TransitionBooking(ctx context.Context, b *models.Booking, expected models.Status, entry *models.AuditEntry) (*models.Booking, error)
}

// Service orchestrates the booking lifecycle: input validation, conflict
// gating, the state machine, and the audit contract.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// CreateInput is the intent to create a booking. OccupantID is optional: when
// set to someone other than the actor, the actor must be an authority booking
// on the occupant's behalf and must supply AdminReason.
type CreateInput struct {
	RoomID      int
	Title       string
	Range       TimeRange
	OccupantID  int
	AdminReason string
}

// Create validates the input, gates on availability, and persists the booking
// in pending status with its booking_created audit entry. On conflict nothing
// is created and no audit entry is written.
func (s *Service) Create(ctx context.Context, actor Actor, in CreateInput) (*models.Booking, error) {
	fields := make(map[string]string)
	if in.Title == "" {
		fields["title"] = "required"
	} else if len(in.Title) > MaxTitleLen {
		fields["title"] = "too long"
	}
	if in.RoomID <= 0 {
		fields["room_id"] = "required"
	}
	if len(in.AdminReason) > MaxReasonLen {
		fields["admin_reason"] = "too long"
	}
	if err := in.Range.Validate(); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) {
			for k, v := range ve.Fields {
				fields[k] = v
			}
		}
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	occupant := actor.ID
	onBehalf := in.OccupantID != 0 && in.OccupantID != actor.ID
	if onBehalf {
		if !actor.Authority {
			return nil, ErrForbidden
		}
		if in.AdminReason == "" {
			return nil, &ValidationError{Fields: map[string]string{"admin_reason": "required when booking on behalf of an occupant"}}
		}
		occupant = in.OccupantID
	}

	room, err := s.store.GetRoom(ctx, in.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.IsActive {
		return nil, &ValidationError{Fields: map[string]string{"room_id": "room is not active"}}
	}

	ok, err := s.store.IsAvailable(ctx, room.ID, in.Range, 0)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrRoomUnavailable
	}

	b := &models.Booking{
		OccupantID: occupant,
		CreatedBy:  actor.ID,
		RoomID:     room.ID,
		Title:      in.Title,
		StartTime:  in.Range.Start,
		EndTime:    in.Range.End,
		Status:     models.StatusPending,
	}
	if onBehalf {
		b.AdminReason = &in.AdminReason
	}

	entry := &models.AuditEntry{
		ActorID:     actorRef(actor),
		Action:      string(ActionCreate),
		SubjectType: models.SubjectBooking,
		Reason:      optional(in.AdminReason),
	}
	return s.store.CreateBooking(ctx, b, entry)
}

// Approve moves a pending booking to approved. Authority only; no reason.
func (s *Service) Approve(ctx context.Context, actor Actor, id int) (*models.Booking, error) {
	return s.transition(ctx, actor, id, ActionApprove, "")
}

// Reject moves a pending booking to the terminal rejected status.
func (s *Service) Reject(ctx context.Context, actor Actor, id int, reason string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, ActionReject, reason)
}

// RequestCancel moves an approved booking to cancel_requested. Only the
// booking's occupant may request cancellation.
func (s *Service) RequestCancel(ctx context.Context, actor Actor, id int, reason string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, ActionRequestCancel, reason)
}

// Cancel confirms a cancellation request, moving the booking to the terminal
// cancelled status.
func (s *Service) Cancel(ctx context.Context, actor Actor, id int, reason string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, ActionCancel, reason)
}

// RejectCancel denies a cancellation request, returning the booking to
// approved.
func (s *Service) RejectCancel(ctx context.Context, actor Actor, id int, reason string) (*models.Booking, error) {
	return s.transition(ctx, actor, id, ActionRejectCancel, reason)
}

func (s *Service) transition(ctx context.Context, actor Actor, id int, act Action, reason string) (*models.Booking, error) {
	b, err := s.store.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	old := b.Snapshot()
	if err := Apply(b, act, actor, reason); err != nil {
		return nil, err
	}

	expected, _ := act.from()
	entry := &models.AuditEntry{
		ActorID:     actorRef(actor),
		Action:      string(act),
		SubjectType: models.SubjectBooking,
		SubjectID:   b.ID,
		OldValues:   old,
		NewValues:   b.Snapshot(),
		Reason:      optional(reason),
	}
	return s.store.TransitionBooking(ctx, b, expected, entry)
}

// Get returns one booking by id.
func (s *Service) Get(ctx context.Context, id int) (*models.Booking, error) {
	return s.store.GetBooking(ctx, id)
}

// ListForDate returns {pending, approved} bookings overlapping the day
// containing day, ordered by start time. Same overlap predicate as conflict
// checking.
func (s *Service) ListForDate(ctx context.Context, day time.Time) ([]models.Booking, error) {
	return s.store.ListOverlapping(ctx, DayWindow(day))
}

// IsAvailable reports whether the room is free for the whole range.
func (s *Service) IsAvailable(ctx context.Context, roomID int, rng TimeRange, excludeBookingID int) (bool, error) {
	if err := rng.Validate(); err != nil {
		return false, err
	}
	return s.store.IsAvailable(ctx, roomID, rng, excludeBookingID)
}

// AvailableRooms returns the active rooms free for the whole range, ordered
// by name for deterministic output.
func (s *Service) AvailableRooms(ctx context.Context, rng TimeRange) ([]models.Room, error) {
	if err := rng.Validate(); err != nil {
		return nil, err
	}
	return s.store.AvailableRooms(ctx, rng)
}

func actorRef(actor Actor) *int {
	if actor.ID == 0 {
		return nil
	}
	id := actor.ID
	return &id
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
