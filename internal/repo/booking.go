package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/models"
)

const bookingCols = `id, occupant_id, created_by, room_id, title, start_time, end_time, status,
	rejection_reason, cancel_request_reason, cancel_reason, cancel_reject_reason, admin_reason,
	created_at, updated_at`

// BookingRepo is the Postgres implementation of booking.Store. The bookings
// table carries a btree_gist exclusion constraint over (room_id, time range)
// for {pending, approved} rows, so even a create that races past the
// in-transaction availability re-check cannot persist a double booking.
type BookingRepo struct {
	DB *sql.DB
}

// NewBookingRepo returns a new BookingRepo.
func NewBookingRepo(db *sql.DB) *BookingRepo {
	return &BookingRepo{DB: db}
}

var _ booking.Store = (*BookingRepo)(nil)

// GetBooking returns one booking by id.
func (r *BookingRepo) GetBooking(ctx context.Context, id int) (*models.Booking, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+bookingCols+` FROM bookings WHERE id = $1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// GetRoom returns one room by id.
func (r *BookingRepo) GetRoom(ctx context.Context, id int) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, location, capacity, is_active, created_at FROM rooms WHERE id = $1`, id,
	).Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// IsAvailable reports whether no {pending, approved} booking overlaps rng for
// the room. Half-open semantics: a.start < b.end AND a.end > b.start.
// excludeBookingID of 0 excludes nothing (no booking has id 0).
func (r *BookingRepo) IsAvailable(ctx context.Context, roomID int, rng booking.TimeRange, excludeBookingID int) (bool, error) {
	var conflict bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_time < $3 AND end_time > $2
			  AND id <> $4
		)`, roomID, rng.Start, rng.End, excludeBookingID,
	).Scan(&conflict)
	if err != nil {
		return false, err
	}
	return !conflict, nil
}

// AvailableRooms returns active rooms without a conflicting {pending,
// approved} booking in rng, ordered by name for deterministic output.
func (r *BookingRepo) AvailableRooms(ctx context.Context, rng booking.TimeRange) ([]models.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, location, capacity, is_active, created_at
		FROM rooms
		WHERE is_active = TRUE
		  AND id NOT IN (
			SELECT room_id FROM bookings
			WHERE status IN ('pending', 'approved')
			  AND start_time < $2 AND end_time > $1
		  )
		ORDER BY name`, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Room
	for rows.Next() {
		var room models.Room
		if err := rows.Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// ListOverlapping returns {pending, approved} bookings overlapping rng,
// ordered by start time ascending.
func (r *BookingRepo) ListOverlapping(ctx context.Context, rng booking.TimeRange) ([]models.Booking, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT `+bookingCols+`
		FROM bookings
		WHERE status IN ('pending', 'approved')
		  AND start_time < $2 AND end_time > $1
		ORDER BY start_time`, rng.Start, rng.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// CreateBooking inserts the booking and its booking_created audit entry in a
// serializable transaction, re-checking availability inside it. The exclusion
// constraint is the last line of defense; its violation is reported as
// booking.ErrRoomUnavailable.
func (r *BookingRepo) CreateBooking(ctx context.Context, b *models.Booking, entry *models.AuditEntry) (*models.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, domainErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	var conflict bool
	err = tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE room_id = $1
			  AND status IN ('pending', 'approved')
			  AND start_time < $3 AND end_time > $2
		)`, b.RoomID, b.StartTime, b.EndTime,
	).Scan(&conflict)
	if err != nil {
		return nil, domainErr(err)
	}
	if conflict {
		return nil, booking.ErrRoomUnavailable
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO bookings (occupant_id, created_by, room_id, title, start_time, end_time, status, admin_reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+bookingCols,
		b.OccupantID, b.CreatedBy, b.RoomID, b.Title, b.StartTime, b.EndTime, b.Status, b.AdminReason)
	created, err := scanBooking(row)
	if err != nil {
		return nil, domainErr(err)
	}

	entry.SubjectID = created.ID
	entry.NewValues = created.Snapshot()
	if err := insertAudit(ctx, tx, entry); err != nil {
		return nil, domainErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domainErr(err)
	}
	return created, nil
}

// TransitionBooking applies an already-validated transition as a conditional
// update: the row changes only while its status still equals expected, and
// the audit entry commits in the same transaction. A concurrent transition
// that got there first surfaces as InvalidTransitionError with the status it
// left behind.
func (r *BookingRepo) TransitionBooking(ctx context.Context, b *models.Booking, expected models.Status, entry *models.AuditEntry) (*models.Booking, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, domainErr(err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		UPDATE bookings
		SET status = $2,
		    rejection_reason = $3,
		    cancel_request_reason = $4,
		    cancel_reason = $5,
		    cancel_reject_reason = $6,
		    updated_at = now()
		WHERE id = $1 AND status = $7
		RETURNING `+bookingCols,
		b.ID, b.Status, b.RejectionReason, b.CancelRequestReason, b.CancelReason, b.CancelRejectReason, expected)
	updated, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.staleTransition(ctx, b.ID, entry.Action)
	}
	if err != nil {
		return nil, domainErr(err)
	}

	if err := insertAudit(ctx, tx, entry); err != nil {
		return nil, domainErr(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domainErr(err)
	}
	return updated, nil
}

// staleTransition explains a conditional update that matched no row: either
// the booking is gone or its status moved under us.
func (r *BookingRepo) staleTransition(ctx context.Context, id int, action string) error {
	var current models.Status
	err := r.DB.QueryRowContext(ctx, `SELECT status FROM bookings WHERE id = $1`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return booking.ErrNotFound
	}
	if err != nil {
		return err
	}
	return &booking.InvalidTransitionError{Status: current, Action: booking.Action(action)}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	var rejection, cancelReq, cancel, cancelRej, admin sql.NullString
	err := row.Scan(
		&b.ID, &b.OccupantID, &b.CreatedBy, &b.RoomID, &b.Title,
		&b.StartTime, &b.EndTime, &b.Status,
		&rejection, &cancelReq, &cancel, &cancelRej, &admin,
		&b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.RejectionReason = nullableString(rejection)
	b.CancelRequestReason = nullableString(cancelReq)
	b.CancelReason = nullableString(cancel)
	b.CancelRejectReason = nullableString(cancelRej)
	b.AdminReason = nullableString(admin)
	return &b, nil
}

func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

// domainErr maps Postgres failure codes onto domain errors: the exclusion
// constraint means the room is taken, serialization/lock failures are the
// retryable contention case.
func domainErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23P01": // exclusion_violation on bookings_no_overlap
			return booking.ErrRoomUnavailable
		case "40001", "40P01", "55P03": // serialization, deadlock, lock timeout
			return booking.ErrStoreContention
		}
	}
	return err
}
