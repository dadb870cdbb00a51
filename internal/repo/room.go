package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/models"
)

const roomCols = `id, name, location, capacity, is_active, created_at`

// RoomRepo persists rooms. Rooms are never deleted; deactivation is a soft
// flag so historical bookings keep a valid reference.
type RoomRepo struct {
	DB *sql.DB
}

// NewRoomRepo returns a new RoomRepo.
func NewRoomRepo(db *sql.DB) *RoomRepo {
	return &RoomRepo{DB: db}
}

// List returns all rooms (active and inactive), ordered by name.
func (r *RoomRepo) List(ctx context.Context) ([]models.Room, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY name`)
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

// GetByID returns one room by id.
func (r *RoomRepo) GetByID(ctx context.Context, id int) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = $1`, id).
		Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Create inserts a room and returns it with id set.
func (r *RoomRepo) Create(ctx context.Context, name, location string, capacity int, isActive bool) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO rooms (name, location, capacity, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING `+roomCols,
		name, location, capacity, isActive,
	).Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt)
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Update changes name, location and capacity for the given id.
func (r *RoomRepo) Update(ctx context.Context, id int, name, location string, capacity int) (*models.Room, error) {
	room := &models.Room{}
	err := r.DB.QueryRowContext(ctx, `
		UPDATE rooms
		SET name = $2, location = $3, capacity = $4
		WHERE id = $1
		RETURNING `+roomCols,
		id, name, location, capacity,
	).Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return room, nil
}

// Deactivate soft-disables a room and appends a room_deactivated audit entry
// in the same transaction. The room drops out of availability; existing
// bookings keep referencing it.
func (r *RoomRepo) Deactivate(ctx context.Context, id, actorID int) (*models.Room, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	old := &models.Room{}
	err = tx.QueryRowContext(ctx, `SELECT `+roomCols+` FROM rooms WHERE id = $1 FOR UPDATE`, id).
		Scan(&old.ID, &old.Name, &old.Location, &old.Capacity, &old.IsActive, &old.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	room := &models.Room{}
	err = tx.QueryRowContext(ctx, `
		UPDATE rooms SET is_active = FALSE WHERE id = $1
		RETURNING `+roomCols, id,
	).Scan(&room.ID, &room.Name, &room.Location, &room.Capacity, &room.IsActive, &room.CreatedAt)
	if err != nil {
		return nil, err
	}

	entry := &models.AuditEntry{
		ActorID:     &actorID,
		Action:      "room_deactivated",
		SubjectType: models.SubjectRoom,
		SubjectID:   room.ID,
		OldValues:   old.Snapshot(),
		NewValues:   room.Snapshot(),
	}
	if err := insertAudit(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return room, nil
}
