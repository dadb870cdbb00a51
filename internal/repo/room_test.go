package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roomhub/roomhub/internal/booking"
)

var roomColNames = []string{"id", "name", "location", "capacity", "is_active", "created_at"}

func TestRoomRepo_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`SELECT id, name, location, capacity, is_active, created_at FROM rooms ORDER BY name`).
		WillReturnRows(sqlmock.NewRows(roomColNames).
			AddRow(3, "Lecture Hall 3", "Building A", 120, true, now).
			AddRow(5, "Old Annex", "Building C", 12, false, now))

	r := NewRoomRepo(db)
	rooms, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(rooms) != 2 || rooms[1].IsActive {
		t.Errorf("unexpected rooms: %+v", rooms)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRoomRepo_GetByID_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, name, location, capacity, is_active, created_at FROM rooms WHERE id`).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows(roomColNames))

	r := NewRoomRepo(db)
	if _, err := r.GetByID(context.Background(), 99); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRoomRepo_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`INSERT INTO rooms`).
		WithArgs("Lecture Hall 3", "Building A", 120, true).
		WillReturnRows(sqlmock.NewRows(roomColNames).AddRow(3, "Lecture Hall 3", "Building A", 120, true, now))

	r := NewRoomRepo(db)
	room, err := r.Create(context.Background(), "Lecture Hall 3", "Building A", 120, true)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if room.ID != 3 || !room.IsActive {
		t.Errorf("unexpected room: %+v", room)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestRoomRepo_Deactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, name, location, capacity, is_active, created_at FROM rooms WHERE id`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(roomColNames).AddRow(3, "Lecture Hall 3", "Building A", 120, true, now))
	mock.ExpectQuery(`UPDATE rooms SET is_active`).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(roomColNames).AddRow(3, "Lecture Hall 3", "Building A", 120, false, now))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "room_deactivated", "room", 3, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := NewRoomRepo(db)
	room, err := r.Deactivate(context.Background(), 3, 1)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if room.IsActive {
		t.Errorf("room still active: %+v", room)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
