package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/models"
)

var userColNames = []string{"id", "username", "name", "password_hash", "role", "is_active"}

func TestUserRepo_GetByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, name, password_hash, role, is_active FROM users WHERE username`).
		WithArgs("jdoe").
		WillReturnRows(sqlmock.NewRows(userColNames).
			AddRow(42, "jdoe", "J. Doe", "$2a$10$hash", models.RoleLecturer, true))

	r := NewUserRepo(db)
	u, err := r.GetByUsername(context.Background(), "jdoe")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if u.ID != 42 || u.Role != models.RoleLecturer || !u.IsActive {
		t.Errorf("unexpected user: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_GetByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(`SELECT id, username, name, password_hash, role, is_active FROM users WHERE username`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColNames))

	r := NewUserRepo(db)
	if _, err := r.GetByUsername(context.Background(), "ghost"); !errors.Is(err, booking.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_ChangeRole(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, username, name, password_hash, role, is_active FROM users WHERE id`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(userColNames).
			AddRow(42, "jdoe", "J. Doe", "h", models.RoleLecturer, true))
	mock.ExpectQuery(`UPDATE users SET role`).
		WithArgs(42, models.RoleAdmin).
		WillReturnRows(sqlmock.NewRows(userColNames).
			AddRow(42, "jdoe", "J. Doe", "h", models.RoleAdmin, true))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "user_role_changed", "user", 42, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := NewUserRepo(db)
	u, err := r.ChangeRole(context.Background(), 42, models.RoleAdmin, 1)
	if err != nil {
		t.Fatalf("ChangeRole: %v", err)
	}
	if u.Role != models.RoleAdmin {
		t.Errorf("role: %q", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

func TestUserRepo_Deactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, username, name, password_hash, role, is_active FROM users WHERE id`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(userColNames).
			AddRow(42, "jdoe", "J. Doe", "h", models.RoleLecturer, true))
	mock.ExpectQuery(`UPDATE users SET is_active`).
		WithArgs(42).
		WillReturnRows(sqlmock.NewRows(userColNames).
			AddRow(42, "jdoe", "J. Doe", "h", models.RoleLecturer, false))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WithArgs(1, "user_deactivated", "user", 42, sqlmock.AnyArg(), sqlmock.AnyArg(), nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	r := NewUserRepo(db)
	u, err := r.Deactivate(context.Background(), 42, 1)
	if err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if u.IsActive {
		t.Errorf("user still active: %+v", u)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}
