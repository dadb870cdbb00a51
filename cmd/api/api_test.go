package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"golang.org/x/crypto/bcrypt"

	"github.com/roomhub/roomhub/internal/config"
	"github.com/roomhub/roomhub/internal/models"
)

var bookingCols = []string{
	"id", "occupant_id", "created_by", "room_id", "title", "start_time", "end_time", "status",
	"rejection_reason", "cancel_request_reason", "cancel_reason", "cancel_reject_reason", "admin_reason",
	"created_at", "updated_at",
}

func bookingRow(id, occupant, room int, status string) *sqlmock.Rows {
	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	now := time.Now()
	return sqlmock.NewRows(bookingCols).
		AddRow(id, occupant, occupant, room, "Lecture", start, start.Add(time.Hour), status,
			nil, nil, nil, nil, nil, now, now)
}

func login(t *testing.T, srvURL, username, password string) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	resp, err := http.Post(srvURL+"/auth/login", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil || out.Token == "" {
		t.Fatalf("login response: %v", err)
	}
	return out.Token
}

// TestAPI_LoginThenApproveBooking is an integration test: it builds the full
// router with a sqlmock-backed DB, logs in as an admin to get a JWT, then
// approves a pending booking through the HTTP surface.
func TestAPI_LoginThenApproveBooking(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)

	mock.ExpectQuery(`SELECT id, username`).
		WithArgs("boss").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "password_hash", "role", "is_active"}).
			AddRow(1, "boss", "", string(hash), models.RoleAdmin, true))

	mock.ExpectQuery(`SELECT id, occupant_id`).
		WithArgs(5).
		WillReturnRows(bookingRow(5, 42, 2, "pending"))
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE bookings`).
		WillReturnRows(bookingRow(5, 42, 2, "approved"))
	mock.ExpectExec(`INSERT INTO audit_log`).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	cfg := config.Config{JWTSecret: "test-secret-for-integration"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	token := login(t, srv.URL, "boss", "secret123")

	req, _ := http.NewRequest("POST", srv.URL+"/bookings/5/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("approve request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("POST /bookings/5/approve status: got %d, want 200", resp.StatusCode)
	}
	var out struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode booking: %v", err)
	}
	if out.ID != 5 || out.Status != "approved" {
		t.Errorf("unexpected booking: %+v", out)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("expectations: %v", err)
	}
}

// TestAPI_LecturerCannotApprove verifies the role gate on authority routes.
func TestAPI_LecturerCannotApprove(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	mock.ExpectQuery(`SELECT id, username`).
		WithArgs("teach").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "name", "password_hash", "role", "is_active"}).
			AddRow(42, "teach", "", string(hash), models.RoleLecturer, true))

	cfg := config.Config{JWTSecret: "test-secret-for-integration"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	token := login(t, srv.URL, "teach", "secret123")

	req, _ := http.NewRequest("POST", srv.URL+"/bookings/5/approve", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("approve request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("status: got %d, want 403", resp.StatusCode)
	}

	// Audit log is superadmin territory.
	req, _ = http.NewRequest("GET", srv.URL+"/audit-logs", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp2, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("audit request: %v", err)
	}
	defer resp2.Body.Close()
	if resp2.StatusCode != http.StatusForbidden {
		t.Errorf("audit status: got %d, want 403", resp2.StatusCode)
	}
}

// TestAPI_Unauthenticated checks that protected routes refuse missing tokens.
func TestAPI_Unauthenticated(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/bookings")
	if err != nil {
		t.Fatalf("bookings request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /bookings status: got %d, want 401", resp.StatusCode)
	}
}

// TestAPI_Health is a quick smoke test for the health endpoint.
func TestAPI_Health(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /health status: got %d, want 200", resp.StatusCode)
	}
}

// TestAPI_Ready checks that /ready pings the DB and returns 200 when it is reachable.
func TestAPI_Ready(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()
	mock.ExpectPing()

	cfg := config.Config{JWTSecret: "x"}
	srv := httptest.NewServer(newRouter(db, cfg))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ready")
	if err != nil {
		t.Fatalf("ready request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /ready status: got %d, want 200", resp.StatusCode)
	}
}
