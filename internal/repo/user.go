package repo

import (
	"context"
	"database/sql"
	"errors"

	"github.com/roomhub/roomhub/internal/booking"
	"github.com/roomhub/roomhub/internal/models"
)

const userCols = `id, username, name, password_hash, role, is_active`

// UserRepo persists users.
type UserRepo struct {
	DB *sql.DB
}

// NewUserRepo returns a new UserRepo.
func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{DB: db}
}

// List returns all users ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userCols+` FROM users ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID returns one user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// GetByUsername returns one user by username (for login).
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Create inserts a user with the given bcrypt hash and role.
func (r *UserRepo) Create(ctx context.Context, username, name, passwordHash, role string) (*models.User, error) {
	u := &models.User{}
	err := r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, name, password_hash, role)
		VALUES ($1, $2, $3, $4)
		RETURNING `+userCols,
		username, name, passwordHash, role,
	).Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive)
	if err != nil {
		return nil, err
	}
	return u, nil
}

// ChangeRole updates a user's role and appends a user_role_changed audit
// entry in the same transaction.
func (r *UserRepo) ChangeRole(ctx context.Context, id int, role string, actorID int) (*models.User, error) {
	return r.auditedUpdate(ctx, id, actorID, "user_role_changed",
		`UPDATE users SET role = $2 WHERE id = $1 RETURNING `+userCols, id, role)
}

// Deactivate soft-disables a user (login refused) and appends a
// user_deactivated audit entry in the same transaction.
func (r *UserRepo) Deactivate(ctx context.Context, id, actorID int) (*models.User, error) {
	return r.auditedUpdate(ctx, id, actorID, "user_deactivated",
		`UPDATE users SET is_active = FALSE WHERE id = $1 RETURNING `+userCols, id)
}

func (r *UserRepo) auditedUpdate(ctx context.Context, id, actorID int, action, query string, args ...any) (*models.User, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	old := &models.User{}
	err = tx.QueryRowContext(ctx, `SELECT `+userCols+` FROM users WHERE id = $1 FOR UPDATE`, id).
		Scan(&old.ID, &old.Username, &old.Name, &old.PasswordHash, &old.Role, &old.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, booking.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	u := &models.User{}
	if err := tx.QueryRowContext(ctx, query, args...).
		Scan(&u.ID, &u.Username, &u.Name, &u.PasswordHash, &u.Role, &u.IsActive); err != nil {
		return nil, err
	}

	entry := &models.AuditEntry{
		ActorID:     &actorID,
		Action:      action,
		SubjectType: models.SubjectUser,
		SubjectID:   u.ID,
		OldValues:   old.Snapshot(),
		NewValues:   u.Snapshot(),
	}
	if err := insertAudit(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return u, nil
}
