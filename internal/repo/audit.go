package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/roomhub/roomhub/internal/models"
)

// AuditRepo reads the append-only audit log. Writes happen through Record or,
// for entries that must commit atomically with a mutation, through insertAudit
// inside the mutating repo's transaction. Nothing updates or deletes rows.
type AuditRepo struct {
	DB *sql.DB
}

// NewAuditRepo returns a new AuditRepo.
func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{DB: db}
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// insertAudit appends one audit entry via q, which is the mutation's own
// transaction whenever the entry documents a mutation. Snapshot maps are
// stored as jsonb; nil maps and nil actor/reason become NULL.
func insertAudit(ctx context.Context, q execer, e *models.AuditEntry) error {
	oldVals, err := marshalSnapshot(e.OldValues)
	if err != nil {
		return err
	}
	newVals, err := marshalSnapshot(e.NewValues)
	if err != nil {
		return err
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, action, subject_type, subject_id, old_values, new_values, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ActorID, e.Action, e.SubjectType, e.SubjectID, oldVals, newVals, e.Reason)
	return err
}

func marshalSnapshot(m map[string]any) ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Record appends a standalone audit entry (one that does not accompany a row
// mutation in this process, e.g. system-initiated notes).
func (r *AuditRepo) Record(ctx context.Context, e *models.AuditEntry) error {
	return insertAudit(ctx, r.DB, e)
}

// Filter narrows audit queries. Zero values mean "no constraint".
type Filter struct {
	ActorID     int
	Action      string
	SubjectType string
	From        time.Time
	To          time.Time
}

// List returns audit entries matching f, newest first.
func (r *AuditRepo) List(ctx context.Context, f Filter, limit, offset int) ([]models.AuditEntry, error) {
	where, args := f.clauses()
	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT id, actor_id, action, subject_type, subject_id, old_values, new_values, reason, created_at
		FROM audit_log
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d`, where, len(args)-1, len(args))

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []models.AuditEntry
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// Count returns the number of entries matching f.
func (r *AuditRepo) Count(ctx context.Context, f Filter) (int, error) {
	where, args := f.clauses()
	var n int
	err := r.DB.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log "+where, args...).Scan(&n)
	return n, err
}

func (f Filter) clauses() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ActorID != 0 {
		add("actor_id = $%d", f.ActorID)
	}
	if f.Action != "" {
		add("action = $%d", f.Action)
	}
	if f.SubjectType != "" {
		add("subject_type = $%d", f.SubjectType)
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanAuditEntry(row rowScanner) (*models.AuditEntry, error) {
	var e models.AuditEntry
	var actorID sql.NullInt64
	var oldVals, newVals []byte
	var reason sql.NullString
	err := row.Scan(&e.ID, &actorID, &e.Action, &e.SubjectType, &e.SubjectID, &oldVals, &newVals, &reason, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	if actorID.Valid {
		id := int(actorID.Int64)
		e.ActorID = &id
	}
	e.Reason = nullableString(reason)
	if len(oldVals) > 0 {
		if err := json.Unmarshal(oldVals, &e.OldValues); err != nil {
			return nil, err
		}
	}
	if len(newVals) > 0 {
		if err := json.Unmarshal(newVals, &e.NewValues); err != nil {
			return nil, err
		}
	}
	return &e, nil
}
