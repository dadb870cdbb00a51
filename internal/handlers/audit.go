package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/roomhub/roomhub/internal/models"
	"github.com/roomhub/roomhub/internal/repo"
)

// AuditHandler serves the audit log. Routes mounting it must be restricted to
// superadmins.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

func auditFilter(r *http.Request) (repo.Filter, error) {
	var f repo.Filter
	q := r.URL.Query()
	if a := q.Get("actor_id"); a != "" {
		id, err := strconv.Atoi(a)
		if err != nil {
			return f, fmt.Errorf("invalid actor_id")
		}
		f.ActorID = id
	}
	f.Action = q.Get("action")
	f.SubjectType = q.Get("subject_type")
	if from := q.Get("from"); from != "" {
		t, err := time.Parse(time.RFC3339, from)
		if err != nil {
			return f, fmt.Errorf("invalid from, want RFC3339")
		}
		f.From = t
	}
	if to := q.Get("to"); to != "" {
		t, err := time.Parse(time.RFC3339, to)
		if err != nil {
			return f, fmt.Errorf("invalid to, want RFC3339")
		}
		f.To = t
	}
	return f, nil
}

// ListAudit returns audit entries newest first with the total count for
// pagination. Query: actor_id, action, subject_type, from, to (RFC3339),
// limit (default 50, max 200), offset.
func (h *AuditHandler) ListAudit(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilter(r)
	if err != nil {
		JSONError(w, "validation_error", err.Error(), http.StatusBadRequest)
		return
	}

	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if val, err := strconv.Atoi(l); err == nil && val > 0 && val <= 200 {
			limit = val
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if val, err := strconv.Atoi(o); err == nil && val >= 0 {
			offset = val
		}
	}

	entries, err := h.Repo.List(r.Context(), f, limit, offset)
	if err != nil {
		DomainError(w, err)
		return
	}
	total, err := h.Repo.Count(r.Context(), f)
	if err != nil {
		DomainError(w, err)
		return
	}
	if entries == nil {
		entries = []models.AuditEntry{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
		"total":   total,
	})
}

// exportPageSize bounds memory while streaming the CSV export.
const exportPageSize = 500

// ExportAudit streams the matching audit entries as a CSV attachment, paging
// through the log so exports of any size run in constant memory.
func (h *AuditHandler) ExportAudit(w http.ResponseWriter, r *http.Request) {
	f, err := auditFilter(r)
	if err != nil {
		JSONError(w, "validation_error", err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=audit-log-%s.csv", time.Now().Format("2006-01-02")))

	cw := csv.NewWriter(w)
	cw.Write([]string{"id", "actor_id", "action", "subject_type", "subject_id", "old_values", "new_values", "reason", "created_at"})

	for offset := 0; ; offset += exportPageSize {
		entries, err := h.Repo.List(r.Context(), f, exportPageSize, offset)
		if err != nil {
			// Headers already went out; the truncated CSV is the best we can do.
			return
		}
		for _, e := range entries {
			cw.Write(csvRow(&e))
		}
		cw.Flush()
		if len(entries) < exportPageSize {
			return
		}
	}
}

func csvRow(e *models.AuditEntry) []string {
	actor := ""
	if e.ActorID != nil {
		actor = strconv.Itoa(*e.ActorID)
	}
	reason := ""
	if e.Reason != nil {
		reason = *e.Reason
	}
	return []string{
		strconv.FormatInt(e.ID, 10),
		actor,
		e.Action,
		e.SubjectType,
		strconv.Itoa(e.SubjectID),
		jsonCell(e.OldValues),
		jsonCell(e.NewValues),
		reason,
		e.CreatedAt.Format(time.RFC3339),
	}
}

func jsonCell(m map[string]any) string {
	if m == nil {
		return ""
	}
	b, err := json.Marshal(m)
	if err != nil {
		return ""
	}
	return string(b)
}
