package booking

import (
	"testing"
	"time"
)

func mustRange(t *testing.T, start, end string) TimeRange {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	if err != nil {
		t.Fatalf("parse start: %v", err)
	}
	e, err := time.Parse(time.RFC3339, end)
	if err != nil {
		t.Fatalf("parse end: %v", err)
	}
	return TimeRange{Start: s, End: e}
}

func TestTimeRangeOverlaps(t *testing.T) {
	base := mustRange(t, "2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z")

	cases := []struct {
		name  string
		other TimeRange
		want  bool
	}{
		{"identical", mustRange(t, "2026-03-02T10:00:00Z", "2026-03-02T11:00:00Z"), true},
		{"contained", mustRange(t, "2026-03-02T10:15:00Z", "2026-03-02T10:45:00Z"), true},
		{"straddles start", mustRange(t, "2026-03-02T09:30:00Z", "2026-03-02T10:30:00Z"), true},
		{"straddles end", mustRange(t, "2026-03-02T10:30:00Z", "2026-03-02T11:30:00Z"), true},
		{"covers", mustRange(t, "2026-03-02T09:00:00Z", "2026-03-02T12:00:00Z"), true},
		{"touches end", mustRange(t, "2026-03-02T11:00:00Z", "2026-03-02T12:00:00Z"), false},
		{"touches start", mustRange(t, "2026-03-02T09:00:00Z", "2026-03-02T10:00:00Z"), false},
		{"before", mustRange(t, "2026-03-02T08:00:00Z", "2026-03-02T09:00:00Z"), false},
		{"after", mustRange(t, "2026-03-02T12:00:00Z", "2026-03-02T13:00:00Z"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := base.Overlaps(tc.other); got != tc.want {
				t.Errorf("Overlaps(%v): got %v, want %v", tc.other, got, tc.want)
			}
			// overlap is symmetric
			if got := tc.other.Overlaps(base); got != tc.want {
				t.Errorf("Overlaps reversed: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewTimeRangeValidation(t *testing.T) {
	at := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if _, err := NewTimeRange(at, at); err == nil {
		t.Error("expected error for zero-length range")
	}
	if _, err := NewTimeRange(at, at.Add(-time.Hour)); err == nil {
		t.Error("expected error for inverted range")
	}
	if _, err := NewTimeRange(time.Time{}, at); err == nil {
		t.Error("expected error for missing start")
	}
	if _, err := NewTimeRange(at, at.Add(time.Hour)); err != nil {
		t.Errorf("valid range: %v", err)
	}
}

func TestDayWindow(t *testing.T) {
	at := time.Date(2026, 3, 2, 15, 42, 7, 0, time.UTC)
	w := DayWindow(at)

	if !w.Start.Equal(time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window start: %v", w.Start)
	}
	if !w.End.Equal(time.Date(2026, 3, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("window end: %v", w.End)
	}
	if w.Duration() != 24*time.Hour {
		t.Errorf("window duration: %v", w.Duration())
	}

	// a meeting spilling past midnight still overlaps the window
	late := mustRange(t, "2026-03-02T23:30:00Z", "2026-03-03T00:30:00Z")
	if !w.Overlaps(late) {
		t.Error("expected overlap with range crossing midnight")
	}
	// the next day's first meeting does not
	next := mustRange(t, "2026-03-03T00:00:00Z", "2026-03-03T01:00:00Z")
	if w.Overlaps(next) {
		t.Error("did not expect overlap with next-day range")
	}
}
