package booking

import (
	"time"
)

// TimeRange is a half-open interval [Start, End). Two ranges conflict iff they
// share any instant; touching endpoints do not conflict.
type TimeRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewTimeRange validates that end is strictly after start.
func NewTimeRange(start, end time.Time) (TimeRange, error) {
	r := TimeRange{Start: start, End: end}
	if err := r.Validate(); err != nil {
		return TimeRange{}, err
	}
	return r, nil
}

// Validate checks the End > Start invariant.
func (r TimeRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return &ValidationError{Fields: map[string]string{"start_time": "required", "end_time": "required"}}
	}
	if !r.End.After(r.Start) {
		return &ValidationError{Fields: map[string]string{"end_time": "must be after start_time"}}
	}
	return nil
}

// Overlaps reports whether r and o share any instant under half-open
// semantics: r.Start < o.End && r.End > o.Start.
func (r TimeRange) Overlaps(o TimeRange) bool {
	return r.Start.Before(o.End) && r.End.After(o.Start)
}

// Duration returns End - Start.
func (r TimeRange) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// DayWindow returns the [midnight, next midnight) range containing t, in t's
// location. Used by the day-listing query, which reuses the same overlap
// predicate as conflict checking.
func DayWindow(t time.Time) TimeRange {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return TimeRange{Start: start, End: start.AddDate(0, 0, 1)}
}
