package booking

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roomhub/roomhub/internal/models"
)

var (
	// ErrNotFound means the referenced booking or room does not exist.
	ErrNotFound = errors.New("not found")
	// ErrForbidden means the actor lacks the capability for the action.
	// Ownership/role checks happen before state checks, so a misbehaving
	// client sees this rather than InvalidTransition.
	ErrForbidden = errors.New("forbidden")
	// ErrRoomUnavailable means a {pending, approved} booking already overlaps
	// the requested range for that room.
	ErrRoomUnavailable = errors.New("room unavailable for the requested time")
	// ErrStoreContention is the only retryable failure: the store could not
	// commit the mutation+audit unit due to transient contention. No partial
	// state was persisted, so the caller may resubmit the identical intent.
	ErrStoreContention = errors.New("store contention, retry the request")
)

// ValidationError reports malformed or missing input. It is local to the
// request and never partially applied.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// InvalidTransitionError reports an action that is not legal from the
// booking's current status. It names both so the caller can present a precise
// conflict message.
type InvalidTransitionError struct {
	Status models.Status
	Action Action
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot apply %s to a booking in status %q", e.Action, e.Status)
}
