package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidWindow is returned when a time window is constructed with
	// an empty or inverted interval.
	ErrInvalidWindow = errors.New("scheduler: invalid time window")
	// ErrEventNotFound is returned when the requested event does not exist.
	ErrEventNotFound = errors.New("scheduler: event not found")
	// ErrDuplicateEvent is returned when an event ID is created twice.
	ErrDuplicateEvent = errors.New("scheduler: event already exists")
	// ErrDuplicateAssignment is returned when a student is assigned to the
	// same event twice. Callers should update the existing assignment.
	ErrDuplicateAssignment = errors.New("scheduler: assignment already exists")
	// ErrAssignmentNotFound is returned when the requested assignment does
	// not exist.
	ErrAssignmentNotFound = errors.New("scheduler: assignment not found")
	// ErrNothingToRollback is returned when Rollback is called for an event
	// with no unreverted mutation.
	ErrNothingToRollback = errors.New("scheduler: nothing to roll back")
)

// ConflictError reports that a candidate booking collides with committed
// bookings for the same resource. The engine never resolves conflicts on its
// own; callers choose a different resource or window and retry.
type ConflictError struct {
	ConflictingEventIDs []string
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	if e == nil || len(e.ConflictingEventIDs) == 0 {
		return "scheduler: booking conflict"
	}
	return fmt.Sprintf("scheduler: booking conflict with events %s", strings.Join(e.ConflictingEventIDs, ", "))
}

// InvalidTransitionError reports a lifecycle transition attempted from a
// state that does not permit it.
type InvalidTransitionError struct {
	From      EventStatus
	Attempted string
}

// Error implements the error interface.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("scheduler: cannot %s an event in status %s", e.Attempted, e.From)
}
