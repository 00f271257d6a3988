package scheduler

import (
	"fmt"
	"sort"
	"sync"
)

// Engine is the single scheduling authority for a deployment. It owns the
// authoritative event statuses and the per-resource ledgers; any persistence
// layer downstream is a mirror, never a source of truth for conflict
// decisions.
//
// One process-wide mutex guards all ledgers. District fleets are small
// enough that per-resource locking buys nothing, and a single lock makes the
// check-then-insert sequence trivially atomic for events touching both a
// vehicle and a driver. Read-only queries take the read lock.
type Engine struct {
	mu      sync.RWMutex
	events  map[string]ScheduledEvent
	ledgers map[ledgerKey]*resourceLedger
	undo    map[string]undoRecord
}

// undoRecord captures the state needed to revert the last committed
// mutation of an event, for the service layer to reconcile failed durable
// writes.
type undoRecord struct {
	created bool
	prev    ScheduledEvent
}

// NewEngine returns an empty engine.
func NewEngine() *Engine {
	return &Engine{
		events:  make(map[string]ScheduledEvent),
		ledgers: make(map[ledgerKey]*resourceLedger),
		undo:    make(map[string]undoRecord),
	}
}

// Reassignment describes the prospective changes applied by Reassign. Nil
// pointer fields keep the current value; the Clear flags detach a resource.
type Reassignment struct {
	Window       *TimeWindow
	VehicleID    *string
	DriverID     *string
	ClearVehicle bool
	ClearDriver  bool
}

// Create validates and commits a new event. Events whose kind requires
// approval enter as Pending, all others as Scheduled; either way assigned
// resources are booked immediately so the slot is held while approval is
// sought. Returns ConflictError when a resource is already booked for an
// overlapping window.
func (e *Engine) Create(event ScheduledEvent) (ScheduledEvent, error) {
	if event.ID == "" {
		return ScheduledEvent{}, fmt.Errorf("scheduler: event ID is required")
	}
	if !event.Kind.Valid() {
		return ScheduledEvent{}, fmt.Errorf("scheduler: unknown event kind %q", event.Kind)
	}
	if _, err := NewTimeWindow(event.Window.Date, event.Window.Start, event.Window.End); err != nil {
		return ScheduledEvent{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.events[event.ID]; exists {
		return ScheduledEvent{}, ErrDuplicateEvent
	}

	if result := e.checkConflictLocked(event, ""); result.HasConflict {
		return ScheduledEvent{}, &ConflictError{ConflictingEventIDs: result.ConflictingEventIDs}
	}

	event = event.clone()
	event.Status = StatusScheduled
	if event.Kind.RequiresApproval() {
		event.Status = StatusPending
	}
	event.CancelReason = ""

	e.insertBookingsLocked(event)
	e.events[event.ID] = event
	e.undo[event.ID] = undoRecord{created: true}

	return event.clone(), nil
}

// Confirm advances a Pending or Scheduled event to Confirmed. Approval for
// pending events is an external precondition; the engine does not model the
// approval workflow. The booking already exists, so the ledger is untouched.
func (e *Engine) Confirm(eventID string) (ScheduledEvent, error) {
	return e.transition(eventID, "confirm", func(event *ScheduledEvent) error {
		if event.Status != StatusPending && event.Status != StatusScheduled {
			return &InvalidTransitionError{From: event.Status, Attempted: "confirm"}
		}
		event.Status = StatusConfirmed
		return nil
	})
}

// Begin marks a Confirmed event as running.
func (e *Engine) Begin(eventID string) (ScheduledEvent, error) {
	return e.transition(eventID, "begin", func(event *ScheduledEvent) error {
		if event.Status != StatusConfirmed {
			return &InvalidTransitionError{From: event.Status, Attempted: "begin"}
		}
		event.Status = StatusInProgress
		return nil
	})
}

// Complete finishes an InProgress event, or a Confirmed one for variants
// with no explicit in-progress phase. The ledger entries are released; the
// event itself remains as the historical record.
func (e *Engine) Complete(eventID string) (ScheduledEvent, error) {
	return e.transition(eventID, "complete", func(event *ScheduledEvent) error {
		if event.Status != StatusInProgress && event.Status != StatusConfirmed {
			return &InvalidTransitionError{From: event.Status, Attempted: "complete"}
		}
		e.removeBookingsLocked(*event)
		event.Status = StatusCompleted
		return nil
	})
}

// Cancel withdraws a Pending, Scheduled, or Confirmed event, freeing its
// resources. The record is retained with the reason; cancellation is not
// deletion.
func (e *Engine) Cancel(eventID, reason string) (ScheduledEvent, error) {
	return e.transition(eventID, "cancel", func(event *ScheduledEvent) error {
		switch event.Status {
		case StatusPending, StatusScheduled, StatusConfirmed:
		default:
			return &InvalidTransitionError{From: event.Status, Attempted: "cancel"}
		}
		e.removeBookingsLocked(*event)
		event.Status = StatusCancelled
		event.CancelReason = reason
		return nil
	})
}

// Reassign applies a new window, vehicle, or driver to an event that has not
// started. The prospective booking is re-validated excluding the event's own
// entries; on conflict the event is left exactly as it was.
func (e *Engine) Reassign(eventID string, change Reassignment) (ScheduledEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.events[eventID]
	if !ok {
		return ScheduledEvent{}, ErrEventNotFound
	}
	switch current.Status {
	case StatusPending, StatusScheduled, StatusConfirmed:
	default:
		return ScheduledEvent{}, &InvalidTransitionError{From: current.Status, Attempted: "reassign"}
	}

	prospective := current.clone()
	if change.Window != nil {
		if _, err := NewTimeWindow(change.Window.Date, change.Window.Start, change.Window.End); err != nil {
			return ScheduledEvent{}, err
		}
		prospective.Window = *change.Window
	}
	if change.ClearVehicle {
		prospective.VehicleID = nil
	} else if change.VehicleID != nil {
		prospective.VehicleID = cloneString(change.VehicleID)
	}
	if change.ClearDriver {
		prospective.DriverID = nil
	} else if change.DriverID != nil {
		prospective.DriverID = cloneString(change.DriverID)
	}

	if result := e.checkConflictLocked(prospective, eventID); result.HasConflict {
		return ScheduledEvent{}, &ConflictError{ConflictingEventIDs: result.ConflictingEventIDs}
	}

	e.removeBookingsLocked(current)
	e.insertBookingsLocked(prospective)
	e.events[eventID] = prospective
	e.undo[eventID] = undoRecord{prev: current}

	return prospective.clone(), nil
}

// Delete removes the event entirely, regardless of status. Distinct from
// Cancel, which retains the record.
func (e *Engine) Delete(eventID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	event, ok := e.events[eventID]
	if !ok {
		return ErrEventNotFound
	}
	e.removeBookingsLocked(event)
	delete(e.events, eventID)
	delete(e.undo, eventID)
	return nil
}

// Rollback reverts the last committed mutation of the event. It exists for
// the wrapping service layer: the in-memory commit happens first and the
// durable write second, so a failed write must be reconciled by undoing the
// commit. Each mutation can be rolled back once.
func (e *Engine) Rollback(eventID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	record, ok := e.undo[eventID]
	if !ok {
		return ErrNothingToRollback
	}
	delete(e.undo, eventID)

	current, ok := e.events[eventID]
	if !ok {
		return ErrEventNotFound
	}

	e.removeBookingsLocked(current)
	if record.created {
		delete(e.events, eventID)
		return nil
	}
	if record.prev.Status.booked() {
		e.insertBookingsLocked(record.prev)
	}
	e.events[eventID] = record.prev
	return nil
}

// RebuildLedger replaces all engine state from persisted events. It is the
// only bulk-load entry point and is called once at startup. Events whose
// status no longer occupies the ledger are kept as records only. Overlapping
// persisted bookings indicate a corrupted store and fail the rebuild.
func (e *Engine) RebuildLedger(events []ScheduledEvent) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.events = make(map[string]ScheduledEvent, len(events))
	e.ledgers = make(map[ledgerKey]*resourceLedger)
	e.undo = make(map[string]undoRecord)

	ordered := make([]ScheduledEvent, len(events))
	for i, event := range events {
		ordered[i] = event.clone()
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Window == ordered[j].Window {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].Window.before(ordered[j].Window)
	})

	for _, event := range ordered {
		if event.ID == "" {
			return fmt.Errorf("scheduler: rebuild: event without ID")
		}
		if _, exists := e.events[event.ID]; exists {
			return fmt.Errorf("scheduler: rebuild: duplicate event %s", event.ID)
		}
		if event.Status.booked() {
			if result := e.checkConflictLocked(event, ""); result.HasConflict {
				return fmt.Errorf("scheduler: rebuild: event %s overlaps committed bookings %v", event.ID, result.ConflictingEventIDs)
			}
			e.insertBookingsLocked(event)
		}
		e.events[event.ID] = event
	}
	return nil
}

// Get returns the event with the given ID.
func (e *Engine) Get(eventID string) (ScheduledEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	event, ok := e.events[eventID]
	if !ok {
		return ScheduledEvent{}, ErrEventNotFound
	}
	return event.clone(), nil
}

// List returns all events ordered by window then ID.
func (e *Engine) List() []ScheduledEvent {
	e.mu.RLock()
	defer e.mu.RUnlock()

	out := make([]ScheduledEvent, 0, len(e.events))
	for _, event := range e.events {
		out = append(out, event.clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Window == out[j].Window {
			return out[i].ID < out[j].ID
		}
		return out[i].Window.before(out[j].Window)
	})
	return out
}

// LedgerEntryCount returns the total number of committed bookings across
// all resources, exposed for metrics.
func (e *Engine) LedgerEntryCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := 0
	for _, ledger := range e.ledgers {
		total += ledger.size()
	}
	return total
}

// transition runs a status mutation under the write lock, recording an undo
// point on success.
func (e *Engine) transition(eventID, name string, apply func(*ScheduledEvent) error) (ScheduledEvent, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	current, ok := e.events[eventID]
	if !ok {
		return ScheduledEvent{}, ErrEventNotFound
	}

	updated := current.clone()
	if err := apply(&updated); err != nil {
		return ScheduledEvent{}, err
	}

	e.events[eventID] = updated
	e.undo[eventID] = undoRecord{prev: current}
	return updated.clone(), nil
}

func (e *Engine) insertBookingsLocked(event ScheduledEvent) {
	for _, key := range event.resources() {
		ledger, ok := e.ledgers[key]
		if !ok {
			ledger = &resourceLedger{}
			e.ledgers[key] = ledger
		}
		ledger.insert(event.ID, event.Window)
	}
}

func (e *Engine) removeBookingsLocked(event ScheduledEvent) {
	for _, key := range event.resources() {
		if ledger, ok := e.ledgers[key]; ok {
			ledger.remove(event.ID)
		}
	}
}
