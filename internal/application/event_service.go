package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/recurrence"
	"github.com/schooltransit/dispatch/internal/scheduler"
	"github.com/schooltransit/dispatch/internal/telemetry"
)

// EventService orchestrates event operations: validation, the in-memory
// engine commit, and the durable mirror. The engine decides conflicts; the
// repository only records what the engine accepted. Commits happen in-memory
// first and are rolled back when the durable write fails, so the two stay
// consistent without holding the engine lock across I/O.
type EventService struct {
	engine      *scheduler.Engine
	registry    *scheduler.AssignmentRegistry
	events      persistence.EventRepository
	vehicles    persistence.VehicleRepository
	drivers     persistence.DriverRepository
	metrics     *telemetry.Metrics
	idGenerator func() string
	now         func() time.Time
}

// NewEventService wires dependencies for event operations.
func NewEventService(
	engine *scheduler.Engine,
	registry *scheduler.AssignmentRegistry,
	events persistence.EventRepository,
	vehicles persistence.VehicleRepository,
	drivers persistence.DriverRepository,
	metrics *telemetry.Metrics,
	idGenerator func() string,
	now func() time.Time,
) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		engine:      engine,
		registry:    registry,
		events:      events,
		vehicles:    vehicles,
		drivers:     drivers,
		metrics:     metrics,
		idGenerator: idGenerator,
		now:         now,
	}
}

// Rehydrate rebuilds the engine from the durable mirror. Called once at
// startup before the service accepts traffic.
func (s *EventService) Rehydrate(ctx context.Context) error {
	records, err := s.events.ListEvents(ctx, persistence.EventFilter{})
	if err != nil {
		return fmt.Errorf("rehydrate: %w", err)
	}

	loaded := make([]scheduler.ScheduledEvent, 0, len(records))
	for _, record := range records {
		event, err := fromPersistenceEvent(record)
		if err != nil {
			return fmt.Errorf("rehydrate: %w", err)
		}
		loaded = append(loaded, toSchedulerEvent(event))
	}
	if err := s.engine.RebuildLedger(loaded); err != nil {
		return fmt.Errorf("rehydrate: %w", err)
	}

	s.metrics.SetLedgerEntries(s.engine.LedgerEntryCount())
	serviceLogger(ctx, "EventService", "Rehydrate").Info().
		Int("events", len(loaded)).
		Msg("engine rebuilt from store")
	return nil
}

// CreateEvent validates the input, commits the booking through the engine,
// and mirrors it to the repository.
func (s *EventService) CreateEvent(ctx context.Context, params CreateEventParams) (Event, error) {
	logger := serviceLogger(ctx, "EventService", "CreateEvent")

	input := params.Input
	if err := s.validateEventInput(ctx, input); err != nil {
		return Event{}, err
	}

	window, err := scheduler.NewTimeWindow(input.Date, input.Start, input.End)
	if err != nil {
		return Event{}, err
	}

	now := s.now()
	event := Event{
		ID:        s.idGenerator(),
		Kind:      input.Kind,
		Window:    window,
		VehicleID: input.VehicleID,
		DriverID:  input.DriverID,
		Details:   input.Details,
		CreatedAt: now,
		UpdatedAt: now,
	}

	committed, err := s.engine.Create(toSchedulerEvent(event))
	s.metrics.RecordConflictCheck(isConflict(err))
	if err != nil {
		logger.Warn().Err(err).Str("error_kind", ErrorKind(err)).Msg("create rejected")
		return Event{}, err
	}
	event.Status = committed.Status

	if err := s.events.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		if rbErr := s.engine.Rollback(event.ID); rbErr != nil {
			logger.Error().Err(rbErr).Str("event_id", event.ID).Msg("rollback after failed write")
		}
		return Event{}, mapRepoError(err)
	}

	s.metrics.RecordTransition("create")
	s.metrics.SetLedgerEntries(s.engine.LedgerEntryCount())
	logger.Info().
		Str("event_id", event.ID).
		Str("kind", string(event.Kind)).
		Str("status", string(event.Status)).
		Msg("event created")
	return event, nil
}

// CreateRecurringRun creates one regular run per date selected by the
// weekday pattern. Dates whose resources are already booked are skipped and
// reported instead of failing the whole expansion; any other error aborts
// it, leaving the occurrences created so far in place.
func (s *EventService) CreateRecurringRun(ctx context.Context, params CreateRecurringRunParams) (RecurringRunResult, error) {
	logger := serviceLogger(ctx, "EventService", "CreateRecurringRun")

	if params.Input.Kind != scheduler.KindRegularRun {
		return RecurringRunResult{}, &ValidationError{FieldErrors: map[string]string{
			"kind": "recurring creation is limited to regular runs",
		}}
	}

	dates, err := recurrence.Expand(recurrence.Pattern{
		Weekdays: params.Weekdays,
		From:     params.From,
		Until:    params.Until,
	})
	if err != nil {
		switch {
		case errors.Is(err, recurrence.ErrEmptyPattern):
			return RecurringRunResult{}, &ValidationError{FieldErrors: map[string]string{
				"weekdays": "at least one weekday is required",
			}}
		case errors.Is(err, recurrence.ErrInvalidRange):
			return RecurringRunResult{}, &ValidationError{FieldErrors: map[string]string{
				"from": "from must be a date on or before until",
			}}
		case errors.Is(err, recurrence.ErrRangeTooWide):
			return RecurringRunResult{}, &ValidationError{FieldErrors: map[string]string{
				"until": "range must not exceed one year",
			}}
		}
		return RecurringRunResult{}, err
	}

	var result RecurringRunResult
	for _, date := range dates {
		input := params.Input
		input.Date = date

		event, err := s.CreateEvent(ctx, CreateEventParams{Principal: params.Principal, Input: input})
		if err != nil {
			var conflict *scheduler.ConflictError
			if errors.As(err, &conflict) {
				result.Skipped = append(result.Skipped, SkippedOccurrence{
					Date:                date,
					ConflictingEventIDs: append([]string(nil), conflict.ConflictingEventIDs...),
				})
				continue
			}
			return RecurringRunResult{}, err
		}
		result.Created = append(result.Created, event)
	}

	logger.Info().
		Int("created", len(result.Created)).
		Int("skipped", len(result.Skipped)).
		Msg("recurring run expanded")
	return result, nil
}

// GetEvent returns a single event with its descriptive details.
func (s *EventService) GetEvent(ctx context.Context, eventID string) (Event, error) {
	record, err := s.events.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, mapRepoError(err)
	}
	return fromPersistenceEvent(record)
}

// ListEvents returns events matching the filter, ordered by window then ID.
func (s *EventService) ListEvents(ctx context.Context, params ListEventsParams) ([]Event, error) {
	filter := persistence.EventFilter{
		Status: string(params.Status),
		Kind:   string(params.Kind),
	}
	if params.Date != nil {
		filter.Date = params.Date.String()
	}

	records, err := s.events.ListEvents(ctx, filter)
	if err != nil {
		return nil, mapRepoError(err)
	}

	events := make([]Event, 0, len(records))
	for _, record := range records {
		event, err := fromPersistenceEvent(record)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

// ConfirmEvent advances an event to Confirmed. Field trips must carry an
// approval before they can be confirmed.
func (s *EventService) ConfirmEvent(ctx context.Context, principal Principal, eventID string) (Event, error) {
	current, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	if details, ok := current.Details.(FieldTripDetails); ok && details.ApprovedBy == "" {
		vErr := &ValidationError{}
		vErr.add("approved_by", "field trip has not been approved")
		return Event{}, vErr
	}

	return s.applyTransition(ctx, eventID, "confirm", func() (scheduler.ScheduledEvent, error) {
		return s.engine.Confirm(eventID)
	})
}

// BeginEvent marks a confirmed event as running.
func (s *EventService) BeginEvent(ctx context.Context, principal Principal, eventID string) (Event, error) {
	return s.applyTransition(ctx, eventID, "begin", func() (scheduler.ScheduledEvent, error) {
		return s.engine.Begin(eventID)
	})
}

// CompleteEvent finishes an event and releases its bookings.
func (s *EventService) CompleteEvent(ctx context.Context, principal Principal, eventID string) (Event, error) {
	return s.applyTransition(ctx, eventID, "complete", func() (scheduler.ScheduledEvent, error) {
		return s.engine.Complete(eventID)
	})
}

// CancelEvent withdraws an event, keeping the record with the reason.
func (s *EventService) CancelEvent(ctx context.Context, principal Principal, eventID, reason string) (Event, error) {
	return s.applyTransition(ctx, eventID, "cancel", func() (scheduler.ScheduledEvent, error) {
		return s.engine.Cancel(eventID, strings.TrimSpace(reason))
	})
}

// ApproveFieldTrip records the administrative sign-off on a pending field
// trip. Only admins approve.
func (s *EventService) ApproveFieldTrip(ctx context.Context, principal Principal, eventID, approvedBy string) (Event, error) {
	if !principal.IsAdmin {
		return Event{}, ErrUnauthorized
	}
	approvedBy = strings.TrimSpace(approvedBy)
	if approvedBy == "" {
		vErr := &ValidationError{}
		vErr.add("approved_by", "approver is required")
		return Event{}, vErr
	}

	current, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return Event{}, err
	}
	details, ok := current.Details.(FieldTripDetails)
	if !ok {
		vErr := &ValidationError{}
		vErr.add("kind", "only field trips carry approvals")
		return Event{}, vErr
	}

	details.ApprovedBy = approvedBy
	current.Details = details
	if err := s.events.UpdateEvent(ctx, toPersistenceEvent(current)); err != nil {
		return Event{}, mapRepoError(err)
	}

	serviceLogger(ctx, "EventService", "ApproveFieldTrip").Info().
		Str("event_id", eventID).
		Str("approved_by", approvedBy).
		Msg("field trip approved")
	return current, nil
}

// ReassignEvent moves an event to a new window, vehicle, or driver. The
// engine re-validates the prospective booking excluding the event's own
// entries; on conflict nothing changes.
func (s *EventService) ReassignEvent(ctx context.Context, params ReassignEventParams) (Event, error) {
	logger := serviceLogger(ctx, "EventService", "ReassignEvent")

	if err := s.validateResources(ctx, params.VehicleID, params.DriverID); err != nil {
		return Event{}, err
	}

	committed, err := s.engine.Reassign(params.EventID, scheduler.Reassignment{
		Window:       params.Window,
		VehicleID:    params.VehicleID,
		DriverID:     params.DriverID,
		ClearVehicle: params.ClearVehicle,
		ClearDriver:  params.ClearDriver,
	})
	s.metrics.RecordConflictCheck(isConflict(err))
	if err != nil {
		if errors.Is(err, scheduler.ErrEventNotFound) {
			return Event{}, ErrNotFound
		}
		logger.Warn().Err(err).Str("error_kind", ErrorKind(err)).Str("event_id", params.EventID).Msg("reassign rejected")
		return Event{}, err
	}

	event, err := s.mirrorCommitted(ctx, committed)
	if err != nil {
		return Event{}, err
	}

	s.metrics.RecordTransition("reassign")
	s.metrics.SetLedgerEntries(s.engine.LedgerEntryCount())
	logger.Info().Str("event_id", event.ID).Msg("event reassigned")
	return event, nil
}

// DeleteEvent removes an event and its assignments entirely. Cancelled and
// completed events stay deletable for corrections.
func (s *EventService) DeleteEvent(ctx context.Context, principal Principal, eventID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}

	if err := s.events.DeleteEvent(ctx, eventID); err != nil {
		return mapRepoError(err)
	}
	if err := s.engine.Delete(eventID); err != nil && !errors.Is(err, scheduler.ErrEventNotFound) {
		return err
	}
	if s.registry != nil {
		s.registry.RemoveForEvent(eventID)
	}

	s.metrics.SetLedgerEntries(s.engine.LedgerEntryCount())
	serviceLogger(ctx, "EventService", "DeleteEvent").Info().
		Str("event_id", eventID).
		Msg("event deleted")
	return nil
}

// applyTransition runs an engine transition and mirrors the result,
// rolling the engine back when the durable write fails.
func (s *EventService) applyTransition(ctx context.Context, eventID, name string, op func() (scheduler.ScheduledEvent, error)) (Event, error) {
	logger := serviceLogger(ctx, "EventService", name)

	committed, err := op()
	if err != nil {
		if errors.Is(err, scheduler.ErrEventNotFound) {
			return Event{}, ErrNotFound
		}
		logger.Warn().Err(err).Str("error_kind", ErrorKind(err)).Str("event_id", eventID).Msg("transition rejected")
		return Event{}, err
	}

	event, err := s.mirrorCommitted(ctx, committed)
	if err != nil {
		return Event{}, err
	}

	s.metrics.RecordTransition(name)
	s.metrics.SetLedgerEntries(s.engine.LedgerEntryCount())
	logger.Info().
		Str("event_id", eventID).
		Str("status", string(committed.Status)).
		Msg("transition applied")
	return event, nil
}

// mirrorCommitted writes the engine's committed state to the repository,
// undoing the in-memory commit when the write fails.
func (s *EventService) mirrorCommitted(ctx context.Context, committed scheduler.ScheduledEvent) (Event, error) {
	record, err := s.events.GetEvent(ctx, committed.ID)
	if err != nil {
		s.rollback(ctx, committed.ID)
		return Event{}, mapRepoError(err)
	}
	event, err := fromPersistenceEvent(record)
	if err != nil {
		s.rollback(ctx, committed.ID)
		return Event{}, err
	}

	event.Window = committed.Window
	event.VehicleID = committed.VehicleID
	event.DriverID = committed.DriverID
	event.Status = committed.Status
	event.CancelReason = committed.CancelReason
	event.UpdatedAt = s.now()

	if err := s.events.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		s.rollback(ctx, committed.ID)
		return Event{}, mapRepoError(err)
	}
	return event, nil
}

func (s *EventService) rollback(ctx context.Context, eventID string) {
	if err := s.engine.Rollback(eventID); err != nil {
		serviceLogger(ctx, "EventService", "Rollback").Error().
			Err(err).
			Str("event_id", eventID).
			Msg("rollback after failed write")
	}
}

func (s *EventService) validateEventInput(ctx context.Context, input EventInput) error {
	vErr := &ValidationError{}

	if !input.Kind.Valid() {
		vErr.add("kind", "unknown event kind")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if input.End <= input.Start {
		vErr.add("window", "end must be after start")
	}
	if input.Details != nil && input.Kind.Valid() && input.Details.Kind() != input.Kind {
		vErr.add("details", "details do not match event kind")
	}
	if vErr.HasErrors() {
		return vErr
	}

	return s.validateResources(ctx, input.VehicleID, input.DriverID)
}

// validateResources checks that referenced fleet resources exist and are
// active. Availability is the engine's concern, eligibility is ours.
func (s *EventService) validateResources(ctx context.Context, vehicleID, driverID *string) error {
	vErr := &ValidationError{}

	if vehicleID != nil {
		vehicle, err := s.vehicles.GetVehicle(ctx, *vehicleID)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			vErr.add("vehicle_id", "unknown vehicle")
		case err != nil:
			return mapRepoError(err)
		case !vehicle.Active:
			vErr.add("vehicle_id", "vehicle is not active")
		}
	}
	if driverID != nil {
		driver, err := s.drivers.GetDriver(ctx, *driverID)
		switch {
		case errors.Is(err, persistence.ErrNotFound):
			vErr.add("driver_id", "unknown driver")
		case err != nil:
			return mapRepoError(err)
		case !driver.Active:
			vErr.add("driver_id", "driver is not active")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func isConflict(err error) bool {
	var conflict *scheduler.ConflictError
	return errors.As(err, &conflict)
}

func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return ErrAlreadyExists
	default:
		return err
	}
}
