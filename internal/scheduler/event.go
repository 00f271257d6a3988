package scheduler

// EventKind distinguishes the scheduling variants. All variants share the
// same booking model; descriptive fields specific to a variant live on the
// application layer and never influence conflict decisions.
type EventKind string

const (
	// KindRegularRun is a recurring morning or afternoon route run. Each
	// run is its own event, so the AM and PM legs of a route book
	// independently.
	KindRegularRun EventKind = "regular_run"
	// KindActivityTrip is an ad-hoc activity booking.
	KindActivityTrip EventKind = "activity_trip"
	// KindFieldTrip is an athletic or field trip, which requires approval
	// before it is considered scheduled.
	KindFieldTrip EventKind = "field_trip"
)

// Valid reports whether the kind is one of the known variants.
func (k EventKind) Valid() bool {
	switch k {
	case KindRegularRun, KindActivityTrip, KindFieldTrip:
		return true
	}
	return false
}

// RequiresApproval reports whether events of this kind start life pending
// an external approval. The approval workflow itself is outside the engine;
// callers confirm once approval has been granted.
func (k EventKind) RequiresApproval() bool {
	return k == KindFieldTrip
}

// EventStatus tracks an event through its lifecycle.
type EventStatus string

const (
	StatusPending    EventStatus = "pending"
	StatusScheduled  EventStatus = "scheduled"
	StatusConfirmed  EventStatus = "confirmed"
	StatusInProgress EventStatus = "in_progress"
	StatusCompleted  EventStatus = "completed"
	StatusCancelled  EventStatus = "cancelled"
)

// Terminal reports whether no further lifecycle transitions are permitted.
func (s EventStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// booked reports whether events in this status hold ledger entries for
// their assigned resources. Completed events move to history and cancelled
// events are purged, so neither occupies the ledger.
func (s EventStatus) booked() bool {
	switch s {
	case StatusPending, StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// ResourceKind identifies the pool a bookable resource belongs to.
type ResourceKind string

const (
	ResourceVehicle ResourceKind = "vehicle"
	ResourceDriver  ResourceKind = "driver"
)

// Valid reports whether the kind names a known resource pool.
func (k ResourceKind) Valid() bool {
	return k == ResourceVehicle || k == ResourceDriver
}

// ScheduledEvent is the engine's view of a bookable occurrence. Vehicle and
// driver are both optional: an event may be created unassigned and have
// resources attached later through Reassign.
type ScheduledEvent struct {
	ID           string
	Kind         EventKind
	Window       TimeWindow
	VehicleID    *string
	DriverID     *string
	Status       EventStatus
	CancelReason string
}

// HasUnassignedResources reports whether the event still needs a vehicle or
// a driver. Such events never conflict; they are resolved before dispatch.
func (e ScheduledEvent) HasUnassignedResources() bool {
	return e.VehicleID == nil || e.DriverID == nil
}

// resources lists the ledger keys the event books when its status occupies
// the ledger, vehicle first.
func (e ScheduledEvent) resources() []ledgerKey {
	keys := make([]ledgerKey, 0, 2)
	if e.VehicleID != nil {
		keys = append(keys, ledgerKey{kind: ResourceVehicle, id: *e.VehicleID})
	}
	if e.DriverID != nil {
		keys = append(keys, ledgerKey{kind: ResourceDriver, id: *e.DriverID})
	}
	return keys
}

// clone returns a copy that shares no pointers with the original.
func (e ScheduledEvent) clone() ScheduledEvent {
	out := e
	out.VehicleID = cloneString(e.VehicleID)
	out.DriverID = cloneString(e.DriverID)
	return out
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
