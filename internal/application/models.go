package application

import (
	"time"

	"github.com/schooltransit/dispatch/internal/scheduler"
)

// Principal represents the authenticated operator invoking a service method.
type Principal struct {
	OperatorID string
	IsAdmin    bool
}

// EventDetails carries the variant-specific descriptive fields of an event.
// The scheduling engine never sees these; they are validated here and
// mirrored to persistence. The interface is sealed: exactly one concrete
// type exists per event kind.
type EventDetails interface {
	Kind() scheduler.EventKind
}

// RegularRunDetails describes a recurring home-to-school run.
type RegularRunDetails struct {
	RouteName string
	Direction string
}

// Kind implements EventDetails.
func (RegularRunDetails) Kind() scheduler.EventKind { return scheduler.KindRegularRun }

// ActivityTripDetails describes transport for an extracurricular activity.
type ActivityTripDetails struct {
	ActivityName string
	Destination  string
}

// Kind implements EventDetails.
func (ActivityTripDetails) Kind() scheduler.EventKind { return scheduler.KindActivityTrip }

// FieldTripDetails describes an approval-gated excursion. ApprovedBy stays
// empty until the administration signs off; Confirm requires it.
type FieldTripDetails struct {
	Destination       string
	OrganizingTeacher string
	ApprovedBy        string
}

// Kind implements EventDetails.
func (FieldTripDetails) Kind() scheduler.EventKind { return scheduler.KindFieldTrip }

// EventInput captures caller provided event fields.
type EventInput struct {
	Kind      scheduler.EventKind
	Date      scheduler.Date
	Start     scheduler.TimeOfDay
	End       scheduler.TimeOfDay
	VehicleID *string
	DriverID  *string
	Details   EventDetails
}

// Event represents a scheduled transportation event exposed by the
// application services.
type Event struct {
	ID           string
	Kind         scheduler.EventKind
	Window       scheduler.TimeWindow
	VehicleID    *string
	DriverID     *string
	Status       scheduler.EventStatus
	CancelReason string
	Details      EventDetails
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CreateEventParams wraps the data required to create an event.
type CreateEventParams struct {
	Principal Principal
	Input     EventInput
}

// CreateRecurringRunParams expands a weekday service pattern into one
// regular run per selected date. Input.Date is ignored; each occurrence
// gets its own date from the pattern.
type CreateRecurringRunParams struct {
	Principal Principal
	Input     EventInput
	Weekdays  []time.Weekday
	From      scheduler.Date
	Until     scheduler.Date
}

// SkippedOccurrence records a service date that could not be booked because
// the requested resources were already taken.
type SkippedOccurrence struct {
	Date                scheduler.Date
	ConflictingEventIDs []string
}

// RecurringRunResult reports the outcome of a recurring run expansion.
type RecurringRunResult struct {
	Created []Event
	Skipped []SkippedOccurrence
}

// ReassignEventParams wraps the data required to move an event to a new
// window, vehicle, or driver. Nil fields keep the current value.
type ReassignEventParams struct {
	Principal    Principal
	EventID      string
	Window       *scheduler.TimeWindow
	VehicleID    *string
	DriverID     *string
	ClearVehicle bool
	ClearDriver  bool
}

// ListEventsParams narrows event listings.
type ListEventsParams struct {
	Date   *scheduler.Date
	Status scheduler.EventStatus
	Kind   scheduler.EventKind
}

// VehicleInput captures caller provided vehicle fields.
type VehicleInput struct {
	FleetNumber  string
	LicensePlate string
	Capacity     int
	Active       bool
}

// Vehicle represents a fleet catalog entry.
type Vehicle struct {
	ID           string
	FleetNumber  string
	LicensePlate string
	Capacity     int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// DriverInput captures caller provided driver fields.
type DriverInput struct {
	Name         string
	Phone        string
	LicenseClass string
	Active       bool
}

// Driver represents a qualified driver in the fleet catalog.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	LicenseClass string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// StudentInput captures caller provided student fields.
type StudentInput struct {
	Name          string
	Grade         string
	GuardianPhone string
	Active        bool
}

// Student represents a roster entry backing assignments.
type Student struct {
	ID            string
	Name          string
	Grade         string
	GuardianPhone string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// AssignmentInput captures the per-student booking details.
type AssignmentInput struct {
	PickupLocation  string
	DropoffLocation string
	Notes           string
}

// Assignment represents a student's place on an event.
type Assignment struct {
	ID              string
	StudentID       string
	EventID         string
	PickupLocation  string
	DropoffLocation string
	Notes           string
	Attended        *bool
}

// AssignStudentParams wraps the data required to put a student on an event.
type AssignStudentParams struct {
	Principal Principal
	EventID   string
	StudentID string
	Input     AssignmentInput
}

// OperatorInput captures caller provided operator fields.
type OperatorInput struct {
	Email       string
	DisplayName string
	Password    string
	IsAdmin     bool
}

// Operator represents a dispatcher account exposed by the application
// services.
type Operator struct {
	ID          string
	Email       string
	DisplayName string
	IsAdmin     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Session represents an authenticated session issued to an operator.
type Session struct {
	ID         string
	OperatorID string
	Token      string
	ExpiresAt  time.Time
	RevokedAt  *time.Time
}

// AuthenticateParams captures the data required to authenticate an operator.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult captures the outcome of a successful authentication.
type AuthenticateResult struct {
	Operator Operator
	Session  Session
}
