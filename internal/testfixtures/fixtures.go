package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

var (
	vehicleCounter  uint64
	driverCounter   uint64
	studentCounter  uint64
	eventCounter    uint64
	operatorCounter uint64
)

var referenceTime = time.Date(2026, time.September, 1, 6, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// VehicleOption configures a generated vehicle fixture.
type VehicleOption func(*persistence.Vehicle)

// NewVehicle returns a deterministic active vehicle with optional overrides.
func NewVehicle(opts ...VehicleOption) persistence.Vehicle {
	idx := atomic.AddUint64(&vehicleCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	vehicle := persistence.Vehicle{
		ID:           fmt.Sprintf("vehicle-%03d", idx),
		FleetNumber:  fmt.Sprintf("%d", 100+idx),
		LicensePlate: fmt.Sprintf("BUS-%03d", idx),
		Capacity:     48,
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&vehicle)
	}
	return vehicle
}

// WithVehicleID overrides the generated vehicle ID.
func WithVehicleID(id string) VehicleOption {
	return func(v *persistence.Vehicle) { v.ID = id }
}

// WithVehicleCapacity overrides the seat count.
func WithVehicleCapacity(capacity int) VehicleOption {
	return func(v *persistence.Vehicle) { v.Capacity = capacity }
}

// WithVehicleActive sets the active flag.
func WithVehicleActive(active bool) VehicleOption {
	return func(v *persistence.Vehicle) { v.Active = active }
}

// DriverOption configures a generated driver fixture.
type DriverOption func(*persistence.Driver)

// NewDriver returns a deterministic active driver with optional overrides.
func NewDriver(opts ...DriverOption) persistence.Driver {
	idx := atomic.AddUint64(&driverCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	driver := persistence.Driver{
		ID:           fmt.Sprintf("driver-%03d", idx),
		Name:         fmt.Sprintf("Driver %03d", idx),
		Phone:        fmt.Sprintf("555-01%02d", idx%100),
		LicenseClass: "B",
		Active:       true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&driver)
	}
	return driver
}

// WithDriverID overrides the generated driver ID.
func WithDriverID(id string) DriverOption {
	return func(d *persistence.Driver) { d.ID = id }
}

// WithDriverActive sets the active flag.
func WithDriverActive(active bool) DriverOption {
	return func(d *persistence.Driver) { d.Active = active }
}

// StudentOption configures a generated student fixture.
type StudentOption func(*persistence.Student)

// NewStudent returns a deterministic active student with optional overrides.
func NewStudent(opts ...StudentOption) persistence.Student {
	idx := atomic.AddUint64(&studentCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	student := persistence.Student{
		ID:            fmt.Sprintf("student-%03d", idx),
		Name:          fmt.Sprintf("Student %03d", idx),
		Grade:         "5",
		GuardianPhone: fmt.Sprintf("555-02%02d", idx%100),
		Active:        true,
		CreatedAt:     created,
		UpdatedAt:     created,
	}
	for _, opt := range opts {
		opt(&student)
	}
	return student
}

// WithStudentID overrides the generated student ID.
func WithStudentID(id string) StudentOption {
	return func(s *persistence.Student) { s.ID = id }
}

// WithStudentActive sets the active flag.
func WithStudentActive(active bool) StudentOption {
	return func(s *persistence.Student) { s.Active = active }
}

// EventOption configures a generated event fixture.
type EventOption func(*persistence.Event)

// NewRegularRun returns a deterministic scheduled regular run with optional
// overrides. Kind-specific columns for other kinds stay nil.
func NewRegularRun(opts ...EventOption) persistence.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	routeName := fmt.Sprintf("Route %03d", idx)
	direction := "morning"
	event := persistence.Event{
		ID:        fmt.Sprintf("event-%03d", idx),
		Kind:      "regular_run",
		Date:      "2026-09-07",
		StartTime: "08:00",
		EndTime:   "09:00",
		Status:    "scheduled",
		RouteName: &routeName,
		Direction: &direction,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&event)
	}
	return event
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(e *persistence.Event) { e.ID = id }
}

// WithEventWindow overrides the date and time-of-day window.
func WithEventWindow(date, start, end string) EventOption {
	return func(e *persistence.Event) {
		e.Date = date
		e.StartTime = start
		e.EndTime = end
	}
}

// WithEventVehicle books the vehicle on the event.
func WithEventVehicle(vehicleID string) EventOption {
	return func(e *persistence.Event) { e.VehicleID = &vehicleID }
}

// WithEventDriver books the driver on the event.
func WithEventDriver(driverID string) EventOption {
	return func(e *persistence.Event) { e.DriverID = &driverID }
}

// WithEventStatus overrides the lifecycle status.
func WithEventStatus(status string) EventOption {
	return func(e *persistence.Event) { e.Status = status }
}

// OperatorOption configures a generated operator fixture.
type OperatorOption func(*persistence.Operator)

// NewOperator returns a deterministic non-admin operator with optional
// overrides. The password hash is a placeholder; tests that authenticate
// must supply a real hash.
func NewOperator(opts ...OperatorOption) persistence.Operator {
	idx := atomic.AddUint64(&operatorCounter, 1)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	operator := persistence.Operator{
		ID:           fmt.Sprintf("operator-%03d", idx),
		Email:        fmt.Sprintf("operator-%03d@district.example", idx),
		DisplayName:  fmt.Sprintf("Operator %03d", idx),
		PasswordHash: fmt.Sprintf("hash-%03d", idx),
		IsAdmin:      false,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
	for _, opt := range opts {
		opt(&operator)
	}
	return operator
}

// WithOperatorEmail overrides the generated email address.
func WithOperatorEmail(email string) OperatorOption {
	return func(o *persistence.Operator) { o.Email = email }
}

// WithOperatorPasswordHash overrides the stored password hash.
func WithOperatorPasswordHash(hash string) OperatorOption {
	return func(o *persistence.Operator) { o.PasswordHash = hash }
}

// WithOperatorAdmin sets the admin flag.
func WithOperatorAdmin(isAdmin bool) OperatorOption {
	return func(o *persistence.Operator) { o.IsAdmin = isAdmin }
}
