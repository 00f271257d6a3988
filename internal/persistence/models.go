package persistence

import "time"

// Event is the persisted mirror of a scheduled transportation event. Dates
// are stored as YYYY-MM-DD and times of day as HH:MM; the application layer
// owns the conversion to and from domain types. Variant-specific columns are
// nullable and populated according to Kind.
type Event struct {
	ID           string
	Kind         string
	Date         string
	StartTime    string
	EndTime      string
	VehicleID    *string
	DriverID     *string
	Status       string
	CancelReason *string

	// regular_run
	RouteName *string
	Direction *string

	// activity_trip and field_trip
	ActivityName *string
	Destination  *string

	// field_trip
	OrganizingTeacher *string
	ApprovedBy        *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Vehicle is a fleet catalog entry.
type Vehicle struct {
	ID           string
	FleetNumber  string
	LicensePlate string
	Capacity     int
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Driver is a fleet catalog entry for a qualified driver.
type Driver struct {
	ID           string
	Name         string
	Phone        string
	LicenseClass string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Student is the minimal roster entry needed to back assignments.
type Student struct {
	ID            string
	Name          string
	Grade         string
	GuardianPhone string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Assignment links a student to an event. Attended is nil until attendance
// has been confirmed either way.
type Assignment struct {
	ID              string
	StudentID       string
	EventID         string
	PickupLocation  string
	DropoffLocation string
	Notes           string
	Attended        *bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Operator is a dispatcher account allowed to mutate the schedule.
type Operator struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is an authentication session persisted for an operator.
type Session struct {
	ID         string
	OperatorID string
	Token      string
	ExpiresAt  time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
	RevokedAt  *time.Time
}
