package persistence

import (
	"context"
	"time"
)

// EventFilter narrows event queries. Zero fields match everything.
type EventFilter struct {
	Date   string
	Status string
	Kind   string
}

// EventRepository mirrors the engine's committed events. It performs no
// conflict checking; the scheduling engine is the only conflict authority.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// VehicleRepository exposes CRUD operations for the vehicle catalog.
type VehicleRepository interface {
	CreateVehicle(ctx context.Context, vehicle Vehicle) error
	UpdateVehicle(ctx context.Context, vehicle Vehicle) error
	GetVehicle(ctx context.Context, id string) (Vehicle, error)
	ListVehicles(ctx context.Context) ([]Vehicle, error)
	DeleteVehicle(ctx context.Context, id string) error
}

// DriverRepository exposes CRUD operations for the driver catalog.
type DriverRepository interface {
	CreateDriver(ctx context.Context, driver Driver) error
	UpdateDriver(ctx context.Context, driver Driver) error
	GetDriver(ctx context.Context, id string) (Driver, error)
	ListDrivers(ctx context.Context) ([]Driver, error)
	DeleteDriver(ctx context.Context, id string) error
}

// StudentRepository exposes CRUD operations for the student roster.
type StudentRepository interface {
	CreateStudent(ctx context.Context, student Student) error
	UpdateStudent(ctx context.Context, student Student) error
	GetStudent(ctx context.Context, id string) (Student, error)
	ListStudents(ctx context.Context) ([]Student, error)
	DeleteStudent(ctx context.Context, id string) error
}

// AssignmentRepository mirrors the in-memory assignment registry.
type AssignmentRepository interface {
	CreateAssignment(ctx context.Context, assignment Assignment) error
	UpdateAssignment(ctx context.Context, assignment Assignment) error
	GetAssignment(ctx context.Context, id string) (Assignment, error)
	ListAssignmentsByEvent(ctx context.Context, eventID string) ([]Assignment, error)
	ListAssignmentsByStudent(ctx context.Context, studentID string) ([]Assignment, error)
	ListAssignments(ctx context.Context) ([]Assignment, error)
	DeleteAssignment(ctx context.Context, id string) error
	DeleteAssignmentsForEvent(ctx context.Context, eventID string) error
}

// OperatorRepository stores dispatcher accounts.
type OperatorRepository interface {
	CreateOperator(ctx context.Context, operator Operator) error
	UpdateOperator(ctx context.Context, operator Operator) error
	GetOperator(ctx context.Context, id string) (Operator, error)
	GetOperatorByEmail(ctx context.Context, email string) (Operator, error)
	ListOperators(ctx context.Context) ([]Operator, error)
	DeleteOperator(ctx context.Context, id string) error
}

// SessionRepository stores authentication session state.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, token string) (Session, error)
	RevokeSession(ctx context.Context, token string, revokedAt time.Time) (Session, error)
	DeleteExpiredSessions(ctx context.Context, reference time.Time) error
}
