package testfixtures

import (
	"context"
	"testing"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

// Stack wires the full application service layer over a SQLite harness with
// a deterministic clock and identifier sequence. It is the fixture for
// integration-style tests that cross the service and persistence layers.
type Stack struct {
	Clock    *Clock
	IDs      *IDGenerator
	Engine   *scheduler.Engine
	Registry *scheduler.AssignmentRegistry
	Store    *SQLiteHarness

	Events       *application.EventService
	Assignments  *application.AssignmentService
	Availability *application.AvailabilityService
	Fleet        *application.FleetService
	Auth         *application.AuthService
}

// NewStack builds a Stack over a fresh temporary database.
func NewStack(tb testing.TB) *Stack {
	tb.Helper()
	return NewStackWithHarness(tb, NewSQLiteHarness(tb))
}

// NewStackWithHarness builds a Stack over an existing harness. Building a
// second stack over the same harness simulates a process restart against
// the surviving database.
func NewStackWithHarness(tb testing.TB, harness *SQLiteHarness) *Stack {
	tb.Helper()

	clock := NewClock(ReferenceTime())
	ids := NewIDGenerator("id")
	engine := scheduler.NewEngine()
	registry := scheduler.NewAssignmentRegistry(ids.NextFunc())

	return &Stack{
		Clock:    clock,
		IDs:      ids,
		Engine:   engine,
		Registry: registry,
		Store:    harness,
		Events: application.NewEventService(
			engine,
			registry,
			harness.Events,
			harness.Vehicles,
			harness.Drivers,
			nil,
			ids.NextFunc(),
			clock.NowFunc(),
		),
		Assignments: application.NewAssignmentService(
			engine,
			registry,
			harness.Assignments,
			harness.Students,
		),
		Availability: application.NewAvailabilityService(engine, harness.Vehicles, harness.Drivers),
		Fleet:        application.NewFleetService(harness.Vehicles, harness.Drivers, harness.Students, ids.NextFunc()),
		Auth: application.NewAuthService(
			harness.Operators,
			harness.Sessions,
			nil,
			ids.NextFunc(),
			clock.NowFunc(),
			0,
		),
	}
}

// Rehydrate rebuilds the engine and assignment registry from the database,
// in the same order the server does at startup.
func (s *Stack) Rehydrate(ctx context.Context) error {
	if err := s.Events.Rehydrate(ctx); err != nil {
		return err
	}
	return s.Assignments.Rehydrate(ctx)
}
