package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary migrated
// SQLite database for integration-style tests.
type SQLiteHarness struct {
	Pool *sqlite.ConnectionPool

	Events      persistence.EventRepository
	Vehicles    persistence.VehicleRepository
	Drivers     persistence.DriverRepository
	Students    persistence.StudentRepository
	Assignments persistence.AssignmentRepository
	Operators   persistence.OperatorRepository
	Sessions    persistence.SessionRepository

	cleanup func()
}

// Close releases the underlying database. Registered with tb.Cleanup, so
// calling it directly is optional.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens a database under tb.TempDir and migrates it.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "dispatch.db")
	pool, err := sqlite.Open(path)
	if err != nil {
		tb.Fatalf("open database: %v", err)
	}
	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("migrate database: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:        pool,
		Events:      sqlite.NewEventRepository(pool),
		Vehicles:    sqlite.NewVehicleRepository(pool),
		Drivers:     sqlite.NewDriverRepository(pool),
		Students:    sqlite.NewStudentRepository(pool),
		Assignments: sqlite.NewAssignmentRepository(pool),
		Operators:   sqlite.NewOperatorRepository(pool),
		Sessions:    sqlite.NewSessionRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
