package sqlite

import (
	"context"
	"fmt"
)

// schema is the full dispatch schema. The service owns its database file, so
// a single idempotent DDL pass replaces a versioned migration chain.
const schema = `
CREATE TABLE IF NOT EXISTS events (
	id                 TEXT PRIMARY KEY,
	kind               TEXT NOT NULL CHECK (kind IN ('regular_run', 'activity_trip', 'field_trip')),
	date               TEXT NOT NULL,
	start_time         TEXT NOT NULL,
	end_time           TEXT NOT NULL,
	vehicle_id         TEXT REFERENCES vehicles(id),
	driver_id          TEXT REFERENCES drivers(id),
	status             TEXT NOT NULL CHECK (status IN ('pending', 'scheduled', 'confirmed', 'in_progress', 'completed', 'cancelled')),
	cancel_reason      TEXT,
	route_name         TEXT,
	direction          TEXT,
	activity_name      TEXT,
	destination        TEXT,
	organizing_teacher TEXT,
	approved_by        TEXT,
	created_at         TEXT NOT NULL,
	updated_at         TEXT NOT NULL,
	CHECK (start_time < end_time)
);

CREATE INDEX IF NOT EXISTS idx_events_date ON events(date);
CREATE INDEX IF NOT EXISTS idx_events_vehicle ON events(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_events_driver ON events(driver_id);

CREATE TABLE IF NOT EXISTS vehicles (
	id            TEXT PRIMARY KEY,
	fleet_number  TEXT NOT NULL UNIQUE,
	license_plate TEXT NOT NULL,
	capacity      INTEGER NOT NULL CHECK (capacity > 0),
	active        INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS drivers (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	phone         TEXT NOT NULL DEFAULT '',
	license_class TEXT NOT NULL DEFAULT '',
	active        INTEGER NOT NULL DEFAULT 1,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS students (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	grade          TEXT NOT NULL DEFAULT '',
	guardian_phone TEXT NOT NULL DEFAULT '',
	active         INTEGER NOT NULL DEFAULT 1,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS assignments (
	id               TEXT PRIMARY KEY,
	student_id       TEXT NOT NULL REFERENCES students(id),
	event_id         TEXT NOT NULL REFERENCES events(id),
	pickup_location  TEXT NOT NULL DEFAULT '',
	dropoff_location TEXT NOT NULL DEFAULT '',
	notes            TEXT NOT NULL DEFAULT '',
	attended         INTEGER,
	created_at       TEXT NOT NULL,
	updated_at       TEXT NOT NULL,
	UNIQUE (student_id, event_id)
);

CREATE INDEX IF NOT EXISTS idx_assignments_event ON assignments(event_id);
CREATE INDEX IF NOT EXISTS idx_assignments_student ON assignments(student_id);

CREATE TABLE IF NOT EXISTS operators (
	id            TEXT PRIMARY KEY,
	email         TEXT NOT NULL UNIQUE,
	display_name  TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	is_admin      INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	id          TEXT PRIMARY KEY,
	operator_id TEXT NOT NULL REFERENCES operators(id),
	token       TEXT NOT NULL UNIQUE,
	expires_at  TEXT NOT NULL,
	revoked_at  TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_token ON sessions(token);
`

// Migrate applies the schema. Safe to run on every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	if _, err := cp.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("sqlite: migrate: %w", err)
	}
	return nil
}
