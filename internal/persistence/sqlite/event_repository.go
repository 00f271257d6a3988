package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool *ConnectionPool
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{pool: pool}
}

const eventColumns = `id, kind, date, start_time, end_time, vehicle_id, driver_id, status, cancel_reason,
	route_name, direction, activity_name, destination, organizing_teacher, approved_by, created_at, updated_at`

// CreateEvent inserts a new event row.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now

	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.pool.db.ExecContext(ctx, query,
		event.ID,
		event.Kind,
		event.Date,
		event.StartTime,
		event.EndTime,
		nullString(event.VehicleID),
		nullString(event.DriverID),
		event.Status,
		nullString(event.CancelReason),
		nullString(event.RouteName),
		nullString(event.Direction),
		nullString(event.ActivityName),
		nullString(event.Destination),
		nullString(event.OrganizingTeacher),
		nullString(event.ApprovedBy),
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
	)
	return mapError(err)
}

// UpdateEvent rewrites every mutable column of an existing event.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" {
		return persistence.ErrConstraintViolation
	}

	event.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE events
		SET kind = ?, date = ?, start_time = ?, end_time = ?, vehicle_id = ?, driver_id = ?,
			status = ?, cancel_reason = ?, route_name = ?, direction = ?, activity_name = ?,
			destination = ?, organizing_teacher = ?, approved_by = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.pool.db.ExecContext(ctx, query,
		event.Kind,
		event.Date,
		event.StartTime,
		event.EndTime,
		nullString(event.VehicleID),
		nullString(event.DriverID),
		event.Status,
		nullString(event.CancelReason),
		nullString(event.RouteName),
		nullString(event.Direction),
		nullString(event.ActivityName),
		nullString(event.Destination),
		nullString(event.OrganizingTeacher),
		nullString(event.ApprovedBy),
		formatTime(event.UpdatedAt),
		event.ID,
	)
	if err != nil {
		return mapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// GetEvent retrieves an event by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	row := r.pool.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = ?`, id)
	return scanEvent(row)
}

// ListEvents returns events matching the filter, ordered by date, start
// time, then ID.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events`

	var conditions []string
	var args []any
	if filter.Date != "" {
		conditions = append(conditions, "date = ?")
		args = append(args, filter.Date)
	}
	if filter.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY date ASC, start_time ASC, id ASC"

	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var events []persistence.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return events, nil
}

// DeleteEvent removes an event row. Assignments referencing the event are
// removed in the same transaction.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("DELETE FROM assignments WHERE event_id = ?", id); err != nil {
			return mapError(err)
		}

		result, err := tx.Exec("DELETE FROM events WHERE id = ?", id)
		if err != nil {
			return mapError(err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("sqlite: rows affected: %w", err)
		}
		if affected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var event persistence.Event
	var vehicleID, driverID, cancelReason sql.NullString
	var routeName, direction, activityName, destination, organizingTeacher, approvedBy sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&event.ID,
		&event.Kind,
		&event.Date,
		&event.StartTime,
		&event.EndTime,
		&vehicleID,
		&driverID,
		&event.Status,
		&cancelReason,
		&routeName,
		&direction,
		&activityName,
		&destination,
		&organizingTeacher,
		&approvedBy,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Event{}, mapError(err)
	}

	event.VehicleID = stringPtr(vehicleID)
	event.DriverID = stringPtr(driverID)
	event.CancelReason = stringPtr(cancelReason)
	event.RouteName = stringPtr(routeName)
	event.Direction = stringPtr(direction)
	event.ActivityName = stringPtr(activityName)
	event.Destination = stringPtr(destination)
	event.OrganizingTeacher = stringPtr(organizingTeacher)
	event.ApprovedBy = stringPtr(approvedBy)

	if event.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Event{}, err
	}
	return event, nil
}
