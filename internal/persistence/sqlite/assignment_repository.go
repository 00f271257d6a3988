package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// AssignmentRepository implements persistence.AssignmentRepository using
// SQLite.
type AssignmentRepository struct {
	pool *ConnectionPool
}

// NewAssignmentRepository creates a new SQLite assignment repository.
func NewAssignmentRepository(pool *ConnectionPool) *AssignmentRepository {
	return &AssignmentRepository{pool: pool}
}

const assignmentColumns = `id, student_id, event_id, pickup_location, dropoff_location, notes, attended, created_at, updated_at`

// CreateAssignment inserts a new assignment. The (student_id, event_id)
// unique index mirrors the registry's pair uniqueness.
func (r *AssignmentRepository) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" || assignment.StudentID == "" || assignment.EventID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		assignment.ID,
		assignment.StudentID,
		assignment.EventID,
		assignment.PickupLocation,
		assignment.DropoffLocation,
		assignment.Notes,
		nullBool(assignment.Attended),
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateAssignment updates the details of an existing assignment. The
// student and event links are immutable.
func (r *AssignmentRepository) UpdateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if assignment.ID == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE assignments
		SET pickup_location = ?, dropoff_location = ?, notes = ?, attended = ?, updated_at = ?
		WHERE id = ?
	`,
		assignment.PickupLocation,
		assignment.DropoffLocation,
		assignment.Notes,
		nullBool(assignment.Attended),
		formatTime(time.Now()),
		assignment.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// GetAssignment retrieves an assignment by ID.
func (r *AssignmentRepository) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	row := r.pool.db.QueryRowContext(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = ?`, id)
	return scanAssignment(row)
}

// ListAssignmentsByEvent returns the assignments for an event ordered by
// student ID.
func (r *AssignmentRepository) ListAssignmentsByEvent(ctx context.Context, eventID string) ([]persistence.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE event_id = ? ORDER BY student_id ASC`, eventID)
}

// ListAssignmentsByStudent returns the assignments for a student ordered by
// event ID.
func (r *AssignmentRepository) ListAssignmentsByStudent(ctx context.Context, studentID string) ([]persistence.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE student_id = ? ORDER BY event_id ASC`, studentID)
}

// ListAssignments returns every assignment, for registry rebuilds at
// startup.
func (r *AssignmentRepository) ListAssignments(ctx context.Context) ([]persistence.Assignment, error) {
	return r.list(ctx, `SELECT `+assignmentColumns+` FROM assignments ORDER BY id ASC`)
}

// DeleteAssignment removes an assignment by ID.
func (r *AssignmentRepository) DeleteAssignment(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// DeleteAssignmentsForEvent removes every assignment attached to the event.
func (r *AssignmentRepository) DeleteAssignmentsForEvent(ctx context.Context, eventID string) error {
	_, err := r.pool.db.ExecContext(ctx, "DELETE FROM assignments WHERE event_id = ?", eventID)
	return mapError(err)
}

func (r *AssignmentRepository) list(ctx context.Context, query string, args ...any) ([]persistence.Assignment, error) {
	rows, err := r.pool.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var assignments []persistence.Assignment
	for rows.Next() {
		assignment, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, assignment)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return assignments, nil
}

func scanAssignment(row rowScanner) (persistence.Assignment, error) {
	var assignment persistence.Assignment
	var attended sql.NullBool
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&assignment.ID,
		&assignment.StudentID,
		&assignment.EventID,
		&assignment.PickupLocation,
		&assignment.DropoffLocation,
		&assignment.Notes,
		&attended,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Assignment{}, mapError(err)
	}

	assignment.Attended = boolPtr(attended)
	if assignment.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Assignment{}, err
	}
	if assignment.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Assignment{}, err
	}
	return assignment, nil
}
