package application

import (
	"context"
	"errors"

	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

// AssignmentService wraps the in-memory assignment registry with referential
// checks and the durable mirror.
type AssignmentService struct {
	engine      *scheduler.Engine
	registry    *scheduler.AssignmentRegistry
	assignments persistence.AssignmentRepository
	students    persistence.StudentRepository
}

// NewAssignmentService wires dependencies for assignment operations.
func NewAssignmentService(
	engine *scheduler.Engine,
	registry *scheduler.AssignmentRegistry,
	assignments persistence.AssignmentRepository,
	students persistence.StudentRepository,
) *AssignmentService {
	return &AssignmentService{
		engine:      engine,
		registry:    registry,
		assignments: assignments,
		students:    students,
	}
}

// Rehydrate rebuilds the registry from the durable mirror at startup.
func (s *AssignmentService) Rehydrate(ctx context.Context) error {
	records, err := s.assignments.ListAssignments(ctx)
	if err != nil {
		return mapRepoError(err)
	}

	loaded := make([]scheduler.Assignment, 0, len(records))
	for _, record := range records {
		loaded = append(loaded, scheduler.Assignment{
			ID:        record.ID,
			StudentID: record.StudentID,
			EventID:   record.EventID,
			Details: scheduler.AssignmentDetails{
				PickupLocation:  record.PickupLocation,
				DropoffLocation: record.DropoffLocation,
				Notes:           record.Notes,
				Attended:        record.Attended,
			},
		})
	}
	return s.registry.Rebuild(loaded)
}

// AssignStudent puts a student on an event. The student must exist and be
// active, the event must exist and not be finished or cancelled, and the
// pair must not already be assigned.
func (s *AssignmentService) AssignStudent(ctx context.Context, params AssignStudentParams) (Assignment, error) {
	logger := serviceLogger(ctx, "AssignmentService", "AssignStudent")

	vErr := &ValidationError{}
	student, err := s.students.GetStudent(ctx, params.StudentID)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		vErr.add("student_id", "unknown student")
	case err != nil:
		return Assignment{}, mapRepoError(err)
	case !student.Active:
		vErr.add("student_id", "student is not active")
	}

	event, err := s.engine.Get(params.EventID)
	switch {
	case errors.Is(err, scheduler.ErrEventNotFound):
		vErr.add("event_id", "unknown event")
	case err != nil:
		return Assignment{}, err
	case event.Status.Terminal():
		vErr.add("event_id", "event is no longer open for assignments")
	}
	if vErr.HasErrors() {
		return Assignment{}, vErr
	}

	committed, err := s.registry.Assign(params.StudentID, params.EventID, scheduler.AssignmentDetails{
		PickupLocation:  params.Input.PickupLocation,
		DropoffLocation: params.Input.DropoffLocation,
		Notes:           params.Input.Notes,
	})
	if errors.Is(err, scheduler.ErrDuplicateAssignment) {
		return Assignment{}, ErrAlreadyExists
	}
	if err != nil {
		return Assignment{}, err
	}

	record := persistence.Assignment{
		ID:              committed.ID,
		StudentID:       committed.StudentID,
		EventID:         committed.EventID,
		PickupLocation:  committed.Details.PickupLocation,
		DropoffLocation: committed.Details.DropoffLocation,
		Notes:           committed.Details.Notes,
	}
	if err := s.assignments.CreateAssignment(ctx, record); err != nil {
		s.registry.Unassign(committed.StudentID, committed.EventID)
		return Assignment{}, mapRepoError(err)
	}

	logger.Info().
		Str("assignment_id", committed.ID).
		Str("student_id", committed.StudentID).
		Str("event_id", committed.EventID).
		Msg("student assigned")
	return fromPersistenceAssignment(record), nil
}

// UpdateAssignment replaces the booking details for an existing pair.
func (s *AssignmentService) UpdateAssignment(ctx context.Context, studentID, eventID string, input AssignmentInput) (Assignment, error) {
	committed, err := s.registry.Update(studentID, eventID, scheduler.AssignmentDetails{
		PickupLocation:  input.PickupLocation,
		DropoffLocation: input.DropoffLocation,
		Notes:           input.Notes,
	})
	if errors.Is(err, scheduler.ErrAssignmentNotFound) {
		return Assignment{}, ErrNotFound
	}
	if err != nil {
		return Assignment{}, err
	}

	record, err := s.assignments.GetAssignment(ctx, committed.ID)
	if err != nil {
		return Assignment{}, mapRepoError(err)
	}
	record.PickupLocation = input.PickupLocation
	record.DropoffLocation = input.DropoffLocation
	record.Notes = input.Notes
	if err := s.assignments.UpdateAssignment(ctx, record); err != nil {
		return Assignment{}, mapRepoError(err)
	}
	return fromPersistenceAssignment(record), nil
}

// UnassignStudent removes the student from the event.
func (s *AssignmentService) UnassignStudent(ctx context.Context, studentID, eventID string) error {
	var assignmentID string
	for _, assignment := range s.registry.ListByEvent(eventID) {
		if assignment.StudentID == studentID {
			assignmentID = assignment.ID
			break
		}
	}
	if assignmentID == "" {
		return ErrNotFound
	}

	if !s.registry.Unassign(studentID, eventID) {
		return ErrNotFound
	}
	if err := s.assignments.DeleteAssignment(ctx, assignmentID); err != nil && !errors.Is(err, persistence.ErrNotFound) {
		return mapRepoError(err)
	}

	serviceLogger(ctx, "AssignmentService", "UnassignStudent").Info().
		Str("student_id", studentID).
		Str("event_id", eventID).
		Msg("student unassigned")
	return nil
}

// ConfirmAttendance records whether the student travelled.
func (s *AssignmentService) ConfirmAttendance(ctx context.Context, assignmentID string, attended bool) (Assignment, error) {
	if !s.registry.ConfirmAttendance(assignmentID, attended) {
		return Assignment{}, ErrNotFound
	}

	record, err := s.assignments.GetAssignment(ctx, assignmentID)
	if err != nil {
		return Assignment{}, mapRepoError(err)
	}
	record.Attended = &attended
	if err := s.assignments.UpdateAssignment(ctx, record); err != nil {
		return Assignment{}, mapRepoError(err)
	}
	return fromPersistenceAssignment(record), nil
}

// ListByEvent returns the assignments for an event ordered by student.
func (s *AssignmentService) ListByEvent(eventID string) []Assignment {
	return fromRegistryAssignments(s.registry.ListByEvent(eventID))
}

// ListByStudent returns the assignments for a student ordered by event.
func (s *AssignmentService) ListByStudent(studentID string) []Assignment {
	return fromRegistryAssignments(s.registry.ListByStudent(studentID))
}

func fromRegistryAssignments(assignments []scheduler.Assignment) []Assignment {
	out := make([]Assignment, 0, len(assignments))
	for _, assignment := range assignments {
		out = append(out, Assignment{
			ID:              assignment.ID,
			StudentID:       assignment.StudentID,
			EventID:         assignment.EventID,
			PickupLocation:  assignment.Details.PickupLocation,
			DropoffLocation: assignment.Details.DropoffLocation,
			Notes:           assignment.Details.Notes,
			Attended:        assignment.Details.Attended,
		})
	}
	return out
}
