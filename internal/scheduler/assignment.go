package scheduler

import (
	"sort"
	"sync"
)

// AssignmentDetails carries the per-student booking information. Attended is
// nil until attendance has been confirmed either way.
type AssignmentDetails struct {
	PickupLocation  string
	DropoffLocation string
	Notes           string
	Attended        *bool
}

// Assignment links a student to a scheduled event.
type Assignment struct {
	ID        string
	StudentID string
	EventID   string
	Details   AssignmentDetails
}

type assignmentPair struct {
	studentID string
	eventID   string
}

// AssignmentRegistry is the many-to-many link between students and events.
// It has no conflict semantics, only uniqueness: a student appears on an
// event at most once, and re-assignment is an update rather than a second
// insert.
type AssignmentRegistry struct {
	mu          sync.RWMutex
	byID        map[string]Assignment
	byPair      map[assignmentPair]string
	idGenerator func() string
}

// NewAssignmentRegistry returns an empty registry. IDs for new assignments
// come from the supplied generator.
func NewAssignmentRegistry(idGenerator func() string) *AssignmentRegistry {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &AssignmentRegistry{
		byID:        make(map[string]Assignment),
		byPair:      make(map[assignmentPair]string),
		idGenerator: idGenerator,
	}
}

// Assign links the student to the event. Fails with ErrDuplicateAssignment
// when the pair already exists; use Update for changes.
func (r *AssignmentRegistry) Assign(studentID, eventID string, details AssignmentDetails) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := assignmentPair{studentID: studentID, eventID: eventID}
	if _, exists := r.byPair[pair]; exists {
		return Assignment{}, ErrDuplicateAssignment
	}

	assignment := Assignment{
		ID:        r.idGenerator(),
		StudentID: studentID,
		EventID:   eventID,
		Details:   cloneDetails(details),
	}
	r.byID[assignment.ID] = assignment
	r.byPair[pair] = assignment.ID
	return cloneAssignment(assignment), nil
}

// Update replaces the details of an existing assignment.
func (r *AssignmentRegistry) Update(studentID, eventID string, details AssignmentDetails) (Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byPair[assignmentPair{studentID: studentID, eventID: eventID}]
	if !ok {
		return Assignment{}, ErrAssignmentNotFound
	}
	assignment := r.byID[id]
	assignment.Details = cloneDetails(details)
	r.byID[id] = assignment
	return cloneAssignment(assignment), nil
}

// Unassign removes the link, reporting false when no such pair existed.
func (r *AssignmentRegistry) Unassign(studentID, eventID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	pair := assignmentPair{studentID: studentID, eventID: eventID}
	id, ok := r.byPair[pair]
	if !ok {
		return false
	}
	delete(r.byPair, pair)
	delete(r.byID, id)
	return true
}

// ConfirmAttendance records whether the student travelled, reporting false
// for an unknown assignment ID.
func (r *AssignmentRegistry) ConfirmAttendance(assignmentID string, attended bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignment, ok := r.byID[assignmentID]
	if !ok {
		return false
	}
	assignment.Details.Attended = &attended
	r.byID[assignmentID] = assignment
	return true
}

// ListByEvent returns the assignments for an event ordered by student ID.
func (r *AssignmentRegistry) ListByEvent(eventID string) []Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Assignment
	for _, assignment := range r.byID {
		if assignment.EventID == eventID {
			out = append(out, cloneAssignment(assignment))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StudentID < out[j].StudentID })
	return out
}

// ListByStudent returns the assignments for a student ordered by event ID.
func (r *AssignmentRegistry) ListByStudent(studentID string) []Assignment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Assignment
	for _, assignment := range r.byID {
		if assignment.StudentID == studentID {
			out = append(out, cloneAssignment(assignment))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EventID < out[j].EventID })
	return out
}

// RemoveForEvent drops every assignment attached to the event. Called when
// an event is deleted outright.
func (r *AssignmentRegistry) RemoveForEvent(eventID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, assignment := range r.byID {
		if assignment.EventID == eventID {
			delete(r.byPair, assignmentPair{studentID: assignment.StudentID, eventID: eventID})
			delete(r.byID, id)
			removed++
		}
	}
	return removed
}

// Rebuild replaces the registry contents from persisted assignments.
func (r *AssignmentRegistry) Rebuild(assignments []Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	byID := make(map[string]Assignment, len(assignments))
	byPair := make(map[assignmentPair]string, len(assignments))
	for _, assignment := range assignments {
		if assignment.ID == "" {
			return ErrAssignmentNotFound
		}
		pair := assignmentPair{studentID: assignment.StudentID, eventID: assignment.EventID}
		if _, exists := byPair[pair]; exists {
			return ErrDuplicateAssignment
		}
		byID[assignment.ID] = cloneAssignment(assignment)
		byPair[pair] = assignment.ID
	}
	r.byID = byID
	r.byPair = byPair
	return nil
}

func cloneDetails(details AssignmentDetails) AssignmentDetails {
	out := details
	if details.Attended != nil {
		attended := *details.Attended
		out.Attended = &attended
	}
	return out
}

func cloneAssignment(assignment Assignment) Assignment {
	out := assignment
	out.Details = cloneDetails(assignment.Details)
	return out
}
