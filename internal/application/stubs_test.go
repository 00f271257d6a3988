package application

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// Map-backed repository stubs. Error fields, when set, are returned by the
// matching write method so tests can force rollback paths.

type eventRepoStub struct {
	events    map[string]persistence.Event
	createErr error
	updateErr error
	deleteErr error
}

func newEventRepoStub() *eventRepoStub {
	return &eventRepoStub{events: make(map[string]persistence.Event)}
}

func (r *eventRepoStub) CreateEvent(ctx context.Context, event persistence.Event) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.events[event.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.events[event.ID] = event
	return nil
}

func (r *eventRepoStub) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.events[event.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.events[event.ID] = event
	return nil
}

func (r *eventRepoStub) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	event, ok := r.events[id]
	if !ok {
		return persistence.Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (r *eventRepoStub) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	out := make([]persistence.Event, 0, len(r.events))
	for _, event := range r.events {
		if filter.Date != "" && event.Date != filter.Date {
			continue
		}
		if filter.Status != "" && event.Status != filter.Status {
			continue
		}
		if filter.Kind != "" && event.Kind != filter.Kind {
			continue
		}
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *eventRepoStub) DeleteEvent(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	if _, ok := r.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.events, id)
	return nil
}

type vehicleRepoStub struct {
	vehicles map[string]persistence.Vehicle
}

func newVehicleRepoStub(vehicles ...persistence.Vehicle) *vehicleRepoStub {
	stub := &vehicleRepoStub{vehicles: make(map[string]persistence.Vehicle)}
	for _, vehicle := range vehicles {
		stub.vehicles[vehicle.ID] = vehicle
	}
	return stub
}

func (r *vehicleRepoStub) CreateVehicle(ctx context.Context, vehicle persistence.Vehicle) error {
	if _, ok := r.vehicles[vehicle.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *vehicleRepoStub) UpdateVehicle(ctx context.Context, vehicle persistence.Vehicle) error {
	if _, ok := r.vehicles[vehicle.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.vehicles[vehicle.ID] = vehicle
	return nil
}

func (r *vehicleRepoStub) GetVehicle(ctx context.Context, id string) (persistence.Vehicle, error) {
	vehicle, ok := r.vehicles[id]
	if !ok {
		return persistence.Vehicle{}, persistence.ErrNotFound
	}
	return vehicle, nil
}

func (r *vehicleRepoStub) ListVehicles(ctx context.Context) ([]persistence.Vehicle, error) {
	out := make([]persistence.Vehicle, 0, len(r.vehicles))
	for _, vehicle := range r.vehicles {
		out = append(out, vehicle)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *vehicleRepoStub) DeleteVehicle(ctx context.Context, id string) error {
	if _, ok := r.vehicles[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.vehicles, id)
	return nil
}

type driverRepoStub struct {
	drivers map[string]persistence.Driver
}

func newDriverRepoStub(drivers ...persistence.Driver) *driverRepoStub {
	stub := &driverRepoStub{drivers: make(map[string]persistence.Driver)}
	for _, driver := range drivers {
		stub.drivers[driver.ID] = driver
	}
	return stub
}

func (r *driverRepoStub) CreateDriver(ctx context.Context, driver persistence.Driver) error {
	if _, ok := r.drivers[driver.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.drivers[driver.ID] = driver
	return nil
}

func (r *driverRepoStub) UpdateDriver(ctx context.Context, driver persistence.Driver) error {
	if _, ok := r.drivers[driver.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.drivers[driver.ID] = driver
	return nil
}

func (r *driverRepoStub) GetDriver(ctx context.Context, id string) (persistence.Driver, error) {
	driver, ok := r.drivers[id]
	if !ok {
		return persistence.Driver{}, persistence.ErrNotFound
	}
	return driver, nil
}

func (r *driverRepoStub) ListDrivers(ctx context.Context) ([]persistence.Driver, error) {
	out := make([]persistence.Driver, 0, len(r.drivers))
	for _, driver := range r.drivers {
		out = append(out, driver)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *driverRepoStub) DeleteDriver(ctx context.Context, id string) error {
	if _, ok := r.drivers[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.drivers, id)
	return nil
}

type studentRepoStub struct {
	students map[string]persistence.Student
}

func newStudentRepoStub(students ...persistence.Student) *studentRepoStub {
	stub := &studentRepoStub{students: make(map[string]persistence.Student)}
	for _, student := range students {
		stub.students[student.ID] = student
	}
	return stub
}

func (r *studentRepoStub) CreateStudent(ctx context.Context, student persistence.Student) error {
	if _, ok := r.students[student.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.students[student.ID] = student
	return nil
}

func (r *studentRepoStub) UpdateStudent(ctx context.Context, student persistence.Student) error {
	if _, ok := r.students[student.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.students[student.ID] = student
	return nil
}

func (r *studentRepoStub) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	student, ok := r.students[id]
	if !ok {
		return persistence.Student{}, persistence.ErrNotFound
	}
	return student, nil
}

func (r *studentRepoStub) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	out := make([]persistence.Student, 0, len(r.students))
	for _, student := range r.students {
		out = append(out, student)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *studentRepoStub) DeleteStudent(ctx context.Context, id string) error {
	if _, ok := r.students[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.students, id)
	return nil
}

type assignmentRepoStub struct {
	assignments map[string]persistence.Assignment
	createErr   error
	updateErr   error
}

func newAssignmentRepoStub() *assignmentRepoStub {
	return &assignmentRepoStub{assignments: make(map[string]persistence.Assignment)}
}

func (r *assignmentRepoStub) CreateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.assignments[assignment.ID]; ok {
		return persistence.ErrDuplicate
	}
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *assignmentRepoStub) UpdateAssignment(ctx context.Context, assignment persistence.Assignment) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	if _, ok := r.assignments[assignment.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *assignmentRepoStub) GetAssignment(ctx context.Context, id string) (persistence.Assignment, error) {
	assignment, ok := r.assignments[id]
	if !ok {
		return persistence.Assignment{}, persistence.ErrNotFound
	}
	return assignment, nil
}

func (r *assignmentRepoStub) ListAssignmentsByEvent(ctx context.Context, eventID string) ([]persistence.Assignment, error) {
	var out []persistence.Assignment
	for _, assignment := range r.assignments {
		if assignment.EventID == eventID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (r *assignmentRepoStub) ListAssignmentsByStudent(ctx context.Context, studentID string) ([]persistence.Assignment, error) {
	var out []persistence.Assignment
	for _, assignment := range r.assignments {
		if assignment.StudentID == studentID {
			out = append(out, assignment)
		}
	}
	return out, nil
}

func (r *assignmentRepoStub) ListAssignments(ctx context.Context) ([]persistence.Assignment, error) {
	out := make([]persistence.Assignment, 0, len(r.assignments))
	for _, assignment := range r.assignments {
		out = append(out, assignment)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *assignmentRepoStub) DeleteAssignment(ctx context.Context, id string) error {
	if _, ok := r.assignments[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.assignments, id)
	return nil
}

func (r *assignmentRepoStub) DeleteAssignmentsForEvent(ctx context.Context, eventID string) error {
	for id, assignment := range r.assignments {
		if assignment.EventID == eventID {
			delete(r.assignments, id)
		}
	}
	return nil
}

type operatorRepoStub struct {
	operators map[string]persistence.Operator
}

func newOperatorRepoStub(operators ...persistence.Operator) *operatorRepoStub {
	stub := &operatorRepoStub{operators: make(map[string]persistence.Operator)}
	for _, operator := range operators {
		stub.operators[operator.ID] = operator
	}
	return stub
}

func (r *operatorRepoStub) CreateOperator(ctx context.Context, operator persistence.Operator) error {
	if _, ok := r.operators[operator.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range r.operators {
		if existing.Email == operator.Email {
			return persistence.ErrDuplicate
		}
	}
	r.operators[operator.ID] = operator
	return nil
}

func (r *operatorRepoStub) UpdateOperator(ctx context.Context, operator persistence.Operator) error {
	if _, ok := r.operators[operator.ID]; !ok {
		return persistence.ErrNotFound
	}
	r.operators[operator.ID] = operator
	return nil
}

func (r *operatorRepoStub) GetOperator(ctx context.Context, id string) (persistence.Operator, error) {
	operator, ok := r.operators[id]
	if !ok {
		return persistence.Operator{}, persistence.ErrNotFound
	}
	return operator, nil
}

func (r *operatorRepoStub) GetOperatorByEmail(ctx context.Context, email string) (persistence.Operator, error) {
	for _, operator := range r.operators {
		if operator.Email == email {
			return operator, nil
		}
	}
	return persistence.Operator{}, persistence.ErrNotFound
}

func (r *operatorRepoStub) ListOperators(ctx context.Context) ([]persistence.Operator, error) {
	out := make([]persistence.Operator, 0, len(r.operators))
	for _, operator := range r.operators {
		out = append(out, operator)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *operatorRepoStub) DeleteOperator(ctx context.Context, id string) error {
	if _, ok := r.operators[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(r.operators, id)
	return nil
}

type sessionRepoStub struct {
	sessions map[string]persistence.Session
}

func newSessionRepoStub() *sessionRepoStub {
	return &sessionRepoStub{sessions: make(map[string]persistence.Session)}
}

func (r *sessionRepoStub) CreateSession(ctx context.Context, session persistence.Session) (persistence.Session, error) {
	if _, ok := r.sessions[session.Token]; ok {
		return persistence.Session{}, persistence.ErrDuplicate
	}
	r.sessions[session.Token] = session
	return session, nil
}

func (r *sessionRepoStub) GetSession(ctx context.Context, token string) (persistence.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	return session, nil
}

func (r *sessionRepoStub) RevokeSession(ctx context.Context, token string, revokedAt time.Time) (persistence.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return persistence.Session{}, persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	r.sessions[token] = session
	return session, nil
}

func (r *sessionRepoStub) DeleteExpiredSessions(ctx context.Context, reference time.Time) error {
	for token, session := range r.sessions {
		if !session.ExpiresAt.After(reference) {
			delete(r.sessions, token)
		}
	}
	return nil
}

// sequentialIDs returns an id generator producing prefix-1, prefix-2, ...
func sequentialIDs(prefix string) func() string {
	var n int
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}
