package scheduler

import (
	"errors"
	"fmt"
	"testing"
)

func newTestRegistry() *AssignmentRegistry {
	next := 0
	return NewAssignmentRegistry(func() string {
		next++
		return fmt.Sprintf("assignment-%d", next)
	})
}

func TestAssignmentRegistry_AssignRejectsDuplicates(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	first, err := registry.Assign("student-1", "event-a", AssignmentDetails{PickupLocation: "Main St"})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if first.ID == "" {
		t.Fatal("assignment should receive an ID")
	}

	if _, err := registry.Assign("student-1", "event-a", AssignmentDetails{}); !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("expected ErrDuplicateAssignment, got %v", err)
	}

	// Same student on another event, and another student on the same event,
	// are both fine.
	if _, err := registry.Assign("student-1", "event-b", AssignmentDetails{}); err != nil {
		t.Fatalf("assign to second event: %v", err)
	}
	if _, err := registry.Assign("student-2", "event-a", AssignmentDetails{}); err != nil {
		t.Fatalf("assign second student: %v", err)
	}
}

func TestAssignmentRegistry_Update(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	if _, err := registry.Assign("student-1", "event-a", AssignmentDetails{PickupLocation: "Main St"}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	updated, err := registry.Update("student-1", "event-a", AssignmentDetails{PickupLocation: "Oak Ave", Notes: "booster seat"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Details.PickupLocation != "Oak Ave" || updated.Details.Notes != "booster seat" {
		t.Fatalf("details = %+v", updated.Details)
	}

	if _, err := registry.Update("student-9", "event-a", AssignmentDetails{}); !errors.Is(err, ErrAssignmentNotFound) {
		t.Fatalf("expected ErrAssignmentNotFound, got %v", err)
	}
}

func TestAssignmentRegistry_Unassign(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	if _, err := registry.Assign("student-1", "event-a", AssignmentDetails{}); err != nil {
		t.Fatalf("assign: %v", err)
	}

	if !registry.Unassign("student-1", "event-a") {
		t.Fatal("unassign should report true")
	}
	if registry.Unassign("student-1", "event-a") {
		t.Fatal("second unassign should report false")
	}

	// The pair is reusable after removal.
	if _, err := registry.Assign("student-1", "event-a", AssignmentDetails{}); err != nil {
		t.Fatalf("re-assign: %v", err)
	}
}

func TestAssignmentRegistry_ConfirmAttendance(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	assignment, err := registry.Assign("student-1", "event-a", AssignmentDetails{})
	if err != nil {
		t.Fatalf("assign: %v", err)
	}

	if !registry.ConfirmAttendance(assignment.ID, false) {
		t.Fatal("confirm should report true for a known assignment")
	}
	got := registry.ListByEvent("event-a")
	if len(got) != 1 || got[0].Details.Attended == nil || *got[0].Details.Attended {
		t.Fatalf("attendance not recorded: %+v", got)
	}

	if registry.ConfirmAttendance("no-such-assignment", true) {
		t.Fatal("confirm should report false for an unknown ID")
	}
}

func TestAssignmentRegistry_Listings(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	for _, pair := range []struct{ student, event string }{
		{"student-2", "event-a"},
		{"student-1", "event-b"},
		{"student-1", "event-a"},
	} {
		if _, err := registry.Assign(pair.student, pair.event, AssignmentDetails{}); err != nil {
			t.Fatalf("assign %s/%s: %v", pair.student, pair.event, err)
		}
	}

	byEvent := registry.ListByEvent("event-a")
	if len(byEvent) != 2 || byEvent[0].StudentID != "student-1" || byEvent[1].StudentID != "student-2" {
		t.Fatalf("by event = %+v", byEvent)
	}

	byStudent := registry.ListByStudent("student-1")
	if len(byStudent) != 2 || byStudent[0].EventID != "event-a" || byStudent[1].EventID != "event-b" {
		t.Fatalf("by student = %+v", byStudent)
	}
}

func TestAssignmentRegistry_RemoveForEvent(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	for _, student := range []string{"student-1", "student-2", "student-3"} {
		if _, err := registry.Assign(student, "event-a", AssignmentDetails{}); err != nil {
			t.Fatalf("assign %s: %v", student, err)
		}
	}
	if _, err := registry.Assign("student-1", "event-b", AssignmentDetails{}); err != nil {
		t.Fatalf("assign to event-b: %v", err)
	}

	if removed := registry.RemoveForEvent("event-a"); removed != 3 {
		t.Fatalf("removed = %d, want 3", removed)
	}
	if got := registry.ListByEvent("event-a"); len(got) != 0 {
		t.Fatalf("event-a still has %d assignments", len(got))
	}
	if got := registry.ListByStudent("student-1"); len(got) != 1 || got[0].EventID != "event-b" {
		t.Fatalf("student-1 assignments = %+v", got)
	}
}

func TestAssignmentRegistry_Rebuild(t *testing.T) {
	t.Parallel()

	registry := newTestRegistry()
	persisted := []Assignment{
		{ID: "a1", StudentID: "student-1", EventID: "event-a"},
		{ID: "a2", StudentID: "student-2", EventID: "event-a"},
	}
	if err := registry.Rebuild(persisted); err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if got := registry.ListByEvent("event-a"); len(got) != 2 {
		t.Fatalf("rebuilt registry has %d assignments, want 2", len(got))
	}

	corrupt := []Assignment{
		{ID: "a1", StudentID: "student-1", EventID: "event-a"},
		{ID: "a2", StudentID: "student-1", EventID: "event-a"},
	}
	if err := registry.Rebuild(corrupt); !errors.Is(err, ErrDuplicateAssignment) {
		t.Fatalf("expected ErrDuplicateAssignment, got %v", err)
	}
}
