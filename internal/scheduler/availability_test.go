package scheduler

import (
	"reflect"
	"testing"
)

func TestEngine_IsResourceAvailable_TogglesWithLifecycle(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	window := mustWindow(t, "2025-03-10", "08:00", "09:00")

	if !engine.IsResourceAvailable(ResourceDriver, "driver-7", window) {
		t.Fatal("unknown resource should be available")
	}

	if _, err := engine.Create(newTestEvent("event-a", window, nil, strPtr("driver-7"))); err != nil {
		t.Fatalf("create: %v", err)
	}
	if engine.IsResourceAvailable(ResourceDriver, "driver-7", window) {
		t.Fatal("booked driver should be unavailable")
	}
	if !engine.IsResourceAvailable(ResourceDriver, "driver-7", mustWindow(t, "2025-03-10", "09:00", "10:00")) {
		t.Fatal("adjacent window should be available")
	}

	if _, err := engine.Cancel("event-a", "illness"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if !engine.IsResourceAvailable(ResourceDriver, "driver-7", window) {
		t.Fatal("cancellation should free the driver")
	}
}

func TestEngine_ListAvailable(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	window := mustWindow(t, "2025-03-10", "08:00", "09:00")
	if _, err := engine.Create(newTestEvent("event-a", window, strPtr("bus-2"), nil)); err != nil {
		t.Fatalf("create: %v", err)
	}

	pool := []string{"bus-1", "bus-2", "bus-3"}
	got := engine.ListAvailable(ResourceVehicle, pool, window)
	want := []string{"bus-1", "bus-3"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("available = %v, want %v", got, want)
	}

	// Vehicle bookings do not bleed into the driver pool.
	got = engine.ListAvailable(ResourceDriver, []string{"bus-2"}, window)
	if !reflect.DeepEqual(got, []string{"bus-2"}) {
		t.Fatalf("driver pool = %v, want [bus-2]", got)
	}
}

func TestEngine_FindScheduleConflicts(t *testing.T) {
	t.Parallel()

	engine := NewEngine()
	if _, err := engine.Create(newTestEvent("morning", mustWindow(t, "2025-03-10", "07:00", "08:30"), strPtr("bus-1"), nil)); err != nil {
		t.Fatalf("create morning: %v", err)
	}
	// No resources assigned, still a scheduled happening.
	if _, err := engine.Create(newTestEvent("unstaffed", mustWindow(t, "2025-03-10", "08:00", "09:00"), nil, nil)); err != nil {
		t.Fatalf("create unstaffed: %v", err)
	}
	if _, err := engine.Create(newTestEvent("cancelled", mustWindow(t, "2025-03-10", "08:00", "09:00"), nil, nil)); err != nil {
		t.Fatalf("create cancelled: %v", err)
	}
	if _, err := engine.Cancel("cancelled", "rained out"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	overlapping := engine.FindScheduleConflicts(mustWindow(t, "2025-03-10", "08:00", "10:00"), "")
	if len(overlapping) != 2 {
		t.Fatalf("got %d overlapping events, want 2", len(overlapping))
	}
	if overlapping[0].ID != "morning" || overlapping[1].ID != "unstaffed" {
		t.Fatalf("order = [%s %s], want [morning unstaffed]", overlapping[0].ID, overlapping[1].ID)
	}

	overlapping = engine.FindScheduleConflicts(mustWindow(t, "2025-03-10", "08:00", "10:00"), "unstaffed")
	if len(overlapping) != 1 || overlapping[0].ID != "morning" {
		t.Fatalf("with exclusion got %v", overlapping)
	}
}
