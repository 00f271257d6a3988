package application

import (
	"context"

	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

// AvailabilityService answers free/busy questions by combining the fleet
// catalog (who is eligible) with the engine's ledgers (who is booked).
type AvailabilityService struct {
	engine   *scheduler.Engine
	vehicles persistence.VehicleRepository
	drivers  persistence.DriverRepository
}

// NewAvailabilityService wires dependencies for availability queries.
func NewAvailabilityService(engine *scheduler.Engine, vehicles persistence.VehicleRepository, drivers persistence.DriverRepository) *AvailabilityService {
	return &AvailabilityService{engine: engine, vehicles: vehicles, drivers: drivers}
}

// CheckWindow reports whether a specific resource is free in the window.
func (s *AvailabilityService) CheckWindow(kind scheduler.ResourceKind, resourceID string, window scheduler.TimeWindow) bool {
	return s.engine.IsResourceAvailable(kind, resourceID, window)
}

// ListAvailableVehicles returns the active vehicles free in the window.
func (s *AvailabilityService) ListAvailableVehicles(ctx context.Context, window scheduler.TimeWindow) ([]Vehicle, error) {
	records, err := s.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	byID := make(map[string]persistence.Vehicle, len(records))
	candidates := make([]string, 0, len(records))
	for _, record := range records {
		if !record.Active {
			continue
		}
		byID[record.ID] = record
		candidates = append(candidates, record.ID)
	}

	free := s.engine.ListAvailable(scheduler.ResourceVehicle, candidates, window)
	vehicles := make([]Vehicle, 0, len(free))
	for _, id := range free {
		vehicles = append(vehicles, fromPersistenceVehicle(byID[id]))
	}
	return vehicles, nil
}

// ListAvailableDrivers returns the active drivers free in the window.
func (s *AvailabilityService) ListAvailableDrivers(ctx context.Context, window scheduler.TimeWindow) ([]Driver, error) {
	records, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}

	byID := make(map[string]persistence.Driver, len(records))
	candidates := make([]string, 0, len(records))
	for _, record := range records {
		if !record.Active {
			continue
		}
		byID[record.ID] = record
		candidates = append(candidates, record.ID)
	}

	free := s.engine.ListAvailable(scheduler.ResourceDriver, candidates, window)
	drivers := make([]Driver, 0, len(free))
	for _, id := range free {
		drivers = append(drivers, fromPersistenceDriver(byID[id]))
	}
	return drivers, nil
}

// FindScheduleConflicts returns every non-cancelled event overlapping the
// window, for the dispatcher's day view.
func (s *AvailabilityService) FindScheduleConflicts(window scheduler.TimeWindow, excludeEventID string) []scheduler.ScheduledEvent {
	return s.engine.FindScheduleConflicts(window, excludeEventID)
}
