package application

import (
	"context"
	"strings"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// FleetService maintains the vehicle, driver, and student catalogs. The
// catalog exists to back availability pools and referential checks; it is
// deliberately small. Catalog mutations are admin-only.
type FleetService struct {
	vehicles    persistence.VehicleRepository
	drivers     persistence.DriverRepository
	students    persistence.StudentRepository
	idGenerator func() string
}

// NewFleetService wires dependencies for catalog operations.
func NewFleetService(
	vehicles persistence.VehicleRepository,
	drivers persistence.DriverRepository,
	students persistence.StudentRepository,
	idGenerator func() string,
) *FleetService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &FleetService{
		vehicles:    vehicles,
		drivers:     drivers,
		students:    students,
		idGenerator: idGenerator,
	}
}

// CreateVehicle adds a vehicle to the catalog.
func (s *FleetService) CreateVehicle(ctx context.Context, principal Principal, input VehicleInput) (Vehicle, error) {
	if !principal.IsAdmin {
		return Vehicle{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	if strings.TrimSpace(input.FleetNumber) == "" {
		vErr.add("fleet_number", "fleet number is required")
	}
	if input.Capacity <= 0 {
		vErr.add("capacity", "capacity must be positive")
	}
	if vErr.HasErrors() {
		return Vehicle{}, vErr
	}

	record := persistence.Vehicle{
		ID:           s.idGenerator(),
		FleetNumber:  strings.TrimSpace(input.FleetNumber),
		LicensePlate: strings.TrimSpace(input.LicensePlate),
		Capacity:     input.Capacity,
		Active:       input.Active,
	}
	if err := s.vehicles.CreateVehicle(ctx, record); err != nil {
		return Vehicle{}, mapRepoError(err)
	}

	serviceLogger(ctx, "FleetService", "CreateVehicle").Info().
		Str("vehicle_id", record.ID).
		Str("fleet_number", record.FleetNumber).
		Msg("vehicle created")
	return fromPersistenceVehicle(record), nil
}

// UpdateVehicle replaces the mutable fields of a vehicle.
func (s *FleetService) UpdateVehicle(ctx context.Context, principal Principal, vehicleID string, input VehicleInput) (Vehicle, error) {
	if !principal.IsAdmin {
		return Vehicle{}, ErrUnauthorized
	}

	record, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return Vehicle{}, mapRepoError(err)
	}
	record.FleetNumber = strings.TrimSpace(input.FleetNumber)
	record.LicensePlate = strings.TrimSpace(input.LicensePlate)
	record.Capacity = input.Capacity
	record.Active = input.Active
	if err := s.vehicles.UpdateVehicle(ctx, record); err != nil {
		return Vehicle{}, mapRepoError(err)
	}
	return fromPersistenceVehicle(record), nil
}

// GetVehicle returns a vehicle by ID.
func (s *FleetService) GetVehicle(ctx context.Context, vehicleID string) (Vehicle, error) {
	record, err := s.vehicles.GetVehicle(ctx, vehicleID)
	if err != nil {
		return Vehicle{}, mapRepoError(err)
	}
	return fromPersistenceVehicle(record), nil
}

// ListVehicles returns the vehicle catalog.
func (s *FleetService) ListVehicles(ctx context.Context) ([]Vehicle, error) {
	records, err := s.vehicles.ListVehicles(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	vehicles := make([]Vehicle, 0, len(records))
	for _, record := range records {
		vehicles = append(vehicles, fromPersistenceVehicle(record))
	}
	return vehicles, nil
}

// DeleteVehicle removes a vehicle from the catalog. Fails while events still
// reference it.
func (s *FleetService) DeleteVehicle(ctx context.Context, principal Principal, vehicleID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.vehicles.DeleteVehicle(ctx, vehicleID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// CreateDriver adds a driver to the catalog.
func (s *FleetService) CreateDriver(ctx context.Context, principal Principal, input DriverInput) (Driver, error) {
	if !principal.IsAdmin {
		return Driver{}, ErrUnauthorized
	}

	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Driver{}, vErr
	}

	record := persistence.Driver{
		ID:           s.idGenerator(),
		Name:         strings.TrimSpace(input.Name),
		Phone:        strings.TrimSpace(input.Phone),
		LicenseClass: strings.TrimSpace(input.LicenseClass),
		Active:       input.Active,
	}
	if err := s.drivers.CreateDriver(ctx, record); err != nil {
		return Driver{}, mapRepoError(err)
	}

	serviceLogger(ctx, "FleetService", "CreateDriver").Info().
		Str("driver_id", record.ID).
		Msg("driver created")
	return fromPersistenceDriver(record), nil
}

// UpdateDriver replaces the mutable fields of a driver. Setting Active to
// false removes the driver from future candidate pools without touching
// existing bookings.
func (s *FleetService) UpdateDriver(ctx context.Context, principal Principal, driverID string, input DriverInput) (Driver, error) {
	if !principal.IsAdmin {
		return Driver{}, ErrUnauthorized
	}

	record, err := s.drivers.GetDriver(ctx, driverID)
	if err != nil {
		return Driver{}, mapRepoError(err)
	}
	record.Name = strings.TrimSpace(input.Name)
	record.Phone = strings.TrimSpace(input.Phone)
	record.LicenseClass = strings.TrimSpace(input.LicenseClass)
	record.Active = input.Active
	if err := s.drivers.UpdateDriver(ctx, record); err != nil {
		return Driver{}, mapRepoError(err)
	}
	return fromPersistenceDriver(record), nil
}

// GetDriver returns a driver by ID.
func (s *FleetService) GetDriver(ctx context.Context, driverID string) (Driver, error) {
	record, err := s.drivers.GetDriver(ctx, driverID)
	if err != nil {
		return Driver{}, mapRepoError(err)
	}
	return fromPersistenceDriver(record), nil
}

// ListDrivers returns the driver catalog.
func (s *FleetService) ListDrivers(ctx context.Context) ([]Driver, error) {
	records, err := s.drivers.ListDrivers(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	drivers := make([]Driver, 0, len(records))
	for _, record := range records {
		drivers = append(drivers, fromPersistenceDriver(record))
	}
	return drivers, nil
}

// DeleteDriver removes a driver from the catalog.
func (s *FleetService) DeleteDriver(ctx context.Context, principal Principal, driverID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.drivers.DeleteDriver(ctx, driverID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// CreateStudent adds a student to the roster.
func (s *FleetService) CreateStudent(ctx context.Context, principal Principal, input StudentInput) (Student, error) {
	if !principal.IsAdmin {
		return Student{}, ErrUnauthorized
	}

	if strings.TrimSpace(input.Name) == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Student{}, vErr
	}

	record := persistence.Student{
		ID:            s.idGenerator(),
		Name:          strings.TrimSpace(input.Name),
		Grade:         strings.TrimSpace(input.Grade),
		GuardianPhone: strings.TrimSpace(input.GuardianPhone),
		Active:        input.Active,
	}
	if err := s.students.CreateStudent(ctx, record); err != nil {
		return Student{}, mapRepoError(err)
	}
	return fromPersistenceStudent(record), nil
}

// UpdateStudent replaces the mutable fields of a student.
func (s *FleetService) UpdateStudent(ctx context.Context, principal Principal, studentID string, input StudentInput) (Student, error) {
	if !principal.IsAdmin {
		return Student{}, ErrUnauthorized
	}

	record, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, mapRepoError(err)
	}
	record.Name = strings.TrimSpace(input.Name)
	record.Grade = strings.TrimSpace(input.Grade)
	record.GuardianPhone = strings.TrimSpace(input.GuardianPhone)
	record.Active = input.Active
	if err := s.students.UpdateStudent(ctx, record); err != nil {
		return Student{}, mapRepoError(err)
	}
	return fromPersistenceStudent(record), nil
}

// GetStudent returns a student by ID.
func (s *FleetService) GetStudent(ctx context.Context, studentID string) (Student, error) {
	record, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		return Student{}, mapRepoError(err)
	}
	return fromPersistenceStudent(record), nil
}

// ListStudents returns the student roster.
func (s *FleetService) ListStudents(ctx context.Context) ([]Student, error) {
	records, err := s.students.ListStudents(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	students := make([]Student, 0, len(records))
	for _, record := range records {
		students = append(students, fromPersistenceStudent(record))
	}
	return students, nil
}

// DeleteStudent removes a student from the roster.
func (s *FleetService) DeleteStudent(ctx context.Context, principal Principal, studentID string) error {
	if !principal.IsAdmin {
		return ErrUnauthorized
	}
	if err := s.students.DeleteStudent(ctx, studentID); err != nil {
		return mapRepoError(err)
	}
	return nil
}
