package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// VehicleRepository implements persistence.VehicleRepository using SQLite.
type VehicleRepository struct {
	pool *ConnectionPool
}

// NewVehicleRepository creates a new SQLite vehicle repository.
func NewVehicleRepository(pool *ConnectionPool) *VehicleRepository {
	return &VehicleRepository{pool: pool}
}

// CreateVehicle inserts a new vehicle.
func (r *VehicleRepository) CreateVehicle(ctx context.Context, vehicle persistence.Vehicle) error {
	if vehicle.ID == "" || vehicle.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO vehicles (id, fleet_number, license_plate, capacity, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		vehicle.ID,
		vehicle.FleetNumber,
		vehicle.LicensePlate,
		vehicle.Capacity,
		vehicle.Active,
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateVehicle updates an existing vehicle.
func (r *VehicleRepository) UpdateVehicle(ctx context.Context, vehicle persistence.Vehicle) error {
	if vehicle.ID == "" || vehicle.Capacity <= 0 {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE vehicles
		SET fleet_number = ?, license_plate = ?, capacity = ?, active = ?, updated_at = ?
		WHERE id = ?
	`,
		vehicle.FleetNumber,
		vehicle.LicensePlate,
		vehicle.Capacity,
		vehicle.Active,
		formatTime(time.Now()),
		vehicle.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// GetVehicle retrieves a vehicle by ID.
func (r *VehicleRepository) GetVehicle(ctx context.Context, id string) (persistence.Vehicle, error) {
	var vehicle persistence.Vehicle
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, fleet_number, license_plate, capacity, active, created_at, updated_at
		FROM vehicles WHERE id = ?
	`, id).Scan(
		&vehicle.ID,
		&vehicle.FleetNumber,
		&vehicle.LicensePlate,
		&vehicle.Capacity,
		&vehicle.Active,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Vehicle{}, mapError(err)
	}
	if vehicle.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Vehicle{}, err
	}
	if vehicle.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Vehicle{}, err
	}
	return vehicle, nil
}

// ListVehicles returns all vehicles ordered by fleet number.
func (r *VehicleRepository) ListVehicles(ctx context.Context) ([]persistence.Vehicle, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, fleet_number, license_plate, capacity, active, created_at, updated_at
		FROM vehicles ORDER BY fleet_number ASC, id ASC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var vehicles []persistence.Vehicle
	for rows.Next() {
		var vehicle persistence.Vehicle
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&vehicle.ID, &vehicle.FleetNumber, &vehicle.LicensePlate, &vehicle.Capacity, &vehicle.Active, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapError(err)
		}
		if vehicle.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		if vehicle.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return vehicles, nil
}

// DeleteVehicle removes a vehicle by ID.
func (r *VehicleRepository) DeleteVehicle(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM vehicles WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// DriverRepository implements persistence.DriverRepository using SQLite.
type DriverRepository struct {
	pool *ConnectionPool
}

// NewDriverRepository creates a new SQLite driver repository.
func NewDriverRepository(pool *ConnectionPool) *DriverRepository {
	return &DriverRepository{pool: pool}
}

// CreateDriver inserts a new driver.
func (r *DriverRepository) CreateDriver(ctx context.Context, driver persistence.Driver) error {
	if driver.ID == "" || driver.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO drivers (id, name, phone, license_class, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		driver.ID,
		driver.Name,
		driver.Phone,
		driver.LicenseClass,
		driver.Active,
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateDriver updates an existing driver.
func (r *DriverRepository) UpdateDriver(ctx context.Context, driver persistence.Driver) error {
	if driver.ID == "" || driver.Name == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE drivers
		SET name = ?, phone = ?, license_class = ?, active = ?, updated_at = ?
		WHERE id = ?
	`,
		driver.Name,
		driver.Phone,
		driver.LicenseClass,
		driver.Active,
		formatTime(time.Now()),
		driver.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// GetDriver retrieves a driver by ID.
func (r *DriverRepository) GetDriver(ctx context.Context, id string) (persistence.Driver, error) {
	var driver persistence.Driver
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, phone, license_class, active, created_at, updated_at
		FROM drivers WHERE id = ?
	`, id).Scan(
		&driver.ID,
		&driver.Name,
		&driver.Phone,
		&driver.LicenseClass,
		&driver.Active,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Driver{}, mapError(err)
	}
	if driver.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Driver{}, err
	}
	if driver.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Driver{}, err
	}
	return driver, nil
}

// ListDrivers returns all drivers ordered by name.
func (r *DriverRepository) ListDrivers(ctx context.Context) ([]persistence.Driver, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, phone, license_class, active, created_at, updated_at
		FROM drivers ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var drivers []persistence.Driver
	for rows.Next() {
		var driver persistence.Driver
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&driver.ID, &driver.Name, &driver.Phone, &driver.LicenseClass, &driver.Active, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapError(err)
		}
		if driver.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		if driver.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
			return nil, err
		}
		drivers = append(drivers, driver)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return drivers, nil
}

// DeleteDriver removes a driver by ID.
func (r *DriverRepository) DeleteDriver(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM drivers WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// StudentRepository implements persistence.StudentRepository using SQLite.
type StudentRepository struct {
	pool *ConnectionPool
}

// NewStudentRepository creates a new SQLite student repository.
func NewStudentRepository(pool *ConnectionPool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

// CreateStudent inserts a new student.
func (r *StudentRepository) CreateStudent(ctx context.Context, student persistence.Student) error {
	if student.ID == "" || student.Name == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	_, err := r.pool.db.ExecContext(ctx, `
		INSERT INTO students (id, name, grade, guardian_phone, active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		student.ID,
		student.Name,
		student.Grade,
		student.GuardianPhone,
		student.Active,
		formatTime(now),
		formatTime(now),
	)
	return mapError(err)
}

// UpdateStudent updates an existing student.
func (r *StudentRepository) UpdateStudent(ctx context.Context, student persistence.Student) error {
	if student.ID == "" || student.Name == "" {
		return persistence.ErrConstraintViolation
	}

	result, err := r.pool.db.ExecContext(ctx, `
		UPDATE students
		SET name = ?, grade = ?, guardian_phone = ?, active = ?, updated_at = ?
		WHERE id = ?
	`,
		student.Name,
		student.Grade,
		student.GuardianPhone,
		student.Active,
		formatTime(time.Now()),
		student.ID,
	)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

// GetStudent retrieves a student by ID.
func (r *StudentRepository) GetStudent(ctx context.Context, id string) (persistence.Student, error) {
	var student persistence.Student
	var createdAtStr, updatedAtStr string

	err := r.pool.db.QueryRowContext(ctx, `
		SELECT id, name, grade, guardian_phone, active, created_at, updated_at
		FROM students WHERE id = ?
	`, id).Scan(
		&student.ID,
		&student.Name,
		&student.Grade,
		&student.GuardianPhone,
		&student.Active,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Student{}, mapError(err)
	}
	if student.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
		return persistence.Student{}, err
	}
	if student.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
		return persistence.Student{}, err
	}
	return student, nil
}

// ListStudents returns all students ordered by name.
func (r *StudentRepository) ListStudents(ctx context.Context) ([]persistence.Student, error) {
	rows, err := r.pool.db.QueryContext(ctx, `
		SELECT id, name, grade, guardian_phone, active, created_at, updated_at
		FROM students ORDER BY name ASC, id ASC
	`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var students []persistence.Student
	for rows.Next() {
		var student persistence.Student
		var createdAtStr, updatedAtStr string
		if err := rows.Scan(&student.ID, &student.Name, &student.Grade, &student.GuardianPhone, &student.Active, &createdAtStr, &updatedAtStr); err != nil {
			return nil, mapError(err)
		}
		if student.CreatedAt, err = parseTime(createdAtStr, "created_at"); err != nil {
			return nil, err
		}
		if student.UpdatedAt, err = parseTime(updatedAtStr, "updated_at"); err != nil {
			return nil, err
		}
		students = append(students, student)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return students, nil
}

// DeleteStudent removes a student by ID.
func (r *StudentRepository) DeleteStudent(ctx context.Context, id string) error {
	result, err := r.pool.db.ExecContext(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(result.RowsAffected())
}

func requireAffected(affected int64, err error) error {
	if err != nil {
		return fmt.Errorf("sqlite: rows affected: %w", err)
	}
	if affected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
