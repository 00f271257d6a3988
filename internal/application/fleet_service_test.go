package application

import (
	"context"
	"errors"
	"testing"
)

func newFleetServiceFixture() (*FleetService, *vehicleRepoStub, *driverRepoStub, *studentRepoStub) {
	vehicles := newVehicleRepoStub()
	drivers := newDriverRepoStub()
	students := newStudentRepoStub()
	return NewFleetService(vehicles, drivers, students, sequentialIDs("fleet")), vehicles, drivers, students
}

func TestFleetService_CreateVehicle(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newFleetServiceFixture()

		_, err := svc.CreateVehicle(context.Background(), Principal{}, VehicleInput{
			FleetNumber: "12",
			Capacity:    48,
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates required attributes", func(t *testing.T) {
		t.Parallel()
		svc, _, _, _ := newFleetServiceFixture()

		_, err := svc.CreateVehicle(context.Background(), Principal{IsAdmin: true}, VehicleInput{
			FleetNumber: "   ",
			Capacity:    0,
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["fleet_number"]; !ok {
			t.Fatalf("expected fleet_number error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["capacity"]; !ok {
			t.Fatalf("expected capacity error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("stores the trimmed record", func(t *testing.T) {
		t.Parallel()
		svc, vehicles, _, _ := newFleetServiceFixture()

		created, err := svc.CreateVehicle(context.Background(), Principal{IsAdmin: true}, VehicleInput{
			FleetNumber:  " 12 ",
			LicensePlate: " ABC-123 ",
			Capacity:     48,
			Active:       true,
		})
		if err != nil {
			t.Fatalf("CreateVehicle: %v", err)
		}
		if created.FleetNumber != "12" || created.LicensePlate != "ABC-123" {
			t.Fatalf("created = %+v", created)
		}
		if _, ok := vehicles.vehicles[created.ID]; !ok {
			t.Fatal("vehicle not stored")
		}
	})
}

func TestFleetService_UpdateDriver(t *testing.T) {
	t.Parallel()
	svc, _, drivers, _ := newFleetServiceFixture()
	admin := Principal{OperatorID: "op-1", IsAdmin: true}

	created, err := svc.CreateDriver(context.Background(), admin, DriverInput{
		Name:         "M. Okafor",
		LicenseClass: "B",
		Active:       true,
	})
	if err != nil {
		t.Fatalf("CreateDriver: %v", err)
	}

	updated, err := svc.UpdateDriver(context.Background(), admin, created.ID, DriverInput{
		Name:         "M. Okafor",
		LicenseClass: "D",
		Active:       false,
	})
	if err != nil {
		t.Fatalf("UpdateDriver: %v", err)
	}
	if updated.LicenseClass != "D" || updated.Active {
		t.Fatalf("updated = %+v", updated)
	}
	if drivers.drivers[created.ID].Active {
		t.Fatal("deactivation not stored")
	}

	if _, err := svc.UpdateDriver(context.Background(), admin, "driver-ghost", DriverInput{Name: "X"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFleetService_StudentRoster(t *testing.T) {
	t.Parallel()
	svc, _, _, students := newFleetServiceFixture()
	admin := Principal{OperatorID: "op-1", IsAdmin: true}

	if _, err := svc.CreateStudent(context.Background(), admin, StudentInput{Name: "  "}); err == nil {
		t.Fatal("expected validation error for missing name")
	}

	created, err := svc.CreateStudent(context.Background(), admin, StudentInput{
		Name:          "A. Okonkwo",
		Grade:         "5",
		GuardianPhone: "555-0100",
		Active:        true,
	})
	if err != nil {
		t.Fatalf("CreateStudent: %v", err)
	}

	listed, err := svc.ListStudents(context.Background())
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != created.ID {
		t.Fatalf("listed = %+v", listed)
	}

	if err := svc.DeleteStudent(context.Background(), admin, created.ID); err != nil {
		t.Fatalf("DeleteStudent: %v", err)
	}
	if len(students.students) != 0 {
		t.Fatal("student not deleted")
	}
}

func TestFleetService_DeleteVehicle(t *testing.T) {
	t.Parallel()
	svc, vehicles, _, _ := newFleetServiceFixture()
	admin := Principal{OperatorID: "op-1", IsAdmin: true}

	created, err := svc.CreateVehicle(context.Background(), admin, VehicleInput{
		FleetNumber: "12",
		Capacity:    48,
		Active:      true,
	})
	if err != nil {
		t.Fatalf("CreateVehicle: %v", err)
	}

	if err := svc.DeleteVehicle(context.Background(), Principal{}, created.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.DeleteVehicle(context.Background(), admin, created.ID); err != nil {
		t.Fatalf("DeleteVehicle: %v", err)
	}
	if len(vehicles.vehicles) != 0 {
		t.Fatal("vehicle not deleted")
	}
}
