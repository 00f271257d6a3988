package application

import (
	"fmt"

	"github.com/schooltransit/dispatch/internal/persistence"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

func toSchedulerEvent(event Event) scheduler.ScheduledEvent {
	return scheduler.ScheduledEvent{
		ID:           event.ID,
		Kind:         event.Kind,
		Window:       event.Window,
		VehicleID:    event.VehicleID,
		DriverID:     event.DriverID,
		Status:       event.Status,
		CancelReason: event.CancelReason,
	}
}

func toPersistenceEvent(event Event) persistence.Event {
	record := persistence.Event{
		ID:        event.ID,
		Kind:      string(event.Kind),
		Date:      event.Window.Date.String(),
		StartTime: event.Window.Start.String(),
		EndTime:   event.Window.End.String(),
		VehicleID: event.VehicleID,
		DriverID:  event.DriverID,
		Status:    string(event.Status),
		CreatedAt: event.CreatedAt,
		UpdatedAt: event.UpdatedAt,
	}
	if event.CancelReason != "" {
		reason := event.CancelReason
		record.CancelReason = &reason
	}

	switch details := event.Details.(type) {
	case RegularRunDetails:
		record.RouteName = optional(details.RouteName)
		record.Direction = optional(details.Direction)
	case ActivityTripDetails:
		record.ActivityName = optional(details.ActivityName)
		record.Destination = optional(details.Destination)
	case FieldTripDetails:
		record.Destination = optional(details.Destination)
		record.OrganizingTeacher = optional(details.OrganizingTeacher)
		record.ApprovedBy = optional(details.ApprovedBy)
	}
	return record
}

func fromPersistenceEvent(record persistence.Event) (Event, error) {
	date, err := scheduler.ParseDate(record.Date)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", record.ID, err)
	}
	start, err := scheduler.ParseTimeOfDay(record.StartTime)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", record.ID, err)
	}
	end, err := scheduler.ParseTimeOfDay(record.EndTime)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", record.ID, err)
	}
	window, err := scheduler.NewTimeWindow(date, start, end)
	if err != nil {
		return Event{}, fmt.Errorf("event %s: %w", record.ID, err)
	}

	event := Event{
		ID:        record.ID,
		Kind:      scheduler.EventKind(record.Kind),
		Window:    window,
		VehicleID: record.VehicleID,
		DriverID:  record.DriverID,
		Status:    scheduler.EventStatus(record.Status),
		CreatedAt: record.CreatedAt,
		UpdatedAt: record.UpdatedAt,
	}
	if record.CancelReason != nil {
		event.CancelReason = *record.CancelReason
	}

	switch event.Kind {
	case scheduler.KindRegularRun:
		event.Details = RegularRunDetails{
			RouteName: deref(record.RouteName),
			Direction: deref(record.Direction),
		}
	case scheduler.KindActivityTrip:
		event.Details = ActivityTripDetails{
			ActivityName: deref(record.ActivityName),
			Destination:  deref(record.Destination),
		}
	case scheduler.KindFieldTrip:
		event.Details = FieldTripDetails{
			Destination:       deref(record.Destination),
			OrganizingTeacher: deref(record.OrganizingTeacher),
			ApprovedBy:        deref(record.ApprovedBy),
		}
	default:
		return Event{}, fmt.Errorf("event %s: unknown kind %q", record.ID, record.Kind)
	}
	return event, nil
}

func fromPersistenceVehicle(record persistence.Vehicle) Vehicle {
	return Vehicle{
		ID:           record.ID,
		FleetNumber:  record.FleetNumber,
		LicensePlate: record.LicensePlate,
		Capacity:     record.Capacity,
		Active:       record.Active,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func fromPersistenceDriver(record persistence.Driver) Driver {
	return Driver{
		ID:           record.ID,
		Name:         record.Name,
		Phone:        record.Phone,
		LicenseClass: record.LicenseClass,
		Active:       record.Active,
		CreatedAt:    record.CreatedAt,
		UpdatedAt:    record.UpdatedAt,
	}
}

func fromPersistenceStudent(record persistence.Student) Student {
	return Student{
		ID:            record.ID,
		Name:          record.Name,
		Grade:         record.Grade,
		GuardianPhone: record.GuardianPhone,
		Active:        record.Active,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

func fromPersistenceOperator(record persistence.Operator) Operator {
	return Operator{
		ID:          record.ID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
		IsAdmin:     record.IsAdmin,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func fromPersistenceSession(record persistence.Session) Session {
	return Session{
		ID:         record.ID,
		OperatorID: record.OperatorID,
		Token:      record.Token,
		ExpiresAt:  record.ExpiresAt,
		RevokedAt:  record.RevokedAt,
	}
}

func fromPersistenceAssignment(record persistence.Assignment) Assignment {
	return Assignment{
		ID:              record.ID,
		StudentID:       record.StudentID,
		EventID:         record.EventID,
		PickupLocation:  record.PickupLocation,
		DropoffLocation: record.DropoffLocation,
		Notes:           record.Notes,
		Attended:        record.Attended,
	}
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
