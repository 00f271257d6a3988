package http

import (
	"context"
	"net/http"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

type availabilityService interface {
	CheckWindow(kind scheduler.ResourceKind, resourceID string, window scheduler.TimeWindow) bool
	ListAvailableVehicles(ctx context.Context, window scheduler.TimeWindow) ([]application.Vehicle, error)
	ListAvailableDrivers(ctx context.Context, window scheduler.TimeWindow) ([]application.Driver, error)
	FindScheduleConflicts(window scheduler.TimeWindow, excludeEventID string) []scheduler.ScheduledEvent
}

// AvailabilityHandler serves free/busy queries for the dispatch board.
type AvailabilityHandler struct {
	service availabilityService
	respond responder
}

func NewAvailabilityHandler(service availabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

// Check answers whether one resource is free in a window.
// GET /availability?kind=&resource_id=&date=&start=&end=
func (h *AvailabilityHandler) Check(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind, err := parseResourceKind(query.Get("kind"))
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	resourceID := query.Get("resource_id")
	if resourceID == "" {
		h.respond.handleServiceError(r.Context(), w, &application.ValidationError{
			FieldErrors: map[string]string{"resource_id": "resource_id is required"},
		})
		return
	}
	window, err := parseWindow(query.Get("date"), query.Get("start"), query.Get("end"))
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	h.respond.writeJSON(r.Context(), w, http.StatusOK, availabilityResponse{
		Kind:       string(kind),
		ResourceID: resourceID,
		Date:       window.Date.String(),
		Start:      window.Start.String(),
		End:        window.End.String(),
		Available:  h.service.CheckWindow(kind, resourceID, window),
	})
}

// FreePool lists the active resources of a kind that are free in a window.
// GET /availability/resources?kind=&date=&start=&end=
func (h *AvailabilityHandler) FreePool(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind, err := parseResourceKind(query.Get("kind"))
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}
	window, err := parseWindow(query.Get("date"), query.Get("start"), query.Get("end"))
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	switch kind {
	case scheduler.ResourceVehicle:
		vehicles, err := h.service.ListAvailableVehicles(r.Context(), window)
		if err != nil {
			h.respond.handleServiceError(r.Context(), w, err)
			return
		}
		out := make([]vehicleDTO, 0, len(vehicles))
		for _, vehicle := range vehicles {
			out = append(out, toVehicleDTO(vehicle))
		}
		h.respond.writeJSON(r.Context(), w, http.StatusOK, freeVehiclesResponse{Vehicles: out})
	default:
		drivers, err := h.service.ListAvailableDrivers(r.Context(), window)
		if err != nil {
			h.respond.handleServiceError(r.Context(), w, err)
			return
		}
		out := make([]driverDTO, 0, len(drivers))
		for _, driver := range drivers {
			out = append(out, toDriverDTO(driver))
		}
		h.respond.writeJSON(r.Context(), w, http.StatusOK, freeDriversResponse{Drivers: out})
	}
}

// Conflicts lists non-cancelled events overlapping a window.
// GET /schedule/conflicts?date=&start=&end=&exclude=
func (h *AvailabilityHandler) Conflicts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	window, err := parseWindow(query.Get("date"), query.Get("start"), query.Get("end"))
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	overlapping := h.service.FindScheduleConflicts(window, query.Get("exclude"))
	out := make([]scheduleConflictDTO, 0, len(overlapping))
	for _, event := range overlapping {
		out = append(out, scheduleConflictDTO{
			EventID:   event.ID,
			Kind:      string(event.Kind),
			Date:      event.Window.Date.String(),
			Start:     event.Window.Start.String(),
			End:       event.Window.End.String(),
			VehicleID: event.VehicleID,
			DriverID:  event.DriverID,
			Status:    string(event.Status),
		})
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, scheduleConflictsResponse{Conflicts: out})
}

func parseResourceKind(raw string) (scheduler.ResourceKind, error) {
	kind := scheduler.ResourceKind(raw)
	if !kind.Valid() {
		return "", &application.ValidationError{
			FieldErrors: map[string]string{"kind": "kind must be vehicle or driver"},
		}
	}
	return kind, nil
}

type availabilityResponse struct {
	Kind       string `json:"kind"`
	ResourceID string `json:"resource_id"`
	Date       string `json:"date"`
	Start      string `json:"start"`
	End        string `json:"end"`
	Available  bool   `json:"available"`
}

type freeVehiclesResponse struct {
	Vehicles []vehicleDTO `json:"vehicles"`
}

type freeDriversResponse struct {
	Drivers []driverDTO `json:"drivers"`
}

type scheduleConflictDTO struct {
	EventID   string  `json:"event_id"`
	Kind      string  `json:"kind"`
	Date      string  `json:"date"`
	Start     string  `json:"start"`
	End       string  `json:"end"`
	VehicleID *string `json:"vehicle_id,omitempty"`
	DriverID  *string `json:"driver_id,omitempty"`
	Status    string  `json:"status"`
}

type scheduleConflictsResponse struct {
	Conflicts []scheduleConflictDTO `json:"conflicts"`
}
