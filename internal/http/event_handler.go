package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

type eventService interface {
	CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error)
	CreateRecurringRun(ctx context.Context, params application.CreateRecurringRunParams) (application.RecurringRunResult, error)
	GetEvent(ctx context.Context, eventID string) (application.Event, error)
	ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error)
	ConfirmEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error)
	BeginEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error)
	CompleteEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error)
	CancelEvent(ctx context.Context, principal application.Principal, eventID, reason string) (application.Event, error)
	ApproveFieldTrip(ctx context.Context, principal application.Principal, eventID, approvedBy string) (application.Event, error)
	ReassignEvent(ctx context.Context, params application.ReassignEventParams) (application.Event, error)
	DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error
}

// EventHandler serves event creation, queries, lifecycle transitions, and
// reassignment.
type EventHandler struct {
	service eventService
	respond responder
}

func NewEventHandler(service eventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	input, err := req.toInput()
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), application.CreateEventParams{
		Principal: principal,
		Input:     input,
	})
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, toEventDTO(event))
}

func (h *EventHandler) CreateRecurring(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req recurringRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params, err := req.toParams(principal)
	if err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	result, err := h.service.CreateRecurringRun(r.Context(), params)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	resp := recurringRunResponse{Events: make([]eventDTO, 0, len(result.Created))}
	for _, event := range result.Created {
		resp.Events = append(resp.Events, toEventDTO(event))
	}
	for _, skipped := range result.Skipped {
		resp.Skipped = append(resp.Skipped, skippedOccurrenceDTO{
			Date:                skipped.Date.String(),
			ConflictingEventIDs: skipped.ConflictingEventIDs,
		})
	}
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, resp)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	event, err := h.service.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	params := application.ListEventsParams{
		Status: scheduler.EventStatus(r.URL.Query().Get("status")),
		Kind:   scheduler.EventKind(r.URL.Query().Get("kind")),
	}
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err := scheduler.ParseDate(raw)
		if err != nil {
			h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		params.Date = &date
	}

	events, err := h.service.ListEvents(r.Context(), params)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, eventListResponse{Events: out})
}

func (h *EventHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.ConfirmEvent)
}

func (h *EventHandler) Begin(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.BeginEvent)
}

func (h *EventHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CompleteEvent)
}

func (h *EventHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.CancelEvent(r.Context(), principal, chi.URLParam(r, "id"), req.Reason)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Approve(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req approveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	event, err := h.service.ApproveFieldTrip(r.Context(), principal, chi.URLParam(r, "id"), req.ApprovedBy)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Reassign(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req reassignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.ReassignEventParams{
		Principal:    principal,
		EventID:      chi.URLParam(r, "id"),
		VehicleID:    req.VehicleID,
		DriverID:     req.DriverID,
		ClearVehicle: req.ClearVehicle,
		ClearDriver:  req.ClearDriver,
	}
	if req.Date != "" || req.Start != "" || req.End != "" {
		window, err := parseWindow(req.Date, req.Start, req.End)
		if err != nil {
			h.respond.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		params.Window = &window
	}

	event, err := h.service.ReassignEvent(r.Context(), params)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	if err := h.service.DeleteEvent(r.Context(), principal, chi.URLParam(r, "id")); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *EventHandler) transition(w http.ResponseWriter, r *http.Request, op func(context.Context, application.Principal, string) (application.Event, error)) {
	principal, _ := PrincipalFromContext(r.Context())

	event, err := op(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}
	h.respond.writeJSON(r.Context(), w, http.StatusOK, toEventDTO(event))
}

type eventRequest struct {
	Kind      string          `json:"kind"`
	Date      string          `json:"date"`
	Start     string          `json:"start"`
	End       string          `json:"end"`
	VehicleID *string         `json:"vehicle_id"`
	DriverID  *string         `json:"driver_id"`
	Details   eventDetailsDTO `json:"details"`
}

func (req eventRequest) toInput() (application.EventInput, error) {
	kind := scheduler.EventKind(req.Kind)
	window, err := parseWindow(req.Date, req.Start, req.End)
	if err != nil {
		return application.EventInput{}, err
	}
	return application.EventInput{
		Kind:      kind,
		Date:      window.Date,
		Start:     window.Start,
		End:       window.End,
		VehicleID: req.VehicleID,
		DriverID:  req.DriverID,
		Details:   req.Details.toDetails(kind),
	}, nil
}

func parseWindow(date, start, end string) (scheduler.TimeWindow, error) {
	day, err := scheduler.ParseDate(date)
	if err != nil {
		return scheduler.TimeWindow{}, fmt.Errorf("date: %w", err)
	}
	from, err := scheduler.ParseTimeOfDay(start)
	if err != nil {
		return scheduler.TimeWindow{}, fmt.Errorf("start: %w", err)
	}
	to, err := scheduler.ParseTimeOfDay(end)
	if err != nil {
		return scheduler.TimeWindow{}, fmt.Errorf("end: %w", err)
	}
	return scheduler.NewTimeWindow(day, from, to)
}

type eventDetailsDTO struct {
	RouteName         string `json:"route_name,omitempty"`
	Direction         string `json:"direction,omitempty"`
	ActivityName      string `json:"activity_name,omitempty"`
	Destination       string `json:"destination,omitempty"`
	OrganizingTeacher string `json:"organizing_teacher,omitempty"`
	ApprovedBy        string `json:"approved_by,omitempty"`
}

func (dto eventDetailsDTO) toDetails(kind scheduler.EventKind) application.EventDetails {
	switch kind {
	case scheduler.KindRegularRun:
		return application.RegularRunDetails{
			RouteName: dto.RouteName,
			Direction: dto.Direction,
		}
	case scheduler.KindActivityTrip:
		return application.ActivityTripDetails{
			ActivityName: dto.ActivityName,
			Destination:  dto.Destination,
		}
	case scheduler.KindFieldTrip:
		return application.FieldTripDetails{
			Destination:       dto.Destination,
			OrganizingTeacher: dto.OrganizingTeacher,
		}
	default:
		return nil
	}
}

type recurringRunRequest struct {
	Start     string          `json:"start"`
	End       string          `json:"end"`
	Weekdays  []string        `json:"weekdays"`
	From      string          `json:"from"`
	Until     string          `json:"until"`
	VehicleID *string         `json:"vehicle_id"`
	DriverID  *string         `json:"driver_id"`
	Details   eventDetailsDTO `json:"details"`
}

func (req recurringRunRequest) toParams(principal application.Principal) (application.CreateRecurringRunParams, error) {
	start, err := scheduler.ParseTimeOfDay(req.Start)
	if err != nil {
		return application.CreateRecurringRunParams{}, fmt.Errorf("start: %w", err)
	}
	end, err := scheduler.ParseTimeOfDay(req.End)
	if err != nil {
		return application.CreateRecurringRunParams{}, fmt.Errorf("end: %w", err)
	}
	from, err := scheduler.ParseDate(req.From)
	if err != nil {
		return application.CreateRecurringRunParams{}, fmt.Errorf("from: %w", err)
	}
	until, err := scheduler.ParseDate(req.Until)
	if err != nil {
		return application.CreateRecurringRunParams{}, fmt.Errorf("until: %w", err)
	}

	weekdays := make([]time.Weekday, 0, len(req.Weekdays))
	for _, raw := range req.Weekdays {
		day, err := parseWeekday(raw)
		if err != nil {
			return application.CreateRecurringRunParams{}, err
		}
		weekdays = append(weekdays, day)
	}

	return application.CreateRecurringRunParams{
		Principal: principal,
		Input: application.EventInput{
			Kind:      scheduler.KindRegularRun,
			Start:     start,
			End:       end,
			VehicleID: req.VehicleID,
			DriverID:  req.DriverID,
			Details:   req.Details.toDetails(scheduler.KindRegularRun),
		},
		Weekdays: weekdays,
		From:     from,
		Until:    until,
	}, nil
}

func parseWeekday(value string) (time.Weekday, error) {
	switch strings.ToLower(value) {
	case "sunday":
		return time.Sunday, nil
	case "monday":
		return time.Monday, nil
	case "tuesday":
		return time.Tuesday, nil
	case "wednesday":
		return time.Wednesday, nil
	case "thursday":
		return time.Thursday, nil
	case "friday":
		return time.Friday, nil
	case "saturday":
		return time.Saturday, nil
	}
	return 0, fmt.Errorf("weekdays: unknown weekday %q", value)
}

type skippedOccurrenceDTO struct {
	Date                string   `json:"date"`
	ConflictingEventIDs []string `json:"conflicting_event_ids"`
}

type recurringRunResponse struct {
	Events  []eventDTO             `json:"events"`
	Skipped []skippedOccurrenceDTO `json:"skipped,omitempty"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type approveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

type reassignRequest struct {
	Date         string  `json:"date,omitempty"`
	Start        string  `json:"start,omitempty"`
	End          string  `json:"end,omitempty"`
	VehicleID    *string `json:"vehicle_id"`
	DriverID     *string `json:"driver_id"`
	ClearVehicle bool    `json:"clear_vehicle,omitempty"`
	ClearDriver  bool    `json:"clear_driver,omitempty"`
}

type eventDTO struct {
	ID           string           `json:"id"`
	Kind         string           `json:"kind"`
	Date         string           `json:"date"`
	Start        string           `json:"start"`
	End          string           `json:"end"`
	VehicleID    *string          `json:"vehicle_id,omitempty"`
	DriverID     *string          `json:"driver_id,omitempty"`
	Status       string           `json:"status"`
	CancelReason string           `json:"cancel_reason,omitempty"`
	Details      *eventDetailsDTO `json:"details,omitempty"`
	CreatedAt    string           `json:"created_at,omitempty"`
	UpdatedAt    string           `json:"updated_at,omitempty"`
}

type eventListResponse struct {
	Events []eventDTO `json:"events"`
}

func toEventDTO(event application.Event) eventDTO {
	dto := eventDTO{
		ID:           event.ID,
		Kind:         string(event.Kind),
		Date:         event.Window.Date.String(),
		Start:        event.Window.Start.String(),
		End:          event.Window.End.String(),
		VehicleID:    event.VehicleID,
		DriverID:     event.DriverID,
		Status:       string(event.Status),
		CancelReason: event.CancelReason,
	}
	if !event.CreatedAt.IsZero() {
		dto.CreatedAt = event.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !event.UpdatedAt.IsZero() {
		dto.UpdatedAt = event.UpdatedAt.UTC().Format(time.RFC3339)
	}

	switch details := event.Details.(type) {
	case application.RegularRunDetails:
		dto.Details = &eventDetailsDTO{RouteName: details.RouteName, Direction: details.Direction}
	case application.ActivityTripDetails:
		dto.Details = &eventDetailsDTO{ActivityName: details.ActivityName, Destination: details.Destination}
	case application.FieldTripDetails:
		dto.Details = &eventDetailsDTO{
			Destination:       details.Destination,
			OrganizingTeacher: details.OrganizingTeacher,
			ApprovedBy:        details.ApprovedBy,
		}
	}
	return dto
}
