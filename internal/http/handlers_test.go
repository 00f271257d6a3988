package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

type eventServiceStub struct {
	createResult    application.Event
	createErr       error
	recurringResult application.RecurringRunResult
	recurringErr    error
	getResult       application.Event
	getErr          error
	confirmErr      error
	cancelErr       error
	reassignErr     error
	deleteErr       error
}

func (s *eventServiceStub) CreateEvent(ctx context.Context, params application.CreateEventParams) (application.Event, error) {
	return s.createResult, s.createErr
}

func (s *eventServiceStub) CreateRecurringRun(ctx context.Context, params application.CreateRecurringRunParams) (application.RecurringRunResult, error) {
	return s.recurringResult, s.recurringErr
}

func (s *eventServiceStub) GetEvent(ctx context.Context, eventID string) (application.Event, error) {
	return s.getResult, s.getErr
}

func (s *eventServiceStub) ListEvents(ctx context.Context, params application.ListEventsParams) ([]application.Event, error) {
	return []application.Event{s.getResult}, s.getErr
}

func (s *eventServiceStub) ConfirmEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error) {
	return s.getResult, s.confirmErr
}

func (s *eventServiceStub) BeginEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error) {
	return s.getResult, s.confirmErr
}

func (s *eventServiceStub) CompleteEvent(ctx context.Context, principal application.Principal, eventID string) (application.Event, error) {
	return s.getResult, s.confirmErr
}

func (s *eventServiceStub) CancelEvent(ctx context.Context, principal application.Principal, eventID, reason string) (application.Event, error) {
	return s.getResult, s.cancelErr
}

func (s *eventServiceStub) ApproveFieldTrip(ctx context.Context, principal application.Principal, eventID, approvedBy string) (application.Event, error) {
	return s.getResult, s.confirmErr
}

func (s *eventServiceStub) ReassignEvent(ctx context.Context, params application.ReassignEventParams) (application.Event, error) {
	return s.getResult, s.reassignErr
}

func (s *eventServiceStub) DeleteEvent(ctx context.Context, principal application.Principal, eventID string) error {
	return s.deleteErr
}

type sessionValidatorStub struct {
	principal application.Principal
	err       error
}

func (s *sessionValidatorStub) ValidateSession(ctx context.Context, token string) (application.Principal, error) {
	return s.principal, s.err
}

func testEvent(t *testing.T) application.Event {
	t.Helper()

	date, err := scheduler.ParseDate("2026-09-07")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	window, err := scheduler.NewTimeWindow(date, 8*60, 9*60)
	if err != nil {
		t.Fatalf("new window: %v", err)
	}
	return application.Event{
		ID:        "event-1",
		Kind:      scheduler.KindActivityTrip,
		Window:    window,
		VehicleID: ptrTo("bus-1"),
		Status:    scheduler.StatusScheduled,
		Details:   application.ActivityTripDetails{ActivityName: "Swim Meet", Destination: "Aquatic Center"},
		CreatedAt: time.Date(2026, time.September, 1, 6, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, time.September, 1, 6, 0, 0, 0, time.UTC),
	}
}

func ptrTo(s string) *string { return &s }

func newTestRouter(events *eventServiceStub, sessions SessionValidator) http.Handler {
	return NewRouter(RouterConfig{
		Events:   NewEventHandler(events),
		Sessions: sessions,
		Logger:   zerolog.Nop(),
	})
}

func authedRequest(method, target, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	req.Header.Set("Authorization", "Bearer token-1")
	return req
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&eventServiceStub{}, &sessionValidatorStub{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRouter_RequiresSession(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&eventServiceStub{}, &sessionValidatorStub{err: application.ErrSessionExpired})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodGet, "/events", ""))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expired session: status = %d", rec.Code)
	}
}

func TestEventHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("returns the created event", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{createResult: testEvent(t)}
		router := newTestRouter(events, &sessionValidatorStub{})

		body := `{"kind":"activity_trip","date":"2026-09-07","start":"08:00","end":"09:00","vehicle_id":"bus-1","details":{"activity_name":"Swim Meet","destination":"Aquatic Center"}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events", body))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
		var dto eventDTO
		if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if dto.ID != "event-1" || dto.Status != "scheduled" || dto.Start != "08:00" {
			t.Fatalf("dto = %+v", dto)
		}
	})

	t.Run("maps conflicts to 409 with the blocking IDs", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{createErr: &scheduler.ConflictError{ConflictingEventIDs: []string{"event-9"}}}
		router := newTestRouter(events, &sessionValidatorStub{})

		body := `{"kind":"activity_trip","date":"2026-09-07","start":"08:00","end":"09:00"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events", body))

		if rec.Code != http.StatusConflict {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.ConflictingEventIDs) != 1 || resp.ConflictingEventIDs[0] != "event-9" {
			t.Fatalf("conflicting IDs = %v", resp.ConflictingEventIDs)
		}
	})

	t.Run("maps validation errors to 400", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{createErr: &application.ValidationError{
			FieldErrors: map[string]string{"vehicle_id": "unknown vehicle"},
		}}
		router := newTestRouter(events, &sessionValidatorStub{})

		body := `{"kind":"activity_trip","date":"2026-09-07","start":"08:00","end":"09:00"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events", body))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
		var resp errorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Errors["vehicle_id"] != "unknown vehicle" {
			t.Fatalf("errors = %v", resp.Errors)
		}
	})

	t.Run("rejects a malformed window before the service runs", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&eventServiceStub{}, &sessionValidatorStub{})

		body := `{"kind":"activity_trip","date":"2026-09-07","start":"09:00","end":"08:00"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events", body))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestEventHandler_CreateRecurring(t *testing.T) {
	t.Parallel()

	t.Run("returns created runs and skipped dates", func(t *testing.T) {
		t.Parallel()
		date, err := scheduler.ParseDate("2026-09-09")
		if err != nil {
			t.Fatalf("parse date: %v", err)
		}
		events := &eventServiceStub{recurringResult: application.RecurringRunResult{
			Created: []application.Event{testEvent(t)},
			Skipped: []application.SkippedOccurrence{{Date: date, ConflictingEventIDs: []string{"event-9"}}},
		}}
		router := newTestRouter(events, &sessionValidatorStub{})

		body := `{"start":"08:00","end":"09:00","weekdays":["monday","wednesday"],"from":"2026-09-07","until":"2026-09-18","vehicle_id":"bus-1","details":{"route_name":"North Loop","direction":"morning"}}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events/recurring", body))

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
		var resp recurringRunResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if len(resp.Events) != 1 || resp.Events[0].ID != "event-1" {
			t.Fatalf("events = %+v", resp.Events)
		}
		if len(resp.Skipped) != 1 || resp.Skipped[0].Date != "2026-09-09" {
			t.Fatalf("skipped = %+v", resp.Skipped)
		}
	})

	t.Run("rejects an unknown weekday before the service runs", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(&eventServiceStub{}, &sessionValidatorStub{})

		body := `{"start":"08:00","end":"09:00","weekdays":["moonday"],"from":"2026-09-07","until":"2026-09-18"}`
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events/recurring", body))

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
	})
}

func TestEventHandler_Transitions(t *testing.T) {
	t.Parallel()

	t.Run("invalid transition maps to 422", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{confirmErr: &scheduler.InvalidTransitionError{
			From:      scheduler.StatusCompleted,
			Attempted: "confirm",
		}}
		router := newTestRouter(events, &sessionValidatorStub{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/events/event-1/confirm", ""))

		if rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("unknown event maps to 404", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{getErr: application.ErrNotFound}
		router := newTestRouter(events, &sessionValidatorStub{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodGet, "/events/event-ghost", ""))

		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("forbidden delete maps to 403", func(t *testing.T) {
		t.Parallel()
		events := &eventServiceStub{deleteErr: application.ErrUnauthorized}
		router := newTestRouter(events, &sessionValidatorStub{})

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/events/event-1", ""))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d body %s", rec.Code, rec.Body.String())
		}
	})
}
