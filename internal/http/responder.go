package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/schooltransit/dispatch/internal/application"
	"github.com/schooltransit/dispatch/internal/logging"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

var (
	errBadRequestBody      = errors.New("request body is not valid JSON")
	errMissingSessionToken = errors.New("a session token is required")
)

// responder writes JSON responses and maps service errors to status codes.
// It logs through the request-scoped logger the middleware puts on the
// context.
type responder struct{}

func (responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		loggerFor(ctx).Error().Err(err).Msg("failed to encode response")
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := http.StatusText(status)
	if err != nil {
		message = err.Error()
		loggerFor(ctx).Warn().Err(err).Int("status", status).Msg("request failed")
	}
	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError maps application and scheduler errors to status codes.
// Conflicts return 409 with the blocking event IDs; invalid lifecycle
// transitions return 422; validation problems return 400 with per-field
// messages.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "unknown error"})
		return
	}

	var conflict *scheduler.ConflictError
	if errors.As(err, &conflict) {
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode:           "SCHEDULING_CONFLICT",
			Message:             "the requested window collides with existing bookings",
			ConflictingEventIDs: conflict.ConflictingEventIDs,
		})
		return
	}
	var transition *scheduler.InvalidTransitionError
	if errors.As(err, &transition) {
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			ErrorCode: "INVALID_TRANSITION",
			Message:   transition.Error(),
		})
		return
	}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{
			Message: "the request is invalid",
			Errors:  vErr.FieldErrors,
		})
		return
	}

	switch {
	case errors.Is(err, application.ErrUnauthorized):
		r.writeJSON(ctx, w, http.StatusForbidden, errorResponse{
			ErrorCode: "AUTH_FORBIDDEN",
			Message:   "you do not have permission for this operation",
		})
	case errors.Is(err, application.ErrInvalidCredentials):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_INVALID_CREDENTIALS",
			Message:   "email or password is incorrect",
		})
	case errors.Is(err, application.ErrSessionExpired), errors.Is(err, application.ErrSessionRevoked):
		r.writeJSON(ctx, w, http.StatusUnauthorized, errorResponse{
			ErrorCode: "AUTH_SESSION_EXPIRED",
			Message:   "the session is no longer valid, log in again",
		})
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{Message: "the resource already exists"})
	case errors.Is(err, scheduler.ErrInvalidWindow):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{Message: err.Error()})
	default:
		loggerFor(ctx).Error().Err(err).Str("error_kind", application.ErrorKind(err)).Msg("unhandled service error")
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "internal server error"})
	}
}

func loggerFor(ctx context.Context) *zerolog.Logger {
	logger := logging.FromContext(ctx)
	return &logger
}

type errorResponse struct {
	ErrorCode           string            `json:"error_code,omitempty"`
	Message             string            `json:"message"`
	Errors              map[string]string `json:"errors,omitempty"`
	ConflictingEventIDs []string          `json:"conflicting_event_ids,omitempty"`
}
