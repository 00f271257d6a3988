package application

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/schooltransit/dispatch/internal/logging"
	"github.com/schooltransit/dispatch/internal/scheduler"
)

func serviceLogger(ctx context.Context, serviceName, operation string) *zerolog.Logger {
	logger := logging.FromContext(ctx).With().
		Str("service", serviceName).
		Str("operation", operation).
		Logger()
	return &logger
}

// ErrorKind maps sentinel and typed errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadyExists):
		return "already_exists"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrSessionExpired):
		return "session_expired"
	case errors.Is(err, ErrSessionRevoked):
		return "session_revoked"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}
	var conflict *scheduler.ConflictError
	if errors.As(err, &conflict) {
		return "conflict"
	}
	var transition *scheduler.InvalidTransitionError
	if errors.As(err, &transition) {
		return "invalid_transition"
	}

	return "unexpected"
}
