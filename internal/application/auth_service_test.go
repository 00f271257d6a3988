package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// testArgonParams keeps password hashing cheap in tests. The parameters are
// encoded into the hash, so verification picks them up automatically.
var testArgonParams = Argon2Params{
	Memory:      1024,
	Iterations:  1,
	Parallelism: 1,
	SaltLength:  8,
	KeyLength:   16,
}

type authServiceFixture struct {
	service  *AuthService
	sessions *sessionRepoStub
	now      time.Time
}

func newAuthServiceFixture(t *testing.T) *authServiceFixture {
	t.Helper()

	hash, err := HashPassword("correct horse", testArgonParams)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	operators := newOperatorRepoStub(persistence.Operator{
		ID:           "op-1",
		Email:        "dispatch@district.example",
		DisplayName:  "R. Dispatcher",
		PasswordHash: hash,
		IsAdmin:      true,
	})
	sessions := newSessionRepoStub()
	now := time.Date(2026, time.September, 1, 6, 0, 0, 0, time.UTC)
	service := NewAuthService(operators, sessions, nil, sequentialIDs("token"), fixedClock(now), 12*time.Hour)
	return &authServiceFixture{service: service, sessions: sessions, now: now}
}

func TestAuthService_Authenticate(t *testing.T) {
	t.Parallel()

	t.Run("issues a session for valid credentials", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
			Email:    "  Dispatch@District.example ",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if result.Operator.ID != "op-1" {
			t.Fatalf("operator = %q", result.Operator.ID)
		}
		if result.Session.Token == "" {
			t.Fatal("expected a session token")
		}
		if got, want := result.Session.ExpiresAt, fx.now.Add(12*time.Hour); !got.Equal(want) {
			t.Fatalf("expires at %v, want %v", got, want)
		}
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		_, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
			Email:    "dispatch@district.example",
			Password: "battery staple",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("rejects unknown operators with the same error", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		_, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
			Email:    "nobody@district.example",
			Password: "correct horse",
		})
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("expected ErrInvalidCredentials, got %v", err)
		}
	})
}

func TestAuthService_ValidateSession(t *testing.T) {
	t.Parallel()

	t.Run("returns the principal for a live session", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
			Email:    "dispatch@district.example",
			Password: "correct horse",
		})
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}

		principal, err := fx.service.ValidateSession(context.Background(), result.Session.Token)
		if err != nil {
			t.Fatalf("ValidateSession: %v", err)
		}
		if principal.OperatorID != "op-1" || !principal.IsAdmin {
			t.Fatalf("principal = %+v", principal)
		}
	})

	t.Run("rejects expired sessions", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		fx.sessions.sessions["stale"] = persistence.Session{
			ID:         "session-stale",
			OperatorID: "op-1",
			Token:      "stale",
			ExpiresAt:  fx.now.Add(-time.Minute),
		}
		if _, err := fx.service.ValidateSession(context.Background(), "stale"); !errors.Is(err, ErrSessionExpired) {
			t.Fatalf("expected ErrSessionExpired, got %v", err)
		}
	})

	t.Run("rejects revoked sessions", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		revokedAt := fx.now.Add(-time.Minute)
		fx.sessions.sessions["revoked"] = persistence.Session{
			ID:         "session-revoked",
			OperatorID: "op-1",
			Token:      "revoked",
			ExpiresAt:  fx.now.Add(time.Hour),
			RevokedAt:  &revokedAt,
		}
		if _, err := fx.service.ValidateSession(context.Background(), "revoked"); !errors.Is(err, ErrSessionRevoked) {
			t.Fatalf("expected ErrSessionRevoked, got %v", err)
		}
	})

	t.Run("rejects unknown tokens", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		if _, err := fx.service.ValidateSession(context.Background(), "ghost"); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})
}

func TestAuthService_RefreshSession(t *testing.T) {
	t.Parallel()
	fx := newAuthServiceFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "dispatch@district.example",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	refreshed, err := fx.service.RefreshSession(context.Background(), result.Session.Token)
	if err != nil {
		t.Fatalf("RefreshSession: %v", err)
	}
	if refreshed.Token == result.Session.Token {
		t.Fatal("refresh must rotate the token")
	}

	if _, err := fx.service.ValidateSession(context.Background(), refreshed.Token); err != nil {
		t.Fatalf("new token should validate: %v", err)
	}
	if _, err := fx.service.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("old token should be revoked, got %v", err)
	}
}

func TestAuthService_RevokeSession(t *testing.T) {
	t.Parallel()
	fx := newAuthServiceFixture(t)

	result, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
		Email:    "dispatch@district.example",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}

	if err := fx.service.RevokeSession(context.Background(), result.Session.Token); err != nil {
		t.Fatalf("RevokeSession: %v", err)
	}
	if _, err := fx.service.ValidateSession(context.Background(), result.Session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestAuthService_CreateOperator(t *testing.T) {
	t.Parallel()

	t.Run("requires administrator privileges", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)

		_, err := fx.service.CreateOperator(context.Background(), Principal{}, OperatorInput{
			Email:    "new@district.example",
			Password: "long enough",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	})

	t.Run("validates email and password", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)
		admin := Principal{OperatorID: "op-1", IsAdmin: true}

		_, err := fx.service.CreateOperator(context.Background(), admin, OperatorInput{
			Email:    "not-an-email",
			Password: "short",
		})
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["email"]; !ok {
			t.Fatalf("expected email error, got %v", vErr.FieldErrors)
		}
		if _, ok := vErr.FieldErrors["password"]; !ok {
			t.Fatalf("expected password error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("creates an account the operator can log into", func(t *testing.T) {
		t.Parallel()
		fx := newAuthServiceFixture(t)
		admin := Principal{OperatorID: "op-1", IsAdmin: true}

		created, err := fx.service.CreateOperator(context.Background(), admin, OperatorInput{
			Email:       "New@District.example",
			DisplayName: "S. Newhire",
			Password:    "a fine passphrase",
		})
		if err != nil {
			t.Fatalf("CreateOperator: %v", err)
		}
		if created.Email != "new@district.example" {
			t.Fatalf("email = %q", created.Email)
		}

		if _, err := fx.service.Authenticate(context.Background(), AuthenticateParams{
			Email:    "new@district.example",
			Password: "a fine passphrase",
		}); err != nil {
			t.Fatalf("new account should authenticate: %v", err)
		}

		_, err = fx.service.CreateOperator(context.Background(), admin, OperatorInput{
			Email:    "new@district.example",
			Password: "another passphrase",
		})
		if !errors.Is(err, ErrAlreadyExists) {
			t.Fatalf("expected ErrAlreadyExists, got %v", err)
		}
	})
}
