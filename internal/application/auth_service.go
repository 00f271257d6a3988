package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/schooltransit/dispatch/internal/persistence"
)

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService coordinates operator authentication: login, session
// validation, and revocation. Sessions rotate on refresh; a refreshed token
// replaces the old one.
type AuthService struct {
	operators      persistence.OperatorRepository
	sessions       persistence.SessionRepository
	verifyPassword PasswordVerifier
	tokenGenerator func() string
	now            func() time.Time
	sessionTTL     time.Duration
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(
	operators persistence.OperatorRepository,
	sessions persistence.SessionRepository,
	verify PasswordVerifier,
	tokenGenerator func() string,
	now func() time.Time,
	sessionTTL time.Duration,
) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenGenerator == nil {
		tokenGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 12 * time.Hour
	}
	return &AuthService{
		operators:      operators,
		sessions:       sessions,
		verifyPassword: verify,
		tokenGenerator: tokenGenerator,
		now:            now,
		sessionTTL:     sessionTTL,
	}
}

// Authenticate validates credentials and issues a new session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (AuthenticateResult, error) {
	logger := serviceLogger(ctx, "AuthService", "Authenticate")

	email := strings.TrimSpace(strings.ToLower(params.Email))
	if email == "" || params.Password == "" {
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	operator, err := s.operators.GetOperatorByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return AuthenticateResult{}, ErrInvalidCredentials
		}
		return AuthenticateResult{}, err
	}

	if err := s.verifyPassword(operator.PasswordHash, params.Password); err != nil {
		logger.Warn().Str("email", email).Msg("password mismatch")
		return AuthenticateResult{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.sessions.DeleteExpiredSessions(ctx, now); err != nil {
		return AuthenticateResult{}, err
	}

	session := persistence.Session{
		ID:         s.tokenGenerator(),
		OperatorID: operator.ID,
		Token:      s.tokenGenerator(),
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	persisted, err := s.sessions.CreateSession(ctx, session)
	if err != nil {
		return AuthenticateResult{}, mapRepoError(err)
	}

	logger.Info().
		Str("operator_id", operator.ID).
		Str("session_id", persisted.ID).
		Msg("operator authenticated")
	return AuthenticateResult{
		Operator: fromPersistenceOperator(operator),
		Session:  fromPersistenceSession(persisted),
	}, nil
}

// RefreshSession rotates a session token, extending its validity window.
// The old token is revoked and a fresh one issued for the same operator.
func (s *AuthService) RefreshSession(ctx context.Context, token string) (Session, error) {
	session, err := s.activeSession(ctx, token)
	if err != nil {
		return Session{}, err
	}

	now := s.now()
	replacement := persistence.Session{
		ID:         s.tokenGenerator(),
		OperatorID: session.OperatorID,
		Token:      s.tokenGenerator(),
		ExpiresAt:  now.Add(s.sessionTTL),
	}
	persisted, err := s.sessions.CreateSession(ctx, replacement)
	if err != nil {
		return Session{}, mapRepoError(err)
	}
	if _, err := s.sessions.RevokeSession(ctx, session.Token, now); err != nil {
		return Session{}, mapRepoError(err)
	}

	serviceLogger(ctx, "AuthService", "RefreshSession").Info().
		Str("operator_id", session.OperatorID).
		Str("session_id", persisted.ID).
		Msg("session rotated")
	return fromPersistenceSession(persisted), nil
}

// RevokeSession invalidates an existing session token.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return ErrInvalidCredentials
	}

	if _, err := s.sessions.RevokeSession(ctx, trimmed, s.now()); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return ErrInvalidCredentials
		}
		return err
	}
	if err := s.sessions.DeleteExpiredSessions(ctx, s.now()); err != nil {
		return err
	}

	serviceLogger(ctx, "AuthService", "RevokeSession").Info().Msg("session revoked")
	return nil
}

// ValidateSession verifies the token and returns its principal.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (Principal, error) {
	session, err := s.activeSession(ctx, token)
	if err != nil {
		return Principal{}, err
	}

	operator, err := s.operators.GetOperator(ctx, session.OperatorID)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return Principal{}, ErrUnauthorized
		}
		return Principal{}, err
	}
	return Principal{OperatorID: operator.ID, IsAdmin: operator.IsAdmin}, nil
}

// CreateOperator registers a dispatcher account. Only admins create
// accounts; the bootstrap admin comes from the migrate command.
func (s *AuthService) CreateOperator(ctx context.Context, principal Principal, input OperatorInput) (Operator, error) {
	if !principal.IsAdmin {
		return Operator{}, ErrUnauthorized
	}

	vErr := &ValidationError{}
	email := strings.TrimSpace(strings.ToLower(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		vErr.add("email", "a valid email is required")
	}
	if len(input.Password) < 8 {
		vErr.add("password", "password must be at least 8 characters")
	}
	if vErr.HasErrors() {
		return Operator{}, vErr
	}

	hash, err := HashPassword(input.Password, DefaultArgon2Params)
	if err != nil {
		return Operator{}, err
	}

	record := persistence.Operator{
		ID:           s.tokenGenerator(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		IsAdmin:      input.IsAdmin,
	}
	if err := s.operators.CreateOperator(ctx, record); err != nil {
		return Operator{}, mapRepoError(err)
	}

	serviceLogger(ctx, "AuthService", "CreateOperator").Info().
		Str("operator_id", record.ID).
		Bool("is_admin", record.IsAdmin).
		Msg("operator created")
	return fromPersistenceOperator(record), nil
}

// activeSession loads the session and checks revocation and expiry.
func (s *AuthService) activeSession(ctx context.Context, token string) (persistence.Session, error) {
	trimmed := strings.TrimSpace(token)
	if trimmed == "" {
		return persistence.Session{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, trimmed)
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.Session{}, ErrUnauthorized
		}
		return persistence.Session{}, err
	}

	if session.RevokedAt != nil && !session.RevokedAt.IsZero() {
		return persistence.Session{}, ErrSessionRevoked
	}
	if !session.ExpiresAt.After(s.now()) {
		return persistence.Session{}, ErrSessionExpired
	}
	return session, nil
}
