package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/schooltransit/dispatch/internal/application"
)

type authService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AuthenticateResult, error)
	RefreshSession(ctx context.Context, token string) (application.Session, error)
	RevokeSession(ctx context.Context, token string) error
	CreateOperator(ctx context.Context, principal application.Principal, input application.OperatorInput) (application.Operator, error)
}

// AuthHandler serves login, session rotation and revocation, and operator
// account creation.
type AuthHandler struct {
	service authService
	respond responder
}

func NewAuthHandler(service authService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.Authenticate(r.Context(), application.AuthenticateParams{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, result.Session.Token, result.Session.ExpiresAt)
	w.Header().Set("X-Session-Token", result.Session.Token)
	h.respond.writeJSON(r.Context(), w, http.StatusCreated, loginResponse{
		Token:     result.Session.Token,
		ExpiresAt: result.Session.ExpiresAt.UTC().Format(time.RFC3339),
		Operator: &operatorDTO{
			ID:          result.Operator.ID,
			Email:       result.Operator.Email,
			DisplayName: result.Operator.DisplayName,
			IsAdmin:     result.Operator.IsAdmin,
		},
	})
}

func (h *AuthHandler) RefreshSession(w http.ResponseWriter, r *http.Request) {
	token := extractTokenFromRequest(r)
	if token == "" {
		h.respond.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	session, err := h.service.RefreshSession(r.Context(), token)
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	setSessionCookie(w, session.Token, session.ExpiresAt)
	w.Header().Set("X-Session-Token", session.Token)
	h.respond.writeJSON(r.Context(), w, http.StatusOK, loginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

func (h *AuthHandler) RevokeCurrentSession(w http.ResponseWriter, r *http.Request) {
	token := extractTokenFromRequest(r)
	if token == "" {
		h.respond.writeError(r.Context(), w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := h.service.RevokeSession(r.Context(), token); err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	clearSessionCookie(w)
	h.respond.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AuthHandler) CreateOperator(w http.ResponseWriter, r *http.Request) {
	principal, _ := PrincipalFromContext(r.Context())

	var req operatorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	operator, err := h.service.CreateOperator(r.Context(), principal, application.OperatorInput{
		Email:       req.Email,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		IsAdmin:     req.IsAdmin,
	})
	if err != nil {
		h.respond.handleServiceError(r.Context(), w, err)
		return
	}

	h.respond.writeJSON(r.Context(), w, http.StatusCreated, operatorDTO{
		ID:          operator.ID,
		Email:       operator.Email,
		DisplayName: operator.DisplayName,
		IsAdmin:     operator.IsAdmin,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	Operator  *operatorDTO `json:"operator,omitempty"`
}

type operatorRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	IsAdmin     bool   `json:"is_admin"`
}

type operatorDTO struct {
	ID          string `json:"id,omitempty"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"display_name,omitempty"`
	IsAdmin     bool   `json:"is_admin,omitempty"`
}

func setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	cookie := &http.Cookie{
		Name:     "session_token",
		Value:    token,
		HttpOnly: true,
		Secure:   true,
		Path:     "/",
	}
	if !expires.IsZero() {
		cookie.Expires = expires.UTC()
	}
	http.SetCookie(w, cookie)
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_token",
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
	})
}
