package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// AuthServiceInterface defines the interface for console login and logout
type AuthServiceInterface interface {
	Login(ctx context.Context, email, password string) (*session.Session, error)
	Logout(ctx context.Context, sess *session.Session)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service AuthServiceInterface
	cookies auth.CookieConfig
	timing  *auth.TimingDelay
	errs    *ErrorResponder
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, cookies auth.CookieConfig, timing *auth.TimingDelay, errs *ErrorResponder) *AuthHandler {
	return &AuthHandler{
		service: service,
		cookies: cookies,
		timing:  timing,
		errs:    errs,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the logged-in admin. The CSRF token must be sent
// back in the X-CSRF-Token header on every mutating request.
type SessionResponse struct {
	Admin     models.AdminIdentity `json:"admin"`
	ExpiresAt time.Time            `json:"expiresAt"`
	CSRFToken string               `json:"csrfToken"`
}

func sessionResponse(sess *session.Session) SessionResponse {
	return SessionResponse{
		Admin:     sess.Admin,
		ExpiresAt: sess.ExpiresAt,
		CSRFToken: sess.CSRFToken,
	}
}

// Login handles admin login
// @Summary Admin login
// @Accept json
// @Param request body LoginRequest true "Login request"
// @Produce json
// @Success 200 {object} SessionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteBadRequest(w, err.Error())
		return
	}

	start := time.Now()
	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	h.timing.WaitFrom(start, err == nil)

	if err != nil {
		var remote *models.RemoteError
		switch {
		case errors.Is(err, models.ErrForbidden):
			pkghttp.WriteForbidden(w, "Admin access required")
		case errors.As(err, &remote) && remote.IsAuthFailure():
			pkghttp.WriteUnauthorized(w, "Invalid email or password")
		default:
			h.errs.Respond(w, r, err)
		}
		return
	}

	auth.SetSessionCookies(w, sess, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, sessionResponse(sess))
}

// Logout ends the current session
// @Summary Logout
// @Success 204
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}

	h.service.Logout(r.Context(), sess)
	auth.ClearSessionCookies(w, h.cookies)
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the logged-in admin
// @Summary Current admin
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess, ok := currentSession(w, r)
	if !ok {
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, sessionResponse(sess))
}
