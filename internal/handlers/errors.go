package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// SessionExpirer ends a session whose backend credential was rejected.
type SessionExpirer interface {
	Expire(ctx context.Context, sess *session.Session, cause error)
}

// ErrorResponder maps service errors onto JSON error responses.
type ErrorResponder struct {
	sessions SessionExpirer
	cookies  auth.CookieConfig
	logger   *slog.Logger
}

// NewErrorResponder creates a new ErrorResponder
func NewErrorResponder(sessions SessionExpirer, cookies auth.CookieConfig, logger *slog.Logger) *ErrorResponder {
	return &ErrorResponder{
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
	}
}

// Respond writes the response for err. A backend 401/403 means the admin's
// token is no longer accepted, so the console session is destroyed and the
// client must log in again.
func (e *ErrorResponder) Respond(w http.ResponseWriter, r *http.Request, err error) {
	var remote *models.RemoteError

	switch {
	case errors.As(err, &remote) && remote.IsAuthFailure():
		if sess := auth.SessionFromContext(r.Context()); sess != nil {
			e.sessions.Expire(r.Context(), sess, err)
		}
		auth.ClearSessionCookies(w, e.cookies)
		pkghttp.WriteUnauthorized(w, "Session expired, please log in again")
	case errors.As(err, &remote):
		pkghttp.WriteBadGateway(w, remote.Message)
	case errors.Is(err, models.ErrInvalidArgument):
		pkghttp.WriteBadRequest(w, invalidReason(err))
	case errors.Is(err, models.ErrNotFound):
		pkghttp.WriteNotFound(w, "Resource not found")
	case errors.Is(err, models.ErrForbidden):
		pkghttp.WriteForbidden(w, "Admin access required")
	case errors.Is(err, models.ErrUnauthorized), errors.Is(err, models.ErrSessionExpired):
		pkghttp.WriteUnauthorized(w, "Login required")
	default:
		e.logger.ErrorContext(r.Context(), "unhandled console error",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
	}
}

// invalidReason strips the sentinel prefix added by models.InvalidArgument.
func invalidReason(err error) string {
	return strings.TrimPrefix(err.Error(), models.ErrInvalidArgument.Error()+": ")
}

// currentSession returns the session injected by auth.RequireSession and
// writes 401 when there is none.
func currentSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess := auth.SessionFromContext(r.Context())
	if sess == nil {
		pkghttp.WriteUnauthorized(w, "Login required")
		return nil, false
	}
	return sess, true
}
