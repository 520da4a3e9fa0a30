package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// contextKey is a custom type for context keys
type contextKey string

const (
	// SessionContextKey is the key for storing the console session in context
	SessionContextKey contextKey = "session"
)

// SessionGetter looks sessions up by id.
type SessionGetter interface {
	Get(id string) (*session.Session, error)
}

// RequireSession resolves the caller's console session and injects it into
// the request context. Missing, unknown and expired sessions get 401.
func RequireSession(store SessionGetter, cookies CookieConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := SessionIDFromRequest(r, cookies.Name)
			if id == "" {
				pkghttp.WriteUnauthorized(w, "login required")
				return
			}

			sess, err := store.Get(id)
			if err != nil {
				if errors.Is(err, models.ErrSessionExpired) {
					logger.InfoContext(r.Context(), "console session expired")
					ClearSessionCookies(w, cookies)
					pkghttp.WriteUnauthorized(w, "session expired, please log in again")
					return
				}
				ClearSessionCookies(w, cookies)
				pkghttp.WriteUnauthorized(w, "login required")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sess)))
		})
	}
}

// WithSession returns a copy of ctx carrying sess.
func WithSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// SessionFromContext extracts the console session from ctx
func SessionFromContext(ctx context.Context) *session.Session {
	sess, ok := ctx.Value(SessionContextKey).(*session.Session)
	if !ok {
		return nil
	}
	return sess
}
