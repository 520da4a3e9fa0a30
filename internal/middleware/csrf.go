package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// CSRFProtection validates the session-bound CSRF token on state-changing
// requests. It must run after auth.RequireSession. Requests authenticated
// with a bearer session id instead of the cookie are exempt, since a browser
// never attaches that header on its own.
func CSRFProtection(cookieName string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !isStateChangingMethod(r.Method) {
				next.ServeHTTP(w, r)
				return
			}
			if _, err := r.Cookie(cookieName); err != nil {
				next.ServeHTTP(w, r)
				return
			}

			sess := auth.SessionFromContext(r.Context())
			if sess == nil {
				pkghttp.WriteUnauthorized(w, "login required")
				return
			}

			token := r.Header.Get(auth.CSRFHeader)
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(sess.CSRFToken)) != 1 {
				logger.WarnContext(r.Context(), "CSRF token validation failed",
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.String("admin_id", sess.Admin.ID))
				pkghttp.WriteForbidden(w, "CSRF token missing or invalid")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// isStateChangingMethod checks if the HTTP method modifies state
func isStateChangingMethod(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	default:
		return false
	}
}
