package middleware

import (
	"net/http"

	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
)

// ClientIP resolves the caller's address once per request and stores it in
// the request context for the logger, the rate limiter and the audit trail.
func ClientIP(resolver *pkghttp.IPResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := resolver.ClientIP(r)
			next.ServeHTTP(w, r.WithContext(pkghttp.WithClientIP(r.Context(), ip)))
		})
	}
}
