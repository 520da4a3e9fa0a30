package middleware

import (
	"net/http"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/httprate"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int
}

func limitExceeded(w http.ResponseWriter, r *http.Request) {
	pkghttp.WriteTooManyRequests(w, "Rate limit exceeded")
}

// RateLimitByIP creates a middleware that rate limits requests by client IP.
// Used on the login endpoint, before any session exists.
func RateLimitByIP(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(clientIPKey),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// RateLimitBySession limits each console session independently. It must run
// after auth.RequireSession; requests without a session fall back to the
// client IP.
func RateLimitBySession(config RateLimitConfig) func(next http.Handler) http.Handler {
	return httprate.Limit(
		config.RequestsPerMinute,
		1*time.Minute,
		httprate.WithKeyFuncs(func(r *http.Request) (string, error) {
			if sess := auth.SessionFromContext(r.Context()); sess != nil {
				return "session:" + sess.ID, nil
			}
			return clientIPKey(r)
		}),
		httprate.WithLimitHandler(limitExceeded),
	)
}

// clientIPKey keys on the IP resolved by ClientIP, which honours the
// trusted proxy list, and falls back to the connection address.
func clientIPKey(r *http.Request) (string, error) {
	if ip := pkghttp.ClientIPFromContext(r.Context()); ip != "" {
		return "ip:" + ip, nil
	}
	return httprate.KeyByIP(r)
}
