package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/session"
)

// CSRFCookieName is the readable cookie carrying the session's CSRF token.
// The browser copies it into the X-CSRF-Token header.
const CSRFCookieName = "console_csrf"

// CSRFHeader is the request header checked on mutating requests.
const CSRFHeader = "X-CSRF-Token"

// CookieConfig holds cookie configuration settings
type CookieConfig struct {
	Name     string // session cookie name
	Domain   string // Empty string = current host only
	Secure   bool   // HTTPS only
	SameSite http.SameSite
}

// SetSessionCookies writes the httpOnly session cookie and the readable CSRF
// cookie. Both expire with the session.
func SetSessionCookies(w http.ResponseWriter, sess *session.Session, config CookieConfig) {
	maxAge := int(time.Until(sess.ExpiresAt).Seconds())
	if maxAge < 1 {
		maxAge = 1
	}

	http.SetCookie(w, &http.Cookie{
		Name:     config.Name,
		Value:    sess.ID,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  sess.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     CSRFCookieName,
		Value:    sess.CSRFToken,
		Path:     "/",
		Domain:   config.Domain,
		Expires:  sess.ExpiresAt,
		MaxAge:   maxAge,
		HttpOnly: false,
		Secure:   config.Secure,
		SameSite: config.SameSite,
	})
}

// ClearSessionCookies expires both console cookies.
func ClearSessionCookies(w http.ResponseWriter, config CookieConfig) {
	for _, c := range []struct {
		name     string
		httpOnly bool
	}{{config.Name, true}, {CSRFCookieName, false}} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    "",
			Path:     "/",
			Domain:   config.Domain,
			MaxAge:   -1,
			HttpOnly: c.httpOnly,
			Secure:   config.Secure,
			SameSite: config.SameSite,
		})
	}
}

// SessionIDFromRequest reads the session id from the session cookie, falling
// back to an "Authorization: Bearer <session id>" header for scripted clients.
func SessionIDFromRequest(r *http.Request, cookieName string) string {
	if cookie, err := r.Cookie(cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
