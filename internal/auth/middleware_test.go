package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCookies = CookieConfig{Name: "console_session", Secure: true, SameSite: http.SameSiteLaxMode}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func protected(store SessionGetter) (http.Handler, **session.Session) {
	var seen *session.Session
	h := RequireSession(store, testCookies, discardLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	return h, &seen
}

func TestRequireSession_Cookie(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create("tok", models.AdminIdentity{ID: "a1", Role: models.RoleAdmin}, time.Time{})
	h, seen := protected(store)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: sess.ID})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, sess, *seen)
}

func TestRequireSession_BearerFallback(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create("tok", models.AdminIdentity{ID: "a1"}, time.Time{})
	h, seen := protected(store)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req.Header.Set("Authorization", "Bearer "+sess.ID)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Same(t, sess, *seen)
}

func TestRequireSession_Rejections(t *testing.T) {
	store := session.NewStore(time.Hour)
	expired := store.Create("tok", models.AdminIdentity{ID: "a1"}, time.Now().Add(-time.Second))

	tests := []struct {
		name        string
		cookie      string
		wantCleared bool
	}{
		{"no cookie", "", false},
		{"unknown session", "nope", true},
		{"expired session", expired.ID, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, seen := protected(store)

			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: testCookies.Name, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Nil(t, *seen)
			assert.Equal(t, tt.wantCleared, len(rec.Result().Cookies()) == 2)
		})
	}
}

func TestSetSessionCookies(t *testing.T) {
	store := session.NewStore(time.Hour)
	sess := store.Create("tok", models.AdminIdentity{ID: "a1"}, time.Time{})

	rec := httptest.NewRecorder()
	SetSessionCookies(rec, sess, testCookies)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 2)

	byName := map[string]*http.Cookie{}
	for _, c := range cookies {
		byName[c.Name] = c
	}

	sc := byName[testCookies.Name]
	require.NotNil(t, sc)
	assert.Equal(t, sess.ID, sc.Value)
	assert.True(t, sc.HttpOnly)
	assert.True(t, sc.Secure)
	assert.Equal(t, http.SameSiteLaxMode, sc.SameSite)
	assert.Greater(t, sc.MaxAge, 3500)

	cc := byName[CSRFCookieName]
	require.NotNil(t, cc)
	assert.Equal(t, sess.CSRFToken, cc.Value)
	assert.False(t, cc.HttpOnly)
}

func TestSessionFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Nil(t, SessionFromContext(req.Context()))
}
