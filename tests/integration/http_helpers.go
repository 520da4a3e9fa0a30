package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/database"
	"github.com/community-vercel/theekadar-admin/internal/handlers"
	middlewareCustom "github.com/community-vercel/theekadar-admin/internal/middleware"
	"github.com/community-vercel/theekadar-admin/internal/repositories"
	"github.com/community-vercel/theekadar-admin/internal/routes"
	"github.com/community-vercel/theekadar-admin/internal/services"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

const (
	AdminEmail    = "admin@theekadar.pk"
	AdminPassword = "AdminPassword123!"
	backendToken  = "backend-admin-token"
)

// FakeBackend is an in-memory stand-in for the Theekadar REST API
type FakeBackend struct {
	Server *httptest.Server

	mu       sync.Mutex
	users    []map[string]interface{}
	profiles []map[string]interface{}
	failNext int // status code for the next mutating call, 0 for none
}

// NewFakeBackend starts a backend holding one admin and three providers
func NewFakeBackend() *FakeBackend {
	fb := &FakeBackend{
		users: []map[string]interface{}{
			{"_id": "u1", "email": "alice@example.com", "role": "worker", "createdAt": "2024-03-01T00:00:00Z"},
			{"_id": "u2", "email": "bob@example.com", "role": "client", "isVerified": true, "createdAt": "2024-03-02T00:00:00Z"},
			{"_id": "u3", "email": "carol@example.com", "role": "thekadar", "createdAt": "2024-03-03T00:00:00Z"},
		},
		profiles: []map[string]interface{}{
			{"userId": map[string]interface{}{"_id": "u1", "email": "alice@example.com"}, "name": "Alice", "city": "Lahore", "verificationStatus": "pending"},
			{"userId": "u3", "name": "Carol Khan", "city": "Karachi", "verificationStatus": "approved"},
		},
	}

	r := chi.NewRouter()
	r.Post("/auth/login", fb.login)
	r.Group(func(r chi.Router) {
		r.Use(fb.requireToken)
		r.Get("/users/all", fb.listUsers)
		r.Delete("/users/{id}", fb.deleteUser)
		r.Post("/users/bulk-delete", fb.bulkDelete)
	})
	fb.Server = httptest.NewServer(r)
	return fb
}

// FailNext makes the next mutating call answer with status
func (fb *FakeBackend) FailNext(status int) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.failNext = status
}

// Close shuts down the fake backend
func (fb *FakeBackend) Close() {
	fb.Server.Close()
}

func (fb *FakeBackend) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+backendToken {
			writeBackendError(w, http.StatusUnauthorized, "Token is not valid")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *FakeBackend) takeFailure() int {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	status := fb.failNext
	fb.failNext = 0
	return status
}

func (fb *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email != AdminEmail || req.Password != AdminPassword {
		writeBackendError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"token": backendToken,
		"user":  map[string]interface{}{"_id": "admin-1", "email": AdminEmail, "name": "Admin", "role": "admin"},
	})
}

func (fb *FakeBackend) listUsers(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"users":         fb.users,
		"profiles":      fb.profiles,
		"verifications": []interface{}{},
		"totalPages":    1,
	})
}

func (fb *FakeBackend) deleteUser(w http.ResponseWriter, r *http.Request) {
	if status := fb.takeFailure(); status != 0 {
		writeBackendError(w, status, "Server error")
		return
	}
	fb.remove(chi.URLParam(r, "id"))
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "User deleted"})
}

func (fb *FakeBackend) bulkDelete(w http.ResponseWriter, r *http.Request) {
	if status := fb.takeFailure(); status != 0 {
		writeBackendError(w, status, "Server error")
		return
	}
	var req struct {
		UserIDs []string `json:"userIds"`
	}
	_ = json.NewDecoder(r.Body).Decode(&req)
	for _, id := range req.UserIDs {
		fb.remove(id)
	}
	pkghttp.WriteJSON(w, http.StatusOK, map[string]interface{}{"deletedCount": len(req.UserIDs)})
}

func (fb *FakeBackend) remove(id string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	kept := fb.users[:0]
	for _, u := range fb.users {
		if u["_id"] != id {
			kept = append(kept, u)
		}
	}
	fb.users = kept
}

func writeBackendError(w http.ResponseWriter, status int, message string) {
	pkghttp.WriteJSON(w, status, map[string]string{"message": message})
}

// TestServer wraps the console router with a fake backend and an optional
// audit database
type TestServer struct {
	Server  *httptest.Server
	Backend *FakeBackend
	Store   *session.Store
	Client  *http.Client

	csrfToken string
}

// NewTestServer wires the console exactly as main does. db may be nil.
func NewTestServer(db *database.DB) *TestServer {
	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
	fb := NewFakeBackend()

	var auditRepo services.AuditLogRepository
	if db != nil {
		auditRepo = repositories.NewAuditLogRepository(db)
	}

	client := backend.NewClient(backend.Config{BaseURL: fb.Server.URL, Timeout: 5 * time.Second}, logger)
	store := session.NewStore(time.Hour)

	auditService := services.NewAuditService(auditRepo, logger)
	authService := services.NewAuthService(client, store, auditService, logger)
	cookies := auth.CookieConfig{Name: "console_session", SameSite: http.SameSiteLaxMode}
	errs := handlers.NewErrorResponder(authService, cookies, logger)

	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cookies, nil, errs),
		Users:      handlers.NewUserHandler(services.NewUserConsoleService(client, auditService, 10, logger), errs),
		Directory:  handlers.NewDirectoryHandler(services.NewDirectoryService(client, logger), errs),
		Reviews:    handlers.NewReviewHandler(services.NewReviewService(client, auditService, logger), errs),
		Broadcasts: handlers.NewBroadcastHandler(services.NewBroadcastService(client, auditService, logger), errs),
		Dashboard:  handlers.NewDashboardHandler(services.NewAnalyticsService(client, logger), errs),
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(middlewareCustom.ClientIP(nil))
	r.Use(middlewareCustom.SecurityHeaders(middlewareCustom.SecurityHeadersConfig{Env: "test"}))
	r.Use(chiMiddleware.Recoverer)

	var health handlers.HealthChecker
	if db != nil {
		health = db
	}
	r.Get("/health", handlers.Health(store, health))
	routes.RegisterRoutes(r, h, store, cookies, routes.Limits{
		Login:   middlewareCustom.RateLimitConfig{RequestsPerMinute: 100},
		Session: middlewareCustom.RateLimitConfig{RequestsPerMinute: 1000},
	}, logger)

	jar, _ := cookiejar.New(nil)
	return &TestServer{
		Server:  httptest.NewServer(r),
		Backend: fb,
		Store:   store,
		Client:  &http.Client{Jar: jar},
	}
}

// Close shuts down the console and the fake backend
func (ts *TestServer) Close() {
	ts.Server.Close()
	ts.Backend.Close()
}

// Login signs in as the fake backend's admin and remembers the CSRF token
func (ts *TestServer) Login() error {
	resp, err := ts.Request(http.MethodPost, "/auth/login", map[string]string{"email": AdminEmail, "password": AdminPassword})
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return fmt.Errorf("login returned %d", resp.StatusCode)
	}

	var body handlers.SessionResponse
	if err := ParseJSONResponse(resp, &body); err != nil {
		return err
	}
	ts.csrfToken = body.CSRFToken
	return nil
}

// Request makes an HTTP request to the console, sending the session cookie
// and CSRF header once logged in
func (ts *TestServer) Request(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if ts.csrfToken != "" {
		req.Header.Set(auth.CSRFHeader, ts.csrfToken)
	}

	return ts.Client.Do(req)
}

// ParseJSONResponse parses JSON response body into target struct
func ParseJSONResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}
