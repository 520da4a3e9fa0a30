package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/services"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

// TestCookies is the cookie configuration used by handler tests
var TestCookies = auth.CookieConfig{Name: "console_session", SameSite: http.SameSiteLaxMode}

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// NewTestSession returns a session whose engine holds one loaded page:
// u1 pending worker, u2 verified client, u3 approved thekadar.
func NewTestSession() *session.Session {
	store := session.NewStore(time.Hour)
	sess := store.Create("backend-token", models.AdminIdentity{ID: "admin-1", Email: "admin@theekadar.pk", Role: models.RoleAdmin}, time.Time{})

	sess.Engine.Load(models.UserPage{
		Users: []models.UserRecord{
			{ID: "u1", Email: "alice@x.com", Role: models.RoleWorker},
			{ID: "u2", Email: "bob@client.io", Role: models.RoleClient, IsVerified: true},
			{ID: "u3", Email: "carol@x.com", Role: models.RoleThekadar},
		},
		Profiles: []models.ProfileRecord{
			{UserID: "u1", Name: "Alice", City: "Lahore", VerificationStatus: models.VerificationPending},
			{UserID: "u3", Name: "Carol Khan", City: "Karachi", VerificationStatus: models.VerificationApproved},
		},
		Verifications: []models.VerificationRecord{
			{UserID: "u1", Status: models.VerificationPending},
		},
		TotalPages: 2,
	})
	sess.SetPage(1, 2)
	return sess
}

// WithSession adds a console session to request context
func WithSession(req *http.Request, sess *session.Session) *http.Request {
	return req.WithContext(auth.WithSession(req.Context(), sess))
}

// WithChiRouteContext adds chi URL parameters to request context for testing
func WithChiRouteContext(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target interface{}) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) {
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
}

// RemoteFailure builds a backend error with the given status
func RemoteFailure(status int, message string) error {
	return &models.RemoteError{Op: "test", StatusCode: status, Message: message}
}

// MockSessionExpirer records expired sessions
type MockSessionExpirer struct {
	mu      sync.Mutex
	Expired []*session.Session
}

func (m *MockSessionExpirer) Expire(ctx context.Context, sess *session.Session, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Expired = append(m.Expired, sess)
}

// NewTestErrorResponder creates an ErrorResponder that discards logs
func NewTestErrorResponder(expirer SessionExpirer) *ErrorResponder {
	if expirer == nil {
		expirer = &MockSessionExpirer{}
	}
	return NewErrorResponder(expirer, TestCookies, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// MockAuthService implements AuthServiceInterface for testing
type MockAuthService struct {
	LoginFunc  func(ctx context.Context, email, password string) (*session.Session, error)
	LogoutFunc func(ctx context.Context, sess *session.Session)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	if m.LoginFunc == nil {
		return nil, RemoteFailure(http.StatusUnauthorized, "Invalid credentials")
	}
	return m.LoginFunc(ctx, email, password)
}

func (m *MockAuthService) Logout(ctx context.Context, sess *session.Session) {
	if m.LogoutFunc != nil {
		m.LogoutFunc(ctx, sess)
	}
}

// MockUserConsoleService implements UserConsoleService for testing
type MockUserConsoleService struct {
	LoadPageFunc     func(ctx context.Context, sess *session.Session, page int) error
	DeleteUserFunc   func(ctx context.Context, sess *session.Session, userID string) error
	BulkDeleteFunc   func(ctx context.Context, sess *session.Session, userIDs []string) (*models.BulkDeleteResult, error)
	UpdateUserFunc   func(ctx context.Context, sess *session.Session, userID string, patch models.UserPatch) error
	BulkUpdateFunc   func(ctx context.Context, sess *session.Session, userIDs []string, patch models.BulkPatch) (*models.BulkUpdateResult, error)
	VerifyWorkerFunc func(ctx context.Context, sess *session.Session, userID string, status models.VerificationStatus) error
}

func (m *MockUserConsoleService) LoadPage(ctx context.Context, sess *session.Session, page int) error {
	if m.LoadPageFunc == nil {
		sess.SetPage(page, 2)
		return nil
	}
	return m.LoadPageFunc(ctx, sess, page)
}

func (m *MockUserConsoleService) DeleteUser(ctx context.Context, sess *session.Session, userID string) error {
	if m.DeleteUserFunc == nil {
		sess.Engine.ApplyDelete(userID)
		return nil
	}
	return m.DeleteUserFunc(ctx, sess, userID)
}

func (m *MockUserConsoleService) BulkDelete(ctx context.Context, sess *session.Session, userIDs []string) (*models.BulkDeleteResult, error) {
	if m.BulkDeleteFunc == nil {
		sess.Engine.ApplyBulkDelete(userIDs)
		return &models.BulkDeleteResult{Requested: len(userIDs), Deleted: len(userIDs)}, nil
	}
	return m.BulkDeleteFunc(ctx, sess, userIDs)
}

func (m *MockUserConsoleService) UpdateUser(ctx context.Context, sess *session.Session, userID string, patch models.UserPatch) error {
	if m.UpdateUserFunc == nil {
		sess.Engine.ApplyUpdate(userID, patch)
		return nil
	}
	return m.UpdateUserFunc(ctx, sess, userID, patch)
}

func (m *MockUserConsoleService) BulkUpdate(ctx context.Context, sess *session.Session, userIDs []string, patch models.BulkPatch) (*models.BulkUpdateResult, error) {
	if m.BulkUpdateFunc == nil {
		return &models.BulkUpdateResult{Requested: len(userIDs), Updated: len(userIDs)}, sess.Engine.ApplyBulkUpdate(userIDs, patch)
	}
	return m.BulkUpdateFunc(ctx, sess, userIDs, patch)
}

func (m *MockUserConsoleService) VerifyWorker(ctx context.Context, sess *session.Session, userID string, status models.VerificationStatus) error {
	if m.VerifyWorkerFunc == nil {
		sess.Engine.ApplyUpdate(userID, models.UserPatch{VerificationStatus: &status})
		return nil
	}
	return m.VerifyWorkerFunc(ctx, sess, userID, status)
}

// MockDirectoryService implements DirectoryService for testing
type MockDirectoryService struct {
	SearchByLocationFunc     func(ctx context.Context, sess *session.Session, city, town string) ([]models.Aggregate, error)
	PendingVerificationsFunc func(ctx context.Context, sess *session.Session) ([]models.Aggregate, error)
}

func (m *MockDirectoryService) SearchByLocation(ctx context.Context, sess *session.Session, city, town string) ([]models.Aggregate, error) {
	if m.SearchByLocationFunc == nil {
		return nil, nil
	}
	return m.SearchByLocationFunc(ctx, sess, city, town)
}

func (m *MockDirectoryService) PendingVerifications(ctx context.Context, sess *session.Session) ([]models.Aggregate, error) {
	if m.PendingVerificationsFunc == nil {
		return nil, nil
	}
	return m.PendingVerificationsFunc(ctx, sess)
}

// MockReviewService implements ReviewService for testing. Filter and
// Summary use the real implementation.
type MockReviewService struct {
	ListFunc   func(ctx context.Context, sess *session.Session, page, limit int) (*models.ReviewPage, error)
	UpdateFunc func(ctx context.Context, sess *session.Session, reviewID string, rating int, comment string) error
	DeleteFunc func(ctx context.Context, sess *session.Session, reviewID string) error

	real services.ReviewService
}

func (m *MockReviewService) List(ctx context.Context, sess *session.Session, page, limit int) (*models.ReviewPage, error) {
	if m.ListFunc == nil {
		return &models.ReviewPage{Page: 1, Pages: 1}, nil
	}
	return m.ListFunc(ctx, sess, page, limit)
}

func (m *MockReviewService) Update(ctx context.Context, sess *session.Session, reviewID string, rating int, comment string) error {
	if m.UpdateFunc == nil {
		return nil
	}
	return m.UpdateFunc(ctx, sess, reviewID, rating, comment)
}

func (m *MockReviewService) Delete(ctx context.Context, sess *session.Session, reviewID string) error {
	if m.DeleteFunc == nil {
		return nil
	}
	return m.DeleteFunc(ctx, sess, reviewID)
}

func (m *MockReviewService) Filter(reviews []models.Review, term string, rating int) []models.Review {
	return m.real.Filter(reviews, term, rating)
}

func (m *MockReviewService) Summary(reviews []models.Review) models.ReviewSummary {
	return m.real.Summary(reviews)
}

// MockBroadcastService implements BroadcastService for testing
type MockBroadcastService struct {
	BroadcastAllFunc     func(ctx context.Context, sess *session.Session, title, body, notificationType string) (*models.BroadcastDelivery, error)
	BroadcastToRolesFunc func(ctx context.Context, sess *session.Session, title, body string, roles []models.Role) (*models.BroadcastDelivery, error)
	StatsFunc            func(ctx context.Context, sess *session.Session) (*models.BroadcastStats, error)
}

func (m *MockBroadcastService) BroadcastAll(ctx context.Context, sess *session.Session, title, body, notificationType string) (*models.BroadcastDelivery, error) {
	if m.BroadcastAllFunc == nil {
		return &models.BroadcastDelivery{Message: "sent"}, nil
	}
	return m.BroadcastAllFunc(ctx, sess, title, body, notificationType)
}

func (m *MockBroadcastService) BroadcastToRoles(ctx context.Context, sess *session.Session, title, body string, roles []models.Role) (*models.BroadcastDelivery, error) {
	if m.BroadcastToRolesFunc == nil {
		return &models.BroadcastDelivery{Message: "sent"}, nil
	}
	return m.BroadcastToRolesFunc(ctx, sess, title, body, roles)
}

func (m *MockBroadcastService) Stats(ctx context.Context, sess *session.Session) (*models.BroadcastStats, error) {
	if m.StatsFunc == nil {
		return &models.BroadcastStats{}, nil
	}
	return m.StatsFunc(ctx, sess)
}

// MockAnalyticsService implements AnalyticsService for testing
type MockAnalyticsService struct {
	DashboardFunc func(ctx context.Context, sess *session.Session) (*models.Dashboard, error)
}

func (m *MockAnalyticsService) Dashboard(ctx context.Context, sess *session.Session) (*models.Dashboard, error) {
	if m.DashboardFunc == nil {
		return &models.Dashboard{Analytics: &models.Analytics{}}, nil
	}
	return m.DashboardFunc(ctx, sess)
}
