package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
)

// MockBackend implements every *Backend interface for testing
type MockBackend struct {
	LoginFunc                func(ctx context.Context, email, password string) (*backend.LoginResult, error)
	ListUsersFunc            func(ctx context.Context, page, limit int) (*models.UserPage, error)
	DeleteUserFunc           func(ctx context.Context, userID string) error
	BulkDeleteUsersFunc      func(ctx context.Context, userIDs []string) (int, []string, error)
	UpdateUserFunc           func(ctx context.Context, userID string, req backend.UpdateUserRequest) (*backend.UserUpdate, error)
	BulkUpdateUsersFunc      func(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error)
	VerifyWorkerFunc         func(ctx context.Context, userID string, status models.VerificationStatus) error
	SearchByLocationFunc     func(ctx context.Context, city, town string) ([]models.Aggregate, error)
	PendingVerificationsFunc func(ctx context.Context) ([]models.Aggregate, error)
	ListReviewsFunc          func(ctx context.Context, page, limit int) (*models.ReviewPage, error)
	UpdateReviewFunc         func(ctx context.Context, reviewID string, upd backend.ReviewUpdate) error
	DeleteReviewFunc         func(ctx context.Context, reviewID string) error
	BroadcastFunc            func(ctx context.Context, b models.Broadcast) (*models.BroadcastDelivery, error)
	BroadcastStatsFunc       func(ctx context.Context) (*models.BroadcastStats, error)
	AnalyticsFunc            func(ctx context.Context) (*models.Analytics, error)

	mu    sync.Mutex
	calls int
}

func (m *MockBackend) called() {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
}

// Calls returns how many backend methods were invoked.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockBackend) Login(ctx context.Context, email, password string) (*backend.LoginResult, error) {
	m.called()
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, email, password)
	}
	return nil, &models.RemoteError{Op: "login", StatusCode: 401, Message: "Invalid credentials"}
}

func (m *MockBackend) ListUsers(ctx context.Context, page, limit int) (*models.UserPage, error) {
	m.called()
	if m.ListUsersFunc != nil {
		return m.ListUsersFunc(ctx, page, limit)
	}
	return &models.UserPage{TotalPages: 1}, nil
}

func (m *MockBackend) DeleteUser(ctx context.Context, userID string) error {
	m.called()
	if m.DeleteUserFunc != nil {
		return m.DeleteUserFunc(ctx, userID)
	}
	return nil
}

func (m *MockBackend) BulkDeleteUsers(ctx context.Context, userIDs []string) (int, []string, error) {
	m.called()
	if m.BulkDeleteUsersFunc != nil {
		return m.BulkDeleteUsersFunc(ctx, userIDs)
	}
	return len(userIDs), nil, nil
}

func (m *MockBackend) UpdateUser(ctx context.Context, userID string, req backend.UpdateUserRequest) (*backend.UserUpdate, error) {
	m.called()
	if m.UpdateUserFunc != nil {
		return m.UpdateUserFunc(ctx, userID, req)
	}
	return &backend.UserUpdate{}, nil
}

func (m *MockBackend) BulkUpdateUsers(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error) {
	m.called()
	if m.BulkUpdateUsersFunc != nil {
		return m.BulkUpdateUsersFunc(ctx, userIDs, patch)
	}
	return len(userIDs), nil
}

func (m *MockBackend) VerifyWorker(ctx context.Context, userID string, status models.VerificationStatus) error {
	m.called()
	if m.VerifyWorkerFunc != nil {
		return m.VerifyWorkerFunc(ctx, userID, status)
	}
	return nil
}

func (m *MockBackend) SearchByLocation(ctx context.Context, city, town string) ([]models.Aggregate, error) {
	m.called()
	if m.SearchByLocationFunc != nil {
		return m.SearchByLocationFunc(ctx, city, town)
	}
	return []models.Aggregate{}, nil
}

func (m *MockBackend) PendingVerifications(ctx context.Context) ([]models.Aggregate, error) {
	m.called()
	if m.PendingVerificationsFunc != nil {
		return m.PendingVerificationsFunc(ctx)
	}
	return []models.Aggregate{}, nil
}

func (m *MockBackend) ListReviews(ctx context.Context, page, limit int) (*models.ReviewPage, error) {
	m.called()
	if m.ListReviewsFunc != nil {
		return m.ListReviewsFunc(ctx, page, limit)
	}
	return &models.ReviewPage{Page: page, Limit: limit, Pages: 1}, nil
}

func (m *MockBackend) UpdateReview(ctx context.Context, reviewID string, upd backend.ReviewUpdate) error {
	m.called()
	if m.UpdateReviewFunc != nil {
		return m.UpdateReviewFunc(ctx, reviewID, upd)
	}
	return nil
}

func (m *MockBackend) DeleteReview(ctx context.Context, reviewID string) error {
	m.called()
	if m.DeleteReviewFunc != nil {
		return m.DeleteReviewFunc(ctx, reviewID)
	}
	return nil
}

func (m *MockBackend) Broadcast(ctx context.Context, b models.Broadcast) (*models.BroadcastDelivery, error) {
	m.called()
	if m.BroadcastFunc != nil {
		return m.BroadcastFunc(ctx, b)
	}
	return &models.BroadcastDelivery{Message: "sent"}, nil
}

func (m *MockBackend) BroadcastStats(ctx context.Context) (*models.BroadcastStats, error) {
	m.called()
	if m.BroadcastStatsFunc != nil {
		return m.BroadcastStatsFunc(ctx)
	}
	return &models.BroadcastStats{}, nil
}

func (m *MockBackend) Analytics(ctx context.Context) (*models.Analytics, error) {
	m.called()
	if m.AnalyticsFunc != nil {
		return m.AnalyticsFunc(ctx)
	}
	return &models.Analytics{}, nil
}

// MockAuditLogRepository implements AuditLogRepository for testing
type MockAuditLogRepository struct {
	CreateFunc func(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)

	mu      sync.Mutex
	Entries []*models.AuditLog
}

func (m *MockAuditLogRepository) Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	m.mu.Lock()
	m.Entries = append(m.Entries, log)
	m.mu.Unlock()
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, log)
	}
	return log, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testAdmin = models.AdminIdentity{ID: "admin-1", Email: "admin@theekadar.pk", Role: models.RoleAdmin}

// newTestSession returns a session whose engine holds three users:
// u1 worker with a pending verification, u2 verified client, u3 thekadar
// with an approved profile.
func newTestSession() *session.Session {
	store := session.NewStore(time.Hour)
	sess := store.Create("tok-test", testAdmin, time.Time{})

	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	sess.Engine.Load(models.UserPage{
		Users: []models.UserRecord{
			{ID: "u1", Email: "alice@x.com", Role: models.RoleWorker, CreatedAt: base},
			{ID: "u2", Email: "bob@client.io", Role: models.RoleClient, IsVerified: true, CreatedAt: base.Add(time.Hour)},
			{ID: "u3", Email: "carol@x.com", Role: models.RoleThekadar, CreatedAt: base.Add(2 * time.Hour)},
		},
		Profiles: []models.ProfileRecord{
			{UserID: "u1", Name: "Alice", VerificationStatus: models.VerificationPending},
			{UserID: "u3", Name: "Carol Khan", VerificationStatus: models.VerificationApproved},
		},
		Verifications: []models.VerificationRecord{
			{UserID: "u1", Status: models.VerificationPending},
		},
		TotalPages: 1,
	})
	return sess
}

func remoteFailure(op string) error {
	return &models.RemoteError{Op: op, StatusCode: 500, Message: "Server error"}
}
