package services

import (
	"context"
	"testing"

	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAnalyticsService(mb *MockBackend) *AnalyticsService {
	return &AnalyticsService{
		backendFor: func(token string) AnalyticsBackend { return mb },
		logger:     testLogger(),
	}
}

func TestAnalyticsService_Dashboard(t *testing.T) {
	mb := &MockBackend{
		AnalyticsFunc: func(ctx context.Context) (*models.Analytics, error) {
			return &models.Analytics{TotalUsers: 42}, nil
		},
		BroadcastStatsFunc: func(ctx context.Context) (*models.BroadcastStats, error) {
			return &models.BroadcastStats{TotalUsers: 42, UsersWithFCM: 30, FCMCoverage: "71.4%"}, nil
		},
	}

	dash, err := newTestAnalyticsService(mb).Dashboard(context.Background(), newTestSession())

	require.NoError(t, err)
	assert.Equal(t, 42, dash.Analytics.TotalUsers)
	require.NotNil(t, dash.BroadcastStats)
	assert.Equal(t, "71.4%", dash.BroadcastStats.FCMCoverage)
	assert.Equal(t, 2, mb.Calls())
}

func TestAnalyticsService_DashboardToleratesMissingStats(t *testing.T) {
	mb := &MockBackend{
		AnalyticsFunc: func(ctx context.Context) (*models.Analytics, error) {
			return &models.Analytics{TotalUsers: 1}, nil
		},
		BroadcastStatsFunc: func(ctx context.Context) (*models.BroadcastStats, error) {
			return nil, remoteFailure("fetchBroadcastStats")
		},
	}

	dash, err := newTestAnalyticsService(mb).Dashboard(context.Background(), newTestSession())

	require.NoError(t, err)
	assert.Equal(t, 1, dash.Analytics.TotalUsers)
	assert.Nil(t, dash.BroadcastStats)
}

func TestAnalyticsService_DashboardFailsWithoutAnalytics(t *testing.T) {
	mb := &MockBackend{
		AnalyticsFunc: func(ctx context.Context) (*models.Analytics, error) {
			return nil, remoteFailure("fetchAnalytics")
		},
	}

	dash, err := newTestAnalyticsService(mb).Dashboard(context.Background(), newTestSession())

	assert.Nil(t, dash)
	assert.ErrorIs(t, err, models.ErrRemoteOperationFailed)
}
