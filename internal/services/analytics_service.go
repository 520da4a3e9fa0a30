package services

import (
	"context"
	"log/slog"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	"golang.org/x/sync/errgroup"
)

// AnalyticsBackend is the subset of the backend client used by AnalyticsService.
type AnalyticsBackend interface {
	Analytics(ctx context.Context) (*models.Analytics, error)
	BroadcastStats(ctx context.Context) (*models.BroadcastStats, error)
}

// AnalyticsService aggregates data for the dashboard.
type AnalyticsService struct {
	backendFor func(token string) AnalyticsBackend
	logger     *slog.Logger
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(client *backend.Client, logger *slog.Logger) *AnalyticsService {
	return &AnalyticsService{
		backendFor: func(token string) AnalyticsBackend { return client.WithToken(token) },
		logger:     logger,
	}
}

// Dashboard fetches analytics and broadcast coverage concurrently. Missing
// broadcast stats leave BroadcastStats nil instead of failing the dashboard.
func (s *AnalyticsService) Dashboard(ctx context.Context, sess *session.Session) (*models.Dashboard, error) {
	be := s.backendFor(sess.Token)
	dash := &models.Dashboard{}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		analytics, err := be.Analytics(gctx)
		if err != nil {
			return err
		}
		dash.Analytics = analytics
		return nil
	})

	g.Go(func() error {
		stats, err := be.BroadcastStats(gctx)
		if err != nil {
			s.logger.WarnContext(ctx, "dashboard: broadcast stats unavailable", slog.Any("error", err))
			return nil
		}
		dash.BroadcastStats = stats
		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "dashboard: failed to fetch analytics", slog.Any("error", err))
		return nil, err
	}

	return dash, nil
}
