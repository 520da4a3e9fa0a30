package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
)

// DirectoryBackend is the subset of the backend client used by DirectoryService.
type DirectoryBackend interface {
	SearchByLocation(ctx context.Context, city, town string) ([]models.Aggregate, error)
	PendingVerifications(ctx context.Context) ([]models.Aggregate, error)
}

// DirectoryService answers read-only lookups that bypass the engine.
type DirectoryService struct {
	backendFor func(token string) DirectoryBackend
	logger     *slog.Logger
}

// NewDirectoryService creates a new DirectoryService.
func NewDirectoryService(client *backend.Client, logger *slog.Logger) *DirectoryService {
	return &DirectoryService{
		backendFor: func(token string) DirectoryBackend { return client.WithToken(token) },
		logger:     logger,
	}
}

// SearchByLocation finds providers by city and/or town. At least one is required.
func (s *DirectoryService) SearchByLocation(ctx context.Context, sess *session.Session, city, town string) ([]models.Aggregate, error) {
	city = strings.TrimSpace(city)
	town = strings.TrimSpace(town)
	if city == "" && town == "" {
		return nil, models.InvalidArgument("enter a city or town")
	}

	return s.backendFor(sess.Token).SearchByLocation(ctx, city, town)
}

// PendingVerifications lists providers waiting for document review.
func (s *DirectoryService) PendingVerifications(ctx context.Context, sess *session.Session) ([]models.Aggregate, error) {
	return s.backendFor(sess.Token).PendingVerifications(ctx)
}
