package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
)

// BroadcastBackend is the subset of the backend client used by BroadcastService.
type BroadcastBackend interface {
	Broadcast(ctx context.Context, b models.Broadcast) (*models.BroadcastDelivery, error)
	BroadcastStats(ctx context.Context) (*models.BroadcastStats, error)
}

// BroadcastService sends push notifications to many users.
type BroadcastService struct {
	backendFor func(token string) BroadcastBackend
	audit      *AuditService
	logger     *slog.Logger
}

// NewBroadcastService creates a new BroadcastService.
func NewBroadcastService(client *backend.Client, audit *AuditService, logger *slog.Logger) *BroadcastService {
	return &BroadcastService{
		backendFor: func(token string) BroadcastBackend { return client.WithToken(token) },
		audit:      audit,
		logger:     logger,
	}
}

// BroadcastAll notifies every user. An empty type defaults to general.
func (s *BroadcastService) BroadcastAll(ctx context.Context, sess *session.Session, title, body, notificationType string) (*models.BroadcastDelivery, error) {
	b, err := newBroadcast(title, body)
	if err != nil {
		return nil, err
	}
	b.Type = strings.TrimSpace(notificationType)
	if b.Type == "" {
		b.Type = models.NotificationTypeGeneral
	}

	delivery, err := s.backendFor(sess.Token).Broadcast(ctx, b)
	s.audit.Record(ctx, sess.Admin, models.AuditActionBroadcastAll, nil, err, deliveryMetadata(b, delivery))
	return delivery, err
}

// BroadcastToRoles notifies the users holding any of roles.
func (s *BroadcastService) BroadcastToRoles(ctx context.Context, sess *session.Session, title, body string, roles []models.Role) (*models.BroadcastDelivery, error) {
	b, err := newBroadcast(title, body)
	if err != nil {
		return nil, err
	}

	seen := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.Valid() {
			return nil, models.InvalidArgument("unknown role " + string(r))
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		b.Roles = append(b.Roles, r)
	}
	if len(b.Roles) == 0 {
		return nil, models.InvalidArgument("select at least one role")
	}
	b.Type = models.NotificationTypeRoleSpecific

	delivery, err := s.backendFor(sess.Token).Broadcast(ctx, b)
	s.audit.Record(ctx, sess.Admin, models.AuditActionBroadcastRoles, nil, err, deliveryMetadata(b, delivery))
	return delivery, err
}

// Stats reports push-notification coverage.
func (s *BroadcastService) Stats(ctx context.Context, sess *session.Session) (*models.BroadcastStats, error) {
	return s.backendFor(sess.Token).BroadcastStats(ctx)
}

func newBroadcast(title, body string) (models.Broadcast, error) {
	b := models.Broadcast{
		Title: strings.TrimSpace(title),
		Body:  strings.TrimSpace(body),
	}
	if b.Title == "" || b.Body == "" {
		return b, models.InvalidArgument("title and body are required")
	}
	return b, nil
}

func deliveryMetadata(b models.Broadcast, d *models.BroadcastDelivery) models.AuditMetadata {
	md := models.AuditMetadata{"title": b.Title, "type": b.Type}
	if len(b.Roles) > 0 {
		roles := make([]string, 0, len(b.Roles))
		for _, r := range b.Roles {
			roles = append(roles, string(r))
		}
		md["roles"] = roles
	}
	if d != nil {
		md["success_count"] = d.SuccessCount
		md["failure_count"] = d.FailureCount
	}
	return md
}
