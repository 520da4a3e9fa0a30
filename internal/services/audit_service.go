package services

import (
	"context"
	"log/slog"

	"github.com/community-vercel/theekadar-admin/internal/models"
	pkghttp "github.com/community-vercel/theekadar-admin/pkg/http"
	pkglogger "github.com/community-vercel/theekadar-admin/pkg/logger"
)

// AuditLogRepository persists audit rows.
type AuditLogRepository interface {
	Create(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
}

// AuditService records console actions with a dual-write pattern: a slog
// audit line always, and a database row when a repository is configured.
type AuditService struct {
	repo   AuditLogRepository
	audit  *pkglogger.AuditLogger
	logger *slog.Logger
}

// NewAuditService creates an AuditService. repo may be nil, in which case
// only the log line is written.
func NewAuditService(repo AuditLogRepository, logger *slog.Logger) *AuditService {
	return &AuditService{
		repo:   repo,
		audit:  pkglogger.NewAuditLogger(logger),
		logger: logger,
	}
}

// Record writes one audit entry. opErr nil means the action succeeded.
// Persistence failures are logged and never returned.
func (s *AuditService) Record(ctx context.Context, actor models.AdminIdentity, action string, targetIDs []string, opErr error, metadata models.AuditMetadata) {
	entry := &models.AuditLog{
		Action:     action,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		TargetIDs:  targetIDs,
		Success:    opErr == nil,
		Metadata:   metadata,
	}
	if opErr != nil {
		reason := opErr.Error()
		entry.FailureReason = &reason
	}
	if ip := pkghttp.ClientIPFromContext(ctx); ip != "" {
		entry.IPAddress = &ip
	}

	event := pkglogger.AuditEvent{
		Action:     action,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		TargetIDs:  targetIDs,
		Success:    entry.Success,
		Metadata:   metadata,
	}
	if entry.FailureReason != nil {
		event.FailureReason = *entry.FailureReason
	}
	if entry.IPAddress != nil {
		event.IPAddress = *entry.IPAddress
	}
	s.audit.LogConsoleAction(ctx, event)

	if s.repo == nil {
		return
	}

	// Not critical: the action already happened on the backend
	if _, err := s.repo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to persist audit log",
			slog.String("action", action),
			slog.Any("error", err),
		)
	}
}
