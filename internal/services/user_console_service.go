package services

import (
	"context"
	"log/slog"

	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/reconcile"
	"github.com/community-vercel/theekadar-admin/internal/session"
)

// UserBackend is the subset of the backend client used by UserConsoleService.
type UserBackend interface {
	ListUsers(ctx context.Context, page, limit int) (*models.UserPage, error)
	DeleteUser(ctx context.Context, userID string) error
	BulkDeleteUsers(ctx context.Context, userIDs []string) (int, []string, error)
	UpdateUser(ctx context.Context, userID string, req backend.UpdateUserRequest) (*backend.UserUpdate, error)
	BulkUpdateUsers(ctx context.Context, userIDs []string, patch models.BulkPatch) (int, error)
	VerifyWorker(ctx context.Context, userID string, status models.VerificationStatus) error
}

// UserConsoleService runs user operations against the backend and, once the
// backend confirms, applies them to the session's engine. A failed remote
// call leaves the engine untouched.
type UserConsoleService struct {
	backendFor func(token string) UserBackend
	audit      *AuditService
	pageSize   int
	logger     *slog.Logger
}

// NewUserConsoleService creates a new UserConsoleService.
func NewUserConsoleService(client *backend.Client, audit *AuditService, pageSize int, logger *slog.Logger) *UserConsoleService {
	return &UserConsoleService{
		backendFor: func(token string) UserBackend { return client.WithToken(token) },
		audit:      audit,
		pageSize:   pageSize,
		logger:     logger,
	}
}

// LoadPage fetches one page of users and replaces the engine's collections.
func (s *UserConsoleService) LoadPage(ctx context.Context, sess *session.Session, page int) error {
	if page < 1 {
		page = 1
	}

	result, err := s.backendFor(sess.Token).ListUsers(ctx, page, s.pageSize)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch users", slog.Int("page", page), slog.Any("error", err))
		return err
	}

	sess.Engine.Load(*result)
	sess.SetPage(page, result.TotalPages)
	return nil
}

// DeleteUser removes one user remotely, then locally.
func (s *UserConsoleService) DeleteUser(ctx context.Context, sess *session.Session, userID string) error {
	if userID == "" {
		return models.InvalidArgument("user id is required")
	}

	err := s.backendFor(sess.Token).DeleteUser(ctx, userID)
	s.audit.Record(ctx, sess.Admin, models.AuditActionDeleteUser, []string{userID}, err, nil)
	if err != nil {
		return err
	}

	sess.Engine.ApplyDelete(userID)
	return nil
}

// BulkDelete removes many users. If the backend lists the ids it removed,
// only those leave the engine; otherwise every requested id does.
func (s *UserConsoleService) BulkDelete(ctx context.Context, sess *session.Session, userIDs []string) (*models.BulkDeleteResult, error) {
	userIDs = dedupe(userIDs)
	if len(userIDs) == 0 {
		return nil, models.InvalidArgument("select at least one user")
	}

	count, deleted, err := s.backendFor(sess.Token).BulkDeleteUsers(ctx, userIDs)
	s.audit.Record(ctx, sess.Admin, models.AuditActionBulkDelete, userIDs, err,
		models.AuditMetadata{"deleted_count": count})
	if err != nil {
		return nil, err
	}

	if deleted != nil {
		sess.Engine.ApplyBulkDelete(deleted)
	} else {
		sess.Engine.ApplyBulkDelete(userIDs)
	}

	result := &models.BulkDeleteResult{
		Requested: len(userIDs),
		Deleted:   count,
		Mismatch:  count != len(userIDs),
	}
	if result.Mismatch {
		s.logger.WarnContext(ctx, "bulk delete count mismatch",
			slog.Int("requested", result.Requested),
			slog.Int("deleted", result.Deleted),
		)
	}
	return result, nil
}

// UpdateUser edits one user's role and verification state. A role is
// required; verification status is never sent for clients.
func (s *UserConsoleService) UpdateUser(ctx context.Context, sess *session.Session, userID string, patch models.UserPatch) error {
	if userID == "" {
		return models.InvalidArgument("user id is required")
	}
	if patch.Role == nil {
		return models.InvalidArgument("role is required")
	}
	if !patch.Role.Valid() {
		return models.InvalidArgument("unknown role " + string(*patch.Role))
	}
	if *patch.Role == models.RoleClient {
		patch.VerificationStatus = nil
	}
	if patch.VerificationStatus != nil && !patch.VerificationStatus.Valid() {
		return models.InvalidArgument("unknown verification status " + string(*patch.VerificationStatus))
	}

	_, err := s.backendFor(sess.Token).UpdateUser(ctx, userID, backend.UpdateUserRequest{
		Role:               patch.Role,
		IsVerified:         patch.IsVerified,
		VerificationStatus: patch.VerificationStatus,
	})
	s.audit.Record(ctx, sess.Admin, models.AuditActionUpdateUser, []string{userID}, err, patchMetadata(patch))
	if err != nil {
		return err
	}

	sess.Engine.ApplyUpdate(userID, patch)
	return nil
}

// BulkUpdate applies the same verification change to many users.
func (s *UserConsoleService) BulkUpdate(ctx context.Context, sess *session.Session, userIDs []string, patch models.BulkPatch) (*models.BulkUpdateResult, error) {
	userIDs = dedupe(userIDs)
	if err := reconcile.ValidateBulk(userIDs, patch); err != nil {
		return nil, err
	}

	count, err := s.backendFor(sess.Token).BulkUpdateUsers(ctx, userIDs, patch)
	s.audit.Record(ctx, sess.Admin, models.AuditActionBulkUpdate, userIDs, err, patchMetadata(patch.UserPatch()))
	if err != nil {
		return nil, err
	}

	if err := sess.Engine.ApplyBulkUpdate(userIDs, patch); err != nil {
		return nil, err
	}

	result := &models.BulkUpdateResult{
		Requested: len(userIDs),
		Updated:   count,
		Mismatch:  count != len(userIDs),
	}
	if result.Mismatch {
		s.logger.WarnContext(ctx, "bulk update count mismatch",
			slog.Int("requested", result.Requested),
			slog.Int("updated", result.Updated),
		)
	}
	return result, nil
}

// VerifyWorker approves or rejects a provider's submitted documents.
func (s *UserConsoleService) VerifyWorker(ctx context.Context, sess *session.Session, userID string, status models.VerificationStatus) error {
	if userID == "" {
		return models.InvalidArgument("user id is required")
	}
	if !status.Decisive() {
		return models.InvalidArgument("status must be approved or rejected")
	}

	err := s.backendFor(sess.Token).VerifyWorker(ctx, userID, status)
	s.audit.Record(ctx, sess.Admin, models.AuditActionVerifyWorker, []string{userID}, err,
		models.AuditMetadata{"status": string(status)})
	if err != nil {
		return err
	}

	sess.Engine.ApplyUpdate(userID, models.UserPatch{VerificationStatus: &status})
	return nil
}

func patchMetadata(p models.UserPatch) models.AuditMetadata {
	md := models.AuditMetadata{}
	if p.Role != nil {
		md["role"] = string(*p.Role)
	}
	if p.IsVerified != nil {
		md["is_verified"] = *p.IsVerified
	}
	if p.VerificationStatus != nil {
		md["verification_status"] = string(*p.VerificationStatus)
	}
	return md
}

// dedupe drops empty and repeated ids, keeping first occurrences in order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
