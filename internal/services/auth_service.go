package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/community-vercel/theekadar-admin/internal/auth"
	"github.com/community-vercel/theekadar-admin/internal/backend"
	"github.com/community-vercel/theekadar-admin/internal/models"
	"github.com/community-vercel/theekadar-admin/internal/session"
	pkglogger "github.com/community-vercel/theekadar-admin/pkg/logger"
)

// LoginBackend is the subset of the backend client used by AuthService.
type LoginBackend interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResult, error)
}

// SessionStore is the subset of session.Store used by AuthService.
type SessionStore interface {
	Create(token string, admin models.AdminIdentity, tokenExpiry time.Time) *session.Session
	Delete(id string)
}

// AuthService logs admins in against the backend and manages their sessions.
type AuthService struct {
	backend LoginBackend
	store   SessionStore
	audit   *AuditService
	logger  *slog.Logger
	now     func() time.Time
}

// NewAuthService creates a new AuthService.
func NewAuthService(client *backend.Client, store *session.Store, audit *AuditService, logger *slog.Logger) *AuthService {
	return &AuthService{
		backend: client,
		store:   store,
		audit:   audit,
		logger:  logger,
		now:     time.Now,
	}
}

// Login authenticates with the backend and opens a console session. Only
// admins are admitted; anyone else gets models.ErrForbidden.
func (s *AuthService) Login(ctx context.Context, email, password string) (*session.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	attempt := models.AdminIdentity{Email: email}

	res, err := s.backend.Login(ctx, email, password)
	if err != nil {
		s.audit.Record(ctx, attempt, models.AuditActionLogin, nil, err, nil)
		return nil, err
	}
	if res.Token == "" {
		err := &models.RemoteError{Op: "login", StatusCode: 200, Message: "backend returned no token"}
		s.audit.Record(ctx, attempt, models.AuditActionLogin, nil, err, nil)
		return nil, err
	}

	if res.User.Role != models.RoleAdmin {
		attempt.ID = res.User.ID
		s.audit.Record(ctx, attempt, models.AuditActionLogin, nil, models.ErrForbidden,
			models.AuditMetadata{"role": string(res.User.Role)})
		return nil, models.ErrForbidden
	}

	expiry, err := auth.BackendTokenExpiry(res.Token)
	if err != nil {
		// Opaque tokens are accepted and bounded by the session TTL alone
		s.logger.WarnContext(ctx, "backend token has no readable expiry",
			slog.String("email", pkglogger.SanitizedEmail(email)),
			slog.Any("error", err),
		)
		expiry = time.Time{}
	}
	if !expiry.IsZero() && !expiry.After(s.now()) {
		err := &models.RemoteError{Op: "login", StatusCode: 401, Message: "backend issued an expired token"}
		s.audit.Record(ctx, res.User, models.AuditActionLogin, nil, err, nil)
		return nil, err
	}

	sess := s.store.Create(res.Token, res.User, expiry)
	s.audit.Record(ctx, res.User, models.AuditActionLogin, nil, nil, nil)

	s.logger.InfoContext(ctx, "admin logged in",
		slog.String("admin_id", res.User.ID),
		slog.String("email", pkglogger.SanitizedEmail(email)),
		slog.Time("expires_at", sess.ExpiresAt),
	)
	return sess, nil
}

// Logout ends a session.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) {
	s.store.Delete(sess.ID)
	s.audit.Record(ctx, sess.Admin, models.AuditActionLogout, nil, nil, nil)
}

// Expire ends a session whose backend credential was rejected.
func (s *AuthService) Expire(ctx context.Context, sess *session.Session, cause error) {
	s.store.Delete(sess.ID)

	var re *models.RemoteError
	if errors.As(cause, &re) {
		s.logger.InfoContext(ctx, "session ended by backend",
			slog.String("admin_id", sess.Admin.ID),
			slog.String("op", re.Op),
			slog.Int("status", re.StatusCode),
		)
	}
}
