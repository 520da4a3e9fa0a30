package logger

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// AuditEvent represents an admin action taken through the console
type AuditEvent struct {
	Action        string
	ActorID       string
	ActorEmail    string
	TargetIDs     []string
	IPAddress     string
	Success       bool
	FailureReason string
	Metadata      map[string]interface{}
}

// AuditLogger provides audit logging functionality
type AuditLogger struct {
	logger *slog.Logger
}

// NewAuditLogger creates a new audit logger
func NewAuditLogger(logger *slog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger,
	}
}

// LogConsoleAction writes one audit line. Failed actions are logged at warn.
func (al *AuditLogger) LogConsoleAction(ctx context.Context, event AuditEvent) {
	attrs := []slog.Attr{
		slog.String("audit_type", "console"),
		slog.String("action", event.Action),
		slog.Bool("success", event.Success),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}

	if event.ActorID != "" {
		attrs = append(attrs, slog.String("actor_id", event.ActorID))
	}
	if event.ActorEmail != "" {
		attrs = append(attrs, slog.String("actor_email", SanitizedEmail(event.ActorEmail)))
	}
	if len(event.TargetIDs) > 0 {
		attrs = append(attrs,
			slog.Int("target_count", len(event.TargetIDs)),
			slog.String("target_ids", strings.Join(event.TargetIDs, ",")),
		)
	}
	if event.IPAddress != "" {
		attrs = append(attrs, slog.String("ip_address", event.IPAddress))
	}
	if event.FailureReason != "" {
		attrs = append(attrs, slog.String("failure_reason", event.FailureReason))
	}
	if len(event.Metadata) > 0 {
		attrs = append(attrs, slog.Any("metadata", event.Metadata))
	}

	level := slog.LevelInfo
	if !event.Success {
		level = slog.LevelWarn
	}
	al.logger.LogAttrs(ctx, level, "audit", attrs...)
}
