package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Console actions recorded in the audit trail
const (
	AuditActionLogin          = "login"
	AuditActionLogout         = "logout"
	AuditActionDeleteUser     = "delete_user"
	AuditActionBulkDelete     = "bulk_delete_users"
	AuditActionUpdateUser     = "update_user"
	AuditActionBulkUpdate     = "bulk_update_users"
	AuditActionVerifyWorker   = "verify_worker"
	AuditActionUpdateReview   = "update_review"
	AuditActionDeleteReview   = "delete_review"
	AuditActionBroadcastAll   = "broadcast_all"
	AuditActionBroadcastRoles = "broadcast_roles"
)

// AuditLog is one admin action taken through the console.
type AuditLog struct {
	ID            uuid.UUID     `db:"id"`
	Action        string        `db:"action"`
	ActorID       string        `db:"actor_id"`
	ActorEmail    string        `db:"actor_email"`
	TargetIDs     []string      `db:"target_ids"`
	Success       bool          `db:"success"`
	FailureReason *string       `db:"failure_reason"`
	IPAddress     *string       `db:"ip_address"`
	Metadata      AuditMetadata `db:"metadata"`
	CreatedAt     time.Time     `db:"created_at"`
}

// AuditMetadata holds additional context for audit events
type AuditMetadata map[string]interface{}

// Scan implements sql.Scanner for JSONB
func (am *AuditMetadata) Scan(value interface{}) error {
	if value == nil {
		*am = make(AuditMetadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	var m map[string]interface{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*am = AuditMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (am AuditMetadata) Value() (driver.Value, error) {
	if am == nil {
		return nil, nil
	}
	return json.Marshal(am)
}
