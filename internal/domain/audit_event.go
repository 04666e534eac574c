package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type AuditKind string

const (
	AuditNodeCreate          AuditKind = "node_create"
	AuditNodeRename          AuditKind = "node_rename"
	AuditNodeMove            AuditKind = "node_move"
	AuditNodeRestrict        AuditKind = "node_restrict"
	AuditNodeDelete          AuditKind = "node_delete"
	AuditRecordCreate        AuditKind = "record_create"
	AuditRecordEdit          AuditKind = "record_edit"
	AuditRecordDelete        AuditKind = "record_delete"
	AuditSubscriptionAdd     AuditKind = "subscription_add"
	AuditSubscriptionRemove  AuditKind = "subscription_remove"
	AuditAttachmentUpload    AuditKind = "attachment_upload"
	AuditAttachmentDelete    AuditKind = "attachment_delete"
	AuditLoginSuccess        AuditKind = "login_success"
	AuditLoginFailure        AuditKind = "login_failure"
	AuditNotificationSent    AuditKind = "notification_sent"
	AuditNotificationFailure AuditKind = "notification_failure"
)

type AuditEvent struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Kind      AuditKind       `json:"kind" db:"kind"`
	ActorID   *uuid.UUID      `json:"actor_id,omitempty" db:"actor_id"`
	Metadata  json.RawMessage `json:"metadata,omitempty" db:"metadata"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`

	ActorEmail *string `json:"actor_email,omitempty" db:"actor_email"`
}

type AuditFilter struct {
	Kind    *AuditKind
	ActorID *uuid.UUID
	From    *time.Time
	To      *time.Time
}
