package domain

import (
	"time"

	"github.com/google/uuid"
)

type OutboxEventType string

const (
	EventNewRecord    OutboxEventType = "new_record"
	EventEditedRecord OutboxEventType = "edited_record"
)

func (t OutboxEventType) IsValid() bool {
	switch t {
	case EventNewRecord, EventEditedRecord:
		return true
	default:
		return false
	}
}

type OutboxStatus string

// pending transitions to exactly one of sent or failed; both are terminal.
const (
	OutboxPending OutboxStatus = "pending"
	OutboxSent    OutboxStatus = "sent"
	OutboxFailed  OutboxStatus = "failed"
)

// OutboxEntry is one pending notification delivery. At most one row exists
// per (user, record, event); the matcher writes the initial state and the
// worker writes the terminal status, nothing else ever mutates it.
type OutboxEntry struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	UserID         uuid.UUID       `json:"user_id" db:"user_id"`
	RecordID       uuid.UUID       `json:"record_id" db:"record_id"`
	SubscriptionID uuid.UUID       `json:"subscription_id" db:"subscription_id"`
	EventType      OutboxEventType `json:"event_type" db:"event_type"`
	Status         OutboxStatus    `json:"status" db:"status"`
	SentAt         *time.Time      `json:"sent_at,omitempty" db:"sent_at"`
	FailedAt       *time.Time      `json:"failed_at,omitempty" db:"failed_at"`
	ErrorMessage   *string         `json:"error_message,omitempty" db:"error_message"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

// PendingDelivery is an outbox entry joined with the user/record/node fields
// the worker needs to render and address the message.
type PendingDelivery struct {
	OutboxEntry
	UserEmail   string `db:"user_email"`
	UserName    string `db:"user_name"`
	RecordTitle string `db:"record_title"`
	NodeName    string `db:"node_name"`
	NodePath    string `db:"node_path"`
}
