package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type ChangeType string

const (
	ChangeFeature   ChangeType = "feature"
	ChangeFix       ChangeType = "fix"
	ChangeMigration ChangeType = "migration"
	ChangeConfig    ChangeType = "config"
	ChangeOther     ChangeType = "other"
)

func (t ChangeType) IsValid() bool {
	switch t {
	case ChangeFeature, ChangeFix, ChangeMigration, ChangeConfig, ChangeOther:
		return true
	default:
		return false
	}
}

type Impact string

const (
	ImpactLow    Impact = "low"
	ImpactMedium Impact = "medium"
	ImpactHigh   Impact = "high"
)

func (i Impact) IsValid() bool {
	switch i {
	case ImpactLow, ImpactMedium, ImpactHigh:
		return true
	default:
		return false
	}
}

// Rank orders impact levels low < medium < high.
func (i Impact) Rank() int {
	switch i {
	case ImpactLow:
		return 0
	case ImpactMedium:
		return 1
	case ImpactHigh:
		return 2
	default:
		return -1
	}
}

// MeetsThreshold reports whether the impact is at or above the threshold.
// A nil threshold always passes.
func (i Impact) MeetsThreshold(threshold *Impact) bool {
	if threshold == nil {
		return true
	}
	return i.Rank() >= threshold.Rank()
}

type RecordStatus string

const (
	StatusPlanned    RecordStatus = "planned"
	StatusCompleted  RecordStatus = "completed"
	StatusRolledBack RecordStatus = "rolled_back"
	StatusMonitoring RecordStatus = "monitoring"
)

func (s RecordStatus) IsValid() bool {
	switch s {
	case StatusPlanned, StatusCompleted, StatusRolledBack, StatusMonitoring:
		return true
	default:
		return false
	}
}

// ChangeRecord is a dated entry describing a deployment, migration or config
// change, attached to exactly one node. OccurredAt is the "as of" time of the
// change itself, distinct from row creation.
type ChangeRecord struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	NodeID      uuid.UUID      `json:"node_id" db:"node_id"`
	OccurredAt  time.Time      `json:"occurred_at" db:"occurred_at"`
	Title       string         `json:"title" db:"title"`
	Description string         `json:"description" db:"description"`
	Reason      *string        `json:"reason,omitempty" db:"reason"`
	ChangeType  ChangeType     `json:"change_type" db:"change_type"`
	Impact      Impact         `json:"impact" db:"impact"`
	Status      RecordStatus   `json:"status" db:"status"`
	Links       pq.StringArray `json:"links" db:"links"`
	CreatedBy   uuid.UUID      `json:"created_by" db:"created_by"`
	UpdatedBy   *uuid.UUID     `json:"updated_by,omitempty" db:"updated_by"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time     `json:"-" db:"deleted_at"`

	Node *Node `json:"node,omitempty" db:"-"`
}

// RecordSnapshot is the revision payload: the user-editable fields of a
// record at a point in time.
type RecordSnapshot struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Reason      *string      `json:"reason"`
	ChangeType  ChangeType   `json:"change_type"`
	Impact      Impact       `json:"impact"`
	Status      RecordStatus `json:"status"`
	Links       []string     `json:"links"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

func (r *ChangeRecord) Snapshot() RecordSnapshot {
	return RecordSnapshot{
		Title:       r.Title,
		Description: r.Description,
		Reason:      r.Reason,
		ChangeType:  r.ChangeType,
		Impact:      r.Impact,
		Status:      r.Status,
		Links:       r.Links,
		OccurredAt:  r.OccurredAt,
	}
}

type RecordRevision struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	RecordID       uuid.UUID       `json:"record_id" db:"record_id"`
	EditorID       uuid.UUID       `json:"editor_id" db:"editor_id"`
	SnapshotBefore json.RawMessage `json:"snapshot_before" db:"snapshot_before"`
	SnapshotAfter  json.RawMessage `json:"snapshot_after" db:"snapshot_after"`
	SecretAck      *bool           `json:"secret_ack,omitempty" db:"secret_ack"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
}

type CreateRecordInput struct {
	NodeID      uuid.UUID    `json:"node_id" validate:"required"`
	OccurredAt  *time.Time   `json:"occurred_at,omitempty"`
	Title       string       `json:"title" validate:"required,min=1,max=300"`
	Description string       `json:"description" validate:"required,min=1"`
	Reason      *string      `json:"reason,omitempty"`
	ChangeType  ChangeType   `json:"change_type,omitempty"`
	Impact      Impact       `json:"impact,omitempty"`
	Status      RecordStatus `json:"status,omitempty"`
	Links       []string     `json:"links,omitempty"`
	SecretAck   bool         `json:"secret_ack,omitempty"`
}

type UpdateRecordInput struct {
	OccurredAt  *time.Time     `json:"occurred_at,omitempty"`
	Title       *string        `json:"title,omitempty" validate:"omitempty,min=1,max=300"`
	Description *string        `json:"description,omitempty" validate:"omitempty,min=1"`
	Reason      NullableString `json:"reason"`
	ChangeType  *ChangeType    `json:"change_type,omitempty"`
	Impact      *Impact        `json:"impact,omitempty"`
	Status      *RecordStatus  `json:"status,omitempty"`
	Links       []string       `json:"links,omitempty"`
	SecretAck   bool           `json:"secret_ack,omitempty"`
}

// NullableString distinguishes "absent" from "explicitly null" in PATCH
// bodies, so a reason can be cleared without a dedicated endpoint.
type NullableString struct {
	Value *string
	Set   bool
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

// FeedFilter narrows the change-record feed. NodeID with IncludeDescendants
// matches the node's whole subtree via path_ids containment.
type FeedFilter struct {
	From               *time.Time
	To                 *time.Time
	NodeID             *uuid.UUID
	IncludeDescendants bool
	CreatedBy          *uuid.UUID
	ChangeType         *ChangeType
	Impact             *Impact
	Status             *RecordStatus
}
