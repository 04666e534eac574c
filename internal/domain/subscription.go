package domain

import (
	"time"

	"github.com/google/uuid"
)

type SubscriptionMode string

const (
	SubscriptionImmediate SubscriptionMode = "immediate"
	SubscriptionDigest    SubscriptionMode = "digest"
)

func (m SubscriptionMode) IsValid() bool {
	switch m {
	case SubscriptionImmediate, SubscriptionDigest:
		return true
	default:
		return false
	}
}

// Subscription registers a user's interest in a node's change records.
// Unique per (user, node). A nil ImpactThreshold means no impact filter.
type Subscription struct {
	ID                 uuid.UUID        `json:"id" db:"id"`
	UserID             uuid.UUID        `json:"user_id" db:"user_id"`
	NodeID             uuid.UUID        `json:"node_id" db:"node_id"`
	IncludeDescendants bool             `json:"include_descendants" db:"include_descendants"`
	NotifyOnEdit       bool             `json:"notify_on_edit" db:"notify_on_edit"`
	Mode               SubscriptionMode `json:"mode" db:"mode"`
	ImpactThreshold    *Impact          `json:"impact_threshold,omitempty" db:"impact_threshold"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at" db:"updated_at"`

	Node *Node `json:"node,omitempty" db:"-"`
}

type UpsertSubscriptionInput struct {
	NodeID             uuid.UUID         `json:"node_id" validate:"required"`
	IncludeDescendants *bool             `json:"include_descendants,omitempty"`
	NotifyOnEdit       *bool             `json:"notify_on_edit,omitempty"`
	Mode               *SubscriptionMode `json:"mode,omitempty"`
	ImpactThreshold    *Impact           `json:"impact_threshold,omitempty"`
}
