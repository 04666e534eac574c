package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type VisibilityMode string

const (
	VisibilityInherit        VisibilityMode = "inherit"
	VisibilityPublicInternal VisibilityMode = "public_internal"
	VisibilityRestricted     VisibilityMode = "restricted"
)

func (m VisibilityMode) IsValid() bool {
	switch m {
	case VisibilityInherit, VisibilityPublicInternal, VisibilityRestricted:
		return true
	default:
		return false
	}
}

type NodeType string

const (
	NodeTypeTeam        NodeType = "team"
	NodeTypeService     NodeType = "service"
	NodeTypeEnvironment NodeType = "environment"
	NodeTypeOther       NodeType = "other"
)

func (t NodeType) IsValid() bool {
	switch t {
	case NodeTypeTeam, NodeTypeService, NodeTypeEnvironment, NodeTypeOther:
		return true
	default:
		return false
	}
}

// UUIDArray maps to a Postgres uuid[] column.
type UUIDArray []uuid.UUID

func (a UUIDArray) Value() (driver.Value, error) {
	return pq.GenericArray{A: []uuid.UUID(a)}.Value()
}

func (a *UUIDArray) Scan(src any) error {
	return pq.GenericArray{A: (*[]uuid.UUID)(a)}.Scan(src)
}

func (a UUIDArray) Contains(id uuid.UUID) bool {
	for _, v := range a {
		if v == id {
			return true
		}
	}
	return false
}

// Node is a position in the org/system hierarchy. Path and PathIDs are
// denormalized from the ancestor chain: PathIDs holds the parent chain from
// root to this node's parent (ids, excluding self), Path is the slash-join of
// ancestor slugs plus the node's own slug. The tree mutator is the only
// writer of these fields.
type Node struct {
	ID             uuid.UUID      `json:"id" db:"id"`
	ParentID       *uuid.UUID     `json:"parent_id,omitempty" db:"parent_id"`
	Name           string         `json:"name" db:"name"`
	Slug           string         `json:"slug" db:"slug"`
	NodeType       NodeType       `json:"node_type" db:"node_type"`
	Path           string         `json:"path" db:"path"`
	PathIDs        UUIDArray      `json:"path_ids" db:"path_ids"`
	VisibilityMode VisibilityMode `json:"visibility_mode" db:"visibility_mode"`
	AllowedRoles   RoleList       `json:"allowed_roles" db:"allowed_roles"`
	CreatedBy      uuid.UUID      `json:"created_by" db:"created_by"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time     `json:"-" db:"deleted_at"`
}

// NodePathUpdate is one row of a subtree path recompute. All updates of a
// cascade are applied inside a single transaction.
type NodePathUpdate struct {
	ID      uuid.UUID
	Path    string
	PathIDs UUIDArray
}

type CreateNodeInput struct {
	ParentID       *uuid.UUID     `json:"parent_id,omitempty"`
	Name           string         `json:"name" validate:"required,min=1,max=200"`
	NodeType       NodeType       `json:"node_type,omitempty"`
	VisibilityMode VisibilityMode `json:"visibility_mode,omitempty"`
	AllowedRoles   RoleList       `json:"allowed_roles,omitempty"`
}

type TreeNode struct {
	Node
	Children []*TreeNode `json:"children"`
}
