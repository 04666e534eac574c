package domain

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleViewer:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the role may create or edit nodes and records.
func (r Role) CanEdit() bool {
	return r == RoleAdmin || r == RoleEditor
}

// IsAdmin gates move/restrict operations and the audit listing.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// RoleList maps to a Postgres text[] column.
type RoleList []Role

func (l RoleList) Value() (driver.Value, error) {
	ss := make(pq.StringArray, len(l))
	for i, r := range l {
		ss[i] = string(r)
	}
	return ss.Value()
}

func (l *RoleList) Scan(src any) error {
	var ss pq.StringArray
	if err := ss.Scan(src); err != nil {
		return err
	}
	roles := make(RoleList, len(ss))
	for i, s := range ss {
		roles[i] = Role(s)
	}
	*l = roles
	return nil
}

func (l RoleList) Contains(role Role) bool {
	for _, r := range l {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	FullName     string     `json:"full_name" db:"full_name"`
	Role         Role       `json:"role" db:"role"`
	IsActive     bool       `json:"is_active" db:"is_active"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt    *time.Time `json:"-" db:"deleted_at"`
}

// Actor is the authenticated identity every service call runs as.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// HasRole implements the viewer < editor < admin hierarchy used by the
// RBAC middleware.
func (u *User) HasRole(required Role) bool {
	switch required {
	case RoleAdmin:
		return u.Role == RoleAdmin
	case RoleEditor:
		return u.Role == RoleEditor || u.Role == RoleAdmin
	case RoleViewer:
		return u.Role == RoleViewer || u.Role == RoleEditor || u.Role == RoleAdmin
	default:
		return false
	}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// RequestMeta carries client info used for sessions, rate limiting and audit.
type RequestMeta struct {
	IPAddress *string
	UserAgent *string
}
