package models

import "time"

// Role is the marketplace side a profile belongs to. It is fixed at sign-up.
type Role string

const (
	RoleCreator  Role = "creator"
	RoleBusiness Role = "business"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	switch r {
	case RoleCreator, RoleBusiness, RoleAdmin:
		return true
	}
	return false
}

// User represents the credential record stored in the users table.
type User struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// UserFilter captures filtering criteria for the back-office user list.
type UserFilter struct {
	Role      *Role
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// UserSummary is a user row joined with its profile and role-specific display name.
type UserSummary struct {
	ID          string     `db:"id" json:"id"`
	Email       string     `db:"email" json:"email"`
	Role        *Role      `db:"role" json:"role,omitempty"`
	Username    *string    `db:"username" json:"username,omitempty"`
	DisplayName string     `db:"display_name" json:"display_name"`
	Active      bool       `db:"active" json:"active"`
	IsActive    *bool      `db:"is_active" json:"is_active,omitempty"`
	IsVerified  *bool      `db:"is_verified" json:"is_verified,omitempty"`
	LastLogin   *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
