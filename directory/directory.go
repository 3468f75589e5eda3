// Package directory defines the role and user directories that access rule
// subjects are resolved against.
package directory

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a role or user ID is unknown to a directory.
var ErrNotFound = errors.New("accessmatrix: directory entry not found")

// Role is a named group of users.
type Role struct {
	ID          int64     `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// User is an individual account. RoleID is zero when the user has no role.
type User struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Username  string    `json:"username,omitempty" db:"username"`
	RoleID    int64     `json:"role_id,omitempty" db:"role_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// RoleDirectory looks up roles.
type RoleDirectory interface {
	// FindRolesByName returns every role whose name equals name,
	// compared case-insensitively. An empty result means no match.
	FindRolesByName(ctx context.Context, name string) ([]*Role, error)

	// GetRole retrieves a role by ID. Returns ErrNotFound if unknown.
	GetRole(ctx context.Context, roleID int64) (*Role, error)
}

// UserDirectory looks up users.
type UserDirectory interface {
	// FindUsersByEmail returns every user whose email equals email,
	// compared case-insensitively. An empty result means no match.
	FindUsersByEmail(ctx context.Context, email string) ([]*User, error)

	// GetUser retrieves a user by ID. Returns ErrNotFound if unknown.
	GetUser(ctx context.Context, userID int64) (*User, error)
}

// Store is a directory that also accepts writes. IDs are supplied by the
// caller because directory entries mirror an upstream identity system.
type Store interface {
	RoleDirectory
	UserDirectory

	// CreateRole persists a new role.
	CreateRole(ctx context.Context, r *Role) error

	// CreateUser persists a new user.
	CreateUser(ctx context.Context, u *User) error
}
