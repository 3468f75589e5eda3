// Package rule defines the access Rule entity (subject → module permission)
// and its store interface.
package rule

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrDuplicate is returned by a store when a rule with the same tuple
	// already exists.
	ErrDuplicate = errors.New("accessmatrix: access rule already exists")

	// ErrNotFound is returned by a store when a rule cannot be found.
	ErrNotFound = errors.New("accessmatrix: access rule not found")
)

// SubjectType identifies what kind of subject a rule is granted to.
type SubjectType string

const (
	// SubjectRole grants to every member of a role.
	SubjectRole SubjectType = "role"

	// SubjectUser grants to a single user.
	SubjectUser SubjectType = "user"
)

// Valid reports whether t is a known subject type.
func (t SubjectType) Valid() bool {
	return t == SubjectRole || t == SubjectUser
}

// Permission is an access level on a module.
type Permission string

const (
	PermissionView   Permission = "view"
	PermissionCreate Permission = "create"
	PermissionEdit   Permission = "edit"
	PermissionDelete Permission = "delete"
	PermissionManage Permission = "manage"
)

// Permissions lists every recognized permission in display order.
var Permissions = []Permission{
	PermissionView,
	PermissionCreate,
	PermissionEdit,
	PermissionDelete,
	PermissionManage,
}

// Valid reports whether p is a recognized permission.
func (p Permission) Valid() bool {
	for _, known := range Permissions {
		if p == known {
			return true
		}
	}
	return false
}

// ParsePermission normalizes s (trimmed, lower-cased) and reports whether it
// names a recognized permission.
func ParsePermission(s string) (Permission, bool) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

// Tuple is the identity of a rule. No two stored rules share a tuple.
type Tuple struct {
	SubjectType SubjectType `json:"subject_type"`
	SubjectID   int64       `json:"subject_id"`
	Module      string      `json:"module"`
	Permission  Permission  `json:"permission"`
}

// Rule grants a permission on a module to a role or a user.
type Rule struct {
	ID             int64       `json:"id" db:"id"`
	SubjectType    SubjectType `json:"subject_type" db:"subject_type"`
	SubjectID      int64       `json:"subject_id" db:"subject_id"`
	SubjectDisplay string      `json:"subject_display" db:"subject_display"`
	Module         string      `json:"module" db:"module"`
	Permission     Permission  `json:"permission" db:"permission"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// Tuple returns the identity tuple of the rule.
func (r *Rule) Tuple() Tuple {
	return Tuple{
		SubjectType: r.SubjectType,
		SubjectID:   r.SubjectID,
		Module:      r.Module,
		Permission:  r.Permission,
	}
}

// RoleID returns the role the rule is granted to, if any.
func (r *Rule) RoleID() (int64, bool) {
	if r.SubjectType != SubjectRole {
		return 0, false
	}
	return r.SubjectID, true
}

// UserID returns the user the rule is granted to, if any.
func (r *Rule) UserID() (int64, bool) {
	if r.SubjectType != SubjectUser {
		return 0, false
	}
	return r.SubjectID, true
}
