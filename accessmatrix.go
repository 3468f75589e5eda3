// Package accessmatrix provides a flat access-control matrix for Go: rules
// that grant a permission on a named module to a role or to a single user.
//
// Subjects are referenced by role name or user email and resolved against a
// role or user directory; the resolved numeric ID is what a rule stores.
// Grants are idempotent, revokes tolerate missing rules, and listing supports
// conjunctive filters with 1-based pagination.
//
//	svc, err := accessmatrix.NewService(
//	    accessmatrix.WithStore(memory.New()),
//	)
//	r, created, err := svc.Grant(ctx, accessmatrix.GrantRequest{
//	    SubjectType: "role",
//	    Subject:     "manager",
//	    Module:      "invites",
//	    Permission:  "manage",
//	})
package accessmatrix

import "github.com/xraph/accessmatrix/rule"

// Subject is a resolved role or user reference.
type Subject struct {
	Type    rule.SubjectType `json:"type"`
	ID      int64            `json:"id"`
	Display string           `json:"display"`
}

// GrantRequest is the input to a grant.
// Subject is a role name when SubjectType is "role" and a user email when
// SubjectType is "user".
type GrantRequest struct {
	SubjectType string `json:"subject_type"`
	Subject     string `json:"subject"`
	Module      string `json:"module"`
	Permission  string `json:"permission"`
}

// ListFilter restricts which rules a list returns. All criteria must hold.
// The zero value matches every rule.
type ListFilter struct {
	// SubjectType is "all", "role", or "user". Empty means "all".
	SubjectType string `json:"subject_type,omitempty"`

	// Module is a case-insensitive substring of the rule's module.
	Module string `json:"module,omitempty"`

	// Permission is "all" or a permission name. Empty means "all".
	Permission string `json:"permission,omitempty"`

	// Search is a case-insensitive substring of the rule's id, subject type,
	// subject display, module, or permission.
	Search string `json:"search,omitempty"`
}

// Page is one page of a filtered rule listing.
type Page struct {
	Items    []*rule.Rule `json:"items"`
	Total    int          `json:"total"`
	Page     int          `json:"page"`
	PageSize int          `json:"page_size"`
}

// TotalPages returns ceil(Total / PageSize).
func (p *Page) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}
