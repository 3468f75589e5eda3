package api

import "github.com/xraph/accessmatrix/rule"

// RuleListResponse is one page of access rules.
type RuleListResponse struct {
	Items      []*rule.Rule `json:"items" description:"Rules on this page"`
	Total      int          `json:"total" description:"Number of rules matching the filter"`
	Page       int          `json:"page" description:"1-based page number"`
	PageSize   int          `json:"page_size" description:"Page size"`
	TotalPages int          `json:"total_pages" description:"Number of pages"`
}

// CheckResponse is the response for an access check.
type CheckResponse struct {
	Allowed bool `json:"allowed" description:"Whether the user holds the permission"`
}

// PermissionsResponse lists the recognized permissions.
type PermissionsResponse struct {
	Permissions []rule.Permission `json:"permissions" description:"Recognized permissions in display order"`
}
