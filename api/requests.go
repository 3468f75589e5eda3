package api

// ──────────────────────────────────────────────────
// Rule requests
// ──────────────────────────────────────────────────

// GrantRuleRequest is the body for granting an access rule.
type GrantRuleRequest struct {
	SubjectType string `json:"subject_type" description:"Subject type (role, user)"`
	Subject     string `json:"subject" description:"Role name or user email"`
	Module      string `json:"module" description:"Module name"`
	Permission  string `json:"permission" description:"Permission (view, create, edit, delete, manage)"`
}

// ListRulesRequest holds query parameters for listing access rules.
type ListRulesRequest struct {
	SubjectType string `query:"subject_type" optional:"true" description:"Filter by subject type (all, role, user)"`
	Module      string `query:"module" optional:"true" description:"Filter by module substring"`
	Permission  string `query:"permission" optional:"true" description:"Filter by permission (all or a permission name)"`
	Search      string `query:"search" optional:"true" description:"Free-text search"`
	Page        int    `query:"page" optional:"true" description:"1-based page number (default: 1)"`
	PageSize    int    `query:"page_size" optional:"true" description:"Page size (default: 20)"`
}

// RevokeRuleRequest is the path parameter for revoking a rule.
type RevokeRuleRequest struct {
	RuleID string `path:"ruleId" description:"Rule ID"`
}

// ──────────────────────────────────────────────────
// Check requests
// ──────────────────────────────────────────────────

// CheckRequest is the request body for an access check.
type CheckRequest struct {
	UserID     int64  `json:"user_id" description:"User ID"`
	Module     string `json:"module" description:"Module name"`
	Permission string `json:"permission" description:"Permission"`
}

// ──────────────────────────────────────────────────
// Subject requests
// ──────────────────────────────────────────────────

// ResolveSubjectRequest holds query parameters for resolving a subject.
type ResolveSubjectRequest struct {
	SubjectType string `query:"subject_type" description:"Subject type (role, user)"`
	Subject     string `query:"subject" description:"Role name or user email"`
}

// ListPermissionsRequest takes no parameters.
type ListPermissionsRequest struct{}
