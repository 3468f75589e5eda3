// Package plugin defines the plugin system for accessmatrix.
// Plugins are notified of lifecycle events (rule granted, rule revoked,
// access checked) and can react to them, for example to write an audit log.
//
// Each lifecycle hook is a separate interface so plugins opt in only
// to the events they care about.
package plugin

import (
	"context"

	"github.com/xraph/accessmatrix/rule"
)

// Plugin is the base interface all plugins must implement.
type Plugin interface {
	// Name returns a unique human-readable name for the plugin.
	Name() string
}

// ──────────────────────────────────────────────────
// Rule lifecycle hooks
// ──────────────────────────────────────────────────

// RuleGranted is called after a new rule is created by a grant.
// It is not called when a grant returns an already existing rule.
type RuleGranted interface {
	OnRuleGranted(ctx context.Context, r *rule.Rule) error
}

// RuleRevoked is called after a rule is deleted by a revoke.
// It is not called when the revoked ID did not exist.
type RuleRevoked interface {
	OnRuleRevoked(ctx context.Context, r *rule.Rule) error
}

// ──────────────────────────────────────────────────
// Check lifecycle hooks
// ──────────────────────────────────────────────────

// AccessChecked is called after an access check is evaluated.
type AccessChecked interface {
	OnAccessChecked(ctx context.Context, check Check) error
}

// Check describes an evaluated access check.
type Check struct {
	UserID     int64
	Module     string
	Permission rule.Permission
	Allowed    bool
	Cached     bool
}

// ──────────────────────────────────────────────────
// Shutdown hook
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
