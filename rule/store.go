package rule

import "context"

// Store defines persistence operations for access rules. A store is the sole
// authority on rule identity: it assigns IDs and rejects duplicate tuples.
type Store interface {
	// InsertRule assigns a fresh ID and creation time to r and persists it.
	// Returns ErrDuplicate if a rule with the same tuple exists.
	InsertRule(ctx context.Context, r *Rule) error

	// GetRule retrieves a rule by ID.
	GetRule(ctx context.Context, ruleID int64) (*Rule, error)

	// FindRuleByTuple retrieves the rule with exactly the given tuple.
	// Returns ErrNotFound if none exists.
	FindRuleByTuple(ctx context.Context, t Tuple) (*Rule, error)

	// DeleteRule removes a rule and reports whether it existed.
	// A missing ID is not an error.
	DeleteRule(ctx context.Context, ruleID int64) (bool, error)

	// ListRules returns all rules in insertion order.
	ListRules(ctx context.Context) ([]*Rule, error)
}
