package accessmatrix

import (
	"context"

	"github.com/xraph/accessmatrix/rule"
)

// Cache provides caching for access check decisions.
//
// The Service invalidates entries whenever it grants or revokes a rule, and
// never stores a decision computed concurrently with such a change. Role or
// user reassignments made directly in the directory are not observed;
// decisions affected by them stay cached until the entry expires, so
// implementations should bound entry lifetime with a TTL.
type Cache interface {
	// Get returns a cached decision, if available.
	Get(ctx context.Context, userID int64, module string, perm rule.Permission) (allowed, ok bool)

	// Set stores a decision in the cache.
	Set(ctx context.Context, userID int64, module string, perm rule.Permission, allowed bool)

	// InvalidateUser removes all cached decisions for a user.
	InvalidateUser(ctx context.Context, userID int64)

	// Purge removes every cached decision.
	Purge(ctx context.Context)
}
