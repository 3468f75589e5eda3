// Package store defines the aggregate persistence interface. The rule and
// directory packages each define their own store interface; the composite
// Store composes them. Backends: Memory, SQLite, Postgres, and MongoDB.
package store

import (
	"context"

	"github.com/xraph/accessmatrix/directory"
	"github.com/xraph/accessmatrix/rule"
)

// Store is the aggregate persistence interface.
// A single backend (memory, sqlite, postgres, mongo) implements all of it.
type Store interface {
	rule.Store
	directory.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks database connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
