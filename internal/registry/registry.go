// Package registry persists the set of LINE group ids the relay pushes
// to. Three interchangeable backends exist: an embedded SQLite store, a
// DynamoDB table, and a Postgres table. All of them keep the same
// contract: Add and Remove are idempotent, ListAll never returns nil on
// success.
package registry

import "context"

// Registry is the group id persistence contract.
type Registry interface {
	// Add inserts a group id. Adding an existing id is a no-op.
	Add(ctx context.Context, groupID string) error

	// Remove deletes a group id. Removing an absent id is a no-op.
	Remove(ctx context.Context, groupID string) error

	// ListAll returns every registered id. The order is unspecified.
	ListAll(ctx context.Context) ([]string, error)
}
