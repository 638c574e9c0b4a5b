// Package storage defines the persistence contract for exchanges.
package storage

import (
	"context"

	"github.com/papercomputeco/verde/pkg/exchange"
)

// Driver defines the interface for persisting and retrieving exchanges in a
// storage backend. Exchanges are keyed by their question hash: a driver holds
// at most one exchange per hash.
type Driver interface {
	// Upsert writes ex, replacing any exchange with the same question hash.
	// The driver assigns a fresh, strictly increasing ID so that a replaced
	// exchange becomes the most recent one. ex.ID is updated in place.
	Upsert(ctx context.Context, ex *exchange.Exchange) error

	// Recent returns up to limit exchanges, newest first.
	// An empty store yields an empty slice and no error.
	Recent(ctx context.Context, limit int) ([]*exchange.Exchange, error)

	// Get retrieves an exchange by its question hash.
	Get(ctx context.Context, hash string) (*exchange.Exchange, error)

	// List returns all exchanges, newest first.
	List(ctx context.Context) ([]*exchange.Exchange, error)

	// Count returns the number of stored exchanges.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}
