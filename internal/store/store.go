// Package store provides data storage interfaces and implementations.
package store

import (
	"context"

	"github.com/avbelov/items-api/internal/model"
)

// Store defines the interface for item storage operations.
// The store holds the authoritative item collection and performs no
// validation; absence of a record is a normal outcome, not an error.
type Store interface {
	// List returns all items in creation order.
	List(ctx context.Context) ([]model.Item, error)

	// Get retrieves an item by its ID. The boolean reports whether
	// a record with that ID exists.
	Get(ctx context.Context, id int64) (*model.Item, bool, error)

	// Create persists a new item under a freshly assigned ID and
	// returns the stored record. Any ID on the argument is ignored.
	Create(ctx context.Context, item *model.Item) (*model.Item, error)

	// Update replaces the mutable fields of an existing item. The
	// boolean is false when no record with that ID exists.
	Update(ctx context.Context, id int64, item *model.Item) (*model.Item, bool, error)

	// Delete removes an item by its ID and reports whether a record
	// was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
