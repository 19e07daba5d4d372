// Package tx provides transaction management abstractions.
// Domain services depend on these interfaces, not on the storage implementation
// in infrastructure/storage/postgres.
package tx

import (
	"context"
)

// ReadOnlyManager groups several reads into one read-only transaction.
type ReadOnlyManager interface {
	// ReadOnly executes fn in a read-only transaction. Repositories called with
	// the ctx passed to fn share that transaction's snapshot.
	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
