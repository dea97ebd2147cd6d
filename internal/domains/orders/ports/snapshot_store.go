package ports

import (
	"context"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// SnapshotStore persists the set of order ids already surfaced to the operator.
type SnapshotStore interface {
	Load(ctx context.Context) (domain.SeenSet, error)
	// Mutate runs fn against the current set and stores its result as one
	// atomic read-modify-write. fn may be invoked with a fresh copy only.
	Mutate(ctx context.Context, fn func(domain.SeenSet) domain.SeenSet) (domain.SeenSet, error)
	// Reset clears the history; it is the only operation that shrinks the set.
	Reset(ctx context.Context) error
}
