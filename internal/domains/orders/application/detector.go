package application

import (
	"context"
	"errors"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// Detector diffs fetched orders against the durable seen set.
type Detector struct {
	store ports.SnapshotStore
}

func NewDetector(store ports.SnapshotStore) *Detector {
	return &Detector{store: store}
}

// Observe records every fetched id as seen and returns the first new order, if
// any. The updated set is committed before Observe returns, so callers may
// raise notifications knowing a restart cannot report the same order again.
func (d *Detector) Observe(ctx context.Context, fetched []domain.Order) (domain.Detection, error) {
	if d == nil || d.store == nil {
		return domain.Detection{}, errors.New("order detector not configured")
	}
	var detection domain.Detection
	_, err := d.store.Mutate(ctx, func(seen domain.SeenSet) domain.SeenSet {
		detection = domain.Detect(fetched, seen)
		return detection.Seen
	})
	if err != nil {
		return domain.Detection{}, snapshotError(err)
	}
	return detection, nil
}

// ClearHistory forgets every notified order. The next fetch is treated as a cold start.
func (d *Detector) ClearHistory(ctx context.Context) error {
	if d == nil || d.store == nil {
		return errors.New("order detector not configured")
	}
	return snapshotError(d.store.Reset(ctx))
}

// Seen returns the current persisted set.
func (d *Detector) Seen(ctx context.Context) (domain.SeenSet, error) {
	if d == nil || d.store == nil {
		return nil, errors.New("order detector not configured")
	}
	seen, err := d.store.Load(ctx)
	return seen, snapshotError(err)
}
