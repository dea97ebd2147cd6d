package memory

import (
	"context"
	"sync"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

var _ ports.SnapshotStore = (*SnapshotStore)(nil)

// SnapshotStore keeps the seen-order set in process memory for development and tests.
type SnapshotStore struct {
	mu   sync.Mutex
	seen domain.SeenSet
}

func NewSnapshotStore(ids ...string) *SnapshotStore {
	return &SnapshotStore{seen: domain.NewSeenSet(ids...)}
}

func (s *SnapshotStore) Load(_ context.Context) (domain.SeenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.Clone(), nil
}

// Mutate holds the lock across read and write so concurrent polls cannot lose ids.
func (s *SnapshotStore) Mutate(_ context.Context, fn func(domain.SeenSet) domain.SeenSet) (domain.SeenSet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := fn(s.seen.Clone())
	if next == nil {
		next = domain.NewSeenSet()
	}
	s.seen = next.Clone()
	return next, nil
}

func (s *SnapshotStore) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = domain.NewSeenSet()
	return nil
}
