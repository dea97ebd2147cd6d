package application

import (
	"sync"

	"github.com/google/uuid"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
)

const subscriberBuffer = 8

// Hub fans console snapshots out to live views. Slow subscribers drop
// intermediate snapshots; each snapshot is complete so the latest one wins.
// Publish holds the write lock so subscribers see snapshots in publish order.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]chan domain.Snapshot
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[string]chan domain.Snapshot)}
}

// Subscribe registers a view. The returned cancel func closes the channel.
func (h *Hub) Subscribe() (string, <-chan domain.Snapshot, func()) {
	id := uuid.NewString()
	ch := make(chan domain.Snapshot, subscriberBuffer)

	h.mu.Lock()
	h.subscribers[id] = ch
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, id)
			h.mu.Unlock()
			close(ch)
		})
	}
	return id, ch, cancel
}

// Publish never blocks. A full subscriber buffer loses its oldest snapshot
// so the newest one is always delivered.
func (h *Hub) Publish(snapshot domain.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subscribers {
		for sent := false; !sent; {
			select {
			case ch <- snapshot:
				sent = true
			default:
				select {
				case <-ch:
				default:
				}
			}
		}
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
