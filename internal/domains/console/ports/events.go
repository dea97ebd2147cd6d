package ports

import (
	"context"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
)

// EventPublisher fans new-order notifications out to other terminals.
type EventPublisher interface {
	PublishNewOrder(ctx context.Context, event domain.NewOrderEvent) error
}

// NoopEventPublisher is a safe default when no broker is configured.
var NoopEventPublisher EventPublisher = noopEventPublisher{}

type noopEventPublisher struct{}

func (noopEventPublisher) PublishNewOrder(context.Context, domain.NewOrderEvent) error { return nil }
