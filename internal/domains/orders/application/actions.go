package application

import (
	"context"
	"errors"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// Actions validates operator status transitions before handing them to the gateway.
type Actions struct {
	gateway ports.ActionGateway
}

func NewActions(gateway ports.ActionGateway) *Actions {
	return &Actions{gateway: gateway}
}

// SetStatus sends one transition. Gateway failures come back as *ports.ActionError.
func (a *Actions) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	if a == nil || a.gateway == nil {
		return errors.New("order actions not configured")
	}
	if err := domain.ValidateTransition(orderID, status); err != nil {
		return mapError(err)
	}
	return a.gateway.SetStatus(ctx, orderID, status)
}

var _ ports.ActionGateway = (*Actions)(nil)
