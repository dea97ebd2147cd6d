package orders

import (
	"context"
	"errors"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	ordersports "github.com/Apurer/pos-console/internal/domains/orders/ports"
)

const (
	// SetOrderStatusActivityName pushes one status transition to the order API.
	SetOrderStatusActivityName = "orders.activities.SetOrderStatus"
	// ActionErrorType tags application errors carrying an order-scoped failure.
	ActionErrorType = "orders.ActionError"
)

// StatusInput identifies the order and the requested target status.
type StatusInput struct {
	OrderID string
	Status  domain.Status
}

// ActionErrorDetails travels with the application error so callers can rebuild the scoped error.
type ActionErrorDetails struct {
	OrderID string
	Status  domain.Status
	Message string
}

// Activities groups the order status activities.
type Activities struct {
	gateway ordersports.ActionGateway
}

// NewActivities wires the order API gateway into the Temporal activities bundle.
func NewActivities(gateway ordersports.ActionGateway) *Activities {
	return &Activities{gateway: gateway}
}

// SetOrderStatus calls the gateway once. Failures are non-retryable.
func (a *Activities) SetOrderStatus(ctx context.Context, input StatusInput) error {
	logger := activity.GetLogger(ctx)
	if a == nil || a.gateway == nil {
		logger.Error("order status activity not initialized", "orderId", input.OrderID)
		return temporal.NewNonRetryableApplicationError("order status activity not initialized", "", nil)
	}
	logger.Info("SetOrderStatus activity started", "orderId", input.OrderID, "status", input.Status)
	if err := a.gateway.SetStatus(ctx, input.OrderID, input.Status); err != nil {
		logger.Error("SetOrderStatus activity failed", "orderId", input.OrderID, "error", err)
		details := ActionErrorDetails{OrderID: input.OrderID, Status: input.Status}
		var actionErr *ordersports.ActionError
		if errors.As(err, &actionErr) {
			details.Message = actionErr.Message
		}
		return temporal.NewNonRetryableApplicationError(err.Error(), ActionErrorType, err, details)
	}
	logger.Info("SetOrderStatus activity completed", "orderId", input.OrderID)
	return nil
}
