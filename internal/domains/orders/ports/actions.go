package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// ErrActionFailed is matched by every ActionError.
var ErrActionFailed = errors.New("order status update failed")

// ActionError is scoped to a single order so one failure does not block others.
type ActionError struct {
	OrderID string
	Status  domain.Status
	Message string
	Err     error
}

func (e *ActionError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = "unknown error"
	}
	return fmt.Sprintf("set order %s to %s: %s", e.OrderID, e.Status, msg)
}

func (e *ActionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrActionFailed}
	}
	return []error{ErrActionFailed, e.Err}
}

// ActionGateway pushes operator status transitions to the order API.
type ActionGateway interface {
	SetStatus(ctx context.Context, orderID string, status domain.Status) error
}
