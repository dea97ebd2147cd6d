package remote

import (
	"context"
	"errors"

	"github.com/Apurer/pos-console/internal/clients/http/orderapi"
	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// Gateway sends status transitions with the operator's current token.
type Gateway struct {
	client *orderapi.Client
	tokens ports.TokenStore
}

func NewGateway(client *orderapi.Client, tokens ports.TokenStore) *Gateway {
	return &Gateway{client: client, tokens: tokens}
}

// SetStatus issues a single PUT; there is no retry.
func (g *Gateway) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	if g == nil || g.client == nil || g.tokens == nil {
		return &ports.ActionError{OrderID: orderID, Status: status, Err: errors.New("order gateway not configured")}
	}
	token, err := g.tokens.Token(ctx)
	if err != nil {
		return &ports.ActionError{OrderID: orderID, Status: status, Err: err}
	}
	if err := g.client.UpdateOrderStatus(ctx, token, orderID, string(status)); err != nil {
		actionErr := &ports.ActionError{OrderID: orderID, Status: status, Err: err}
		var apiErr *orderapi.APIError
		if errors.As(err, &apiErr) {
			actionErr.Message = apiErr.Message
		}
		return actionErr
	}
	return nil
}

var _ ports.ActionGateway = (*Gateway)(nil)
