package ports

import (
	"context"
	"errors"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// ErrFetchFailed covers network, HTTP and decoding failures of the order listing.
var ErrFetchFailed = errors.New("order fetch failed")

// OrderFeed lists the orders currently known to the order API.
type OrderFeed interface {
	// FetchOrders returns orders in API response order. An empty token yields
	// no orders and performs no request.
	FetchOrders(ctx context.Context, token string) ([]domain.Order, error)
}
