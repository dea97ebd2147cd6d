package remote

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/pos-console/internal/clients/http/orderapi"
	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// Feed implements the order feed port on top of the order API client.
type Feed struct {
	client *orderapi.Client
}

func NewFeed(client *orderapi.Client) *Feed {
	return &Feed{client: client}
}

// FetchOrders skips the call entirely without a token and folds every failure into ErrFetchFailed.
func (f *Feed) FetchOrders(ctx context.Context, token string) ([]domain.Order, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	if f == nil || f.client == nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrFetchFailed, errors.New("order feed not configured"))
	}
	payload, err := f.client.ListOrders(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ports.ErrFetchFailed, err)
	}
	return ToDomainOrders(payload), nil
}

var _ ports.OrderFeed = (*Feed)(nil)
