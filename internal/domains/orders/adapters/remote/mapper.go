package remote

import (
	"strings"

	"github.com/Apurer/pos-console/internal/clients/http/orderapi"
	"github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// ToDomainOrders maps the listing payload preserving response order.
func ToDomainOrders(payload []orderapi.Order) []domain.Order {
	orders := make([]domain.Order, 0, len(payload))
	for _, p := range payload {
		orders = append(orders, ToDomainOrder(p))
	}
	return orders
}

func ToDomainOrder(p orderapi.Order) domain.Order {
	order := domain.Order{
		ID:            strings.TrimSpace(string(p.ID)),
		Status:        domain.Status(strings.ToUpper(strings.TrimSpace(p.Status))),
		PaymentStatus: domain.PaymentStatus(strings.ToUpper(strings.TrimSpace(p.PaymentStatus))),
	}
	if p.OrderNumber != nil {
		order.Number = *p.OrderNumber
	}
	if p.CreatedAt != nil {
		order.CreatedAt = p.CreatedAt.UTC()
	}
	if p.CustomerName != nil {
		order.CustomerName = *p.CustomerName
	}
	if p.TotalAmount != nil {
		order.Total = *p.TotalAmount
	}
	for _, item := range p.OrderItems {
		order.Items = append(order.Items, domain.LineItem{
			Item:           toProduct(item.Item),
			Variation:      toProduct(item.ItemVariation),
			ModifierOption: toProduct(item.ModifierOption),
			Quantity:       item.Quantity,
		})
	}
	return order
}

func toProduct(p *orderapi.ProductInfo) *domain.Product {
	if p == nil {
		return nil
	}
	return &domain.Product{ID: string(p.ID), Name: p.Name, Price: p.Price}
}
