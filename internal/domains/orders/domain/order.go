package domain

import (
	"errors"
	"strings"
	"time"
)

// Status enumerates the order lifecycle as reported by the order API.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// PaymentStatus is tracked independently of the order status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "PENDING"
	PaymentAccepted PaymentStatus = "ACCEPTED"
	PaymentRejected PaymentStatus = "REJECTED"
	PaymentPaid     PaymentStatus = "PAID"
)

var (
	ErrMissingOrderID    = errors.New("order id is required")
	ErrInvalidTransition = errors.New("order status transition must be ACCEPTED or REJECTED")
	ErrInvalidQuantity   = errors.New("line item quantity must be greater than zero")
	ErrLineItemVariant   = errors.New("line item must reference exactly one of item, variation or modifier option")
)

// Order is a customer purchase observed through the order feed.
type Order struct {
	ID            string
	Number        string
	CreatedAt     time.Time
	Status        Status
	PaymentStatus PaymentStatus
	CustomerName  string
	Total         float64
	Items         []LineItem
}

// Product is the name/price pair carried by each line item variant.
type Product struct {
	ID    string
	Name  string
	Price float64
}

// LineItem references exactly one of an item, an item variation or a modifier option.
type LineItem struct {
	Item           *Product
	Variation      *Product
	ModifierOption *Product
	Quantity       int
}

// Product returns whichever variant is populated.
func (li LineItem) Product() *Product {
	switch {
	case li.Item != nil:
		return li.Item
	case li.Variation != nil:
		return li.Variation
	default:
		return li.ModifierOption
	}
}

// Validate enforces the single-variant and positive quantity invariants.
func (li LineItem) Validate() error {
	populated := 0
	for _, p := range []*Product{li.Item, li.Variation, li.ModifierOption} {
		if p != nil {
			populated++
		}
	}
	if populated != 1 {
		return ErrLineItemVariant
	}
	if li.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	return nil
}

// Subtotal is price times quantity for the populated variant.
func (li LineItem) Subtotal() float64 {
	p := li.Product()
	if p == nil {
		return 0
	}
	return p.Price * float64(li.Quantity)
}

// DisplayNumber falls back to the identifier when the API sent no order number.
func (o Order) DisplayNumber() string {
	if n := strings.TrimSpace(o.Number); n != "" {
		return n
	}
	return o.ID
}

// NeedsAttention reports whether the order counts towards the pending badge.
func (o Order) NeedsAttention() bool {
	return o.Status == StatusPending || o.PaymentStatus == PaymentPending
}

// PendingCount counts orders whose status or payment status is PENDING.
func PendingCount(orders []Order) int {
	count := 0
	for _, order := range orders {
		if order.NeedsAttention() {
			count++
		}
	}
	return count
}

// ValidateTransition accepts only the operator-driven target states.
func ValidateTransition(orderID string, status Status) error {
	if strings.TrimSpace(orderID) == "" {
		return ErrMissingOrderID
	}
	switch status {
	case StatusAccepted, StatusRejected:
		return nil
	default:
		return ErrInvalidTransition
	}
}
