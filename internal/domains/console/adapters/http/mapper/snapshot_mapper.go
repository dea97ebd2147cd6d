package mapper

import (
	"time"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// Product is the HTTP representation of a line item variant.
type Product struct {
	ID    string  `json:"id,omitempty"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// LineItem carries the populated variant under its original key.
type LineItem struct {
	Item           *Product `json:"item,omitempty"`
	ItemVariation  *Product `json:"itemVariation,omitempty"`
	ModifierOption *Product `json:"modifierOption,omitempty"`
	Quantity       int      `json:"quantity"`
	Subtotal       float64  `json:"subtotal"`
}

// Order is the order card shown in the notification modal.
type Order struct {
	ID            string     `json:"id"`
	OrderNumber   string     `json:"orderNumber"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
	Status        string     `json:"status"`
	PaymentStatus string     `json:"paymentStatus,omitempty"`
	CustomerName  string     `json:"customerName,omitempty"`
	TotalAmount   float64    `json:"totalAmount,omitempty"`
	Items         []LineItem `json:"orderItems"`
}

// InlineError is rendered next to the buttons of the matching order only.
type InlineError struct {
	OrderID string `json:"orderId"`
	Message string `json:"message"`
}

// Notification describes the modal.
type Notification struct {
	Phase          string       `json:"phase"`
	Order          *Order       `json:"order,omitempty"`
	Action         string       `json:"action,omitempty"`
	Confirmed      bool         `json:"confirmed"`
	ButtonsEnabled bool         `json:"buttonsEnabled"`
	Error          *InlineError `json:"error,omitempty"`
	QueuedOrderID  string       `json:"queuedOrderId,omitempty"`
}

// Alarm mirrors the audio cue so a view can keep its element in sync.
type Alarm struct {
	Ringing    bool   `json:"ringing"`
	Playing    bool   `json:"playing"`
	Primed     bool   `json:"primed"`
	RetryArmed bool   `json:"retryArmed"`
	Generation uint64 `json:"generation"`
}

// Snapshot is the body of GET /v1/console/state and each SSE event.
type Snapshot struct {
	Notification Notification `json:"notification"`
	PendingCount int          `json:"pendingCount"`
	Alarm        Alarm        `json:"alarm"`
	Refresh      bool         `json:"refresh,omitempty"`
}

// PendingCount is the body of GET /v1/orders/pending-count.
type PendingCount struct {
	Count int `json:"count"`
}

// StatusUpdate is the body of PUT /v1/orders/:orderId/status.
type StatusUpdate struct {
	Status string `json:"status" binding:"required"`
}

// Token is the body of PUT /v1/session/token.
type Token struct {
	Token string `json:"token" binding:"required"`
}

func FromSnapshot(s domain.Snapshot) Snapshot {
	n := Notification{
		Phase:          string(s.State.Phase),
		Order:          FromOrder(s.State.Order),
		Action:         string(s.State.Action),
		Confirmed:      s.State.Confirmed,
		ButtonsEnabled: s.State.ButtonsEnabled(),
	}
	if s.State.Error != nil {
		n.Error = &InlineError{OrderID: s.State.Error.OrderID, Message: s.State.Error.Message}
	}
	if s.State.Queued != nil {
		n.QueuedOrderID = s.State.Queued.ID
	}
	return Snapshot{
		Notification: n,
		PendingCount: s.PendingCount,
		Alarm: Alarm{
			Ringing:    s.Alarm.Ringing,
			Playing:    s.Alarm.Playing,
			Primed:     s.Alarm.Primed,
			RetryArmed: s.Alarm.RetryArmed,
			Generation: s.Alarm.Generation,
		},
		Refresh: s.Refresh,
	}
}

func FromOrder(o *orders.Order) *Order {
	if o == nil {
		return nil
	}
	out := &Order{
		ID:            o.ID,
		OrderNumber:   o.DisplayNumber(),
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		CustomerName:  o.CustomerName,
		TotalAmount:   o.Total,
		Items:         make([]LineItem, 0, len(o.Items)),
	}
	if !o.CreatedAt.IsZero() {
		created := o.CreatedAt
		out.CreatedAt = &created
	}
	for _, item := range o.Items {
		out.Items = append(out.Items, LineItem{
			Item:           fromProduct(item.Item),
			ItemVariation:  fromProduct(item.Variation),
			ModifierOption: fromProduct(item.ModifierOption),
			Quantity:       item.Quantity,
			Subtotal:       item.Subtotal(),
		})
	}
	return out
}

func fromProduct(p *orders.Product) *Product {
	if p == nil {
		return nil
	}
	return &Product{ID: p.ID, Name: p.Name, Price: p.Price}
}
