package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/console/ports"
)

// NewOrderSubject carries one message per order that triggered the alarm.
const NewOrderSubject = "pos.orders.new"

var _ ports.EventPublisher = (*NATSPublisher)(nil)

type publisher interface {
	Publish(subject string, data []byte) error
}

type newOrderMessage struct {
	OrderID     string    `json:"orderId"`
	OrderNumber string    `json:"orderNumber"`
	Status      string    `json:"status"`
	NotifiedAt  time.Time `json:"notifiedAt"`
}

// NATSPublisher sends new-order events to other terminals.
type NATSPublisher struct {
	conn    publisher
	closeFn func()
	now     func() time.Time
}

// Connect dials NATS and returns a publisher owning the connection.
func Connect(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url, nats.Name("pos-console"), nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	p := newPublisher(conn)
	p.closeFn = conn.Close
	return p, nil
}

func newPublisher(conn publisher) *NATSPublisher {
	return &NATSPublisher{conn: conn, now: time.Now}
}

func (p *NATSPublisher) PublishNewOrder(ctx context.Context, event domain.NewOrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(newOrderMessage{
		OrderID:     event.OrderID,
		OrderNumber: event.OrderNumber,
		Status:      event.Status,
		NotifiedAt:  p.now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("encode new order event: %w", err)
	}
	if err := p.conn.Publish(NewOrderSubject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", NewOrderSubject, err)
	}
	return nil
}

func (p *NATSPublisher) Close() error {
	if p.closeFn != nil {
		p.closeFn()
	}
	return nil
}
