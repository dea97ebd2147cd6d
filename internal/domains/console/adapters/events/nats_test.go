package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
)

type capturedPublish struct {
	subject string
	data    []byte
}

type fakeConn struct {
	published []capturedPublish
	err       error
}

func (c *fakeConn) Publish(subject string, data []byte) error {
	c.published = append(c.published, capturedPublish{subject: subject, data: data})
	return c.err
}

func TestNATSPublisher_PublishesJSONOnSubject(t *testing.T) {
	conn := &fakeConn{}
	p := newPublisher(conn)
	p.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }

	err := p.PublishNewOrder(context.Background(), domain.NewOrderEvent{OrderID: "42", OrderNumber: "A-17", Status: "PENDING"})

	require.NoError(t, err)
	require.Len(t, conn.published, 1)
	require.Equal(t, NewOrderSubject, conn.published[0].subject)
	require.JSONEq(t,
		`{"orderId":"42","orderNumber":"A-17","status":"PENDING","notifiedAt":"2024-05-01T12:00:00Z"}`,
		string(conn.published[0].data))
}

func TestNATSPublisher_WrapsPublishErrors(t *testing.T) {
	boom := errors.New("no responders")
	p := newPublisher(&fakeConn{err: boom})

	err := p.PublishNewOrder(context.Background(), domain.NewOrderEvent{OrderID: "42"})
	require.ErrorIs(t, err, boom)
	require.NoError(t, p.Close())
}
