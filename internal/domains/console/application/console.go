package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/console/ports"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
	orderports "github.com/Apurer/pos-console/internal/domains/orders/ports"
)

// DefaultConfirmDelay keeps the modal on screen after a successful action.
const DefaultConfirmDelay = 1500 * time.Millisecond

// DefaultActionTimeout bounds a modal action so RESOLVING always settles.
// It sits above the Temporal execution timeout of the status workflow.
const DefaultActionTimeout = time.Minute

// Console owns the notification state machine and the alarm. All views read
// it through snapshots; it is the only writer of the modal state.
type Console struct {
	mu      sync.Mutex
	state   domain.State
	pending int

	alarm         *Alarm
	gateway       orderports.ActionGateway
	hub           *Hub
	events        ports.EventPublisher
	logger        *slog.Logger
	confirmDelay  time.Duration
	actionTimeout time.Duration
	afterFunc     func(time.Duration, func())
}

type ConsoleOption func(*Console)

func WithConsoleLogger(logger *slog.Logger) ConsoleOption {
	return func(c *Console) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithConfirmDelay sets how long a confirmed modal stays open. Zero closes it immediately.
func WithConfirmDelay(d time.Duration) ConsoleOption {
	return func(c *Console) {
		c.confirmDelay = d
	}
}

// WithActionTimeout caps how long Resolve waits on the gateway. Non-positive values keep the default.
func WithActionTimeout(d time.Duration) ConsoleOption {
	return func(c *Console) {
		if d > 0 {
			c.actionTimeout = d
		}
	}
}

func WithEventPublisher(p ports.EventPublisher) ConsoleOption {
	return func(c *Console) {
		if p != nil {
			c.events = p
		}
	}
}

func WithHub(h *Hub) ConsoleOption {
	return func(c *Console) {
		if h != nil {
			c.hub = h
		}
	}
}

func NewConsole(alarm *Alarm, gateway orderports.ActionGateway, opts ...ConsoleOption) *Console {
	c := &Console{
		state:         domain.Idle(),
		alarm:         alarm,
		gateway:       gateway,
		hub:           NewHub(),
		events:        ports.NoopEventPublisher,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		confirmDelay:  DefaultConfirmDelay,
		actionTimeout: DefaultActionTimeout,
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Ring presents a newly detected order and starts the alarm. While an action
// is in flight the order waits in the queue slot instead.
func (c *Console) Ring(ctx context.Context, order orders.Order) {
	c.mu.Lock()
	c.state = c.state.Ring(order)
	ringing := c.state.Phase == domain.PhaseRinging && c.state.Subject() == order.ID
	if ringing {
		c.alarm.Start(ctx)
	}
	snapshot := c.snapshotLocked(false)
	c.mu.Unlock()

	c.hub.Publish(snapshot)

	event := domain.NewOrderEvent{
		OrderID:     order.ID,
		OrderNumber: order.DisplayNumber(),
		Status:      string(order.Status),
	}
	if err := c.events.PublishNewOrder(ctx, event); err != nil {
		c.logger.WarnContext(ctx, "new order event not published",
			slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}

// Resolve runs the operator's modal action. The alarm is stopped and the
// buttons disabled before the gateway is called. On failure the modal returns
// to ringing with an error scoped to the order and the alarm stays silent.
func (c *Console) Resolve(ctx context.Context, orderID string, action orders.Status) error {
	c.mu.Lock()
	next, err := c.state.Begin(orderID, action)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.state = next
	c.alarm.Stop()
	snapshot := c.snapshotLocked(false)
	c.mu.Unlock()
	c.hub.Publish(snapshot)

	// The state machine must settle even if the caller goes away.
	actionCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.actionTimeout)
	err = c.gateway.SetStatus(actionCtx, orderID, action)
	cancel()
	if err != nil {
		c.mu.Lock()
		c.state = c.state.Fail(orderID, actionMessage(err))
		snapshot = c.snapshotLocked(false)
		c.mu.Unlock()
		c.hub.Publish(snapshot)
		c.logger.WarnContext(ctx, "order action failed",
			slog.String("order_id", orderID),
			slog.String("status", string(action)),
			slog.String("error", err.Error()))
		return err
	}

	c.mu.Lock()
	c.state = c.state.Succeed(orderID)
	snapshot = c.snapshotLocked(false)
	c.mu.Unlock()
	c.hub.Publish(snapshot)

	if c.confirmDelay <= 0 {
		c.close(ctx, orderID)
		return nil
	}
	closeCtx := context.WithoutCancel(ctx)
	c.afterFunc(c.confirmDelay, func() { c.close(closeCtx, orderID) })
	return nil
}

// Act handles an action from any view. The modal subject goes through
// Resolve; other orders are sent straight to the gateway.
func (c *Console) Act(ctx context.Context, orderID string, action orders.Status) error {
	if err := orders.ValidateTransition(orderID, action); err != nil {
		return err
	}
	c.mu.Lock()
	subject := c.state.Subject()
	c.mu.Unlock()
	if subject == orderID {
		return c.Resolve(ctx, orderID, action)
	}

	if err := c.gateway.SetStatus(ctx, orderID, action); err != nil {
		return err
	}
	c.mu.Lock()
	c.state = c.state.Dequeue(orderID)
	snapshot := c.snapshotLocked(true)
	c.mu.Unlock()
	c.hub.Publish(snapshot)
	return nil
}

// SetPendingCount publishes a new badge value when it changed.
func (c *Console) SetPendingCount(count int) {
	c.mu.Lock()
	if c.pending == count {
		c.mu.Unlock()
		return
	}
	c.pending = count
	snapshot := c.snapshotLocked(false)
	c.mu.Unlock()
	c.hub.Publish(snapshot)
}

// Gesture forwards an operator interaction to the alarm.
func (c *Console) Gesture(ctx context.Context) {
	c.mu.Lock()
	c.alarm.Gesture(ctx)
	snapshot := c.snapshotLocked(false)
	c.mu.Unlock()
	c.hub.Publish(snapshot)
}

// Suspend silences the alarm and drops the modal, used when the session ends.
func (c *Console) Suspend() {
	c.mu.Lock()
	c.alarm.Stop()
	c.state = domain.Idle()
	snapshot := c.snapshotLocked(false)
	c.mu.Unlock()
	c.hub.Publish(snapshot)
}

func (c *Console) Snapshot() domain.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked(false)
}

func (c *Console) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Subscribe registers a live view on the console's hub.
func (c *Console) Subscribe() (<-chan domain.Snapshot, func()) {
	_, ch, cancel := c.hub.Subscribe()
	return ch, cancel
}

func (c *Console) close(ctx context.Context, orderID string) {
	c.mu.Lock()
	before := c.state
	c.state = c.state.Close(orderID)
	if before.Phase == domain.PhaseResolving && c.state.Phase == domain.PhaseRinging {
		c.alarm.Start(ctx)
	}
	// Views reload their order list once the modal has closed.
	snapshot := c.snapshotLocked(before.Phase != c.state.Phase)
	c.mu.Unlock()
	c.hub.Publish(snapshot)
}

func (c *Console) snapshotLocked(refresh bool) domain.Snapshot {
	return domain.Snapshot{
		State:        c.state,
		PendingCount: c.pending,
		Alarm:        c.alarm.Status(),
		Refresh:      refresh,
	}
}

func actionMessage(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "the order service did not respond in time"
	}
	var actionErr *orderports.ActionError
	if errors.As(err, &actionErr) && actionErr.Message != "" {
		return actionErr.Message
	}
	return err.Error()
}
