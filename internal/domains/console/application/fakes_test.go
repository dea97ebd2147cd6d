package application

import (
	"context"
	"sync"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/console/ports"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
)

type recordingCue struct {
	mu         sync.Mutex
	plays      int
	playing    bool
	loop       bool
	muted      bool
	position   int
	generation uint64
	blockUntil bool
}

func (c *recordingCue) Play(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.blockUntil && !ports.IsUserGesture(ctx) {
		return ports.ErrPlaybackBlocked
	}
	c.plays++
	c.playing = true
	c.position = 1
	return nil
}

func (c *recordingCue) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playing = false
}

func (c *recordingCue) Rewind() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = 0
	c.generation++
}

func (c *recordingCue) SetLoop(loop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = loop
}

func (c *recordingCue) SetMuted(muted bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.muted = muted
}

func (c *recordingCue) State() ports.CueState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ports.CueState{Playing: c.playing, Loop: c.loop, Muted: c.muted, Generation: c.generation}
}

func (c *recordingCue) counts() (plays int, playing bool, position int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.plays, c.playing, c.position
}

type gatewayCall struct {
	OrderID string
	Status  orders.Status
}

type fakeGateway struct {
	mu      sync.Mutex
	calls   []gatewayCall
	err     error
	release chan struct{}
	entered chan struct{}
}

func (g *fakeGateway) SetStatus(ctx context.Context, orderID string, status orders.Status) error {
	g.mu.Lock()
	g.calls = append(g.calls, gatewayCall{OrderID: orderID, Status: status})
	err, release, entered := g.err, g.release, g.entered
	g.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if release != nil {
		<-release
	}
	return err
}

func (g *fakeGateway) Calls() []gatewayCall {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]gatewayCall(nil), g.calls...)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *recordingPublisher) PublishNewOrder(_ context.Context, event domain.NewOrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event.OrderID)
	return nil
}

func pending(id string) orders.Order {
	return orders.Order{ID: id, Number: "#" + id, Status: orders.StatusPending}
}

// stalledGateway never answers and only returns once its context ends.
type stalledGateway struct{}

func (stalledGateway) SetStatus(ctx context.Context, _ string, _ orders.Status) error {
	<-ctx.Done()
	return ctx.Err()
}
