package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/adapters/memory"
	orderapp "github.com/Apurer/pos-console/internal/domains/orders/application"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
	orderports "github.com/Apurer/pos-console/internal/domains/orders/ports"
)

type scriptedFeed struct {
	mu      sync.Mutex
	calls   atomic.Int32
	orders  []orders.Order
	err     error
	block   chan struct{}
	entered chan struct{}
	tokens  []string
}

func (f *scriptedFeed) FetchOrders(ctx context.Context, token string) ([]orders.Order, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.tokens = append(f.tokens, token)
	result, err, block, entered := f.orders, f.err, f.block, f.entered
	f.mu.Unlock()
	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", orderports.ErrFetchFailed, ctx.Err())
		}
	}
	return result, err
}

func (f *scriptedFeed) set(list ...orders.Order) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.orders = list
}

type pollerFixture struct {
	feed     *scriptedFeed
	tokens   *memory.TokenStore
	snapshot *memory.SnapshotStore
	console  *Console
	cue      *recordingCue
	poller   *Poller
}

func newPollerFixture(seen ...string) *pollerFixture {
	f := &pollerFixture{
		feed:     &scriptedFeed{},
		tokens:   memory.NewTokenStore("secret"),
		snapshot: memory.NewSnapshotStore(seen...),
	}
	f.console, f.cue = newTestConsole(&fakeGateway{})
	f.poller = NewPoller(f.feed, f.tokens, orderapp.NewDetector(f.snapshot), f.console,
		WithInterval(10*time.Millisecond))
	return f
}

func TestPoller_ColdStartMarksSeenWithoutRinging(t *testing.T) {
	f := newPollerFixture()
	f.feed.set(pending("1"), pending("2"), pending("3"))

	result := f.poller.Tick(context.Background())

	require.Equal(t, TickNoNewOrder, result.Outcome)
	require.Equal(t, 3, result.PendingCount)
	require.Equal(t, domain.PhaseIdle, f.console.Snapshot().State.Phase)
	seen, err := f.snapshot.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3"}, seen.IDs())
	plays, _, _ := f.cue.counts()
	require.Zero(t, plays)
}

func TestPoller_RingsFirstNewOrderAndPersistsAll(t *testing.T) {
	f := newPollerFixture("1", "2", "3")
	f.feed.set(pending("1"), pending("2"), pending("3"), pending("4"), pending("5"))

	result := f.poller.Tick(context.Background())

	require.Equal(t, TickNotified, result.Outcome)
	require.Equal(t, "4", result.NewOrder.ID)
	snap := f.console.Snapshot()
	require.Equal(t, "4", snap.State.Subject())
	require.Equal(t, 5, snap.PendingCount)
	require.True(t, snap.Alarm.Playing)

	seen, err := f.snapshot.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1", "2", "3", "4", "5"}, seen.IDs())

	again := f.poller.Tick(context.Background())
	require.Equal(t, TickNoNewOrder, again.Outcome)
	plays, _, _ := f.cue.counts()
	require.Equal(t, 1, plays)
}

func TestPoller_NoFetchWithoutToken(t *testing.T) {
	f := newPollerFixture()
	require.NoError(t, f.tokens.ClearToken(context.Background()))

	for i := 0; i < 3; i++ {
		require.Equal(t, TickUnauthenticated, f.poller.Tick(context.Background()).Outcome)
	}
	require.Zero(t, f.feed.calls.Load())

	require.NoError(t, f.tokens.SetToken(context.Background(), "fresh"))
	require.Equal(t, TickNoNewOrder, f.poller.Tick(context.Background()).Outcome)
	require.Equal(t, []string{"fresh"}, f.feed.tokens)
}

func TestPoller_SkipsWhileTickInFlight(t *testing.T) {
	f := newPollerFixture("1")
	f.feed.block = make(chan struct{})
	f.feed.entered = make(chan struct{}, 1)
	f.feed.set(pending("1"), pending("2"))

	first := make(chan TickResult, 1)
	go func() { first <- f.poller.Tick(context.Background()) }()
	<-f.feed.entered

	require.Equal(t, TickSkippedBusy, f.poller.Tick(context.Background()).Outcome)

	close(f.feed.block)
	require.Equal(t, TickNotified, (<-first).Outcome)
	require.EqualValues(t, 1, f.feed.calls.Load())
}

func TestPoller_FetchFailureKeepsStateAndRetriesNextTick(t *testing.T) {
	f := newPollerFixture("1")
	f.feed.err = fmt.Errorf("%w: status 500", orderports.ErrFetchFailed)

	result := f.poller.Tick(context.Background())
	require.Equal(t, TickFetchFailed, result.Outcome)
	require.ErrorIs(t, result.Err, orderports.ErrFetchFailed)

	f.feed.mu.Lock()
	f.feed.err = nil
	f.feed.mu.Unlock()
	f.feed.set(pending("1"), pending("2"))
	require.Equal(t, TickNotified, f.poller.Tick(context.Background()).Outcome)
}

func TestPoller_DiscardsResultsAfterCancel(t *testing.T) {
	f := newPollerFixture("1")
	f.feed.block = make(chan struct{})
	f.feed.entered = make(chan struct{}, 1)
	f.feed.set(pending("1"), pending("2"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan TickResult, 1)
	go func() { done <- f.poller.Tick(ctx) }()
	<-f.feed.entered
	cancel()

	result := <-done
	require.Equal(t, TickDiscarded, result.Outcome)
	require.True(t, errors.Is(result.Err, context.Canceled))
	seen, err := f.snapshot.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"1"}, seen.IDs())
	require.Equal(t, domain.PhaseIdle, f.console.Snapshot().State.Phase)
}

func TestPoller_DiscardsResultsWhenSignedOutMidFetch(t *testing.T) {
	f := newPollerFixture("1")
	f.feed.block = make(chan struct{})
	f.feed.entered = make(chan struct{}, 1)
	f.feed.set(pending("1"), pending("2"))

	done := make(chan TickResult, 1)
	go func() { done <- f.poller.Tick(context.Background()) }()
	<-f.feed.entered
	require.NoError(t, f.tokens.ClearToken(context.Background()))
	close(f.feed.block)

	require.Equal(t, TickDiscarded, (<-done).Outcome)
	require.Equal(t, domain.PhaseIdle, f.console.Snapshot().State.Phase)
}

func TestPoller_StartRunsImmediatelyAndStopHalts(t *testing.T) {
	f := newPollerFixture("1")
	f.feed.set(pending("1"), pending("2"))

	f.poller.Start(context.Background())
	f.poller.Start(context.Background())

	require.Eventually(t, func() bool {
		return f.console.Snapshot().State.Subject() == "2"
	}, time.Second, 5*time.Millisecond)

	f.poller.Stop()
	calls := f.feed.calls.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, calls, f.feed.calls.Load())
	f.poller.Stop()
}
