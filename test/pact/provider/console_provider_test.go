//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"

	consolehttp "github.com/Apurer/pos-console/internal/domains/console/adapters/http"
	"github.com/Apurer/pos-console/internal/domains/console/adapters/sound"
	consoleapp "github.com/Apurer/pos-console/internal/domains/console/application"
	ordersmemory "github.com/Apurer/pos-console/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/pos-console/internal/domains/orders/application"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
	pacttest "github.com/Apurer/pos-console/test/pact"
)

type acceptingGateway struct{}

func (acceptingGateway) SetStatus(context.Context, string, orders.Status) error { return nil }

type providerApp struct {
	mu      sync.Mutex
	console *consoleapp.Console
	router  *gin.Engine
}

func newProviderApp() *providerApp {
	app := &providerApp{}
	app.reset()
	return app
}

// reset swaps in a fresh console so each state starts from IDLE.
func (a *providerApp) reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.console = consoleapp.NewConsole(
		consoleapp.NewAlarm(sound.NewElement("/assets/alarm")),
		acceptingGateway{},
		consoleapp.WithConfirmDelay(0),
	)
	router := gin.New()
	consolehttp.NewConsoleAPI(
		a.console,
		ordersapp.NewDetector(ordersmemory.NewSnapshotStore()),
		ordersmemory.NewTokenStore(pacttest.BearerToken),
	).Register(router)
	a.router = router
}

func (a *providerApp) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mu.Lock()
	router := a.router
	a.mu.Unlock()
	router.ServeHTTP(w, r)
}

func TestConsoleProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	pactFile := filepath.ToSlash(pacttest.ConsolePactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	app := newProviderApp()
	server := httptest.NewServer(app)
	defer server.Close()

	stateHandlers := models.StateHandlers{
		pacttest.StateConsoleIdle: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.console.SetPendingCount(2)
			}
			return nil, nil
		},
		pacttest.StateConsoleRinging: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			if setup {
				app.console.Ring(context.Background(), orders.Order{ID: pacttest.ExistingOrderID, Status: orders.StatusPending})
			}
			return nil, nil
		},
		pacttest.StateNothingToAccept: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset()
			return nil, nil
		},
	}

	verifier := pactprovider.NewVerifier()
	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: server.URL,
		Provider:        pacttest.ConsoleProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
	})
	require.NoError(t, err)
}
