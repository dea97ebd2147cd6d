//go:build pact
// +build pact

package consumer_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	pactconsumer "github.com/pact-foundation/pact-go/v2/consumer"
	"github.com/pact-foundation/pact-go/v2/matchers"
	"github.com/stretchr/testify/require"

	pacttest "github.com/Apurer/pos-console/test/pact"
)

type consoleState struct {
	Notification struct {
		Phase          string `json:"phase"`
		ButtonsEnabled bool   `json:"buttonsEnabled"`
		Order          *struct {
			ID string `json:"id"`
		} `json:"order"`
	} `json:"notification"`
	PendingCount int `json:"pendingCount"`
}

type problemDetail struct {
	Type   string `json:"type"`
	Status int    `json:"status"`
}

func TestConsoleWebContract(t *testing.T) {
	pact, err := pactconsumer.NewV2Pact(pactconsumer.MockHTTPProviderConfig{
		Consumer: pacttest.WebConsumerName,
		Provider: pacttest.ConsoleProviderName,
		PactDir:  pacttest.PactDir(t),
		LogDir:   pacttest.LogDir(t),
	})
	require.NoError(t, err)

	jsonContentType := matchers.Regex("application/json; charset=utf-8", "application\\/json(?:;\\s?charset=utf-8)?")

	pact.AddInteraction().
		Given(pacttest.StateConsoleIdle).
		UponReceiving("a request for the console state").
		WithRequest("GET", "/v1/console/state").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"notification": matchers.Map{
					"phase":          matchers.S("IDLE"),
					"buttonsEnabled": matchers.Like(false),
				},
				"pendingCount": matchers.Like(2),
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateConsoleRinging).
		UponReceiving("a request for the console state while ringing").
		WithRequest("GET", "/v1/console/state").
		WillRespondWith(http.StatusOK, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", jsonContentType)
			b.JSONBody(matchers.Map{
				"notification": matchers.Map{
					"phase":          matchers.S("RINGING"),
					"buttonsEnabled": matchers.Like(true),
					"order":          matchers.Map{"id": matchers.S(pacttest.ExistingOrderID)},
				},
			})
		})

	pact.AddInteraction().
		Given(pacttest.StateNothingToAccept).
		UponReceiving("a modal action for an order that is not ringing").
		WithRequest("POST", "/v1/console/orders/"+pacttest.ExistingOrderID+"/accept").
		WillRespondWith(http.StatusConflict, func(b *pactconsumer.V2ResponseBuilder) {
			b.Header("Content-Type", matchers.S("application/problem+json"))
			b.JSONBody(matchers.Map{
				"type":   matchers.S("/problems/conflict"),
				"status": matchers.Like(http.StatusConflict),
			})
		})

	err = pact.ExecuteTest(t, func(config pactconsumer.MockServerConfig) error {
		host := config.Host
		if host == "" {
			host = "localhost"
		}
		baseURL := fmt.Sprintf("http://%s:%d", host, config.Port)
		client := &http.Client{Timeout: 10 * time.Second}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var idle consoleState
		if err := getJSON(ctx, client, baseURL+"/v1/console/state", &idle); err != nil {
			return err
		}
		if idle.Notification.Phase != "IDLE" || idle.PendingCount != 2 {
			return fmt.Errorf("unexpected idle state %+v", idle)
		}

		var ringing consoleState
		if err := getJSON(ctx, client, baseURL+"/v1/console/state", &ringing); err != nil {
			return err
		}
		if ringing.Notification.Order == nil || ringing.Notification.Order.ID != pacttest.ExistingOrderID {
			return fmt.Errorf("unexpected ringing state %+v", ringing)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/v1/console/orders/"+pacttest.ExistingOrderID+"/accept", nil)
		if err != nil {
			return err
		}
		res, err := client.Do(req)
		if err != nil {
			return err
		}
		defer res.Body.Close()
		var problem problemDetail
		if err := json.NewDecoder(res.Body).Decode(&problem); err != nil {
			return err
		}
		if problem.Status != http.StatusConflict {
			return fmt.Errorf("expected conflict, got %+v", problem)
		}
		return nil
	})
	require.NoError(t, err)
}

func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", url, res.StatusCode)
	}
	return json.NewDecoder(res.Body).Decode(out)
}
