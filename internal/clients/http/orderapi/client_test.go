package orderapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := NewClient(server.URL+"/", server.Client())
	require.NoError(t, err)
	return client
}

func TestListOrders_SendsBearerAndDecodesEnvelope(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/order", r.URL.Path)
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"status":true,"result":{"data":[
			{"id":42,"orderNumber":"A-17","status":"PENDING","paymentStatus":"PAID",
			 "orderItems":[{"quantity":2,"item":{"id":"i-1","name":"Burger","price":9.5}}]},
			{"id":"abc","status":"ACCEPTED"}
		]}}`)
	})

	orders, err := client.ListOrders(context.Background(), "secret")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, ID("42"), orders[0].ID)
	require.Equal(t, "A-17", *orders[0].OrderNumber)
	require.Equal(t, "Burger", orders[0].OrderItems[0].Item.Name)
	require.Equal(t, ID("abc"), orders[1].ID)
}

func TestListOrders_StatusFalseIsAnAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":false,"message":"branch closed"}`)
	})

	_, err := client.ListOrders(context.Background(), "secret")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "branch closed", apiErr.Message)
}

func TestListOrders_Non2xx(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"message":"token expired"}`)
	})

	_, err := client.ListOrders(context.Background(), "secret")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "token expired", apiErr.Message)
}

func TestListOrders_MalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `<html>`)
	})

	_, err := client.ListOrders(context.Background(), "secret")
	require.ErrorIs(t, err, ErrMalformedResponse)
}

func TestListOrders_RequiresToken(t *testing.T) {
	called := false
	client := newTestClient(t, func(http.ResponseWriter, *http.Request) { called = true })

	_, err := client.ListOrders(context.Background(), "  ")
	require.ErrorIs(t, err, ErrMissingToken)
	require.False(t, called)
}

func TestUpdateOrderStatus_PutsJSONBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/order/status/42", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body UpdateStatusRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "ACCEPTED", body.Status)
		_, _ = io.WriteString(w, `{"status":true,"message":"updated"}`)
	})

	require.NoError(t, client.UpdateOrderStatus(context.Background(), "secret", "42", "ACCEPTED"))
}

func TestUpdateOrderStatus_StatusFalse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"status":false,"message":"order already rejected"}`)
	})

	err := client.UpdateOrderStatus(context.Background(), "secret", "42", "ACCEPTED")
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, "order already rejected", apiErr.Message)
}

func TestNewClient_RequiresBaseURL(t *testing.T) {
	_, err := NewClient(" ", nil)
	require.Error(t, err)
}

func TestID_MarshalRoundTripKeepsNumericIDsNumeric(t *testing.T) {
	raw, err := json.Marshal(ID("42"))
	require.NoError(t, err)
	require.Equal(t, "42", string(raw))

	raw, err = json.Marshal(ID("abc"))
	require.NoError(t, err)
	require.Equal(t, `"abc"`, string(raw))
}
