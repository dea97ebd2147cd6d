package orderapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	listOrdersPath   = "/api/order"
	updateStatusPath = "/api/order/status/"
	maxErrorBody     = 4 << 10
)

var (
	// ErrMalformedResponse signals a body that could not be decoded into the expected envelope.
	ErrMalformedResponse = errors.New("order API returned a malformed response")
	// ErrMissingToken is returned when a call requiring authentication has no bearer token.
	ErrMissingToken = errors.New("bearer token is required")
)

// APIError reports a non-2xx response or an envelope with status=false.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("order API error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("order API error (status %d): %s", e.StatusCode, e.Message)
}

// Client talks to the remote order-management REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient instantiates the order API client with sane defaults.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("order API base URL is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("parse order API base URL: %w", err)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: baseURL, httpClient: httpClient}, nil
}

// NewInstrumentedHTTPClient wraps the default transport with OpenTelemetry spans.
func NewInstrumentedHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// ListOrders fetches every order visible to the bearer of token.
func (c *Client) ListOrders(ctx context.Context, token string) ([]Order, error) {
	if c == nil || c.httpClient == nil {
		return nil, errors.New("order API client not configured")
	}
	req, err := c.newRequest(ctx, http.MethodGet, listOrdersPath, token, nil)
	if err != nil {
		return nil, err
	}
	var envelope ListOrdersResponse
	if err := c.do(req, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Status {
		return nil, &APIError{StatusCode: http.StatusOK, Message: envelope.Message}
	}
	return envelope.Result.Data, nil
}

// UpdateOrderStatus moves orderID to status.
func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID, status string) error {
	if c == nil || c.httpClient == nil {
		return errors.New("order API client not configured")
	}
	pathParam, err := runtime.StyleParamWithLocation("simple", false, "orderId", runtime.ParamLocationPath, orderID)
	if err != nil {
		return fmt.Errorf("encode order id: %w", err)
	}
	body, err := json.Marshal(UpdateStatusRequest{Status: status})
	if err != nil {
		return fmt.Errorf("encode status request: %w", err)
	}
	req, err := c.newRequest(ctx, http.MethodPut, updateStatusPath+pathParam, token, body)
	if err != nil {
		return err
	}
	var envelope UpdateStatusResponse
	if err := c.do(req, &envelope); err != nil {
		return err
	}
	if !envelope.Status {
		return &APIError{StatusCode: http.StatusOK, Message: envelope.Message}
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path, token string, body []byte) (*http.Request, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrMissingToken
	}
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build order API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call order API: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return nil
}

func errorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		if msg := strings.TrimSpace(envelope.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(envelope.Detail); msg != "" {
			return msg
		}
	}
	if msg := strings.TrimSpace(string(raw)); msg != "" && len(msg) < 200 {
		return msg
	}
	return resp.Status
}
