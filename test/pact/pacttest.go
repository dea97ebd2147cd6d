//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// The console consumes the order API and is itself consumed by the web console.
const (
	OrderAPIProviderName = "order-api"
	ConsoleProviderName  = "pos-console"
	ConsoleConsumerName  = "pos-console"
	WebConsumerName      = "console-web"

	StateOrdersListed    = "orders 101 and 102 exist for token pact-token"
	StateOrderUpdatable  = "order 101 is pending"
	StateConsoleIdle     = "console idle with two pending orders"
	StateConsoleRinging  = "console ringing for order 101"
	StateNothingToAccept = "console idle"
)

const (
	BearerToken      = "pact-token"
	ExistingOrderID  = "101"
	SecondOrderID    = "102"
	ExampleCreatedAt = "2024-06-12T10:00:00Z"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// ConsolePactFile is the contract the web console holds against the console API.
func ConsolePactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), WebConsumerName+"-"+ConsoleProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleOrderPayload provides stable order data as the order API returns it.
func ExampleOrderPayload(id string) map[string]any {
	return map[string]any{
		"id":            id,
		"orderNumber":   "A-" + id,
		"createdAt":     ExampleCreatedAt,
		"status":        "PENDING",
		"paymentStatus": "PENDING",
		"totalAmount":   12.5,
		"orderItems": []map[string]any{{
			"quantity": 1,
			"item":     map[string]any{"id": "i-1", "name": "Burger", "price": 12.5},
		}},
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
