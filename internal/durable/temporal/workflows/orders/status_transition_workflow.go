package orders

import (
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pos-console/internal/durable/temporal/sequences"
	orderactivities "github.com/Apurer/pos-console/internal/platform/temporal/activities/orders"
)

const (
	// StatusTransitionWorkflowName is the public identifier for registering the workflow.
	StatusTransitionWorkflowName = "orders.workflows.StatusTransition"
	// StatusTransitionTaskQueue is the queue consumed by the worker processing status transitions.
	StatusTransitionTaskQueue = "ORDER_STATUS"
)

// StatusTransitionWorkflowInput captures one operator decision.
type StatusTransitionWorkflowInput struct {
	Command orderactivities.StatusInput
	TraceID string
}

// StatusTransitionWorkflow pushes an accept or reject decision to the order API.
func StatusTransitionWorkflow(ctx workflow.Context, input StatusTransitionWorkflowInput) error {
	logger := workflow.GetLogger(ctx)
	orderID := input.Command.OrderID
	logger.Info("StatusTransitionWorkflow started", withTraceID(input.TraceID, "orderId", orderID, "status", input.Command.Status)...)
	if err := sequences.RunStatusTransitionSequence(ctx, input.Command); err != nil {
		logger.Error("StatusTransitionWorkflow failed", withTraceID(input.TraceID, "orderId", orderID, "error", err)...)
		return err
	}
	logger.Info("StatusTransitionWorkflow completed", withTraceID(input.TraceID, "orderId", orderID)...)
	return nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
