package workflows

import (
	"context"
	"errors"
	"fmt"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/pos-console/internal/durable/temporal/workflows/orders"
	orderactivities "github.com/Apurer/pos-console/internal/platform/temporal/activities/orders"
)

var (
	_ ports.ActionGateway = (*TemporalStatusWorkflows)(nil)
	_ ports.ActionGateway = (*InlineStatusWorkflows)(nil)
)

// StatusWorkflowTimeout bounds a whole transition, including time spent
// waiting for a worker, above the activity's 30 s StartToClose.
const StatusWorkflowTimeout = 45 * time.Second

// TemporalStatusWorkflows runs status transitions on a Temporal cluster.
type TemporalStatusWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalStatusWorkflows wires a Temporal client into the orchestrator.
func NewTemporalStatusWorkflows(c client.Client) *TemporalStatusWorkflows {
	return &TemporalStatusWorkflows{client: c, taskQueue: orderworkflows.StatusTransitionTaskQueue}
}

// SetStatus starts the transition workflow and waits for its single attempt.
func (o *TemporalStatusWorkflows) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	if o == nil || o.client == nil {
		return &ports.ActionError{OrderID: orderID, Status: status, Err: errors.New("temporal status workflows not configured")}
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := fmt.Sprintf("order-status-%s-%s", orderID, traceComponent)
	options := client.StartWorkflowOptions{
		ID:                       workflowID,
		TaskQueue:                o.taskQueue,
		WorkflowExecutionTimeout: StatusWorkflowTimeout,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		orderworkflows.StatusTransitionWorkflow,
		orderworkflows.StatusTransitionWorkflowInput{
			Command: orderactivities.StatusInput{OrderID: orderID, Status: status},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if !errors.As(err, &alreadyStarted) {
			return &ports.ActionError{OrderID: orderID, Status: status, Err: err}
		}
		// Same request delivered twice; wait on the run that is already sending it.
		run = o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
	}
	if err := run.Get(ctx, nil); err != nil {
		return toActionError(orderID, status, err)
	}
	return nil
}

// InlineStatusWorkflows calls the gateway directly, used when Temporal is unavailable.
type InlineStatusWorkflows struct {
	gateway ports.ActionGateway
}

// NewInlineStatusWorkflows wraps the gateway for synchronous execution.
func NewInlineStatusWorkflows(gateway ports.ActionGateway) *InlineStatusWorkflows {
	return &InlineStatusWorkflows{gateway: gateway}
}

func (o *InlineStatusWorkflows) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	if o == nil || o.gateway == nil {
		return &ports.ActionError{OrderID: orderID, Status: status, Err: errors.New("inline status workflows not configured")}
	}
	return o.gateway.SetStatus(ctx, orderID, status)
}

func toActionError(orderID string, status domain.Status, err error) error {
	actionErr := &ports.ActionError{OrderID: orderID, Status: status, Err: err}
	var appErr *temporal.ApplicationError
	if errors.As(err, &appErr) && appErr.Type() == orderactivities.ActionErrorType {
		var details orderactivities.ActionErrorDetails
		if appErr.HasDetails() && appErr.Details(&details) == nil {
			actionErr.Message = details.Message
		}
	}
	return actionErr
}

func workflowTraceComponent(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span != nil {
		if spanCtx := span.SpanContext(); spanCtx.IsValid() && spanCtx.TraceID().IsValid() {
			return spanCtx.TraceID().String()
		}
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}
