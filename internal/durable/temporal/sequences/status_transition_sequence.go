package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	orderactivities "github.com/Apurer/pos-console/internal/platform/temporal/activities/orders"
)

// RunStatusTransitionSequence sends one status update. The activity is attempted
// once; an operator retry is a new click, not a workflow retry.
func RunStatusTransitionSequence(ctx workflow.Context, input orderactivities.StatusInput) error {
	logger := workflow.GetLogger(ctx)
	logger.Info("status transition sequence started", "orderId", input.OrderID, "status", input.Status)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, options)

	if err := workflow.ExecuteActivity(ctx, orderactivities.SetOrderStatusActivityName, input).Get(ctx, nil); err != nil {
		logger.Error("status transition sequence failed", "orderId", input.OrderID, "error", err)
		return err
	}
	logger.Info("status transition sequence sent", "orderId", input.OrderID)
	return nil
}
