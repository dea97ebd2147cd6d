package orders

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/testsuite"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	orderactivities "github.com/Apurer/pos-console/internal/platform/temporal/activities/orders"
)

func newEnv(t *testing.T) *testsuite.TestWorkflowEnvironment {
	t.Helper()
	var suite testsuite.WorkflowTestSuite
	env := suite.NewTestWorkflowEnvironment()
	activities := orderactivities.NewActivities(nil)
	env.RegisterActivityWithOptions(activities.SetOrderStatus, activity.RegisterOptions{Name: orderactivities.SetOrderStatusActivityName})
	return env
}

func TestStatusTransitionWorkflow_Completes(t *testing.T) {
	env := newEnv(t)
	env.OnActivity(orderactivities.SetOrderStatusActivityName, mock.Anything, mock.Anything).Return(nil).Once()

	env.ExecuteWorkflow(StatusTransitionWorkflow, StatusTransitionWorkflowInput{
		Command: orderactivities.StatusInput{OrderID: "42", Status: domain.StatusAccepted},
	})

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	env.AssertExpectations(t)
}

func TestStatusTransitionWorkflow_DoesNotRetry(t *testing.T) {
	env := newEnv(t)
	failure := temporal.NewApplicationError("order API error", orderactivities.ActionErrorType, errors.New("409"))
	env.OnActivity(orderactivities.SetOrderStatusActivityName, mock.Anything, mock.Anything).Return(failure).Once()

	env.ExecuteWorkflow(StatusTransitionWorkflow, StatusTransitionWorkflowInput{
		Command: orderactivities.StatusInput{OrderID: "42", Status: domain.StatusRejected},
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	var appErr *temporal.ApplicationError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, orderactivities.ActionErrorType, appErr.Type())
	env.AssertExpectations(t)
}
