package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Apurer/pos-console/internal/domains/console/adapters/http/mapper"
	"github.com/Apurer/pos-console/internal/domains/console/domain"
	orderapp "github.com/Apurer/pos-console/internal/domains/orders/application"
	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
	orderports "github.com/Apurer/pos-console/internal/domains/orders/ports"
	apierrors "github.com/Apurer/pos-console/internal/shared/errors"
)

// Console is the notification surface served to operator views.
type Console interface {
	Snapshot() domain.Snapshot
	Subscribe() (<-chan domain.Snapshot, func())
	Gesture(ctx context.Context)
	Resolve(ctx context.Context, orderID string, action orders.Status) error
	Act(ctx context.Context, orderID string, action orders.Status) error
	PendingCount() int
	Suspend()
}

// History clears the notified-order snapshot.
type History interface {
	ClearHistory(ctx context.Context) error
}

// ConsoleAPI wires HTTP transport to the console and the order subsystem.
type ConsoleAPI struct {
	console   Console
	history   History
	tokens    orderports.TokenStore
	alarmPath string
	responder *apierrors.ChainedResponder
}

type Option func(*ConsoleAPI)

// WithAlarmAsset serves the alarm sound file at GET /assets/alarm.
func WithAlarmAsset(path string) Option {
	return func(api *ConsoleAPI) {
		api.alarmPath = strings.TrimSpace(path)
	}
}

func NewConsoleAPI(console Console, history History, tokens orderports.TokenStore, opts ...Option) *ConsoleAPI {
	api := &ConsoleAPI{
		console:   console,
		history:   history,
		tokens:    tokens,
		responder: apierrors.NewChainedResponder("", mapConsoleError),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(api)
		}
	}
	return api
}

// Register mounts the console routes.
func (api *ConsoleAPI) Register(router gin.IRouter) {
	v1 := router.Group("/v1")
	v1.GET("/console/state", api.GetState)
	v1.GET("/console/events", api.StreamEvents)
	v1.POST("/console/gesture", api.Gesture)
	v1.POST("/console/orders/:orderId/accept", api.Accept)
	v1.POST("/console/orders/:orderId/reject", api.Reject)
	v1.DELETE("/console/history", api.ClearHistory)
	v1.PUT("/orders/:orderId/status", api.UpdateOrderStatus)
	v1.GET("/orders/pending-count", api.GetPendingCount)
	v1.PUT("/session/token", api.SetToken)
	v1.DELETE("/session/token", api.ClearToken)
	if api.alarmPath != "" {
		router.GET("/assets/alarm", api.AlarmAsset)
	}
}

// Get /v1/console/state
func (api *ConsoleAPI) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.FromSnapshot(api.console.Snapshot()))
}

// Get /v1/console/events
// Streams one snapshot per state change as server-sent events.
func (api *ConsoleAPI) StreamEvents(c *gin.Context) {
	updates, cancel := api.console.Subscribe()
	defer cancel()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("snapshot", mapper.FromSnapshot(api.console.Snapshot()))
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case snapshot, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("snapshot", mapper.FromSnapshot(snapshot))
			return true
		}
	})
}

// Post /v1/console/gesture
func (api *ConsoleAPI) Gesture(c *gin.Context) {
	api.console.Gesture(c.Request.Context())
	c.JSON(http.StatusOK, mapper.FromSnapshot(api.console.Snapshot()))
}

// Post /v1/console/orders/:orderId/accept
func (api *ConsoleAPI) Accept(c *gin.Context) {
	api.resolve(c, orders.StatusAccepted)
}

// Post /v1/console/orders/:orderId/reject
func (api *ConsoleAPI) Reject(c *gin.Context) {
	api.resolve(c, orders.StatusRejected)
}

func (api *ConsoleAPI) resolve(c *gin.Context, action orders.Status) {
	orderID, ok := api.orderIDParam(c)
	if !ok {
		return
	}
	if err := api.console.Resolve(c.Request.Context(), orderID, action); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mapper.FromSnapshot(api.console.Snapshot()))
}

// Put /v1/orders/:orderId/status
// List-view action; failures are reported for this order only.
func (api *ConsoleAPI) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := api.orderIDParam(c)
	if !ok {
		return
	}
	var payload mapper.StatusUpdate
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	status := orders.Status(strings.ToUpper(strings.TrimSpace(payload.Status)))
	if err := api.console.Act(c.Request.Context(), orderID, status); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/orders/pending-count
func (api *ConsoleAPI) GetPendingCount(c *gin.Context) {
	c.JSON(http.StatusOK, mapper.PendingCount{Count: api.console.PendingCount()})
}

// Put /v1/session/token
func (api *ConsoleAPI) SetToken(c *gin.Context) {
	var payload mapper.Token
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	token := strings.TrimSpace(payload.Token)
	if token == "" {
		api.responder.ValidationFailed(c, map[string]string{"token": "must not be blank"})
		return
	}
	if err := api.tokens.SetToken(c.Request.Context(), token); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete /v1/session/token
// Signing out suspends polling and silences any ringing alarm.
func (api *ConsoleAPI) ClearToken(c *gin.Context) {
	if err := api.tokens.ClearToken(c.Request.Context()); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	api.console.Suspend()
	c.Status(http.StatusNoContent)
}

// Delete /v1/console/history
func (api *ConsoleAPI) ClearHistory(c *gin.Context) {
	if err := api.history.ClearHistory(c.Request.Context()); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /assets/alarm
func (api *ConsoleAPI) AlarmAsset(c *gin.Context) {
	c.File(api.alarmPath)
}

func (api *ConsoleAPI) orderIDParam(c *gin.Context) (string, bool) {
	orderID := strings.TrimSpace(c.Param("orderId"))
	if orderID == "" {
		api.responder.ValidationFailed(c, map[string]string{"orderId": "is required"})
		return "", false
	}
	return orderID, true
}

func mapConsoleError(err error) (apierrors.ProblemDetail, bool) {
	var actionErr *orderports.ActionError
	switch {
	case errors.As(err, &actionErr):
		detail := actionErr.Message
		if detail == "" {
			detail = actionErr.Error()
		}
		return apierrors.NewUpstreamProblem(actionErr.OrderID, detail), true
	case errors.Is(err, domain.ErrNotRinging), errors.Is(err, domain.ErrActionInFlight):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	case errors.Is(err, orders.ErrMissingOrderID),
		errors.Is(err, orders.ErrInvalidTransition),
		errors.Is(err, orderapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, orderapp.ErrSnapshotUnavailable):
		return apierrors.ErrUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}
