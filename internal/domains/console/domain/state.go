package domain

import (
	"errors"

	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
)

// Phase is the notification modal's lifecycle position.
type Phase string

const (
	PhaseIdle      Phase = "IDLE"
	PhaseRinging   Phase = "RINGING"
	PhaseResolving Phase = "RESOLVING"
)

var (
	ErrNotRinging     = errors.New("order is not the subject of the ringing notification")
	ErrActionInFlight = errors.New("an action for this order is already in flight")
)

// InlineError is shown next to the modal's action buttons for one order only.
type InlineError struct {
	OrderID string
	Message string
}

// State is the notification state machine: IDLE, RINGING(order), RESOLVING(order).
type State struct {
	Phase     Phase
	Order     *orders.Order
	Action    orders.Status
	Confirmed bool
	Error     *InlineError
	Queued    *orders.Order
}

// Idle is the initial state.
func Idle() State { return State{Phase: PhaseIdle} }

// ButtonsEnabled is true only while ringing; RESOLVING disables both actions.
func (s State) ButtonsEnabled() bool { return s.Phase == PhaseRinging }

// Subject returns the id of the order the modal is about, or "".
func (s State) Subject() string {
	if s.Order == nil {
		return ""
	}
	return s.Order.ID
}

// Ring presents order. While resolving the order is queued instead.
func (s State) Ring(order orders.Order) State {
	if s.Phase == PhaseResolving {
		if s.Subject() == order.ID {
			return s
		}
		s.Queued = &order
		return s
	}
	return State{Phase: PhaseRinging, Order: &order, Queued: s.Queued}
}

// Begin records the operator's choice and disables the buttons.
func (s State) Begin(orderID string, action orders.Status) (State, error) {
	if err := orders.ValidateTransition(orderID, action); err != nil {
		return s, err
	}
	switch {
	case s.Subject() != orderID:
		return s, ErrNotRinging
	case s.Phase == PhaseResolving:
		return s, ErrActionInFlight
	case s.Phase != PhaseRinging:
		return s, ErrNotRinging
	}
	s.Phase = PhaseResolving
	s.Action = action
	s.Confirmed = false
	s.Error = nil
	return s, nil
}

// Succeed marks the in-flight action confirmed; the modal closes later via Close.
func (s State) Succeed(orderID string) State {
	if s.Phase != PhaseResolving || s.Subject() != orderID {
		return s
	}
	s.Confirmed = true
	return s
}

// Fail returns to RINGING with an inline error scoped to the order.
func (s State) Fail(orderID, message string) State {
	if s.Phase != PhaseResolving || s.Subject() != orderID {
		return s
	}
	s.Phase = PhaseRinging
	s.Action = ""
	s.Confirmed = false
	s.Error = &InlineError{OrderID: orderID, Message: message}
	return s
}

// Close ends a confirmed resolution, presenting the queued order when there is one.
func (s State) Close(orderID string) State {
	if s.Phase != PhaseResolving || s.Subject() != orderID || !s.Confirmed {
		return s
	}
	if s.Queued != nil {
		return State{Phase: PhaseRinging, Order: s.Queued}
	}
	return Idle()
}

// Dequeue drops orderID from the queue slot, used when the order was handled
// from another view before the modal reached it.
func (s State) Dequeue(orderID string) State {
	if s.Queued != nil && s.Queued.ID == orderID {
		s.Queued = nil
	}
	return s
}
