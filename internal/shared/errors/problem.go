// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail is an RFC 7807 body. Order-scoped failures carry the order id
// under Extensions["orderId"] so the UI can pin the message to one card.
type ProblemDetail struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Status     int            `json:"status"`
	Detail     string         `json:"detail,omitempty"`
	Instance   string         `json:"instance,omitempty"`
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	if p.Extensions == nil {
		p.Extensions = make(map[string]any)
	}
	p.Extensions[key] = value
	return p
}

// Problem types as URI references.
const (
	TypeValidation  = "/problems/validation-error"
	TypeConflict    = "/problems/conflict"
	TypeInternal    = "/problems/internal-error"
	TypeBadRequest  = "/problems/bad-request"
	TypeUpstream    = "/problems/upstream-failure"
	TypeUnavailable = "/problems/unavailable"
)

var (
	ErrValidation = ProblemDetail{Type: TypeValidation, Title: "Validation Error", Status: http.StatusBadRequest}
	ErrBadRequest = ProblemDetail{Type: TypeBadRequest, Title: "Bad Request", Status: http.StatusBadRequest}
	// ErrConflict covers actions that race the alarm state, e.g. accepting
	// an order that is no longer ringing.
	ErrConflict = ProblemDetail{Type: TypeConflict, Title: "Conflict", Status: http.StatusConflict}
	ErrInternal = ProblemDetail{Type: TypeInternal, Title: "Internal Server Error", Status: http.StatusInternalServerError}
	// ErrBadGateway indicates the order API rejected or failed a forwarded call.
	ErrBadGateway = ProblemDetail{Type: TypeUpstream, Title: "Upstream Request Failed", Status: http.StatusBadGateway}
	// ErrUnavailable indicates the snapshot store could not be reached.
	ErrUnavailable = ProblemDetail{Type: TypeUnavailable, Title: "Service Unavailable", Status: http.StatusServiceUnavailable}
)

// NewValidationProblem creates a validation error with field-level details.
func NewValidationProblem(fieldErrors map[string]string) ProblemDetail {
	return ErrValidation.WithExtension("fields", fieldErrors)
}

// NewUpstreamProblem scopes an order API failure to one order.
func NewUpstreamProblem(orderID, detail string) ProblemDetail {
	return ErrBadGateway.WithDetail(detail).WithExtension("orderId", orderID)
}
