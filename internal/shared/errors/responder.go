package errors

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// ContentTypeProblemJSON is the media type for Problem Details responses.
const ContentTypeProblemJSON = "application/problem+json"

// ErrorMapper translates a domain error into a problem, reporting false when
// it does not recognise the error.
type ErrorMapper func(err error) (ProblemDetail, bool)

// ChainedResponder writes problem+json bodies, consulting mappers in order
// before falling back to a 500.
type ChainedResponder struct {
	baseURI string
	mappers []ErrorMapper
}

// NewChainedResponder builds a responder. A non-empty baseURI is prefixed to
// relative problem types.
func NewChainedResponder(baseURI string, mappers ...ErrorMapper) *ChainedResponder {
	return &ChainedResponder{baseURI: baseURI, mappers: mappers}
}

// Respond writes problem with the request path as its instance when unset.
func (r *ChainedResponder) Respond(c *gin.Context, problem ProblemDetail) {
	if r.baseURI != "" && len(problem.Type) > 0 && problem.Type[0] == '/' {
		problem.Type = r.baseURI + problem.Type
	}
	if problem.Instance == "" {
		problem.Instance = c.Request.URL.Path
	}
	c.Header("Content-Type", ContentTypeProblemJSON)
	c.JSON(problem.Status, problem)
}

// RespondError maps err and writes it. Errors that already are problems pass
// through unchanged.
func (r *ChainedResponder) RespondError(c *gin.Context, err error) {
	for _, mapper := range r.mappers {
		if problem, ok := mapper(err); ok {
			r.Respond(c, problem)
			return
		}
	}
	var problem ProblemDetail
	if errors.As(err, &problem) {
		r.Respond(c, problem)
		return
	}
	r.Respond(c, ErrInternal.WithDetail(err.Error()))
}

// BadRequest writes a 400 for an unparseable body.
func (r *ChainedResponder) BadRequest(c *gin.Context, detail string) {
	r.Respond(c, ErrBadRequest.WithDetail(detail))
}

// ValidationFailed writes a 400 carrying per-field messages.
func (r *ChainedResponder) ValidationFailed(c *gin.Context, fieldErrors map[string]string) {
	r.Respond(c, NewValidationProblem(fieldErrors))
}
