// Package local answers evaluation requests in process with the reference evaluator.
package local

import (
	"context"
	"errors"
	"net/http"

	"github.com/aretw0/abacus/pkg/arith"
	"github.com/aretw0/abacus/pkg/domain"
)

// Evaluator implements ports.Evaluator on top of an arith.Registry.
//
// Arithmetic failures such as division by zero are part of a successful response
// (Result nil, Error set). Malformed expressions are a *domain.StatusError with
// status 400, as the remote evaluator would answer.
type Evaluator struct {
	registry *arith.Registry
}

// NewEvaluator creates an evaluator. A nil registry uses the default operations.
func NewEvaluator(registry *arith.Registry) *Evaluator {
	if registry == nil {
		registry = arith.NewRegistry()
	}
	return &Evaluator{registry: registry}
}

// Send evaluates req.Expression.
func (e *Evaluator) Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	if err := ctx.Err(); err != nil {
		return domain.EvaluationResponse{}, err
	}

	v, err := e.registry.Calculate(req.Expression)
	if err == nil {
		return domain.EvaluationResponse{Result: &v}, nil
	}
	if errors.Is(err, domain.ErrDivisionByZero) {
		msg := err.Error()
		return domain.EvaluationResponse{Error: &msg}, nil
	}
	return domain.EvaluationResponse{}, &domain.StatusError{Status: http.StatusBadRequest, Message: err.Error()}
}
