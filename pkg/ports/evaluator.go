package ports

import (
	"context"

	"github.com/aretw0/abacus/pkg/domain"
)

// Evaluator is the capability that computes a validated expression.
//
// A non-2xx answer from a remote evaluator MUST be reported as *domain.StatusError.
// Any other error is treated as a transport failure (no response received).
type Evaluator interface {
	Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error)

// Send calls f(ctx, req).
func (f EvaluatorFunc) Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	return f(ctx, req)
}

// Submitter runs one submission to completion and never fails with a Go error.
// *pipeline.Pipeline is the production implementation.
type Submitter interface {
	Submit(ctx context.Context, expression string) domain.EvaluationResult
}
