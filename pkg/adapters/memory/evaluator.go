package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

// ErrUnreachable simulates a transport failure: no response was received.
var ErrUnreachable = errors.New("memory: evaluator unreachable")

// Step is one scripted answer of the Evaluator.
type Step struct {
	Response domain.EvaluationResponse
	Err      error

	// Delay holds the answer back for a fixed time.
	Delay time.Duration
	// Release, when set, holds the answer back until the channel is closed.
	Release <-chan struct{}
	// IgnoreCancel keeps waiting even when the request context ends,
	// mimicking a transport that cannot be aborted mid-flight.
	IgnoreCancel bool
}

// Respond answers with a value.
func Respond(result int64) Step {
	return Step{Response: domain.EvaluationResponse{Result: &result}}
}

// RespondNote answers successfully with a business-level error and no value.
func RespondNote(note string) Step {
	return Step{Response: domain.EvaluationResponse{Error: &note}}
}

// Status answers with an HTTP error status and optional remote message.
func Status(code int, message string) Step {
	return Step{Err: &domain.StatusError{Status: code, Message: message}}
}

// Unreachable answers with a transport failure.
func Unreachable() Step {
	return Step{Err: ErrUnreachable}
}

// Evaluator implements ports.Evaluator by replaying a script.
// Once the script is exhausted the last step repeats. Safe for concurrent use.
type Evaluator struct {
	mu       sync.Mutex
	script   []Step
	requests []domain.EvaluationRequest
}

// NewEvaluator creates a scripted evaluator.
func NewEvaluator(steps ...Step) *Evaluator {
	return &Evaluator{script: steps}
}

// Send records the request and plays the next step.
func (e *Evaluator) Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	step := e.next(req)

	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-e.done(ctx, step):
			return domain.EvaluationResponse{}, ctx.Err()
		}
	}
	if step.Release != nil {
		select {
		case <-step.Release:
		case <-e.done(ctx, step):
			return domain.EvaluationResponse{}, ctx.Err()
		}
	}
	return step.Response, step.Err
}

// Calls returns how many requests were received.
func (e *Evaluator) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.requests)
}

// Requests returns a copy of the received requests in arrival order.
func (e *Evaluator) Requests() []domain.EvaluationRequest {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]domain.EvaluationRequest, len(e.requests))
	copy(out, e.requests)
	return out
}

func (e *Evaluator) next(req domain.EvaluationRequest) Step {
	e.mu.Lock()
	defer e.mu.Unlock()

	idx := len(e.requests)
	e.requests = append(e.requests, req)

	if len(e.script) == 0 {
		return Unreachable()
	}
	if idx >= len(e.script) {
		idx = len(e.script) - 1
	}
	return e.script[idx]
}

func (e *Evaluator) done(ctx context.Context, step Step) <-chan struct{} {
	if step.IgnoreCancel {
		return nil
	}
	return ctx.Done()
}
