// Package pipeline wraps a single call to the remote evaluator with retry,
// exponential backoff and error classification.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/google/uuid"
)

// Pipeline submits expressions to an Evaluator. It holds no per-submission state,
// so concurrent Submit calls each run an independent retry timeline.
type Pipeline struct {
	evaluator ports.Evaluator
	policy    Policy
	sleep     Sleeper
	random    func() float64
	hooks     domain.PipelineHooks
	logger    *slog.Logger
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithPolicy overrides the default retry policy.
func WithPolicy(p Policy) Option {
	return func(pl *Pipeline) {
		pl.policy = p
	}
}

// WithSleeper replaces the timer used between retries.
func WithSleeper(s Sleeper) Option {
	return func(pl *Pipeline) {
		pl.sleep = s
	}
}

// WithRandom replaces the jitter source. fn must return values in [0, 1).
func WithRandom(fn func() float64) Option {
	return func(pl *Pipeline) {
		pl.random = fn
	}
}

// WithHooks registers observability hooks.
func WithHooks(h domain.PipelineHooks) Option {
	return func(pl *Pipeline) {
		pl.hooks = h
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pl *Pipeline) {
		pl.logger = logger
	}
}

// New creates a Pipeline around the given evaluator.
func New(evaluator ports.Evaluator, opts ...Option) *Pipeline {
	p := &Pipeline{
		evaluator: evaluator,
		policy:    DefaultPolicy(),
		sleep:     TimerSleep,
		random:    defaultRandom,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Policy returns the retry policy in effect.
func (p *Pipeline) Policy() Policy {
	return p.policy
}

// Submit sends expression to the evaluator and returns the classified result.
// It never returns a partially populated result. Retryable failures are attempted
// again up to Policy.MaxRetries times; the last failure is surfaced.
func (p *Pipeline) Submit(ctx context.Context, expression string) domain.EvaluationResult {
	start := time.Now()
	req := domain.EvaluationRequest{
		Expression: expression,
		RequestID:  uuid.NewString(),
	}
	logger := p.logger.With("request_id", req.RequestID)

	result := p.run(ctx, req, logger)

	if p.hooks.OnResult != nil {
		p.hooks.OnResult(ctx, &domain.ResultEvent{
			EventBase: p.event(domain.EventResult, req.RequestID),
			Result:    result,
			Duration:  time.Since(start),
		})
	}
	if !result.OK {
		logger.Info("Submission failed", "kind", result.Kind, "attempts", result.Attempts, "msg", result.Message)
	}
	return result
}

func (p *Pipeline) run(ctx context.Context, req domain.EvaluationRequest, logger *slog.Logger) domain.EvaluationResult {
	var last domain.EvaluationResult
	maxAttempts := p.policy.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return p.canceled(attempt - 1)
		}

		attemptStart := time.Now()
		resp, err := p.evaluator.Send(ctx, req)
		if err == nil {
			p.notifyAttempt(ctx, p.onAttempt(req, attempt, attemptStart, "", 0, nil))
			logger.Debug("Evaluator responded", "attempt", attempt)
			result := domain.SuccessFromResponse(resp)
			result.Attempts = attempt
			return result
		}

		last = Classify(err)
		last.Attempts = attempt
		p.notifyAttempt(ctx, p.onAttempt(req, attempt, attemptStart, last.Kind, statusOf(err), err))
		logger.Debug("Evaluator call failed", "attempt", attempt, "kind", last.Kind, "err", err)

		if ctx.Err() != nil {
			return p.canceled(attempt)
		}
		if !last.Kind.Retryable() || attempt == maxAttempts {
			return last
		}

		delay := p.policy.Delay(attempt, p.random)
		logger.Warn("Retrying evaluation", "attempt", attempt, "kind", last.Kind, "delay", delay)
		if p.hooks.OnRetry != nil {
			ev := p.onAttempt(req, attempt, attemptStart, last.Kind, statusOf(err), err)
			ev.Type = domain.EventRetry
			ev.Delay = delay
			p.hooks.OnRetry(ctx, ev)
		}

		if err := p.sleep(ctx, delay); err != nil {
			return p.canceled(attempt)
		}
	}
	return last
}

func (p *Pipeline) canceled(attempts int) domain.EvaluationResult {
	r := domain.Failure(domain.FailureCanceled, domain.MessageCanceled)
	r.Attempts = attempts
	return r
}

func (p *Pipeline) onAttempt(req domain.EvaluationRequest, attempt int, started time.Time, kind domain.FailureKind, status int, err error) *domain.AttemptEvent {
	return &domain.AttemptEvent{
		EventBase: p.event(domain.EventAttempt, req.RequestID),
		Attempt:   attempt,
		Duration:  time.Since(started),
		Kind:      kind,
		Status:    status,
		Err:       err,
	}
}

func (p *Pipeline) notifyAttempt(ctx context.Context, ev *domain.AttemptEvent) {
	if p.hooks.OnAttempt != nil {
		p.hooks.OnAttempt(ctx, ev)
	}
}

func (p *Pipeline) event(t domain.EventType, requestID string) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RequestID: requestID}
}

func statusOf(err error) int {
	var statusErr *domain.StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Status
	}
	return 0
}
