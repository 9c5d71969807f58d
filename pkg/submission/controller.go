// Package submission owns the observable state of one calculator form.
//
// A Controller validates the current expression, drives a submission through
// a ports.Submitter and applies only the result of the latest submission it started.
package submission

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"github.com/aretw0/abacus/pkg/validator"
)

// ValidateFunc classifies raw input. validator.Validate is the default.
type ValidateFunc func(raw string) domain.ValidationOutcome

// Observer receives every applied transition, in order.
// Observers run synchronously and must not call back into the Controller.
type Observer func(domain.TransitionEvent)

// Controller is the single writer of a SubmissionState.
// All methods are safe for concurrent use.
type Controller struct {
	submitter ports.Submitter
	validate  ValidateFunc
	observers []Observer
	logger    *slog.Logger

	mu     sync.Mutex
	state  domain.SubmissionState
	form   domain.FormState
	seq    uint64
	cancel context.CancelFunc

	// notifyMu keeps observer delivery in transition order.
	notifyMu sync.Mutex
}

// Option configures the Controller.
type Option func(*Controller)

// WithObserver registers a transition observer.
func WithObserver(o Observer) Option {
	return func(c *Controller) {
		c.observers = append(c.observers, o)
	}
}

// WithValidator replaces the expression validator.
func WithValidator(fn ValidateFunc) Option {
	return func(c *Controller) {
		c.validate = fn
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// New creates a Controller in the idle state with an empty, untouched form.
func New(submitter ports.Submitter, opts ...Option) *Controller {
	c := &Controller{
		submitter: submitter,
		validate:  validator.Validate,
		logger:    logging.NewNop(),
		state:     domain.Idle(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.form = domain.FormState{Validation: c.validate("")}
	return c
}

// SetExpression updates the form value and returns its validation outcome.
// It does not touch the submission state.
func (c *Controller) SetExpression(raw string) domain.ValidationOutcome {
	outcome := c.validate(raw)

	c.mu.Lock()
	c.form.Expression = raw
	c.form.Validation = outcome
	c.mu.Unlock()

	return outcome
}

// Calculate submits the current expression and blocks until its result is applied
// or discarded.
//
// An invalid expression marks the form touched and returns a *domain.ValidationError
// without changing the submission state. Otherwise the state moves to Loading, and
// then to the settled state derived from the pipeline result, unless a newer
// Calculate or a Clear superseded this submission in the meantime. Failures of the
// submission itself are reported through State, not through the returned error.
func (c *Controller) Calculate(ctx context.Context) error {
	c.mu.Lock()
	c.form.Touched = true
	outcome := c.validate(c.form.Expression)
	c.form.Validation = outcome
	if !outcome.Valid {
		c.mu.Unlock()
		c.logger.Debug("Expression rejected", "reason", outcome.Reason)
		return outcome.Err()
	}

	if c.cancel != nil {
		c.cancel()
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.seq++
	seq := c.seq
	c.cancel = cancel
	ev := c.transitionLocked(seq, domain.Loading())
	c.mu.Unlock()
	c.publish(ev)

	defer cancel()
	result := c.submitter.Submit(runCtx, outcome.Expression)

	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		c.logger.Debug("Discarding stale result", "sequence", seq)
		return nil
	}
	c.cancel = nil
	ev = c.transitionLocked(seq, domain.StateFromResult(result))
	c.mu.Unlock()
	c.publish(ev)

	return nil
}

// Clear resets the form and the submission state from any state.
// A submission still in flight is canceled and its result will be discarded.
func (c *Controller) Clear() {
	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.seq++
	c.form = domain.FormState{Validation: c.validate("")}
	ev := c.transitionLocked(c.seq, domain.Idle())
	c.mu.Unlock()
	c.publish(ev)
}

// State returns a snapshot of the submission state.
func (c *Controller) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Snapshot()
}

// Form returns a snapshot of the form.
func (c *Controller) Form() domain.FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// transitionLocked swaps the state and returns the event to publish.
// It must be called with c.mu held. The event is nil when nothing changed.
func (c *Controller) transitionLocked(seq uint64, next domain.SubmissionState) *domain.TransitionEvent {
	prev := c.state
	c.state = next
	diff := domain.Diff(prev, next)
	if diff == nil || len(c.observers) == 0 {
		return nil
	}
	// Take notifyMu before releasing c.mu so publications keep transition order.
	c.notifyMu.Lock()
	return &domain.TransitionEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventTransition},
		Sequence:  seq,
		From:      prev.Snapshot(),
		To:        next.Snapshot(),
		Diff:      diff,
	}
}

func (c *Controller) publish(ev *domain.TransitionEvent) {
	if ev == nil {
		return
	}
	defer c.notifyMu.Unlock()
	for _, o := range c.observers {
		o(*ev)
	}
}
