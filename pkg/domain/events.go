package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventAttempt    EventType = "attempt"
	EventRetry      EventType = "retry"
	EventResult     EventType = "result"
	EventTransition EventType = "transition"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RequestID string    `json:"request_id,omitempty"`
}

// AttemptEvent describes one call to the evaluator, or the wait before the next one.
type AttemptEvent struct {
	EventBase
	Attempt  int           `json:"attempt"`
	Duration time.Duration `json:"duration"`
	Kind     FailureKind   `json:"kind,omitempty"`
	Status   int           `json:"status,omitempty"`
	Delay    time.Duration `json:"delay,omitempty"`
	Err      error         `json:"-"`
}

// ResultEvent reports the final result of a pipeline run.
type ResultEvent struct {
	EventBase
	Result   EvaluationResult `json:"result"`
	Duration time.Duration    `json:"duration"`
}

// TransitionEvent reports a state change applied by the submission controller.
type TransitionEvent struct {
	EventBase
	Sequence uint64          `json:"sequence"`
	From     SubmissionState `json:"from"`
	To       SubmissionState `json:"to"`
	Diff     *StateDiff      `json:"diff,omitempty"`
}

// PipelineHooks defines callbacks for request pipeline observability.
type PipelineHooks struct {
	OnAttempt func(context.Context, *AttemptEvent)
	OnRetry   func(context.Context, *AttemptEvent)
	OnResult  func(context.Context, *ResultEvent)
}
