package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/abacus/pkg/domain"
)

// LoggingHooks returns pipeline hooks that log every event with logger.
func LoggingHooks(logger *slog.Logger) domain.PipelineHooks {
	return domain.PipelineHooks{
		OnAttempt: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.DebugContext(ctx, "attempt",
				"request_id", e.RequestID,
				"attempt", e.Attempt,
				"kind", e.Kind,
				"status", e.Status,
				"duration", e.Duration,
			)
		},
		OnRetry: func(ctx context.Context, e *domain.AttemptEvent) {
			logger.InfoContext(ctx, "retry",
				"request_id", e.RequestID,
				"attempt", e.Attempt,
				"kind", e.Kind,
				"delay", e.Delay,
			)
		},
		OnResult: func(ctx context.Context, e *domain.ResultEvent) {
			logger.InfoContext(ctx, "result",
				"request_id", e.RequestID,
				"ok", e.Result.OK,
				"kind", e.Result.Kind,
				"attempts", e.Result.Attempts,
				"duration", e.Duration,
			)
		},
	}
}

// LogTransitions returns a submission observer that logs state transitions.
func LogTransitions(logger *slog.Logger) func(domain.TransitionEvent) {
	return func(e domain.TransitionEvent) {
		logger.Debug("transition",
			"sequence", e.Sequence,
			"loading", e.To.IsLoading,
			"error_message", e.To.ErrorMessage,
			"has_result", e.To.Result != nil,
		)
	}
}

// Chain merges several hook sets. Callbacks run in argument order.
func Chain(sets ...domain.PipelineHooks) domain.PipelineHooks {
	var attempt, retry []func(context.Context, *domain.AttemptEvent)
	var result []func(context.Context, *domain.ResultEvent)
	for _, h := range sets {
		if h.OnAttempt != nil {
			attempt = append(attempt, h.OnAttempt)
		}
		if h.OnRetry != nil {
			retry = append(retry, h.OnRetry)
		}
		if h.OnResult != nil {
			result = append(result, h.OnResult)
		}
	}

	var out domain.PipelineHooks
	if len(attempt) > 0 {
		out.OnAttempt = func(ctx context.Context, e *domain.AttemptEvent) {
			for _, fn := range attempt {
				fn(ctx, e)
			}
		}
	}
	if len(retry) > 0 {
		out.OnRetry = func(ctx context.Context, e *domain.AttemptEvent) {
			for _, fn := range retry {
				fn(ctx, e)
			}
		}
	}
	if len(result) > 0 {
		out.OnResult = func(ctx context.Context, e *domain.ResultEvent) {
			for _, fn := range result {
				fn(ctx, e)
			}
		}
	}
	return out
}
