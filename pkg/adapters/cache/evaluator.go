// Package cache decorates an Evaluator with a result cache.
//
// Concurrent misses for the same expression are coalesced in process with
// singleflight; across replicas an optional distributed lock serializes the fill.
// Only successful responses are stored, including arithmetic notes such as
// division by zero. Errors always reach the caller uncached.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/abacus/internal/logging"
	"github.com/aretw0/abacus/pkg/domain"
	"github.com/aretw0/abacus/pkg/ports"
	"golang.org/x/sync/singleflight"
)

// Evaluator implements ports.Evaluator on top of another Evaluator and a ResultCache.
type Evaluator struct {
	next    ports.Evaluator
	cache   ports.ResultCache
	locker  ports.DistributedLocker
	ttl     time.Duration
	lockTTL time.Duration
	logger  *slog.Logger
	flight  singleflight.Group
}

// Option configures the Evaluator.
type Option func(*Evaluator)

// WithTTL sets the expiration of cached entries. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(e *Evaluator) {
		e.ttl = ttl
	}
}

// WithLocker serializes cache fills across replicas.
func WithLocker(l ports.DistributedLocker, ttl time.Duration) Option {
	return func(e *Evaluator) {
		e.locker = l
		e.lockTTL = ttl
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// New wraps next with cache.
func New(next ports.Evaluator, cache ports.ResultCache, opts ...Option) *Evaluator {
	e := &Evaluator{
		next:    next,
		cache:   cache,
		lockTTL: 5 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Key normalizes an expression into a cache key by collapsing runs of whitespace.
func Key(expression string) string {
	return strings.Join(strings.Fields(expression), " ")
}

// Send answers from the cache when possible and evaluates otherwise.
// A caller that joined another caller's fill and received that caller's
// cancellation evaluates again under its own context.
func (e *Evaluator) Send(ctx context.Context, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	key := Key(req.Expression)

	if resp, ok := e.lookup(ctx, key); ok {
		return resp, nil
	}

	for {
		owner := false
		ch := e.flight.DoChan(key, func() (interface{}, error) {
			owner = true
			return e.fill(ctx, key, req)
		})

		var res singleflight.Result
		select {
		case res = <-ch:
		case <-ctx.Done():
			return domain.EvaluationResponse{}, ctx.Err()
		}

		if res.Err == nil {
			if res.Shared {
				e.logger.Debug("Coalesced evaluation", "key", key, "request_id", req.RequestID)
			}
			return res.Val.(domain.EvaluationResponse), nil
		}
		if owner || !isContextErr(res.Err) || ctx.Err() != nil {
			return domain.EvaluationResponse{}, res.Err
		}
		e.logger.Debug("Joined evaluation was canceled, retrying", "key", key, "request_id", req.RequestID)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func (e *Evaluator) fill(ctx context.Context, key string, req domain.EvaluationRequest) (domain.EvaluationResponse, error) {
	if e.locker != nil {
		unlock, err := e.locker.Lock(ctx, key, e.lockTTL)
		if err != nil {
			if ctx.Err() != nil {
				return domain.EvaluationResponse{}, ctx.Err()
			}
			e.logger.Warn("Cache lock unavailable, evaluating without it", "key", key, "error", err)
		} else {
			defer func() {
				if err := unlock(context.WithoutCancel(ctx)); err != nil {
					e.logger.Warn("Cache unlock failed", "key", key, "error", err)
				}
			}()
		}
	}

	// The entry may have been filled by an earlier flight or another replica.
	if resp, ok := e.lookup(ctx, key); ok {
		return resp, nil
	}

	resp, err := e.next.Send(ctx, req)
	if err != nil {
		return domain.EvaluationResponse{}, err
	}
	if err := e.cache.Set(ctx, key, resp, e.ttl); err != nil {
		e.logger.Warn("Cache write failed", "key", key, "error", err)
	}
	return resp, nil
}

func (e *Evaluator) lookup(ctx context.Context, key string) (domain.EvaluationResponse, bool) {
	resp, err := e.cache.Get(ctx, key)
	if err == nil {
		e.logger.Debug("Cache hit", "key", key)
		return resp, true
	}
	if !errors.Is(err, domain.ErrCacheMiss) {
		e.logger.Warn("Cache read failed", "key", key, "error", err)
	}
	return domain.EvaluationResponse{}, false
}
