package ports

import (
	"context"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

// ResultCache stores successful evaluator responses keyed by normalized expression.
type ResultCache interface {
	// Get returns domain.ErrCacheMiss if the key is absent or expired.
	Get(ctx context.Context, key string) (domain.EvaluationResponse, error)

	// Set stores the response. A zero ttl means no expiration.
	Set(ctx context.Context, key string, resp domain.EvaluationResponse, ttl time.Duration) error
}
