package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

type cacheEntry struct {
	resp      domain.EvaluationResponse
	expiresAt time.Time
}

// Cache implements ports.ResultCache in memory.
// Safe for concurrent use.
type Cache struct {
	data map[string]cacheEntry
	mu   sync.RWMutex
	now  func() time.Time
}

// NewCache creates a new in-memory cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[string]cacheEntry),
		now:  time.Now,
	}
}

// Get retrieves a response. Expired entries are reported as misses.
func (c *Cache) Get(ctx context.Context, key string) (domain.EvaluationResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok {
		return domain.EvaluationResponse{}, domain.ErrCacheMiss
	}
	if !entry.expiresAt.IsZero() && !c.now().Before(entry.expiresAt) {
		return domain.EvaluationResponse{}, domain.ErrCacheMiss
	}
	return copyResponse(entry.resp), nil
}

// Set stores a copy of resp so the caller can't mutate cached values by pointer.
func (c *Cache) Set(ctx context.Context, key string, resp domain.EvaluationResponse, ttl time.Duration) error {
	entry := cacheEntry{resp: copyResponse(resp)}
	if ttl > 0 {
		entry.expiresAt = c.now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = entry
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

func copyResponse(r domain.EvaluationResponse) domain.EvaluationResponse {
	out := domain.EvaluationResponse{}
	if r.Result != nil {
		v := *r.Result
		out.Result = &v
	}
	if r.Error != nil {
		e := *r.Error
		out.Error = &e
	}
	return out
}
