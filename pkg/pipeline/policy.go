package pipeline

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"
)

// Policy configures retry behavior with exponential backoff.
type Policy struct {
	// MaxRetries is the number of additional attempts after the first one.
	// Default: 3 (4 attempts total)
	MaxRetries int

	// BaseDelay is the wait before the first retry. Retry n waits BaseDelay * 2^(n-1).
	// Default: 1s
	BaseDelay time.Duration

	// JitterFraction bounds the random delay added on top of each wait,
	// drawn uniformly from [0, JitterFraction * delay]. Default: 0.1
	JitterFraction float64
}

// DefaultPolicy returns the standard submission retry policy.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries:     3,
		BaseDelay:      1 * time.Second,
		JitterFraction: 0.1,
	}
}

// Validate checks if the policy is usable.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return fmt.Errorf("max retries must not be negative: %d", p.MaxRetries)
	}
	if p.BaseDelay < 0 {
		return fmt.Errorf("base delay must not be negative: %s", p.BaseDelay)
	}
	if p.JitterFraction < 0 || p.JitterFraction > 1 {
		return fmt.Errorf("jitter fraction must be within [0, 1]: %v", p.JitterFraction)
	}
	return nil
}

// Backoff returns the delay before retry n (1-indexed) without jitter.
func (p Policy) Backoff(n int) time.Duration {
	if n < 1 {
		return 0
	}
	return p.BaseDelay << (n - 1)
}

// Delay returns the backoff for retry n plus jitter. random must return a value in [0, 1).
func (p Policy) Delay(n int, random func() float64) time.Duration {
	base := p.Backoff(n)
	if p.JitterFraction <= 0 || random == nil {
		return base
	}
	return base + time.Duration(random()*p.JitterFraction*float64(base))
}

// Sleeper waits for d or until ctx is done, whichever comes first.
type Sleeper func(ctx context.Context, d time.Duration) error

// TimerSleep is the default Sleeper backed by a timer.
func TimerSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func defaultRandom() float64 {
	return rand.Float64()
}
