package llm

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// limitedClient wraps a Client with a token bucket so provider rate limits
// are respected without the pipeline knowing about them.
type limitedClient struct {
	inner   Client
	limiter *rateLimiter
}

func newLimitedClient(inner Client, requestsPerMinute int) *limitedClient {
	return &limitedClient{
		inner:   inner,
		limiter: newRateLimiter(requestsPerMinute),
	}
}

// Call waits for a request slot and delegates to the wrapped client.
func (c *limitedClient) Call(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.wait(ctx); err != nil {
		return "", err
	}
	return c.inner.Call(ctx, prompt)
}

// rateLimiter implements a token bucket. Tokens are replenished on demand
// from the wall-clock time elapsed since the last acquire, so the limiter
// needs no background goroutine and no teardown.
type rateLimiter struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	perSec   float64
	last     time.Time
	now      func() time.Time
}

// newRateLimiter creates a new rate limiter with the specified requests per minute.
func newRateLimiter(requestsPerMinute int) *rateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 60
	}

	return &rateLimiter{
		tokens:   float64(requestsPerMinute),
		capacity: float64(requestsPerMinute),
		perSec:   float64(requestsPerMinute) / 60,
		now:      time.Now,
	}
}

// wait blocks until a token is available or the context is canceled.
func (rl *rateLimiter) wait(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if rl.tryAcquire() {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("rate limiter canceled: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// tryAcquire refills the bucket from the elapsed time, then attempts to take
// a token without blocking.
func (rl *rateLimiter) tryAcquire() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if !rl.last.IsZero() {
		rl.tokens = math.Min(rl.capacity, rl.tokens+now.Sub(rl.last).Seconds()*rl.perSec)
	}
	rl.last = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}
