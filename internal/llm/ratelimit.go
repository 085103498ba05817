package llm

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter is a token bucket spacing model calls: capacity burst, one token
// refilled per interval. Acquire blocks until a token is available or the
// context expires, replacing fixed-sleep throttling with a contract that
// tests can drive on a fake clock.
type Limiter struct {
	mu       sync.Mutex
	interval time.Duration
	burst    int
	tokens   float64
	last     time.Time

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewLimiter builds a limiter with a full bucket. A non-positive interval
// disables limiting.
func NewLimiter(interval time.Duration, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	l := &Limiter{
		interval: interval,
		burst:    burst,
		tokens:   float64(burst),
		now:      time.Now,
		sleep:    sleepContext,
	}
	l.last = l.now()
	return l
}

// Acquire takes one token, waiting for a refill when the bucket is empty.
// Context errors surface wrapped in ErrRateLimited.
func (l *Limiter) Acquire(ctx context.Context) error {
	if l == nil || l.interval <= 0 {
		return nil
	}

	for {
		l.mu.Lock()
		now := l.now()
		if elapsed := now.Sub(l.last); elapsed > 0 {
			l.tokens += float64(elapsed) / float64(l.interval)
			if l.tokens > float64(l.burst) {
				l.tokens = float64(l.burst)
			}
			l.last = now
		}
		if l.tokens >= 1 {
			l.tokens--
			l.mu.Unlock()
			return nil
		}
		wait := time.Duration((1 - l.tokens) * float64(l.interval))
		l.mu.Unlock()

		if err := l.sleep(ctx, wait); err != nil {
			return fmt.Errorf("%w: %w", ErrRateLimited, err)
		}
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
