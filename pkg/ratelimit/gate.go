package ratelimit

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval keeps regulator traffic under ~9 requests per second
const DefaultInterval = 110 * time.Millisecond

// Gate enforces a minimum spacing between successive request starts.
// ⭐ SSOT: one Gate per upstream host, created at process start and injected
// into every client that talks to that host.
//
// The underlying limiter holds the last-reservation timestamp behind its own
// mutex, so concurrent callers are serialized without busy-waiting.
type Gate struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewGate creates a gate allowing one request per interval with no burst
func NewGate(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Gate{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the caller may issue its request or ctx is done
func (g *Gate) Wait(ctx context.Context) error {
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate gate: %w", err)
	}
	return nil
}

// Interval returns the configured minimum spacing
func (g *Gate) Interval() time.Duration {
	return g.interval
}
