// Package ratelimit gates request starts so probes never begin closer
// together than a configured interval.
package ratelimit

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/time/rate"

	"github.com/plinora/linkcheck/internal/metrics"
)

// StartGate serializes request starts across a run. A single instance
// is shared by every resolution; it caps the start rate only — once a
// caller has its turn, the request proceeds independently of how many
// others are in flight.
type StartGate struct {
	limiter   *rate.Limiter
	jitterMax time.Duration
	jitter    func(max time.Duration) time.Duration
}

// NewStartGate builds a gate enforcing interval between starts plus a
// random jitter in [0, jitterMax] that breaks up synchronized bursts.
// A non-positive interval disables spacing.
func NewStartGate(interval, jitterMax time.Duration) *StartGate {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &StartGate{
		limiter:   rate.NewLimiter(limit, 1),
		jitterMax: jitterMax,
		jitter:    randomJitter,
	}
}

// Wait blocks until it is the caller's turn to start. Turns are
// granted in arrival order; the induced delay is recorded for metrics.
// Cancellation of ctx aborts the wait.
func (g *StartGate) Wait(ctx context.Context) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("start gate wait: %w", err)
	}
	if err := sleep(ctx, g.jitter(g.jitterMax)); err != nil {
		return fmt.Errorf("start gate jitter: %w", err)
	}
	if delay := time.Since(start); delay > time.Millisecond {
		metrics.ObserveStartDelay(delay)
	}
	return nil
}

func randomJitter(max time.Duration) time.Duration {
	if max <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(max)))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
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
