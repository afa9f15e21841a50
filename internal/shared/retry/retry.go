// Package retry runs boolean send operations with bounded exponential
// backoff. It is transport-agnostic: the same orchestrator wraps the framed
// TCP client and the event publisher.
package retry

import (
	"context"
	"log/slog"
	"time"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = 100 * time.Millisecond
)

type options struct {
	baseDelay time.Duration
	maxDelay  time.Duration
	sleep     func(ctx context.Context, d time.Duration) bool
}

// Option tunes the backoff schedule.
type Option func(*options)

// WithBaseDelay overrides the 100ms backoff base.
func WithBaseDelay(d time.Duration) Option {
	return func(o *options) { o.baseDelay = d }
}

// WithMaxDelay caps each backoff wait. The reference schedule is uncapped.
func WithMaxDelay(d time.Duration) Option {
	return func(o *options) { o.maxDelay = d }
}

// withSleep substitutes the wait primitive in tests.
func withSleep(fn func(ctx context.Context, d time.Duration) bool) Option {
	return func(o *options) { o.sleep = fn }
}

// Do attempts op up to maxAttempts times, waiting base·2^attempt between
// failed attempts and not at all after the final one. A cancelled context
// stops the schedule early. The result is only ever a boolean: exhaustion is
// reported, never escalated.
func Do(ctx context.Context, op func(ctx context.Context) bool, maxAttempts int, opts ...Option) bool {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	o := options{baseDelay: DefaultBaseDelay, sleep: sleepContext}
	for _, opt := range opts {
		opt(&o)
	}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if op(ctx) {
			return true
		}
		if attempt == maxAttempts {
			break
		}
		delay := o.baseDelay << attempt
		if o.maxDelay > 0 && delay > o.maxDelay {
			delay = o.maxDelay
		}
		slog.Debug("send attempt failed, backing off",
			slog.Int("attempt", attempt),
			slog.Int("maxAttempts", maxAttempts),
			slog.Duration("delay", delay),
		)
		if !o.sleep(ctx, delay) {
			return false
		}
	}
	slog.Warn("send attempts exhausted", slog.Int("maxAttempts", maxAttempts))
	return false
}

func sleepContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
