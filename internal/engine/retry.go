package engine

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/rezkam/bulkscroll/internal/domain"
)

// NewBaseBackOff builds the default exponential backoff provider (spec
// §4.2). RandomizationFactor is pinned to 0 so the default policy is
// deterministic: with initial=500ms this yields a total of exactly 59,460ms
// over 11 retries (invariant I7). MaxElapsedTime is 0 — the retry *count*
// bounds the sequence, not elapsed wall time; CountingPolicy below is what
// stops the sequence after maxRetries delays.
func NewBaseBackOff(initial time.Duration) *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initial
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()
	return b
}

// CountingPolicy decorates a backoff.BackOff so that every delay actually
// taken increments ProgressRecord.retries, and the sequence is bounded to
// maxRetries delays regardless of the wrapped policy's own MaxElapsedTime
// (spec §4.2).
//
// The wrapper counts delays *taken*, not attempts *made* — the retry
// counting edge case of spec §9: with max_retries = N, observed retries
// ranges over [0, N], reaching N only if the final attempt also delayed
// before running.
type CountingPolicy struct {
	base     backoff.BackOff
	progress *domain.ProgressRecord
	taken    int
	max      int
}

// NewCountingPolicy wraps base, stopping after max delays and counting each
// one against progress.
func NewCountingPolicy(base backoff.BackOff, progress *domain.ProgressRecord, max int) *CountingPolicy {
	return &CountingPolicy{base: base, progress: progress, max: max}
}

// NextBackOff returns the next delay, or backoff.Stop once max delays have
// been taken or the base policy is exhausted.
func (c *CountingPolicy) NextBackOff() time.Duration {
	if c.taken >= c.max {
		return backoff.Stop
	}
	d := c.base.NextBackOff()
	if d == backoff.Stop {
		return backoff.Stop
	}
	c.taken++
	c.progress.CountRetry()
	return d
}

// Reset restarts the sequence from the beginning.
func (c *CountingPolicy) Reset() {
	c.taken = 0
	c.base.Reset()
}

// RetryExecutor invokes op, retrying on RejectionError per the wrapped
// policy: sleeps the delay, re-issues; any other error is returned
// unchanged; success is returned unchanged (spec §4.2).
type RetryExecutor struct {
	Policy backoff.BackOff
}

// NewRetryExecutor builds an executor around a fresh CountingPolicy for this
// request's retry budget.
func NewRetryExecutor(initial time.Duration, maxRetries int, progress *domain.ProgressRecord) *RetryExecutor {
	base := NewBaseBackOff(initial)
	return &RetryExecutor{Policy: NewCountingPolicy(base, progress, maxRetries)}
}

// Do runs op, retrying while it returns a RejectionError and the policy has
// delays remaining. ctx cancellation aborts the sleep and returns ctx.Err().
func (e *RetryExecutor) Do(ctx context.Context, op func(ctx context.Context) error) error {
	for {
		err := op(ctx)
		if err == nil {
			return nil
		}
		if !IsRejection(err) {
			return err
		}
		delay := e.Policy.NextBackOff()
		if delay == backoff.Stop {
			return err
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
