// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the rate-limited fetch client shared by every
// source adapter: a global concurrency gate, per-attempt timeouts and
// retries with exponential backoff.
package httputil

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy describes how a fallible operation is retried. Attempt n
// (counting retries from 1) waits BaseDelay * 2^(n-1) before running.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Backoff returns the wait before retry attempt n (n >= 1).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return p.BaseDelay * time.Duration(1<<uint(attempt-1))
}

// Outcome is the typed result of Retry.
type Outcome struct {
	// Attempts is the number of times the operation ran.
	Attempts int

	// Err is nil on success, otherwise the last error seen.
	Err error

	// Exhausted is true when every allowed attempt failed with a
	// retryable error.
	Exhausted bool
}

// OK reports whether the operation eventually succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Retry runs op until it succeeds, fails with a non-retryable error, or the
// policy runs out of retries. Context cancellation during a backoff wait
// ends the loop with ctx.Err().
func Retry(ctx context.Context, p RetryPolicy, op func(ctx context.Context) error) Outcome {
	var out Outcome
	for attempt := 0; ; attempt++ {
		if attempt > 0 {
			wait := p.Backoff(attempt)
			var rl *RateLimitError
			if errors.As(out.Err, &rl) && rl.RetryAfter > wait {
				wait = rl.RetryAfter
			}
			if err := Sleep(ctx, wait); err != nil {
				out.Err = err
				return out
			}
		}

		out.Attempts++
		out.Err = op(ctx)
		if out.Err == nil {
			return out
		}
		if !Retryable(out.Err) {
			return out
		}
		if attempt >= p.MaxRetries {
			out.Exhausted = true
			return out
		}
	}
}

// Sleep waits for d unless ctx ends first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
