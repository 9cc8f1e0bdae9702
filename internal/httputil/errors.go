// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"errors"
	"fmt"
	"time"
)

// NetworkError is a transient transport failure: connection reset, DNS
// failure, or an HTTP 5xx from the upstream.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string { return fmt.Sprintf("network error fetching %s: %v", e.URL, e.Err) }
func (e *NetworkError) Unwrap() error { return e.Err }

// TimeoutError means a single attempt exceeded the per-request timeout.
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout after %v fetching %s", e.Timeout, e.URL)
}

// RateLimitError is an HTTP 429 from the upstream.
type RateLimitError struct {
	URL        string
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by %s (retry after %v)", e.URL, e.RetryAfter)
	}
	return fmt.Sprintf("rate limited by %s", e.URL)
}

// StatusError is a non-retryable HTTP status (4xx other than 429).
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d from %s", e.StatusCode, e.URL)
}

// Retryable reports whether err is one of the transient error kinds.
func Retryable(err error) bool {
	var (
		ne *NetworkError
		te *TimeoutError
		re *RateLimitError
	)
	return errors.As(err, &ne) || errors.As(err, &te) || errors.As(err, &re)
}
