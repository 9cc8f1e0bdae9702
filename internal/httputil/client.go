// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/pdiddy/votewallet/pkg/types"
)

const (
	defaultTimeout       = 30 * time.Second
	defaultMaxConcurrent = 4
	maxBodyBytes         = 16 << 20
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client is the rate-limited fetch client. One Client is shared by all
// adapters so the concurrency ceiling holds across sources.
type Client struct {
	HTTP      *http.Client
	UserAgent string
	Timeout   time.Duration
	Policy    RetryPolicy
	Logger    *slog.Logger

	sem *semaphore.Weighted
}

// NewClient builds a Client from cfg. Zero values fall back to defaults.
func NewClient(cfg types.FetchConfig, logger *slog.Logger) *Client {
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = defaultMaxConcurrent
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		HTTP:      &http.Client{},
		UserAgent: cfg.UserAgent,
		Timeout:   timeout,
		Policy:    RetryPolicy{MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBaseDelay},
		Logger:    logger,
		sem:       semaphore.NewWeighted(int64(maxConcurrent)),
	}
}

// Fetch executes req with admission control, a per-attempt timeout, and
// retries on transient failures. When retries run out the last error is
// returned.
func (c *Client) Fetch(ctx context.Context, req *http.Request) (*Response, error) {
	var resp *Response
	out := Retry(ctx, c.Policy, func(ctx context.Context) error {
		r, err := c.attempt(ctx, req)
		if err != nil {
			if Retryable(err) {
				c.Logger.Debug("fetch attempt failed", "url", req.URL.String(), "err", err)
			}
			return err
		}
		resp = r
		return nil
	})
	if !out.OK() {
		if out.Exhausted {
			c.Logger.Warn("fetch retries exhausted", "url", req.URL.String(), "attempts", out.Attempts, "err", out.Err)
		}
		return nil, out.Err
	}
	return resp, nil
}

// attempt runs one request while holding a concurrency slot.
func (c *Client) attempt(ctx context.Context, req *http.Request) (*Response, error) {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer c.sem.Release(1)

	actx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	r := req.Clone(actx)
	if c.UserAgent != "" && r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", c.UserAgent)
	}
	url := req.URL.String()

	hr, err := c.HTTP.Do(r)
	if err != nil {
		return nil, c.classify(ctx, actx, url, err)
	}
	defer hr.Body.Close()

	body, err := io.ReadAll(io.LimitReader(hr.Body, maxBodyBytes))
	if err != nil {
		return nil, c.classify(ctx, actx, url, err)
	}

	switch {
	case hr.StatusCode == http.StatusTooManyRequests:
		return nil, &RateLimitError{URL: url, RetryAfter: parseRetryAfter(hr.Header.Get("Retry-After"))}
	case hr.StatusCode >= 500:
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("HTTP %d", hr.StatusCode)}
	case hr.StatusCode < 200 || hr.StatusCode >= 300:
		return nil, &StatusError{URL: url, StatusCode: hr.StatusCode}
	}

	return &Response{StatusCode: hr.StatusCode, Header: hr.Header, Body: body}, nil
}

// classify maps a transport error to the error taxonomy. Cancellation of
// the caller's context is returned unchanged so it is never retried.
func (c *Client) classify(parent, attempt context.Context, url string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(attempt.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: url, Timeout: c.Timeout}
	}
	return &NetworkError{URL: url, Err: err}
}

// Get fetches url with an optional Accept header.
func (c *Client) Get(ctx context.Context, url, accept string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	return c.Fetch(ctx, req)
}

// GetJSON fetches url and decodes the JSON body into v.
func (c *Client) GetJSON(ctx context.Context, url string, v any) error {
	resp, err := c.Get(ctx, url, "application/json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return fmt.Errorf("parsing response from %s: %w", url, err)
	}
	return nil
}

func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return 0
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
