// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package source implements the adapters that collect raw business records
// and alignment evidence from external sources.
//
// Every adapter embeds a Base that carries its declared reliability and
// hourly rate limit. Adapters call Base.Wait before each upstream request,
// so consecutive units of work from one adapter are spaced by at least
// 3,600,000ms divided by the rate limit.
package source

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/votewallet/pkg/types"
)

// Adapter collects raw business records for a tier target. Collect must
// never return more than quota records. An adapter that fails outright
// returns an error; the orchestrator treats that call as zero records.
type Adapter interface {
	Name() string
	Reliability() float64
	RateLimit() int
	Collect(ctx context.Context, target types.TierTarget, quota int) ([]types.RawBusiness, error)
}

// EvidenceSource gathers alignment evidence for one business.
type EvidenceSource interface {
	Name() string
	Reliability() float64
	RateLimit() int
	Evidence(ctx context.Context, business types.CanonicalBusiness) (types.Evidence, error)
}

// Throttle spaces units of work to a declared hourly budget.
type Throttle struct {
	limiter *rate.Limiter
}

// NewThrottle returns a Throttle allowing perHour units of work per hour
// with no burst. perHour <= 0 disables throttling.
func NewThrottle(perHour int) *Throttle {
	if perHour <= 0 {
		return &Throttle{}
	}
	return &Throttle{limiter: rate.NewLimiter(rate.Every(Interval(perHour)), 1)}
}

// Interval returns the minimum spacing for perHour units of work per hour.
func Interval(perHour int) time.Duration {
	if perHour <= 0 {
		return 0
	}
	return time.Duration(3_600_000/float64(perHour)) * time.Millisecond
}

// Wait blocks until the next unit of work may start or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil || t.limiter == nil {
		return ctx.Err()
	}
	return t.limiter.Wait(ctx)
}

// Base carries the identity and rate limit shared by every adapter.
type Base struct {
	name        string
	reliability float64
	rateLimit   int
	throttle    *Throttle
}

// NewBase returns a Base for the named source.
func NewBase(name string, cfg types.SourceConfig) Base {
	return Base{
		name:        name,
		reliability: cfg.Reliability,
		rateLimit:   cfg.RateLimit,
		throttle:    NewThrottle(cfg.RateLimit),
	}
}

// Name returns the source identifier.
func (b *Base) Name() string { return b.name }

// Reliability returns the declared evidence weight in [0,1].
func (b *Base) Reliability() float64 { return b.reliability }

// RateLimit returns the declared budget in requests per hour.
func (b *Base) RateLimit() int { return b.rateLimit }

// Wait blocks on the adapter's throttle.
func (b *Base) Wait(ctx context.Context) error { return b.throttle.Wait(ctx) }

// truncate caps records at quota.
func truncate(records []types.RawBusiness, quota int) []types.RawBusiness {
	if quota <= 0 {
		return nil
	}
	if len(records) > quota {
		return records[:quota]
	}
	return records
}
