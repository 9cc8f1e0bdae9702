// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package contrib aggregates user alignment submissions into a business's
// canonical alignment vector.
//
// Every submission triggers a full recompute: the community vector is the
// per-axis mean over all current submissions for the business, one per
// user. The configured policy then decides whether the community vector
// replaces the evidence vector (overwrite) or is mixed with it (blend).
package contrib

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/pdiddy/votewallet/internal/cache"
	"github.com/pdiddy/votewallet/internal/store"
	"github.com/pdiddy/votewallet/pkg/types"
)

// ErrInvalidSubmission is wrapped by every submission validation failure.
var ErrInvalidSubmission = errors.New("invalid submission")

// Gateway is the slice of the persistence gateway the aggregator uses.
type Gateway interface {
	GetBusiness(ctx context.Context, id string) (types.CanonicalBusiness, error)
	UpsertSubmission(ctx context.Context, sub types.UserAlignmentSubmission) error
	ListSubmissions(ctx context.Context, businessID string) ([]types.UserAlignmentSubmission, error)
	FindAlignment(ctx context.Context, businessID string) (types.AlignmentRecord, error)
	UpsertAlignment(ctx context.Context, rec types.AlignmentRecord) error
}

// Aggregator records submissions and recomputes canonical vectors.
type Aggregator struct {
	Gateway Gateway
	Config  types.ContribConfig

	// Cache, when set, receives every recomputed record so readers see
	// the new vector without waiting for the old entry to expire.
	Cache cache.Cache[types.AlignmentRecord]
	TTL   time.Duration

	Logger *slog.Logger
	Now    func() time.Time
}

// New returns an aggregator with the given policy.
func New(gw Gateway, cfg types.ContribConfig, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		Gateway: gw,
		Config:  cfg,
		Logger:  logger,
		Now:     func() time.Time { return time.Now().UTC() },
	}
}

// Validate checks ids, axis ranges and confidence. The returned error
// wraps ErrInvalidSubmission and lists every problem.
func Validate(sub types.UserAlignmentSubmission) error {
	var problems []string
	if strings.TrimSpace(sub.UserID) == "" {
		problems = append(problems, "user id is empty")
	}
	if strings.TrimSpace(sub.BusinessID) == "" {
		problems = append(problems, "business id is empty")
	}
	for _, l := range types.Leans {
		x := sub.Vector.Get(l)
		if math.IsNaN(x) || x < 0 || x > types.AxisMax {
			problems = append(problems, fmt.Sprintf("%s must be in [0,%g], got %v", l, types.AxisMax, x))
		}
	}
	if math.IsNaN(sub.Confidence) || sub.Confidence < 0 || sub.Confidence > 1 {
		problems = append(problems, fmt.Sprintf("confidence must be in [0,1], got %v", sub.Confidence))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidSubmission, strings.Join(problems, "; "))
	}
	return nil
}

// Submit stores sub, superseding the user's earlier submission for the
// same business, and rewrites the business's canonical alignment from the
// full submission set. It returns the stored record.
func (a *Aggregator) Submit(ctx context.Context, sub types.UserAlignmentSubmission) (types.AlignmentRecord, error) {
	if err := Validate(sub); err != nil {
		return types.AlignmentRecord{}, err
	}
	if _, err := a.Gateway.GetBusiness(ctx, sub.BusinessID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.AlignmentRecord{}, fmt.Errorf("%w: unknown business %s", ErrInvalidSubmission, sub.BusinessID)
		}
		return types.AlignmentRecord{}, err
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = a.Now()
	}
	if err := a.Gateway.UpsertSubmission(ctx, sub); err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("storing submission: %w", err)
	}

	subs, err := a.Gateway.ListSubmissions(ctx, sub.BusinessID)
	if err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("listing submissions: %w", err)
	}
	rec, err := a.Gateway.FindAlignment(ctx, sub.BusinessID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		rec = types.AlignmentRecord{BusinessID: sub.BusinessID}
	case err != nil:
		return types.AlignmentRecord{}, fmt.Errorf("loading alignment: %w", err)
	}

	c := Combine(a.Config, rec.EvidenceVector, rec.EvidenceConfidence, subs)
	rec.Vector, rec.Confidence, rec.Basis = c.Vector, c.Confidence, c.Basis
	rec.SubmissionCount = len(subs)
	rec.UpdatedAt = a.Now()
	if err := a.Gateway.UpsertAlignment(ctx, rec); err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("storing alignment: %w", err)
	}
	if a.Cache != nil {
		a.Cache.Set(ctx, rec.BusinessID, rec, a.TTL)
	}

	a.Logger.Info("submission aggregated",
		"business", rec.BusinessID, "user", sub.UserID,
		"submissions", rec.SubmissionCount, "basis", rec.Basis)
	return rec, nil
}
