// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package alignment

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/pdiddy/votewallet/internal/cache"
	"github.com/pdiddy/votewallet/internal/contrib"
	"github.com/pdiddy/votewallet/internal/source"
	"github.com/pdiddy/votewallet/pkg/types"
)

// Gateway is the slice of the persistence gateway the service uses.
type Gateway interface {
	AppendDonation(ctx context.Context, businessID string, d types.DonationEvidence) error
	AppendStatement(ctx context.Context, businessID string, s types.StatementEvidence) error
	ListEvidence(ctx context.Context, businessID string) (types.Evidence, error)
	ListSubmissions(ctx context.Context, businessID string) ([]types.UserAlignmentSubmission, error)
	UpsertAlignment(ctx context.Context, rec types.AlignmentRecord) error
}

// Service gathers evidence for businesses, scores it and stores the
// canonical alignment.
type Service struct {
	Sources    []source.EvidenceSource
	Gateway    Gateway
	Calculator *Calculator
	Cache      cache.Cache[types.AlignmentRecord]
	TTL        time.Duration

	// Policy decides how existing community submissions combine with the
	// freshly computed evidence vector.
	Policy types.ContribConfig

	Logger *slog.Logger
}

// NewService wires a service. Source reliabilities feed the calculator.
func NewService(sources []source.EvidenceSource, gw Gateway, c cache.Cache[types.AlignmentRecord], cfg types.PipelineConfig, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = cache.NewMemory[types.AlignmentRecord](nil)
	}
	reliability := make(map[string]float64, len(sources))
	for _, s := range sources {
		reliability[s.Name()] = s.Reliability()
	}
	return &Service{
		Sources:    sources,
		Gateway:    gw,
		Calculator: NewCalculator(reliability),
		Cache:      c,
		TTL:        cfg.Cache.TTL,
		Policy:     cfg.Contrib,
		Logger:     logger,
	}
}

// Align returns the canonical alignment for b. A cached record younger
// than the TTL is returned without touching the sources. Otherwise every
// evidence source is queried; a failing source is logged and skipped.
// New evidence is stored, the full stored evidence is rescored, and the
// canonical vector is recombined with any community submissions.
func (s *Service) Align(ctx context.Context, b types.CanonicalBusiness) (types.AlignmentRecord, error) {
	if rec, ok := s.Cache.Get(ctx, b.ID); ok {
		s.Logger.Debug("alignment cache hit", "business", b.ID)
		return rec, nil
	}

	for _, src := range s.Sources {
		ev, err := src.Evidence(ctx, b)
		if err != nil {
			if ctx.Err() != nil {
				return types.AlignmentRecord{}, ctx.Err()
			}
			s.Logger.Warn("evidence source failed", "source", src.Name(), "business", b.Name, "error", err)
			continue
		}
		if err := s.store(ctx, b.ID, ev); err != nil {
			return types.AlignmentRecord{}, err
		}
		s.Logger.Debug("evidence gathered", "source", src.Name(), "business", b.Name,
			"donations", len(ev.Donations), "statements", len(ev.Statements))
	}

	ev, err := s.Gateway.ListEvidence(ctx, b.ID)
	if err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("loading evidence for %s: %w", b.ID, err)
	}
	res := s.Calculator.Score(ev)

	subs, err := s.Gateway.ListSubmissions(ctx, b.ID)
	if err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("loading submissions for %s: %w", b.ID, err)
	}
	c := contrib.Combine(s.Policy, res.Vector, res.Confidence, subs)
	rec := types.AlignmentRecord{
		BusinessID:         b.ID,
		Vector:             c.Vector,
		EvidenceVector:     res.Vector,
		Confidence:         c.Confidence,
		EvidenceConfidence: res.Confidence,
		Basis:              c.Basis,
		SubmissionCount:    len(subs),
		UpdatedAt:          res.ComputedAt,
	}
	if err := s.Gateway.UpsertAlignment(ctx, rec); err != nil {
		return types.AlignmentRecord{}, fmt.Errorf("storing alignment for %s: %w", b.ID, err)
	}
	s.Cache.Set(ctx, b.ID, rec, s.TTL)

	s.Logger.Info("business aligned", "business", b.Name, "evidence", res.EvidenceCount,
		"confidence", rec.Confidence, "basis", rec.Basis)
	return rec, nil
}

func (s *Service) store(ctx context.Context, businessID string, ev types.Evidence) error {
	for _, d := range ev.Donations {
		if err := s.Gateway.AppendDonation(ctx, businessID, d); err != nil {
			return fmt.Errorf("storing donation for %s: %w", businessID, err)
		}
	}
	for _, st := range ev.Statements {
		if err := s.Gateway.AppendStatement(ctx, businessID, st); err != nil {
			return fmt.Errorf("storing statement for %s: %w", businessID, err)
		}
	}
	return nil
}

// Summary counts the outcome of AlignAll.
type Summary struct {
	Processed int `json:"processed" yaml:"processed"`
	Aligned   int `json:"aligned" yaml:"aligned"`
	Failed    int `json:"failed" yaml:"failed"`
	NoData    int `json:"no_data" yaml:"no_data"`
}

// AlignAll aligns each business in turn, stopping early only when ctx is
// cancelled. Per-business failures are logged and counted.
func (s *Service) AlignAll(ctx context.Context, businesses []types.CanonicalBusiness) (Summary, error) {
	var sum Summary
	for _, b := range businesses {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Processed++
		rec, err := s.Align(ctx, b)
		if err != nil {
			if ctx.Err() != nil {
				return sum, ctx.Err()
			}
			s.Logger.Error("alignment failed", "business", b.Name, "error", err)
			sum.Failed++
			continue
		}
		sum.Aligned++
		if rec.Vector.IsZero() {
			sum.NoData++
		}
	}
	return sum, nil
}
