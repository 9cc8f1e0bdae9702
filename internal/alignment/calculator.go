// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package alignment scores donation and statement evidence into a
// five-axis alignment vector.
package alignment

import (
	"time"

	"github.com/pdiddy/votewallet/internal/lean"
	"github.com/pdiddy/votewallet/pkg/types"
)

const (
	// donationUnit is the amount that contributes one unit of weight.
	donationUnit = 10000.0

	// maxDonationWeight caps the influence of a single donation.
	maxDonationWeight = 10.0

	// statementFactor is the weight per unit of statement confidence.
	statementFactor = 2.0

	// normalizedTotal is the sum a positive vector is rescaled to before
	// clamping.
	normalizedTotal = 20.0

	// confidencePrior damps confidence for small evidence counts:
	// n/(n+confidencePrior).
	confidencePrior = 3.0

	defaultReliability = 0.5
)

// Calculator turns evidence into alignment vectors.
type Calculator struct {
	// Reliability maps evidence source names to weights in [0,1]. Sources
	// not listed get DefaultReliability.
	Reliability        map[string]float64
	DefaultReliability float64

	Now func() time.Time
}

// NewCalculator returns a calculator using the given source reliabilities.
func NewCalculator(reliability map[string]float64) *Calculator {
	return &Calculator{
		Reliability:        reliability,
		DefaultReliability: defaultReliability,
		Now:                func() time.Time { return time.Now().UTC() },
	}
}

// DonationWeight is min(amount/10000, 10). Non-positive and NaN amounts
// weigh nothing.
func DonationWeight(amount float64) float64 {
	if !(amount > 0) {
		return 0
	}
	return min(amount/donationUnit, maxDonationWeight)
}

// StatementWeight is confidence*2, with confidence clamped to [0,1]. NaN
// confidence weighs nothing.
func StatementWeight(confidence float64) float64 {
	if !(confidence > 0) {
		return 0
	}
	return min(confidence, 1) * statementFactor
}

// Compute accumulates evidence per axis and normalizes the result.
func (c *Calculator) Compute(donations []types.DonationEvidence, statements []types.StatementEvidence) types.AlignmentVector {
	var raw types.AlignmentVector
	for _, d := range donations {
		raw = raw.Add(lean.Resolve(d.Lean, d.Organization, ""), DonationWeight(d.Amount))
	}
	for _, s := range statements {
		raw = raw.Add(lean.Resolve(s.Lean, "", s.Text), StatementWeight(s.Confidence))
	}
	return Normalize(raw)
}

// Normalize rescales a positive vector so its axes sum to 20 and clamps
// every axis to [0,10]. A vector summing to zero or less is returned as
// the zero vector.
func Normalize(raw types.AlignmentVector) types.AlignmentVector {
	sum := raw.Sum()
	if !(sum > 0) {
		return types.AlignmentVector{}
	}
	return raw.Scale(normalizedTotal / sum).Clamp()
}

// Score computes the vector for ev together with a confidence: the mean
// reliability of the evidence items' sources, damped by n/(n+3).
func (c *Calculator) Score(ev types.Evidence) types.AlignmentResult {
	n := ev.Count()
	res := types.AlignmentResult{
		Vector:        c.Compute(ev.Donations, ev.Statements),
		EvidenceCount: n,
		ComputedAt:    c.Now(),
	}
	if n == 0 {
		return res
	}
	total := 0.0
	for _, d := range ev.Donations {
		total += c.reliability(d.Source)
	}
	for _, s := range ev.Statements {
		total += c.reliability(s.Source)
	}
	res.Confidence = min(max(total/float64(n)*float64(n)/(float64(n)+confidencePrior), 0), 1)
	return res
}

func (c *Calculator) reliability(source string) float64 {
	if r, ok := c.Reliability[source]; ok {
		return r
	}
	return c.DefaultReliability
}
