// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package contrib

import (
	"github.com/pdiddy/votewallet/pkg/types"
)

// Canonical is the vector shown for a business and what produced it.
type Canonical struct {
	Vector     types.AlignmentVector
	Confidence float64
	Basis      types.AlignmentBasis
}

// Community returns the per-axis mean vector and mean confidence of subs.
func Community(subs []types.UserAlignmentSubmission) (types.AlignmentVector, float64) {
	if len(subs) == 0 {
		return types.AlignmentVector{}, 0
	}
	vs := make([]types.AlignmentVector, len(subs))
	conf := 0.0
	for i, s := range subs {
		vs[i] = s.Vector
		conf += s.Confidence
	}
	return types.MeanVector(vs), conf / float64(len(subs))
}

// Combine decides the canonical vector. Without submissions the evidence
// vector stands. With submissions, PolicyOverwrite (the default) uses the
// community mean alone and PolicyBlend mixes the two with the evidence
// share cfg.EvidenceWeight.
func Combine(cfg types.ContribConfig, evidence types.AlignmentVector, evidenceConfidence float64, subs []types.UserAlignmentSubmission) Canonical {
	if len(subs) == 0 {
		return Canonical{Vector: evidence, Confidence: evidenceConfidence, Basis: types.BasisEvidence}
	}
	community, conf := Community(subs)
	if cfg.Policy != types.PolicyBlend {
		return Canonical{Vector: community, Confidence: conf, Basis: types.BasisCommunity}
	}
	w := min(max(cfg.EvidenceWeight, 0), 1)
	return Canonical{
		Vector:     evidence.Scale(w).Plus(community.Scale(1 - w)).Clamp(),
		Confidence: w*evidenceConfidence + (1-w)*conf,
		Basis:      types.BasisBlended,
	}
}
