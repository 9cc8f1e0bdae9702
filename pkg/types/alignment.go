// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"math"
	"time"
)

// Lean is one of the five alignment axes. The empty Lean means unset.
type Lean string

const (
	LeanUnset        Lean = ""
	LeanLiberal      Lean = "liberal"
	LeanConservative Lean = "conservative"
	LeanLibertarian  Lean = "libertarian"
	LeanGreen        Lean = "green"
	LeanCentrist     Lean = "centrist"
)

// Leans lists the axes in vector order.
var Leans = []Lean{LeanLiberal, LeanConservative, LeanLibertarian, LeanGreen, LeanCentrist}

// Valid reports whether l names one of the five axes.
func (l Lean) Valid() bool {
	switch l {
	case LeanLiberal, LeanConservative, LeanLibertarian, LeanGreen, LeanCentrist:
		return true
	}
	return false
}

// AxisMax is the upper bound of every normalized axis.
const AxisMax = 10.0

// AlignmentVector holds the five axis weights. Components are relative
// weights, each in [0, AxisMax] after normalization; they are not required
// to sum to any fixed total.
type AlignmentVector struct {
	Liberal      float64 `json:"liberal" yaml:"liberal"`
	Conservative float64 `json:"conservative" yaml:"conservative"`
	Libertarian  float64 `json:"libertarian" yaml:"libertarian"`
	Green        float64 `json:"green" yaml:"green"`
	Centrist     float64 `json:"centrist" yaml:"centrist"`
}

// Get returns the component for axis l. Unknown axes return 0.
func (v AlignmentVector) Get(l Lean) float64 {
	switch l {
	case LeanLiberal:
		return v.Liberal
	case LeanConservative:
		return v.Conservative
	case LeanLibertarian:
		return v.Libertarian
	case LeanGreen:
		return v.Green
	case LeanCentrist:
		return v.Centrist
	}
	return 0
}

// With returns a copy of v with axis l set to x.
func (v AlignmentVector) With(l Lean, x float64) AlignmentVector {
	switch l {
	case LeanLiberal:
		v.Liberal = x
	case LeanConservative:
		v.Conservative = x
	case LeanLibertarian:
		v.Libertarian = x
	case LeanGreen:
		v.Green = x
	case LeanCentrist:
		v.Centrist = x
	}
	return v
}

// Add returns a copy of v with w added to axis l.
func (v AlignmentVector) Add(l Lean, w float64) AlignmentVector {
	return v.With(l, v.Get(l)+w)
}

// Sum returns the sum of all components.
func (v AlignmentVector) Sum() float64 {
	return v.Liberal + v.Conservative + v.Libertarian + v.Green + v.Centrist
}

// Scale multiplies every component by f.
func (v AlignmentVector) Scale(f float64) AlignmentVector {
	for _, l := range Leans {
		v = v.With(l, v.Get(l)*f)
	}
	return v
}

// Plus adds two vectors component-wise.
func (v AlignmentVector) Plus(o AlignmentVector) AlignmentVector {
	for _, l := range Leans {
		v = v.With(l, v.Get(l)+o.Get(l))
	}
	return v
}

// Clamp bounds every component to [0, AxisMax]. NaN becomes 0.
func (v AlignmentVector) Clamp() AlignmentVector {
	for _, l := range Leans {
		x := v.Get(l)
		if math.IsNaN(x) || x < 0 {
			x = 0
		}
		if x > AxisMax {
			x = AxisMax
		}
		v = v.With(l, x)
	}
	return v
}

// IsZero reports whether every component is zero.
func (v AlignmentVector) IsZero() bool {
	return v == AlignmentVector{}
}

// InBounds reports whether every component lies in [0, AxisMax].
func (v AlignmentVector) InBounds() bool {
	for _, l := range Leans {
		x := v.Get(l)
		if math.IsNaN(x) || x < 0 || x > AxisMax {
			return false
		}
	}
	return true
}

// MeanVector returns the per-axis arithmetic mean of vs, or the zero vector
// when vs is empty.
func MeanVector(vs []AlignmentVector) AlignmentVector {
	var out AlignmentVector
	if len(vs) == 0 {
		return out
	}
	for _, v := range vs {
		out = out.Plus(v)
	}
	return out.Scale(1 / float64(len(vs)))
}

// DonationEvidence records one political donation attributed to a business.
type DonationEvidence struct {
	Organization string  `json:"organization" yaml:"organization"`
	Amount       float64 `json:"amount" yaml:"amount"`
	Lean         Lean    `json:"lean,omitempty" yaml:"lean,omitempty"`
	Year         int     `json:"year,omitempty" yaml:"year,omitempty"`
	Source       string  `json:"source,omitempty" yaml:"source,omitempty"`
}

// StatementEvidence records one public statement attributed to a business.
type StatementEvidence struct {
	Text        string    `json:"text" yaml:"text"`
	Lean        Lean      `json:"lean,omitempty" yaml:"lean,omitempty"`
	Confidence  float64   `json:"confidence" yaml:"confidence"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	URL         string    `json:"url,omitempty" yaml:"url,omitempty"`
	PublishedAt time.Time `json:"published_at,omitempty" yaml:"published_at,omitempty"`
}

// Evidence bundles the donation and statement evidence for one business.
type Evidence struct {
	Donations  []DonationEvidence  `json:"donations" yaml:"donations"`
	Statements []StatementEvidence `json:"statements" yaml:"statements"`
}

// Count returns the number of evidence items.
func (e Evidence) Count() int {
	return len(e.Donations) + len(e.Statements)
}

// AlignmentResult is the output of scoring one business's evidence.
type AlignmentResult struct {
	Vector        AlignmentVector `json:"vector" yaml:"vector"`
	Confidence    float64         `json:"confidence" yaml:"confidence"`
	EvidenceCount int             `json:"evidence_count" yaml:"evidence_count"`
	ComputedAt    time.Time       `json:"computed_at" yaml:"computed_at"`
}

// AlignmentBasis records what produced a stored canonical vector.
type AlignmentBasis string

const (
	BasisEvidence  AlignmentBasis = "evidence"
	BasisCommunity AlignmentBasis = "community"
	BasisBlended   AlignmentBasis = "blended"
)

// AlignmentRecord is the canonical stored alignment for a business.
type AlignmentRecord struct {
	BusinessID string `json:"business_id" yaml:"business_id"`

	// Vector is the canonical vector shown for the business.
	Vector AlignmentVector `json:"vector" yaml:"vector"`

	// EvidenceVector is the last evidence-based vector, kept even when the
	// community vector has taken over so blending stays possible.
	EvidenceVector AlignmentVector `json:"evidence_vector" yaml:"evidence_vector"`

	Confidence float64 `json:"confidence" yaml:"confidence"`

	// EvidenceConfidence is the confidence of EvidenceVector alone.
	EvidenceConfidence float64 `json:"evidence_confidence" yaml:"evidence_confidence"`

	Basis           AlignmentBasis `json:"basis" yaml:"basis"`
	SubmissionCount int            `json:"submission_count" yaml:"submission_count"`
	UpdatedAt       time.Time      `json:"updated_at" yaml:"updated_at"`
}

// UserAlignmentSubmission is one user's estimate for one business. A later
// submission from the same user for the same business supersedes it.
type UserAlignmentSubmission struct {
	UserID      string          `json:"user_id" yaml:"user_id"`
	BusinessID  string          `json:"business_id" yaml:"business_id"`
	Vector      AlignmentVector `json:"vector" yaml:"vector"`
	Confidence  float64         `json:"confidence" yaml:"confidence"`
	SubmittedAt time.Time       `json:"submitted_at" yaml:"submitted_at"`
}
