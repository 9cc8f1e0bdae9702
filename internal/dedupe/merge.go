// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import "github.com/pdiddy/votewallet/pkg/types"

// Merge splices two candidates for the same business field by field. Each
// field comes from the higher-quality side (existing on a tie) and falls
// back to the other side when empty. The merged quality is the maximum of
// the two.
func Merge(existing, incoming types.BusinessCandidate) types.BusinessCandidate {
	hi, lo := existing, incoming
	if incoming.DataQuality > existing.DataQuality {
		hi, lo = incoming, existing
	}

	out := hi
	str := func(dst *string, fallback string) {
		if *dst == "" {
			*dst = fallback
		}
	}
	str(&out.Name, lo.Name)
	str(&out.Category, lo.Category)
	str(&out.Address, lo.Address)
	str(&out.City, lo.City)
	str(&out.State, lo.State)
	str(&out.Zip, lo.Zip)
	str(&out.Phone, lo.Phone)
	str(&out.Email, lo.Email)
	str(&out.Website, lo.Website)
	str(&out.Description, lo.Description)
	str(&out.DataSource, lo.DataSource)
	if out.Coordinates == nil {
		out.Coordinates = lo.Coordinates
	}
	if out.Rating == nil {
		out.Rating = lo.Rating
	}
	if out.ReviewCount == nil {
		out.ReviewCount = lo.ReviewCount
	}
	out.DataQuality = max(hi.DataQuality, lo.DataQuality)
	return out
}
