// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedupe collapses business candidates that describe the same
// business and merges repeat sightings across ingestion runs.
package dedupe

import "github.com/pdiddy/votewallet/pkg/types"

// Result holds the deduplicated candidates and how many were dropped.
type Result struct {
	Candidates []types.BusinessCandidate
	Removed    int
}

// Dedupe keeps one candidate per identity key: the one with the highest
// DataQuality, or the first seen on a tie. Output keeps first-seen key
// order. Dedupe(Dedupe(x)) == Dedupe(x).
func Dedupe(candidates []types.BusinessCandidate, key KeyFunc) Result {
	if key == nil {
		key = NameCityState
	}
	seen := make(map[types.IdentityKey]int) // key → index in out
	out := make([]types.BusinessCandidate, 0, len(candidates))
	removed := 0

	for _, c := range candidates {
		k := key(c)
		if idx, ok := seen[k]; ok {
			if c.DataQuality > out[idx].DataQuality {
				out[idx] = c
			}
			removed++
			continue
		}
		seen[k] = len(out)
		out = append(out, c)
	}
	return Result{Candidates: out, Removed: removed}
}
