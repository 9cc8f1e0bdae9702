// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package lean resolves political lean from organization names and free
// text. It is shared by the evidence adapters and the alignment calculator
// so both read evidence the same way.
package lean

import (
	"sort"
	"strings"

	"github.com/pdiddy/votewallet/pkg/types"
)

type org struct {
	name string
	lean types.Lean
}

// organizations lists recipients whose lean is well known. Names are lower
// case.
var organizations = []org{
	{"democratic national committee", types.LeanLiberal},
	{"democratic congressional campaign committee", types.LeanLiberal},
	{"democratic senatorial campaign committee", types.LeanLiberal},
	{"actblue", types.LeanLiberal},
	{"emily's list", types.LeanLiberal},
	{"moveon", types.LeanLiberal},
	{"planned parenthood", types.LeanLiberal},
	{"american civil liberties union", types.LeanLiberal},
	{"republican national committee", types.LeanConservative},
	{"national republican congressional committee", types.LeanConservative},
	{"national republican senatorial committee", types.LeanConservative},
	{"winred", types.LeanConservative},
	{"national rifle association", types.LeanConservative},
	{"club for growth", types.LeanConservative},
	{"heritage foundation", types.LeanConservative},
	{"susan b. anthony", types.LeanConservative},
	{"libertarian national committee", types.LeanLibertarian},
	{"cato institute", types.LeanLibertarian},
	{"americans for prosperity", types.LeanLibertarian},
	{"reason foundation", types.LeanLibertarian},
	{"freedomworks", types.LeanLibertarian},
	{"sierra club", types.LeanGreen},
	{"league of conservation voters", types.LeanGreen},
	{"green party", types.LeanGreen},
	{"natural resources defense council", types.LeanGreen},
	{"environmental defense fund", types.LeanGreen},
	{"no labels", types.LeanCentrist},
	{"problem solvers", types.LeanCentrist},
	{"bipartisan policy center", types.LeanCentrist},
	{"third way", types.LeanCentrist},
	{"forward party", types.LeanCentrist},
}

// bySubstring holds organizations longest name first so the most specific
// substring match wins.
var bySubstring = func() []org {
	s := append([]org(nil), organizations...)
	sort.SliceStable(s, func(i, j int) bool { return len(s[i].name) > len(s[j].name) })
	return s
}()

// keywords associate each axis with indicative terms.
var keywords = map[types.Lean][]string{
	types.LeanLiberal: {
		"democrat", "progressive", "liberal", "labor union", "workers' rights",
		"voting rights", "reproductive", "lgbtq", "equality", "social justice",
	},
	types.LeanConservative: {
		"republican", "conservative", "gop", "pro-life", "second amendment",
		"traditional values", "border security", "faith", "patriot",
	},
	types.LeanLibertarian: {
		"libertarian", "free market", "deregulation", "liberty",
		"limited government", "individual freedom", "tax reform",
	},
	types.LeanGreen: {
		"green", "climate", "environment", "sustainab", "renewable",
		"conservation", "carbon", "clean energy", "wildlife",
	},
	types.LeanCentrist: {
		"bipartisan", "moderate", "centrist", "nonpartisan", "independent",
		"common ground", "across the aisle",
	},
}

// Organization looks up a donation recipient, exact match first and then
// the longest known name contained in it.
func Organization(name string) (types.Lean, bool) {
	n := strings.Join(strings.Fields(strings.ToLower(name)), " ")
	if n == "" {
		return types.LeanUnset, false
	}
	for _, o := range organizations {
		if o.name == n {
			return o.lean, true
		}
	}
	for _, o := range bySubstring {
		if strings.Contains(n, o.name) {
			return o.lean, true
		}
	}
	return types.LeanUnset, false
}

// Infer scores text against each axis keyword set and returns the axis
// with the most hits. Ties go to the axis listed first in types.Leans.
// Text with no hits returns LeanUnset and zero.
func Infer(text string) (types.Lean, int) {
	lower := strings.ToLower(text)
	best, bestHits := types.LeanUnset, 0
	for _, l := range types.Leans {
		hits := 0
		for _, kw := range keywords[l] {
			hits += strings.Count(lower, kw)
		}
		if hits > bestHits {
			best, bestHits = l, hits
		}
	}
	return best, bestHits
}

// Resolve picks the lean of a piece of evidence: the explicit lean when
// valid, then the organization table, then the keyword heuristic, then
// centrist.
func Resolve(explicit types.Lean, organization, text string) types.Lean {
	if explicit.Valid() {
		return explicit
	}
	if organization != "" {
		if l, ok := Organization(organization); ok {
			return l
		}
	}
	if l, hits := Infer(organization + " " + text); hits > 0 {
		return l
	}
	return types.LeanCentrist
}
