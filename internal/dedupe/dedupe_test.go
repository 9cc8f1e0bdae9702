// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedupe

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/votewallet/pkg/types"
)

func cand(name, city, state string, quality int) types.BusinessCandidate {
	return types.BusinessCandidate{Name: name, City: city, State: state, DataQuality: quality}
}

func TestDedupeKeepsHighestQuality(t *testing.T) {
	in := []types.BusinessCandidate{
		cand("Joe's Cafe", "Springfield", "IL", 40),
		cand("JOE'S  CAFE", "springfield", "il", 60),
		cand("Joe's Cafe ", "Springfield", "IL", 50),
	}
	res := Dedupe(in, NameCityState)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, 60, res.Candidates[0].DataQuality)
	assert.Equal(t, 2, res.Removed)
}

func TestDedupeTieKeepsFirst(t *testing.T) {
	first := cand("Acme", "Austin", "TX", 50)
	first.Phone = "(512) 555-0100"
	second := cand("acme", "austin", "tx", 50)
	res := Dedupe([]types.BusinessCandidate{first, second}, nil)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, first, res.Candidates[0])
}

func TestDedupeFirstSeenOrder(t *testing.T) {
	in := []types.BusinessCandidate{
		cand("B", "X", "CA", 10),
		cand("A", "X", "CA", 10),
		cand("B", "X", "CA", 90),
	}
	res := Dedupe(in, NameCityState)
	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "B", res.Candidates[0].Name)
	assert.Equal(t, 90, res.Candidates[0].DataQuality)
	assert.Equal(t, "A", res.Candidates[1].Name)
}

func TestDedupeEmpty(t *testing.T) {
	res := Dedupe(nil, NameCityState)
	assert.Empty(t, res.Candidates)
	assert.Zero(t, res.Removed)
}

func TestNameCityStateAddressKeepsLocationsApart(t *testing.T) {
	a := cand("Starbucks", "Seattle", "WA", 50)
	a.Address = "1 Pike St"
	b := cand("Starbucks", "Seattle", "WA", 50)
	b.Address = "2 Pine St"

	assert.Len(t, Dedupe([]types.BusinessCandidate{a, b}, NameCityState).Candidates, 1)
	assert.Len(t, Dedupe([]types.BusinessCandidate{a, b}, NameCityStateAddress).Candidates, 2)
}

func TestKeyFuncFor(t *testing.T) {
	f, err := KeyFuncFor("")
	require.NoError(t, err)
	assert.Equal(t, "acme|austin|tx", f(cand(" ACME ", "Austin", "TX", 0)).String())

	f, err = KeyFuncFor(StrategyNameCityStateAddress)
	require.NoError(t, err)
	c := cand("Acme", "Austin", "TX", 0)
	c.Address = "1  Main St"
	assert.Equal(t, "acme|austin|tx|1 main st", f(c).String())

	_, err = KeyFuncFor("by_phone")
	assert.Error(t, err)
}

func TestFold(t *testing.T) {
	assert.Equal(t, "joe's cafe", Fold("  Joe's\tCAFE "))
	// Full-width letters fold under NFKC.
	assert.Equal(t, "acme", Fold("ＡＣＭＥ"))
}

func TestMergeFieldLevel(t *testing.T) {
	rating := 4.2
	existing := cand("Joe's Cafe", "Springfield", "IL", 40)
	existing.Phone = "(217) 555-0101"
	existing.Rating = &rating

	incoming := cand("Joe's Cafe", "Springfield", "IL", 60)
	incoming.Website = "https://joes.example"
	incoming.Category = "Food & Dining"

	got := Merge(existing, incoming)
	assert.Equal(t, 60, got.DataQuality)
	assert.Equal(t, "(217) 555-0101", got.Phone, "empty field falls back to lower side")
	assert.Equal(t, "https://joes.example", got.Website)
	assert.Equal(t, "Food & Dining", got.Category)
	require.NotNil(t, got.Rating)
	assert.InDelta(t, 4.2, *got.Rating, 1e-9)
}

func TestMergePrefersHigherQualityValue(t *testing.T) {
	existing := cand("Joe's Cafe", "Springfield", "IL", 70)
	existing.Phone = "(217) 555-0101"
	incoming := cand("Joe's Cafe", "Springfield", "IL", 30)
	incoming.Phone = "(217) 555-9999"

	assert.Equal(t, "(217) 555-0101", Merge(existing, incoming).Phone)
	assert.Equal(t, "(217) 555-0101", Merge(incoming, existing).Phone)
}

func genCandidate() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("Joe's Cafe", "JOE'S CAFE", "Acme", "acme ", "Blue Bottle"),
		gen.OneConstOf("Springfield", "springfield", "Austin"),
		gen.OneConstOf("IL", "il", "TX"),
		gen.IntRange(0, 100),
	).Map(func(v []interface{}) types.BusinessCandidate {
		return cand(v[0].(string), v[1].(string), v[2].(string), v[3].(int))
	})
}

func TestDedupeProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("idempotent", prop.ForAll(
		func(cs []types.BusinessCandidate) bool {
			once := Dedupe(cs, NameCityState).Candidates
			twice := Dedupe(once, NameCityState)
			return twice.Removed == 0 && assert.ObjectsAreEqual(once, twice.Candidates)
		},
		gen.SliceOf(genCandidate()),
	))

	properties.Property("keys are unique and quality is the group max", prop.ForAll(
		func(cs []types.BusinessCandidate) bool {
			best := make(map[types.IdentityKey]int)
			for _, c := range cs {
				k := NameCityState(c)
				if q, ok := best[k]; !ok || c.DataQuality > q {
					best[k] = c.DataQuality
				}
			}
			out := Dedupe(cs, NameCityState).Candidates
			if len(out) != len(best) {
				return false
			}
			for _, c := range out {
				if best[NameCityState(c)] != c.DataQuality {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCandidate()),
	))

	properties.TestingRun(t)
}
