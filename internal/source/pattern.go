// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"

	"github.com/pdiddy/votewallet/pkg/types"
)

// patternCeiling caps quality for synthesized records.
const patternCeiling = 30

// Brand is a chain present in most US cities.
type Brand struct {
	Name     string
	Category string
	Website  string
}

// DefaultBrands is the chain list the pattern adapter crosses with cities.
var DefaultBrands = []Brand{
	{"Starbucks", "cafe", "starbucks.com"},
	{"McDonald's", "fast_food", "mcdonalds.com"},
	{"Walmart", "department store", "walmart.com"},
	{"Target", "department store", "target.com"},
	{"CVS Pharmacy", "pharmacy", "cvs.com"},
	{"Walgreens", "pharmacy", "walgreens.com"},
	{"The Home Depot", "hardware store", "homedepot.com"},
	{"Lowe's", "hardware store", "lowes.com"},
	{"Chase Bank", "bank", "chase.com"},
	{"Bank of America", "bank", "bankofamerica.com"},
	{"Subway", "fast_food", "subway.com"},
	{"Chick-fil-A", "fast_food", "chick-fil-a.com"},
	{"Shell", "fuel", "shell.com"},
	{"Planet Fitness", "gym", "planetfitness.com"},
	{"Best Buy", "electronics", "bestbuy.com"},
	{"Costco", "supermarket", "costco.com"},
}

// PatternAdapter synthesizes chain locations by crossing a brand list with
// the target's cities. It is filler for targets real sources cover thinly.
type PatternAdapter struct {
	Base
	Brands []Brand
}

// NewPatternAdapter builds the adapter over DefaultBrands.
func NewPatternAdapter(cfg types.SourceConfig) *PatternAdapter {
	return &PatternAdapter{Base: NewBase("pattern", cfg), Brands: DefaultBrands}
}

// Collect emits one record per city and brand, cities outermost, in
// declared order.
func (a *PatternAdapter) Collect(ctx context.Context, target types.TierTarget, quota int) ([]types.RawBusiness, error) {
	if err := a.Wait(ctx); err != nil {
		return nil, err
	}
	var out []types.RawBusiness
	for _, city := range target.Cities {
		for _, b := range a.Brands {
			if len(out) >= quota {
				return out, nil
			}
			out = append(out, types.RawBusiness{
				Kind:           types.KindPattern,
				Source:         "pattern",
				Name:           b.Name,
				Category:       b.Category,
				City:           city,
				State:          target.State,
				Website:        b.Website,
				QualityCeiling: patternCeiling,
			})
		}
	}
	return out, nil
}
