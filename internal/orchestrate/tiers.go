// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"fmt"
	"os"
	"sort"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/votewallet/internal/normalize"
	"github.com/pdiddy/votewallet/pkg/types"
)

// Default per-target quotas by tier.
var defaultQuotas = map[int]int{1: 500, 2: 200, 3: 100, 4: 50}

// defaultCities lists the visited cities per state, grouped by tier.
var defaultCities = []map[string][]string{
	{ // tier 1
		"CA": {"Los Angeles", "San Francisco", "San Diego", "Sacramento"},
		"TX": {"Houston", "Dallas", "Austin", "San Antonio"},
		"FL": {"Miami", "Orlando", "Tampa", "Jacksonville"},
		"NY": {"New York", "Buffalo", "Rochester", "Albany"},
	},
	{ // tier 2
		"IL": {"Chicago", "Springfield", "Naperville"},
		"PA": {"Philadelphia", "Pittsburgh", "Harrisburg"},
		"OH": {"Columbus", "Cleveland", "Cincinnati"},
		"GA": {"Atlanta", "Savannah", "Augusta"},
		"NC": {"Charlotte", "Raleigh", "Greensboro"},
		"MI": {"Detroit", "Grand Rapids", "Lansing"},
	},
	{ // tier 3
		"NJ": {"Newark", "Jersey City"},
		"VA": {"Virginia Beach", "Richmond"},
		"WA": {"Seattle", "Spokane"},
		"AZ": {"Phoenix", "Tucson"},
		"MA": {"Boston", "Worcester"},
		"TN": {"Nashville", "Memphis"},
		"IN": {"Indianapolis", "Fort Wayne"},
		"MO": {"Kansas City", "St. Louis"},
		"MD": {"Baltimore", "Annapolis"},
		"WI": {"Milwaukee", "Madison"},
		"CO": {"Denver", "Colorado Springs"},
		"MN": {"Minneapolis", "Saint Paul"},
	},
	{ // tier 4
		"AL": {"Birmingham", "Montgomery"},
		"AK": {"Anchorage", "Juneau"},
		"AR": {"Little Rock", "Fayetteville"},
		"CT": {"Hartford", "New Haven"},
		"DE": {"Wilmington", "Dover"},
		"DC": {"Washington"},
		"HI": {"Honolulu", "Hilo"},
		"ID": {"Boise", "Idaho Falls"},
		"IA": {"Des Moines", "Cedar Rapids"},
		"KS": {"Wichita", "Topeka"},
		"KY": {"Louisville", "Lexington"},
		"LA": {"New Orleans", "Baton Rouge"},
		"ME": {"Portland", "Bangor"},
		"MS": {"Jackson", "Gulfport"},
		"MT": {"Billings", "Missoula"},
		"NE": {"Omaha", "Lincoln"},
		"NV": {"Las Vegas", "Reno"},
		"NH": {"Manchester", "Concord"},
		"NM": {"Albuquerque", "Santa Fe"},
		"ND": {"Fargo", "Bismarck"},
		"OK": {"Oklahoma City", "Tulsa"},
		"OR": {"Portland", "Eugene"},
		"RI": {"Providence", "Warwick"},
		"SC": {"Charleston", "Columbia"},
		"SD": {"Sioux Falls", "Rapid City"},
		"UT": {"Salt Lake City", "Provo"},
		"VT": {"Burlington", "Montpelier"},
		"WV": {"Charleston", "Morgantown"},
		"WY": {"Cheyenne", "Casper"},
	},
}

// DefaultTiers returns the built-in four-tier target table, ordered by
// tier and then state code.
func DefaultTiers() []types.TierTarget {
	var out []types.TierTarget
	for i, states := range defaultCities {
		tier := i + 1
		codes := make([]string, 0, len(states))
		for code := range states {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			out = append(out, types.TierTarget{
				State:  code,
				Name:   normalize.StateName(code),
				Tier:   tier,
				Quota:  defaultQuotas[tier],
				Cities: append([]string(nil), states[code]...),
			})
		}
	}
	return out
}

// tierFile is the on-disk shape of a tier table.
type tierFile struct {
	Tiers []types.TierTarget `yaml:"tiers"`
}

// LoadTiers reads a tier table from a YAML file. State codes are
// normalized and missing names filled in.
func LoadTiers(path string) ([]types.TierTarget, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading tier table: %w", err)
	}
	var f tierFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing tier table %s: %w", path, err)
	}
	return Canonical(f.Tiers), nil
}

// Canonical normalizes state codes and fills missing display names.
func Canonical(targets []types.TierTarget) []types.TierTarget {
	out := make([]types.TierTarget, len(targets))
	for i, t := range targets {
		t.State = normalize.State(t.State)
		if t.Name == "" {
			t.Name = normalize.StateName(t.State)
		}
		out[i] = t
	}
	return out
}
