// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import "strings"

// StateNames maps USPS codes to state-equivalent names.
var StateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"DC": "District of Columbia", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota",
	"MS": "Mississippi", "MO": "Missouri", "MT": "Montana", "NE": "Nebraska",
	"NV": "Nevada", "NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio",
	"OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island",
	"SC": "South Carolina", "SD": "South Dakota", "TN": "Tennessee", "TX": "Texas",
	"UT": "Utah", "VT": "Vermont", "VA": "Virginia", "WA": "Washington",
	"WV": "West Virginia", "WI": "Wisconsin", "WY": "Wyoming",
}

var stateCodes = func() map[string]string {
	m := make(map[string]string, len(StateNames))
	for code, name := range StateNames {
		m[strings.ToLower(name)] = code
	}
	return m
}()

// State returns the USPS code for a state code or full name. Unrecognized
// input is returned cleaned.
func State(s string) string {
	s = CleanText(s)
	if s == "" {
		return ""
	}
	upper := strings.ToUpper(s)
	if _, ok := StateNames[upper]; ok {
		return upper
	}
	if code, ok := stateCodes[strings.ToLower(s)]; ok {
		return code
	}
	return s
}

// StateName returns the display name for a USPS code, or the code itself.
func StateName(code string) string {
	if name, ok := StateNames[strings.ToUpper(code)]; ok {
		return name
	}
	return code
}
