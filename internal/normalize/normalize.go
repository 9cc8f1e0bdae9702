// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize converts raw adapter records into canonical business
// candidates and scores their completeness.
package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/votewallet/pkg/types"
)

// ValidationError reports a raw record that cannot become a candidate.
type ValidationError struct {
	Source string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Source == "" {
		return "invalid record: " + e.Reason
	}
	return fmt.Sprintf("invalid record from %s: %s", e.Source, e.Reason)
}

// Normalize converts raw into a BusinessCandidate. It fails only when the
// name is empty after cleaning; every other unusable field is dropped.
func Normalize(raw types.RawBusiness) (types.BusinessCandidate, error) {
	name := CleanText(raw.Name)
	if name == "" {
		return types.BusinessCandidate{}, &ValidationError{Source: raw.Source, Reason: "name is empty"}
	}

	c := types.BusinessCandidate{
		Name:        name,
		Category:    Category(CleanText(raw.Category)),
		Address:     CleanText(raw.Street),
		City:        CleanText(raw.City),
		State:       State(raw.State),
		Zip:         Zip(raw.Zip),
		Phone:       Phone(raw.Phone),
		Email:       Email(raw.Email),
		Website:     Website(raw.Website),
		Description: CleanText(raw.Description),
		Coordinates: coordinates(raw.Latitude, raw.Longitude),
		Rating:      parseFloat(raw.Rating),
		ReviewCount: parseInt(raw.ReviewCount),
		DataSource:  raw.Source,
	}
	if c.DataSource == "" {
		c.DataSource = string(raw.Kind)
	}

	q := Quality(c)
	if raw.QualityCeiling > 0 && q > raw.QualityCeiling {
		q = raw.QualityCeiling
	}
	c.DataQuality = q
	return c, nil
}

// CleanText trims s, collapses internal whitespace runs to one space and
// composes Unicode to NFC.
func CleanText(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Phone strips s to digits and formats ten-digit numbers as
// "(NNN) NNN-NNNN". Other lengths come back as the digits alone.
func Phone(s string) string {
	d := digits(s)
	if len(d) != 10 {
		return d
	}
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}

// Zip formats postal codes as NNNNN or NNNNN-NNNN. Values with fewer than
// five digits are returned cleaned but otherwise unchanged.
func Zip(s string) string {
	s = CleanText(s)
	d := digits(s)
	switch {
	case len(d) == 9:
		return d[:5] + "-" + d[5:]
	case len(d) >= 5:
		return d[:5]
	default:
		return s
	}
}

// Email returns the lower-cased address when it contains both "@" and ".",
// otherwise "".
func Email(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.Contains(s, "@") || !strings.Contains(s, ".") {
		return ""
	}
	return s
}

// Website prefixes "https://" when s has no scheme.
func Website(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if hasScheme(s) {
		return s
	}
	return "https://" + strings.TrimPrefix(s, "//")
}

// hasScheme reports whether s starts with "scheme://", where scheme is a
// letter followed by letters, digits, "+", "-" or ".".
func hasScheme(s string) bool {
	i := strings.Index(s, "://")
	if i <= 0 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r < unicode.MaxASCII && unicode.IsLetter(r):
		case j > 0 && (r < unicode.MaxASCII && unicode.IsDigit(r) || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// parseFloat parses s leniently: surrounding whitespace and thousands
// separators are ignored; anything unparseable is unset.
func parseFloat(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseInt(s string) *int {
	f := parseFloat(s)
	if f == nil || *f < 0 {
		return nil
	}
	n := int(*f)
	return &n
}

func coordinates(lat, lon string) *types.Coordinates {
	la, lo := parseFloat(lat), parseFloat(lon)
	if la == nil || lo == nil {
		return nil
	}
	if *la < -90 || *la > 90 || *lo < -180 || *lo > 180 {
		return nil
	}
	return &types.Coordinates{Latitude: *la, Longitude: *lo}
}
