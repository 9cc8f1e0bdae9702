// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the votewallet pipeline:
// raw adapter records, business candidates, canonical businesses, alignment
// evidence and vectors, user submissions, tier targets, run reports and
// configuration.
package types

import (
	"strings"
	"time"
)

// RawKind tags which adapter variant produced a RawBusiness.
type RawKind string

const (
	KindGeodata      RawKind = "geodata"
	KindEncyclopedic RawKind = "encyclopedic"
	KindCurated      RawKind = "curated"
	KindPattern      RawKind = "pattern"
)

// RawBusiness is one adapter's view of a business before normalization.
// Every field is a string so adapters can pass upstream values through
// without parsing; the normalizer decides what is usable.
type RawBusiness struct {
	Kind   RawKind `json:"kind" yaml:"kind"`
	Source string  `json:"source" yaml:"source"`

	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Street      string `json:"street" yaml:"street"`
	City        string `json:"city" yaml:"city"`
	State       string `json:"state" yaml:"state"`
	Zip         string `json:"zip" yaml:"zip"`
	Phone       string `json:"phone" yaml:"phone"`
	Email       string `json:"email" yaml:"email"`
	Website     string `json:"website" yaml:"website"`
	Description string `json:"description" yaml:"description"`
	Latitude    string `json:"latitude" yaml:"latitude"`
	Longitude   string `json:"longitude" yaml:"longitude"`
	Rating      string `json:"rating" yaml:"rating"`
	ReviewCount string `json:"review_count" yaml:"review_count"`

	// QualityCeiling caps the computed data quality for records whose
	// provenance is weak (text-derived, synthesized). Zero means no cap.
	QualityCeiling int `json:"quality_ceiling,omitempty" yaml:"quality_ceiling,omitempty"`
}

// Coordinates is a WGS84 latitude/longitude pair.
type Coordinates struct {
	Latitude  float64 `json:"latitude" yaml:"latitude"`
	Longitude float64 `json:"longitude" yaml:"longitude"`
}

// BusinessCandidate is a normalized, single-source view of a business.
// Candidates are values: merging produces a new candidate.
type BusinessCandidate struct {
	Name        string       `json:"name" yaml:"name"`
	Category    string       `json:"category,omitempty" yaml:"category,omitempty"`
	Address     string       `json:"address,omitempty" yaml:"address,omitempty"`
	City        string       `json:"city,omitempty" yaml:"city,omitempty"`
	State       string       `json:"state,omitempty" yaml:"state,omitempty"`
	Zip         string       `json:"zip,omitempty" yaml:"zip,omitempty"`
	Phone       string       `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email       string       `json:"email,omitempty" yaml:"email,omitempty"`
	Website     string       `json:"website,omitempty" yaml:"website,omitempty"`
	Description string       `json:"description,omitempty" yaml:"description,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty" yaml:"coordinates,omitempty"`
	Rating      *float64     `json:"rating,omitempty" yaml:"rating,omitempty"`
	ReviewCount *int         `json:"review_count,omitempty" yaml:"review_count,omitempty"`

	// DataSource names the adapter that produced the candidate.
	DataSource string `json:"data_source" yaml:"data_source"`

	// DataQuality is a 0-100 completeness score.
	DataQuality int `json:"data_quality" yaml:"data_quality"`
}

// IdentityKey identifies one canonical business. Address is only populated
// by key strategies that include it.
type IdentityKey struct {
	Name    string `json:"name" yaml:"name"`
	City    string `json:"city" yaml:"city"`
	State   string `json:"state" yaml:"state"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// String returns the key in its stored form.
func (k IdentityKey) String() string {
	parts := []string{k.Name, k.City, k.State}
	if k.Address != "" {
		parts = append(parts, k.Address)
	}
	return strings.Join(parts, "|")
}

// CanonicalBusiness is the deduplicated, persisted business.
type CanonicalBusiness struct {
	ID                string `json:"id" yaml:"id"`
	BusinessCandidate `yaml:",inline"`
	IdentityKey       string    `json:"identity_key" yaml:"identity_key"`
	LogoPath          string    `json:"logo_path,omitempty" yaml:"logo_path,omitempty"`
	CreatedAt         time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt         time.Time `json:"updated_at" yaml:"updated_at"`
}

// BusinessFilter narrows ListBusinesses. Zero values match everything.
type BusinessFilter struct {
	State      string
	City       string
	Category   string
	MinQuality int
	Limit      int
}
