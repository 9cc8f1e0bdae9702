// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/pkg/types"
)

// nominatimSearchBase is the place-search endpoint. Declared as a var so
// tests can substitute an httptest server.
var nominatimSearchBase = "https://nominatim.openstreetmap.org/search"

const maxPlacesPerQuery = 50

// GeodataAdapter searches a place-search service for each city and
// business keyword of a target.
type GeodataAdapter struct {
	Base
	Client   *httputil.Client
	Email    string
	Keywords []string
	Logger   *slog.Logger
}

// NewGeodataAdapter builds the adapter from cfg.
func NewGeodataAdapter(client *httputil.Client, cfg types.GeodataConfig, logger *slog.Logger) *GeodataAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &GeodataAdapter{
		Base:     NewBase("geodata", cfg.SourceConfig),
		Client:   client,
		Email:    cfg.Email,
		Keywords: cfg.Keywords,
		Logger:   logger,
	}
}

// nominatimPlace is the subset of a jsonv2 search result the adapter reads.
type nominatimPlace struct {
	Name        string            `json:"name"`
	DisplayName string            `json:"display_name"`
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	Category    string            `json:"category"`
	Type        string            `json:"type"`
	Address     map[string]string `json:"address"`
	ExtraTags   map[string]string `json:"extratags"`
}

// Collect queries every city × keyword pair until quota records are found.
// Individual query failures are logged; Collect fails only when every
// query failed.
func (a *GeodataAdapter) Collect(ctx context.Context, target types.TierTarget, quota int) ([]types.RawBusiness, error) {
	var out []types.RawBusiness
	var errs []error
	queries := 0

	for _, city := range target.Cities {
		for _, kw := range a.Keywords {
			if len(out) >= quota {
				return truncate(out, quota), nil
			}
			if err := a.Wait(ctx); err != nil {
				return truncate(out, quota), err
			}
			queries++
			places, err := a.search(ctx, kw, city, target.State, min(quota-len(out), maxPlacesPerQuery))
			if err != nil {
				if ctx.Err() != nil {
					return truncate(out, quota), ctx.Err()
				}
				a.Logger.Warn("geodata query failed", "keyword", kw, "city", city, "state", target.State, "err", err)
				errs = append(errs, err)
				continue
			}
			for _, p := range places {
				out = append(out, placeToRaw(p, city, target.State))
			}
		}
	}

	if queries > 0 && len(errs) == queries {
		return nil, fmt.Errorf("all %d geodata queries failed: %w", queries, errors.Join(errs...))
	}
	return truncate(out, quota), nil
}

func (a *GeodataAdapter) search(ctx context.Context, keyword, city, state string, limit int) ([]nominatimPlace, error) {
	params := url.Values{
		"q":              {fmt.Sprintf("%s in %s, %s", keyword, city, state)},
		"format":         {"jsonv2"},
		"addressdetails": {"1"},
		"extratags":      {"1"},
		"countrycodes":   {"us"},
		"limit":          {strconv.Itoa(limit)},
	}
	if a.Email != "" {
		params.Set("email", a.Email)
	}

	var places []nominatimPlace
	if err := a.Client.GetJSON(ctx, nominatimSearchBase+"?"+params.Encode(), &places); err != nil {
		return nil, err
	}
	return places, nil
}

// placeToRaw flattens a place result. The target city and state fill in
// when the address details omit them.
func placeToRaw(p nominatimPlace, city, state string) types.RawBusiness {
	name := p.Name
	if name == "" {
		name, _, _ = strings.Cut(p.DisplayName, ",")
	}
	addr := p.Address
	r := types.RawBusiness{
		Kind:      types.KindGeodata,
		Source:    "geodata",
		Name:      name,
		Category:  p.Type,
		Street:    strings.TrimSpace(addr["house_number"] + " " + addr["road"]),
		City:      firstNonEmpty(addr["city"], addr["town"], addr["village"], city),
		State:     firstNonEmpty(addr["state"], state),
		Zip:       addr["postcode"],
		Latitude:  p.Lat,
		Longitude: p.Lon,
		Phone:     firstNonEmpty(p.ExtraTags["phone"], p.ExtraTags["contact:phone"]),
		Email:     firstNonEmpty(p.ExtraTags["email"], p.ExtraTags["contact:email"]),
		Website:   firstNonEmpty(p.ExtraTags["website"], p.ExtraTags["contact:website"]),
	}
	if r.Category == "" || r.Category == "yes" {
		r.Category = p.Category
	}
	return r
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
