// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/internal/normalize"
	"github.com/pdiddy/votewallet/pkg/types"
)

// wikipediaAPIBase is the MediaWiki action API endpoint. Declared as a var
// so tests can substitute an httptest server.
var wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"

// encyclopedicCeiling caps quality for text-derived records.
const encyclopedicCeiling = 40

// businessIndicators mark a search hit as describing a business. The hint,
// when set, seeds the raw category.
var businessIndicators = []struct {
	keyword string
	hint    string
}{
	{"restaurant", "restaurant"},
	{"coffee", "coffee"},
	{"supermarket", "supermarket"},
	{"grocery", "grocery"},
	{"retailer", "retail"},
	{"department store", "department store"},
	{"bank", "bank"},
	{"insurance", "insurance"},
	{"pharmacy", "pharmacy"},
	{"hotel", "hotel"},
	{"software", "software"},
	{"manufacturer", ""},
	{"company", ""},
	{"corporation", ""},
	{"headquartered", ""},
	{"founded", ""},
	{"chain", ""},
	{"brand", ""},
	{"inc.", ""},
	{"llc", ""},
}

var skipTitlePrefixes = []string{"list of", "economy of", "category:", "timeline of"}

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)\s*$`)

// EncyclopedicAdapter finds business names in encyclopedia search results.
type EncyclopedicAdapter struct {
	Base
	Client *httputil.Client
	Logger *slog.Logger
}

// NewEncyclopedicAdapter builds the adapter from cfg.
func NewEncyclopedicAdapter(client *httputil.Client, cfg types.SourceConfig, logger *slog.Logger) *EncyclopedicAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EncyclopedicAdapter{
		Base:   NewBase("encyclopedic", cfg),
		Client: client,
		Logger: logger,
	}
}

type wikiSearchResponse struct {
	Query struct {
		Search []struct {
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"search"`
	} `json:"query"`
}

// phrase is one constructed search with the city it is about, if any.
type phrase struct {
	text string
	city string
}

func phrases(target types.TierTarget) []phrase {
	region := target.Name
	if region == "" {
		region = normalize.StateName(target.State)
	}
	ps := []phrase{
		{text: "companies based in " + region},
		{text: "retail chains headquartered in " + region},
	}
	for _, c := range target.Cities {
		ps = append(ps, phrase{text: c + " " + region + " businesses", city: c})
	}
	return ps
}

// Collect runs each constructed phrase and keeps hits that read like
// businesses. Titles seen twice are emitted once.
func (a *EncyclopedicAdapter) Collect(ctx context.Context, target types.TierTarget, quota int) ([]types.RawBusiness, error) {
	var out []types.RawBusiness
	var errs []error
	seen := make(map[string]bool)
	ps := phrases(target)

	for _, p := range ps {
		if len(out) >= quota {
			break
		}
		if err := a.Wait(ctx); err != nil {
			return truncate(out, quota), err
		}
		resp, err := a.search(ctx, p.text, min(quota, maxPlacesPerQuery))
		if err != nil {
			if ctx.Err() != nil {
				return truncate(out, quota), ctx.Err()
			}
			a.Logger.Warn("encyclopedic query failed", "phrase", p.text, "err", err)
			errs = append(errs, err)
			continue
		}
		for _, hit := range resp.Query.Search {
			name, ok := candidateName(hit.Title)
			if !ok || seen[strings.ToLower(name)] {
				continue
			}
			text := snippetText(hit.Snippet)
			hint, ok := indicator(hit.Title + " " + text)
			if !ok {
				continue
			}
			seen[strings.ToLower(name)] = true
			out = append(out, types.RawBusiness{
				Kind:           types.KindEncyclopedic,
				Source:         "encyclopedic",
				Name:           name,
				Category:       hint,
				City:           p.city,
				State:          target.State,
				Description:    text,
				QualityCeiling: encyclopedicCeiling,
			})
		}
	}

	if len(errs) == len(ps) {
		return nil, fmt.Errorf("all %d encyclopedic queries failed: %w", len(ps), errors.Join(errs...))
	}
	return truncate(out, quota), nil
}

func (a *EncyclopedicAdapter) search(ctx context.Context, text string, limit int) (wikiSearchResponse, error) {
	params := url.Values{
		"action":   {"query"},
		"list":     {"search"},
		"srsearch": {text},
		"srlimit":  {strconv.Itoa(limit)},
		"format":   {"json"},
	}
	var resp wikiSearchResponse
	err := a.Client.GetJSON(ctx, wikipediaAPIBase+"?"+params.Encode(), &resp)
	return resp, err
}

// candidateName strips disambiguation suffixes and rejects index pages.
func candidateName(title string) (string, bool) {
	lower := strings.ToLower(title)
	for _, p := range skipTitlePrefixes {
		if strings.HasPrefix(lower, p) {
			return "", false
		}
	}
	if strings.Contains(lower, "disambiguation") {
		return "", false
	}
	name := strings.TrimSpace(parenthetical.ReplaceAllString(title, ""))
	return name, name != ""
}

// snippetText reduces a search snippet's HTML highlighting to plain text.
func snippetText(snippet string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(snippet))
	if err != nil {
		return snippet
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// indicator reports whether text mentions a business indicator and returns
// the first category hint found.
func indicator(text string) (string, bool) {
	lower := strings.ToLower(text)
	found := false
	for _, bi := range businessIndicators {
		if strings.Contains(lower, bi.keyword) {
			if bi.hint != "" {
				return bi.hint, true
			}
			found = true
		}
	}
	return "", found
}
