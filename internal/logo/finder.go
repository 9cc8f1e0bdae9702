// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logo finds company logos on Wikipedia and downloads them
// unmodified.
package logo

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/pdiddy/votewallet/internal/httputil"
)

// Endpoints are vars so tests can substitute an httptest server.
var (
	wikipediaAPIBase = "https://en.wikipedia.org/w/api.php"
	commonsAPIBase   = "https://commons.wikimedia.org/w/api.php"
)

const (
	maxPageImages = 50
	minSVGWidth   = 100
)

// Logo describes one candidate logo file on Wikimedia Commons.
type Logo struct {
	Title  string `json:"title" yaml:"title"`
	URL    string `json:"url" yaml:"url"`
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Mime   string `json:"mime" yaml:"mime"`
	Size   int    `json:"size" yaml:"size"`
}

// Ext returns "png" for PNG logos and "svg" otherwise.
func (l Logo) Ext() string {
	if strings.Contains(l.Mime, "png") {
		return "png"
	}
	return "svg"
}

var logoKeywords = []string{
	"logo", "wordmark", "emblem", "symbol", "brand", "trademark",
	"corporate", "company_logo", "logotype", "mark", "insignia",
}

var skipKeywords = []string{
	"commons-logo", "wiki", "wikidata", "wikimedia", "edit-icon",
	"ambox", "merge", "disambig",
}

// IsLogoFile reports whether a file title looks like a company logo: it
// names a logo, is PNG or SVG, and is not one of the wiki's own icons.
func IsLogoFile(title string) bool {
	t := strings.ToLower(title)
	if !strings.HasSuffix(t, ".png") && !strings.HasSuffix(t, ".svg") {
		return false
	}
	for _, s := range skipKeywords {
		if strings.Contains(t, s) {
			return false
		}
	}
	for _, k := range logoKeywords {
		if strings.Contains(t, k) {
			return true
		}
	}
	return false
}

// Variations lists the page titles tried for a company, in order.
func Variations(company string) []string {
	return []string{
		company,
		company + ", Inc.",
		company + " Inc.",
		"The " + company + " Company",
	}
}

// Finder looks up logos through the Wikipedia and Commons APIs.
type Finder struct {
	Client *httputil.Client
	Logger *slog.Logger
}

// NewFinder returns a Finder using client.
func NewFinder(client *httputil.Client, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{Client: client, Logger: logger}
}

type queryResponse struct {
	Query struct {
		Pages map[string]struct {
			Title   string  `json:"title"`
			Missing *string `json:"missing"`
			Invalid *string `json:"invalid"`
			Images  []struct {
				Title string `json:"title"`
			} `json:"images"`
			ImageInfo []struct {
				URL    string `json:"url"`
				Width  int    `json:"width"`
				Height int    `json:"height"`
				Mime   string `json:"mime"`
				Size   int    `json:"size"`
			} `json:"imageinfo"`
		} `json:"pages"`
	} `json:"query"`
}

func (f *Finder) query(ctx context.Context, base string, params url.Values) (queryResponse, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	var resp queryResponse
	err := f.Client.GetJSON(ctx, base+"?"+params.Encode(), &resp)
	return resp, err
}

// Page returns the title of the first existing Wikipedia page among the
// company's name variations.
func (f *Finder) Page(ctx context.Context, company string) (string, bool, error) {
	for _, v := range Variations(company) {
		resp, err := f.query(ctx, wikipediaAPIBase, url.Values{"titles": {v}, "redirects": {"1"}})
		if err != nil {
			return "", false, fmt.Errorf("looking up page %q: %w", v, err)
		}
		for _, p := range resp.Query.Pages {
			if p.Missing == nil && p.Invalid == nil && p.Title != "" {
				return p.Title, true, nil
			}
		}
	}
	return "", false, nil
}

// Find returns the accepted logos on the company's Wikipedia page: files
// passing IsLogoFile whose Commons metadata is PNG, or SVG at least 100
// pixels wide. A company without a page has no logos.
func (f *Finder) Find(ctx context.Context, company string) ([]Logo, error) {
	title, ok, err := f.Page(ctx, company)
	if err != nil || !ok {
		return nil, err
	}
	f.Logger.Debug("found page", "company", company, "page", title)

	resp, err := f.query(ctx, wikipediaAPIBase, url.Values{
		"titles":  {title},
		"prop":    {"images"},
		"imlimit": {fmt.Sprint(maxPageImages)},
	})
	if err != nil {
		return nil, fmt.Errorf("listing images on %q: %w", title, err)
	}

	var logos []Logo
	for _, p := range resp.Query.Pages {
		for _, img := range p.Images {
			if !IsLogoFile(img.Title) {
				continue
			}
			l, ok, err := f.info(ctx, img.Title)
			if err != nil {
				f.Logger.Warn("logo metadata unavailable", "file", img.Title, "error", err)
				continue
			}
			if ok {
				logos = append(logos, l)
			}
		}
	}
	return logos, nil
}

func (f *Finder) info(ctx context.Context, fileTitle string) (Logo, bool, error) {
	resp, err := f.query(ctx, commonsAPIBase, url.Values{
		"titles": {fileTitle},
		"prop":   {"imageinfo"},
		"iiprop": {"url|size|mime"},
	})
	if err != nil {
		return Logo{}, false, err
	}
	for _, p := range resp.Query.Pages {
		if len(p.ImageInfo) == 0 {
			continue
		}
		ii := p.ImageInfo[0]
		if strings.Contains(ii.Mime, "png") || (strings.Contains(ii.Mime, "svg") && ii.Width >= minSVGWidth) {
			return Logo{
				Title:  strings.TrimPrefix(fileTitle, "File:"),
				URL:    ii.URL,
				Width:  ii.Width,
				Height: ii.Height,
				Mime:   ii.Mime,
				Size:   ii.Size,
			}, true, nil
		}
	}
	return Logo{}, false, nil
}
