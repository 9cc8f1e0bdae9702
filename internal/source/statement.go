// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/internal/lean"
	"github.com/pdiddy/votewallet/pkg/types"
)

// StatementFeed scans news feeds for items that mention a business and
// carry a political signal.
type StatementFeed struct {
	Base
	Client *httputil.Client
	Feeds  []string
	Logger *slog.Logger
}

// NewStatementFeed builds the source from cfg.
func NewStatementFeed(client *httputil.Client, cfg types.StatementConfig, logger *slog.Logger) *StatementFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatementFeed{
		Base:   NewBase("statements", cfg.SourceConfig),
		Client: client,
		Feeds:  cfg.Feeds,
		Logger: logger,
	}
}

// Evidence fetches every feed and returns a StatementEvidence for each item
// that names the business and has at least one lean keyword hit. Feeds that
// fail are logged and skipped.
func (s *StatementFeed) Evidence(ctx context.Context, business types.CanonicalBusiness) (types.Evidence, error) {
	var ev types.Evidence
	var errs []error
	name := strings.ToLower(business.Name)
	if name == "" {
		return ev, nil
	}

	parser := gofeed.NewParser()
	for _, feedURL := range s.Feeds {
		if err := s.Wait(ctx); err != nil {
			return ev, err
		}
		resp, err := s.Client.Get(ctx, feedURL, "application/rss+xml, application/atom+xml, application/xml")
		if err != nil {
			if ctx.Err() != nil {
				return ev, ctx.Err()
			}
			s.Logger.Warn("statement feed failed", "feed", feedURL, "err", err)
			errs = append(errs, err)
			continue
		}
		feed, err := parser.ParseString(string(resp.Body))
		if err != nil {
			s.Logger.Warn("statement feed unparseable", "feed", feedURL, "err", err)
			errs = append(errs, fmt.Errorf("parsing feed %s: %w", feedURL, err))
			continue
		}
		for _, item := range feed.Items {
			text := strings.TrimSpace(item.Title + ". " + snippetText(item.Description))
			if !strings.Contains(strings.ToLower(text), name) {
				continue
			}
			l, hits := lean.Infer(text)
			if hits == 0 {
				continue
			}
			st := types.StatementEvidence{
				Text:       text,
				Lean:       l,
				Confidence: statementConfidence(hits),
				Source:     s.Name(),
				URL:        item.Link,
			}
			if item.PublishedParsed != nil {
				st.PublishedAt = *item.PublishedParsed
			}
			ev.Statements = append(ev.Statements, st)
		}
	}

	if len(s.Feeds) > 0 && len(errs) == len(s.Feeds) {
		return ev, fmt.Errorf("all %d statement feeds failed: %w", len(s.Feeds), errors.Join(errs...))
	}
	return ev, nil
}

// statementConfidence grows with keyword hits and saturates at 0.9.
func statementConfidence(hits int) float64 {
	return min(0.3+0.15*float64(hits), 0.9)
}
