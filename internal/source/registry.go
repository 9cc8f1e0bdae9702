// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"log/slog"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/pkg/types"
)

// Adapters builds the enabled business adapters in their declared order:
// curated, geodata, encyclopedic, pattern. Higher-reliability sources run
// first so filler only tops up what they leave of the quota.
func Adapters(client *httputil.Client, cfg types.SourcesConfig, logger *slog.Logger) ([]Adapter, error) {
	var out []Adapter
	if cfg.Curated.Enabled {
		a, err := NewCuratedAdapter(cfg.Curated)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if cfg.Geodata.Enabled {
		out = append(out, NewGeodataAdapter(client, cfg.Geodata, logger))
	}
	if cfg.Encyclopedic.Enabled {
		out = append(out, NewEncyclopedicAdapter(client, cfg.Encyclopedic, logger))
	}
	if cfg.Pattern.Enabled {
		out = append(out, NewPatternAdapter(cfg.Pattern))
	}
	return out, nil
}

// EvidenceSources builds the enabled evidence sources.
func EvidenceSources(client *httputil.Client, cfg types.SourcesConfig, logger *slog.Logger) []EvidenceSource {
	var out []EvidenceSource
	if cfg.Donations.Enabled {
		out = append(out, NewDonationRegistry(client, cfg.Donations))
	}
	if cfg.Statements.Enabled && len(cfg.Statements.Feeds) > 0 {
		out = append(out, NewStatementFeed(client, cfg.Statements, logger))
	}
	return out
}
