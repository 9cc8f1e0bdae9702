// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package logo

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/pkg/types"
)

// Gateway records downloaded logo paths.
type Gateway interface {
	SetLogo(ctx context.Context, businessID, path string) error
}

// Stats summarizes a fetch run.
type Stats struct {
	Processed  int `json:"processed" yaml:"processed"`
	Found      int `json:"found" yaml:"found"`
	Downloaded int `json:"downloaded" yaml:"downloaded"`
}

// SuccessRate is the share of found logos that were downloaded, in
// percent.
func (s Stats) SuccessRate() float64 {
	if s.Found == 0 {
		return 0
	}
	return float64(s.Downloaded) / float64(s.Found) * 100
}

// Fetcher downloads logos for a list of companies into Dir, one
// subdirectory per company, pausing Delay between companies.
type Fetcher struct {
	Finder  *Finder
	Gateway Gateway
	Dir     string
	Delay   time.Duration
	Logger  *slog.Logger
	Sleep   func(ctx context.Context, d time.Duration) error
}

// NewFetcher returns a fetcher configured by cfg. gw may be nil when
// paths need not be recorded.
func NewFetcher(finder *Finder, gw Gateway, cfg types.LogoConfig, logger *slog.Logger) *Fetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{
		Finder:  finder,
		Gateway: gw,
		Dir:     cfg.Dir,
		Delay:   cfg.Delay,
		Logger:  logger,
		Sleep:   httputil.Sleep,
	}
}

// Run fetches logos for each business and records the first downloaded
// path on the business.
func (f *Fetcher) Run(ctx context.Context, businesses []types.CanonicalBusiness) (Stats, error) {
	var stats Stats
	for i, b := range businesses {
		if i > 0 {
			if err := f.Sleep(ctx, f.Delay); err != nil {
				return stats, err
			}
		}
		f.process(ctx, b.ID, b.Name, &stats)
	}
	return stats, ctx.Err()
}

// RunNames fetches logos for companies that are not in the catalog.
func (f *Fetcher) RunNames(ctx context.Context, names []string) (Stats, error) {
	bs := make([]types.CanonicalBusiness, len(names))
	for i, n := range names {
		bs[i].Name = n
	}
	return f.Run(ctx, bs)
}

func (f *Fetcher) process(ctx context.Context, id, company string, stats *Stats) {
	stats.Processed++
	logos, err := f.Finder.Find(ctx, company)
	if err != nil {
		f.Logger.Warn("logo search failed", "company", company, "error", err)
		return
	}
	if len(logos) == 0 {
		f.Logger.Info("no logos found", "company", company)
		return
	}
	stats.Found += len(logos)

	dir := filepath.Join(f.Dir, SanitizeFilename(company))
	first := ""
	for i, l := range logos {
		if i > 0 {
			if err := f.Sleep(ctx, f.Delay); err != nil {
				return
			}
		}
		path, err := f.Finder.Download(ctx, l, dir, fmt.Sprintf("logo_%d.%s", i+1, l.Ext()))
		if err != nil {
			f.Logger.Warn("logo download failed", "company", company, "file", l.Title, "error", err)
			continue
		}
		stats.Downloaded++
		f.Logger.Info("logo downloaded", "company", company, "path", path, "width", l.Width, "height", l.Height)
		if first == "" {
			first = path
		}
	}

	if first != "" && id != "" && f.Gateway != nil {
		if err := f.Gateway.SetLogo(ctx, id, first); err != nil {
			f.Logger.Warn("recording logo failed", "company", company, "error", err)
		}
	}
}

// FormatSummary writes a one-line run summary.
func FormatSummary(s Stats, w io.Writer) {
	fmt.Fprintf(w, "Logos: %d companies processed, %d found, %d downloaded", s.Processed, s.Found, s.Downloaded)
	if s.Found > 0 {
		fmt.Fprintf(w, " (%.1f%%)", s.SuccessRate())
	}
	fmt.Fprintln(w)
}
