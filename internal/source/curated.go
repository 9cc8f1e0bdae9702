// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/votewallet/pkg/types"
)

//go:embed curated.yaml
var builtinCurated []byte

// curatedFile is the on-disk shape of a curated list.
type curatedFile struct {
	Businesses []types.RawBusiness `yaml:"businesses"`
}

// CuratedAdapter returns entries from a hand-maintained list.
type CuratedAdapter struct {
	Base
	entries []types.RawBusiness
}

// NewCuratedAdapter loads the list named by cfg.File, or the built-in list
// when no file is set.
func NewCuratedAdapter(cfg types.CuratedConfig) (*CuratedAdapter, error) {
	data := builtinCurated
	if cfg.File != "" {
		var err error
		data, err = os.ReadFile(cfg.File)
		if err != nil {
			return nil, fmt.Errorf("reading curated list: %w", err)
		}
	}
	entries, err := ParseCurated(data)
	if err != nil {
		return nil, err
	}
	return &CuratedAdapter{Base: NewBase("curated", cfg.SourceConfig), entries: entries}, nil
}

// ParseCurated decodes a curated list.
func ParseCurated(data []byte) ([]types.RawBusiness, error) {
	var f curatedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing curated list: %w", err)
	}
	for i := range f.Businesses {
		f.Businesses[i].Kind = types.KindCurated
		f.Businesses[i].Source = "curated"
	}
	return f.Businesses, nil
}

// Len returns the number of loaded entries.
func (a *CuratedAdapter) Len() int { return len(a.entries) }

// Collect returns the entries located in the target state, in list order.
func (a *CuratedAdapter) Collect(ctx context.Context, target types.TierTarget, quota int) ([]types.RawBusiness, error) {
	if err := a.Wait(ctx); err != nil {
		return nil, err
	}
	var out []types.RawBusiness
	for _, e := range a.entries {
		if strings.EqualFold(e.State, target.State) {
			out = append(out, e)
		}
	}
	return truncate(out, quota), nil
}
