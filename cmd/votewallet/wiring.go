// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pdiddy/votewallet/internal/alignment"
	"github.com/pdiddy/votewallet/internal/cache"
	"github.com/pdiddy/votewallet/internal/dedupe"
	"github.com/pdiddy/votewallet/internal/httputil"
	"github.com/pdiddy/votewallet/internal/source"
	"github.com/pdiddy/votewallet/internal/store"
	"github.com/pdiddy/votewallet/pkg/types"
)

// signalContext is cancelled on SIGINT or SIGTERM so long runs stop
// between units of work.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openStore opens the configured gateway with the configured identity
// strategy. dryRun swaps in the in-memory gateway.
func openStore(cfg types.PipelineConfig, dryRun bool) (store.Gateway, error) {
	key, err := dedupe.KeyFuncFor(cfg.Orchestrator.IdentityStrategy)
	if err != nil {
		return nil, err
	}
	sc := cfg.Store
	if dryRun {
		sc = types.StoreConfig{Driver: "memory"}
	}
	return store.Open(sc, key)
}

func newClient(cfg types.PipelineConfig) *httputil.Client {
	return httputil.NewClient(cfg.Fetch, logger)
}

func newAlignmentService(cfg types.PipelineConfig, gw store.Gateway) (*alignment.Service, error) {
	c, err := cache.New[types.AlignmentRecord](cfg.Cache, logger)
	if err != nil {
		return nil, err
	}
	sources := source.EvidenceSources(newClient(cfg), cfg.Sources, logger)
	return alignment.NewService(sources, gw, c, cfg, logger), nil
}
