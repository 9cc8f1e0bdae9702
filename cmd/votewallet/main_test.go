// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/votewallet/internal/orchestrate"
	"github.com/pdiddy/votewallet/pkg/types"
)

func TestTierTablePrecedence(t *testing.T) {
	cfg := types.DefaultPipelineConfig()
	targets, err := tierTable(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, orchestrate.DefaultTiers(), targets)

	cfg.Tiers = []types.TierTarget{{State: "texas", Tier: 1, Quota: 10}}
	targets, err = tierTable(cfg, "")
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "TX", targets[0].State)

	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers:\n  - state: OR\n    tier: 2\n    quota: 5\n"), 0o644))
	targets, err = tierTable(cfg, path)
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, "Oregon", targets[0].Name)
}

func TestDominant(t *testing.T) {
	assert.Equal(t, "-", dominant(nil))
	assert.Equal(t, "-", dominant(&types.AlignmentRecord{}))
	assert.Equal(t, "green 7.5", dominant(&types.AlignmentRecord{Vector: types.AlignmentVector{Liberal: 2, Green: 7.5}}))
}

func TestFormatCatalog(t *testing.T) {
	var buf bytes.Buffer
	formatCatalog(&buf, nil)
	assert.Equal(t, "No businesses found.\n", buf.String())

	buf.Reset()
	formatCatalog(&buf, []catalogEntry{{CanonicalBusiness: types.CanonicalBusiness{
		BusinessCandidate: types.BusinessCandidate{Name: "Joe's Cafe", City: "Springfield", State: "IL", DataQuality: 60},
	}}})
	assert.Contains(t, buf.String(), "Joe's Cafe")
	assert.Contains(t, buf.String(), "1 business(es)")
}

func TestNewLoggerLevel(t *testing.T) {
	l := newLogger(types.LogConfig{Level: "warn"})
	assert.False(t, l.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, l.Enabled(context.Background(), slog.LevelWarn))

	l = newLogger(types.LogConfig{Level: "bogus", Format: "json"})
	assert.True(t, l.Enabled(context.Background(), slog.LevelInfo))
}

// loadConfig runs the root command's config resolution against a clean
// viper instance with the persistent flags bound as in init.
func loadConfig(t *testing.T) types.PipelineConfig {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Chdir(t.TempDir())
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("store-dsn"))

	initConfig()
	require.NoError(t, rootCmd.PersistentPreRunE(rootCmd, nil))
	return pipelineCfg
}

func TestConfigFromEnvironment(t *testing.T) {
	t.Setenv("VOTEWALLET_ORCHESTRATOR_BATCH_SIZE", "7")
	t.Setenv("VOTEWALLET_ORCHESTRATOR_TIER_DELAY", "2s")
	t.Setenv("VOTEWALLET_SOURCES_DONATIONS_API_KEY", "env-key")
	t.Setenv("VOTEWALLET_SOURCES_GEODATA_ENABLED", "false")
	t.Setenv("VOTEWALLET_STORE_DRIVER", "memory")

	cfg := loadConfig(t)
	assert.Equal(t, 7, cfg.Orchestrator.BatchSize)
	assert.Equal(t, 2*time.Second, cfg.Orchestrator.TierDelay)
	assert.Equal(t, "env-key", cfg.Sources.Donations.APIKey)
	assert.False(t, cfg.Sources.Geodata.Enabled)
	assert.Equal(t, "memory", cfg.Store.Driver)
}

func TestConfigDefaultsSurviveUnsetFlags(t *testing.T) {
	cfg := loadConfig(t)
	def := types.DefaultPipelineConfig()
	assert.Equal(t, def.Store, cfg.Store)
	assert.Equal(t, def.Orchestrator, cfg.Orchestrator)
	assert.Equal(t, def.Sources.Geodata.Keywords, cfg.Sources.Geodata.Keywords)
}
