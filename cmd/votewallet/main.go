// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the votewallet CLI.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/votewallet/internal/secrets"
	"github.com/pdiddy/votewallet/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// pipelineCfg is the resolved configuration: defaults, then the
	// config file and environment, then secrets for empty credentials.
	pipelineCfg types.PipelineConfig

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "votewallet",
	Short: "Business catalog aggregation and political alignment scoring",
	Long: `votewallet builds a deduplicated catalog of businesses from rate-limited
public sources and scores each business on five political alignment axes
from donation and statement evidence, blended with community submissions.

Each stage is a subcommand: ingest collects the catalog tier by tier, align
scores businesses, contribute records a user submission, catalog lists the
stored businesses and logos downloads company logos.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := types.DefaultPipelineConfig()
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("reading configuration: %w", err)
		}
		logger = newLogger(cfg.Log)

		s, err := secrets.Load(".secrets/", logger)
		if err != nil {
			return err
		}
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", "keys", keys)
		}
		secrets.Apply(s, &cfg)

		if err := cfg.Validate(); err != nil {
			return err
		}
		pipelineCfg = cfg
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./votewallet.yaml or ~/.config/votewallet/votewallet.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("store-dsn", "", "database DSN (overrides store.dsn)")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("store.dsn", rootCmd.PersistentFlags().Lookup("store-dsn"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("votewallet")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "votewallet"))
		}
	}

	viper.SetEnvPrefix("VOTEWALLET")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults("", reflect.ValueOf(types.DefaultPipelineConfig()))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setDefaults registers every leaf of v as a viper default, so
// VOTEWALLET_* variables reach Unmarshal for keys no config file names and
// unset flags do not blank the built-in values. Squashed embedded structs
// share their parent's prefix; slices of structs are file-only.
func setDefaults(prefix string, v reflect.Value) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if f.Anonymous && strings.Contains(opts, "squash") {
			setDefaults(prefix, v.Field(i))
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := name
		if prefix != "" {
			key = prefix + "." + name
		}
		switch {
		case f.Type.Kind() == reflect.Struct:
			setDefaults(key, v.Field(i))
		case f.Type.Kind() == reflect.Slice && f.Type.Elem().Kind() == reflect.Struct:
		default:
			viper.SetDefault(key, v.Field(i).Interface())
		}
	}
}

// newLogger builds the stderr logger described by cfg.
func newLogger(cfg types.LogConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
