// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/votewallet/internal/logo"
	"github.com/pdiddy/votewallet/internal/store"
	"github.com/pdiddy/votewallet/pkg/types"
)

var logosCmd = &cobra.Command{
	Use:   "logos [companies...]",
	Short: "Download company logos from Wikipedia",
	Long: `Logos looks up each company's Wikipedia page, picks the PNG and SVG files
that look like logos, and downloads them unmodified into one folder per
company under logo.dir. With --all, every cataloged business without a
logo is processed and the first downloaded file is recorded on it.`,
	RunE: runLogos,
}

func init() {
	logosCmd.Flags().Bool("all", false, "process cataloged businesses without a logo")
	logosCmd.Flags().String("state", "", "with --all, only this state")
	logosCmd.Flags().Int("limit", 0, "with --all, maximum businesses")
	logosCmd.Flags().String("dir", "", "output directory (overrides logo.dir)")

	rootCmd.AddCommand(logosCmd)
}

func runLogos(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg
	all, _ := cmd.Flags().GetBool("all")
	state, _ := cmd.Flags().GetString("state")
	limit, _ := cmd.Flags().GetInt("limit")
	if dir, _ := cmd.Flags().GetString("dir"); dir != "" {
		cfg.Logo.Dir = dir
	}
	if !all && len(args) == 0 {
		return fmt.Errorf("provide one or more company names or --all")
	}

	ctx, stop := signalContext()
	defer stop()
	finder := logo.NewFinder(newClient(cfg), logger)

	var stats logo.Stats
	var err error
	if all {
		gw, openErr := openStore(cfg, false)
		if openErr != nil {
			return openErr
		}
		defer gw.Close()

		businesses, listErr := store.All(gw.ListBusinesses(ctx, types.BusinessFilter{State: state}))
		if listErr != nil {
			return listErr
		}
		var todo []types.CanonicalBusiness
		for _, b := range businesses {
			if b.LogoPath == "" && (limit <= 0 || len(todo) < limit) {
				todo = append(todo, b)
			}
		}
		stats, err = logo.NewFetcher(finder, gw, cfg.Logo, logger).Run(ctx, todo)
	} else {
		stats, err = logo.NewFetcher(finder, nil, cfg.Logo, logger).RunNames(ctx, args)
	}
	logo.FormatSummary(stats, os.Stdout)
	return err
}
