// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/votewallet/internal/orchestrate"
	"github.com/pdiddy/votewallet/internal/source"
	"github.com/pdiddy/votewallet/pkg/types"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Collect businesses tier by tier into the catalog",
	Long: `Ingest runs every enabled source adapter over the tier table, in ascending
tier order, normalizing, deduplicating and storing the businesses found.
Each target's record quota caps what is requested from the sources.

Interrupting the run stops it between targets; businesses already stored
are kept and the partial report is printed.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int("tier", 0, "only run targets in this tier (1-4)")
	ingestCmd.Flags().String("states", "", "only run these states (comma-separated codes)")
	ingestCmd.Flags().String("tiers-file", "", "YAML tier table (overrides orchestrator.tiers_file)")
	ingestCmd.Flags().Bool("dry-run", false, "store into memory instead of the database")
	ingestCmd.Flags().Bool("json", false, "print the run report as JSON")
	ingestCmd.Flags().Bool("yaml", false, "print the run report as YAML")

	rootCmd.AddCommand(ingestCmd)
}

// tierTable resolves the targets: a tiers file, then configured tiers,
// then the built-in table.
func tierTable(cfg types.PipelineConfig, override string) ([]types.TierTarget, error) {
	path := cfg.Orchestrator.TiersFile
	if override != "" {
		path = override
	}
	switch {
	case path != "":
		return orchestrate.LoadTiers(path)
	case len(cfg.Tiers) > 0:
		return orchestrate.Canonical(cfg.Tiers), nil
	default:
		return orchestrate.DefaultTiers(), nil
	}
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg
	tier, _ := cmd.Flags().GetInt("tier")
	statesFlag, _ := cmd.Flags().GetString("states")
	tiersFile, _ := cmd.Flags().GetString("tiers-file")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	yamlOutput, _ := cmd.Flags().GetBool("yaml")

	targets, err := tierTable(cfg, tiersFile)
	if err != nil {
		return err
	}
	var states []string
	if statesFlag != "" {
		states = strings.Split(statesFlag, ",")
	}
	targets = orchestrate.Filter(targets, tier, states)
	if len(targets) == 0 {
		return fmt.Errorf("no tier targets match --tier=%d --states=%q", tier, statesFlag)
	}

	adapters, err := source.Adapters(newClient(cfg), cfg.Sources, logger)
	if err != nil {
		return err
	}
	gw, err := openStore(cfg, dryRun)
	if err != nil {
		return err
	}
	defer gw.Close()

	orch, err := orchestrate.New(adapters, gw, cfg.Orchestrator, logger)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()
	report, err := orch.Run(ctx, targets)
	if err != nil {
		return err
	}

	switch {
	case jsonOutput:
		return orchestrate.FormatJSON(report, os.Stdout)
	case yamlOutput:
		return orchestrate.FormatYAML(report, os.Stdout)
	default:
		orchestrate.FormatTable(report, os.Stdout)
	}
	if report.State == types.RunAborted {
		return fmt.Errorf("run aborted after %d of %d targets", countDone(report), len(targets))
	}
	return nil
}

func countDone(r types.RunReport) int {
	n := 0
	for _, t := range r.Tiers {
		n += len(t.States)
	}
	return n
}
