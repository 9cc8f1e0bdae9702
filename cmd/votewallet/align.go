// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/votewallet/internal/store"
	"github.com/pdiddy/votewallet/pkg/types"
)

var alignCmd = &cobra.Command{
	Use:   "align",
	Short: "Score businesses on the five alignment axes",
	Long: `Align gathers donation and statement evidence for a business, stores it,
and computes its alignment vector. Recent results are served from the
alignment cache. Use --all to align every stored business matching the
filters.`,
	RunE: runAlign,
}

func init() {
	alignCmd.Flags().String("name", "", "business name")
	alignCmd.Flags().String("city", "", "business city")
	alignCmd.Flags().String("state", "", "business state")
	alignCmd.Flags().Bool("all", false, "align every business matching --state/--city")
	alignCmd.Flags().Int("limit", 0, "maximum businesses to align with --all")
	alignCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(alignCmd)
}

func runAlign(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg
	name, _ := cmd.Flags().GetString("name")
	city, _ := cmd.Flags().GetString("city")
	state, _ := cmd.Flags().GetString("state")
	all, _ := cmd.Flags().GetBool("all")
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if !all && name == "" {
		return fmt.Errorf("provide --name (with --city and --state) or --all")
	}

	gw, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer gw.Close()
	svc, err := newAlignmentService(cfg, gw)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	if all {
		businesses, err := store.All(gw.ListBusinesses(ctx, types.BusinessFilter{State: state, City: city, Limit: limit}))
		if err != nil {
			return err
		}
		summary, err := svc.AlignAll(ctx, businesses)
		if jsonOutput {
			if encErr := writeJSON(os.Stdout, summary); encErr != nil {
				return encErr
			}
		} else {
			fmt.Printf("Aligned %d/%d businesses (%d without evidence, %d failed)\n",
				summary.Aligned, summary.Processed, summary.NoData, summary.Failed)
		}
		return err
	}

	b, err := gw.FindByIdentity(ctx, name, city, state)
	if err != nil {
		return fmt.Errorf("finding %q in %s, %s: %w", name, city, state, err)
	}
	rec, err := svc.Align(ctx, b)
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(os.Stdout, rec)
	}
	printAlignment(os.Stdout, b, rec)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printAlignment(w io.Writer, b types.CanonicalBusiness, rec types.AlignmentRecord) {
	fmt.Fprintf(w, "%s (%s, %s)\n", b.Name, b.City, b.State)
	for _, l := range types.Leans {
		fmt.Fprintf(w, "  %-13s %5.2f\n", l, rec.Vector.Get(l))
	}
	fmt.Fprintf(w, "  confidence    %5.2f  basis: %s  submissions: %d\n", rec.Confidence, rec.Basis, rec.SubmissionCount)
}
