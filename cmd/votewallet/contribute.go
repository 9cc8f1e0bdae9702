// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/votewallet/internal/cache"
	"github.com/pdiddy/votewallet/internal/contrib"
	"github.com/pdiddy/votewallet/pkg/types"
)

var contributeCmd = &cobra.Command{
	Use:   "contribute",
	Short: "Record a user's alignment estimate for a business",
	Long: `Contribute stores one user's alignment estimate for a business, replacing
any earlier estimate by the same user, and recomputes the business's
canonical vector from all current submissions. The contrib.policy setting
decides whether the community mean replaces the evidence vector
(overwrite) or is blended with it (blend).`,
	RunE: runContribute,
}

func init() {
	contributeCmd.Flags().String("user", "", "submitting user id")
	contributeCmd.Flags().String("business", "", "business id (or use --name/--city/--state)")
	contributeCmd.Flags().String("name", "", "business name")
	contributeCmd.Flags().String("city", "", "business city")
	contributeCmd.Flags().String("state", "", "business state")
	for _, l := range types.Leans {
		contributeCmd.Flags().Float64(string(l), 0, fmt.Sprintf("%s axis, 0-10", l))
	}
	contributeCmd.Flags().Float64("confidence", 0.5, "submission confidence, 0-1")
	contributeCmd.Flags().Bool("json", false, "output the stored record as JSON")

	rootCmd.AddCommand(contributeCmd)
}

func runContribute(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg
	user, _ := cmd.Flags().GetString("user")
	businessID, _ := cmd.Flags().GetString("business")
	name, _ := cmd.Flags().GetString("name")
	city, _ := cmd.Flags().GetString("city")
	state, _ := cmd.Flags().GetString("state")
	confidence, _ := cmd.Flags().GetFloat64("confidence")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	var vec types.AlignmentVector
	for _, l := range types.Leans {
		x, _ := cmd.Flags().GetFloat64(string(l))
		vec = vec.With(l, x)
	}

	gw, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer gw.Close()

	ctx, stop := signalContext()
	defer stop()

	b := types.CanonicalBusiness{ID: businessID}
	if businessID == "" {
		if name == "" {
			return fmt.Errorf("provide --business or --name with --city and --state")
		}
		if b, err = gw.FindByIdentity(ctx, name, city, state); err != nil {
			return fmt.Errorf("finding %q in %s, %s: %w", name, city, state, err)
		}
	}

	agg := contrib.New(gw, cfg.Contrib, logger)
	if agg.Cache, err = cache.New[types.AlignmentRecord](cfg.Cache, logger); err != nil {
		return err
	}
	agg.TTL = cfg.Cache.TTL

	rec, err := agg.Submit(ctx, types.UserAlignmentSubmission{
		UserID:     user,
		BusinessID: b.ID,
		Vector:     vec,
		Confidence: confidence,
	})
	if err != nil {
		return err
	}
	if jsonOutput {
		return writeJSON(os.Stdout, rec)
	}
	if b.Name == "" {
		if b, err = gw.GetBusiness(ctx, b.ID); err != nil {
			return err
		}
	}
	printAlignment(os.Stdout, b, rec)
	return nil
}
