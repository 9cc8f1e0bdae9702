// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/votewallet/internal/store"
	"github.com/pdiddy/votewallet/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List businesses in the catalog",
	Long: `Catalog lists stored businesses ordered by state, city and name, with
their data quality score and, when computed, their dominant alignment axis.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().String("state", "", "filter by state")
	catalogCmd.Flags().String("city", "", "filter by city")
	catalogCmd.Flags().String("category", "", "filter by category")
	catalogCmd.Flags().Int("min-quality", 0, "minimum data quality score")
	catalogCmd.Flags().Int("limit", 100, "maximum number of businesses")
	catalogCmd.Flags().Bool("json", false, "output as JSON")

	rootCmd.AddCommand(catalogCmd)
}

// catalogEntry pairs a business with its stored alignment, if any.
type catalogEntry struct {
	types.CanonicalBusiness
	Alignment *types.AlignmentRecord `json:"alignment,omitempty"`
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg
	var f types.BusinessFilter
	f.State, _ = cmd.Flags().GetString("state")
	f.City, _ = cmd.Flags().GetString("city")
	f.Category, _ = cmd.Flags().GetString("category")
	f.MinQuality, _ = cmd.Flags().GetInt("min-quality")
	f.Limit, _ = cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	gw, err := openStore(cfg, false)
	if err != nil {
		return err
	}
	defer gw.Close()
	ctx, stop := signalContext()
	defer stop()

	businesses, err := store.All(gw.ListBusinesses(ctx, f))
	if err != nil {
		return err
	}
	entries := make([]catalogEntry, 0, len(businesses))
	for _, b := range businesses {
		e := catalogEntry{CanonicalBusiness: b}
		rec, err := gw.FindAlignment(ctx, b.ID)
		switch {
		case err == nil:
			e.Alignment = &rec
		case !errors.Is(err, store.ErrNotFound):
			return err
		}
		entries = append(entries, e)
	}

	if jsonOutput {
		return writeJSON(os.Stdout, entries)
	}
	formatCatalog(os.Stdout, entries)
	return nil
}

func formatCatalog(w io.Writer, entries []catalogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No businesses found.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-18s  %-5s  %-20s  %-7s  %s\n", "Name", "City", "State", "Category", "Quality", "Leans")
	fmt.Fprintln(w, strings.Repeat("-", 110))
	for _, e := range entries {
		name := e.Name
		if len(name) > 36 {
			name = name[:33] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-18s  %-5s  %-20s  %7d  %s\n", name, e.City, e.State, e.Category, e.DataQuality, dominant(e.Alignment))
	}
	fmt.Fprintf(w, "\n%d business(es)\n", len(entries))
}

// dominant names the strongest axis, or "-" when there is none.
func dominant(rec *types.AlignmentRecord) string {
	if rec == nil || rec.Vector.IsZero() {
		return "-"
	}
	best := types.Leans[0]
	for _, l := range types.Leans[1:] {
		if rec.Vector.Get(l) > rec.Vector.Get(best) {
			best = l
		}
	}
	return fmt.Sprintf("%s %.1f", best, rec.Vector.Get(best))
}
