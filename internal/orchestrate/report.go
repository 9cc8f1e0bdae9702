// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orchestrate

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/votewallet/pkg/types"
)

// FormatTable writes a per-target summary of report to w.
func FormatTable(report types.RunReport, w io.Writer) {
	fmt.Fprintf(w, "%-4s  %-6s  %-20s  %6s  %9s  %9s  %7s  %6s  %7s\n",
		"Tier", "State", "Name", "Target", "Collected", "Processed", "Success", "Failed", "Skipped")
	fmt.Fprintln(w, strings.Repeat("-", 90))

	for _, tier := range report.Tiers {
		for _, s := range tier.States {
			name := s.Name
			if len(name) > 20 {
				name = name[:17] + "..."
			}
			fmt.Fprintf(w, "%-4d  %-6s  %-20s  %6d  %9d  %9d  %7d  %6d  %7d\n",
				s.Tier, s.State, name, s.Target, s.Collected, s.Processed, s.Success, s.Failed, s.Skipped)
		}
		fmt.Fprintf(w, "tier %d: %d/%d processed, %d succeeded\n",
			tier.Tier, tier.TotalActual, tier.TotalTarget, tier.TotalSuccess)
	}

	fmt.Fprintf(w, "\nRun %s: %d/%d processed, %d succeeded, %d failed",
		report.State, report.TotalActual, report.TotalTarget, report.TotalSuccess, report.TotalFailed)
	if !report.FinishedAt.IsZero() && !report.StartedAt.IsZero() {
		fmt.Fprintf(w, " in %s", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	}
	fmt.Fprintln(w)
	if n := len(report.Errors); n > 0 {
		fmt.Fprintf(w, "%d errors (use --json for details)\n", n)
	}
}

// FormatJSON writes report as indented JSON to w.
func FormatJSON(report types.RunReport, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// FormatYAML writes report as YAML to w.
func FormatYAML(report types.RunReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(report); err != nil {
		return err
	}
	return enc.Close()
}
