// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weapon-catalog/internal/dedup"
	"github.com/pdiddy/weapon-catalog/internal/export"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <entries.json|entries.yaml>...",
	Short: "Deduplicate previously exported entry lists",
	Long: `Dedup reads one or more JSON or YAML exports, concatenates them in
argument order, runs the chosen strategy over the combined list, and prints
the deduplication report. With --export the surviving entries and the report
are written to the output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDedup,
}

func init() {
	dedupCmd.Flags().String("strategy", "", "exact, fuzzy, or comprehensive (default from config)")
	dedupCmd.Flags().Float64("name-threshold", 0, "sequence-similarity threshold (default 0.85)")
	dedupCmd.Flags().Float64("partial-threshold", 0, "containment length-ratio threshold (default 0.90)")
	dedupCmd.Flags().Bool("export", false, "write surviving entries and the report to the output directory")
	dedupCmd.Flags().Bool("json", false, "print statistics as JSON instead of the report")

	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	cfg := pipelineCfg.Dedup
	if s, _ := cmd.Flags().GetString("strategy"); s != "" {
		cfg.Strategy = types.DedupStrategy(s)
	}
	if v, _ := cmd.Flags().GetFloat64("name-threshold"); v > 0 {
		cfg.NameThreshold = v
	}
	if v, _ := cmd.Flags().GetFloat64("partial-threshold"); v > 0 {
		cfg.PartialThreshold = v
	}
	strategy, err := types.ParseDedupStrategy(string(cfg.Strategy))
	if err != nil {
		return err
	}

	var entries []types.Entry
	for _, path := range args {
		loaded, err := export.ReadFile(path)
		if err != nil {
			return err
		}
		entries = append(entries, loaded...)
	}

	d := dedup.New(cfg, dedup.WithLogger(logger))
	unique, stats, err := d.Deduplicate(entries, strategy)
	if err != nil {
		return err
	}
	report := dedup.RenderReport(entries, unique, stats)

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(stats); err != nil {
			return err
		}
	} else {
		fmt.Println(report)
	}

	if doExport, _ := cmd.Flags().GetBool("export"); doExport {
		w, err := export.NewWriter(pipelineCfg.Export, logger)
		if err != nil {
			return err
		}
		paths, err := w.WriteAll(unique)
		if err != nil {
			return err
		}
		reportPath, err := w.WriteReport(report)
		if err != nil {
			return err
		}
		for _, p := range append(paths, reportPath) {
			fmt.Fprintf(os.Stderr, "saved: %s\n", p)
		}
	}
	return nil
}
