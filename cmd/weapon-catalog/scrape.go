// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/weapon-catalog/internal/export"
	"github.com/pdiddy/weapon-catalog/internal/pipeline"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape [source-ids...]",
	Short: "Fetch game pages, extract weapons, deduplicate, and export",
	Long: `Scrape fetches each configured IMFDB page (or only the named source ids),
extracts one entry per weapon heading, optionally deduplicates the combined
list, and writes the catalog to the output directory. With --db the result
is also stored in the SQLite catalog. With --download-images the pictures
under each weapon heading are saved to the image directory.

Configured sources: run "weapon-catalog scrape --list" to see them.`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("method", "", "extraction traversal: content or index")
	f.Bool("dedup", false, "deduplicate the combined entry list")
	f.Bool("no-dedup", false, "disable deduplication (overrides --dedup and config)")
	f.String("dedup-strategy", "", "dedup strategy: exact, fuzzy, or comprehensive")
	f.String("output", "", "output directory (default output)")
	f.StringSlice("format", nil, "export formats: csv, json, yaml, markdown, all")
	f.Duration("delay", 0, "delay between page requests (default 2s)")
	f.Int("max-retries", 0, "attempts per page (default 3)")
	f.String("db", "", "SQLite catalog to store the result in")
	f.Bool("download-images", false, "download weapon images")
	f.String("image-dir", "", "directory for weapon images (default images)")
	f.Duration("image-delay", 0, "delay between image downloads (default 1s)")
	f.Bool("summary", true, "print extraction statistics")
	f.Bool("list", false, "list configured sources and exit")

	viper.BindPFlag("extraction.strategy", f.Lookup("method"))
	viper.BindPFlag("dedup.enabled", f.Lookup("dedup"))
	viper.BindPFlag("dedup.strategy", f.Lookup("dedup-strategy"))
	viper.BindPFlag("export.output_dir", f.Lookup("output"))
	viper.BindPFlag("export.formats", f.Lookup("format"))
	viper.BindPFlag("fetch.request_delay", f.Lookup("delay"))
	viper.BindPFlag("fetch.max_retries", f.Lookup("max-retries"))
	viper.BindPFlag("catalog.path", f.Lookup("db"))
	viper.BindPFlag("images.enabled", f.Lookup("download-images"))
	viper.BindPFlag("images.output_dir", f.Lookup("image-dir"))
	viper.BindPFlag("images.request_delay", f.Lookup("image-delay"))

	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	if list, _ := cmd.Flags().GetBool("list"); list {
		for _, s := range pipelineCfg.Sources {
			fmt.Printf("%-20s %s\n", s.ID, s.URL)
		}
		return nil
	}

	cfg := pipelineCfg
	if noDedup, _ := cmd.Flags().GetBool("no-dedup"); noDedup {
		cfg.Dedup.Enabled = false
	}

	dedupState := "disabled"
	if cfg.Dedup.Enabled {
		dedupState = "enabled (" + string(cfg.Dedup.Strategy) + ")"
	}
	fmt.Printf("Extraction: %s\n", cfg.Extraction.Strategy)
	fmt.Printf("Deduplication: %s\n", dedupState)
	imageState := "disabled"
	if cfg.Images.Enabled {
		imageState = "enabled (" + cfg.Images.OutputDir + ")"
	}
	fmt.Printf("Output: %s (%s)\n", cfg.Export.OutputDir, formatList(cfg))
	fmt.Printf("Images: %s\n\n", imageState)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.New(cfg, nil, os.Stdout, logger).Run(ctx, args)
	if err != nil {
		return err
	}

	if res.Report != "" {
		fmt.Println()
		fmt.Println(res.Report)
	}
	if res.ImageReport != "" {
		fmt.Println()
		fmt.Println(res.ImageReport)
	}
	if summary, _ := cmd.Flags().GetBool("summary"); summary {
		fmt.Println()
		export.WriteSummary(os.Stdout, res.Final)
	}
	if res.Fetch.HasFailures() {
		return fmt.Errorf("%d source(s) failed to fetch", res.Fetch.Failed)
	}
	return nil
}

func formatList(cfg types.PipelineConfig) string {
	names := make([]string, len(cfg.Export.Formats))
	for i, f := range cfg.Export.Formats {
		names[i] = string(f)
	}
	return strings.Join(names, ", ")
}
