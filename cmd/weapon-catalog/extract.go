// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/weapon-catalog/internal/document"
	"github.com/pdiddy/weapon-catalog/internal/export"
	"github.com/pdiddy/weapon-catalog/internal/extract"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <page.html>",
	Short: "Extract weapon entries from a saved HTML page",
	Long: `Extract parses a locally saved wiki page and prints one row per weapon
entry. The source id defaults to the file name without extension.

With --export the entries are written to the output directory instead, in
the configured formats.`,
	Args: cobra.ExactArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().String("source", "", "source id for the entries (default: file name)")
	extractCmd.Flags().String("method", "", "extraction traversal: content or index")
	extractCmd.Flags().String("format", "markdown", "stdout format: csv, json, yaml, markdown")
	extractCmd.Flags().Bool("export", false, "write entries to the output directory")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	path := args[0]
	sourceID, _ := cmd.Flags().GetString("source")
	if sourceID == "" {
		sourceID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	cfg := pipelineCfg.Extraction
	if method, _ := cmd.Flags().GetString("method"); method != "" {
		cfg.Strategy = types.ExtractStrategy(method)
	}
	strategy, err := types.ParseExtractStrategy(string(cfg.Strategy))
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	doc, err := document.Parse(f)
	if err != nil {
		return err
	}

	x, err := extract.New(cfg, extract.WithLogger(logger))
	if err != nil {
		return err
	}
	entries, err := x.Extract(doc, sourceID, strategy)
	if err != nil {
		return err
	}

	if doExport, _ := cmd.Flags().GetBool("export"); doExport {
		w, err := export.NewWriter(pipelineCfg.Export, logger)
		if err != nil {
			return err
		}
		paths, err := w.WriteAll(entries)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("saved: %s\n", p)
		}
		return nil
	}

	format, _ := cmd.Flags().GetString("format")
	formats, err := export.ParseFormats([]string{format})
	if err != nil {
		return err
	}
	if len(formats) != 1 {
		return fmt.Errorf("choose a single stdout format, not %q", format)
	}
	return export.Encode(os.Stdout, formats[0], entries)
}
