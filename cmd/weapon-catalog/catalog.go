// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/pdiddy/weapon-catalog/internal/catalog"
	"github.com/pdiddy/weapon-catalog/internal/export"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Query the SQLite weapon catalog (sources, list, find)",
	Long: `Catalog reads the SQLite database written by "scrape --db". Use
subcommands to list stored sources, dump a source's entries, or look up a
weapon by any of its names.`,
}

// --- sources subcommand ---

var catalogSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List stored sources with entry counts",
	RunE:  runCatalogSources,
}

func runCatalogSources(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sources, err := store.Sources(context.Background())
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("Catalog is empty.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Entries", "Updated"})
	for _, s := range sources {
		tw.AppendRow(table.Row{s.SourceID, s.Entries, s.UpdatedAt})
	}
	fmt.Println(tw.Render())
	return nil
}

// --- list subcommand ---

var catalogListCmd = &cobra.Command{
	Use:   "list [source-id]",
	Short: "Print stored entries, optionally for one source",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCatalogList,
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	sourceID := ""
	if len(args) == 1 {
		sourceID = args[0]
	}
	entries, err := store.List(context.Background(), sourceID)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	formats, err := export.ParseFormats([]string{format})
	if err != nil {
		return err
	}
	if len(formats) != 1 {
		return fmt.Errorf("choose a single format, not %q", format)
	}
	return export.Encode(os.Stdout, formats[0], entries)
}

// --- find subcommand ---

var catalogFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Fuzzy-find entries by heading, real-world, or in-game name",
	Long: `Find ranks stored entries by how closely one of their names matches the
query. The query's characters must appear in order in a name; closer names
rank first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCatalogFind,
}

func runCatalogFind(cmd *cobra.Command, args []string) error {
	store, err := openCatalog(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	limit, _ := cmd.Flags().GetInt("limit")
	matches, err := store.Find(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(matches)
	}

	if len(matches) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Rank", "Source", "Heading", "Real-world", "In-game", "Distance"})
	for i, m := range matches {
		tw.AppendRow(table.Row{i + 1, m.SourceID, m.HeadingName, m.RealWorldName, m.InFictionName, strconv.Itoa(m.Distance)})
	}
	fmt.Println(tw.Render())
	fmt.Printf("\n%d results\n", len(matches))
	return nil
}

// --- shared helpers ---

func openCatalog(cmd *cobra.Command) (*catalog.Store, error) {
	cfg := pipelineCfg.Catalog
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Path = db
	}
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path required: pass --db or set catalog.path")
	}
	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", cfg.Path, err)
	}
	return catalog.Open(types.CatalogConfig{Path: cfg.Path, MaxResults: cfg.MaxResults})
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	catalogCmd.PersistentFlags().String("db", "", "SQLite catalog path (default from config)")

	catalogListCmd.Flags().String("format", "markdown", "output format: csv, json, yaml, markdown")

	catalogFindCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	catalogFindCmd.Flags().Bool("json", false, "output results as JSON")

	// Wire subcommands.
	catalogCmd.AddCommand(catalogSourcesCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogFindCmd)

	rootCmd.AddCommand(catalogCmd)
}
