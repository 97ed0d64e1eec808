// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the scrape flow: fetch every source, extract its
// entries, deduplicate the combined list, export it, and optionally store it
// in the catalog and download the weapon images.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pdiddy/weapon-catalog/internal/catalog"
	"github.com/pdiddy/weapon-catalog/internal/dedup"
	"github.com/pdiddy/weapon-catalog/internal/export"
	"github.com/pdiddy/weapon-catalog/internal/extract"
	"github.com/pdiddy/weapon-catalog/internal/fetch"
	"github.com/pdiddy/weapon-catalog/internal/images"
	"github.com/pdiddy/weapon-catalog/internal/logging"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// Result summarizes one run.
type Result struct {
	Fetch     fetch.BatchResult
	Extracted []types.Entry
	Final     []types.Entry

	// Stats and Report are set only when deduplication ran.
	Stats  *types.DedupStats
	Report string

	Exported []string
	Stored   int

	// Images and ImageReport are set only when image download ran.
	Images      *images.Result
	ImageReport string
}

// Runner holds the collaborators of a run.
type Runner struct {
	cfg    types.PipelineConfig
	client *http.Client
	out    io.Writer
	logger *slog.Logger
}

// New builds a Runner. A nil client is created by the fetcher; a nil out
// discards progress lines.
func New(cfg types.PipelineConfig, client *http.Client, out io.Writer, logger *slog.Logger) *Runner {
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{cfg: cfg, client: client, out: out, logger: logger}
}

// Run scrapes the given source ids (all configured sources when empty).
// Sources that fail to fetch are reported and skipped; the run fails only
// if every source fails, on a configuration, export, or store error, or
// when the context is cancelled.
func (r *Runner) Run(ctx context.Context, sourceIDs []string) (Result, error) {
	var res Result

	sources, err := fetch.SelectSources(r.cfg.Sources, sourceIDs)
	if err != nil {
		return res, err
	}
	if len(sources) == 0 {
		return res, fmt.Errorf("no sources configured")
	}

	strategy, err := types.ParseExtractStrategy(string(r.cfg.Extraction.Strategy))
	if err != nil {
		return res, err
	}
	var dedupStrategy types.DedupStrategy
	if r.cfg.Dedup.Enabled {
		if dedupStrategy, err = types.ParseDedupStrategy(string(r.cfg.Dedup.Strategy)); err != nil {
			return res, err
		}
	}
	extractor, err := extract.New(r.cfg.Extraction, extract.WithLogger(r.logger))
	if err != nil {
		return res, err
	}
	writer, err := export.NewWriter(r.cfg.Export, r.logger)
	if err != nil {
		return res, err
	}

	fetcher := fetch.New(r.client, r.cfg.Fetch, fetch.WithLogger(r.logger))
	res.Fetch = fetcher.FetchBatch(ctx, sources, r.out)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.Fetch.Fetched == 0 {
		return res, fmt.Errorf("all %d source(s) failed to fetch", res.Fetch.Total())
	}

	for _, page := range res.Fetch.Pages {
		entries, err := extractor.Extract(page.Document, page.Source.ID, strategy)
		if err != nil {
			return res, fmt.Errorf("extracting %s: %w", page.Source.ID, err)
		}
		fmt.Fprintf(r.out, "extracted: %s (%d entries)\n", page.Source.ID, len(entries))
		res.Extracted = append(res.Extracted, entries...)
	}
	res.Final = res.Extracted

	if r.cfg.Dedup.Enabled {
		d := dedup.New(r.cfg.Dedup, dedup.WithLogger(r.logger))
		unique, stats, err := d.Deduplicate(res.Extracted, dedupStrategy)
		if err != nil {
			return res, err
		}
		res.Final = unique
		res.Stats = &stats
		res.Report = dedup.RenderReport(res.Extracted, unique, stats)
		fmt.Fprintf(r.out, "deduplicated: removed %d, %d unique (%s)\n",
			stats.DuplicatesRemoved, stats.UniqueCount, stats.Strategy)
	}

	if res.Exported, err = writer.WriteAll(res.Final); err != nil {
		return res, err
	}
	for _, p := range res.Exported {
		fmt.Fprintf(r.out, "saved: %s\n", p)
	}
	if res.Report != "" {
		p, err := writer.WriteReport(res.Report)
		if err != nil {
			return res, err
		}
		fmt.Fprintf(r.out, "saved: %s\n", p)
	}

	if r.cfg.Catalog.Path != "" {
		store, err := catalog.Open(r.cfg.Catalog)
		if err != nil {
			return res, err
		}
		defer store.Close()
		summary, err := store.Save(ctx, res.Final)
		if err != nil {
			return res, err
		}
		res.Stored = summary.Total()
		fmt.Fprintf(r.out, "stored: %d entries in %s\n", res.Stored, r.cfg.Catalog.Path)
	}

	if r.cfg.Images.Enabled {
		if err := r.downloadImages(ctx, &res); err != nil {
			return res, err
		}
	}

	return res, nil
}

// downloadImages fetches the images under each final entry's heading and
// writes the image report.
func (r *Runner) downloadImages(ctx context.Context, res *Result) error {
	d, err := images.New(r.client, r.cfg.Images, images.WithLogger(r.logger))
	if err != nil {
		return err
	}
	def := types.DefaultExtractionConfig()
	minLevel, maxLevel := r.cfg.Extraction.MinEntryLevel, r.cfg.Extraction.MaxEntryLevel
	if minLevel <= 0 {
		minLevel = def.MinEntryLevel
	}
	if maxLevel <= 0 {
		maxLevel = def.MaxEntryLevel
	}

	fmt.Fprintf(r.out, "downloading images to %s\n", d.Dir())
	got, err := d.Collect(ctx, res.Fetch.Pages, res.Final, minLevel, maxLevel)
	res.Images = &got
	if err != nil {
		return err
	}
	st := got.Stats
	fmt.Fprintf(r.out, "images: %d downloaded, %d skipped, %d failed (%.2f MB)\n",
		st.Downloaded, st.Skipped, st.Failed, st.SizeMB())

	report, path, err := d.WriteReport()
	if err != nil {
		return err
	}
	res.ImageReport = report
	fmt.Fprintf(r.out, "saved: %s\n", path)
	return nil
}
