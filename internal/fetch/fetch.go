// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves wiki pages and parses them into documents.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/pdiddy/weapon-catalog/internal/document"
	"github.com/pdiddy/weapon-catalog/internal/httputil"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// maxPageBytes bounds how much of a response body is parsed.
const maxPageBytes = 32 << 20

// Page is one fetched and parsed source.
type Page struct {
	Source   types.Source
	Document *document.Document
}

// Failure records a source that could not be fetched or parsed.
type Failure struct {
	Source types.Source
	Err    error
}

// BatchResult holds the outcome of a batch fetch run.
type BatchResult struct {
	Fetched  int
	Failed   int
	Pages    []Page
	Failures []Failure
}

// Total returns the number of sources processed.
func (r BatchResult) Total() int {
	return r.Fetched + r.Failed
}

// HasFailures reports whether any source failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Fetcher retrieves pages one at a time, spacing requests by the configured
// delay.
type Fetcher struct {
	client  *http.Client
	cfg     types.FetchConfig
	limiter *rate.Limiter
	logger  *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the logger used for retry and timing detail.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// New builds a Fetcher. A nil client gets one with cfg.Timeout.
func New(client *http.Client, cfg types.FetchConfig, opts ...Option) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	f := &Fetcher{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch retrieves and parses a single page.
func (f *Fetcher) Fetch(ctx context.Context, src types.Source) (*document.Document, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	f.logger.Debug("requesting page", "source", src.ID, "url", src.URL)
	resp, err := httputil.DoWithRetry(ctx, f.client, req, httputil.RetryOptions{
		MaxAttempts: f.cfg.MaxRetries,
		BaseDelay:   f.cfg.RequestDelay,
		UserAgents:  f.cfg.UserAgents,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", src.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, src.URL)
	}

	doc, err := document.Parse(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", src.ID, err)
	}
	return doc, nil
}

// FetchBatch fetches every source in order, printing per-source status and
// a summary to w. It continues after individual failures. A cancelled
// context stops the batch; the sources not yet attempted are not counted.
func (f *Fetcher) FetchBatch(ctx context.Context, sources []types.Source, w io.Writer) BatchResult {
	var result BatchResult
	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(w, "fetching: %s\n", src.ID)
		doc, err := f.Fetch(ctx, src)
		if err != nil {
			fmt.Fprintf(w, "failed:   %s (%v)\n", src.ID, err)
			result.Failed++
			result.Failures = append(result.Failures, Failure{Source: src, Err: err})
			continue
		}
		fmt.Fprintf(w, "fetched:  %s (%d headings)\n", src.ID, len(doc.Headings()))
		result.Fetched++
		result.Pages = append(result.Pages, Page{Source: src, Document: doc})
	}
	fmt.Fprintf(w, "\nFetch summary: %d fetched, %d failed (total: %d)\n",
		result.Fetched, result.Failed, result.Total())
	return result
}

// SelectSources returns the configured sources named by ids, in ids order.
// An empty ids selects every configured source. Unknown ids are an error.
func SelectSources(configured []types.Source, ids []string) ([]types.Source, error) {
	if len(ids) == 0 {
		return configured, nil
	}
	byID := make(map[string]types.Source, len(configured))
	for _, s := range configured {
		byID[s.ID] = s
	}
	out := make([]types.Source, 0, len(ids))
	for _, id := range ids {
		s, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", id)
		}
		out = append(out, s)
	}
	return out, nil
}
