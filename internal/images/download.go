// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/time/rate"

	"github.com/pdiddy/weapon-catalog/internal/fetch"
	"github.com/pdiddy/weapon-catalog/internal/httputil"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// maxImageBytes bounds a single download.
const maxImageBytes = 64 << 20

// Layout directories under the output directory.
const (
	ByGameDir     = "by_game"
	ByWeaponDir   = "by_weapon"
	ThumbnailsDir = "thumbnails"
)

// ErrTooSmall marks a download below the configured minimum size.
var ErrTooSmall = errors.New("image too small")

// Stats counts the outcome of image downloads.
type Stats struct {
	Processed  int   `json:"total_processed"`
	Downloaded int   `json:"successful_downloads"`
	Failed     int   `json:"failed_downloads"`
	Skipped    int   `json:"skipped"`
	Bytes      int64 `json:"total_size_bytes"`
}

// SuccessRate returns Downloaded as a percentage of Processed.
func (s Stats) SuccessRate() float64 {
	if s.Processed == 0 {
		return 0
	}
	return float64(s.Downloaded) / float64(s.Processed) * 100
}

// SizeMB returns the downloaded size in mebibytes.
func (s Stats) SizeMB() float64 {
	return float64(s.Bytes) / (1024 * 1024)
}

// Result is the outcome of Collect.
type Result struct {
	Stats Stats
	// Files maps "source|heading" to the image paths under by_game.
	Files map[string][]string
}

// Downloader fetches images one at a time, spacing requests by the
// configured delay. It accumulates Stats across calls and is not safe for
// concurrent use.
type Downloader struct {
	client  *http.Client
	cfg     types.ImageConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	stats   Stats
}

// Option configures a Downloader.
type Option func(*Downloader)

// WithLogger sets the logger used for per-image progress.
func WithLogger(l *slog.Logger) Option {
	return func(d *Downloader) {
		if l != nil {
			d.logger = l
		}
	}
}

// New builds a Downloader and creates the directory layout under
// cfg.OutputDir. A nil client gets one with cfg.Timeout.
func New(client *http.Client, cfg types.ImageConfig, opts ...Option) (*Downloader, error) {
	def := types.DefaultImageConfig()
	if cfg.OutputDir == "" {
		cfg.OutputDir = def.OutputDir
	}
	if cfg.MinBytes < 0 {
		cfg.MinBytes = 0
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	for _, dir := range []string{ByGameDir, ByWeaponDir, ThumbnailsDir} {
		if err := os.MkdirAll(filepath.Join(cfg.OutputDir, dir), 0o755); err != nil {
			return nil, fmt.Errorf("creating image directory: %w", err)
		}
	}
	limit := rate.Inf
	if cfg.RequestDelay > 0 {
		limit = rate.Every(cfg.RequestDelay)
	}
	d := &Downloader{
		client:  client,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Stats returns the counts accumulated so far.
func (d *Downloader) Stats() Stats {
	return d.stats
}

// Dir returns the output directory.
func (d *Downloader) Dir() string {
	return d.cfg.OutputDir
}

// Collect discovers and downloads the images of every entry. The heading of
// each entry is looked up in its source page within [minLevel, maxLevel];
// entries whose page or heading is missing are skipped. Only a cancelled
// context is an error.
func (d *Downloader) Collect(ctx context.Context, pages []fetch.Page, entries []types.Entry, minLevel, maxLevel int) (Result, error) {
	byID := make(map[string]fetch.Page, len(pages))
	for _, p := range pages {
		byID[p.Source.ID] = p
	}

	res := Result{Files: make(map[string][]string)}
	for _, e := range entries {
		page, ok := byID[e.SourceID]
		if !ok || e.HeadingName == "" {
			continue
		}
		i, found := page.Document.FindHeading(e.HeadingName, minLevel, maxLevel)
		if !found {
			d.logger.Debug("no heading for entry", "source", e.SourceID, "heading", e.HeadingName)
			continue
		}
		base, _ := url.Parse(page.Source.URL)
		urls := Discover(page.Document, i, base)
		if len(urls) == 0 {
			continue
		}
		files, err := d.Download(ctx, e, page.Source.URL, urls)
		if len(files) > 0 {
			key := e.SourceID + "|" + e.HeadingName
			res.Files[key] = append(res.Files[key], files...)
		}
		if err != nil {
			res.Stats = d.stats
			return res, err
		}
	}
	res.Stats = d.stats
	return res, nil
}

// Download saves urls for one entry as <weapon>_<n><ext> under
// by_game/<source>/ and copies each file to by_weapon/<weapon>/. Files that
// already exist are skipped. Failed images are counted and logged; only a
// cancelled context stops the loop and is returned.
func (d *Downloader) Download(ctx context.Context, e types.Entry, referer string, urls []string) ([]string, error) {
	weapon := e.RealWorldName
	if weapon == "" {
		weapon = e.HeadingName
	}
	safeWeapon := SanitizeName(weapon)
	gameDir := filepath.Join(d.cfg.OutputDir, ByGameDir, SanitizeName(e.SourceID))
	weaponDir := filepath.Join(d.cfg.OutputDir, ByWeaponDir, safeWeapon)
	for _, dir := range []string{gameDir, weaponDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating image directory: %w", err)
		}
	}

	var files []string
	for idx, u := range urls {
		if err := ctx.Err(); err != nil {
			return files, err
		}
		d.stats.Processed++
		name := fmt.Sprintf("%s_%d%s", safeWeapon, idx+1, Extension(u))
		gamePath := filepath.Join(gameDir, name)

		if _, err := os.Stat(gamePath); err == nil {
			d.logger.Debug("image exists", "path", gamePath)
			d.stats.Skipped++
			files = append(files, gamePath)
			continue
		}

		n, err := d.fetchImage(ctx, u, referer, gamePath)
		if err != nil {
			if ctx.Err() != nil {
				return files, ctx.Err()
			}
			d.logger.Warn("image download failed", "url", u, "error", err)
			d.stats.Failed++
			continue
		}
		if err := copyFile(gamePath, filepath.Join(weaponDir, name)); err != nil {
			d.logger.Warn("copying image", "path", gamePath, "error", err)
		}
		d.stats.Downloaded++
		d.stats.Bytes += n
		files = append(files, gamePath)
		d.logger.Info("downloaded image", "file", name, "kb", fmt.Sprintf("%.1f", float64(n)/1024))
	}
	return files, nil
}

func (d *Downloader) fetchImage(ctx context.Context, rawURL, referer, path string) (int64, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit wait: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "image/webp,image/apng,image/*,*/*;q=0.8")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := httputil.DoWithRetry(ctx, d.client, req, httputil.RetryOptions{
		MaxAttempts: d.cfg.MaxRetries,
		BaseDelay:   d.cfg.RequestDelay,
		UserAgents:  d.cfg.UserAgents,
	})
	if err != nil {
		return 0, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("HTTP %d from %s", resp.StatusCode, rawURL)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".image-*.tmp")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}
	n, copyErr := io.Copy(tmp, io.LimitReader(resp.Body, maxImageBytes))
	closeErr := tmp.Close()
	switch {
	case copyErr != nil:
		err = fmt.Errorf("reading %s: %w", rawURL, copyErr)
	case closeErr != nil:
		err = fmt.Errorf("closing temp file: %w", closeErr)
	case n < d.cfg.MinBytes:
		err = fmt.Errorf("%w: %d bytes from %s", ErrTooSmall, n, rawURL)
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return 0, err
	}
	return n, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

var (
	unsafeChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	separators  = regexp.MustCompile(`[_\s]+`)
)

// maxNameRunes bounds sanitized file and directory names.
const maxNameRunes = 100

// SanitizeName turns a weapon or source name into a file-system-safe name:
// reserved characters become underscores, runs of whitespace and
// underscores collapse to one underscore, and the result is cut to 100
// characters. An empty result becomes "unknown".
func SanitizeName(name string) string {
	s := unsafeChars.ReplaceAllString(name, "_")
	s = separators.ReplaceAllString(s, "_")
	if r := []rune(s); len(r) > maxNameRunes {
		s = string(r[:maxNameRunes])
	}
	s = strings.Trim(s, "_")
	if s == "" || s == "." || s == ".." {
		return "unknown"
	}
	return s
}

var knownExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp"}

// Extension returns the image extension named in the URL path, or ".jpg".
func Extension(rawURL string) string {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	path = strings.ToLower(path)
	for _, ext := range knownExts {
		if strings.Contains(path, ext) {
			return ext
		}
	}
	return ".jpg"
}
