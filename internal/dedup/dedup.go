// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dedup collapses duplicate catalog entries.
//
// Three strategies are available: exact key matching, pairwise fuzzy name
// similarity, and a comprehensive pipeline that runs exact, then fuzzy, then
// a content-fingerprint pass, each on the survivors of the previous one.
// Every pass keeps the first entry of a duplicate group and preserves input
// order.
package dedup

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// Deduplicator runs deduplication passes with fixed similarity thresholds.
// It holds no per-run state and is safe for concurrent use.
type Deduplicator struct {
	nameThreshold    float64
	partialThreshold float64
	logger           *slog.Logger
}

// Option configures a Deduplicator.
type Option func(*Deduplicator)

// WithLogger sets the logger used for per-duplicate debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(d *Deduplicator) {
		if l != nil {
			d.logger = l
		}
	}
}

// New builds a Deduplicator. Non-positive thresholds take the defaults from
// types.DefaultDedupConfig.
func New(cfg types.DedupConfig, opts ...Option) *Deduplicator {
	def := types.DefaultDedupConfig()
	d := &Deduplicator{
		nameThreshold:    cfg.NameThreshold,
		partialThreshold: cfg.PartialThreshold,
		logger:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if d.nameThreshold <= 0 {
		d.nameThreshold = def.NameThreshold
	}
	if d.partialThreshold <= 0 {
		d.partialThreshold = def.PartialThreshold
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type strategyFunc func(d *Deduplicator, entries []types.Entry) ([]types.Entry, types.DedupStats)

var strategies = map[types.DedupStrategy]strategyFunc{
	types.DedupExact:         (*Deduplicator).runExact,
	types.DedupFuzzy:         (*Deduplicator).runFuzzy,
	types.DedupComprehensive: (*Deduplicator).runComprehensive,
}

// Deduplicate returns the surviving entries and run statistics. The input
// slice is not modified. An empty input yields an empty result and zero
// counts; an unknown strategy is an error wrapping types.ErrUnknownStrategy.
func (d *Deduplicator) Deduplicate(entries []types.Entry, strategy types.DedupStrategy) ([]types.Entry, types.DedupStats, error) {
	run, ok := strategies[strategy]
	if !ok {
		return nil, types.DedupStats{}, fmt.Errorf("dedup strategy %q: %w", strategy, types.ErrUnknownStrategy)
	}

	d.logger.Info("deduplicating", "strategy", string(strategy), "entries", len(entries))
	unique, stats := run(d, entries)
	d.logger.Info("deduplication complete",
		"original", stats.OriginalCount,
		"unique", stats.UniqueCount,
		"removed", stats.DuplicatesRemoved,
	)
	return unique, stats, nil
}

func newStats(strategy types.DedupStrategy, original, unique int) types.DedupStats {
	return types.DedupStats{
		Strategy:          strategy,
		OriginalCount:     original,
		UniqueCount:       unique,
		DuplicatesRemoved: original - unique,
	}
}

func (d *Deduplicator) runExact(entries []types.Entry) ([]types.Entry, types.DedupStats) {
	unique, _ := d.exactPass(entries)
	return unique, newStats(types.DedupExact, len(entries), len(unique))
}

func (d *Deduplicator) runFuzzy(entries []types.Entry) ([]types.Entry, types.DedupStats) {
	unique, _ := d.fuzzyPass(entries)
	return unique, newStats(types.DedupFuzzy, len(entries), len(unique))
}

func (d *Deduplicator) runComprehensive(entries []types.Entry) ([]types.Entry, types.DedupStats) {
	d.logger.Debug("pass 1: exact matching")
	afterExact, exactRemoved := d.exactPass(entries)

	d.logger.Debug("pass 2: fuzzy matching")
	afterFuzzy, fuzzyRemoved := d.fuzzyPass(afterExact)

	d.logger.Debug("pass 3: hash detection")
	final, hashRemoved := d.hashPass(afterFuzzy)

	stats := newStats(types.DedupComprehensive, len(entries), len(final))
	stats.Passes = &types.PassBreakdown{
		Exact: exactRemoved,
		Fuzzy: fuzzyRemoved,
		Hash:  hashRemoved,
	}
	return final, stats
}

// exactPass keeps the first entry per ExactKey.
func (d *Deduplicator) exactPass(entries []types.Entry) ([]types.Entry, int) {
	return d.firstPerKey(entries, ExactKey, "exact")
}

// hashPass keeps the first entry per Fingerprint.
func (d *Deduplicator) hashPass(entries []types.Entry) ([]types.Entry, int) {
	return d.firstPerKey(entries, Fingerprint, "hash")
}

func (d *Deduplicator) firstPerKey(entries []types.Entry, key func(types.Entry) string, pass string) ([]types.Entry, int) {
	seen := make(map[string]struct{}, len(entries))
	unique := make([]types.Entry, 0, len(entries))
	removed := 0

	for _, e := range entries {
		k := key(e)
		if _, dup := seen[k]; dup {
			removed++
			d.logger.Debug("duplicate", "pass", pass, "heading", e.HeadingName, "source", e.SourceID)
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, e)
	}
	return unique, removed
}

// fuzzyPass compares each entry against every entry accepted so far and
// drops it on the first similar match.
func (d *Deduplicator) fuzzyPass(entries []types.Entry) ([]types.Entry, int) {
	unique := make([]types.Entry, 0, len(entries))
	names := make([][]string, 0, len(entries))
	removed := 0

	for _, e := range entries {
		en := candidateNames(e)
		dupOf := -1
		for i, u := range unique {
			if d.similar(e, en, u, names[i]) {
				dupOf = i
				break
			}
		}
		if dupOf >= 0 {
			removed++
			d.logger.Debug("duplicate", "pass", "fuzzy", "heading", e.HeadingName, "matches", unique[dupOf].HeadingName, "source", e.SourceID)
			continue
		}
		unique = append(unique, e)
		names = append(names, en)
	}
	return unique, removed
}
