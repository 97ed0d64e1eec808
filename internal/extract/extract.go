// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract recovers weapon entries from a parsed wiki page.
//
// Each entry heading yields one types.Entry carrying a real-world name and an
// in-fiction name, recovered from the heading text first and from the prose
// that follows it second.
package extract

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/weapon-catalog/internal/document"
	"github.com/pdiddy/weapon-catalog/internal/textnorm"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// Extractor turns documents into entries. It holds no per-document state
// and is safe for concurrent use.
type Extractor struct {
	cfg       types.ExtractionConfig
	templates proseTemplates
	logger    *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger used for debug tracing.
func WithLogger(l *slog.Logger) Option {
	return func(x *Extractor) {
		if l != nil {
			x.logger = l
		}
	}
}

// New builds an Extractor. Zero-valued config fields take the defaults from
// types.DefaultExtractionConfig. A malformed extra template is an error.
func New(cfg types.ExtractionConfig, opts ...Option) (*Extractor, error) {
	def := types.DefaultExtractionConfig()
	if cfg.Strategy == "" {
		cfg.Strategy = def.Strategy
	}
	if cfg.CategoryLevel <= 0 {
		cfg.CategoryLevel = def.CategoryLevel
	}
	if cfg.MinEntryLevel <= 0 {
		cfg.MinEntryLevel = def.MinEntryLevel
	}
	if cfg.MaxEntryLevel <= 0 {
		cfg.MaxEntryLevel = def.MaxEntryLevel
	}
	if cfg.MaxEntryLevel < cfg.MinEntryLevel {
		return nil, fmt.Errorf("entry levels: max %d below min %d", cfg.MaxEntryLevel, cfg.MinEntryLevel)
	}
	if cfg.ProseWindow <= 0 {
		cfg.ProseWindow = def.ProseWindow
	}
	if cfg.ExcludedCategories == nil {
		cfg.ExcludedCategories = def.ExcludedCategories
	}
	if _, err := types.ParseExtractStrategy(string(cfg.Strategy)); err != nil {
		return nil, err
	}

	templates, err := compileTemplates(cfg.ExtraTemplates)
	if err != nil {
		return nil, err
	}

	x := &Extractor{
		cfg:       cfg,
		templates: templates,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

// Strategy returns the configured default strategy.
func (x *Extractor) Strategy() types.ExtractStrategy {
	return x.cfg.Strategy
}

// traversal walks one document and returns its entries.
type traversal func(x *Extractor, doc *document.Document, sourceID string) []types.Entry

var traversals = map[types.ExtractStrategy]traversal{
	types.ExtractContent: (*Extractor).fromContent,
	types.ExtractIndex:   (*Extractor).fromIndex,
}

// Extract returns the entries of doc in document order. A document without
// headings yields no entries and no error.
func (x *Extractor) Extract(doc *document.Document, sourceID string, strategy types.ExtractStrategy) ([]types.Entry, error) {
	walk, ok := traversals[strategy]
	if !ok {
		return nil, fmt.Errorf("extraction strategy %q: %w", strategy, types.ErrUnknownStrategy)
	}
	if strings.TrimSpace(sourceID) == "" {
		return nil, errors.New("source id is required")
	}
	if doc == nil {
		return nil, nil
	}

	entries := walk(x, doc, sourceID)
	x.logger.Info("extracted entries", "source", sourceID, "strategy", string(strategy), "count", len(entries))
	return entries, nil
}

// categoryState is the running category carried through the heading fold.
type categoryState struct {
	name     string
	excluded bool
}

func (x *Extractor) enterCategory(text string) categoryState {
	if x.isExcluded(text) {
		x.logger.Debug("skipping category", "name", text)
		return categoryState{excluded: true}
	}
	x.logger.Debug("category", "name", text)
	return categoryState{name: text}
}

func (x *Extractor) isExcluded(category string) bool {
	lower := strings.ToLower(category)
	for _, skip := range x.cfg.ExcludedCategories {
		if skip != "" && strings.Contains(lower, strings.ToLower(skip)) {
			return true
		}
	}
	return false
}

func (x *Extractor) isEntryLevel(level int) bool {
	return level >= x.cfg.MinEntryLevel && level <= x.cfg.MaxEntryLevel
}

// fromContent folds over every heading in document order.
func (x *Extractor) fromContent(doc *document.Document, sourceID string) []types.Entry {
	var entries []types.Entry
	var state categoryState

	for _, i := range doc.Headings() {
		n := doc.Node(i)
		switch {
		case n.Level == x.cfg.CategoryLevel:
			state = x.enterCategory(n.Text)
		case x.isEntryLevel(n.Level) && !state.excluded && n.Text != "":
			realWorld, inFiction := x.RecoverNames(n.Text, blockTexts(doc.FollowingBlocks(i, x.cfg.ProseWindow)))
			entries = append(entries, types.Entry{
				SourceID:      sourceID,
				Category:      state.name,
				HeadingName:   n.Text,
				RealWorldName: realWorld,
				InFictionName: inFiction,
			})
			x.logger.Debug("entry", "heading", n.Text, "real_world", realWorld, "in_fiction", inFiction)
		}
	}
	return entries
}

// fromIndex walks the table of contents, recovering names against the
// matching heading in the document. Without an index it falls back to
// fromContent.
func (x *Extractor) fromIndex(doc *document.Document, sourceID string) []types.Entry {
	idx, ok := doc.Index()
	if !ok {
		x.logger.Warn("no table of contents, falling back to content traversal", "source", sourceID)
		return x.fromContent(doc, sourceID)
	}

	var entries []types.Entry
	for _, cat := range idx.Categories {
		if x.isExcluded(cat.Name) {
			x.logger.Debug("skipping category", "name", cat.Name)
			continue
		}
		for _, name := range cat.Entries {
			if name == "" {
				continue
			}
			heading, prose := name, []string(nil)
			if i, found := doc.FindHeading(name, x.cfg.MinEntryLevel, x.cfg.MaxEntryLevel); found {
				heading = doc.Node(i).Text
				prose = blockTexts(doc.FollowingBlocks(i, x.cfg.ProseWindow))
			}
			realWorld, inFiction := x.RecoverNames(heading, prose)
			entries = append(entries, types.Entry{
				SourceID:      sourceID,
				Category:      cat.Name,
				HeadingName:   name,
				RealWorldName: realWorld,
				InFictionName: inFiction,
			})
		}
	}
	return entries
}

// RecoverNames recovers the real-world and in-fiction names for one entry
// heading. Heading templates are tried first; prose is scanned only when no
// heading template matches. The in-fiction name falls back to heading, so it
// is empty only if heading is.
func (x *Extractor) RecoverNames(heading string, prose []string) (realWorld, inFiction string) {
	if !utf8.ValidString(heading) {
		x.logger.Debug("skipping malformed heading", "heading", heading)
		return "", heading
	}

	realWorld, inFiction, matched := matchHeading(heading)
	if !matched {
		for _, text := range prose {
			if realWorld == "" {
				realWorld = firstMatch(x.templates.realWorld, text, plausibleRealWorld)
			}
			if inFiction == "" {
				inFiction = firstMatch(x.templates.inFiction, text, nil)
			}
			if realWorld != "" && inFiction != "" {
				break
			}
		}
	}

	realWorld = textnorm.CollapseSpace(realWorld)
	inFiction = textnorm.CollapseSpace(inFiction)
	if inFiction == "" {
		inFiction = heading
	}
	return realWorld, inFiction
}

func blockTexts(nodes []document.Node) []string {
	texts := make([]string, 0, len(nodes))
	for _, n := range nodes {
		texts = append(texts, n.Text)
	}
	return texts
}
