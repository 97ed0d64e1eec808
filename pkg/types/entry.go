// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types holds the data model shared by the extraction, deduplication,
// export, and catalog stages.
package types

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned when a caller names an extraction or
// deduplication strategy that does not exist.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Entry is one catalog record recovered from a source document. Entries are
// values: the stages that consume them build new slices and never write
// fields of an input element.
type Entry struct {
	// SourceID identifies the originating document (e.g. "MW2_2022").
	SourceID string `json:"source_id" yaml:"source_id"`

	// Category is the nearest enclosing category heading. Empty means the
	// entry appeared before any category heading.
	Category string `json:"category" yaml:"category"`

	// HeadingName is the raw heading text, verbatim. Never empty.
	HeadingName string `json:"heading_name" yaml:"heading_name"`

	// RealWorldName is the recovered real-world designation, if any.
	RealWorldName string `json:"real_world_name" yaml:"real_world_name"`

	// InFictionName is the name used inside the source. Falls back to
	// HeadingName, so it is never empty.
	InFictionName string `json:"in_fiction_name" yaml:"in_fiction_name"`
}

// PriorityName returns the first non-empty of RealWorldName, HeadingName,
// and InFictionName.
func (e Entry) PriorityName() string {
	switch {
	case e.RealWorldName != "":
		return e.RealWorldName
	case e.HeadingName != "":
		return e.HeadingName
	default:
		return e.InFictionName
	}
}

// Row returns the entry as an export row in Columns order.
func (e Entry) Row() []string {
	return []string{e.SourceID, e.Category, e.HeadingName, e.RealWorldName, e.InFictionName}
}

// Columns are the export column names, in Row order.
var Columns = []string{"source_id", "category", "heading_name", "real_world_name", "in_fiction_name"}

// ExtractStrategy selects how the extractor walks a document.
type ExtractStrategy string

const (
	// ExtractContent walks every heading in document order.
	ExtractContent ExtractStrategy = "content"
	// ExtractIndex walks the table of contents, falling back to content.
	ExtractIndex ExtractStrategy = "index"
)

// ParseExtractStrategy validates a strategy name.
func ParseExtractStrategy(s string) (ExtractStrategy, error) {
	switch st := ExtractStrategy(strings.ToLower(strings.TrimSpace(s))); st {
	case ExtractContent, ExtractIndex:
		return st, nil
	}
	return "", fmt.Errorf("extraction strategy %q: %w", s, ErrUnknownStrategy)
}

// DedupStrategy selects the deduplication pipeline.
type DedupStrategy string

const (
	DedupExact         DedupStrategy = "exact"
	DedupFuzzy         DedupStrategy = "fuzzy"
	DedupComprehensive DedupStrategy = "comprehensive"
)

// ParseDedupStrategy validates a strategy name.
func ParseDedupStrategy(s string) (DedupStrategy, error) {
	switch st := DedupStrategy(strings.ToLower(strings.TrimSpace(s))); st {
	case DedupExact, DedupFuzzy, DedupComprehensive:
		return st, nil
	}
	return "", fmt.Errorf("dedup strategy %q: %w", s, ErrUnknownStrategy)
}

// PassBreakdown counts the duplicates removed by each comprehensive pass.
type PassBreakdown struct {
	Exact int `json:"pass_1_exact" yaml:"pass_1_exact"`
	Fuzzy int `json:"pass_2_fuzzy" yaml:"pass_2_fuzzy"`
	Hash  int `json:"pass_3_hash" yaml:"pass_3_hash"`
}

// DedupStats describes one deduplication run.
type DedupStats struct {
	Strategy          DedupStrategy `json:"strategy" yaml:"strategy"`
	OriginalCount     int           `json:"original_count" yaml:"original_count"`
	UniqueCount       int           `json:"unique_count" yaml:"unique_count"`
	DuplicatesRemoved int           `json:"duplicates_removed" yaml:"duplicates_removed"`

	// Passes is set only for the comprehensive strategy.
	Passes *PassBreakdown `json:"passes,omitempty" yaml:"passes,omitempty"`
}

// ReductionPercent returns the share of the input removed, in percent.
func (s DedupStats) ReductionPercent() float64 {
	if s.OriginalCount == 0 {
		return 0
	}
	return float64(s.DuplicatesRemoved) / float64(s.OriginalCount) * 100
}
