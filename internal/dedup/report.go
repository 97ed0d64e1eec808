// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

const reportRule = "============================================================"

// RenderReport formats a human-readable summary of one deduplication run:
// the counts, the per-pass breakdown for the comprehensive strategy, and
// the surviving entries per source, sorted by source id.
func RenderReport(original, deduplicated []types.Entry, stats types.DedupStats) string {
	var b strings.Builder
	fmt.Fprintln(&b, reportRule)
	fmt.Fprintln(&b, "DEDUPLICATION REPORT")
	fmt.Fprintln(&b, reportRule)
	fmt.Fprintf(&b, "\nStrategy: %s\n", stats.Strategy)
	fmt.Fprintf(&b, "Original entries: %d\n", stats.OriginalCount)
	fmt.Fprintf(&b, "Unique entries: %d\n", stats.UniqueCount)
	fmt.Fprintf(&b, "Duplicates removed: %d\n", stats.DuplicatesRemoved)
	fmt.Fprintf(&b, "Reduction: %.1f%%\n", stats.ReductionPercent())

	if p := stats.Passes; p != nil {
		fmt.Fprintln(&b, "\nPass breakdown:")
		fmt.Fprintf(&b, "  - Exact matching: %d duplicates\n", p.Exact)
		fmt.Fprintf(&b, "  - Fuzzy matching: %d duplicates\n", p.Fuzzy)
		fmt.Fprintf(&b, "  - Hash detection: %d duplicates\n", p.Hash)
	}

	before := countBySource(original)
	after := countBySource(deduplicated)
	sources := make([]string, 0, len(after))
	for s := range after {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	fmt.Fprintln(&b, "\nEntries by source:")
	for _, s := range sources {
		fmt.Fprintf(&b, "  - %s: %d entries (%d before)\n", s, after[s], before[s])
	}
	b.WriteString(reportRule)
	return b.String()
}

func countBySource(entries []types.Entry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		id := e.SourceID
		if id == "" {
			id = "Unknown"
		}
		counts[id]++
	}
	return counts
}
