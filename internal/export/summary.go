// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

const summaryTopCategories = 10

type count struct {
	key string
	n   int
}

// sortedCounts orders by count descending, then key ascending.
func sortedCounts(entries []types.Entry, key func(types.Entry) string) []count {
	m := make(map[string]int)
	for _, e := range entries {
		m[key(e)]++
	}
	out := make([]count, 0, len(m))
	for k, n := range m {
		out = append(out, count{k, n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].n != out[j].n {
			return out[i].n > out[j].n
		}
		return out[i].key < out[j].key
	})
	return out
}

// WriteSummary prints extraction statistics for entries: counts per source
// and per category, and how often each name heuristic succeeded.
func WriteSummary(w io.Writer, entries []types.Entry) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "WEAPONS DATA SUMMARY")
	fmt.Fprintln(w, rule)
	if len(entries) == 0 {
		fmt.Fprintln(w, "\nNo entries.")
		fmt.Fprintln(w, rule)
		return
	}

	bySource := sortedCounts(entries, func(e types.Entry) string { return e.SourceID })
	byCategory := sortedCounts(entries, func(e types.Entry) string {
		if e.Category == "" {
			return "(uncategorized)"
		}
		return e.Category
	})

	fmt.Fprintf(w, "\nTotal entries: %d\n", len(entries))
	fmt.Fprintf(w, "Sources: %d\n", len(bySource))
	fmt.Fprintf(w, "Categories: %d\n", len(byCategory))

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Source", "Entries"})
	for _, c := range bySource {
		tw.AppendRow(table.Row{c.key, c.n})
	}
	fmt.Fprintf(w, "\n%s\n", tw.Render())

	tw = table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Category", "Entries"})
	for i, c := range byCategory {
		if i == summaryTopCategories {
			break
		}
		tw.AppendRow(table.Row{c.key, c.n})
	}
	fmt.Fprintf(w, "\n%s\n", tw.Render())
	if extra := len(byCategory) - summaryTopCategories; extra > 0 {
		fmt.Fprintf(w, "... and %d more categories\n", extra)
	}

	realWorld, differs := 0, 0
	for _, e := range entries {
		if e.RealWorldName != "" {
			realWorld++
		}
		if e.InFictionName != e.HeadingName {
			differs++
		}
	}
	total := float64(len(entries))
	fmt.Fprintln(w, "\nExtraction statistics:")
	fmt.Fprintf(w, "  Real-world names found: %d/%d (%.1f%%)\n", realWorld, len(entries), float64(realWorld)/total*100)
	fmt.Fprintf(w, "  In-fiction names differ from heading: %d/%d (%.1f%%)\n", differs, len(entries), float64(differs)/total*100)
	fmt.Fprintln(w, rule)
}
