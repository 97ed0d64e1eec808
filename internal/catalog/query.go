// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/pdiddy/weapon-catalog/internal/textnorm"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// SourceCount is the number of stored entries for one source.
type SourceCount struct {
	SourceID  string `json:"source_id" yaml:"source_id"`
	Entries   int    `json:"entries" yaml:"entries"`
	UpdatedAt string `json:"updated_at" yaml:"updated_at"`
}

// Match is an entry found by Find. Distance is the fuzzy edit distance of
// the best matching name; lower is closer.
type Match struct {
	types.Entry
	MatchedName string `json:"matched_name" yaml:"matched_name"`
	Distance    int    `json:"distance" yaml:"distance"`
}

// List returns the stored entries of sourceID in saved order. An empty
// sourceID lists every source, ordered by source id.
func (s *Store) List(ctx context.Context, sourceID string) ([]types.Entry, error) {
	q := `SELECT source_id, category, heading_name, real_world_name, in_fiction_name FROM entries`
	var args []any
	if sourceID != "" {
		q += ` WHERE source_id = ?`
		args = append(args, sourceID)
	}
	q += ` ORDER BY source_id, position`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying entries: %w", err)
	}
	defer rows.Close()

	var out []types.Entry
	for rows.Next() {
		var e types.Entry
		if err := rows.Scan(&e.SourceID, &e.Category, &e.HeadingName, &e.RealWorldName, &e.InFictionName); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Sources lists stored sources with their entry counts, ordered by id.
func (s *Store) Sources(ctx context.Context) ([]SourceCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT s.id, count(e.rowid), s.updated_at
		 FROM sources s LEFT JOIN entries e ON e.source_id = s.id
		 GROUP BY s.id ORDER BY s.id`)
	if err != nil {
		return nil, fmt.Errorf("querying sources: %w", err)
	}
	defer rows.Close()

	var out []SourceCount
	for rows.Next() {
		var c SourceCount
		if err := rows.Scan(&c.SourceID, &c.Entries, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Find ranks stored entries by how closely one of their names fuzzily
// matches query. The query's characters must appear in order in a name for
// it to match at all. Results are ordered by distance, then source and
// heading; limit <= 0 uses the store default.
func (s *Store) Find(ctx context.Context, query string, limit int) ([]Match, error) {
	needle := textnorm.Name(query)
	if needle == "" {
		return nil, fmt.Errorf("query is required")
	}
	if limit <= 0 {
		limit = s.maxResults
	}

	entries, err := s.List(ctx, "")
	if err != nil {
		return nil, err
	}

	var (
		targets []string
		owner   []int
	)
	for i, e := range entries {
		for _, name := range []string{e.HeadingName, e.RealWorldName, e.InFictionName} {
			if n := textnorm.Name(name); n != "" {
				targets = append(targets, n)
				owner = append(owner, i)
			}
		}
	}

	best := make(map[int]Match)
	for _, r := range fuzzy.RankFindNormalizedFold(needle, targets) {
		i := owner[r.OriginalIndex]
		if m, ok := best[i]; ok && m.Distance <= r.Distance {
			continue
		}
		best[i] = Match{Entry: entries[i], MatchedName: r.Target, Distance: r.Distance}
	}

	matches := make([]Match, 0, len(best))
	for _, m := range best {
		matches = append(matches, m)
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Distance != b.Distance {
			return a.Distance < b.Distance
		}
		if a.SourceID != b.SourceID {
			return a.SourceID < b.SourceID
		}
		return strings.ToLower(a.HeadingName) < strings.ToLower(b.HeadingName)
	})
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
