// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog persists deduplicated entries in a SQLite database and
// answers listing and name-lookup queries over them.
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

const defaultMaxResults = 20

// Store manages the catalog SQLite database.
type Store struct {
	db         *sql.DB
	maxResults int
}

// Open opens or creates the catalog database at cfg.Path and creates the
// schema if it does not exist.
func Open(cfg types.CatalogConfig) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("catalog path is required")
	}
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating catalog directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.Path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}

	s := &Store{db: db, maxResults: maxResults}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS sources (
			id TEXT PRIMARY KEY,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS entries (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			source_id TEXT NOT NULL REFERENCES sources(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			category TEXT NOT NULL,
			heading_name TEXT NOT NULL,
			real_world_name TEXT NOT NULL,
			in_fiction_name TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_entries_source ON entries(source_id, position)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveSummary counts the rows written per source by Save.
type SaveSummary struct {
	Sources []SourceCount
}

// Total returns the number of entries written.
func (s SaveSummary) Total() int {
	n := 0
	for _, c := range s.Sources {
		n += c.Entries
	}
	return n
}

// Save replaces the stored rows of every source that appears in entries,
// keeping entry order. Sources absent from entries are left untouched.
// The whole save is one transaction.
func (s *Store) Save(ctx context.Context, entries []types.Entry) (SaveSummary, error) {
	var order []string
	bySource := make(map[string][]types.Entry)
	for _, e := range entries {
		if e.SourceID == "" {
			return SaveSummary{}, fmt.Errorf("entry %q has no source id", e.HeadingName)
		}
		if _, ok := bySource[e.SourceID]; !ok {
			order = append(order, e.SourceID)
		}
		bySource[e.SourceID] = append(bySource[e.SourceID], e)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return SaveSummary{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	var summary SaveSummary
	for _, id := range order {
		if _, err := tx.ExecContext(ctx, `DELETE FROM entries WHERE source_id = ?`, id); err != nil {
			return SaveSummary{}, fmt.Errorf("deleting old entries for %s: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sources (id, updated_at) VALUES (?, ?)
			 ON CONFLICT(id) DO UPDATE SET updated_at=excluded.updated_at`,
			id, now,
		); err != nil {
			return SaveSummary{}, fmt.Errorf("upserting source %s: %w", id, err)
		}
		if err := insertEntries(ctx, tx, bySource[id]); err != nil {
			return SaveSummary{}, err
		}
		summary.Sources = append(summary.Sources, SourceCount{SourceID: id, Entries: len(bySource[id]), UpdatedAt: now})
	}

	if err := tx.Commit(); err != nil {
		return SaveSummary{}, fmt.Errorf("committing: %w", err)
	}
	return summary, nil
}

func insertEntries(ctx context.Context, tx *sql.Tx, entries []types.Entry) error {
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO entries (source_id, position, category, heading_name, real_world_name, in_fiction_name)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if _, err := stmt.ExecContext(ctx,
			e.SourceID, i, e.Category, e.HeadingName, e.RealWorldName, e.InFictionName,
		); err != nil {
			return fmt.Errorf("inserting entry %q: %w", e.HeadingName, err)
		}
	}
	return nil
}
