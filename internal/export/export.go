// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export writes catalog entries to CSV, JSON, YAML, and markdown
// files and reads exported JSON or YAML back.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

const reportFile = "deduplication_report.txt"

// extensions maps each concrete format to its file extension.
var extensions = map[types.ExportFormat]string{
	types.FormatCSV:      ".csv",
	types.FormatJSON:     ".json",
	types.FormatYAML:     ".yaml",
	types.FormatMarkdown: ".md",
}

// allFormats is the expansion of "all", in write order.
var allFormats = []types.ExportFormat{types.FormatCSV, types.FormatJSON, types.FormatYAML, types.FormatMarkdown}

// ParseFormats validates format names and expands "all". Duplicates are
// dropped; order is preserved.
func ParseFormats(names []string) ([]types.ExportFormat, error) {
	var out []types.ExportFormat
	seen := make(map[types.ExportFormat]bool)
	add := func(f types.ExportFormat) {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	for _, n := range names {
		f := types.ExportFormat(strings.ToLower(strings.TrimSpace(n)))
		switch {
		case f == types.FormatAll:
			for _, a := range allFormats {
				add(a)
			}
		case extensions[f] != "":
			add(f)
		default:
			return nil, fmt.Errorf("unsupported format %q: use csv, json, yaml, markdown, or all", n)
		}
	}
	return out, nil
}

// Writer writes entry files into one output directory.
type Writer struct {
	dir      string
	baseName string
	formats  []types.ExportFormat
	logger   *slog.Logger
}

// NewWriter validates cfg and returns a Writer. The output directory is
// created on first write.
func NewWriter(cfg types.ExportConfig, logger *slog.Logger) (*Writer, error) {
	names := make([]string, len(cfg.Formats))
	for i, f := range cfg.Formats {
		names[i] = string(f)
	}
	if len(names) == 0 {
		names = []string{string(types.FormatAll)}
	}
	formats, err := ParseFormats(names)
	if err != nil {
		return nil, err
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.BaseName == "" {
		cfg.BaseName = "weapons"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Writer{dir: cfg.OutputDir, baseName: cfg.BaseName, formats: formats, logger: logger}, nil
}

// Path returns the file the writer uses for format f.
func (w *Writer) Path(f types.ExportFormat) string {
	return filepath.Join(w.dir, w.baseName+extensions[f])
}

// WriteAll writes entries in every configured format and returns the paths
// written. An empty entry list writes nothing.
func (w *Writer) WriteAll(entries []types.Entry) ([]string, error) {
	if len(entries) == 0 {
		w.logger.Warn("no entries to export")
		return nil, nil
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for _, f := range w.formats {
		path := w.Path(f)
		if err := writeFile(path, func(out io.Writer) error { return Encode(out, f, entries) }); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		w.logger.Info("exported entries", "format", string(f), "path", path, "count", len(entries))
		paths = append(paths, path)
	}
	return paths, nil
}

// WriteReport stores a deduplication report next to the exports.
func (w *Writer) WriteReport(report string) (string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(w.dir, reportFile)
	if err := os.WriteFile(path, []byte(report+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}

// Encode writes entries to out in format f.
func Encode(out io.Writer, f types.ExportFormat, entries []types.Entry) error {
	switch f {
	case types.FormatCSV:
		return encodeCSV(out, entries)
	case types.FormatJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(entries)
	case types.FormatYAML:
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return err
		}
		return enc.Close()
	case types.FormatMarkdown:
		_, err := io.WriteString(out, Markdown(entries))
		return err
	}
	return fmt.Errorf("unsupported format %q", f)
}

func encodeCSV(out io.Writer, entries []types.Entry) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(types.Columns); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write(e.Row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Markdown renders entries as a titled markdown table.
func Markdown(entries []types.Entry) string {
	tw := table.NewWriter()
	header := make(table.Row, len(types.Columns))
	for i, c := range types.Columns {
		header[i] = c
	}
	tw.AppendHeader(header)
	for _, e := range entries {
		row := e.Row()
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		tw.AppendRow(r)
	}

	var b strings.Builder
	b.WriteString("# IMFDB Weapons Data\n\n")
	fmt.Fprintf(&b, "Total weapons: %d\n\n", len(entries))
	b.WriteString(tw.RenderMarkdown())
	b.WriteString("\n")
	return b.String()
}

// ReadFile loads entries from an exported JSON or YAML file, chosen by
// extension.
func ReadFile(path string) ([]types.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []types.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &entries)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &entries)
	default:
		return nil, fmt.Errorf("%s: expected a .json or .yaml export", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return entries, nil
}

// writeFile writes through a temporary file and renames it into place.
func writeFile(path string, fill func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".export-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	fillErr := fill(tmp)
	closeErr := tmp.Close()
	if fillErr != nil {
		os.Remove(tmpPath)
		return fillErr
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
