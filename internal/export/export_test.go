// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

func sampleEntries() []types.Entry {
	return []types.Entry{
		{SourceID: "MW2_2022", Category: "Assault Rifles", HeadingName: "Kastov 762 (AKM)", RealWorldName: "AKM", InFictionName: "Kastov 762"},
		{SourceID: "MW2_2022", Category: "Assault Rifles", HeadingName: "M4A1 Carbine", InFictionName: "M4A1 Carbine"},
		{SourceID: "Ready_or_Not", Category: "Pistols", HeadingName: "Glock 17, \"Mk17\"", InFictionName: "Glock 17, \"Mk17\""},
	}
}

func TestParseFormats(t *testing.T) {
	got, err := ParseFormats([]string{"json", "ALL"})
	require.NoError(t, err)
	assert.Equal(t, []types.ExportFormat{types.FormatJSON, types.FormatCSV, types.FormatYAML, types.FormatMarkdown}, got)

	_, err = ParseFormats([]string{"xlsx"})
	assert.Error(t, err)
}

func TestNewWriter_RejectsUnknownFormat(t *testing.T) {
	_, err := NewWriter(types.ExportConfig{Formats: []types.ExportFormat{"parquet"}}, nil)
	assert.Error(t, err)
}

func TestWriteAll_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(types.ExportConfig{OutputDir: dir, BaseName: "weapons"}, nil)
	require.NoError(t, err)

	paths, err := w.WriteAll(sampleEntries())
	require.NoError(t, err)
	assert.Len(t, paths, 4)

	for _, ext := range []string{".json", ".yaml"} {
		got, err := ReadFile(filepath.Join(dir, "weapons"+ext))
		require.NoError(t, err, ext)
		assert.Equal(t, sampleEntries(), got, ext)
	}

	f, err := os.Open(filepath.Join(dir, "weapons.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, types.Columns, rows[0])
	assert.Equal(t, []string{"MW2_2022", "Assault Rifles", "Kastov 762 (AKM)", "AKM", "Kastov 762"}, rows[1])
	assert.Equal(t, "Glock 17, \"Mk17\"", rows[3][2])

	md, err := os.ReadFile(filepath.Join(dir, "weapons.md"))
	require.NoError(t, err)
	assert.Contains(t, string(md), "# IMFDB Weapons Data")
	assert.Contains(t, string(md), "Total weapons: 3")
	assert.Contains(t, string(md), "| Kastov 762 (AKM) |")
}

func TestWriteAll_EmptyWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	w, err := NewWriter(types.ExportConfig{OutputDir: dir}, nil)
	require.NoError(t, err)

	paths, err := w.WriteAll(nil)
	require.NoError(t, err)
	assert.Empty(t, paths)
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(types.ExportConfig{OutputDir: dir}, nil)
	require.NoError(t, err)

	path, err := w.WriteReport("DEDUPLICATION REPORT")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "DEDUPLICATION REPORT\n", string(data))
}

func TestReadFile_RejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weapons.csv")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestWriteSummary(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, sampleEntries())
	out := buf.String()

	assert.Contains(t, out, "Total entries: 3")
	assert.Contains(t, out, "Sources: 2")
	assert.Contains(t, out, "Real-world names found: 1/3 (33.3%)")
	assert.Contains(t, out, "In-fiction names differ from heading: 1/3 (33.3%)")
}

func TestWriteSummary_Empty(t *testing.T) {
	var buf bytes.Buffer
	WriteSummary(&buf, nil)
	assert.Contains(t, buf.String(), "No entries.")
}
