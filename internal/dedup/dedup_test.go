// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

func entry(source, heading string) types.Entry {
	return types.Entry{SourceID: source, Category: "Rifles", HeadingName: heading, InFictionName: heading}
}

// tenEntries holds two exact duplicates and one fuzzy duplicate.
func tenEntries() []types.Entry {
	return []types.Entry{
		entry("G", "Kastov 762"),
		entry("G", "Lachmann Sub"),
		entry("G", "Bryson 800"),
		entry("G", "Kastov 762 "),
		entry("G", "Vaznev-9K"),
		entry("G", "LACHMANN SUB"),
		entry("G", "Basilisk"),
		entry("G", "Bryson 890"),
		entry("G", "Expedite 12"),
		entry("G", "Signal 50"),
	}
}

func headings(entries []types.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.HeadingName
	}
	return out
}

func TestExactKey(t *testing.T) {
	assert.Equal(t, "g|m4a1", ExactKey(entry("G", "M4A1")))
	assert.Equal(t, ExactKey(entry("G", "M4A1")), ExactKey(entry("g", "M4A1 ")))

	withReal := types.Entry{SourceID: "MW2", HeadingName: "Kastov 762 (AKM)", RealWorldName: "AKM", InFictionName: "Kastov 762"}
	assert.Equal(t, "mw2|akm", ExactKey(withReal))

	onlyFiction := types.Entry{SourceID: "MW2", InFictionName: "Vel 46"}
	assert.Equal(t, "mw2|vel 46", ExactKey(onlyFiction))
}

func TestFingerprint(t *testing.T) {
	a := types.Entry{SourceID: "G", Category: "Rifles", HeadingName: "One", RealWorldName: "AKM", InFictionName: "Kastov 762"}
	b := a
	b.HeadingName = "Two"
	assert.Equal(t, Fingerprint(a), Fingerprint(b), "heading name is not part of the fingerprint")

	c := a
	c.Category = "Pistols"
	assert.NotEqual(t, Fingerprint(a), Fingerprint(c))

	assert.Len(t, Fingerprint(a), 64)
}

func TestDeduplicate_Exact(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	input := []types.Entry{entry("G", "M4A1"), entry("G", "M4A1 "), entry("H", "M4A1"), entry("G", "M4")}

	got, stats, err := d.Deduplicate(input, types.DedupExact)
	require.NoError(t, err)
	assert.Equal(t, []string{"M4A1", "M4A1", "M4"}, headings(got))
	assert.Equal(t, "H", got[1].SourceID)
	assert.Equal(t, types.DedupStats{Strategy: types.DedupExact, OriginalCount: 4, UniqueCount: 3, DuplicatesRemoved: 1}, stats)
}

func TestDeduplicate_ExactDeterministic(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	first, _, err := d.Deduplicate(tenEntries(), types.DedupExact)
	require.NoError(t, err)
	second, _, err := d.Deduplicate(tenEntries(), types.DedupExact)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	for i := range first {
		assert.Equal(t, ExactKey(first[i]), ExactKey(second[i]))
	}
}

func TestDeduplicate_Fuzzy(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	input := []types.Entry{
		entry("G", "M4"),
		entry("G", "M4 Carbine"),
		entry("G", "Bryson 800"),
		entry("G", "Bryson 890"),
		entry("H", "Bryson 800"),
	}

	got, stats, err := d.Deduplicate(input, types.DedupFuzzy)
	require.NoError(t, err)
	assert.Equal(t, []string{"M4", "M4 Carbine", "Bryson 800", "Bryson 800"}, headings(got))
	assert.Equal(t, "H", got[3].SourceID)
	assert.Equal(t, 1, stats.DuplicatesRemoved)
	assert.Nil(t, stats.Passes)
}

func TestDeduplicate_FuzzyPermutation(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	forward := tenEntries()

	reversed := make([]types.Entry, len(forward))
	for i, e := range forward {
		reversed[len(forward)-1-i] = e
	}
	rotated := append(append([]types.Entry(nil), forward[3:]...), forward[:3]...)

	gotForward, statsForward, err := d.Deduplicate(forward, types.DedupFuzzy)
	require.NoError(t, err)
	assert.Equal(t, 7, statsForward.UniqueCount)
	assert.Contains(t, headings(gotForward), "Bryson 800")
	assert.NotContains(t, headings(gotForward), "Bryson 890")

	for name, input := range map[string][]types.Entry{"reversed": reversed, "rotated": rotated} {
		t.Run(name, func(t *testing.T) {
			got, stats, err := d.Deduplicate(input, types.DedupFuzzy)
			require.NoError(t, err)
			assert.Equal(t, statsForward.UniqueCount, stats.UniqueCount, "survivor count does not depend on order")
			assert.Contains(t, headings(got), "Bryson 890", "the first of a similar pair survives")
			assert.NotContains(t, headings(got), "Bryson 800")
		})
	}
}

func TestSimilar(t *testing.T) {
	d := New(types.DefaultDedupConfig())

	assert.False(t, d.Similar(entry("G", "M4"), entry("G", "M4 Carbine")))
	assert.True(t, d.Similar(entry("G", "Bryson 800"), entry("G", "Bryson 890")))
	assert.True(t, d.Similar(entry("G", "M4A1"), entry("g", "m4a1")), "source comparison ignores case")
	assert.False(t, d.Similar(entry("G", "M4A1"), entry("H", "M4A1")), "different sources never match")

	// Names are compared across fields.
	a := types.Entry{SourceID: "G", HeadingName: "Kastov 762 (AKM)", RealWorldName: "AKM", InFictionName: "Kastov 762"}
	b := types.Entry{SourceID: "G", HeadingName: "Kastov-762", InFictionName: "Kastov-762"}
	assert.True(t, d.Similar(a, b))
}

func TestSimilar_PartialThresholdIsIndependent(t *testing.T) {
	d := New(types.DedupConfig{NameThreshold: 0.99, PartialThreshold: 0.90})
	assert.True(t, d.Similar(entry("G", "M4A1 Carbine"), entry("G", "M4A1 Carbin")))

	strict := New(types.DedupConfig{NameThreshold: 0.99, PartialThreshold: 0.95})
	assert.False(t, strict.Similar(entry("G", "M4A1 Carbine"), entry("G", "M4A1 Carbin")))
}

func TestRatio(t *testing.T) {
	assert.InDelta(t, 1.0, Ratio("akm", "akm"), 1e-9)
	assert.InDelta(t, 0.9, Ratio("bryson 800", "bryson 890"), 1e-9)
	assert.InDelta(t, 1.0/3.0, Ratio("m4", "m4 carbine"), 1e-9)
	assert.InDelta(t, 0.0, Ratio("abc", "xyz"), 1e-9)
	assert.InDelta(t, 1.0, Ratio("", ""), 1e-9)
}

func TestPartialRatio(t *testing.T) {
	assert.InDelta(t, 0.2, PartialRatio("m4", "m4 carbine"), 1e-9)
	assert.InDelta(t, 0.2, PartialRatio("m4 carbine", "m4"), 1e-9)
	assert.InDelta(t, 0.0, PartialRatio("akm", "m4"), 1e-9)
	assert.InDelta(t, 0.0, PartialRatio("", ""), 1e-9)
	assert.InDelta(t, 0.75, PartialRatio("crè", "crèc"), 1e-9, "lengths count runes")
}

func TestDeduplicate_ComprehensiveBreakdown(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	got, stats, err := d.Deduplicate(tenEntries(), types.DedupComprehensive)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.DuplicatesRemoved)
	assert.Equal(t, 7, stats.UniqueCount)
	assert.Equal(t, 10, stats.OriginalCount)
	require.NotNil(t, stats.Passes)
	assert.Equal(t, types.PassBreakdown{Exact: 2, Fuzzy: 1, Hash: 0}, *stats.Passes)
	assert.Equal(t, []string{
		"Kastov 762", "Lachmann Sub", "Bryson 800", "Vaznev-9K",
		"Basilisk", "Expedite 12", "Signal 50",
	}, headings(got))
}

func TestHashPass(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	input := []types.Entry{
		{SourceID: "G", Category: "Rifles", HeadingName: "One", RealWorldName: "AKM", InFictionName: "Kastov 762"},
		{SourceID: "G", Category: "rifles", HeadingName: "Two", RealWorldName: "akm", InFictionName: "Kastov 762 (old)"},
		{SourceID: "G", Category: "Pistols", HeadingName: "Three", RealWorldName: "AKM", InFictionName: "Kastov 762"},
	}
	got, removed := d.hashPass(input)
	assert.Equal(t, 1, removed)
	assert.Equal(t, []string{"One", "Three"}, headings(got))
}

func TestDeduplicate_CountOrdering(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	input := append(tenEntries(),
		entry("G", "M4"),
		entry("G", "M4 Carbine"),
		types.Entry{SourceID: "G", HeadingName: "Colt M4 (M4A1)", RealWorldName: "M4A1", InFictionName: "Colt M4"},
		types.Entry{SourceID: "G", HeadingName: "M4A1", InFictionName: "M4A1"},
	)

	exact, _, err := d.Deduplicate(input, types.DedupExact)
	require.NoError(t, err)
	fuzzy, _, err := d.Deduplicate(input, types.DedupFuzzy)
	require.NoError(t, err)
	comp, _, err := d.Deduplicate(input, types.DedupComprehensive)
	require.NoError(t, err)

	assert.LessOrEqual(t, len(comp), len(fuzzy))
	assert.LessOrEqual(t, len(fuzzy), len(exact))
	assert.LessOrEqual(t, len(exact), len(input))
}

func TestDeduplicate_Idempotent(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	for _, strategy := range []types.DedupStrategy{types.DedupExact, types.DedupFuzzy, types.DedupComprehensive} {
		t.Run(string(strategy), func(t *testing.T) {
			once, _, err := d.Deduplicate(tenEntries(), strategy)
			require.NoError(t, err)
			twice, stats, err := d.Deduplicate(once, strategy)
			require.NoError(t, err)
			assert.Zero(t, stats.DuplicatesRemoved)
			assert.Equal(t, once, twice)
		})
	}
}

func TestDeduplicate_EmptyInput(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	for _, strategy := range []types.DedupStrategy{types.DedupExact, types.DedupFuzzy, types.DedupComprehensive} {
		got, stats, err := d.Deduplicate(nil, strategy)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
		assert.Zero(t, stats.OriginalCount)
		assert.Zero(t, stats.UniqueCount)
		assert.Zero(t, stats.DuplicatesRemoved)
		assert.Zero(t, stats.ReductionPercent())
	}
}

func TestDeduplicate_UnknownStrategy(t *testing.T) {
	_, _, err := New(types.DefaultDedupConfig()).Deduplicate(tenEntries(), types.DedupStrategy("semantic"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUnknownStrategy))
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	input := tenEntries()
	before := append([]types.Entry(nil), input...)
	_, _, err := New(types.DefaultDedupConfig()).Deduplicate(input, types.DedupComprehensive)
	require.NoError(t, err)
	assert.Equal(t, before, input)
}

func TestRenderReport(t *testing.T) {
	d := New(types.DefaultDedupConfig())
	original := append(tenEntries(), entry("Alpha", "Glock 17"), entry("Alpha", "Glock 17"))
	unique, stats, err := d.Deduplicate(original, types.DedupComprehensive)
	require.NoError(t, err)

	report := RenderReport(original, unique, stats)
	assert.Contains(t, report, "DEDUPLICATION REPORT")
	assert.Contains(t, report, "Strategy: comprehensive")
	assert.Contains(t, report, "Original entries: 12")
	assert.Contains(t, report, "Unique entries: 8")
	assert.Contains(t, report, "Duplicates removed: 4")
	assert.Contains(t, report, "Reduction: 33.3%")
	assert.Contains(t, report, "  - Exact matching: 3 duplicates")
	assert.Contains(t, report, "  - Fuzzy matching: 1 duplicates")
	assert.Contains(t, report, "  - Hash detection: 0 duplicates")
	assert.Less(t, strings.Index(report, "Alpha: 1 entries"), strings.Index(report, "G: 7 entries"))
	assert.Contains(t, report, "  - G: 7 entries (10 before)")
}

func TestRenderReport_NoBreakdownAndEmpty(t *testing.T) {
	report := RenderReport(nil, nil, types.DedupStats{Strategy: types.DedupExact})
	assert.Contains(t, report, "Reduction: 0.0%")
	assert.NotContains(t, report, "Pass breakdown")
}
