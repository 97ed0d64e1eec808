// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// headingTemplate splits a heading into its two names. The group fields
// name which capture group feeds which slot.
type headingTemplate struct {
	name         string
	re           *regexp.Regexp
	fictionGroup int
	realGroup    int
}

// headingTemplates are tried in order against the heading text. Both read
// "<in-fiction> (<real-world>)" style headings such as "Kastov 762 (AKM)".
var headingTemplates = []headingTemplate{
	{
		name:         "parenthetical",
		re:           regexp.MustCompile(`^(.+?)\s*\((.+?)\)`),
		fictionGroup: 1,
		realGroup:    2,
	},
	{
		name:         "dash",
		re:           regexp.MustCompile(`^(.+?)\s+[-–—]\s+(.+)$`),
		fictionGroup: 1,
		realGroup:    2,
	},
}

// realWorldPatterns recover a real-world designation from prose.
var realWorldPatterns = []string{
	`(?i)The (.+?) (?:is|appears|can be)`,
	`(?i)A (.+?) (?:is|appears|can be)`,
	`(?i)An (.+?) (?:is|appears|can be)`,
	`(?i)Based on (?:the )?(.+?)[.,]`,
	`(?i)Actually (?:a |an |the )?(.+?)[.,]`,
}

// inFictionPatterns recover the in-game name from prose.
var inFictionPatterns = []string{
	`(?i)(?:called|named|known as|appears as)\s+(?:the\s+|an?\s+)?["“](.+?)["”]`,
	`(?i)in-game (?:as |name[:\s]+)["“]?(.+?)["”]?[.,\n]`,
	`(?i)["“](.+?)["”]\s+(?:in|is the)`,
}

// fillerTokens disqualify a real-world candidate when any appears in it.
var fillerTokens = []string{"game", "weapon", "gun", "rifle", "it", "this", "that"}

// Real-world candidates must be longer than minCandidateLen and shorter
// than maxCandidateLen characters.
const (
	minCandidateLen = 3
	maxCandidateLen = 100
)

// proseTemplates is the compiled prose cascade for each slot.
type proseTemplates struct {
	realWorld []*regexp.Regexp
	inFiction []*regexp.Regexp
}

// compileTemplates builds the prose cascade from the built-in patterns
// followed by any configured extras.
func compileTemplates(extra []types.TemplateConfig) (proseTemplates, error) {
	var t proseTemplates
	for _, p := range realWorldPatterns {
		t.realWorld = append(t.realWorld, regexp.MustCompile(p))
	}
	for _, p := range inFictionPatterns {
		t.inFiction = append(t.inFiction, regexp.MustCompile(p))
	}

	for i, tc := range extra {
		re, err := regexp.Compile(tc.Pattern)
		if err != nil {
			return proseTemplates{}, fmt.Errorf("extra template %d: %w", i, err)
		}
		if re.NumSubexp() < 1 {
			return proseTemplates{}, fmt.Errorf("extra template %d: pattern %q has no capture group", i, tc.Pattern)
		}
		switch tc.Slot {
		case types.SlotRealWorld:
			t.realWorld = append(t.realWorld, re)
		case types.SlotInFiction:
			t.inFiction = append(t.inFiction, re)
		default:
			return proseTemplates{}, fmt.Errorf("extra template %d: unknown slot %q", i, tc.Slot)
		}
	}
	return t, nil
}

// matchHeading applies the heading templates in order and reports the
// first match.
func matchHeading(heading string) (realWorld, inFiction string, ok bool) {
	for _, ht := range headingTemplates {
		m := ht.re.FindStringSubmatch(heading)
		if m == nil {
			continue
		}
		return strings.TrimSpace(m[ht.realGroup]), strings.TrimSpace(m[ht.fictionGroup]), true
	}
	return "", "", false
}

// firstMatch returns the first capture of the first pattern that matches
// text and passes accept. A nil accept admits every candidate.
func firstMatch(patterns []*regexp.Regexp, text string, accept func(string) bool) string {
	for _, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if candidate == "" {
			continue
		}
		if accept == nil || accept(candidate) {
			return candidate
		}
	}
	return ""
}

// plausibleRealWorld rejects candidates that are too short, too long, or
// contain filler words.
func plausibleRealWorld(candidate string) bool {
	n := utf8.RuneCountInString(candidate)
	if n <= minCandidateLen || n >= maxCandidateLen {
		return false
	}
	lower := strings.ToLower(candidate)
	for _, tok := range fillerTokens {
		if strings.Contains(lower, tok) {
			return false
		}
	}
	return true
}
