// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package textnorm holds the string normalization shared by extraction and
// deduplication.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	reMultiSpace     = regexp.MustCompile(`\s+`)
	reTrademark      = regexp.MustCompile(`[™®©]`)
	reTrailingParens = regexp.MustCompile(`\s*\([^)]*\)\s*$`)
)

// CollapseSpace replaces every whitespace run with a single space and trims.
func CollapseSpace(s string) string {
	return strings.TrimSpace(reMultiSpace.ReplaceAllString(s, " "))
}

// Name produces the comparison key fragment for a weapon name: composed,
// lower-cased, whitespace-collapsed, without trademark glyphs or one trailing
// parenthetical group.
func Name(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(s)
	s = strings.ToLower(s)
	s = reMultiSpace.ReplaceAllString(s, " ")
	s = reTrademark.ReplaceAllString(s, "")
	s = reTrailingParens.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
