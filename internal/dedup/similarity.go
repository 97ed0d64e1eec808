// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dedup

import (
	"crypto/sha256"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/pdiddy/weapon-catalog/internal/textnorm"
	"github.com/pdiddy/weapon-catalog/pkg/types"
)

// ExactKey is the exact-pass key: lower-cased source id and the normalized
// priority name (real-world, else heading, else in-fiction).
func ExactKey(e types.Entry) string {
	return strings.ToLower(strings.TrimSpace(e.SourceID)) + "|" + textnorm.Name(e.PriorityName())
}

// Fingerprint is the hash-pass key: the SHA-256 of source id, normalized
// real-world and in-fiction names, and category, with empty parts omitted.
// The heading name is deliberately not part of it.
func Fingerprint(e types.Entry) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{
		strings.ToLower(e.SourceID),
		textnorm.Name(e.RealWorldName),
		textnorm.Name(e.InFictionName),
		strings.ToLower(e.Category),
	} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%x", sum)
}

// candidateNames returns the distinct non-empty normalized names of e in
// real-world, heading, in-fiction order.
func candidateNames(e types.Entry) []string {
	names := make([]string, 0, 3)
	for _, field := range []string{e.RealWorldName, e.HeadingName, e.InFictionName} {
		if field == "" {
			continue
		}
		n := textnorm.Name(field)
		if n == "" || contains(names, n) {
			continue
		}
		names = append(names, n)
	}
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// Similar reports whether a and b are fuzzy duplicates.
func (d *Deduplicator) Similar(a, b types.Entry) bool {
	return d.similar(a, candidateNames(a), b, candidateNames(b))
}

func (d *Deduplicator) similar(a types.Entry, aNames []string, b types.Entry, bNames []string) bool {
	if !strings.EqualFold(a.SourceID, b.SourceID) {
		return false
	}
	// Entries the exact pass would merge are always similar.
	if ExactKey(a) == ExactKey(b) {
		return true
	}
	for _, x := range aNames {
		for _, y := range bNames {
			if Ratio(x, y) >= d.nameThreshold {
				return true
			}
			if PartialRatio(x, y) >= d.partialThreshold {
				return true
			}
		}
	}
	return false
}

// Ratio returns the Ratcliff/Obershelp similarity of a and b in [0, 1],
// compared rune by rune.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

// PartialRatio returns the rune-length ratio shorter/longer when one string
// contains the other, and 0 otherwise.
func PartialRatio(a, b string) float64 {
	la, lb := utf8.RuneCountInString(a), utf8.RuneCountInString(b)
	shorter, longer, ls, ll := a, b, la, lb
	if la > lb {
		shorter, longer, ls, ll = b, a, lb, la
	}
	if ll == 0 || !strings.Contains(longer, shorter) {
		return 0
	}
	return float64(ls) / float64(ll)
}

func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
