// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package images finds the pictures shown under weapon headings and
// downloads them into a per-source and per-weapon directory layout.
package images

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/weapon-catalog/internal/document"
)

// thumbPath matches MediaWiki scaled thumbnails:
// /images/thumb/a/ab/File.jpg/600px-File.jpg -> /images/a/ab/File.jpg
var thumbPath = regexp.MustCompile(`/thumb/(.+)/\d+px-[^/]+$`)

// Discover returns the image URLs in the blocks under the heading at
// position i, in document order and without repeats. Relative URLs are
// resolved against base, protocol-relative ones default to https, and
// thumbnail URLs are rewritten to the full-size file.
func Discover(doc *document.Document, i int, base *url.URL) []string {
	var out []string
	seen := make(map[string]bool)
	for _, n := range doc.FollowingBlocks(i, doc.Len()) {
		for _, raw := range n.Images {
			u := resolve(base, raw)
			if u == "" || seen[u] {
				continue
			}
			seen[u] = true
			out = append(out, u)
		}
	}
	return out
}

func resolve(base *url.URL, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	if ref.Scheme == "" && ref.Host != "" {
		ref.Scheme = "https"
	}
	if ref.Scheme != "http" && ref.Scheme != "https" {
		return ""
	}
	ref.Path = thumbPath.ReplaceAllString(ref.Path, "/$1")
	ref.RawPath = ""
	return ref.String()
}
