// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package document

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockTags are the content elements collected after a heading.
var blockTags = map[string]bool{
	"p":   true,
	"div": true,
	"ul":  true,
}

// skipTags never contribute text or structure.
var skipTags = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// Parse reads an HTML page and flattens it into heading and block nodes.
// Wrapper elements that precede any heading among their siblings are
// descended into; once a heading has been seen, following p/div/ul siblings
// are recorded as blocks and not descended into, unless they hold headings
// of their own. A div whose only element child is a heading (MediaWiki's
// div.mw-heading, edit links aside) stands for that heading. The first
// div.toc found is parsed as the document index and excluded from content.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	b := &builder{}
	b.walk(root)
	return &Document{nodes: b.nodes, index: b.index}, nil
}

type builder struct {
	nodes  []Node
	groups int
	index  *Index
}

func (b *builder) walk(parent *html.Node) {
	group := b.groups
	b.groups++
	seenHeading := false

	for c := parent.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || skipTags[c.Data] {
			continue
		}
		if isTOC(c) {
			if b.index == nil {
				idx := parseIndex(c)
				b.index = &idx
			}
			continue
		}
		if h := unwrapHeading(c); h != nil {
			b.nodes = append(b.nodes, Node{
				Kind:   KindHeading,
				Tag:    h.Data,
				Level:  headingLevel(h),
				Text:   strings.TrimSpace(textOf(h)),
				Parent: group,
			})
			seenHeading = true
			continue
		}
		if seenHeading && !containsHeading(c) {
			if blockTags[c.Data] {
				b.nodes = append(b.nodes, Node{
					Kind:   KindBlock,
					Tag:    c.Data,
					Text:   textOf(c),
					Images: imagesOf(c),
					Parent: group,
				})
			}
			continue
		}
		b.walk(c)
	}
}

// headingLevel returns 1..6 for h1..h6 and 0 otherwise.
func headingLevel(n *html.Node) int {
	if len(n.Data) == 2 && n.Data[0] == 'h' && n.Data[1] >= '1' && n.Data[1] <= '6' {
		return int(n.Data[1] - '0')
	}
	return 0
}

// unwrapHeading returns n itself when it is a heading, or the heading
// wrapped by a div that holds nothing else but edit links.
func unwrapHeading(n *html.Node) *html.Node {
	if headingLevel(n) > 0 {
		return n
	}
	if n.Data != "div" {
		return nil
	}
	var only *html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch {
		case c.Type == html.TextNode && strings.TrimSpace(c.Data) == "":
		case c.Type == html.CommentNode:
		case c.Type == html.ElementNode && hasClass(c, "mw-editsection"):
		case c.Type == html.ElementNode && only == nil && headingLevel(c) > 0:
			only = c
		default:
			return nil
		}
	}
	return only
}

func containsHeading(n *html.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if headingLevel(c) > 0 || containsHeading(c) {
			return true
		}
	}
	return false
}

func isTOC(n *html.Node) bool {
	return n.Data == "div" && (attr(n, "id") == "toc" || hasClass(n, "toc"))
}

// textOf concatenates the text beneath n, skipping scripts and MediaWiki
// edit links.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (skipTags[n.Data] || hasClass(n, "mw-editsection")) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}

// imageExts are the path suffixes that mark a link as pointing at an image.
var imageExts = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

// imagesOf returns the image URLs beneath n in document order, as written in
// the markup. An img or a element counts when its class mentions "image" or
// "thumb", or when it sits inside a div.thumb. A link contributes the image
// it wraps, or its own href when that names an image file and it wraps none.
func imagesOf(n *html.Node) []string {
	var out []string
	var f func(n *html.Node, inThumb bool)
	f = func(n *html.Node, inThumb bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode || skipTags[c.Data] {
				continue
			}
			marked := inThumb || imageClass(c)
			switch {
			case c.Data == "img" && marked:
				if src := imgSource(c); src != "" {
					out = append(out, src)
				}
			case c.Data == "a" && marked:
				if img := findTag(c, "img"); img != nil {
					if src := imgSource(img); src != "" {
						out = append(out, src)
					}
				} else if href := attr(c, "href"); isImageURL(href) {
					out = append(out, href)
				}
			default:
				f(c, inThumb || (c.Data == "div" && hasClass(c, "thumb")))
			}
		}
	}
	f(n, n.Data == "div" && hasClass(n, "thumb"))
	return out
}

func imageClass(n *html.Node) bool {
	class := strings.ToLower(attr(n, "class"))
	return strings.Contains(class, "image") || strings.Contains(class, "thumb")
}

func imgSource(n *html.Node) string {
	if src := attr(n, "src"); src != "" {
		return src
	}
	return attr(n, "data-src")
}

func isImageURL(href string) bool {
	lower := strings.ToLower(href)
	if i := strings.IndexAny(lower, "?#"); i >= 0 {
		lower = lower[:i]
	}
	for _, ext := range imageExts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

func findTag(n *html.Node, tag string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag {
			return c
		}
		if found := findTag(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// parseIndex reads li.toclevel-1 categories and their nested li.toclevel-2
// entries from a table-of-contents element.
func parseIndex(toc *html.Node) Index {
	var idx Index
	for _, catLI := range findAll(toc, "li", "toclevel-1") {
		span := findFirst(catLI, "span", "toctext")
		if span == nil {
			continue
		}
		cat := IndexCategory{Name: strings.TrimSpace(textOf(span))}
		for _, entryLI := range findAll(catLI, "li", "toclevel-2") {
			if s := findFirst(entryLI, "span", "toctext"); s != nil {
				cat.Entries = append(cat.Entries, strings.TrimSpace(textOf(s)))
			}
		}
		idx.Categories = append(idx.Categories, cat)
	}
	return idx
}

// findAll returns descendants of n (excluding n) with the given tag and class.
func findAll(n *html.Node, tag, class string) []*html.Node {
	var out []*html.Node
	var f func(*html.Node)
	f = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && c.Data == tag && hasClass(c, class) {
				out = append(out, c)
			}
			f(c)
		}
	}
	f(n)
	return out
}

func findFirst(n *html.Node, tag, class string) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == tag && hasClass(c, class) {
			return c
		}
		if found := findFirst(c, tag, class); found != nil {
			return found
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}
