// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package document models a fetched wiki page as an ordered sequence of
// heading and content-block nodes plus an optional table-of-contents index.
package document

import "strings"

// Kind distinguishes heading nodes from content blocks.
type Kind int

const (
	KindHeading Kind = iota + 1
	KindBlock
)

// Node is one heading or block-level element in document order.
type Node struct {
	Kind Kind
	// Tag is the element name (h2, p, ul, ...).
	Tag string
	// Level is the heading level (1..6); zero for blocks.
	Level int
	// Text is the element text. Heading text is trimmed; block text is raw.
	Text string
	// Images holds the image URLs found in a block, as written in the markup.
	Images []string
	// Parent groups siblings: nodes with the same Parent share a parent element.
	Parent int
}

// IndexCategory is one first-level table-of-contents entry and the
// second-level entries nested under it.
type IndexCategory struct {
	Name    string
	Entries []string
}

// Index is the two-level navigational index of a document.
type Index struct {
	Categories []IndexCategory
}

// Document is a read-only view over a parsed page.
type Document struct {
	nodes []Node
	index *Index
}

// FromNodes builds a document from already-flattened nodes. A nil index
// means the document has no table of contents.
func FromNodes(nodes []Node, index *Index) *Document {
	return &Document{nodes: nodes, index: index}
}

// Len returns the number of nodes.
func (d *Document) Len() int {
	return len(d.nodes)
}

// Node returns the node at position i.
func (d *Document) Node(i int) Node {
	return d.nodes[i]
}

// Index returns the table of contents, if the document has one.
func (d *Document) Index() (Index, bool) {
	if d.index == nil {
		return Index{}, false
	}
	return *d.index, true
}

// Headings returns the positions of all heading nodes in document order.
func (d *Document) Headings() []int {
	var out []int
	for i, n := range d.nodes {
		if n.Kind == KindHeading {
			out = append(out, i)
		}
	}
	return out
}

// FollowingBlocks returns up to limit content blocks that follow the heading
// at position i under the same parent. It stops at the next sibling heading
// of equal or higher rank (level <= the heading's level).
func (d *Document) FollowingBlocks(i, limit int) []Node {
	if i < 0 || i >= len(d.nodes) || limit <= 0 {
		return nil
	}
	h := d.nodes[i]
	var out []Node
	for j := i + 1; j < len(d.nodes) && d.nodes[j].Parent == h.Parent; j++ {
		n := d.nodes[j]
		if n.Kind == KindHeading {
			if n.Level <= h.Level {
				break
			}
			continue
		}
		out = append(out, n)
		if len(out) == limit {
			break
		}
	}
	return out
}

// FindHeading returns the position of the first heading within
// [minLevel, maxLevel] whose text equals text ignoring case, or failing
// that, the first whose text contains it ignoring case.
func (d *Document) FindHeading(text string, minLevel, maxLevel int) (int, bool) {
	needle := strings.ToLower(text)
	contains := -1
	for i, n := range d.nodes {
		if n.Kind != KindHeading || n.Level < minLevel || n.Level > maxLevel {
			continue
		}
		hay := strings.ToLower(n.Text)
		if hay == needle {
			return i, true
		}
		if contains < 0 && strings.Contains(hay, needle) {
			contains = i
		}
	}
	return contains, contains >= 0
}
