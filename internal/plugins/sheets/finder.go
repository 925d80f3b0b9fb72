package sheets

import (
	"strings"

	"golang.org/x/net/html"
)

// Section is one item list inside a rendered panel: the container the item
// nodes live in, the nodes in document order, and the node sorted items are
// inserted before. A nil Reference appends to the container.
type Section struct {
	Container *html.Node
	Items     []*html.Node
	Reference *html.Node
}

// Finder recognizes a panel layout and returns its sections, or nil when the
// layout is not its own.
type Finder func(root *html.Node) []Section

// DefaultFinders is the recognizer chain, most specific layout first.
var DefaultFinders = []Finder{Tidy5eFinder, GenericFinder}

// FindSections runs the finders in order and returns the first non-empty
// result.
func FindSections(root *html.Node, finders []Finder) []Section {
	if root == nil {
		return nil
	}
	for _, find := range finders {
		if sections := find(root); len(sections) > 0 {
			return sections
		}
	}
	return nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// nextElement returns the next element sibling of n.
func nextElement(n *html.Node) *html.Node {
	for s := n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return s
		}
	}
	return nil
}
