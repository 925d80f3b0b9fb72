package sheets

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	genericList = cascadia.MustCompile(`.item-list`)
	genericItem = cascadia.MustCompile(`.item[data-item-id]`)
)

// GenericFinder matches the stock sheet layout: every .item-list is a
// section and its .item nodes with a non-empty data-item-id are the items.
// The reference node is the first non-item element after the last item, so
// footers and controls stay below the list.
func GenericFinder(root *html.Node) []Section {
	var sections []Section
	for _, list := range cascadia.QueryAll(root, genericList) {
		var nodes []*html.Node
		for _, n := range cascadia.QueryAll(list, genericItem) {
			if attr(n, "data-item-id") != "" {
				nodes = append(nodes, n)
			}
		}
		if len(nodes) == 0 {
			continue
		}
		sections = append(sections, Section{
			Container: list,
			Items:     nodes,
			Reference: trailingReference(nodes[len(nodes)-1]),
		})
	}
	return sections
}

// trailingReference skips forward over item siblings of last and returns
// the first other element.
func trailingReference(last *html.Node) *html.Node {
	for s := nextElement(last); s != nil; s = nextElement(s) {
		if !genericItem.Match(s) {
			return s
		}
	}
	return nil
}
