package sheets

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

var (
	tidyTable     = cascadia.MustCompile(`[data-tidy-sheet-part="item-table"]`)
	tidyItems     = cascadia.MustCompile(`.items`)
	tidyItem      = cascadia.MustCompile(`[data-item-id]`)
	tidyReference = cascadia.MustCompile(`[data-item-id] + :not([data-item-id])`)
)

// Tidy5eFinder matches the Tidy5e sheet. It only applies when the root
// carries one of the Tidy5e classes; each item table is a section, using
// its .items body when present.
func Tidy5eFinder(root *html.Node) []Section {
	if !hasClass(root, "tidy5e-sheet") && !hasClass(root, "tidy5e-kgar") {
		return nil
	}

	var sections []Section
	for _, table := range cascadia.QueryAll(root, tidyTable) {
		container := cascadia.Query(table, tidyItems)
		if container == nil {
			container = table
		}
		nodes := cascadia.QueryAll(container, tidyItem)
		if len(nodes) == 0 {
			continue
		}
		sections = append(sections, Section{
			Container: container,
			Items:     nodes,
			Reference: cascadia.Query(container, tidyReference),
		})
	}
	return sections
}
