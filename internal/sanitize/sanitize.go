// Package sanitize cleans panel markup submitted for rendering. Uses
// bluemonday to strip scripts, event handlers and javascript: URLs while
// keeping the class and data attributes the panel finders key on.
package sanitize

import (
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the shared bluemonday policy, built once.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.UGCPolicy()

		// Finders select on classes, item ids and Tidy5e part markers.
		policy.AllowAttrs("class").Globally()
		policy.AllowAttrs("data-item-id", "data-tidy-sheet-part").Globally()
		policy.AllowAttrs("id").Globally()

		policy.AllowElements("section", "header", "footer", "ol", "ul", "li", "div", "span", "h3", "h4")
		policy.AllowElements("table", "thead", "tbody", "tfoot", "tr", "td", "th")

		// Tidy5e grid view renders each item as a button.
		policy.AllowElements("button", "i")
		policy.AllowAttrs("type", "tabindex").OnElements("button")
		policy.AllowAttrs("title").Globally()
	})
	return policy
}

// HTML sanitizes panel markup. Empty input returns empty output.
func HTML(input string) string {
	if input == "" {
		return ""
	}
	return getPolicy().Sanitize(input)
}
