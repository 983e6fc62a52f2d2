// Package sanitize inspects user-supplied event fields for HTML markup.
// Fields are always stored verbatim; callers only report what it finds.
package sanitize

import (
	"html"

	"github.com/microcosm-cc/bluemonday"
)

// strictPolicy removes every tag and attribute.
var strictPolicy = bluemonday.StrictPolicy()

// ContainsMarkup reports whether input carries tags or character
// references that a strict HTML policy would rewrite. Plain text,
// including bare "&" and "<" characters, reports false.
func ContainsMarkup(input string) bool {
	return html.UnescapeString(strictPolicy.Sanitize(input)) != input
}

// MarkupFields returns the names of the fields whose values contain markup,
// in the order given. Nil values are skipped.
func MarkupFields(fields map[string]*string, order ...string) []string {
	var out []string
	for _, name := range order {
		if v := fields[name]; v != nil && ContainsMarkup(*v) {
			out = append(out, name)
		}
	}
	return out
}
