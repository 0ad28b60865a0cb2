// Package htmlsanitize cleans text that arrives from outside the application
// (identity provider profiles, form input) before it is stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// maxRounds bounds how many layers of entity encoding PlainText peels.
const maxRounds = 8

// PlainText strips every HTML element from s and returns the remaining text
// unescaped and trimmed, so names like "O'Neil" survive intact while markup
// does not. Entity-encoded markup is decoded and stripped too; the result is
// stable under another PlainText.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	for i := 0; i < maxRounds; i++ {
		next := html.UnescapeString(strict.Sanitize(html.UnescapeString(s)))
		if next == s {
			return strings.TrimSpace(s)
		}
		s = next
	}
	// Still decoding: keep the escaped form.
	return strings.TrimSpace(strict.Sanitize(s))
}
