// internal/app/system/htmlsanitize/htmlsanitize.go
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict removes every tag; bluemonday policies are safe for concurrent use.
var strict = bluemonday.StrictPolicy()

// PlainText strips markup from user input that is stored as text (names,
// template bodies, sender ids) and trims surrounding space. Entities are
// decoded again so "&" survives as "&" in an SMS.
func PlainText(s string) string {
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// IsPlainText reports whether s contains no tag-like markup.
func IsPlainText(s string) bool {
	lt := strings.IndexByte(s, '<')
	return lt < 0 || strings.IndexByte(s[lt:], '>') < 0
}
