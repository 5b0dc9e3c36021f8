package dispatch

import (
	"regexp"
	"strings"
)

// Mention placeholders survive in the message text after the platform
// resolves them; both the @-prefixed and bare forms occur.
var mentionMarkupRe = regexp.MustCompile(`@?_user_\d+`)

var spaceRunRe = regexp.MustCompile(`\s+`)

// CleanText strips mention markup from message text and collapses the
// whitespace the removal leaves behind.
func CleanText(s string) string {
	s = mentionMarkupRe.ReplaceAllString(s, "")
	s = spaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
