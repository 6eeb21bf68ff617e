package sanitizer

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// maxDecodeRounds bounds how many layers of entity encoding StripHTML peels.
const maxDecodeRounds = 8

var (
	strictPolicy *bluemonday.Policy
	safePolicy   *bluemonday.Policy
	initOnce     sync.Once
)

func initPolicies() {
	initOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()

		// Basic formatting for free-text fields such as training descriptions.
		safePolicy = bluemonday.NewPolicy()
		safePolicy.AllowStandardURLs()
		safePolicy.AllowElements(
			"p", "br",
			"strong", "b", "em", "i",
			"ul", "ol", "li",
		)
		safePolicy.AllowAttrs("href").OnElements("a")
		safePolicy.RequireNoFollowOnLinks(true)
	})
}

// StripHTML removes all markup and returns trimmed plain text.
// Entities are decoded and the result stripped again until it stops changing,
// so encoded markup such as "&lt;script&gt;" is removed rather than revived.
// "Tom &amp; Jerry" is stored as "Tom & Jerry". Text that still contains
// angle brackets after that is returned entity-escaped.
func StripHTML(s string) string {
	initPolicies()

	for range maxDecodeRounds {
		next := html.UnescapeString(strictPolicy.Sanitize(s))
		if next == s {
			break
		}
		s = next
	}

	if strings.ContainsAny(s, "<>") {
		return strings.TrimSpace(strictPolicy.Sanitize(s))
	}
	return strings.TrimSpace(s)
}

// SanitizeHTML keeps basic formatting tags and drops everything executable.
func SanitizeHTML(s string) string {
	initPolicies()
	return strings.TrimSpace(safePolicy.Sanitize(s))
}
