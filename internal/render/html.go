package render

import (
	"regexp"
	"strings"
)

var (
	reListOpen  = regexp.MustCompile(`(?is)<ul[^>]*>`)
	reListClose = regexp.MustCompile(`(?i)</ul>`)
	reListItem  = regexp.MustCompile(`(?is)<li[^>]*>(.*?)</li>`)
	reAnyTag    = regexp.MustCompile(`<[^>]+>`)
)

// HTMLToPlain reduces the markup subset the host's rich-text editor produces
// to plain text: list containers vanish, list items become "• " bullet lines,
// every remaining tag is stripped. It is a best-effort reduction, not an HTML
// parser; arbitrary HTML is not guaranteed to render sensibly.
func HTMLToPlain(html string) string {
	s := reListOpen.ReplaceAllString(html, "")
	s = reListClose.ReplaceAllString(s, "")
	s = reListItem.ReplaceAllString(s, "• $1\n")
	s = reAnyTag.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
