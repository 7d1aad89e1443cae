package session

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// maxTitleLength bounds derived session titles.
const maxTitleLength = 50

// titlePrefixes are common imperative openers stripped before deriving a title
// from the first user message.
var titlePrefixes = []string{
	"show me",
	"what are",
	"get",
	"tell me",
	"give me",
	"i want",
	"i need",
}

// DeriveTitle builds a session title from the first user message: common
// imperative prefixes are trimmed, the first letter is capitalized and the
// result is truncated to maxTitleLength runes with an ellipsis marker.
func DeriveTitle(content string) string {
	title := strings.TrimSpace(content)

	lower := strings.ToLower(title)
	for _, prefix := range titlePrefixes {
		if strings.HasPrefix(lower, prefix) {
			title = strings.TrimSpace(title[len(prefix):])
			break
		}
	}

	if title == "" {
		return "New Chat"
	}

	r, size := utf8.DecodeRuneInString(title)
	title = string(unicode.ToUpper(r)) + title[size:]

	if utf8.RuneCountInString(title) > maxTitleLength {
		runes := []rune(title)
		title = strings.TrimSpace(string(runes[:maxTitleLength])) + "..."
	}
	return title
}
