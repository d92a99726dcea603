package bookmark

import (
	"cmp"
	"strings"
)

// Compare orders two strings by their ASCII letters and digits only, case
// folded. Punctuation, whitespace and non-ASCII characters are ignored, so
// "A-1" and "a1" compare equal. A string that is a prefix of the other sorts
// first.
func Compare(a, b string) int {
	return strings.Compare(alphanumericKey(a), alphanumericKey(b))
}

func alphanumericKey(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', '0' <= c && c <= '9':
			sb.WriteByte(c)
		case 'A' <= c && c <= 'Z':
			sb.WriteByte(c + 'a' - 'A')
		}
	}
	return sb.String()
}

// compareCategory is Compare made total: names equal under Compare fall back
// to plain string order so distinct names never collide.
func compareCategory(a, b string) int {
	return cmp.Or(Compare(a, b), strings.Compare(a, b))
}

// compareBookmarks orders bookmarks by category then title, with the raw
// strings and the URL as tie-breakers.
func compareBookmarks(a, b Bookmark) int {
	return cmp.Or(
		Compare(a.Category, b.Category),
		Compare(a.Title, b.Title),
		strings.Compare(a.Category, b.Category),
		strings.Compare(a.Title, b.Title),
		strings.Compare(a.URL, b.URL),
	)
}
