// Package bookmark implements the bookmark file format: the line codec, the
// in-memory index of a parsed file and the lazily re-rendered plain text fed
// to the menu program.
package bookmark

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	TitleMarker    = "T"
	TitleMaxLength = 35

	CategoryMarker    = "C"
	CategoryMaxLength = 35

	URLMarker = "U"
	// URLMaxLength is measured in bytes, unlike the other two fields.
	URLMaxLength = 2048

	segmentStart = '{'
	segmentEnd   = '}'
)

// ErrInvalidField is returned by Validate for a field that cannot be stored.
var ErrInvalidField = errors.New("invalid bookmark field")

// Bookmark is one entry of the bookmark file. The URL is its identity.
type Bookmark struct {
	Title    string
	Category string
	URL      string
}

// New returns a Bookmark with surrounding whitespace removed from every field.
func New(title, category, url string) Bookmark {
	return Bookmark{
		Title:    strings.TrimSpace(title),
		Category: strings.TrimSpace(category),
		URL:      strings.TrimSpace(url),
	}
}

// Default is the bookmark written to a freshly created bookmark file.
func Default() Bookmark {
	return Bookmark{
		Title:    "Project's Github",
		Category: "Development",
		URL:      "https://github.com/vannrr/fmark",
	}
}

// Validate reports whether b can be stored. Titles and categories over their
// limits are truncated when written; a URL must fit since it is the identity
// the bookmark is found by when read back.
func (b Bookmark) Validate() error {
	fields := []struct {
		name  string
		value string
	}{
		{"title", b.Title},
		{"category", b.Category},
		{"url", b.URL},
	}
	for _, f := range fields {
		if f.value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidField, f.name)
		}
		if strings.ContainsAny(f.value, "{}\r\n") {
			return fmt.Errorf("%w: %s must not contain braces or line breaks", ErrInvalidField, f.name)
		}
		if f.value != strings.TrimSpace(f.value) {
			return fmt.Errorf("%w: %s has surrounding whitespace", ErrInvalidField, f.name)
		}
	}
	if len(b.URL) > URLMaxLength {
		return fmt.Errorf("%w: url is longer than %d bytes", ErrInvalidField, URLMaxLength)
	}
	return nil
}

// ToLine encodes b as one line of the bookmark file, newline included.
// titleWidth and categoryWidth are the widths of the longest title and
// category in the file; the padding after each field aligns the columns.
func (b Bookmark) ToLine(titleWidth, categoryWidth int) string {
	title := truncateRunes(b.Title, TitleMaxLength)
	category := truncateRunes(b.Category, CategoryMaxLength)
	url := truncateBytes(b.URL, URLMaxLength)

	titlePad := padding(titleWidth, utf8.RuneCountInString(title), TitleMaxLength)
	categoryPad := padding(categoryWidth, utf8.RuneCountInString(category), CategoryMaxLength)

	var sb strings.Builder
	sb.Grow(len(title) + len(category) + len(url) + titlePad + categoryPad + 19)
	writeSegment(&sb, TitleMarker, title)
	sb.WriteString(strings.Repeat(" ", titlePad))
	writeSegment(&sb, CategoryMarker, category)
	sb.WriteString(strings.Repeat(" ", categoryPad))
	writeSegment(&sb, URLMarker, url)
	sb.WriteByte('\n')
	return sb.String()
}

// FromLine decodes a line produced by ToLine. It reports false for anything
// that is not exactly three marker/value segment pairs covering T, C and U.
func FromLine(line string) (Bookmark, bool) {
	segments := scanSegments(line)
	if len(segments) != 6 {
		return Bookmark{}, false
	}

	var title, category, url *string
	for i := 0; i < len(segments); i += 2 {
		marker := strings.TrimSpace(trimBraces(segments[i]))
		field := strings.TrimSpace(trimBraces(segments[i+1]))
		switch marker {
		case TitleMarker:
			title = &field
		case CategoryMarker:
			category = &field
		case URLMarker:
			url = &field
		}
	}
	if title == nil || category == nil || url == nil {
		return Bookmark{}, false
	}
	return Bookmark{Title: *title, Category: *category, URL: *url}, true
}

// scanSegments returns every brace-delimited run of line, braces included.
// An opening brace inside an open segment is kept as content.
func scanSegments(line string) []string {
	var segments []string
	start := -1
	for i, r := range line {
		switch {
		case r == segmentStart && start < 0:
			start = i
		case r == '\n' && start >= 0:
			start = -1
		case r == segmentEnd && start >= 0:
			segments = append(segments, line[start:i+1])
			start = -1
		}
	}
	return segments
}

func trimBraces(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return r == segmentStart || r == segmentEnd
	})
}

func writeSegment(sb *strings.Builder, marker, value string) {
	sb.WriteByte(segmentStart)
	sb.WriteString(marker)
	sb.WriteByte(segmentEnd)
	sb.WriteByte(segmentStart)
	sb.WriteString(value)
	sb.WriteByte(segmentEnd)
}

// padding is the number of spaces that follow a field of n runes so that the
// next column starts one space after the widest field, capped at limit.
func padding(width, n, limit int) int {
	if width >= limit-1 {
		width = limit
	}
	if width < n {
		return 1
	}
	return width - n + 1
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}

// truncateBytes cuts s to at most n bytes without splitting a rune.
func truncateBytes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// fieldWidth is the rendered width of a title or category.
func fieldWidth(s string, limit int) int {
	return min(utf8.RuneCountInString(s), limit)
}
