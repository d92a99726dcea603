package bookmark

import (
	"maps"
	"slices"
	"strings"

	"github.com/vannrr/fmark/internal/log"
)

const (
	// SeparatorSymbol fills the lines drawn between categories.
	SeparatorSymbol = "-"
	// AddBookmarkLabel is centred in the extra menu entry used to add a bookmark.
	AddBookmarkLabel = " Add Bookmark "

	addOptionOverhead = 11
)

// InvalidLine is a line of the original file that is not a bookmark. Number
// is its 0-based position among all lines of that file.
type InvalidLine struct {
	Number int
	Text   string
}

// ParsedFile is the in-memory index of a bookmark file.
type ParsedFile struct {
	bookmarks    map[string]Bookmark
	invalidLines map[int]string
	categories   categorySet
	titles       widthTracker
	categoryCols widthTracker

	bookmarksVersion  uint64
	categoriesVersion uint64
	edited            bool
}

// Parse indexes the contents of a bookmark file. It never fails: lines that
// are not bookmarks are kept as invalid lines, except blank lines and lines
// made only of separator symbols, which are dropped.
func Parse(text string) *ParsedFile {
	pf := &ParsedFile{
		bookmarks:    make(map[string]Bookmark),
		invalidLines: make(map[int]string),
		categories:   newCategorySet(),
		titles:       newWidthTracker(TitleMaxLength),
		categoryCols: newWidthTracker(CategoryMaxLength),
	}

	for i, line := range splitLines(text) {
		trimmed := strings.TrimSpace(line)
		if isFiller(trimmed) {
			continue
		}
		b, ok := FromLine(trimmed)
		if !ok {
			pf.invalidLines[i] = line
			continue
		}
		if old, dup := pf.bookmarks[b.URL]; dup {
			pf.untrack(old)
		}
		pf.track(b)
	}

	log.Debug(log.CatIndex, "parsed bookmark file",
		"bookmarks", len(pf.bookmarks),
		"invalid_lines", len(pf.invalidLines),
		"categories", len(pf.categories.names()))
	return pf
}

// splitLines splits on "\n" and strips a trailing "\r" from each line. A
// final newline does not start another line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// isFiller reports whether a trimmed line carries nothing worth keeping.
func isFiller(trimmed string) bool {
	return strings.Trim(trimmed, SeparatorSymbol) == ""
}

// Len returns the number of bookmarks.
func (pf *ParsedFile) Len() int {
	return len(pf.bookmarks)
}

// Get returns the bookmark stored under url.
func (pf *ParsedFile) Get(url string) (Bookmark, bool) {
	b, ok := pf.bookmarks[url]
	return b, ok
}

// Bookmarks returns all bookmarks in listing order.
func (pf *ParsedFile) Bookmarks() []Bookmark {
	all := slices.Collect(maps.Values(pf.bookmarks))
	slices.SortFunc(all, compareBookmarks)
	return all
}

// Categories returns the sorted category names in use. The slice must not be
// modified.
func (pf *ParsedFile) Categories() []string {
	return pf.categories.names()
}

// InvalidLines returns the preserved lines ordered by their original position.
func (pf *ParsedFile) InvalidLines() []InvalidLine {
	lines := make([]InvalidLine, 0, len(pf.invalidLines))
	for _, n := range slices.Sorted(maps.Keys(pf.invalidLines)) {
		lines = append(lines, InvalidLine{Number: n, Text: pf.invalidLines[n]})
	}
	return lines
}

// LongestTitle is the rendered width of the widest title.
func (pf *ParsedFile) LongestTitle() int {
	return pf.titles.Longest()
}

// LongestCategory is the rendered width of the widest category.
func (pf *ParsedFile) LongestCategory() int {
	return pf.categoryCols.Longest()
}

// Edited reports whether any mutation changed the index since Parse.
func (pf *ParsedFile) Edited() bool {
	return pf.edited
}

// BookmarksVersion increases every time the bookmark listing changes.
func (pf *ParsedFile) BookmarksVersion() uint64 {
	return pf.bookmarksVersion
}

// CategoriesVersion increases every time a category appears or disappears.
func (pf *ParsedFile) CategoriesVersion() uint64 {
	return pf.categoriesVersion
}

// Upsert stores b, replacing old when given. A nil old still replaces a
// bookmark already stored under b.URL. Replacing a bookmark with an identical
// one changes nothing.
func (pf *ParsedFile) Upsert(b Bookmark, old *Bookmark) {
	if old != nil && *old == b {
		return
	}
	if old == nil {
		if existing, ok := pf.bookmarks[b.URL]; ok {
			if existing == b {
				return
			}
			old = &existing
		}
	}

	var replaced []Bookmark
	if old != nil {
		if stored, ok := pf.bookmarks[old.URL]; ok {
			replaced = append(replaced, stored)
		}
	}
	// The new URL may belong to a bookmark other than old.
	if clash, ok := pf.bookmarks[b.URL]; ok && (len(replaced) == 0 || replaced[0].URL != b.URL) {
		replaced = append(replaced, clash)
	}

	// Count the new bookmark before releasing the old ones so that a category
	// shared by both never drops to zero on the way.
	categoriesChanged := pf.count(b)
	for _, r := range replaced {
		categoriesChanged = pf.untrack(r) || categoriesChanged
	}
	pf.bookmarks[b.URL] = b

	pf.bookmarksVersion++
	if categoriesChanged {
		pf.categoriesVersion++
	}
	pf.edited = true
	log.Debug(log.CatIndex, "upserted bookmark", "url", b.URL, "replaced", old != nil)
}

// Remove deletes the bookmark stored under url, if any.
func (pf *ParsedFile) Remove(url string) {
	b, ok := pf.bookmarks[url]
	if !ok {
		return
	}
	if pf.untrack(b) {
		pf.categoriesVersion++
	}
	pf.bookmarksVersion++
	pf.edited = true
	log.Debug(log.CatIndex, "removed bookmark", "url", url)
}

// AddBookmarkOption returns AddBookmarkLabel centred in separator symbols,
// sized to the current column widths.
func (pf *ParsedFile) AddBookmarkOption() string {
	total := pf.LongestTitle() + pf.LongestCategory() + addOptionOverhead
	pad := max(0, total-len([]rune(AddBookmarkLabel)))
	left := pad / 2
	return strings.Repeat(SeparatorSymbol, left) + AddBookmarkLabel + strings.Repeat(SeparatorSymbol, pad-left)
}

// track inserts b and reports whether its category is new.
func (pf *ParsedFile) track(b Bookmark) bool {
	pf.bookmarks[b.URL] = b
	return pf.count(b)
}

// count adds b to the width trackers and the category set.
func (pf *ParsedFile) count(b Bookmark) bool {
	pf.titles.add(fieldWidth(b.Title, TitleMaxLength))
	pf.categoryCols.add(fieldWidth(b.Category, CategoryMaxLength))
	return pf.categories.add(b.Category)
}

// untrack deletes b and reports whether its category disappeared.
func (pf *ParsedFile) untrack(b Bookmark) bool {
	delete(pf.bookmarks, b.URL)
	pf.titles.remove(fieldWidth(b.Title, TitleMaxLength))
	pf.categoryCols.remove(fieldWidth(b.Category, CategoryMaxLength))
	return pf.categories.remove(b.Category)
}
