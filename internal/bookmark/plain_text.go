package bookmark

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/vannrr/fmark/internal/log"
)

const separatorOverhead = 8

// PlainText caches the text renderings of a ParsedFile. Each rendering is
// rebuilt only when the matching version of the ParsedFile moved on since it
// was last produced.
type PlainText struct {
	bookmarks         string
	bookmarksVersion  uint64
	bookmarksRendered bool

	categories         string
	categoriesVersion  uint64
	categoriesRendered bool
}

// NewPlainText returns an empty cache.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// Bookmarks returns the full listing of pf: bookmarks sorted by category and
// title, a separator line between categories and the invalid lines of the
// original file back at their original positions.
func (p *PlainText) Bookmarks(pf *ParsedFile) string {
	if p.bookmarksRendered && p.bookmarksVersion == pf.BookmarksVersion() {
		return p.bookmarks
	}
	p.bookmarks = renderBookmarks(pf)
	p.bookmarksVersion = pf.BookmarksVersion()
	p.bookmarksRendered = true
	log.Debug(log.CatRender, "rendered bookmarks", "version", p.bookmarksVersion, "bytes", len(p.bookmarks))
	return p.bookmarks
}

// Categories returns the category names of pf, one per line.
func (p *PlainText) Categories(pf *ParsedFile) string {
	if p.categoriesRendered && p.categoriesVersion == pf.CategoriesVersion() {
		return p.categories
	}
	var sb strings.Builder
	for _, name := range pf.Categories() {
		sb.WriteString(name)
		sb.WriteByte('\n')
	}
	p.categories = sb.String()
	p.categoriesVersion = pf.CategoriesVersion()
	p.categoriesRendered = true
	log.Debug(log.CatRender, "rendered categories", "version", p.categoriesVersion)
	return p.categories
}

// Flush writes the bookmark listing to path when pf was edited. The file is
// replaced atomically and keeps its permissions.
func (p *PlainText) Flush(path string, pf *ParsedFile) error {
	if !pf.Edited() {
		log.Debug(log.CatStore, "bookmark file unchanged, skipping write", "path", path)
		return nil
	}
	p.bookmarksRendered = false
	if err := WriteFile(path, p.Bookmarks(pf)); err != nil {
		log.ErrorErr(log.CatStore, "failed to write bookmark file", err, "path", path)
		return err
	}
	log.Info(log.CatStore, "wrote bookmark file", "path", path, "bookmarks", pf.Len())
	return nil
}

// ReadFile reads a bookmark file and parses it.
func ReadFile(path string) (*ParsedFile, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is the user's bookmark file
	if err != nil {
		return nil, fmt.Errorf("reading bookmark file: %w", err)
	}
	return Parse(string(data)), nil
}

// WriteFile replaces path with text using a temp file and a rename.
func WriteFile(path, text string) error {
	mode := fs.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	dir := filepath.Dir(path)
	temp, err := os.CreateTemp(dir, ".fmark.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.WriteString(text); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Chmod(mode); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

// Template is the content of a new bookmark file.
func Template() string {
	pf := Parse("")
	pf.Upsert(Default(), nil)
	return NewPlainText().Bookmarks(pf)
}

func renderBookmarks(pf *ParsedFile) string {
	bookmarks := pf.Bookmarks()
	invalid := pf.InvalidLines()
	titleWidth := pf.LongestTitle()
	categoryWidth := pf.LongestCategory()
	separator := strings.Repeat(SeparatorSymbol, titleWidth+categoryWidth+separatorOverhead) + "\n"

	var sb strings.Builder
	var category *string
	// Every written line is a slot, separators included, so slot numbers are
	// the line numbers Parse sees when the output is read back. Invalid lines
	// hold fixed slots; bookmarks fill the others in order. Slots past the
	// end of the listing are flushed at the end.
	for slot := 0; len(bookmarks) > 0 || len(invalid) > 0; slot++ {
		if len(invalid) > 0 && (invalid[0].Number <= slot || len(bookmarks) == 0) {
			sb.WriteString(invalid[0].Text)
			sb.WriteByte('\n')
			invalid = invalid[1:]
			continue
		}
		b := bookmarks[0]
		if category != nil && *category != b.Category {
			sb.WriteString(separator)
			category = nil
			continue
		}
		bookmarks = bookmarks[1:]
		category = &b.Category
		sb.WriteString(b.ToLine(titleWidth, categoryWidth))
	}
	return sb.String()
}
