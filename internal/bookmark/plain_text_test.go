package bookmark

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestPlainText_EndToEnd(t *testing.T) {
	pf := Parse("")
	p := NewPlainText()
	require.Empty(t, p.Bookmarks(pf))

	pf.Upsert(rust(), nil)
	text := p.Bookmarks(pf)

	lines := strings.Split(strings.TrimSuffix(text, "\n"), "\n")
	require.Len(t, lines, 1)
	got, ok := FromLine(lines[0])
	require.True(t, ok)
	require.Equal(t, rust(), got)

	pf.Remove(rust().URL)
	require.Empty(t, p.Bookmarks(pf))
	require.Empty(t, p.Categories(pf))
}

func TestPlainText_SeparatorBetweenCategories(t *testing.T) {
	pf := Parse("")
	pf.Upsert(Bookmark{Title: "Rust", Category: "Lang", URL: "r"}, nil)
	pf.Upsert(Bookmark{Title: "Go", Category: "Lang", URL: "g"}, nil)
	pf.Upsert(Bookmark{Title: "HN", Category: "News", URL: "h"}, nil)

	text := NewPlainText().Bookmarks(pf)

	separator := strings.Repeat(SeparatorSymbol, 4+4+separatorOverhead)
	want := "{T}{Go}   {C}{Lang} {U}{g}\n" +
		"{T}{Rust} {C}{Lang} {U}{r}\n" +
		separator + "\n" +
		"{T}{HN}   {C}{News} {U}{h}\n"
	require.Equal(t, want, text)
}

func TestPlainText_InvalidLinesKeepTheirSlots(t *testing.T) {
	text := "{T}{b} {C}{x} {U}{2}\n" +
		"not a bookmark\n" +
		"{T}{a} {C}{x} {U}{1}\n"
	pf := Parse(text)
	p := NewPlainText()

	want := "{T}{a} {C}{x} {U}{1}\n" +
		"not a bookmark\n" +
		"{T}{b} {C}{x} {U}{2}\n"
	require.Equal(t, want, p.Bookmarks(pf))

	pf.Upsert(Bookmark{Title: "c", Category: "x", URL: "3"}, nil)
	lines := strings.Split(p.Bookmarks(pf), "\n")
	require.Equal(t, "not a bookmark", lines[1])
	require.Len(t, lines, 5)
}

func TestPlainText_InvalidLineAtStartKeepsAllBookmarks(t *testing.T) {
	pf := Parse("# my bookmarks\n{T}{a} {C}{x} {U}{1}\n{T}{b} {C}{x} {U}{2}\n")

	text := NewPlainText().Bookmarks(pf)

	require.Equal(t, "# my bookmarks\n{T}{a} {C}{x} {U}{1}\n{T}{b} {C}{x} {U}{2}\n", text)
}

func TestPlainText_InvalidLinePastTheEnd(t *testing.T) {
	pf := Parse("{T}{a} {C}{x} {U}{1}\n\n\n\n\ntrailing note\n")

	text := NewPlainText().Bookmarks(pf)

	require.Equal(t, "{T}{a} {C}{x} {U}{1}\ntrailing note\n", text)
}

func TestPlainText_ReparseIsStable(t *testing.T) {
	text := "{T}{Rust}  {C}{Lang} {U}{r}\nnote\n{T}{HN} {C}{News} {U}{h}\n"
	first := NewPlainText().Bookmarks(Parse(text))
	second := NewPlainText().Bookmarks(Parse(first))
	require.Equal(t, first, second)
}

func TestPlainText_NoteAfterSeparatorStaysPut(t *testing.T) {
	text := "{T}{a} {C}{x} {U}{1}\n" +
		"{T}{b} {C}{y} {U}{2}\n" +
		"note\n" +
		"{T}{c} {C}{y} {U}{3}\n"
	first := NewPlainText().Bookmarks(Parse(text))

	separator := strings.Repeat(SeparatorSymbol, 1+1+separatorOverhead)
	want := "{T}{a} {C}{x} {U}{1}\n" +
		separator + "\n" +
		"note\n" +
		"{T}{b} {C}{y} {U}{2}\n" +
		"{T}{c} {C}{y} {U}{3}\n"
	require.Equal(t, want, first)

	second := NewPlainText().Bookmarks(Parse(first))
	require.Equal(t, first, second)
}

func TestPlainText_NoteBetweenRecordsAfterSeparator(t *testing.T) {
	text := "{T}{a} {C}{x} {U}{1}\n" +
		strings.Repeat(SeparatorSymbol, 10) + "\n" +
		"{T}{b} {C}{y} {U}{2}\n" +
		"note\n" +
		"{T}{c} {C}{y} {U}{3}\n"

	require.Equal(t, text, NewPlainText().Bookmarks(Parse(text)))
}

// TestProperty_RenderIsStableAcrossReparse checks that writing a file and
// reading it back keeps every preserved line where it was.
func TestProperty_RenderIsStableAcrossReparse(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		categories := []string{"Dev", "Lang", "News", "Music"}
		titles := []string{"Go", "Rust", "A longer title", "z"}

		var sb strings.Builder
		lines := rapid.IntRange(0, 25).Draw(t, "lines")
		for i := range lines {
			switch rapid.IntRange(0, 3).Draw(t, "kind") {
			case 0:
				fmt.Fprintf(&sb, "# note %d\n", i)
			case 1:
				sb.WriteString(strings.Repeat(SeparatorSymbol, rapid.IntRange(1, 20).Draw(t, "dashes")) + "\n")
			default:
				b := Bookmark{
					Title:    rapid.SampledFrom(titles).Draw(t, "title"),
					Category: rapid.SampledFrom(categories).Draw(t, "category"),
					URL:      fmt.Sprintf("https://example.com/%d", rapid.IntRange(0, 10).Draw(t, "url")),
				}
				sb.WriteString(b.ToLine(0, 0))
			}
		}

		first := NewPlainText().Bookmarks(Parse(sb.String()))
		second := NewPlainText().Bookmarks(Parse(first))
		if first != second {
			t.Fatalf("render changed after reparse:\n%s\n---\n%s", first, second)
		}
	})
}

func TestPlainText_CachesUntilVersionChanges(t *testing.T) {
	pf := Parse("")
	pf.Upsert(rust(), nil)
	p := NewPlainText()

	first := p.Bookmarks(pf)
	version := p.bookmarksVersion
	require.Equal(t, first, p.Bookmarks(pf))
	require.Equal(t, version, p.bookmarksVersion)

	same := rust()
	pf.Upsert(rust(), &same)
	require.Equal(t, version, p.bookmarksVersion)

	pf.Upsert(Bookmark{Title: "Go", Category: "Lang", URL: "g"}, nil)
	require.NotEqual(t, first, p.Bookmarks(pf))
	require.Equal(t, pf.BookmarksVersion(), p.bookmarksVersion)
}

func TestPlainText_Categories(t *testing.T) {
	pf := Parse("")
	p := NewPlainText()
	pf.Upsert(Bookmark{Title: "a", Category: "b-2", URL: "1"}, nil)
	pf.Upsert(Bookmark{Title: "a", Category: "A1", URL: "2"}, nil)
	pf.Upsert(Bookmark{Title: "a", Category: "a-10", URL: "3"}, nil)

	require.Equal(t, "A1\na-10\nb-2\n", p.Categories(pf))

	version := pf.CategoriesVersion()
	pf.Upsert(Bookmark{Title: "b", Category: "A1", URL: "4"}, nil)
	require.Equal(t, version, pf.CategoriesVersion(), "reusing a category keeps the listing")
	require.Equal(t, "A1\na-10\nb-2\n", p.Categories(pf))
}

func TestPlainText_FlushSkipsUnedited(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	pf := Parse("")

	require.NoError(t, NewPlainText().Flush(path, pf))

	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestPlainText_FlushWritesEdits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks")
	require.NoError(t, os.WriteFile(path, []byte("note\n"), 0o600))

	pf, err := ReadFile(path)
	require.NoError(t, err)
	pf.Upsert(rust(), nil)
	require.NoError(t, NewPlainText().Flush(path, pf))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "note\n"+rust().ToLine(4, 4), string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPlainText_FlushReportsIOError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "bookmarks")
	pf := Parse("")
	pf.Upsert(rust(), nil)

	require.Error(t, NewPlainText().Flush(path, pf))
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestTemplate(t *testing.T) {
	pf := Parse(Template())
	require.Equal(t, 1, pf.Len())
	b, ok := pf.Get(Default().URL)
	require.True(t, ok)
	require.Equal(t, Default(), b)
}
