package bookmark

import (
	"maps"
	"slices"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func rust() Bookmark {
	return Bookmark{Title: "Rust", Category: "Lang", URL: "https://rust-lang.org"}
}

func TestParse_SingleBookmark(t *testing.T) {
	b := Default()
	titleWidth := utf8.RuneCountInString(b.Title)
	categoryWidth := utf8.RuneCountInString(b.Category)

	pf := Parse(b.ToLine(titleWidth, categoryWidth))

	require.Equal(t, 1, pf.Len())
	require.Empty(t, pf.InvalidLines())
	require.Equal(t, titleWidth, pf.LongestTitle())
	require.Equal(t, categoryWidth, pf.LongestCategory())
	require.Equal(t, []string{"Development"}, pf.Categories())
	require.False(t, pf.Edited())
}

func TestParse_Empty(t *testing.T) {
	pf := Parse("")
	require.Zero(t, pf.Len())
	require.Empty(t, pf.Categories())
	require.Zero(t, pf.LongestTitle())
	require.Zero(t, pf.LongestCategory())
}

func TestParse_InvalidLinesKeepOriginalNumbers(t *testing.T) {
	text := strings.Join([]string{
		"{T}{Go}   {C}{Lang} {U}{https://go.dev}",
		"",
		"-----------------",
		"  not a bookmark  ",
		"{T}{Rust} {C}{Lang} {U}{https://rust-lang.org}",
		"-- a note",
		"   ",
	}, "\n") + "\n"

	pf := Parse(text)

	require.Equal(t, 2, pf.Len())
	require.Equal(t, []InvalidLine{
		{Number: 3, Text: "  not a bookmark  "},
		{Number: 5, Text: "-- a note"},
	}, pf.InvalidLines())
}

func TestParse_StripsCarriageReturns(t *testing.T) {
	pf := Parse("{T}{Go} {C}{Lang} {U}{https://go.dev}\r\nnote\r\n")

	b, ok := pf.Get("https://go.dev")
	require.True(t, ok)
	require.Equal(t, "Go", b.Title)
	require.Equal(t, []InvalidLine{{Number: 1, Text: "note"}}, pf.InvalidLines())
}

func TestParse_DuplicateURLLastWins(t *testing.T) {
	pf := Parse("{T}{Old} {C}{A} {U}{u}\n{T}{New} {C}{B} {U}{u}\n")

	require.Equal(t, 1, pf.Len())
	b, _ := pf.Get("u")
	require.Equal(t, "New", b.Title)
	require.Equal(t, []string{"B"}, pf.Categories())
	require.Equal(t, 3, pf.LongestTitle())
}

func TestUpsert_Add(t *testing.T) {
	pf := Parse("")
	b := Default()

	pf.Upsert(b, nil)

	require.Equal(t, 1, pf.Len())
	require.Equal(t, []string{"Development"}, pf.Categories())
	require.True(t, pf.Edited())
	require.Equal(t, utf8.RuneCountInString(b.Title), pf.LongestTitle())
	require.Equal(t, uint64(1), pf.BookmarksVersion())
	require.Equal(t, uint64(1), pf.CategoriesVersion())
}

func TestUpsert_Modify(t *testing.T) {
	pf := Parse("")
	old := Default()
	pf.Upsert(old, nil)

	updated := Bookmark{Title: "new title", Category: "new category", URL: "new url"}
	pf.Upsert(updated, &old)

	require.Equal(t, 1, pf.Len())
	_, ok := pf.Get(old.URL)
	require.False(t, ok)
	got, ok := pf.Get("new url")
	require.True(t, ok)
	require.Equal(t, updated, got)
	require.Equal(t, []string{"new category"}, pf.Categories())
	require.Equal(t, len("new title"), pf.LongestTitle())
	require.Equal(t, len("new category"), pf.LongestCategory())
}

func TestUpsert_SameBookmarkIsNoop(t *testing.T) {
	pf := Parse("")
	b := rust()
	pf.Upsert(b, nil)
	version := pf.BookmarksVersion()
	categories := pf.CategoriesVersion()

	same := b
	pf.Upsert(b, &same)
	pf.Upsert(b, nil)

	require.Equal(t, version, pf.BookmarksVersion())
	require.Equal(t, categories, pf.CategoriesVersion())
}

func TestUpsert_TitleChangeKeepsCategoryVersion(t *testing.T) {
	pf := Parse("")
	old := rust()
	pf.Upsert(old, nil)
	categories := pf.CategoriesVersion()

	pf.Upsert(Bookmark{Title: "Rust Lang", Category: old.Category, URL: old.URL}, &old)

	require.Equal(t, categories, pf.CategoriesVersion())
	require.Equal(t, uint64(2), pf.BookmarksVersion())
}

func TestUpsert_ExistingURLWithoutOld(t *testing.T) {
	pf := Parse("")
	pf.Upsert(rust(), nil)

	pf.Upsert(Bookmark{Title: "R", Category: "Other", URL: rust().URL}, nil)

	require.Equal(t, 1, pf.Len())
	require.Equal(t, []string{"Other"}, pf.Categories())
	require.Equal(t, 1, pf.LongestTitle())
}

func TestUpsert_NewURLClashesWithAnotherBookmark(t *testing.T) {
	pf := Parse("")
	a := Bookmark{Title: "A", Category: "One", URL: "a"}
	b := Bookmark{Title: "Bee", Category: "Two", URL: "b"}
	pf.Upsert(a, nil)
	pf.Upsert(b, nil)

	pf.Upsert(Bookmark{Title: "A", Category: "One", URL: "b"}, &a)

	require.Equal(t, 1, pf.Len())
	require.Equal(t, []string{"One"}, pf.Categories())
	require.Equal(t, 1, pf.LongestTitle())
}

func TestRemove(t *testing.T) {
	pf := Parse("")
	b := Default()
	pf.Upsert(b, nil)

	pf.Remove(b.URL)

	require.Zero(t, pf.Len())
	require.Empty(t, pf.Categories())
	require.True(t, pf.Edited())
	require.Zero(t, pf.LongestTitle())
	require.Zero(t, pf.LongestCategory())
}

func TestRemove_Missing(t *testing.T) {
	pf := Parse("")
	pf.Remove("nope")
	require.False(t, pf.Edited())
	require.Zero(t, pf.BookmarksVersion())
}

func TestRemove_SharedCategoryStays(t *testing.T) {
	pf := Parse("")
	pf.Upsert(rust(), nil)
	pf.Upsert(Bookmark{Title: "Go", Category: "Lang", URL: "https://go.dev"}, nil)
	categories := pf.CategoriesVersion()

	pf.Remove(rust().URL)

	require.Equal(t, []string{"Lang"}, pf.Categories())
	require.Equal(t, categories, pf.CategoriesVersion())
	require.Equal(t, 2, pf.LongestTitle())
}

func TestRemove_TiedLongestTitle(t *testing.T) {
	pf := Parse("")
	pf.Upsert(Bookmark{Title: "abcd", Category: "x", URL: "1"}, nil)
	pf.Upsert(Bookmark{Title: "wxyz", Category: "x", URL: "2"}, nil)
	pf.Upsert(Bookmark{Title: "ab", Category: "x", URL: "3"}, nil)

	pf.Remove("1")
	require.Equal(t, 4, pf.LongestTitle())
	pf.Remove("2")
	require.Equal(t, 2, pf.LongestTitle())
}

func TestAddBookmarkOption(t *testing.T) {
	pf := Parse("")
	pf.Upsert(Bookmark{Title: "0123456789", Category: "0123456789", URL: "u"}, nil)

	option := pf.AddBookmarkOption()

	require.Equal(t, 31, utf8.RuneCountInString(option))
	require.Contains(t, option, AddBookmarkLabel)
	require.True(t, strings.HasPrefix(option, SeparatorSymbol))
	_, ok := FromLine(option)
	require.False(t, ok)
}

func TestAddBookmarkOption_Empty(t *testing.T) {
	require.Equal(t, AddBookmarkLabel, Parse("").AddBookmarkOption())
}

// TestProperty_IndexInvariants drives random upserts and removals and checks
// the index against a plain map model after every step.
func TestProperty_IndexInvariants(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		pf := Parse("")
		model := make(map[string]Bookmark)
		urls := []string{"a", "b", "c", "d", "e"}
		titles := []string{"x", "xx", "xxx", "Title", "Longer title"}
		categories := []string{"Lang", "lang", "News", "b-2", "A1"}

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for range steps {
			url := rapid.SampledFrom(urls).Draw(t, "url")
			switch rapid.IntRange(0, 2).Draw(t, "op") {
			case 0:
				pf.Remove(url)
				delete(model, url)
			case 1:
				b := Bookmark{
					Title:    rapid.SampledFrom(titles).Draw(t, "title"),
					Category: rapid.SampledFrom(categories).Draw(t, "category"),
					URL:      url,
				}
				pf.Upsert(b, nil)
				model[url] = b
			case 2:
				oldURL := rapid.SampledFrom(urls).Draw(t, "old")
				old, ok := model[oldURL]
				if !ok {
					continue
				}
				b := Bookmark{
					Title:    rapid.SampledFrom(titles).Draw(t, "title"),
					Category: rapid.SampledFrom(categories).Draw(t, "category"),
					URL:      url,
				}
				version := pf.BookmarksVersion()
				pf.Upsert(b, &old)
				if b == old && pf.BookmarksVersion() != version {
					t.Fatalf("identical upsert bumped the version")
				}
				delete(model, oldURL)
				model[url] = b
			}
			checkAgainstModel(t, pf, model)
		}
	})
}

func checkAgainstModel(t *rapid.T, pf *ParsedFile, model map[string]Bookmark) {
	if pf.Len() != len(model) {
		t.Fatalf("len = %d, want %d", pf.Len(), len(model))
	}
	distinct := map[string]bool{}
	longestTitle, longestCategory := 0, 0
	for url, want := range model {
		got, ok := pf.Get(url)
		if !ok || got != want {
			t.Fatalf("Get(%q) = %+v, %v; want %+v", url, got, ok, want)
		}
		distinct[want.Category] = true
		longestTitle = max(longestTitle, utf8.RuneCountInString(want.Title))
		longestCategory = max(longestCategory, utf8.RuneCountInString(want.Category))
	}
	wantCategories := slices.SortedFunc(maps.Keys(distinct), compareCategory)
	if !slices.Equal(pf.Categories(), wantCategories) {
		t.Fatalf("categories = %v, want %v", pf.Categories(), wantCategories)
	}
	if pf.LongestTitle() != longestTitle {
		t.Fatalf("longest title = %d, want %d", pf.LongestTitle(), longestTitle)
	}
	if pf.LongestCategory() != longestCategory {
		t.Fatalf("longest category = %d, want %d", pf.LongestCategory(), longestCategory)
	}
}
