// Package session runs the interactive bookmark menu: pick a bookmark, then
// open, modify or remove it, or add a new one.
package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/vannrr/fmark/internal/bookmark"
	"github.com/vannrr/fmark/internal/browser"
	"github.com/vannrr/fmark/internal/log"
	"github.com/vannrr/fmark/internal/menu"
)

// Options offered after a bookmark is chosen.
const (
	OptionGoto   = "goto"
	OptionModify = "modify"
	OptionRemove = "remove"
	OptionCancel = "cancel"
)

// Prompts.
const (
	PromptBookmarks = "bookmarks"
	PromptOptions   = "options"
	PromptTitle     = "title"
	PromptCategory  = "category"
	PromptURL       = "url"
)

var options = []string{OptionGoto, OptionModify, OptionRemove, OptionCancel}

// Session holds the collaborators of one interactive run.
type Session struct {
	chooser menu.Chooser
	opener  browser.Opener
	file    *bookmark.ParsedFile
	text    *bookmark.PlainText

	changes            <-chan struct{}
	externallyModified bool
}

// New returns a Session editing file.
func New(chooser menu.Chooser, opener browser.Opener, file *bookmark.ParsedFile, text *bookmark.PlainText) *Session {
	return &Session{
		chooser: chooser,
		opener:  opener,
		file:    file,
		text:    text,
	}
}

// WatchChanges makes the session note signals on changes, which report that
// the bookmark file was modified by another program.
func (s *Session) WatchChanges(changes <-chan struct{}) *Session {
	s.changes = changes
	return s
}

// ExternallyModified reports whether the bookmark file changed on disk while
// the session ran.
func (s *Session) ExternallyModified() bool {
	s.pollChanges()
	return s.externallyModified
}

// Run shows the bookmark list until the user cancels it or opens a bookmark.
// The caller flushes the file afterwards.
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.pollChanges()

		line, err := s.chooser.Choose(ctx, s.listItems(), "", PromptBookmarks)
		if err != nil {
			return err
		}
		if line == "" {
			return nil
		}

		done, err := s.handleLine(ctx, line)
		if err != nil || done {
			return err
		}
	}
}

// handleLine acts on a line picked from the list. done is true when the
// session should end.
func (s *Session) handleLine(ctx context.Context, line string) (done bool, err error) {
	if b, ok := bookmark.FromLine(line); ok {
		return s.handleBookmark(ctx, b)
	}
	if strings.Contains(line, strings.TrimSpace(bookmark.AddBookmarkLabel)) {
		return false, s.create(ctx)
	}
	log.Debug(log.CatMenu, "Ignoring non-bookmark line", "line", line)
	return false, nil
}

func (s *Session) handleBookmark(ctx context.Context, b bookmark.Bookmark) (bool, error) {
	// The displayed line may be truncated; act on the stored record.
	if stored, ok := s.file.Get(b.URL); ok {
		b = stored
	}

	option, err := s.chooser.Choose(ctx, options, "", PromptOptions)
	if err != nil {
		return false, err
	}

	switch option {
	case OptionGoto:
		return true, s.opener.Open(ctx, b.URL)
	case OptionModify:
		return false, s.modify(ctx, b)
	case OptionRemove:
		return false, s.remove(ctx, b)
	default:
		return false, nil
	}
}

func (s *Session) create(ctx context.Context) error {
	b, ok, err := s.ask(ctx, bookmark.Bookmark{})
	if err != nil || !ok {
		return err
	}
	s.file.Upsert(b, nil)
	log.Info(log.CatIndex, "Added bookmark", "url", b.URL)
	return nil
}

func (s *Session) modify(ctx context.Context, old bookmark.Bookmark) error {
	b, ok, err := s.ask(ctx, old)
	if err != nil || !ok {
		return err
	}
	s.file.Upsert(b, &old)
	log.Info(log.CatIndex, "Modified bookmark", "url", b.URL)
	return nil
}

func (s *Session) remove(ctx context.Context, b bookmark.Bookmark) error {
	prompt := fmt.Sprintf("Remove %s? (yes/no)", strings.TrimSpace(b.Title))
	answer, err := s.chooser.Choose(ctx, nil, "", prompt)
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "yes" {
		return nil
	}
	s.file.Remove(b.URL)
	log.Info(log.CatIndex, "Removed bookmark", "url", b.URL)
	return nil
}

// ask prompts for the three fields, offering current as the starting values.
// ok is false when any answer was empty or the result failed validation.
func (s *Session) ask(ctx context.Context, current bookmark.Bookmark) (b bookmark.Bookmark, ok bool, err error) {
	title, err := s.chooser.Choose(ctx, suggestion(current.Title), "", PromptTitle)
	if err != nil || title == "" {
		return b, false, err
	}

	categories := strings.Split(strings.TrimSuffix(s.text.Categories(s.file), "\n"), "\n")
	if len(categories) == 1 && categories[0] == "" {
		categories = []string{}
	}
	category, err := s.chooser.Choose(ctx, categories, current.Category, PromptCategory)
	if err != nil || category == "" {
		return b, false, err
	}

	url, err := s.chooser.Choose(ctx, suggestion(current.URL), "", PromptURL)
	if err != nil || url == "" {
		return b, false, err
	}

	b = bookmark.New(title, category, url)
	if verr := b.Validate(); verr != nil {
		log.Warn(log.CatIndex, "Rejected bookmark", "error", verr.Error())
		// Show the problem; any answer returns to the list.
		if _, err := s.chooser.Choose(ctx, nil, "", verr.Error()); err != nil {
			return b, false, err
		}
		return b, false, nil
	}
	return b, true, nil
}

// listItems is the add option followed by the rendered file.
func (s *Session) listItems() []string {
	items := []string{s.file.AddBookmarkOption()}
	text := strings.TrimSuffix(s.text.Bookmarks(s.file), "\n")
	if text != "" {
		items = append(items, strings.Split(text, "\n")...)
	}
	return items
}

func (s *Session) pollChanges() {
	if s.changes == nil {
		return
	}
	for {
		select {
		case _, ok := <-s.changes:
			if !ok {
				s.changes = nil
				return
			}
			if !s.externallyModified {
				log.Warn(log.CatWatcher, "Bookmark file was modified by another program")
			}
			s.externallyModified = true
		default:
			return
		}
	}
}

// suggestion offers value as the single item, or free input when empty.
func suggestion(value string) []string {
	if value == "" {
		return nil
	}
	return []string{value}
}
