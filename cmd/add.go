package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vannrr/fmark/internal/bookmark"
)

// ErrBookmarkExists is returned by add for a URL already in the file.
var ErrBookmarkExists = errors.New("bookmark already exists")

// ErrBookmarkNotFound is returned by remove for an unknown URL.
var ErrBookmarkNotFound = errors.New("bookmark not found")

func newAddCmd(a *app) *cobra.Command {
	var (
		title, category, url string
		replace              bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a bookmark",
		Long: `Add a bookmark without opening a menu. Titles and categories longer than 35
characters are truncated when written.

Examples:
  fmark add --title Go --category Lang --url https://go.dev
  fmark add -t "Go docs" -k Lang -u https://go.dev --replace`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b := bookmark.New(title, category, url)
			if err := b.Validate(); err != nil {
				return err
			}

			path, file, err := a.open()
			if err != nil {
				return err
			}
			if _, ok := file.Get(b.URL); ok && !replace {
				return fmt.Errorf("%w: %s (use --replace to overwrite)", ErrBookmarkExists, b.URL)
			}

			file.Upsert(b, nil)
			return bookmark.NewPlainText().Flush(path, file)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "bookmark title")
	cmd.Flags().StringVarP(&category, "category", "k", "", "bookmark category")
	cmd.Flags().StringVarP(&url, "url", "u", "", "bookmark URL")
	cmd.Flags().BoolVar(&replace, "replace", false, "replace a bookmark with the same URL")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func newRemoveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <url>...",
		Aliases: []string{"rm"},
		Short:   "Remove bookmarks by URL",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, file, err := a.open()
			if err != nil {
				return err
			}

			for _, url := range args {
				if _, ok := file.Get(url); !ok {
					return fmt.Errorf("%w: %s", ErrBookmarkNotFound, url)
				}
			}
			for _, url := range args {
				file.Remove(url)
			}
			return bookmark.NewPlainText().Flush(path, file)
		},
	}
}
