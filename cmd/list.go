package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vannrr/fmark/internal/bookmark"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the bookmarks as they are written to the file",
		Long: `Print the bookmark file in its normalized form: bookmarks sorted by category
and title, columns aligned, a separator line between categories and every
non-bookmark line kept at its position.

Examples:
  fmark list
  fmark list | grep '{C}{News}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, file, err := a.open()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), bookmark.NewPlainText().Bookmarks(file))
			return err
		},
	}
}

func newCategoriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the categories in use, one per line",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, file, err := a.open()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), bookmark.NewPlainText().Categories(file))
			return err
		},
	}
}
