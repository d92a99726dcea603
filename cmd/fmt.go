package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/vannrr/fmark/internal/bookmark"
)

// ErrNotFormatted is returned by fmt --check when the file would change.
var ErrNotFormatted = errors.New("bookmark file is not formatted")

func newFmtCmd(a *app) *cobra.Command {
	var check, diff bool

	cmd := &cobra.Command{
		Use:   "fmt",
		Short: "Normalize the bookmark file",
		Long: `Rewrite the bookmark file in its normalized form: sorted, aligned and with
separator lines between categories. Lines that are not bookmarks are kept.

Examples:
  fmark fmt
  fmark fmt --diff     # show what would change, write nothing
  fmark fmt --check    # exit with an error when the file is not normalized`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := a.bookmarkPath()
			if err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // G304: path is the configured bookmark file
			if err != nil {
				return fmt.Errorf("reading bookmark file: %w", err)
			}

			original := string(data)
			formatted := bookmark.NewPlainText().Bookmarks(bookmark.Parse(original))
			if formatted == original {
				return nil
			}

			if diff {
				writeLineDiff(cmd.OutOrStdout(), original, formatted)
			}
			if check {
				return fmt.Errorf("%w: %s", ErrNotFormatted, path)
			}
			if diff {
				return nil
			}
			return bookmark.WriteFile(path, formatted)
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "fail if the file is not normalized, write nothing")
	cmd.Flags().BoolVar(&diff, "diff", false, "print the changes instead of writing them")
	return cmd
}

// writeLineDiff prints a line oriented diff of before and after, prefixing
// removed lines with "-", added lines with "+" and unchanged ones with " ".
func writeLineDiff(w io.Writer, before, after string) {
	dmp := diffmatchpatch.New()
	oldChars, newChars, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(oldChars, newChars, false), lines)

	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			_, _ = fmt.Fprint(w, prefix, line)
			if !strings.HasSuffix(line, "\n") {
				_, _ = fmt.Fprintln(w)
			}
		}
	}
}
