package cmd

import (
	"os"
	"strings"

	"visor/internal/domain"
	"visor/internal/parse"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

var listsCmd = &cobra.Command{
	Use:   "lists",
	Short: "Show the lists followed by your profile",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		m, err := a.session(ctx)
		if err != nil {
			return err
		}

		lists, err := m.GetURLState(ctx)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"List", "URL"})

		for _, l := range lists {
			t.AppendRow(table.Row{l.Name, l.URL})
		}

		t.Render()

		return nil
	},
}

var booksCmd = &cobra.Command{
	Use:   "books <list-url>",
	Short: "Show the books of a list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		m, err := a.session(ctx)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"#", "Book", "URL"})

		n := 0
		for book, err := range m.IterateBooks(ctx, args[0]) {
			if err != nil {
				return err
			}

			n++
			t.AppendRow(table.Row{n, book.Title, book.URL})

			// later pages are never requested
			if limit > 0 && n >= limit {
				break
			}
		}

		t.Render()

		return nil
	},
}

var chaptersCmd = &cobra.Command{
	Use:   "chapters <book-url>",
	Short: "Show the chapters of a book with every uploaded option",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		m, err := a.session(ctx)
		if err != nil {
			return err
		}

		chapters, err := m.GetChapters(ctx, args[0])
		if err != nil {
			return err
		}

		if chapterNumbers != "" {
			chapters, err = parse.ChapterSelection(chapterNumbers, chapters)
			if err != nil {
				return err
			}
		}

		t := newTable()
		t.AppendHeader(table.Row{"Chapter", "Viewed", "Lang", "Date", "Groups", "URL"})

		for _, c := range chapters {
			appendChapter(t, c)
		}

		t.Render()

		return nil
	},
}

// appendChapter adds one row per option, naming the chapter on the first.
func appendChapter(t table.Writer, c domain.Chapter) {
	viewed := ""
	if c.Viewed {
		viewed = "yes"
	}

	if len(c.Options) == 0 {
		t.AppendRow(table.Row{c.Title, viewed})
		return
	}

	for i, o := range c.Options {
		groups := make([]string, 0, len(o.Groups))
		for _, g := range o.Groups {
			groups = append(groups, g.Title)
		}

		if i > 0 {
			t.AppendRow(table.Row{"", "", o.Lang, o.Date, strings.Join(groups, ", "), o.ChapterURL})
			continue
		}
		t.AppendRow(table.Row{c.Title, viewed, o.Lang, o.Date, strings.Join(groups, ", "), o.ChapterURL})
	}
}
