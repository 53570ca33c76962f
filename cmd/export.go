package cmd

import (
	"fmt"
	"path/filepath"

	"visor/internal/domain"
	"visor/internal/files"
	"visor/internal/store"
	"visor/internal/templater"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the saved library as a pdf catalog",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := files.IsValidLocation(filepath.Dir(output)); err != nil {
			return errors.Wrap(err, "invalid output location")
		}

		run, err := a.store.LastRun(ctx)
		if errors.Is(err, store.ErrNoRun) {
			return errors.New(`library is empty, run "visor sync" first`)
		}
		if err != nil {
			return err
		}

		books, err := a.store.LoadLibrary(ctx)
		if err != nil {
			return err
		}

		// covers already on disk are reused, missing ones are fetched
		covers := a.downloadCovers(ctx, books)

		entryName := func(book domain.Book) string {
			return templater.New(book).ExecTemplate(naming)
		}

		if err := files.CreateLibraryPDF(books, covers, entryName, output); err != nil {
			return err
		}

		fmt.Printf("Exported %d books synced at %s to %s\n", len(books), run.SyncedAt.Local().Format("2006-01-02 15:04"), output)

		return nil
	},
}
