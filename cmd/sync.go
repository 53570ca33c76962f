package cmd

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"visor/internal/domain"
	"visor/internal/download"
	"visor/internal/sharedhttp"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Crawl every followed list and save the library",
	RunE: func(cmd *cobra.Command, _ []string) error {
		// cancel the crawl between requests on shutdown
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGHUP, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)
		defer stop()

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !watch {
			return a.sync(ctx)
		}

		if err := a.cfg.UpdateConfig(); err != nil {
			a.log.Error().Err(err).Msgf("error updating config")
		}

		// init dynamic config
		a.cfg.DynamicReload(a.log)

		a.log.Info().Msg("starting to sync followed lists")

		for {
			if err := a.sync(ctx); err != nil && ctx.Err() == nil {
				a.log.Error().Err(err).Msg("error syncing library")
			}

			interval := time.Duration(a.cfg.Snapshot().SyncInterval) * time.Minute
			a.log.Debug().Msgf("next sync in %s", interval)

			select {
			case <-ctx.Done():
				a.log.Info().Msg("received signal, stopping sync")
				return nil
			case <-time.After(interval):
			}
		}
	},
}

// sync runs one full crawl with a fresh session and replaces the stored
// library with the result.
func (a *app) sync(ctx context.Context) error {
	runID := uuid.New()
	log := a.log.With().Str("run", runID.String()).Logger()

	m, err := a.session(ctx)
	if err != nil {
		return err
	}

	start := time.Now()
	log.Info().Str("site", m.String()).Msg("crawling followed lists")

	books, err := m.GetAllBooks(ctx)
	if err != nil {
		return err
	}

	if err := a.store.SaveLibrary(ctx, runID, books); err != nil {
		return err
	}

	log.Info().Int("books", len(books)).Dur("took", time.Since(start)).Msg("library saved")

	if covers {
		a.downloadCovers(ctx, books)
	}

	return nil
}

// downloadCovers fetches the cover of every book that has one and returns
// the local path per book url. Failed covers are logged and skipped.
func (a *app) downloadCovers(ctx context.Context, books []domain.Book) map[string]string {
	cfg := a.cfg.Snapshot()
	paths := make(map[string]string)

	transport, err := sharedhttp.NewTransport(cfg.Proxy, cfg.BypassCloudflare)
	if err != nil {
		a.log.Error().Err(err).Msg("error setting up cover downloads")
		return paths
	}

	d := download.New(sharedhttp.NewClient(time.Duration(cfg.RequestTimeout)*time.Second, transport), cfg.CoverRate)

	for _, book := range books {
		if book.Image == nil {
			continue
		}
		if _, ok := paths[book.URL]; ok {
			continue
		}
		if ctx.Err() != nil {
			break
		}

		path, err := d.Cover(ctx, *book.Image, cfg.CoverDirectory, book.Title)
		if err != nil {
			a.log.Warn().Err(err).Str("book", book.Title).Msg("error downloading cover")
			continue
		}

		paths[book.URL] = path
	}

	return paths
}
