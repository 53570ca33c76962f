package manager

import (
	"context"

	"visor/internal/domain"
	"visor/internal/throttle"

	"github.com/pkg/errors"
)

// GetAllBooks crawls every followed list and loads the chapters of every
// book found. Requests are spaced by the list and chapter delays, so a full
// crawl can take minutes. Any error aborts the remaining crawl.
func (m *Manager) GetAllBooks(ctx context.Context) ([]domain.Book, error) {
	if err := m.checkAuthenticated(); err != nil {
		return nil, err
	}

	lists, err := m.GetURLState(ctx)
	if err != nil {
		return nil, err
	}

	booksFromList := throttle.Wrap(m.listDelay, m.GetBooksFromList)
	loadChapters := throttle.Wrap(m.chapterDelay, m.LoadChapters)

	var books []domain.Book

	for _, list := range lists {
		listBooks, err := booksFromList(ctx, list.URL)
		if err != nil {
			return nil, errors.Wrapf(err, "could not crawl list %q", list.Name)
		}

		m.log.Debug().Str("list", list.Name).Int("books", len(listBooks)).Msg("crawled list")

		for _, book := range listBooks {
			book.ListName = list.Name
			books = append(books, book)
		}
	}

	for i := range books {
		if _, err := loadChapters(ctx, &books[i]); err != nil {
			return nil, err
		}

		m.log.Info().Msgf("Book %d/%d: %s", i+1, len(books), books[i].Title)
	}

	return books, nil
}
