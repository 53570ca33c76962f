package manager

import (
	"context"
	"iter"

	"visor/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	catalogSelector  = "#app > section > main > div > div > div.col-12.col-lg-8 > div:nth-child(1)"
	nextPageSelector = "a[class^='relative'][rel='next']"
)

// IterateBooks lazily yields the books of a list, page by page. The next
// page is only requested once every book of the current page was consumed,
// so stopping early saves the remaining requests. Each call starts over at
// listURL. The sequence ends after the first error.
func (m *Manager) IterateBooks(ctx context.Context, listURL string) iter.Seq2[domain.Book, error] {
	return func(yield func(domain.Book, error) bool) {
		visited := make(map[string]bool)
		pageURL := listURL

		for pageURL != "" {
			target, err := m.resolve(pageURL)
			if err != nil {
				yield(domain.Book{}, err)
				return
			}

			if visited[target] {
				yield(domain.Book{}, &ParseError{URL: pageURL, Element: "next page link to an unvisited page"})
				return
			}
			visited[target] = true

			doc, err := m.document(ctx, target)
			if err != nil {
				yield(domain.Book{}, errors.Wrapf(err, "could not load list page %d", len(visited)))
				return
			}

			books, next, err := parseCatalogPage(target, doc.Selection)
			if err != nil {
				yield(domain.Book{}, err)
				return
			}

			for _, book := range books {
				if !yield(book, nil) {
					return
				}
			}

			pageURL = next
		}
	}
}

// GetBooksFromList collects every book of a list.
func (m *Manager) GetBooksFromList(ctx context.Context, listURL string) ([]domain.Book, error) {
	var books []domain.Book

	for book, err := range m.IterateBooks(ctx, listURL) {
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}

	return books, nil
}

// parseCatalogPage extracts the books of one list page and the href of the
// next page, which is empty on the last page.
func parseCatalogPage(pageURL string, page *goquery.Selection) ([]domain.Book, string, error) {
	x := extractor{url: pageURL}

	grid, err := x.one(page, catalogSelector, "catalog grid")
	if err != nil {
		return nil, "", err
	}

	var books []domain.Book

	items := grid.Find("a[href]")
	for i := range items.Length() {
		item := items.Eq(i)

		href, err := x.attr(item, "href", "book link")
		if err != nil {
			return nil, "", err
		}

		title, err := x.childAttr(item, "h4[title]", "title", "book title")
		if err != nil {
			return nil, "", err
		}

		books = append(books, domain.Book{
			Title: title,
			URL:   href,
			Image: styleImage(item),
		})
	}

	next := ""
	if a := page.Find(nextPageSelector).First(); a.Length() > 0 {
		next, err = x.attr(a, "href", "next page link")
		if err != nil {
			return nil, "", err
		}
	}

	return books, next, nil
}
