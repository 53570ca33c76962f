package manager

import (
	"context"
	"strings"

	"visor/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

const (
	flagIconPrefix = "flag-icon-"
	viewedToken    = "viewed"
)

// GetChapters scrapes every chapter of a book. The site renders all
// chapters on the book page, there is no pagination.
func (m *Manager) GetChapters(ctx context.Context, bookURL string) ([]domain.Chapter, error) {
	doc, err := m.document(ctx, bookURL)
	if err != nil {
		return nil, errors.Wrap(err, "could not load book page")
	}

	return parseChapters(bookURL, doc.Selection)
}

// LoadChapters replaces book.Chapters with a fresh scrape of the book page.
func (m *Manager) LoadChapters(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	chapters, err := m.GetChapters(ctx, book.URL)
	if err != nil {
		return book, errors.Wrapf(err, "could not load chapters for %q", book.Title)
	}

	book.Chapters = chapters
	return book, nil
}

func parseChapters(pageURL string, page *goquery.Selection) ([]domain.Chapter, error) {
	x := extractor{url: pageURL}

	if _, err := x.one(page, "#chapters", "chapters container"); err != nil {
		return nil, err
	}

	chapters := []domain.Chapter{}

	items := page.Find("#chapters > ul > li")
	for i := range items.Length() {
		chapter, err := parseChapter(x, items.Eq(i))
		if err != nil {
			return nil, err
		}
		chapters = append(chapters, chapter)
	}

	return chapters, nil
}

func parseChapter(x extractor, item *goquery.Selection) (domain.Chapter, error) {
	heading, err := x.one(item, "h4", "chapter heading")
	if err != nil {
		return domain.Chapter{}, err
	}

	title, err := x.childText(heading, "a", "chapter title")
	if err != nil {
		return domain.Chapter{}, err
	}

	icon, err := x.one(heading, `span[class^="chapter-viewed-icon"]`, "chapter viewed icon")
	if err != nil {
		return domain.Chapter{}, err
	}

	options := []domain.Option{}

	rows := item.Find(`div > div > ul > li > div[class="row"]`)
	for i := range rows.Length() {
		option, err := parseOption(x, rows.Eq(i))
		if err != nil {
			return domain.Chapter{}, err
		}
		options = append(options, option)
	}

	return domain.Chapter{
		Title:   title,
		Viewed:  hasClassToken(icon, viewedToken),
		Options: options,
	}, nil
}

func parseOption(x extractor, row *goquery.Selection) (domain.Option, error) {
	groups := []domain.Group{}

	links := row.Find("div:nth-child(1) > span > a[href]")
	for i := range links.Length() {
		a := links.Eq(i)
		groups = append(groups, domain.Group{
			Title: strings.TrimSpace(a.Text()),
			URL:   strings.TrimSpace(a.AttrOr("href", "")),
		})
	}

	dateColumn, err := x.one(row, "div:nth-child(2)", "option date column")
	if err != nil {
		return domain.Option{}, err
	}

	date, err := x.childText(dateColumn, "span", "option date")
	if err != nil {
		return domain.Option{}, err
	}

	icon, err := x.one(row, `div:nth-child(3) > i[class^="flag-icon"]`, "language flag icon")
	if err != nil {
		return domain.Option{}, err
	}

	tokens := classTokens(icon)
	if len(tokens) < 2 {
		return domain.Option{}, x.missing("language flag icon class")
	}

	chapterURL, err := x.childAttr(row, "div:nth-child(6) > a[href]", "href", "option link")
	if err != nil {
		return domain.Option{}, err
	}

	return domain.Option{
		Groups:     groups,
		Date:       date,
		Lang:       strings.TrimPrefix(tokens[1], flagIconPrefix),
		ChapterURL: chapterURL,
	}, nil
}
