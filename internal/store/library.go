package store

import (
	"context"
	"database/sql"
	"time"

	"visor/internal/domain"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNoRun = errors.New("library was never synced")

// timeFormat has a fixed width so stored times sort lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Run describes one persisted sync.
type Run struct {
	ID       uuid.UUID
	SyncedAt time.Time
	Books    int
}

// SaveLibrary replaces the stored library with books, keeping their order.
func (s *Store) SaveLibrary(ctx context.Context, runID uuid.UUID, books []domain.Book) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "could not begin transaction")
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM option_groups`,
		`DELETE FROM options`,
		`DELETE FROM chapters`,
		`DELETE FROM books`,
	} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "could not clear library")
		}
	}

	for i, book := range books {
		if err := insertBook(ctx, tx, i, book); err != nil {
			return errors.Wrapf(err, "could not save book %q", book.Title)
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, synced_at, books) VALUES (?, ?, ?)`,
		runID.String(), time.Now().UTC().Format(timeFormat), len(books),
	)
	if err != nil {
		return errors.Wrap(err, "could not record sync run")
	}

	return tx.Commit()
}

func insertBook(ctx context.Context, tx *sql.Tx, position int, book domain.Book) error {
	var image sql.NullString
	if book.Image != nil {
		image = sql.NullString{String: *book.Image, Valid: true}
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO books (position, title, url, image, list_name) VALUES (?, ?, ?, ?, ?)`,
		position, book.Title, book.URL, image, book.ListName,
	)
	if err != nil {
		return err
	}

	bookID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	for i, chapter := range book.Chapters {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO chapters (book_id, position, title, viewed) VALUES (?, ?, ?, ?)`,
			bookID, i, chapter.Title, chapter.Viewed,
		)
		if err != nil {
			return err
		}

		chapterID, err := res.LastInsertId()
		if err != nil {
			return err
		}

		for j, option := range chapter.Options {
			res, err := tx.ExecContext(ctx,
				`INSERT INTO options (chapter_id, position, date, lang, url) VALUES (?, ?, ?, ?, ?)`,
				chapterID, j, option.Date, option.Lang, option.ChapterURL,
			)
			if err != nil {
				return err
			}

			optionID, err := res.LastInsertId()
			if err != nil {
				return err
			}

			for k, group := range option.Groups {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO option_groups (option_id, position, title, url) VALUES (?, ?, ?, ?)`,
					optionID, k, group.Title, group.URL,
				)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// LoadLibrary returns the stored library in the order it was synced.
func (s *Store) LoadLibrary(ctx context.Context) ([]domain.Book, error) {
	groups, err := s.loadGroups(ctx)
	if err != nil {
		return nil, err
	}

	options, err := s.loadOptions(ctx, groups)
	if err != nil {
		return nil, err
	}

	chapters, err := s.loadChapters(ctx, options)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id, title, url, image, list_name FROM books ORDER BY position`)
	if err != nil {
		return nil, errors.Wrap(err, "could not query books")
	}
	defer rows.Close()

	books := []domain.Book{}

	for rows.Next() {
		var (
			id    int64
			book  domain.Book
			image sql.NullString
		)

		if err := rows.Scan(&id, &book.Title, &book.URL, &image, &book.ListName); err != nil {
			return nil, errors.Wrap(err, "could not scan book")
		}

		if image.Valid {
			book.Image = &image.String
		}
		book.Chapters = chapters[id]
		if book.Chapters == nil {
			book.Chapters = []domain.Chapter{}
		}

		books = append(books, book)
	}

	return books, errors.Wrap(rows.Err(), "could not read books")
}

func (s *Store) loadGroups(ctx context.Context) (map[int64][]domain.Group, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT option_id, title, url FROM option_groups ORDER BY option_id, position`)
	if err != nil {
		return nil, errors.Wrap(err, "could not query groups")
	}
	defer rows.Close()

	groups := make(map[int64][]domain.Group)

	for rows.Next() {
		var (
			optionID int64
			group    domain.Group
		)
		if err := rows.Scan(&optionID, &group.Title, &group.URL); err != nil {
			return nil, errors.Wrap(err, "could not scan group")
		}
		groups[optionID] = append(groups[optionID], group)
	}

	return groups, errors.Wrap(rows.Err(), "could not read groups")
}

func (s *Store) loadOptions(ctx context.Context, groups map[int64][]domain.Group) (map[int64][]domain.Option, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, chapter_id, date, lang, url FROM options ORDER BY chapter_id, position`)
	if err != nil {
		return nil, errors.Wrap(err, "could not query options")
	}
	defer rows.Close()

	options := make(map[int64][]domain.Option)

	for rows.Next() {
		var (
			id, chapterID int64
			option        domain.Option
		)
		if err := rows.Scan(&id, &chapterID, &option.Date, &option.Lang, &option.ChapterURL); err != nil {
			return nil, errors.Wrap(err, "could not scan option")
		}

		option.Groups = groups[id]
		if option.Groups == nil {
			option.Groups = []domain.Group{}
		}
		options[chapterID] = append(options[chapterID], option)
	}

	return options, errors.Wrap(rows.Err(), "could not read options")
}

func (s *Store) loadChapters(ctx context.Context, options map[int64][]domain.Option) (map[int64][]domain.Chapter, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, book_id, title, viewed FROM chapters ORDER BY book_id, position`)
	if err != nil {
		return nil, errors.Wrap(err, "could not query chapters")
	}
	defer rows.Close()

	chapters := make(map[int64][]domain.Chapter)

	for rows.Next() {
		var (
			id, bookID int64
			chapter    domain.Chapter
		)
		if err := rows.Scan(&id, &bookID, &chapter.Title, &chapter.Viewed); err != nil {
			return nil, errors.Wrap(err, "could not scan chapter")
		}

		chapter.Options = options[id]
		if chapter.Options == nil {
			chapter.Options = []domain.Option{}
		}
		chapters[bookID] = append(chapters[bookID], chapter)
	}

	return chapters, errors.Wrap(rows.Err(), "could not read chapters")
}

// LastRun returns the most recent sync.
func (s *Store) LastRun(ctx context.Context) (Run, error) {
	var (
		run      Run
		id       string
		syncedAt string
	)

	err := s.db.QueryRowContext(ctx, `SELECT id, synced_at, books FROM runs ORDER BY synced_at DESC, rowid DESC LIMIT 1`).
		Scan(&id, &syncedAt, &run.Books)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNoRun
	}
	if err != nil {
		return Run{}, errors.Wrap(err, "could not load last run")
	}

	if run.ID, err = uuid.Parse(id); err != nil {
		return Run{}, errors.Wrap(err, "invalid run id")
	}
	if run.SyncedAt, err = time.Parse(timeFormat, syncedAt); err != nil {
		return Run{}, errors.Wrap(err, "invalid run time")
	}

	return run, nil
}
