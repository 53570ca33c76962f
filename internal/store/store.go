package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// Store is the local sqlite database holding the last synced library and
// the saved credentials. Open one per process and Close it on exit.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "could not create database directory")
	}

	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "could not open database")
	}

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, err
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// the library and account email are private to the user
	if err := os.Chmod(path, 0o600); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "could not restrict database permissions")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragma := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA foreign_keys = ON;",
		"PRAGMA busy_timeout = 5000;",
	}

	for _, stmt := range pragma {
		if _, err := db.Exec(stmt); err != nil {
			return errors.Wrapf(err, "pragma %q", stmt)
		}
	}
	return nil
}

func migrate(db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	synced_at TEXT NOT NULL,
	books INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS books (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	image TEXT,
	list_name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS chapters (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	book_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	viewed INTEGER NOT NULL,
	FOREIGN KEY(book_id) REFERENCES books(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_chapters_book ON chapters(book_id, position);

CREATE TABLE IF NOT EXISTS options (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	chapter_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	date TEXT NOT NULL,
	lang TEXT NOT NULL,
	url TEXT NOT NULL,
	FOREIGN KEY(chapter_id) REFERENCES chapters(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_options_chapter ON options(chapter_id, position);

CREATE TABLE IF NOT EXISTS option_groups (
	option_id INTEGER NOT NULL,
	position INTEGER NOT NULL,
	title TEXT NOT NULL,
	url TEXT NOT NULL,
	PRIMARY KEY(option_id, position),
	FOREIGN KEY(option_id) REFERENCES options(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	email TEXT NOT NULL,
	remember INTEGER NOT NULL
);
`

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "could not migrate database")
	}

	// passwords live in the OS keyring, older databases kept them here
	var legacy int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pragma_table_info('users') WHERE name = 'password'`).Scan(&legacy); err != nil {
		return errors.Wrap(err, "could not inspect users table")
	}
	if legacy > 0 {
		if _, err := db.ExecContext(ctx, `DELETE FROM users; ALTER TABLE users DROP COLUMN password;`); err != nil {
			return errors.Wrap(err, "could not drop stored passwords")
		}
	}

	return nil
}
